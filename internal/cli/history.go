package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/audit"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	AuditDB string
	Session string
}

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Sessions []audit.Session `json:"sessions"`
	Fixes    []audit.Entry   `json:"fixes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled fixes",
		Long: `List the sessions and fixes recorded in an audit database.

Without --session every session is listed, oldest first, followed by its
fixes in the order they were applied.

Examples:
  geoqa history --audit-db audit.db
  geoqa history --audit-db audit.db --session 019a0c4e-...
  geoqa history --audit-db audit.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "path to the SQLite audit database (overrides config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "only list this session")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Audit.DB
	if cmd.Flags().Changed("audit-db") {
		dbPath = opts.AuditDB
	}
	if dbPath == "" {
		return NewExitError(ExitCommandError, "no audit database: pass --audit-db or set [audit] db")
	}
	// Open would create an empty journal; a missing file is a user error here.
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return NewExitError(ExitCommandError, fmt.Sprintf("audit database not found: %s", dbPath))
	}

	j, err := audit.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open audit database", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error closing audit database: %v\n", closeErr)
		}
	}()

	var result HistoryResult
	if opts.Session != "" {
		s, err := j.ReadSession(ctx, opts.Session)
		if errors.Is(err, sql.ErrNoRows) {
			return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		result.Sessions = []audit.Session{s}
	} else {
		if result.Sessions, err = j.ListSessions(ctx); err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}
	if result.Fixes, err = j.ReadFixes(ctx, opts.Session); err != nil {
		return WrapExitError(ExitCommandError, "failed to read fixes", err)
	}

	out := opts.formatter(cmd)
	if out.JSON() {
		return out.Success(result)
	}
	writeHistoryText(out, result)
	return nil
}

func writeHistoryText(out *OutputFormatter, r HistoryResult) {
	w := out.Writer
	if len(r.Sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return
	}

	bySession := make(map[string][]audit.Entry, len(r.Sessions))
	for _, e := range r.Fixes {
		bySession[e.Session] = append(bySession[e.Session], e)
	}

	for i, s := range r.Sessions {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "session %s  %s  %s (%d records, digest %s)",
			s.Token, s.CreatedAt.UTC().Format(time.RFC3339), s.Source, s.Records, shortDigest(s.Digest))
		if s.Label != "" {
			fmt.Fprintf(w, "  [%s]", s.Label)
		}
		fmt.Fprintln(w)

		entries := bySession[s.Token]
		if len(entries) == 0 {
			fmt.Fprintln(w, "  no fixes")
			continue
		}
		for _, e := range entries {
			fmt.Fprintf(w, "  %3d  %-12s %-16s geometry %-4d %s\n",
				e.Seq, e.Fix.FixType, e.Fix.FindingID, e.Fix.GeometryIndex, e.Fix.Result)
		}
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	if d == "" {
		return "-"
	}
	return d
}
