package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/audit"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/engine"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/fix"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/plan"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// FixOptions holds flags for the fix command.
type FixOptions struct {
	*RootOptions
	Plan    string
	Out     string
	Report  string
	AuditDB string

	// Tokens allows overriding the audit session token generator (for
	// testing). If nil, defaults to UUIDv7Generator.
	Tokens engine.TokenGenerator

	// Clock allows overriding the clock that stamps fixes and sessions (for
	// testing). If nil, defaults to SystemClock.
	Clock engine.Clock
}

// FixResult is the JSON payload of the fix command.
type FixResult struct {
	File    string     `json:"file"`
	Session string     `json:"session,omitempty"`
	Steps   []StepInfo `json:"steps"`
	Applied int        `json:"applied"`
	Failed  int        `json:"failed"`

	Assertions       []AssertionInfo `json:"assertions,omitempty"`
	AssertionsFailed int             `json:"assertions_failed,omitempty"`
}

// AssertionInfo is the outcome of one plan assertion.
type AssertionInfo struct {
	Type    string `json:"type"`
	Target  string `json:"target"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// StepInfo is the outcome of one plan step.
type StepInfo struct {
	Step     int        `json:"step"`
	Target   string     `json:"target"`
	Fix      string     `json:"fix"`
	Success  bool       `json:"success"`
	Reason   fix.Reason `json:"reason,omitempty"`
	Message  string     `json:"message"`
	Mismatch string     `json:"mismatch,omitempty"`
}

// NewFixCommand creates the fix command.
func NewFixCommand(rootOpts *RootOptions) *cobra.Command {
	return newFixCommand(&FixOptions{RootOptions: rootOpts})
}

func newFixCommand(opts *FixOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix <file.wkt>",
		Short: "Apply a fix plan",
		Long: `Load a WKT file, diagnose it, and apply every step of a YAML fix plan.

Steps name their target by finding identifier (as printed by "geoqa check")
or by geometry index. A failed step does not stop the plan. The repaired
geometry and the fix report are written when --out and --report are given;
a report path ending in .json is written as JSON. Writing either one to
stdout ("-") requires --format text. With an audit database
every applied fix is journaled under a new session.

Exit codes:
  0 - Every step went as planned
  1 - One or more steps failed or did not match their expectation
  2 - Command error (unreadable input, invalid plan, etc.)

Examples:
  geoqa fix roads.wkt --plan cleanup.yaml --out fixed.wkt
  geoqa fix roads.wkt --plan cleanup.yaml --report report.txt --audit-db audit.db
  geoqa fix roads.wkt --plan cleanup.yaml --out - > fixed.wkt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Plan, "plan", "", "path to YAML fix plan (required)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the repaired geometry as WKT (- for stdout)")
	cmd.Flags().StringVar(&opts.Report, "report", "", "write the fix report (.json for JSON)")
	cmd.Flags().StringVar(&opts.AuditDB, "audit-db", "", "journal applied fixes to this SQLite database (overrides config)")
	_ = cmd.MarkFlagRequired("plan")

	return cmd
}

func runFix(opts *FixOptions, path string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)

	if opts.Format == "json" && (opts.Out == "-" || opts.Report == "-") {
		return NewExitError(ExitCommandError, "--out - and --report - cannot be combined with --format json")
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("audit-db") {
		cfg.Audit.DB = opts.AuditDB
	}

	p, err := plan.Load(opts.Plan)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load plan", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = engine.SystemClock{}
	}
	eng, digest, err := loadDataset(cmd, opts.RootOptions, cfg, path, engine.WithClock(clock))
	if err != nil {
		return err
	}
	eng.Diagnose(ctx)

	var j *journalSession
	if cfg.Audit.DB != "" {
		tokens := opts.Tokens
		if tokens == nil {
			tokens = engine.UUIDv7Generator{}
		}
		j, err = beginJournal(ctx, cfg.Audit.DB, audit.Session{
			Token:     tokens.Generate(),
			Label:     p.Session,
			Source:    path,
			Digest:    digest,
			Records:   eng.Len(),
			CreatedAt: clock.Now(),
		})
		if err != nil {
			return err
		}
		defer j.close()
	}

	out := opts.formatter(cmd)
	if !out.JSON() {
		fmt.Fprintf(out.Writer, "%s: %d records, %d steps\n", filepath.Base(path), eng.Len(), len(p.Steps))
		if j != nil {
			fmt.Fprintf(out.Writer, "session %s\n", j.token)
		}
	}

	var journalErr error
	result := plan.Run(eng, p, func(sr plan.StepResult) {
		if !out.JSON() {
			writeStepText(out, sr)
		}
		if j == nil || !sr.Outcome.Success || journalErr != nil {
			return
		}
		journalErr = j.record(ctx, len(eng.FixLog()), *sr.Outcome.Record, sr.Params)
	})
	if journalErr != nil {
		return WrapExitError(ExitCommandError, "failed to journal fix", journalErr)
	}

	var checks []AssertionInfo
	if len(p.Assertions) > 0 {
		checks = assertionInfos(p, plan.Verify(ctx, eng, p))
	}

	if err := writeOutputs(opts, cmd, eng); err != nil {
		return err
	}

	summary := FixResult{
		File:    path,
		Steps:   stepInfos(result),
		Applied: result.Applied(),
		Failed:  result.Failed(),
	}
	if j != nil {
		summary.Session = j.token
	}
	summary.Assertions = checks
	for _, c := range checks {
		if !c.OK {
			summary.AssertionsFailed++
		}
	}

	if out.JSON() {
		if err := out.Success(summary); err != nil {
			return err
		}
	} else {
		for _, c := range checks {
			writeAssertionText(out, c)
		}
		fmt.Fprintf(out.Writer, "\n%d applied, %d failed", summary.Applied, summary.Failed)
		if len(checks) > 0 {
			fmt.Fprintf(out.Writer, ", %d of %d assertions failed", summary.AssertionsFailed, len(checks))
		}
		fmt.Fprintln(out.Writer)
	}

	switch {
	case summary.Failed > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d steps failed", summary.Failed, len(p.Steps)))
	case summary.AssertionsFailed > 0:
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d assertions failed", summary.AssertionsFailed, len(checks)))
	}
	return nil
}

func assertionInfos(p *plan.Plan, results []*plan.AssertionError) []AssertionInfo {
	infos := make([]AssertionInfo, len(p.Assertions))
	for i, a := range p.Assertions {
		infos[i] = AssertionInfo{Type: a.Type, Target: a.Target(), OK: results[i] == nil}
		if results[i] != nil {
			infos[i].Message = results[i].Error()
		}
	}
	return infos
}

func writeAssertionText(out *OutputFormatter, c AssertionInfo) {
	if c.OK {
		fmt.Fprintf(out.Writer, "  assert %s %s: %s\n", c.Type, c.Target, out.Status(true, "ok"))
		return
	}
	fmt.Fprintf(out.Writer, "  assert %s %s: %s - %s\n", c.Type, c.Target, out.Status(false, "FAILED"), c.Message)
}

func writeOutputs(opts *FixOptions, cmd *cobra.Command, eng *engine.Engine) error {
	if opts.Out != "" {
		wkt, err := eng.ExportGeometry()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to export geometry", err)
		}
		if wkt != "" {
			wkt += "\n"
		}
		if err := writeFile(cmd, opts.Out, []byte(wkt)); err != nil {
			return WrapExitError(ExitCommandError, "failed to write geometry", err)
		}
	}

	if opts.Report != "" {
		var data []byte
		if strings.EqualFold(filepath.Ext(opts.Report), ".json") {
			var err error
			if data, err = eng.ExportReportJSON(); err != nil {
				return WrapExitError(ExitCommandError, "failed to render report", err)
			}
			data = append(data, '\n')
		} else {
			data = []byte(eng.ExportReport())
		}
		if err := writeFile(cmd, opts.Report, data); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
	}
	return nil
}

func canonicalFix(name string) string {
	if t, ok := fix.ParseType(name); ok {
		return string(t)
	}
	return name
}

func writeStepText(out *OutputFormatter, sr plan.StepResult) {
	var status, detail string
	switch {
	case !sr.OK():
		status = out.Status(false, "FAILED")
		detail = sr.Mismatch
	case sr.Outcome.Success:
		status = out.Status(true, "applied")
		detail = sr.Outcome.Message
	default:
		status = out.Status(true, "rejected as expected")
		detail = fmt.Sprintf("%s: %s", sr.Outcome.Reason, sr.Outcome.Message)
	}
	fmt.Fprintf(out.Writer, "  [%d] %s %s: %s - %s\n", sr.Step, sr.Target, canonicalFix(sr.Fix), status, detail)
}

func stepInfos(r *plan.Result) []StepInfo {
	infos := make([]StepInfo, len(r.Steps))
	for i, sr := range r.Steps {
		infos[i] = StepInfo{
			Step:     sr.Step,
			Target:   sr.Target,
			Fix:      canonicalFix(sr.Fix),
			Success:  sr.Outcome.Success,
			Reason:   sr.Outcome.Reason,
			Message:  sr.Outcome.Message,
			Mismatch: sr.Mismatch,
		}
	}
	return infos
}

// journalSession is an open audit journal bound to one session.
type journalSession struct {
	journal *audit.Journal
	token   string
}

func beginJournal(ctx context.Context, dbPath string, s audit.Session) (*journalSession, error) {
	slog.Info("opening audit journal", "path", dbPath)
	j, err := audit.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open audit database", err)
	}
	if err := j.BeginSession(ctx, s); err != nil {
		_ = j.Close()
		return nil, WrapExitError(ExitCommandError, "failed to begin audit session", err)
	}
	slog.Debug("audit session started", "session", s.Token, "records", s.Records)
	return &journalSession{journal: j, token: s.Token}, nil
}

func (s *journalSession) record(ctx context.Context, seq int, rec store.FixRecord, params map[string]float64) error {
	return s.journal.WriteFix(ctx, s.token, seq, rec, params)
}

func (s *journalSession) close() {
	if err := s.journal.Close(); err != nil {
		slog.Error("error closing audit database", "error", err)
	}
}
