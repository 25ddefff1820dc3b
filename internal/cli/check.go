package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/diagnose"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/engine"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Tolerance float64
	MinLength float64
	Workers   int
	Strict    bool
}

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	File        string             `json:"file"`
	Digest      string             `json:"digest"`
	Records     int                `json:"records"`
	ParseErrors []ParseErrorInfo   `json:"parse_errors"`
	Findings    []diagnose.Finding `json:"findings"`
}

// ParseErrorInfo describes one tombstoned statement.
type ParseErrorInfo struct {
	Line    int    `json:"line"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <file.wkt>",
		Short: "Diagnose topology defects",
		Long: `Load a WKT file and report invalid geometries, dangling endpoints and
short segments.

Statements that cannot be parsed are kept as deleted slots so that indices
and finding identifiers stay aligned with the source file.

Exit codes:
  0 - Check completed (or no findings with --strict)
  1 - Findings remain and --strict is set
  2 - Command error (unreadable input, bad config, etc.)

Examples:
  geoqa check roads.wkt
  geoqa check roads.wkt --tolerance 1.0 --min-length 5
  geoqa check roads.wkt --format json --strict`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().Float64Var(&opts.Tolerance, "tolerance", 0, "dangle snap tolerance (overrides config)")
	cmd.Flags().Float64Var(&opts.MinLength, "min-length", 0, "minimum line length (overrides config)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "parallel dangle scan workers, 0 = GOMAXPROCS (overrides config)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when any finding is reported")

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("tolerance") {
		cfg.Diagnose.Tolerance = opts.Tolerance
	}
	if flags.Changed("min-length") {
		cfg.Diagnose.MinLength = opts.MinLength
	}
	if flags.Changed("workers") {
		cfg.Diagnose.Workers = opts.Workers
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid options", err)
	}

	eng, digest, err := loadDataset(cmd, opts.RootOptions, cfg, path)
	if err != nil {
		return err
	}
	findings := eng.Diagnose(commandContext(cmd))

	result := CheckResult{
		File:        path,
		Digest:      digest,
		Records:     eng.Len(),
		ParseErrors: parseErrorInfos(eng),
		Findings:    findings,
	}

	out := opts.formatter(cmd)
	if out.JSON() {
		if err := out.Success(result); err != nil {
			return err
		}
	} else {
		writeCheckText(out, result)
	}

	if opts.Strict && len(findings) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d findings", len(findings)))
	}
	return nil
}

func parseErrorInfos(eng *engine.Engine) []ParseErrorInfo {
	errs := eng.ParseErrors()
	infos := make([]ParseErrorInfo, len(errs))
	for i, pe := range errs {
		infos[i] = ParseErrorInfo{Line: pe.Line, Index: pe.Index, Message: pe.Err.Error()}
	}
	return infos
}

func writeCheckText(out *OutputFormatter, r CheckResult) {
	w := out.Writer
	fmt.Fprintf(w, "%s: %d records, %d parse errors, %d findings\n",
		filepath.Base(r.File), r.Records, len(r.ParseErrors), len(r.Findings))

	for _, pe := range r.ParseErrors {
		fmt.Fprintf(w, "  line %d: %s (statement %d deleted)\n", pe.Line, pe.Message, pe.Index)
	}
	if len(r.Findings) == 0 {
		return
	}

	idWidth := len("ID")
	for _, f := range r.Findings {
		idWidth = max(idWidth, len(f.ID))
	}
	fmt.Fprintln(w)
	writeRow(w, idWidth, fmt.Sprintf("%-8s", "SEVERITY"), "ID", "DESCRIPTION")
	for _, f := range r.Findings {
		desc := f.Description
		if f.Location != "" {
			desc += " [" + f.Location + "]"
		}
		writeRow(w, idWidth, out.Severity(f.Severity, 8), f.ID, desc)
	}
}

func writeRow(w io.Writer, idWidth int, severity, id, desc string) {
	fmt.Fprintf(w, "%s  %-*s  %s\n", severity, idWidth, id, desc)
}
