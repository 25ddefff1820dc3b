package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // explicit geoqa.toml; discovered when empty
	Color   string // "auto" | "always" | "never"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidColorModes defines the allowed --color values.
var ValidColorModes = []string{"auto", "always", "never"}

// NewRootCommand creates the root command for the geoqa CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "geoqa",
		Short: "geoqa - geometry quality assurance",
		Long: `Find and repair topology defects in WKT line networks.

geoqa reads newline-separated WKT, reports invalid geometries, dangling
endpoints and short segments, applies fix plans, and journals every applied
fix to an optional SQLite audit database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !slices.Contains(ValidColorModes, opts.Color) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid color mode %q: must be one of %v", opts.Color, ValidColorModes))
			}
			slog.SetDefault(opts.logger(cmd.ErrOrStderr()))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to geoqa.toml (default: search upward from the working directory)")
	cmd.PersistentFlags().StringVar(&opts.Color, "color", "auto", "colorize output (auto|always|never)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewFixCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// logger builds the text logger commands log through: Info by default,
// Debug with --verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	var useColor bool
	switch o.Color {
	case "always":
		useColor = true
	case "auto", "":
		useColor = !color.NoColor
	}
	format := o.Format
	if format == "" {
		format = "text"
	}
	return &OutputFormatter{
		Format:  format,
		Writer:  cmd.OutOrStdout(),
		Verbose: o.Verbose,
		Color:   useColor && format == "text",
	}
}

func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		return cfg, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if cfg.Path != "" {
		slog.Debug("config loaded", "path", cfg.Path)
	}
	return cfg, nil
}
