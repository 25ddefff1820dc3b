package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/audit"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/config"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/engine"
)

// loadDataset reads a WKT file into a new engine configured from cfg and
// any extra options. It also returns the file's audit.DatasetDigest.
func loadDataset(cmd *cobra.Command, opts *RootOptions, cfg config.Config, path string, extra ...engine.Option) (*engine.Engine, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", NewExitError(ExitCommandError, fmt.Sprintf("input file not found: %s", path))
		}
		return nil, "", WrapExitError(ExitCommandError, "failed to read input", err)
	}

	engOpts := []engine.Option{
		engine.WithDiagnoseOptions(cfg.DiagnoseOptions()),
		engine.WithFixSettings(cfg.FixSettings()),
		engine.WithLogger(opts.logger(cmd.ErrOrStderr()).With("file", path)),
	}
	eng := engine.New(append(engOpts, extra...)...)
	eng.Load(string(data))
	return eng, audit.DatasetDigest(data), nil
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// writeFile writes content to path, treating "-" as standard output.
func writeFile(cmd *cobra.Command, path string, content []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(content)
		return err
	}
	return os.WriteFile(path, content, 0o644)
}
