package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/engine"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/testutil"
)

// testRootOptions returns plain-text, colourless options.
func testRootOptions(format string) *RootOptions {
	return &RootOptions{Format: format, Color: "never"}
}

// createTestFixCommand builds a fix command with deterministic session
// tokens and timestamps.
func createTestFixCommand(format string) *cobra.Command {
	return newFixCommand(&FixOptions{
		RootOptions: testRootOptions(format),
		Tokens:      engine.NewFixedGenerator("session-1", "session-2"),
		Clock:       testutil.NewFixedClock(),
	})
}

// execute runs cmd with args and returns what it wrote to stdout and stderr.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
