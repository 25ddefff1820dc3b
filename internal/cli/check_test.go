package cli

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/testutil"
)

func TestCheck_TextGolden(t *testing.T) {
	cmd := NewCheckCommand(testRootOptions("text"))
	stdout, _, err := execute(t, cmd, "testdata/simple.wkt")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "check_text", []byte(stdout))
}

func TestCheck_JSON(t *testing.T) {
	cmd := NewCheckCommand(testRootOptions("json"))
	stdout, _, err := execute(t, cmd, "testdata/network.wkt")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 5, resp.Data.Records)
	assert.Empty(t, resp.Data.ParseErrors)
	require.Len(t, resp.Data.Findings, 7)
	assert.Equal(t, "invalid-6", resp.Data.Findings[0].ID)
	assert.Equal(t, 4, resp.Data.Findings[0].GeometryIndex)
}

func TestCheck_FlagsOverrideThresholds(t *testing.T) {
	cmd := NewCheckCommand(testRootOptions("json"))
	// A 1m line passes with a 0.5m minimum; its endpoints still dangle.
	stdout, _, err := execute(t, cmd, "--min-length", "0.5", "--tolerance", "2", "testdata/simple.wkt")
	require.NoError(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Findings, 2)
	assert.Equal(t, "Dangle at start (Line 1). No snap within 2m.", resp.Data.Findings[0].Description)
	assert.Equal(t, "dangle-1-end", resp.Data.Findings[1].ID)
	require.Len(t, resp.Data.ParseErrors, 1)
	assert.Equal(t, 2, resp.Data.ParseErrors[0].Line)
}

func TestCheck_ZeroToleranceIsLiteral(t *testing.T) {
	cmd := NewCheckCommand(testRootOptions("json"))
	stdout, _, err := execute(t, cmd, "--tolerance", "0", "testdata/network.wkt")
	require.NoError(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	ids := make([]string, len(resp.Data.Findings))
	for i, f := range resp.Data.Findings {
		ids[i] = f.ID
	}
	// The 0.3 gap between lines 2 and 3 is within the default tolerance only.
	assert.Contains(t, ids, "dangle-3-start")
	assert.NotContains(t, ids, "dangle-2-start")
}

func TestCheck_Strict(t *testing.T) {
	cmd := NewCheckCommand(testRootOptions("text"))
	_, _, err := execute(t, cmd, "--strict", "testdata/simple.wkt")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "3 findings")
}

func TestCheck_NegativeToleranceRejected(t *testing.T) {
	cmd := NewCheckCommand(testRootOptions("text"))
	_, _, err := execute(t, cmd, "--tolerance=-1", "testdata/simple.wkt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "diagnose.tolerance")
}

func TestCheck_MissingFile(t *testing.T) {
	cmd := NewCheckCommand(testRootOptions("text"))
	_, _, err := execute(t, cmd, "testdata/nope.wkt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "input file not found")
}

func TestCheck_EmptyFileReportsInsufficientData(t *testing.T) {
	path := testutil.WriteFile(t, "empty.wkt", "\n\n")

	cmd := NewCheckCommand(testRootOptions("json"))
	stdout, _, err := execute(t, cmd, path)
	require.NoError(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Findings, 1)
	assert.Equal(t, "insufficient_data", resp.Data.Findings[0].ID)
}

func TestCheck_ExplicitConfig(t *testing.T) {
	cfgPath := testutil.WriteFile(t, "geoqa.toml", "[diagnose]\nmin_length = 0.5\n")

	opts := testRootOptions("json")
	opts.Config = cfgPath
	cmd := NewCheckCommand(opts)
	stdout, _, err := execute(t, cmd, "testdata/simple.wkt")
	require.NoError(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Findings, 2)
	for _, f := range resp.Data.Findings {
		assert.Equal(t, "dangle", string(f.Kind))
	}
}
