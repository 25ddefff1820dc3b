package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/audit"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/report"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/testutil"
)

func TestFix_TextGolden(t *testing.T) {
	cmd := createTestFixCommand("text")
	stdout, _, err := execute(t, cmd, "--plan", "testdata/network_plan.yaml", "testdata/network.wkt")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "fix_text", []byte(stdout))
}

func TestFix_JSON(t *testing.T) {
	cmd := createTestFixCommand("json")
	stdout, _, err := execute(t, cmd, "--plan", "testdata/network_plan.yaml", "testdata/network.wkt")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   FixResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data.Session)
	assert.Equal(t, 3, resp.Data.Applied)
	assert.Zero(t, resp.Data.Failed)
	require.Len(t, resp.Data.Steps, 4)
	assert.Equal(t, "MAKE_VALID", resp.Data.Steps[1].Fix)
	assert.False(t, resp.Data.Steps[2].Success)
	assert.Equal(t, "INDEX_OUT_OF_RANGE", string(resp.Data.Steps[2].Reason))
}

func TestFix_WritesGeometryAndReport(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "fixed.wkt")
	reportPath := filepath.Join(dir, "report.txt")

	cmd := createTestFixCommand("text")
	_, _, err := execute(t, cmd,
		"--plan", "testdata/lines_plan.yaml",
		"--out", outPath,
		"--report", reportPath,
		"testdata/network.wkt")
	require.NoError(t, err)

	wkt, err := os.ReadFile(outPath)
	require.NoError(t, err)
	fixed, err := geom.Parse(strings.TrimSpace(string(wkt)))
	require.NoError(t, err)
	assert.Equal(t, geom.KindMultiLineString, fixed.Kind())
	parts := fixed.Parts()
	require.Len(t, parts, 3)
	assert.Equal(t, geom.Coord{X: 10.3, Y: 5}, parts[2][0])

	rep, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(rep), report.Header)
	assert.Contains(t, string(rep), "Total Objects processed: 5")
	assert.Contains(t, string(rep), "Total Fixes Applied: 2")
}

func TestFix_JSONReport(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "report.json")

	cmd := createTestFixCommand("text")
	_, _, err := execute(t, cmd, "--plan", "testdata/lines_plan.yaml", "--report", reportPath, "testdata/network.wkt")
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 5, doc.TotalObjects)
	assert.Equal(t, 2, doc.TotalFixes)
	assert.Equal(t, "short-5", doc.Fixes[0].FindingID)
}

func TestFix_MixedExportFails(t *testing.T) {
	// The repaired polygon cannot share a collection with the lines.
	cmd := createTestFixCommand("text")
	_, _, err := execute(t, cmd,
		"--plan", "testdata/network_plan.yaml",
		"--out", filepath.Join(t.TempDir(), "fixed.wkt"),
		"testdata/network.wkt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, report.ErrMixedGeometryTypes)
}

func TestFix_FailedStepExitsWithFailure(t *testing.T) {
	cmd := createTestFixCommand("text")
	stdout, _, err := execute(t, cmd, "--plan", "testdata/failing_plan.yaml", "testdata/network.wkt")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 steps failed")
	assert.Contains(t, stdout, "[2] index 99 DELETE: FAILED - failed: Invalid geometry index")
	assert.Contains(t, stdout, "1 applied, 1 failed")
}

func TestFix_InvalidPlan(t *testing.T) {
	cmd := createTestFixCommand("text")
	_, _, err := execute(t, cmd, "--plan", "testdata/bad_plan.yaml", "testdata/network.wkt")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown fix type "explode"`)
}

func TestFix_StdoutOutputRejectsJSONFormat(t *testing.T) {
	for _, flag := range []string{"--out", "--report"} {
		t.Run(flag, func(t *testing.T) {
			cmd := createTestFixCommand("json")
			stdout, _, err := execute(t, cmd, "--plan", "testdata/lines_plan.yaml", flag, "-", "testdata/network.wkt")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "--format json")
			assert.Empty(t, stdout)
		})
	}
}

func TestFix_StdoutOutputWithTextFormat(t *testing.T) {
	cmd := createTestFixCommand("text")
	stdout, _, err := execute(t, cmd, "--plan", "testdata/lines_plan.yaml", "--out", "-", "testdata/network.wkt")
	require.NoError(t, err)
	assert.Contains(t, stdout, "MULTILINESTRING")
}

func TestFix_MissingPlanFlag(t *testing.T) {
	cmd := createTestFixCommand("text")
	_, _, err := execute(t, cmd, "testdata/network.wkt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "plan")
}

func TestFix_JournalsAppliedFixes(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	cmd := createTestFixCommand("text")
	stdout, _, err := execute(t, cmd,
		"--plan", "testdata/network_plan.yaml",
		"--audit-db", dbPath,
		"testdata/network.wkt")
	require.NoError(t, err)
	assert.Contains(t, stdout, "session session-1")

	j, err := audit.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	ctx := context.Background()
	s, err := j.ReadSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "network-cleanup", s.Label)
	assert.Equal(t, "testdata/network.wkt", s.Source)
	assert.Equal(t, 5, s.Records)
	input, err := os.ReadFile("testdata/network.wkt")
	require.NoError(t, err)
	assert.Equal(t, audit.DatasetDigest(input), s.Digest)

	entries, err := j.ReadFixes(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// seq is the position in the fix log, so it has no gap for the
	// rejected step.
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Seq, entries[1].Seq, entries[2].Seq})
	assert.Equal(t, "DELETE", entries[0].Fix.FixType)
	assert.Equal(t, 3, entries[0].Fix.GeometryIndex)
	assert.Equal(t, "OTHER", entries[2].Fix.FixType)
}

func TestFix_FailedAssertionExitsWithFailure(t *testing.T) {
	// OTHER only marks the finding as reviewed, so the dangle remains.
	cmd := createTestFixCommand("json")
	stdout, _, err := execute(t, cmd, "--plan", "testdata/assert_plan.yaml", "testdata/network.wkt")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 1 assertions failed")

	var resp struct {
		Data FixResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Zero(t, resp.Data.Failed)
	assert.Equal(t, 1, resp.Data.AssertionsFailed)
	require.Len(t, resp.Data.Assertions, 1)
	assert.False(t, resp.Data.Assertions[0].OK)
	assert.Contains(t, resp.Data.Assertions[0].Message, "still reported")
}

func TestFix_RerunWithSameSessionIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	tokens := testutil.NewFixedTokenGenerator("rerun")

	for range 2 {
		cmd := newFixCommand(&FixOptions{
			RootOptions: testRootOptions("text"),
			Tokens:      tokens,
			Clock:       testutil.NewFixedClock(),
		})
		_, _, err := execute(t, cmd, "--plan", "testdata/network_plan.yaml", "--audit-db", dbPath, "testdata/network.wkt")
		require.NoError(t, err)
	}

	j, err := audit.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	sessions, err := j.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	n, err := j.CountFixes(context.Background(), "rerun")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
