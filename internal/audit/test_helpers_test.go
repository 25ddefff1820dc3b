package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/testutil"
)

// createTestJournal opens a journal in a temp dir.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

// createTestSession journals a session created at testutil.Epoch plus offset.
func createTestSession(t *testing.T, j *Journal, token string, offset time.Duration) Session {
	t.Helper()
	s := Session{
		Token:     token,
		Label:     "nightly",
		Source:    "roads.wkt",
		Digest:    DatasetDigest([]byte("LINESTRING(0 0, 1 0)\n")),
		Records:   5,
		CreatedAt: testutil.Epoch.Add(offset),
	}
	require.NoError(t, j.BeginSession(context.Background(), s))
	return s
}

// createTestFix builds a fix record with minimal required fields.
func createTestFix(findingID, fixType string, index int, at time.Time) store.FixRecord {
	return store.FixRecord{
		FindingID:     findingID,
		FixType:       fixType,
		GeometryIndex: index,
		OriginalWKT:   "LINESTRING (0 0, 1 0)",
		Result:        "Deleted geometry",
		Timestamp:     at,
	}
}
