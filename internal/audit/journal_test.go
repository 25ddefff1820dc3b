package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/testutil"
)

func TestBeginSession_RoundTrip(t *testing.T) {
	j := createTestJournal(t)
	want := createTestSession(t, j, "s-1", 0)

	got, err := j.ReadSession(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBeginSession_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	createTestSession(t, j, "s-1", 0)
	createTestSession(t, j, "s-1", time.Hour)

	sessions, err := j.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, testutil.Epoch, sessions[0].CreatedAt)
}

func TestReadSession_NotFound(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.ReadSession(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListSessions_OrderedByCreation(t *testing.T) {
	j := createTestJournal(t)
	createTestSession(t, j, "b", time.Minute)
	createTestSession(t, j, "a", 2*time.Minute)
	createTestSession(t, j, "c", 0)

	sessions, err := j.ListSessions(context.Background())
	require.NoError(t, err)
	tokens := make([]string, len(sessions))
	for i, s := range sessions {
		tokens[i] = s.Token
	}
	assert.Equal(t, []string{"c", "b", "a"}, tokens)
}

func TestListSessions_EmptyIsNotNil(t *testing.T) {
	j := createTestJournal(t)

	sessions, err := j.ListSessions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestWriteFix_RoundTrip(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	createTestSession(t, j, "s-1", 0)

	clock := testutil.NewFixedClock()
	first := createTestFix("short-5", "DELETE", 3, clock.Now())
	second := createTestFix("dangle-3-end", "SNAP", 2, clock.Now())
	second.Result = "Snapped to nearest geometry (dist: 0.3000)"

	require.NoError(t, j.WriteFix(ctx, "s-1", 1, first, nil))
	require.NoError(t, j.WriteFix(ctx, "s-1", 2, second, map[string]float64{"tolerance": 1.5}))

	entries, err := j.ReadFixes(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Seq)
	assert.Equal(t, first, entries[0].Fix)
	assert.Nil(t, entries[0].Params)

	assert.Equal(t, 2, entries[1].Seq)
	assert.Equal(t, second, entries[1].Fix)
	assert.Equal(t, map[string]float64{"tolerance": 1.5}, entries[1].Params)
	assert.Equal(t, "s-1", entries[1].Session)

	n, err := j.CountFixes(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWriteFix_DuplicateSeqIgnored(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	createTestSession(t, j, "s-1", 0)

	fix := createTestFix("short-5", "DELETE", 3, testutil.Epoch)
	require.NoError(t, j.WriteFix(ctx, "s-1", 1, fix, nil))

	other := createTestFix("invalid-6", "BUFFER", 4, testutil.Epoch)
	require.NoError(t, j.WriteFix(ctx, "s-1", 1, other, nil))

	entries, err := j.ReadFixes(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "short-5", entries[0].Fix.FindingID)
}

func TestWriteFix_UnknownSessionRejected(t *testing.T) {
	j := createTestJournal(t)

	err := j.WriteFix(context.Background(), "ghost", 1, createTestFix("short-1", "DELETE", 0, testutil.Epoch), nil)
	assert.Error(t, err)
}

func TestReadFixes_AllSessions(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	createTestSession(t, j, "later", time.Hour)
	createTestSession(t, j, "earlier", 0)

	require.NoError(t, j.WriteFix(ctx, "later", 1, createTestFix("a", "DELETE", 0, testutil.Epoch), nil))
	require.NoError(t, j.WriteFix(ctx, "earlier", 2, createTestFix("c", "DELETE", 0, testutil.Epoch), nil))
	require.NoError(t, j.WriteFix(ctx, "earlier", 1, createTestFix("b", "DELETE", 0, testutil.Epoch), nil))

	entries, err := j.ReadFixes(ctx, "")
	require.NoError(t, err)
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.Fix.FindingID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	none, err := j.ReadFixes(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMarshalParams(t *testing.T) {
	text, err := marshalParams(map[string]float64{"tolerance": 1, "interval": 0.25})
	require.NoError(t, err)
	assert.Equal(t, `{"interval":0.25,"tolerance":1}`, text)

	text, err = marshalParams(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", text)

	_, err = unmarshalParams("{not json")
	assert.Error(t, err)
}

func TestFormatTime_SortsLexically(t *testing.T) {
	early := formatTime(testutil.Epoch)
	late := formatTime(testutil.Epoch.Add(1500 * time.Millisecond))
	assert.Less(t, early, late)

	parsed, err := parseTime(late)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(testutil.Epoch.Add(1500*time.Millisecond)))
}

func TestDatasetDigest(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"line", "LINESTRING(0 0, 1 0)\n", "87798f911ca39621494d03b9023d323c5d1957dbb68dd9250d33c93f2acdc43f"},
		{"empty", "", "55df46a4068769844011eb3c46edccbf7ae4a9f1524aeb558ce9c9b584b77115"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DatasetDigest([]byte(tt.text)))
		})
	}
	assert.NotEqual(t, DatasetDigest([]byte("a")), hashWithDomain("other/v1", []byte("a")))
}
