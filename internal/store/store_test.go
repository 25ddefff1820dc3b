package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
)

func loadTestStore(t *testing.T, wkts ...string) *Store {
	t.Helper()
	records := make([]Record, len(wkts))
	for i, w := range wkts {
		g := geom.Tombstone()
		if w != "" {
			g = geom.MustParse(w)
		}
		records[i] = Record{SourceLine: i + 1, Geom: g}
	}
	s := New()
	require.Equal(t, len(wkts), s.Load(records))
	return s
}

func TestLoadInitialisesBothSequences(t *testing.T) {
	s := loadTestStore(t, "LINESTRING (0 0, 10 0)", "", "POINT (1 1)")

	original := s.Original()
	working := s.Working()
	require.Len(t, original, 3)
	require.Len(t, working, 3)
	assert.Equal(t, 3, s.Len())

	for i := range original {
		assert.Equal(t, i, original[i].Index)
		assert.Equal(t, original[i].SourceLine, working[i].SourceLine)
		assert.Equal(t, original[i].Geom.Kind(), working[i].Geom.Kind())
	}
	assert.True(t, working[1].Geom.IsTombstone())
	assert.NotSame(t, original[0].Geom.GEOS(), working[0].Geom.GEOS())
	assert.Empty(t, s.FixLog())
}

func TestGetOutOfRange(t *testing.T) {
	s := loadTestStore(t, "POINT (0 0)")

	_, err := s.Get(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, s.Replace(5, geom.Tombstone()), ErrIndexOutOfRange)

	g, err := s.Get(0)
	require.NoError(t, err)
	assert.Equal(t, geom.KindPoint, g.Kind())
}

func TestTombstoneLeavesOriginalUntouched(t *testing.T) {
	s := loadTestStore(t, "LINESTRING (0 0, 1 0)", "LINESTRING (5 5, 6 6)")

	require.NoError(t, s.Tombstone(0))

	g, err := s.Get(0)
	require.NoError(t, err)
	assert.True(t, g.IsTombstone())
	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.Original(), 2)
	assert.Equal(t, geom.KindLineString, s.Original()[0].Geom.Kind())
}

func TestLoadResetsFixLog(t *testing.T) {
	s := loadTestStore(t, "POINT (0 0)")
	gen := s.Generation()

	s.AppendFix(FixRecord{FindingID: "a", FixType: "OTHER", Timestamp: time.Unix(0, 0)})
	s.AppendFix(FixRecord{FindingID: "b", FixType: "DELETE"})
	require.Len(t, s.FixLog(), 2)
	assert.Equal(t, "a", s.FixLog()[0].FindingID)

	s.Load([]Record{{SourceLine: 1, Geom: geom.MustParse("POINT (1 1)")}})
	assert.Empty(t, s.FixLog())
	assert.Greater(t, s.Generation(), gen)
}

func TestUpdateAndView(t *testing.T) {
	s := loadTestStore(t, "LINESTRING (0 0, 1 0)", "POINT (3 3)")

	err := s.Update(func(tx *Tx) error {
		r, err := tx.Record(1)
		if err != nil {
			return err
		}
		if err := tx.Replace(r.Index, geom.Tombstone()); err != nil {
			return err
		}
		tx.AppendFix(FixRecord{FindingID: "x", GeometryIndex: r.Index})
		assert.Len(t, tx.Working(), 2)
		return nil
	})
	require.NoError(t, err)

	s.View(func(snap Snapshot) {
		assert.Len(t, snap.Original, 2)
		assert.Len(t, snap.Working, 2)
		assert.True(t, snap.Working[1].Geom.IsTombstone())
		assert.False(t, snap.Original[1].Geom.IsTombstone())
		require.Len(t, snap.FixLog, 1)
		assert.Equal(t, 1, snap.FixLog[0].GeometryIndex)
	})
}

func TestConcurrentLoadIsAtomic(t *testing.T) {
	s := New()
	small := []Record{{Geom: geom.MustParse("POINT (0 0)")}}
	large := []Record{
		{Geom: geom.MustParse("POINT (0 0)")},
		{Geom: geom.MustParse("POINT (1 1)")},
		{Geom: geom.MustParse("POINT (2 2)")},
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				s.Load(small)
			} else {
				s.Load(large)
			}
		}()
		go func() {
			defer wg.Done()
			s.View(func(snap Snapshot) {
				assert.Equal(t, len(snap.Original), len(snap.Working))
			})
		}()
	}
	wg.Wait()
}
