package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/geom"
)

// ErrIndexOutOfRange is returned for an index outside the working sequence.
var ErrIndexOutOfRange = errors.New("index out of range")

// Record is one geometry slot.
type Record struct {
	Index      int           `json:"index"`
	SourceLine int           `json:"source_line"`
	Geom       geom.Geometry `json:"-"`
}

// FixRecord is one entry of the fix log.
type FixRecord struct {
	FindingID     string    `json:"finding_id"`
	FixType       string    `json:"fix_type"`
	GeometryIndex int       `json:"geometry_index"`
	OriginalWKT   string    `json:"original_wkt"`
	Result        string    `json:"result"`
	Timestamp     time.Time `json:"timestamp"`
}

// Store is the single authority for the current geometric state and change
// history of one dataset.
type Store struct {
	mu         sync.RWMutex
	original   []Record
	working    []Record
	fixLog     []FixRecord
	generation uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Load replaces original, working and the fix log in one step and returns the
// record count. Records are re-indexed by position. Working receives clones so
// the two sequences never share GEOS geometries.
func (s *Store) Load(records []Record) int {
	original := make([]Record, len(records))
	working := make([]Record, len(records))
	for i, r := range records {
		r.Index = i
		original[i] = r
		working[i] = Record{Index: i, SourceLine: r.SourceLine, Geom: r.Geom.Clone()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.original = original
	s.working = working
	s.fixLog = nil
	s.generation++
	return len(working)
}

// Generation increments on every Load. Callers use it to detect that cached
// results refer to an older dataset.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len returns the number of slots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.working)
}

// Get returns the working geometry at index i.
func (s *Store) Get(i int) (geom.Geometry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.record(i)
	if err != nil {
		return geom.Geometry{}, err
	}
	return r.Geom, nil
}

// Record returns the working record at index i.
func (s *Store) Record(i int) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record(i)
}

// Replace sets the working geometry at index i.
func (s *Store) Replace(i int, g geom.Geometry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replace(i, g)
}

// Tombstone marks index i as deleted.
func (s *Store) Tombstone(i int) error {
	return s.Replace(i, geom.Tombstone())
}

// AppendFix appends to the fix log.
func (s *Store) AppendFix(rec FixRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixLog = append(s.fixLog, rec)
}

// Original returns a copy of the original sequence.
func (s *Store) Original() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.original...)
}

// Working returns a copy of the working sequence.
func (s *Store) Working() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.working...)
}

// FixLog returns a copy of the fix log.
func (s *Store) FixLog() []FixRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FixRecord(nil), s.fixLog...)
}

// Snapshot is the read-only view handed to View callbacks.
type Snapshot struct {
	Original   []Record
	Working    []Record
	FixLog     []FixRecord
	Generation uint64
}

// View runs fn under the read lock. fn must not retain or modify the slices.
func (s *Store) View(fn func(Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(Snapshot{Original: s.original, Working: s.working, FixLog: s.fixLog, Generation: s.generation})
}

// Tx is the mutable view handed to Update callbacks.
type Tx struct {
	s *Store
}

// Working returns the working sequence. It must not be retained after Update.
func (tx *Tx) Working() []Record { return tx.s.working }

// Record returns the working record at index i.
func (tx *Tx) Record(i int) (Record, error) { return tx.s.record(i) }

// Replace sets the working geometry at index i.
func (tx *Tx) Replace(i int, g geom.Geometry) error { return tx.s.replace(i, g) }

// AppendFix appends to the fix log.
func (tx *Tx) AppendFix(rec FixRecord) { tx.s.fixLog = append(tx.s.fixLog, rec) }

// Update runs fn under the write lock.
func (s *Store) Update(fn func(*Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s})
}

func (s *Store) record(i int) (Record, error) {
	if i < 0 || i >= len(s.working) {
		return Record{}, fmt.Errorf("get %d of %d: %w", i, len(s.working), ErrIndexOutOfRange)
	}
	return s.working[i], nil
}

func (s *Store) replace(i int, g geom.Geometry) error {
	if i < 0 || i >= len(s.working) {
		return fmt.Errorf("replace %d of %d: %w", i, len(s.working), ErrIndexOutOfRange)
	}
	s.working[i].Geom = g
	return nil
}
