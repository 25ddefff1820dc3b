package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fortio.org/safecast"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// Session is one journaled run over one dataset.
type Session struct {
	Token     string    `json:"token"`
	Label     string    `json:"label,omitempty"`
	Source    string    `json:"source,omitempty"`
	Digest    string    `json:"digest,omitempty"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"created_at"`
}

// Entry is one journaled fix.
type Entry struct {
	Session string             `json:"session"`
	Seq     int                `json:"seq"`
	Fix     store.FixRecord    `json:"fix"`
	Params  map[string]float64 `json:"params,omitempty"`
}

// ReadSession returns the session for token.
// Returns sql.ErrNoRows if not found.
func (j *Journal) ReadSession(ctx context.Context, token string) (Session, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT token, label, source, digest, records, created_at
		FROM sessions
		WHERE token = ?
	`, token)
	return scanSession(row)
}

// ListSessions returns every session, oldest first.
//
// Returns an empty slice (not nil) when the journal has no sessions.
func (j *Journal) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT token, label, source, digest, records, created_at
		FROM sessions
		ORDER BY created_at ASC, token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadFixes returns the fixes journaled for session in application order.
// An empty session returns all fixes ordered by session then seq.
//
// Returns an empty slice (not nil) when nothing matches.
func (j *Journal) ReadFixes(ctx context.Context, session string) ([]Entry, error) {
	query := `
		SELECT f.session, f.seq, f.finding_id, f.fix_type, f.geometry_index,
		       f.original_wkt, f.result, f.params, f.applied_at
		FROM fixes f
		JOIN sessions s ON s.token = f.session
	`
	var args []any
	if session != "" {
		query += ` WHERE f.session = ?`
		args = append(args, session)
	}
	query += ` ORDER BY s.created_at ASC, f.session COLLATE BINARY ASC, f.seq ASC`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fixes: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixes: %w", err)
	}
	return entries, nil
}

// CountFixes returns the number of fixes journaled for session.
func (j *Journal) CountFixes(ctx context.Context, session string) (int, error) {
	var n int64
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fixes WHERE session = ?`, session).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count fixes: %w", err)
	}
	return safecast.Conv[int](n)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		s         Session
		records   int64
		createdAt string
	)
	if err := row.Scan(&s.Token, &s.Label, &s.Source, &s.Digest, &records, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	n, err := safecast.Conv[int](records)
	if err != nil {
		return Session{}, fmt.Errorf("scan session %s: records: %w", s.Token, err)
	}
	s.Records = n
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return Session{}, fmt.Errorf("scan session %s: %w", s.Token, err)
	}
	return s, nil
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e          Entry
		seq, index int64
		params, at string
	)
	err := row.Scan(&e.Session, &seq, &e.Fix.FindingID, &e.Fix.FixType, &index,
		&e.Fix.OriginalWKT, &e.Fix.Result, &params, &at)
	if err != nil {
		return Entry{}, fmt.Errorf("scan fix: %w", err)
	}
	if e.Seq, err = safecast.Conv[int](seq); err != nil {
		return Entry{}, fmt.Errorf("scan fix: seq: %w", err)
	}
	if e.Fix.GeometryIndex, err = safecast.Conv[int](index); err != nil {
		return Entry{}, fmt.Errorf("scan fix: geometry index: %w", err)
	}
	if e.Params, err = unmarshalParams(params); err != nil {
		return Entry{}, fmt.Errorf("scan fix: %w", err)
	}
	if e.Fix.Timestamp, err = parseTime(at); err != nil {
		return Entry{}, fmt.Errorf("scan fix: %w", err)
	}
	return e, nil
}
