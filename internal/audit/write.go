package audit

import (
	"context"
	"fmt"

	"fortio.org/safecast"

	"github.com/ZAiRO26/Prabhu-AxesSystem/internal/store"
)

// BeginSession records a session. Writing the same token again is a no-op so
// a resumed CLI run can call it unconditionally.
func (j *Journal) BeginSession(ctx context.Context, s Session) error {
	records, err := safecast.Conv[int64](s.Records)
	if err != nil {
		return fmt.Errorf("begin session: records: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO sessions (token, label, source, digest, records, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, s.Token, s.Label, s.Source, s.Digest, records, formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// WriteFix appends one applied fix to session. seq is the fix's 1-based
// position in the session's fix log; writing an existing (session, seq) pair
// again is ignored.
func (j *Journal) WriteFix(ctx context.Context, session string, seq int, rec store.FixRecord, params map[string]float64) error {
	seq64, err := safecast.Conv[int64](seq)
	if err != nil {
		return fmt.Errorf("write fix: seq: %w", err)
	}
	index, err := safecast.Conv[int64](rec.GeometryIndex)
	if err != nil {
		return fmt.Errorf("write fix: geometry index: %w", err)
	}
	paramsJSON, err := marshalParams(params)
	if err != nil {
		return fmt.Errorf("write fix: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO fixes
		(session, seq, finding_id, fix_type, geometry_index, original_wkt, result, params, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`,
		session,
		seq64,
		rec.FindingID,
		rec.FixType,
		index,
		rec.OriginalWKT,
		rec.Result,
		paramsJSON,
		formatTime(rec.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("write fix: %w", err)
	}
	return nil
}
