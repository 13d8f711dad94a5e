package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/carelog/internal/domain/activity"
)

const historyColumns = `
	id, record_id, child_id, category, date_key, edit_kind, snapshot,
	edited_at, edited_by_id, edited_by_label
`

func historyBucket(h *activity.HistoryEntry) activity.Bucket {
	return activity.Bucket{ChildID: h.ChildID, Category: h.Category, DateKey: h.DateKey}
}

func insertHistory(ctx context.Context, db execer, h *activity.HistoryEntry) error {
	snapshot, err := json.Marshal(h.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = db.ExecContext(ctx, `INSERT INTO activity_history (`+historyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID,
		h.RecordID,
		h.ChildID,
		h.Category,
		h.DateKey,
		h.EditKind,
		string(snapshot),
		formatTime(h.EditedAt),
		h.EditedBy.ID,
		h.EditedBy.Label,
	)
	if err != nil {
		return wrapErr("failed to write history", err)
	}
	return nil
}

// ImportHistory inserts a history entry with its timestamps as given.
// Existing ids are left untouched and reported as not inserted.
func (s *ActivityStore) ImportHistory(ctx context.Context, h *activity.HistoryEntry) (bool, error) {
	if err := insertHistory(ctx, s.db, h); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListRecordHistory returns a record's pre-images, newest first. A limit of
// zero or less returns all of them.
func (s *ActivityStore) ListRecordHistory(ctx context.Context, recordID string, limit int) ([]activity.HistoryEntry, error) {
	query := `SELECT ` + historyColumns + ` FROM activity_history
		WHERE record_id = ?
		ORDER BY edited_at DESC, id ASC`
	args := []any{recordID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.queryHistory(ctx, query, args...)
}

// ListHistory returns the history of one child and category, keeping at most
// perRecordLimit of the newest entries for each record.
func (s *ActivityStore) ListHistory(ctx context.Context, childID string, category activity.Category, perRecordLimit int) ([]activity.HistoryEntry, error) {
	if perRecordLimit <= 0 {
		return s.queryHistory(ctx, `SELECT `+historyColumns+` FROM activity_history
			WHERE child_id = ? AND category = ?
			ORDER BY edited_at DESC, id ASC`,
			childID, category)
	}
	return s.queryHistory(ctx, `SELECT `+historyColumns+` FROM (
			SELECT *, ROW_NUMBER() OVER (
				PARTITION BY record_id ORDER BY edited_at DESC, id ASC
			) AS rn
			FROM activity_history
			WHERE child_id = ? AND category = ?
		)
		WHERE rn <= ?
		ORDER BY edited_at DESC, id ASC`,
		childID, category, perRecordLimit)
}

func (s *ActivityStore) queryHistory(ctx context.Context, query string, args ...any) ([]activity.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("failed to list history", err)
	}
	defer rows.Close()

	entries := []activity.HistoryEntry{}
	for rows.Next() {
		var (
			h                  activity.HistoryEntry
			snapshot, editedAt string
		)
		if err := rows.Scan(
			&h.ID,
			&h.RecordID,
			&h.ChildID,
			&h.Category,
			&h.DateKey,
			&h.EditKind,
			&snapshot,
			&editedAt,
			&h.EditedBy.ID,
			&h.EditedBy.Label,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if h.EditedAt, err = parseTime(editedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(snapshot), &h.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating history rows", err)
	}
	return entries, nil
}
