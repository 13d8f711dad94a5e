package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/repository"
)

const activityColumns = `
	id, child_id, category, date_key, occurred_at, recorded_at, last_modified_at,
	payload, notes, author_id, author_label, created_by_id, created_by_label
`

// ActivityStore implements activity.Store and the timeline change feed.
type ActivityStore struct {
	db   *DB
	feed *ChangeFeed
	now  func() time.Time
}

// NewActivityStore creates a new ActivityStore
func NewActivityStore(db *DB, logger *slog.Logger) *ActivityStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &ActivityStore{db: db, now: time.Now}
	s.feed = newChangeFeed(s.ListBucket, logger)
	return s
}

// Subscribe opens a change-feed subscription on one bucket.
func (s *ActivityStore) Subscribe(bucket activity.Bucket, onSnapshot func([]activity.Record), onError func(error)) (func(), error) {
	return s.feed.Subscribe(bucket, onSnapshot, onError)
}

// Create inserts a new record and stamps RecordedAt with the store clock.
func (s *ActivityStore) Create(ctx context.Context, rec *activity.Record) error {
	rec.RecordedAt = s.now().UTC()
	rec.LastModifiedAt = nil
	if err := s.insert(ctx, s.db, rec); err != nil {
		return err
	}
	s.feed.Publish(rec.Bucket())
	return nil
}

// Import inserts a record with its timestamps as given. Existing ids are left
// untouched and reported as not inserted.
func (s *ActivityStore) Import(ctx context.Context, rec *activity.Record) (bool, error) {
	if err := s.insert(ctx, s.db, rec); err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return false, nil
		}
		return false, err
	}
	s.feed.Publish(rec.Bucket())
	return true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *ActivityStore) insert(ctx context.Context, db execer, rec *activity.Record) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO activities (`+activityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.ChildID,
		rec.Category,
		rec.DateKey,
		formatTime(rec.OccurredAt),
		formatTime(rec.RecordedAt),
		formatNullTime(rec.LastModifiedAt),
		string(payload),
		rec.Notes,
		rec.Author.ID,
		rec.Author.Label,
		rec.CreatedBy.ID,
		rec.CreatedBy.Label,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: activity %s already exists", repository.ErrInvalidInput, rec.ID)
		}
		return wrapErr("failed to create activity", err)
	}
	return nil
}

// Get retrieves a record by ID
func (s *ActivityStore) Get(ctx context.Context, id string) (*activity.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, wrapErr("failed to get activity", err)
	}
	return rec, nil
}

// Update writes hist and then overwrites the record, in one transaction.
// LastModifiedAt and hist.EditedAt receive the same store time.
func (s *ActivityStore) Update(ctx context.Context, rec *activity.Record, hist *activity.HistoryEntry) error {
	now := s.now().UTC()
	hist.EditedAt = now

	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertHistory(ctx, tx, hist); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE activities
			SET date_key = ?, occurred_at = ?, last_modified_at = ?, payload = ?, notes = ?,
				author_id = ?, author_label = ?
			WHERE id = ?`,
			rec.DateKey,
			formatTime(rec.OccurredAt),
			formatTime(now),
			string(payload),
			rec.Notes,
			rec.Author.ID,
			rec.Author.Label,
			rec.ID,
		)
		if err != nil {
			return wrapErr("failed to update activity", err)
		}
		return requireAffected(result)
	})
	if err != nil {
		return err
	}

	rec.LastModifiedAt = &now
	s.feed.Publish(historyBucket(hist), rec.Bucket())
	return nil
}

// Delete writes hist and then removes the record, in one transaction.
func (s *ActivityStore) Delete(ctx context.Context, id string, hist *activity.HistoryEntry) error {
	hist.EditedAt = s.now().UTC()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertHistory(ctx, tx, hist); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, id)
		if err != nil {
			return wrapErr("failed to delete activity", err)
		}
		return requireAffected(result)
	})
	if err != nil {
		return err
	}

	s.feed.Publish(historyBucket(hist))
	return nil
}

// ListBucket returns one bucket's records ordered by occurrence.
func (s *ActivityStore) ListBucket(ctx context.Context, bucket activity.Bucket) ([]activity.Record, error) {
	return s.queryRecords(ctx, `SELECT `+activityColumns+` FROM activities
		WHERE child_id = ? AND category = ? AND date_key = ?
		ORDER BY occurred_at ASC, id ASC`,
		bucket.ChildID, bucket.Category, bucket.DateKey)
}

// ListByChild returns every current record of one child and category.
func (s *ActivityStore) ListByChild(ctx context.Context, childID string, category activity.Category) ([]activity.Record, error) {
	return s.queryRecords(ctx, `SELECT `+activityColumns+` FROM activities
		WHERE child_id = ? AND category = ?
		ORDER BY recorded_at DESC, id ASC`,
		childID, category)
}

func (s *ActivityStore) queryRecords(ctx context.Context, query string, args ...any) ([]activity.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("failed to list activities", err)
	}
	defer rows.Close()

	records := []activity.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("error iterating activity rows", err)
	}
	return records, nil
}

func (s *ActivityStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("failed to commit transaction", err)
	}
	return nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*activity.Record, error) {
	var (
		rec                    activity.Record
		occurredAt, recordedAt string
		lastModifiedAt         sql.NullString
		payload                string
	)
	if err := row.Scan(
		&rec.ID,
		&rec.ChildID,
		&rec.Category,
		&rec.DateKey,
		&occurredAt,
		&recordedAt,
		&lastModifiedAt,
		&payload,
		&rec.Notes,
		&rec.Author.ID,
		&rec.Author.Label,
		&rec.CreatedBy.ID,
		&rec.CreatedBy.Label,
	); err != nil {
		return nil, err
	}

	var err error
	if rec.OccurredAt, err = parseTime(occurredAt); err != nil {
		return nil, err
	}
	if rec.RecordedAt, err = parseTime(recordedAt); err != nil {
		return nil, err
	}
	if rec.LastModifiedAt, err = parseNullTime(lastModifiedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &rec.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return &rec, nil
}
