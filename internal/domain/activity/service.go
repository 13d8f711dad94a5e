package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/carelog/internal/metrics"
	"github.com/rpggio/carelog/internal/repository"
)

// Service is the write path for activity records.
type Service struct {
	store  Store
	loc    *time.Location
	logger *slog.Logger
}

// NewService creates a new activity service. Bucket dates are computed in
// loc; a nil loc means UTC.
func NewService(store Store, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, loc: loc, logger: logger}
}

// Location returns the zone bucket dates are computed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// CreateRequest describes a new activity record.
type CreateRequest struct {
	ChildID    string
	Category   Category
	OccurredAt time.Time
	Payload    Payload
	Notes      string
	Author     Author
}

// UpdateRequest describes a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	ID         string
	Payload    *Payload
	Notes      *string
	OccurredAt *time.Time
	Author     Author
}

// DeleteRequest describes a record removal.
type DeleteRequest struct {
	ID     string
	Author Author
}

// Create validates and stores a new record. No history entry is written.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	if err := ValidateCreateInput(req); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:         uuid.NewString(),
		ChildID:    strings.TrimSpace(req.ChildID),
		Category:   req.Category,
		DateKey:    DateKey(req.OccurredAt, s.loc),
		OccurredAt: req.OccurredAt,
		Payload:    req.Payload.Clone(),
		Notes:      req.Notes,
		Author:     req.Author,
		CreatedBy:  req.Author,
	}

	if err := s.store.Create(ctx, rec); err != nil {
		metrics.ActivityWriteFailures.WithLabelValues("create").Inc()
		return nil, translateStoreErr("creating activity", err)
	}
	metrics.ActivityWrites.WithLabelValues("create", string(rec.Category)).Inc()
	s.logger.DebugContext(ctx, "activity created", "id", rec.ID, "bucket", rec.Bucket().String())
	return rec, nil
}

// Update snapshots the current record into history, then applies the
// requested changes. ID and RecordedAt never change.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Record, error) {
	if err := ValidateUpdateInput(req); err != nil {
		return nil, err
	}

	current, err := s.current(ctx, req.ID, "update")
	if err != nil {
		return nil, err
	}

	if req.Payload != nil {
		if err := req.Payload.Validate(current.Category); err != nil {
			return nil, err
		}
	}

	hist := newHistoryEntry(current, EditUpdate, req.Author)

	next := current.Clone()
	if req.Payload != nil {
		next.Payload = req.Payload.Clone()
	}
	if req.Notes != nil {
		next.Notes = *req.Notes
	}
	if req.OccurredAt != nil {
		next.OccurredAt = *req.OccurredAt
		next.DateKey = DateKey(*req.OccurredAt, s.loc)
	}
	next.Author = req.Author

	if err := s.store.Update(ctx, next, hist); err != nil {
		metrics.ActivityWriteFailures.WithLabelValues("update").Inc()
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.WarnContext(ctx, "activity deleted before update", "id", req.ID)
		}
		return nil, translateStoreErr("updating activity", err)
	}
	metrics.ActivityWrites.WithLabelValues("update", string(next.Category)).Inc()
	return next, nil
}

// Delete snapshots the current record into history, then removes it.
func (s *Service) Delete(ctx context.Context, req DeleteRequest) error {
	if strings.TrimSpace(req.ID) == "" {
		return ErrInvalidInput
	}

	current, err := s.current(ctx, req.ID, "delete")
	if err != nil {
		return err
	}

	hist := newHistoryEntry(current, EditDelete, req.Author)
	if err := s.store.Delete(ctx, req.ID, hist); err != nil {
		metrics.ActivityWriteFailures.WithLabelValues("delete").Inc()
		return translateStoreErr("deleting activity", err)
	}
	metrics.ActivityWrites.WithLabelValues("delete", string(current.Category)).Inc()
	return nil
}

// Get returns the current state of a record.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, translateStoreErr("getting activity", err)
	}
	return rec, nil
}

// History returns the stored pre-images of a record, newest first. The
// history outlives the record, so a deleted id still has entries.
func (s *Service) History(ctx context.Context, id string, limit int) ([]HistoryEntry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput
	}
	entries, err := s.store.ListRecordHistory(ctx, id, limit)
	if err != nil {
		return nil, translateStoreErr("listing activity history", err)
	}
	return entries, nil
}

func (s *Service) current(ctx context.Context, id, op string) (*Record, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.WarnContext(ctx, "activity not found for "+op, "id", id)
		}
		return nil, translateStoreErr("loading activity", err)
	}
	return rec, nil
}

func newHistoryEntry(current *Record, kind EditKind, by Author) *HistoryEntry {
	return &HistoryEntry{
		ID:       uuid.NewString(),
		RecordID: current.ID,
		ChildID:  current.ChildID,
		Category: current.Category,
		DateKey:  current.DateKey,
		EditKind: kind,
		Snapshot: *current.Clone(),
		EditedBy: by,
	}
}

func translateStoreErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrUnavailable):
		return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
