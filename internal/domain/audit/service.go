package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/rpggio/carelog/internal/metrics"
	"github.com/rpggio/carelog/internal/repository"
	"github.com/rpggio/carelog/internal/timeline"
)

// Service rebuilds the audit feed from current records and history.
//
// Cost grows with children x categories x records x history per record. The
// feed is an infrequent admin report, not a hot path.
type Service struct {
	children ChildDirectory
	source   Source
	cfg      Config
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a new audit service.
func NewService(children ChildDirectory, source Source, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		children: children,
		source:   source,
		cfg:      cfg.withDefaults(),
		now:      time.Now,
		logger:   logger,
	}
}

// List returns the newest audit entries first. Equal timestamps are ordered
// by entry id. A limit of zero or less uses the configured default.
func (s *Service) List(ctx context.Context, filter Filter, limit int) ([]Entry, error) {
	if filter.EditKind != "" && !filter.EditKind.Valid() {
		return nil, fmt.Errorf("%w: edit kind %q", ErrInvalidFilter, filter.EditKind)
	}
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	start := time.Now()
	defer func() { metrics.AuditDuration.Observe(time.Since(start).Seconds()) }()

	targets, err := s.targets(ctx, filter.ChildID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entries := []Entry{}
	for _, c := range targets {
		name := c.DisplayName()
		for _, cat := range activity.Categories {
			recs, err := s.source.ListByChild(ctx, c.ID, cat)
			if err != nil {
				return nil, translateErr(fmt.Sprintf("listing %s records for %s", cat, c.ID), err)
			}
			for _, rec := range recs {
				entries = append(entries, createEntry(rec, name, now))
			}

			history, err := s.source.ListHistory(ctx, c.ID, cat, s.cfg.HistoryPerRecord)
			if err != nil {
				return nil, translateErr(fmt.Sprintf("listing %s history for %s", cat, c.ID), err)
			}
			for _, h := range history {
				entries = append(entries, historyEntry(h, name, now))
			}
		}
	}

	timeline.SortDescending(entries,
		func(e Entry) time.Time { return e.Timestamp },
		func(e Entry) string { return e.ID },
	)

	if filter.EditKind != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.EditKind == filter.EditKind {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	s.logger.DebugContext(ctx, "audit feed built", "children", len(targets), "entries", len(entries))
	return entries, nil
}

func (s *Service) targets(ctx context.Context, childID string) ([]child.Child, error) {
	if childID == "" {
		list, err := s.children.List(ctx)
		if err != nil {
			return nil, translateErr("listing children", err)
		}
		return list, nil
	}

	c, err := s.children.Get(ctx, childID)
	switch {
	case err == nil:
		return []child.Child{*c}, nil
	case errors.Is(err, child.ErrChildNotFound), errors.Is(err, repository.ErrNotFound):
		// Records can outlive their child; audit them without a name.
		return []child.Child{{ID: childID}}, nil
	default:
		return nil, translateErr("getting child", err)
	}
}

func createEntry(rec activity.Record, childName string, now time.Time) Entry {
	return Entry{
		ID:         "create-" + rec.ID,
		RecordID:   rec.ID,
		ChildID:    rec.ChildID,
		ChildName:  childName,
		Category:   rec.Category,
		EditKind:   activity.EditCreate,
		Timestamp:  resolveOrNow(now, rec.RecordedAt),
		ActorLabel: rec.CreatedBy.Label,
		Notes:      entryNotes(rec),
	}
}

func historyEntry(h activity.HistoryEntry, childName string, now time.Time) Entry {
	return Entry{
		ID:         h.ID,
		RecordID:   h.RecordID,
		ChildID:    h.ChildID,
		ChildName:  childName,
		Category:   h.Category,
		EditKind:   h.EditKind,
		Timestamp:  resolveOrNow(now, h.EditedAt, h.Snapshot.LastModifiedAt, h.Snapshot.RecordedAt),
		ActorLabel: h.EditedBy.Label,
		Notes:      entryNotes(h.Snapshot),
	}
}

func resolveOrNow(now time.Time, values ...any) time.Time {
	if len(values) == 0 {
		return now
	}
	t := timeline.Resolve(values[0], values[1:]...)
	if t.Equal(timeline.Epoch) {
		return now
	}
	return t
}

func entryNotes(rec activity.Record) string {
	if rec.Notes == "" && rec.Payload.Needs != nil {
		return rec.Payload.Needs.Summary()
	}
	return rec.Notes
}

func translateErr(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, activity.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
