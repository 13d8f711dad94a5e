package timeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/repository"
)

// Service is the read path for a child's day.
type Service struct {
	feed   Feed
	lister BucketLister
	logger *slog.Logger
}

// NewService creates a timeline service over a store's change feed.
func NewService(feed Feed, lister BucketLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{feed: feed, lister: lister, logger: logger}
}

// Subscribe opens a live view of childID's day. Per-category errors are
// logged and forwarded to onError.
func (s *Service) Subscribe(childID, dateKey string, onChange ChangeFunc, onError ErrorFunc) (*Subscription, error) {
	wrapped := func(cat activity.Category, err error) {
		s.logger.Warn("timeline category failed", "child_id", childID, "category", cat, "error", err)
		if onError != nil {
			onError(cat, translateErr(err))
		}
	}
	return Subscribe(s.feed, childID, dateKey, onChange, wrapped)
}

// Snapshot returns the merged day view once.
func (s *Service) Snapshot(ctx context.Context, childID, dateKey string) ([]activity.Record, error) {
	recs, err := Snapshot(ctx, s.lister, childID, dateKey)
	if err != nil {
		return nil, translateErr(err)
	}
	return recs, nil
}

func translateErr(err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return fmt.Errorf("%w: %w", activity.ErrStoreUnavailable, err)
	}
	return err
}
