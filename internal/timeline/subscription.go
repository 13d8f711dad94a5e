package timeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/rpggio/carelog/internal/domain/activity"
)

// Feed delivers the current contents of a bucket once on open and again
// after every write that touches it. Callbacks for one bucket never overlap.
// The returned cancel func stops delivery and returns once no callback is
// running.
type Feed interface {
	Subscribe(bucket activity.Bucket, onSnapshot func([]activity.Record), onError func(error)) (func(), error)
}

// BucketLister reads one bucket.
type BucketLister interface {
	ListBucket(ctx context.Context, bucket activity.Bucket) ([]activity.Record, error)
}

// ChangeFunc receives the merged day view, oldest first.
type ChangeFunc func([]activity.Record)

// ErrorFunc receives a failure for one category. The other categories keep
// delivering.
type ErrorFunc func(activity.Category, error)

// Subscription watches the five category buckets of one child's day as a
// single unit. Callbacks are serialized and run without the state lock held,
// so Target may be called from inside one. Close and Switch wait for the
// running callback and must not be called from inside one.
type Subscription struct {
	feed     Feed
	onChange ChangeFunc
	onError  ErrorFunc

	// deliverMu serializes callbacks; mu guards the fields below.
	deliverMu sync.Mutex

	mu      sync.Mutex
	gen     uint64
	childID string
	dateKey string
	latest  map[activity.Category][]activity.Record
	cancels []func()
	closed  bool
}

// Subscribe opens the five bucket subscriptions for childID on dateKey.
// onChange runs once per bucket delivery with the full merged view.
func Subscribe(feed Feed, childID, dateKey string, onChange ChangeFunc, onError ErrorFunc) (*Subscription, error) {
	if feed == nil || onChange == nil {
		return nil, fmt.Errorf("%w: feed and change callback required", activity.ErrInvalidInput)
	}
	if onError == nil {
		onError = func(activity.Category, error) {}
	}
	s := &Subscription{feed: feed, onChange: onChange, onError: onError}
	if err := s.open(childID, dateKey); err != nil {
		return nil, err
	}
	return s, nil
}

// Switch tears down the current subscriptions and opens new ones for another
// child or day. Nothing from the old target is delivered after it returns.
func (s *Subscription) Switch(childID, dateKey string) error {
	s.teardown(false)
	return s.open(childID, dateKey)
}

// Close stops all five bucket subscriptions. When it returns no callback is
// running and none will run again. Close is idempotent.
func (s *Subscription) Close() {
	s.teardown(true)
}

// Target reports the child and day being watched.
func (s *Subscription) Target() (childID, dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.childID, s.dateKey
}

func (s *Subscription) open(childID, dateKey string) error {
	if childID == "" {
		return fmt.Errorf("%w: child id required", activity.ErrInvalidInput)
	}
	key, err := activity.ParseDateKey(dateKey)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: subscription closed", activity.ErrInvalidInput)
	}
	s.gen++
	gen := s.gen
	s.childID, s.dateKey = childID, key
	s.latest = make(map[activity.Category][]activity.Record, len(activity.Categories))
	s.mu.Unlock()

	cancels := make([]func(), 0, len(activity.Categories))
	for _, cat := range activity.Categories {
		bucket := activity.Bucket{ChildID: childID, Category: cat, DateKey: key}
		cancel, err := s.feed.Subscribe(bucket,
			func(recs []activity.Record) { s.deliver(gen, cat, recs) },
			func(err error) { s.fail(gen, cat, err) },
		)
		if err != nil {
			s.fail(gen, cat, err)
			continue
		}
		cancels = append(cancels, cancel)
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		for _, cancel := range cancels {
			cancel()
		}
		return nil
	}
	s.cancels = cancels
	s.mu.Unlock()
	return nil
}

func (s *Subscription) teardown(final bool) {
	s.mu.Lock()
	s.gen++
	if final {
		s.closed = true
	}
	cancels := s.cancels
	s.cancels = nil
	s.latest = nil
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	// Wait out a callback that passed its generation check before gen moved.
	s.deliverMu.Lock()
	s.deliverMu.Unlock()
}

func (s *Subscription) deliver(gen uint64, cat activity.Category, recs []activity.Record) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.latest[cat] = recs
	merged := Merge(s.latest)
	s.mu.Unlock()

	s.onChange(merged)
}

func (s *Subscription) fail(gen uint64, cat activity.Category, err error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	current := gen == s.gen
	s.mu.Unlock()

	if current {
		s.onError(cat, err)
	}
}

// Snapshot reads the five buckets once and returns the merged view.
func Snapshot(ctx context.Context, lister BucketLister, childID, dateKey string) ([]activity.Record, error) {
	if childID == "" {
		return nil, fmt.Errorf("%w: child id required", activity.ErrInvalidInput)
	}
	key, err := activity.ParseDateKey(dateKey)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[activity.Category][]activity.Record, len(activity.Categories))
	for _, cat := range activity.Categories {
		recs, err := lister.ListBucket(ctx, activity.Bucket{ChildID: childID, Category: cat, DateKey: key})
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", cat, err)
		}
		byCategory[cat] = recs
	}
	return Merge(byCategory), nil
}
