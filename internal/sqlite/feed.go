package sqlite

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/metrics"
)

const feedQueryTimeout = 10 * time.Second

type bucketLister func(ctx context.Context, bucket activity.Bucket) ([]activity.Record, error)

// ChangeFeed re-reads a bucket and hands the result to its subscribers after
// every committed write to that bucket. Each subscription runs in its own
// goroutine; signals that arrive while a query is running coalesce into one
// follow-up query.
type ChangeFeed struct {
	list   bucketLister
	logger *slog.Logger

	mu       sync.Mutex
	watchers map[activity.Bucket]map[*watcher]struct{}
}

type watcher struct {
	bucket     activity.Bucket
	signal     chan struct{}
	stop       chan struct{}
	done       chan struct{}
	onSnapshot func([]activity.Record)
	onError    func(error)
}

func newChangeFeed(list bucketLister, logger *slog.Logger) *ChangeFeed {
	return &ChangeFeed{
		list:     list,
		logger:   logger,
		watchers: make(map[activity.Bucket]map[*watcher]struct{}),
	}
}

// Subscribe delivers the bucket's contents now and after every write to it.
// The returned cancel blocks until the subscription's goroutine has exited;
// calling it from inside a callback deadlocks.
func (f *ChangeFeed) Subscribe(bucket activity.Bucket, onSnapshot func([]activity.Record), onError func(error)) (func(), error) {
	if onSnapshot == nil {
		return nil, activity.ErrInvalidInput
	}
	if onError == nil {
		onError = func(error) {}
	}
	w := &watcher{
		bucket:     bucket,
		signal:     make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		onSnapshot: onSnapshot,
		onError:    onError,
	}
	w.signal <- struct{}{}

	f.mu.Lock()
	set := f.watchers[bucket]
	if set == nil {
		set = make(map[*watcher]struct{})
		f.watchers[bucket] = set
	}
	set[w] = struct{}{}
	f.mu.Unlock()

	metrics.FeedSubscribers.Inc()
	go f.run(w)

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.watchers[bucket], w)
			if len(f.watchers[bucket]) == 0 {
				delete(f.watchers, bucket)
			}
			f.mu.Unlock()

			close(w.stop)
			<-w.done
			metrics.FeedSubscribers.Dec()
		})
	}, nil
}

// Publish wakes every subscriber of the given buckets.
func (f *ChangeFeed) Publish(buckets ...activity.Bucket) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range buckets {
		for w := range f.watchers[b] {
			select {
			case w.signal <- struct{}{}:
			default:
			}
		}
	}
}

func (f *ChangeFeed) run(w *watcher) {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-w.signal:
		}

		ctx, cancel := context.WithTimeout(context.Background(), feedQueryTimeout)
		recs, err := f.list(ctx, w.bucket)
		cancel()

		select {
		case <-w.stop:
			return
		default:
		}

		if err != nil {
			metrics.FeedDeliveries.WithLabelValues("error").Inc()
			f.logger.Warn("bucket query failed", "bucket", w.bucket.String(), "error", err)
			w.onError(err)
			continue
		}
		metrics.FeedDeliveries.WithLabelValues("ok").Inc()
		w.onSnapshot(recs)
	}
}
