package activity

import "context"

// Store persists current records and their history. Create stamps
// RecordedAt; Update stamps LastModifiedAt and hist.EditedAt with the same
// server time. Update and Delete write hist before touching the record, in a
// single transaction.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, rec *Record, hist *HistoryEntry) error
	Delete(ctx context.Context, id string, hist *HistoryEntry) error
	ListBucket(ctx context.Context, bucket Bucket) ([]Record, error)
	ListRecordHistory(ctx context.Context, recordID string, limit int) ([]HistoryEntry, error)
}
