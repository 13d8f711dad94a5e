package audit

import (
	"context"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/child"
)

// ChildDirectory lists the children whose records are audited.
type ChildDirectory interface {
	List(ctx context.Context) ([]child.Child, error)
	Get(ctx context.Context, id string) (*child.Child, error)
}

// Source reads current records and their history for one child and category.
type Source interface {
	ListByChild(ctx context.Context, childID string, category activity.Category) ([]activity.Record, error)
	ListHistory(ctx context.Context, childID string, category activity.Category, perRecordLimit int) ([]activity.HistoryEntry, error)
}
