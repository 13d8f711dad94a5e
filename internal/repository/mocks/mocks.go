package mocks

import (
	"context"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/stretchr/testify/mock"
)

// ActivityStore is a mock for activity.Store.
type ActivityStore struct {
	mock.Mock
}

func (m *ActivityStore) Create(ctx context.Context, rec *activity.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *ActivityStore) Get(ctx context.Context, id string) (*activity.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*activity.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityStore) Update(ctx context.Context, rec *activity.Record, hist *activity.HistoryEntry) error {
	args := m.Called(ctx, rec, hist)
	return args.Error(0)
}

func (m *ActivityStore) Delete(ctx context.Context, id string, hist *activity.HistoryEntry) error {
	args := m.Called(ctx, id, hist)
	return args.Error(0)
}

func (m *ActivityStore) ListBucket(ctx context.Context, bucket activity.Bucket) ([]activity.Record, error) {
	args := m.Called(ctx, bucket)
	if list, ok := args.Get(0).([]activity.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityStore) ListRecordHistory(ctx context.Context, recordID string, limit int) ([]activity.HistoryEntry, error) {
	args := m.Called(ctx, recordID, limit)
	if list, ok := args.Get(0).([]activity.HistoryEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditSource is a mock for audit.Source.
type AuditSource struct {
	mock.Mock
}

func (m *AuditSource) ListByChild(ctx context.Context, childID string, category activity.Category) ([]activity.Record, error) {
	args := m.Called(ctx, childID, category)
	if list, ok := args.Get(0).([]activity.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *AuditSource) ListHistory(ctx context.Context, childID string, category activity.Category, perRecordLimit int) ([]activity.HistoryEntry, error) {
	args := m.Called(ctx, childID, category, perRecordLimit)
	if list, ok := args.Get(0).([]activity.HistoryEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChildRepository is a mock for child.Repository. It also satisfies
// audit.ChildDirectory.
type ChildRepository struct {
	mock.Mock
}

func (m *ChildRepository) Create(ctx context.Context, c *child.Child) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ChildRepository) Get(ctx context.Context, id string) (*child.Child, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*child.Child); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChildRepository) List(ctx context.Context) ([]child.Child, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]child.Child); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ChildRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
