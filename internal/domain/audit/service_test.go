package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/rpggio/carelog/internal/repository"
	"github.com/rpggio/carelog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}

func emptySource(source *mocks.AuditSource, childID string) {
	source.On("ListByChild", mock.Anything, childID, mock.Anything).Return([]activity.Record{}, nil)
	source.On("ListHistory", mock.Anything, childID, mock.Anything, mock.Anything).Return([]activity.HistoryEntry{}, nil)
}

func bathroom(id string, recordedAt time.Time, by string) activity.Record {
	return activity.Record{
		ID:         id,
		ChildID:    "c1",
		Category:   activity.CategoryBathroom,
		DateKey:    "2024-03-01",
		OccurredAt: recordedAt,
		RecordedAt: recordedAt,
		Payload:    activity.Payload{Bathroom: &activity.BathroomData{Urinated: true}},
		CreatedBy:  activity.Author{ID: "u-" + by, Label: by},
		Author:     activity.Author{ID: "u-" + by, Label: by},
	}
}

func TestAuditService_DeletedRecordKeepsHistory(t *testing.T) {
	ctx := context.Background()
	children := &mocks.ChildRepository{}
	source := &mocks.AuditSource{}

	children.On("Get", ctx, "c1").Return(&child.Child{ID: "c1", FirstName: "Ada", LastName: "Lee"}, nil)
	pre := bathroom("r1", at(8, 0), "AB")
	source.On("ListByChild", ctx, "c1", activity.CategoryBathroom).Return([]activity.Record{}, nil)
	source.On("ListHistory", ctx, "c1", activity.CategoryBathroom, audit.DefaultHistoryPerRecord).Return([]activity.HistoryEntry{
		{ID: "h2", RecordID: "r1", ChildID: "c1", Category: activity.CategoryBathroom, EditKind: activity.EditDelete, Snapshot: pre, EditedAt: at(9, 0), EditedBy: activity.Author{Label: "CD"}},
		{ID: "h1", RecordID: "r1", ChildID: "c1", Category: activity.CategoryBathroom, EditKind: activity.EditUpdate, Snapshot: pre, EditedAt: at(8, 30), EditedBy: activity.Author{Label: "CD"}},
	}, nil)
	emptySource(source, "c1")

	svc := audit.NewService(children, source, audit.Config{}, nil)
	entries, err := svc.List(ctx, audit.Filter{ChildID: "c1"}, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, activity.EditDelete, entries[0].EditKind)
	require.Equal(t, activity.EditUpdate, entries[1].EditKind)
	require.Equal(t, "Ada Lee", entries[0].ChildName)
	require.Equal(t, "CD", entries[0].ActorLabel)
	require.Equal(t, "r1", entries[1].RecordID)
}

func TestAuditService_MergesCreateAndHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	children := &mocks.ChildRepository{}
	source := &mocks.AuditSource{}

	children.On("List", ctx).Return([]child.Child{{ID: "c1", FirstName: "Ada"}, {ID: "c2", FirstName: "Bo"}}, nil)
	current := bathroom("r1", at(8, 0), "AB")
	current.Notes = "after breakfast"
	source.On("ListByChild", ctx, "c1", activity.CategoryBathroom).Return([]activity.Record{current}, nil)
	source.On("ListHistory", ctx, "c1", activity.CategoryBathroom, 50).Return([]activity.HistoryEntry{
		{ID: "h1", RecordID: "r1", ChildID: "c1", Category: activity.CategoryBathroom, EditKind: activity.EditUpdate, Snapshot: current, EditedAt: at(8, 30), EditedBy: activity.Author{Label: "CD"}},
	}, nil)
	needs := activity.Record{
		ID: "n1", ChildID: "c2", Category: activity.CategoryNeeds, RecordedAt: at(10, 0),
		Payload:   activity.Payload{Needs: &activity.NeedsData{Items: []activity.Need{activity.NeedWipes}}},
		CreatedBy: activity.Author{Label: "EF"},
	}
	source.On("ListByChild", ctx, "c2", activity.CategoryNeeds).Return([]activity.Record{needs}, nil)
	emptySource(source, "c1")
	emptySource(source, "c2")

	svc := audit.NewService(children, source, audit.Config{}, nil)
	entries, err := svc.List(ctx, audit.Filter{}, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	require.Equal(t, "create-n1", entries[0].ID)
	require.Equal(t, "Wipes", entries[0].Notes)
	require.Equal(t, "Bo", entries[0].ChildName)
	require.Equal(t, "h1", entries[1].ID)
	require.Equal(t, "create-r1", entries[2].ID)
	require.Equal(t, activity.EditCreate, entries[2].EditKind)
	require.Equal(t, "AB", entries[2].ActorLabel)
	require.Equal(t, "after breakfast", entries[2].Notes)
	require.Equal(t, at(8, 0), entries[2].Timestamp)
}

func TestAuditService_FilterThenLimit(t *testing.T) {
	ctx := context.Background()
	children := &mocks.ChildRepository{}
	source := &mocks.AuditSource{}

	children.On("List", ctx).Return([]child.Child{{ID: "c1", FirstName: "Ada"}}, nil)
	source.On("ListByChild", ctx, "c1", activity.CategoryBathroom).Return([]activity.Record{
		bathroom("r1", at(8, 0), "AB"),
		bathroom("r2", at(9, 0), "AB"),
		bathroom("r3", at(10, 0), "AB"),
	}, nil)
	source.On("ListHistory", ctx, "c1", activity.CategoryBathroom, 5).Return([]activity.HistoryEntry{
		{ID: "h1", RecordID: "r1", ChildID: "c1", Category: activity.CategoryBathroom, EditKind: activity.EditUpdate, EditedAt: at(11, 0)},
	}, nil)
	emptySource(source, "c1")

	svc := audit.NewService(children, source, audit.Config{HistoryPerRecord: 5}, nil)
	entries, err := svc.List(ctx, audit.Filter{EditKind: activity.EditCreate}, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "create-r3", entries[0].ID)
	require.Equal(t, "create-r2", entries[1].ID)
}

func TestAuditService_TiesOrderedByID(t *testing.T) {
	ctx := context.Background()
	children := &mocks.ChildRepository{}
	source := &mocks.AuditSource{}

	children.On("List", ctx).Return([]child.Child{{ID: "c1"}}, nil)
	source.On("ListByChild", ctx, "c1", activity.CategoryBathroom).Return([]activity.Record{
		bathroom("b", at(8, 0), "AB"),
		bathroom("a", at(8, 0), "AB"),
	}, nil)
	emptySource(source, "c1")

	svc := audit.NewService(children, source, audit.Config{}, nil)
	for range 3 {
		entries, err := svc.List(ctx, audit.Filter{}, 0)
		require.NoError(t, err)
		require.Equal(t, "create-a", entries[0].ID)
		require.Equal(t, "create-b", entries[1].ID)
	}
}

func TestAuditService_UnknownChildStillWalked(t *testing.T) {
	ctx := context.Background()
	children := &mocks.ChildRepository{}
	source := &mocks.AuditSource{}

	children.On("Get", ctx, "gone").Return((*child.Child)(nil), repository.ErrNotFound)
	orphan := bathroom("r1", at(8, 0), "AB")
	orphan.ChildID = "gone"
	source.On("ListByChild", ctx, "gone", activity.CategoryBathroom).Return([]activity.Record{orphan}, nil)
	emptySource(source, "gone")

	svc := audit.NewService(children, source, audit.Config{}, nil)
	entries, err := svc.List(ctx, audit.Filter{ChildID: "gone"}, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Empty(t, entries[0].ChildName)
}

func TestAuditService_Errors(t *testing.T) {
	ctx := context.Background()

	svc := audit.NewService(&mocks.ChildRepository{}, &mocks.AuditSource{}, audit.Config{}, nil)
	_, err := svc.List(ctx, audit.Filter{EditKind: "rename"}, 0)
	require.ErrorIs(t, err, audit.ErrInvalidFilter)

	children := &mocks.ChildRepository{}
	source := &mocks.AuditSource{}
	children.On("List", ctx).Return([]child.Child{{ID: "c1"}}, nil)
	source.On("ListByChild", ctx, "c1", activity.CategoryBathroom).Return(nil, errors.Join(repository.ErrUnavailable, errors.New("database is locked")))

	svc = audit.NewService(children, source, audit.Config{}, nil)
	_, err = svc.List(ctx, audit.Filter{}, 0)
	require.ErrorIs(t, err, activity.ErrStoreUnavailable)
}
