package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/repository"
	"github.com/rpggio/carelog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var est = time.FixedZone("EST", -5*3600)

func bathroomPayload(urinated, bm bool) activity.Payload {
	return activity.Payload{Bathroom: &activity.BathroomData{Urinated: urinated, BM: bm}}
}

func existing() *activity.Record {
	return &activity.Record{
		ID:         "r1",
		ChildID:    "c1",
		Category:   activity.CategoryBathroom,
		DateKey:    "2024-03-01",
		OccurredAt: time.Date(2024, 3, 1, 8, 0, 0, 0, est),
		RecordedAt: time.Date(2024, 3, 1, 13, 0, 5, 0, time.UTC),
		Payload:    bathroomPayload(true, false),
		Author:     activity.Author{ID: "u1", Label: "AB"},
		CreatedBy:  activity.Author{ID: "u1", Label: "AB"},
	}
}

func TestActivityService_Create(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Create", ctx, mock.Anything).Return(nil)

	svc := activity.NewService(store, est, nil)
	rec, err := svc.Create(ctx, activity.CreateRequest{
		ChildID:    "c1",
		Category:   activity.CategoryBathroom,
		OccurredAt: time.Date(2024, 3, 1, 8, 0, 0, 0, est),
		Payload:    bathroomPayload(true, false),
		Author:     activity.Author{ID: "u1", Label: "AB"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, "2024-03-01", rec.DateKey)
	require.Equal(t, "AB", rec.CreatedBy.Label)
	store.AssertNumberOfCalls(t, "Create", 1)
}

func TestActivityService_CreateBucketsInLocalTime(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Create", ctx, mock.Anything).Return(nil)
	svc := activity.NewService(store, est, nil)

	late, err := svc.Create(ctx, activity.CreateRequest{
		ChildID:    "c1",
		Category:   activity.CategorySleep,
		OccurredAt: time.Date(2024, 3, 1, 23, 58, 0, 0, est),
		Payload:    activity.Payload{Sleep: &activity.SleepData{Nap: activity.NapNone}},
	})
	require.NoError(t, err)

	early, err := svc.Create(ctx, activity.CreateRequest{
		ChildID:    "c1",
		Category:   activity.CategorySleep,
		OccurredAt: time.Date(2024, 3, 2, 0, 2, 0, 0, est),
		Payload:    activity.Payload{Sleep: &activity.SleepData{Nap: activity.NapNone}},
	})
	require.NoError(t, err)

	// Both fall on 2024-03-02 in UTC.
	require.Equal(t, "2024-03-01", late.DateKey)
	require.Equal(t, "2024-03-02", early.DateKey)
}

func TestActivityService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	svc := activity.NewService(store, est, nil)
	occurred := time.Date(2024, 3, 1, 8, 0, 0, 0, est)

	_, err := svc.Create(ctx, activity.CreateRequest{ChildID: "c1", Category: "Recess", OccurredAt: occurred})
	require.ErrorIs(t, err, activity.ErrInvalidCategory)

	_, err = svc.Create(ctx, activity.CreateRequest{Category: activity.CategoryBathroom, OccurredAt: occurred, Payload: bathroomPayload(true, false)})
	require.ErrorIs(t, err, activity.ErrInvalidInput)

	_, err = svc.Create(ctx, activity.CreateRequest{ChildID: "c1", Category: activity.CategoryBathroom, Payload: bathroomPayload(true, false)})
	require.ErrorIs(t, err, activity.ErrInvalidInput)

	_, err = svc.Create(ctx, activity.CreateRequest{
		ChildID: "c1", Category: activity.CategoryFood, OccurredAt: occurred, Payload: bathroomPayload(true, false),
	})
	require.ErrorIs(t, err, activity.ErrInvalidPayload)

	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestActivityService_UpdateSnapshotsPreImage(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Get", ctx, "r1").Return(existing(), nil)

	var hist *activity.HistoryEntry
	var written *activity.Record
	store.On("Update", ctx, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).(*activity.Record)
		hist = args.Get(2).(*activity.HistoryEntry)
	}).Return(nil)

	svc := activity.NewService(store, est, nil)
	payload := bathroomPayload(true, true)
	rec, err := svc.Update(ctx, activity.UpdateRequest{
		ID:      "r1",
		Payload: &payload,
		Author:  activity.Author{ID: "u2", Label: "CD"},
	})
	require.NoError(t, err)
	require.True(t, rec.Payload.Bathroom.BM)
	require.Equal(t, "CD", rec.Author.Label)
	require.Equal(t, "AB", rec.CreatedBy.Label)
	require.Equal(t, written, rec)

	require.Equal(t, activity.EditUpdate, hist.EditKind)
	require.Equal(t, "r1", hist.RecordID)
	require.NotEqual(t, "r1", hist.ID)
	require.False(t, hist.Snapshot.Payload.Bathroom.BM)
	require.Equal(t, "CD", hist.EditedBy.Label)
}

func TestActivityService_UpdateMovesDate(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Get", ctx, "r1").Return(existing(), nil)
	store.On("Update", ctx, mock.Anything, mock.Anything).Return(nil)

	svc := activity.NewService(store, est, nil)
	moved := time.Date(2024, 3, 2, 7, 0, 0, 0, est)
	rec, err := svc.Update(ctx, activity.UpdateRequest{ID: "r1", OccurredAt: &moved})
	require.NoError(t, err)
	require.Equal(t, "2024-03-02", rec.DateKey)
	require.Equal(t, "r1", rec.ID)
	require.Equal(t, existing().RecordedAt, rec.RecordedAt)
}

func TestActivityService_UpdateValidation(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Get", ctx, "r1").Return(existing(), nil)
	svc := activity.NewService(store, est, nil)

	_, err := svc.Update(ctx, activity.UpdateRequest{ID: "r1"})
	require.ErrorIs(t, err, activity.ErrInvalidInput)

	food := activity.Payload{Food: &activity.FoodData{Item: "Toast", Amount: activity.AmountAll}}
	_, err = svc.Update(ctx, activity.UpdateRequest{ID: "r1", Payload: &food})
	require.ErrorIs(t, err, activity.ErrInvalidPayload)

	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivityService_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Get", ctx, "gone").Return((*activity.Record)(nil), repository.ErrNotFound)

	svc := activity.NewService(store, est, nil)
	notes := "late"
	_, err := svc.Update(ctx, activity.UpdateRequest{ID: "gone", Notes: &notes})
	require.ErrorIs(t, err, activity.ErrNotFound)
}

func TestActivityService_UpdateRacesDelete(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Get", ctx, "r1").Return(existing(), nil)
	store.On("Update", ctx, mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	svc := activity.NewService(store, est, nil)
	notes := "late"
	_, err := svc.Update(ctx, activity.UpdateRequest{ID: "r1", Notes: &notes})
	require.ErrorIs(t, err, activity.ErrNotFound)
}

func TestActivityService_Delete(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Get", ctx, "r1").Return(existing(), nil)
	store.On("Delete", ctx, "r1", mock.MatchedBy(func(h *activity.HistoryEntry) bool {
		return h.EditKind == activity.EditDelete && h.Snapshot.ID == "r1" && h.EditedBy.Label == "CD"
	})).Return(nil)

	svc := activity.NewService(store, est, nil)
	require.NoError(t, svc.Delete(ctx, activity.DeleteRequest{ID: "r1", Author: activity.Author{Label: "CD"}}))
	store.AssertExpectations(t)
}

func TestActivityService_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	store.On("Get", ctx, "gone").Return((*activity.Record)(nil), repository.ErrNotFound)

	svc := activity.NewService(store, est, nil)
	err := svc.Delete(ctx, activity.DeleteRequest{ID: "gone"})
	require.ErrorIs(t, err, activity.ErrNotFound)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestActivityService_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := &mocks.ActivityStore{}
	busy := errors.Join(repository.ErrUnavailable, errors.New("database is locked"))
	store.On("Create", ctx, mock.Anything).Return(busy)
	store.On("ListRecordHistory", ctx, "r1", 10).Return(nil, busy)

	svc := activity.NewService(store, est, nil)
	_, err := svc.Create(ctx, activity.CreateRequest{
		ChildID:    "c1",
		Category:   activity.CategoryBathroom,
		OccurredAt: time.Date(2024, 3, 1, 8, 0, 0, 0, est),
		Payload:    bathroomPayload(true, false),
	})
	require.ErrorIs(t, err, activity.ErrStoreUnavailable)
	require.ErrorIs(t, err, repository.ErrUnavailable)

	_, err = svc.History(ctx, "r1", 10)
	require.ErrorIs(t, err, activity.ErrStoreUnavailable)
}
