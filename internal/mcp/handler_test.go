package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/stretchr/testify/require"
)

type activityStub struct {
	createFn  func(context.Context, activity.CreateRequest) (*activity.Record, error)
	updateFn  func(context.Context, activity.UpdateRequest) (*activity.Record, error)
	deleteFn  func(context.Context, activity.DeleteRequest) error
	getFn     func(context.Context, string) (*activity.Record, error)
	historyFn func(context.Context, string, int) ([]activity.HistoryEntry, error)
	loc       *time.Location
}

func (a activityStub) Create(ctx context.Context, req activity.CreateRequest) (*activity.Record, error) {
	return a.createFn(ctx, req)
}
func (a activityStub) Update(ctx context.Context, req activity.UpdateRequest) (*activity.Record, error) {
	return a.updateFn(ctx, req)
}
func (a activityStub) Delete(ctx context.Context, req activity.DeleteRequest) error {
	return a.deleteFn(ctx, req)
}
func (a activityStub) Get(ctx context.Context, id string) (*activity.Record, error) {
	return a.getFn(ctx, id)
}
func (a activityStub) History(ctx context.Context, id string, limit int) ([]activity.HistoryEntry, error) {
	return a.historyFn(ctx, id, limit)
}
func (a activityStub) Location() *time.Location {
	if a.loc == nil {
		return time.UTC
	}
	return a.loc
}

type timelineStub struct {
	snapshotFn func(context.Context, string, string) ([]activity.Record, error)
}

func (t timelineStub) Snapshot(ctx context.Context, childID, dateKey string) ([]activity.Record, error) {
	return t.snapshotFn(ctx, childID, dateKey)
}

type auditStub struct {
	listFn func(context.Context, audit.Filter, int) ([]audit.Entry, error)
}

func (a auditStub) List(ctx context.Context, filter audit.Filter, limit int) ([]audit.Entry, error) {
	return a.listFn(ctx, filter, limit)
}

type childStub struct {
	createFn func(context.Context, child.CreateRequest) (*child.Child, error)
	listFn   func(context.Context) ([]child.Child, error)
}

func (c childStub) Create(ctx context.Context, req child.CreateRequest) (*child.Child, error) {
	return c.createFn(ctx, req)
}
func (c childStub) List(ctx context.Context) ([]child.Child, error) {
	return c.listFn(ctx)
}

var staff = activity.Author{ID: "u1", Label: "Ms. Rivera"}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %v", err)
	require.Equal(t, code, apiErr.Code)
}

func TestHandler_CreateActivity(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	var got activity.CreateRequest
	handler := NewHandler(Services{Activities: activityStub{
		loc: est,
		createFn: func(_ context.Context, req activity.CreateRequest) (*activity.Record, error) {
			got = req
			return &activity.Record{ID: "a1", ChildID: req.ChildID, Category: req.Category}, nil
		},
	}})

	out, err := handler.Handle(context.Background(), staff, "create_activity", mustJSON(t, CreateActivityParams{
		ChildID:    "c1",
		Category:   "food",
		OccurredAt: "2024-01-15 12:30",
		Payload:    activity.Payload{Food: &activity.FoodData{Item: "Lunch", Amount: activity.AmountSome}},
	}))
	require.NoError(t, err)
	require.Equal(t, "a1", out.(*activity.Record).ID)
	require.Equal(t, activity.CategoryFood, got.Category)
	require.Equal(t, staff, got.Author)
	require.True(t, got.OccurredAt.Equal(time.Date(2024, 1, 15, 17, 30, 0, 0, time.UTC)))
}

func TestHandler_CreateActivityRejectsBadInput(t *testing.T) {
	handler := NewHandler(Services{Activities: activityStub{
		createFn: func(_ context.Context, _ activity.CreateRequest) (*activity.Record, error) {
			return nil, fmt.Errorf("%w: food item required", activity.ErrInvalidPayload)
		},
	}})
	ctx := context.Background()

	_, err := handler.CreateActivity(ctx, staff, CreateActivityParams{ChildID: "c1", Category: "Recess", OccurredAt: "2024-01-15T12:00:00Z"})
	requireCode(t, err, "INVALID_CATEGORY")

	_, err = handler.CreateActivity(ctx, staff, CreateActivityParams{ChildID: "c1", Category: "Food", OccurredAt: "lunchtime"})
	requireCode(t, err, "INVALID_INPUT")

	_, err = handler.CreateActivity(ctx, staff, CreateActivityParams{ChildID: "c1", Category: "Food", OccurredAt: "2024-01-15T12:00:00Z"})
	requireCode(t, err, "INVALID_PAYLOAD")

	_, err = handler.Handle(ctx, staff, "create_activity", json.RawMessage(`{"child_id":`))
	requireCode(t, err, "INVALID_INPUT")
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	var update activity.UpdateRequest
	var del activity.DeleteRequest
	handler := NewHandler(Services{Activities: activityStub{
		updateFn: func(_ context.Context, req activity.UpdateRequest) (*activity.Record, error) {
			update = req
			return &activity.Record{ID: req.ID}, nil
		},
		deleteFn: func(_ context.Context, req activity.DeleteRequest) error {
			del = req
			return nil
		},
	}})
	ctx := context.Background()

	notes := "ate well"
	at := "2024-01-16T09:00:00Z"
	_, err := handler.Handle(ctx, staff, "update_activity", mustJSON(t, UpdateActivityParams{ID: "a1", Notes: &notes, OccurredAt: &at}))
	require.NoError(t, err)
	require.Equal(t, "a1", update.ID)
	require.Equal(t, &notes, update.Notes)
	require.Nil(t, update.Payload)
	require.NotNil(t, update.OccurredAt)
	require.True(t, update.OccurredAt.Equal(time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)))
	require.Equal(t, staff, update.Author)

	out, err := handler.Handle(ctx, staff, "delete_activity", mustJSON(t, DeleteActivityParams{ID: "a1"}))
	require.NoError(t, err)
	require.Equal(t, DeleteActivityResponse{ID: "a1", Deleted: true}, out)
	require.Equal(t, activity.DeleteRequest{ID: "a1", Author: staff}, del)
}

func TestHandler_MapsNotFoundAndUnavailable(t *testing.T) {
	handler := NewHandler(Services{Activities: activityStub{
		deleteFn: func(_ context.Context, _ activity.DeleteRequest) error {
			return fmt.Errorf("deleting a1: %w", activity.ErrNotFound)
		},
		getFn: func(_ context.Context, _ string) (*activity.Record, error) {
			return nil, fmt.Errorf("%w: disk I/O error", activity.ErrStoreUnavailable)
		},
	}})
	ctx := context.Background()

	_, err := handler.DeleteActivity(ctx, staff, DeleteActivityParams{ID: "a1"})
	requireCode(t, err, "NOT_FOUND")

	_, err = handler.GetActivity(ctx, GetActivityParams{ID: "a1"})
	requireCode(t, err, "STORE_UNAVAILABLE")
}

func TestHandler_DailyTimeline(t *testing.T) {
	var gotChild, gotDate string
	handler := NewHandler(Services{
		Activities: activityStub{loc: time.FixedZone("EST", -5*60*60)},
		Timeline: timelineStub{snapshotFn: func(_ context.Context, childID, dateKey string) ([]activity.Record, error) {
			gotChild, gotDate = childID, dateKey
			return nil, nil
		}},
	})
	handler.now = func() time.Time { return time.Date(2024, 1, 16, 2, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	out, err := handler.DailyTimeline(ctx, DailyTimelineParams{ChildID: "c1"})
	require.NoError(t, err)
	require.Equal(t, "c1", gotChild)
	require.Equal(t, "2024-01-15", gotDate)
	require.NotNil(t, out.Records)
	require.Empty(t, out.Records)

	_, err = handler.DailyTimeline(ctx, DailyTimelineParams{ChildID: "c1", Date: "2024-02-01"})
	require.NoError(t, err)
	require.Equal(t, "2024-02-01", gotDate)

	_, err = handler.DailyTimeline(ctx, DailyTimelineParams{ChildID: "c1", Date: "02/01/2024"})
	requireCode(t, err, "INVALID_INPUT")

	_, err = handler.DailyTimeline(ctx, DailyTimelineParams{})
	requireCode(t, err, "INVALID_INPUT")
}

func TestHandler_ListAuditEntries(t *testing.T) {
	var gotFilter audit.Filter
	var gotLimit int
	handler := NewHandler(Services{Audit: auditStub{listFn: func(_ context.Context, filter audit.Filter, limit int) ([]audit.Entry, error) {
		gotFilter, gotLimit = filter, limit
		if filter.EditKind == "rename" {
			return nil, audit.ErrInvalidFilter
		}
		return []audit.Entry{{ID: "e1"}}, nil
	}}})
	ctx := context.Background()

	out, err := handler.Handle(ctx, staff, "list_audit_entries", mustJSON(t, ListAuditEntriesParams{ChildID: "c1", EditKind: " Delete ", Limit: 5}))
	require.NoError(t, err)
	require.Len(t, out.(ListAuditEntriesResponse).Entries, 1)
	require.Equal(t, audit.Filter{ChildID: "c1", EditKind: activity.EditDelete}, gotFilter)
	require.Equal(t, 5, gotLimit)

	_, err = handler.ListAuditEntries(ctx, ListAuditEntriesParams{EditKind: "rename"})
	requireCode(t, err, "INVALID_INPUT")
}

func TestHandler_Children(t *testing.T) {
	handler := NewHandler(Services{Children: childStub{
		createFn: func(_ context.Context, req child.CreateRequest) (*child.Child, error) {
			return &child.Child{ID: "c1", FirstName: req.FirstName}, nil
		},
		listFn: func(_ context.Context) ([]child.Child, error) {
			return nil, nil
		},
	}})
	ctx := context.Background()

	out, err := handler.Handle(ctx, staff, "create_child", mustJSON(t, CreateChildParams{FirstName: "Ava"}))
	require.NoError(t, err)
	require.Equal(t, "Ava", out.(*child.Child).FirstName)

	out, err = handler.Handle(ctx, staff, "list_children", nil)
	require.NoError(t, err)
	require.NotNil(t, out.(ListChildrenResponse).Children)
}

func TestHandler_UnknownMethod(t *testing.T) {
	handler := NewHandler(Services{})
	_, err := handler.Handle(context.Background(), staff, "drop_tables", nil)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))
	require.Equal(t, "NOT_FOUND", MapError(child.ErrChildNotFound).Code)
	require.Equal(t, "INVALID_INPUT", MapError(child.ErrInvalidInput).Code)
	wrapped := &APIError{Code: "CUSTOM", Message: "x"}
	require.Same(t, wrapped, MapError(fmt.Errorf("ctx: %w", wrapped)))
}
