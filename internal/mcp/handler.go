package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/rpggio/carelog/internal/timeline"
)

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	Create(ctx context.Context, req activity.CreateRequest) (*activity.Record, error)
	Update(ctx context.Context, req activity.UpdateRequest) (*activity.Record, error)
	Delete(ctx context.Context, req activity.DeleteRequest) error
	Get(ctx context.Context, id string) (*activity.Record, error)
	History(ctx context.Context, id string, limit int) ([]activity.HistoryEntry, error)
	Location() *time.Location
}

// TimelineService defines the daily read path needed by MCP.
type TimelineService interface {
	Snapshot(ctx context.Context, childID, dateKey string) ([]activity.Record, error)
}

// AuditService defines audit feed operations needed by MCP.
type AuditService interface {
	List(ctx context.Context, filter audit.Filter, limit int) ([]audit.Entry, error)
}

// ChildService defines child directory operations needed by MCP.
type ChildService interface {
	Create(ctx context.Context, req child.CreateRequest) (*child.Child, error)
	List(ctx context.Context) ([]child.Child, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Activities ActivityService
	Timeline   TimelineService
	Audit      AuditService
	Children   ChildService
}

// Handler dispatches commands to domain services. MCP tools and the
// JSON-RPC endpoint share it.
type Handler struct {
	activities ActivityService
	timeline   TimelineService
	audit      AuditService
	children   ChildService
	now        func() time.Time
}

// NewHandler creates a new handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		activities: services.Activities,
		timeline:   services.Timeline,
		audit:      services.Audit,
		children:   services.Children,
		now:        time.Now,
	}
}

// Handle dispatches a named method with JSON params.
func (h *Handler) Handle(ctx context.Context, author activity.Author, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_activity":
		var req CreateActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.CreateActivity(ctx, author, req)
	case "update_activity":
		var req UpdateActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.UpdateActivity(ctx, author, req)
	case "delete_activity":
		var req DeleteActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.DeleteActivity(ctx, author, req)
	case "get_activity":
		var req GetActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.GetActivity(ctx, req)
	case "get_activity_history":
		var req ActivityHistoryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.ActivityHistory(ctx, req)
	case "get_daily_timeline":
		var req DailyTimelineParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.DailyTimeline(ctx, req)
	case "list_audit_entries":
		var req ListAuditEntriesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.ListAuditEntries(ctx, req)
	case "create_child":
		var req CreateChildParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.CreateChild(ctx, req)
	case "list_children":
		return h.ListChildren(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

// CreateActivity records a new activity.
func (h *Handler) CreateActivity(ctx context.Context, author activity.Author, req CreateActivityParams) (*activity.Record, error) {
	category, err := activity.ParseCategory(req.Category)
	if err != nil {
		return nil, mapError(err)
	}
	occurredAt, err := h.parseTime(req.OccurredAt)
	if err != nil {
		return nil, mapError(err)
	}
	rec, err := h.activities.Create(ctx, activity.CreateRequest{
		ChildID:    req.ChildID,
		Category:   category,
		OccurredAt: occurredAt,
		Payload:    req.Payload,
		Notes:      req.Notes,
		Author:     author,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

// UpdateActivity applies a partial update.
func (h *Handler) UpdateActivity(ctx context.Context, author activity.Author, req UpdateActivityParams) (*activity.Record, error) {
	update := activity.UpdateRequest{
		ID:      req.ID,
		Payload: req.Payload,
		Notes:   req.Notes,
		Author:  author,
	}
	if req.OccurredAt != nil {
		occurredAt, err := h.parseTime(*req.OccurredAt)
		if err != nil {
			return nil, mapError(err)
		}
		update.OccurredAt = &occurredAt
	}
	rec, err := h.activities.Update(ctx, update)
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

// DeleteActivity removes a record, leaving its history behind.
func (h *Handler) DeleteActivity(ctx context.Context, author activity.Author, req DeleteActivityParams) (DeleteActivityResponse, error) {
	if err := h.activities.Delete(ctx, activity.DeleteRequest{ID: req.ID, Author: author}); err != nil {
		return DeleteActivityResponse{}, mapError(err)
	}
	return DeleteActivityResponse{ID: req.ID, Deleted: true}, nil
}

// GetActivity returns the current version of a record.
func (h *Handler) GetActivity(ctx context.Context, req GetActivityParams) (*activity.Record, error) {
	rec, err := h.activities.Get(ctx, req.ID)
	if err != nil {
		return nil, mapError(err)
	}
	return rec, nil
}

// ActivityHistory lists prior versions of a record, newest first.
func (h *Handler) ActivityHistory(ctx context.Context, req ActivityHistoryParams) (ActivityHistoryResponse, error) {
	entries, err := h.activities.History(ctx, req.ID, req.Limit)
	if err != nil {
		return ActivityHistoryResponse{}, mapError(err)
	}
	if entries == nil {
		entries = []activity.HistoryEntry{}
	}
	return ActivityHistoryResponse{RecordID: req.ID, Entries: entries}, nil
}

// DailyTimeline returns the merged day view for a child.
func (h *Handler) DailyTimeline(ctx context.Context, req DailyTimelineParams) (DailyTimelineResponse, error) {
	if strings.TrimSpace(req.ChildID) == "" {
		return DailyTimelineResponse{}, mapError(fmt.Errorf("%w: child_id is required", activity.ErrInvalidInput))
	}
	dateKey := activity.DateKey(h.now(), h.activities.Location())
	if req.Date != "" {
		parsed, err := activity.ParseDateKey(req.Date)
		if err != nil {
			return DailyTimelineResponse{}, mapError(err)
		}
		dateKey = parsed
	}
	records, err := h.timeline.Snapshot(ctx, req.ChildID, dateKey)
	if err != nil {
		return DailyTimelineResponse{}, mapError(err)
	}
	if records == nil {
		records = []activity.Record{}
	}
	return DailyTimelineResponse{ChildID: req.ChildID, Date: dateKey, Records: records}, nil
}

// ListAuditEntries returns the derived change feed, newest first.
func (h *Handler) ListAuditEntries(ctx context.Context, req ListAuditEntriesParams) (ListAuditEntriesResponse, error) {
	entries, err := h.audit.List(ctx, audit.Filter{
		ChildID:  req.ChildID,
		EditKind: activity.EditKind(strings.ToLower(strings.TrimSpace(req.EditKind))),
	}, req.Limit)
	if err != nil {
		return ListAuditEntriesResponse{}, mapError(err)
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return ListAuditEntriesResponse{Entries: entries}, nil
}

// CreateChild adds a child to the directory.
func (h *Handler) CreateChild(ctx context.Context, req CreateChildParams) (*child.Child, error) {
	c, err := h.children.Create(ctx, child.CreateRequest{
		ID:        req.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// ListChildren lists the directory.
func (h *Handler) ListChildren(ctx context.Context) (ListChildrenResponse, error) {
	children, err := h.children.List(ctx)
	if err != nil {
		return ListChildrenResponse{}, mapError(err)
	}
	if children == nil {
		children = []child.Child{}
	}
	return ListChildrenResponse{Children: children}, nil
}

func (h *Handler) parseTime(value string) (time.Time, error) {
	t, ok := timeline.ParseLocal(value, h.activities.Location())
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unrecognized time %q", activity.ErrInvalidInput, value)
	}
	return t, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}
