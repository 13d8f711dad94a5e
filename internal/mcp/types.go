package mcp

import (
	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/rpggio/carelog/internal/domain/child"
)

type CreateActivityParams struct {
	ChildID    string           `json:"child_id" jsonschema:"Child the activity belongs to"`
	Category   string           `json:"category" jsonschema:"One of Bathroom, Sleep, Activities, Food, Needs"`
	OccurredAt string           `json:"occurred_at" jsonschema:"When it happened. RFC3339, or local time as YYYY-MM-DD HH:MM"`
	Payload    activity.Payload `json:"payload" jsonschema:"Exactly one variant, matching the category"`
	Notes      string           `json:"notes,omitempty" jsonschema:"Free-text notes"`
}

type UpdateActivityParams struct {
	ID         string            `json:"id" jsonschema:"Record id"`
	Payload    *activity.Payload `json:"payload,omitempty" jsonschema:"Replacement payload; must match the record's category"`
	Notes      *string           `json:"notes,omitempty" jsonschema:"Replacement notes"`
	OccurredAt *string           `json:"occurred_at,omitempty" jsonschema:"Replacement time; may move the record to another day"`
}

type DeleteActivityParams struct {
	ID string `json:"id" jsonschema:"Record id"`
}

type GetActivityParams struct {
	ID string `json:"id" jsonschema:"Record id"`
}

type ActivityHistoryParams struct {
	ID    string `json:"id" jsonschema:"Record id"`
	Limit int    `json:"limit,omitempty" jsonschema:"Max entries, newest first (default all)"`
}

type DailyTimelineParams struct {
	ChildID string `json:"child_id" jsonschema:"Child id"`
	Date    string `json:"date,omitempty" jsonschema:"Local day as YYYY-MM-DD (default today)"`
}

type ListAuditEntriesParams struct {
	ChildID  string `json:"child_id,omitempty" jsonschema:"Restrict to one child (default all)"`
	EditKind string `json:"edit_kind,omitempty" jsonschema:"create, update or delete (default all)"`
	Limit    int    `json:"limit,omitempty" jsonschema:"Max entries (default 100)"`
}

type CreateChildParams struct {
	ID        string `json:"id,omitempty" jsonschema:"Child id (generated when omitted)"`
	FirstName string `json:"first_name" jsonschema:"First name"`
	LastName  string `json:"last_name,omitempty" jsonschema:"Last name"`
}

type ListChildrenParams struct{}

type DeleteActivityResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ActivityHistoryResponse struct {
	RecordID string                  `json:"record_id"`
	Entries  []activity.HistoryEntry `json:"entries"`
}

type DailyTimelineResponse struct {
	ChildID string            `json:"child_id"`
	Date    string            `json:"date"`
	Records []activity.Record `json:"records"`
}

type ListAuditEntriesResponse struct {
	Entries []audit.Entry `json:"entries"`
}

type ListChildrenResponse struct {
	Children []child.Child `json:"children"`
}
