package activity

import (
	"fmt"
	"strings"
	"time"
)

// Category names one of the fixed activity kinds a caregiver can log.
type Category string

const (
	CategoryBathroom   Category = "Bathroom"
	CategorySleep      Category = "Sleep"
	CategoryActivities Category = "Activities"
	CategoryFood       Category = "Food"
	CategoryNeeds      Category = "Needs"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryBathroom,
	CategorySleep,
	CategoryActivities,
	CategoryFood,
	CategoryNeeds,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	for _, known := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// EditKind classifies an entry in the audit trail.
type EditKind string

const (
	EditCreate EditKind = "create"
	EditUpdate EditKind = "update"
	EditDelete EditKind = "delete"
)

// Valid reports whether k is a known edit kind.
func (k EditKind) Valid() bool {
	return k == EditCreate || k == EditUpdate || k == EditDelete
}

// Author identifies whoever created or last touched a record.
type Author struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Record is the current state of one logged activity.
type Record struct {
	ID             string     `json:"id"`
	ChildID        string     `json:"child_id"`
	Category       Category   `json:"category"`
	DateKey        string     `json:"date_key"`
	OccurredAt     time.Time  `json:"occurred_at"`
	RecordedAt     time.Time  `json:"recorded_at"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	Payload        Payload    `json:"payload"`
	Notes          string     `json:"notes,omitempty"`
	Author         Author     `json:"author"`
	CreatedBy      Author     `json:"created_by"`
}

// Bucket returns the grouping key the record is stored under.
func (r *Record) Bucket() Bucket {
	return Bucket{ChildID: r.ChildID, Category: r.Category, DateKey: r.DateKey}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	if r.LastModifiedAt != nil {
		t := *r.LastModifiedAt
		out.LastModifiedAt = &t
	}
	out.Payload = r.Payload.Clone()
	return &out
}

// HistoryEntry is an immutable pre-image of a record, written before every
// update or delete.
type HistoryEntry struct {
	ID       string    `json:"id"`
	RecordID string    `json:"record_id"`
	ChildID  string    `json:"child_id"`
	Category Category  `json:"category"`
	DateKey  string    `json:"date_key"`
	EditKind EditKind  `json:"edit_kind"`
	Snapshot Record    `json:"snapshot"`
	EditedAt time.Time `json:"edited_at"`
	EditedBy Author    `json:"edited_by"`
}
