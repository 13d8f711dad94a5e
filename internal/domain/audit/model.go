package audit

import (
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
)

// Entry is one line of the audit feed. It is derived on read, never stored.
type Entry struct {
	ID         string            `json:"id"`
	RecordID   string            `json:"record_id"`
	ChildID    string            `json:"child_id"`
	ChildName  string            `json:"child_name"`
	Category   activity.Category `json:"category"`
	EditKind   activity.EditKind `json:"edit_kind"`
	Timestamp  time.Time         `json:"timestamp"`
	ActorLabel string            `json:"actor_label"`
	Notes      string            `json:"notes,omitempty"`
}

// Filter narrows the audit feed. Zero values match everything.
type Filter struct {
	ChildID  string
	EditKind activity.EditKind
}
