package timeline

import (
	"slices"
	"strings"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
)

// SortAscending orders items oldest first. Equal times are ordered by id
// ascending, so the result does not depend on input order.
func SortAscending[T any](items []T, key func(T) time.Time, id func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := key(a).Compare(key(b)); c != 0 {
			return c
		}
		return strings.Compare(id(a), id(b))
	})
}

// SortDescending orders items newest first. Equal times are still ordered by
// id ascending.
func SortDescending[T any](items []T, key func(T) time.Time, id func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := key(b).Compare(key(a)); c != 0 {
			return c
		}
		return strings.Compare(id(a), id(b))
	})
}

// RecordTime is the moment a record is ordered by: when it occurred, or
// when it was recorded if that is missing.
func RecordTime(r activity.Record) time.Time {
	return Resolve(r.OccurredAt, r.RecordedAt)
}

func recordID(r activity.Record) string { return r.ID }

// Merge flattens per-category records into one ascending day view. It always
// sorts from scratch and never mutates its input.
func Merge(byCategory map[activity.Category][]activity.Record) []activity.Record {
	n := 0
	for _, recs := range byCategory {
		n += len(recs)
	}
	out := make([]activity.Record, 0, n)
	for _, cat := range activity.Categories {
		out = append(out, byCategory[cat]...)
	}
	SortAscending(out, RecordTime, recordID)
	return out
}
