package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/timeline"
)

// LegacyOptions controls how exported documents from the previous document
// store are mapped onto records.
type LegacyOptions struct {
	// ChildID is used when neither the document nor its path names a child.
	ChildID string
	// Location computes bucket dates when the document carries none.
	Location *time.Location
}

// legacyPath is children/{child}/activities/{date}_{category}/items/{id},
// optionally followed by /editHistory/{historyID}.
type legacyPath struct {
	childID   string
	dateKey   string
	category  string
	itemID    string
	historyID string
}

func parseLegacyPath(p string) (legacyPath, bool) {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) != 6 && len(parts) != 8 {
		return legacyPath{}, false
	}
	if parts[0] != "children" || parts[2] != "activities" || parts[4] != "items" {
		return legacyPath{}, false
	}
	date, cat, ok := strings.Cut(parts[3], "_")
	if !ok {
		return legacyPath{}, false
	}
	path := legacyPath{childID: parts[1], dateKey: date, category: cat, itemID: parts[5]}
	if len(parts) == 8 {
		if parts[6] != "editHistory" || parts[7] == "" {
			return legacyPath{}, false
		}
		path.historyID = parts[7]
	}
	return path, true
}

func documentPath(doc map[string]any) (legacyPath, error) {
	p, ok := doc["_path"].(string)
	if !ok {
		return legacyPath{}, nil
	}
	parsed, ok := parseLegacyPath(p)
	if !ok {
		return legacyPath{}, fmt.Errorf("%w: unrecognized document path %q", activity.ErrInvalidInput, p)
	}
	return parsed, nil
}

func isLegacyHistory(doc map[string]any) bool {
	path, err := documentPath(doc)
	return err == nil && path.historyID != ""
}

// NormalizeLegacy maps one exported document onto a record. Two shapes are
// accepted: the flat activities collection (childId, activityType, data) and
// per-bucket items addressed by a "_path" field.
func NormalizeLegacy(doc map[string]any, opts LegacyOptions) (*activity.Record, error) {
	path, err := documentPath(doc)
	if err != nil {
		return nil, err
	}
	if path.historyID != "" {
		return nil, fmt.Errorf("%w: %s is an edit history document", activity.ErrInvalidInput, doc["_path"])
	}
	return normalizeRecord(doc, path, opts)
}

// NormalizeLegacyHistory maps one editHistory document onto a history entry.
// The document holds the item's fields as they were before the edit, plus
// editedAt/deletedAt, editedBy/deletedBy and an optional editType.
func NormalizeLegacyHistory(doc map[string]any, opts LegacyOptions) (*activity.HistoryEntry, error) {
	path, err := documentPath(doc)
	if err != nil {
		return nil, err
	}
	if path.historyID == "" {
		return nil, fmt.Errorf("%w: edit history needs an .../editHistory/{id} path", activity.ErrInvalidInput)
	}

	snapshot, err := normalizeRecord(doc, path, opts)
	if err != nil {
		return nil, err
	}

	kind := activity.EditUpdate
	switch strings.ToLower(str(doc, "editType")) {
	case "delete":
		kind = activity.EditDelete
	case "update":
	default:
		if !timeline.Resolve(doc["deletedAt"]).Equal(timeline.Epoch) {
			kind = activity.EditDelete
		}
	}

	return &activity.HistoryEntry{
		ID:       path.itemID + "-" + path.historyID,
		RecordID: snapshot.ID,
		ChildID:  snapshot.ChildID,
		Category: snapshot.Category,
		DateKey:  snapshot.DateKey,
		EditKind: kind,
		Snapshot: *snapshot,
		EditedAt: timeline.Resolve(doc["editedAt"], doc["deletedAt"], doc["updatedAt"]).UTC(),
		EditedBy: activity.Author{
			Label: firstString(str(doc, "editedBy"), str(doc, "deletedBy"), "Unknown"),
		},
	}, nil
}

func normalizeRecord(doc map[string]any, path legacyPath, opts LegacyOptions) (*activity.Record, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	rec := &activity.Record{
		ID:      firstString(str(doc, "id"), path.itemID),
		ChildID: firstString(str(doc, "childId"), path.childID, opts.ChildID),
	}
	if path.historyID != "" {
		rec.ID = path.itemID
	}
	if rec.ID == "" || rec.ChildID == "" {
		return nil, fmt.Errorf("%w: document needs an id and a child", activity.ErrInvalidInput)
	}

	cat, err := activity.ParseCategory(firstString(str(doc, "activityType"), str(doc, "category"), path.category))
	if err != nil {
		return nil, err
	}
	rec.Category = cat

	rec.OccurredAt = timeline.Resolve(doc["timestamp"], doc["createdAt"]).UTC()
	rec.RecordedAt = timeline.Resolve(doc["createdAt"], doc["timestamp"]).UTC()
	if updated := timeline.Resolve(doc["updatedAt"]); !updated.Equal(timeline.Epoch) {
		u := updated.UTC()
		rec.LastModifiedAt = &u
	}

	rec.DateKey = firstString(str(doc, "date"), path.dateKey)
	if rec.DateKey == "" {
		rec.DateKey = activity.DateKey(rec.OccurredAt, loc)
	}
	if rec.DateKey, err = activity.ParseDateKey(rec.DateKey); err != nil {
		return nil, err
	}

	data, _ := doc["data"].(map[string]any)
	field := func(key string) any {
		if v, ok := doc[key]; ok {
			return v
		}
		if data != nil {
			return data[key]
		}
		return nil
	}

	notes := firstString(str(doc, "notes"), str(data, "notes"))
	rec.Payload, notes, err = legacyPayload(cat, field, notes)
	if err != nil {
		return nil, err
	}
	rec.Notes = notes
	if err := rec.Payload.Validate(cat); err != nil {
		return nil, err
	}

	caregiver, _ := doc["caregiverInfo"].(map[string]any)
	rec.Author = activity.Author{
		ID:    str(caregiver, "id"),
		Label: firstString(str(doc, "lastModifiedBy"), str(caregiver, "initials"), "Unknown"),
	}
	rec.CreatedBy = activity.Author{
		ID:    str(caregiver, "id"),
		Label: firstString(str(doc, "createdBy"), str(caregiver, "initials"), "Unknown"),
	}
	return rec, nil
}

func legacyPayload(cat activity.Category, field func(string) any, notes string) (activity.Payload, string, error) {
	var p activity.Payload
	switch cat {
	case activity.CategoryBathroom:
		m, _ := field("bathroomData").(map[string]any)
		p.Bathroom = &activity.BathroomData{
			Urinated: boolean(m, "urinated"),
			BM:       boolean(m, "bm"),
			NoVoid:   boolean(m, "noVoid"),
		}
	case activity.CategorySleep:
		m, _ := field("napData").(map[string]any)
		switch {
		case boolean(m, "fullNap"):
			p.Sleep = &activity.SleepData{Nap: activity.NapFull}
		case boolean(m, "partialNap"):
			p.Sleep = &activity.SleepData{Nap: activity.NapPartial}
		case boolean(m, "noNap"):
			p.Sleep = &activity.SleepData{Nap: activity.NapNone}
		default:
			return p, notes, fmt.Errorf("%w: nap document has no nap flag set", activity.ErrInvalidPayload)
		}
	case activity.CategoryFood:
		m, _ := field("foodData").(map[string]any)
		p.Food = &activity.FoodData{Item: str(m, "item"), Amount: activity.Amount(str(m, "amount"))}
	case activity.CategoryActivities:
		m, _ := field("activityDetails").(map[string]any)
		p.Activities = &activity.ActivitiesData{
			Kind:   activity.ActivityKind(str(m, "activityCategory")),
			Detail: str(m, "detail"),
		}
	case activity.CategoryNeeds:
		var items []string
		if list, ok := field("needsData").([]any); ok {
			for _, v := range list {
				if s, ok := v.(string); ok {
					items = append(items, s)
				}
			}
		} else {
			items = strings.Split(notes, ",")
			notes = ""
		}
		p.Needs = parseNeeds(items)
	}
	return p, notes, nil
}

func parseNeeds(items []string) *activity.NeedsData {
	n := &activity.NeedsData{}
	for _, raw := range items {
		item := strings.TrimSpace(raw)
		if item == "" {
			continue
		}
		if detail, ok := strings.CutPrefix(item, "Other:"); ok {
			n.Items = append(n.Items, activity.NeedOther)
			n.OtherDetail = strings.TrimSpace(detail)
			continue
		}
		n.Items = append(n.Items, activity.Need(item))
	}
	return n
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func boolean(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	b, _ := m[key].(bool)
	return b
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ImportStats summarizes a legacy import.
type ImportStats struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ImportLegacy reads a stream of JSON documents (one per line or
// concatenated), normalizes each and inserts it with its original
// timestamps. editHistory documents become history entries. Documents
// already present are skipped; malformed ones are logged and counted as
// failed.
func (s *ActivityStore) ImportLegacy(ctx context.Context, r io.Reader, opts LegacyOptions, logger *slog.Logger) (ImportStats, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var stats ImportStats

	dec := json.NewDecoder(r)
	dec.UseNumber()
	for n := 1; ; n++ {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return stats, nil
			}
			return stats, fmt.Errorf("decoding document %d: %w", n, err)
		}

		inserted, err := s.importDocument(ctx, doc, opts)
		if errors.Is(err, errMalformed) {
			stats.Failed++
			logger.Warn("skipping legacy document", "n", n, "error", err)
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("importing document %d: %w", n, err)
		}
		if inserted {
			stats.Imported++
		} else {
			stats.Skipped++
		}
	}
}

var errMalformed = errors.New("malformed legacy document")

func (s *ActivityStore) importDocument(ctx context.Context, doc map[string]any, opts LegacyOptions) (bool, error) {
	if isLegacyHistory(doc) {
		h, err := NormalizeLegacyHistory(doc, opts)
		if err != nil {
			return false, fmt.Errorf("%w: %w", errMalformed, err)
		}
		return s.ImportHistory(ctx, h)
	}
	rec, err := NormalizeLegacy(doc, opts)
	if err != nil {
		return false, fmt.Errorf("%w: %w", errMalformed, err)
	}
	return s.Import(ctx, rec)
}
