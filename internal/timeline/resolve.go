// Package timeline merges activity records into a single ordered day view and
// keeps that view live while a caller watches a child's day.
package timeline

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// Epoch is the time Resolve returns when nothing resolves.
var Epoch = time.UnixMilli(0).UTC()

type toTimer interface{ ToTime() time.Time }

type asTimer interface{ AsTime() time.Time }

var (
	numericRe = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	// JS Date.toString output ends with a zone name in parentheses.
	zoneNameRe = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

var fallbackLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
	"1/2/2006, 3:04:05 PM",
	"1/2/2006",
}

// Resolve turns whatever a stored timestamp field holds into a time. It tries
// value first, then each fallback, and returns Epoch when none resolves. It
// never panics.
//
// Accepted shapes: values with ToTime or AsTime methods, time.Time and
// *time.Time, {seconds, nanoseconds} maps, numbers and numeric strings
// (signed, optionally fractional) as epoch milliseconds, and date strings.
func Resolve(value any, fallbacks ...any) time.Time {
	if t, ok := resolveOne(value); ok {
		return t
	}
	for _, fb := range fallbacks {
		if t, ok := resolveOne(fb); ok {
			return t
		}
	}
	return Epoch
}

func resolveOne(v any) (t time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case toTimer:
		t := x.ToTime()
		return t, !t.IsZero()
	case asTimer:
		t := x.AsTime()
		return t, !t.IsZero()
	case map[string]any:
		return fromSecondsMap(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return fromMillis(float64(i))
		}
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return fromMillis(f)
	case int:
		return fromMillis(float64(x))
	case int8:
		return fromMillis(float64(x))
	case int16:
		return fromMillis(float64(x))
	case int32:
		return fromMillis(float64(x))
	case int64:
		if x == 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(x), true
	case uint:
		return fromMillis(float64(x))
	case uint8:
		return fromMillis(float64(x))
	case uint16:
		return fromMillis(float64(x))
	case uint32:
		return fromMillis(float64(x))
	case uint64:
		return fromMillis(float64(x))
	case float32:
		return fromMillis(float64(x))
	case float64:
		return fromMillis(x)
	case string:
		return parseString(x)
	case *string:
		if x == nil {
			return time.Time{}, false
		}
		return parseString(*x)
	}
	return time.Time{}, false
}

func fromMillis(ms float64) (time.Time, bool) {
	if ms == 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

func fromSecondsMap(m map[string]any) (time.Time, bool) {
	secs, ok := number(m["seconds"])
	if !ok {
		secs, ok = number(m["_seconds"])
	}
	if !ok {
		return time.Time{}, false
	}
	nanos, ok := number(m["nanoseconds"])
	if !ok {
		nanos, _ = number(m["_nanoseconds"])
	}
	return time.Unix(int64(secs), int64(nanos)), true
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func parseString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if numericRe.MatchString(s) {
		ms, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return time.Time{}, false
		}
		return fromMillis(ms)
	}
	if dt, err := strfmt.ParseDateTime(s); err == nil {
		t := time.Time(dt)
		if !t.IsZero() && t.Unix() != 0 {
			return t, true
		}
	}
	trimmed := zoneNameRe.ReplaceAllString(s, "")
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseLocal parses a caller-supplied moment. Strings without a zone are read
// in loc; strings with one keep it.
func ParseLocal(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	t, ok := parseString(s)
	return t, ok
}
