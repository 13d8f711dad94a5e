package activity

import (
	"fmt"
	"time"
)

// DateKeyLayout is the layout of a bucket date.
const DateKeyLayout = "2006-01-02"

// Bucket groups the records of one child, one category and one local day.
type Bucket struct {
	ChildID  string
	Category Category
	DateKey  string
}

func (b Bucket) String() string {
	return b.ChildID + "/" + string(b.Category) + "/" + b.DateKey
}

// DateKey formats t as a bucket date in loc. A nil loc means UTC.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateKeyLayout)
}

// ParseDateKey validates a bucket date and returns it in canonical form.
func ParseDateKey(s string) (string, error) {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t.Format(DateKeyLayout), nil
}
