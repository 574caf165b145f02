package repository

import (
	"fmt"
	"time"
)

// ParseTime parses a stored date or timestamp in "2006-01-02", "2006-01-02 15:04:05"
// or RFC3339 format and returns it in UTC.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		t, err := time.Parse(layout, str)
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}
