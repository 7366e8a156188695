package model

import (
	"fmt"
	"strings"
	"time"
)

// Accepted wire encodings for timestamps, longest first.
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses an FDSN timestamp string. Both the parameter layer and
// the text decoder normalize through here; the value is truncated to
// millisecond precision, which is the finest the delimited formats carry.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
