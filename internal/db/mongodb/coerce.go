package mongodb

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time converts a loosely typed stored timestamp to time.Time.
// Absent or unparsable values yield the zero time. Naive strings are read as UTC.
func Time(v any) time.Time {
	switch t := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// String converts a loosely typed stored value to a string; non-strings yield "".
func String(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
