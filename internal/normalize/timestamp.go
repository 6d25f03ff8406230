package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Epoch is the timestamp assigned to records whose source gives no usable date.
var Epoch = time.Unix(0, 0).UTC()

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp converts a loosely typed date into a UTC time. Strings are
// tried against common layouts, numbers are read as Unix seconds (or
// milliseconds when large). Unparseable input yields Epoch.
func ParseTimestamp(raw any) time.Time {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return Epoch
		}
		return v.UTC()
	case string:
		return parseTimestampString(v)
	case float64:
		return fromUnix(int64(v))
	case int64:
		return fromUnix(v)
	case int:
		return fromUnix(int64(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return Epoch
		}
		return fromUnix(n)
	default:
		return Epoch
	}
}

func parseTimestampString(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return Epoch
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromUnix(n)
	}
	return Epoch
}

// Values above this are treated as milliseconds (year 33658 in seconds).
const millisThreshold = 1_000_000_000_000

func fromUnix(n int64) time.Time {
	if n <= 0 {
		return Epoch
	}
	if n >= millisThreshold {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}
