package fingerprint

import (
	"time"
)

// asFloat coerces a cell to float64. Drivers hand back a mix of integer
// widths and float widths depending on the warehouse.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// asBool coerces a cell to bool. SQLite stores booleans as 0/1 integers.
func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int64:
		return b != 0, true
	case int:
		return b != 0, true
	default:
		return false, false
	}
}

// temporalLayouts are tried in order when a temporal cell arrives as text.
var temporalLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// asTime coerces a cell to time.Time. Most drivers return time.Time for
// date and timestamp columns; text-typed stores return strings.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range temporalLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// asString coerces a cell to string.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// numericize coerces a cell to a float64 axis value for regression: numbers
// pass through and timestamps become Unix seconds, so time-series cards
// regress naturally against their date dimension.
func numericize(v any) (float64, bool) {
	if f, ok := asFloat(v); ok {
		return f, true
	}
	if t, ok := v.(time.Time); ok {
		return float64(t.Unix()), true
	}
	return 0, false
}
