// Package datefmt produces and parses the canonical timestamp strings used by
// every persisted entity: ISO-8601-like local date-time with no zone offset.
package datefmt

import "time"

// Layout is the canonical persisted form.
const Layout = "2006-01-02T15:04:05"

// parseLayouts are accepted on input. Older documents may carry fractional
// seconds or omit the seconds field.
var parseLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	Layout,
	"2006-01-02T15:04",
}

// Now returns the current local time in the canonical format.
func Now() string {
	return Format(time.Now())
}

// Format renders t in the canonical format.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse parses a canonical timestamp. It reports ok=false on malformed input
// rather than returning an error; callers must branch on the result.
func Parse(s string) (time.Time, bool) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate projects a canonical timestamp to a short date. If the input does
// not parse it is returned unchanged.
func FormatDate(s string) string {
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// FormatDateTime projects a canonical timestamp to a readable date and time.
// If the input does not parse it is returned unchanged.
func FormatDateTime(s string) string {
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006 3:04 PM")
}

// FormatTime projects a canonical timestamp to the time of day. If the input
// does not parse it is returned unchanged.
func FormatTime(s string) string {
	t, ok := Parse(s)
	if !ok {
		return s
	}
	return t.Format("3:04 PM")
}
