package datefmt_test

import (
	"testing"
	"time"

	"github.com/NepaliUtsab/blckpinkinventory/internal/datefmt"
)

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 30, 45, 123456789, time.Local)
	if got := datefmt.Format(ts); got != "2024-01-15T10:30:45" {
		t.Errorf("Format() = %q, want %q", got, "2024-01-15T10:30:45")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "canonical form",
			input: "2024-01-15T10:30:45",
			want:  time.Date(2024, 1, 15, 10, 30, 45, 0, time.Local),
			ok:    true,
		},
		{
			name:  "fractional seconds",
			input: "2024-01-15T10:30:45.123",
			want:  time.Date(2024, 1, 15, 10, 30, 45, 123000000, time.Local),
			ok:    true,
		},
		{
			name:  "minute precision",
			input: "2024-01-15T10:30",
			want:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.Local),
			ok:    true,
		},
		{
			name:  "empty string",
			input: "",
			ok:    false,
		},
		{
			name:  "date only",
			input: "2024-01-15",
			ok:    false,
		},
		{
			name:  "garbage",
			input: "not a timestamp",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := datefmt.Parse(tt.input)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Sub-second precision is deliberately lost on format.
	ts := time.Date(2024, 6, 1, 23, 59, 59, 500, time.Local)
	got, ok := datefmt.Parse(datefmt.Format(ts))
	if !ok {
		t.Fatal("Parse() failed on formatted output")
	}
	if !got.Equal(ts.Truncate(time.Second)) {
		t.Errorf("round trip = %v, want %v", got, ts.Truncate(time.Second))
	}
}

func TestDisplayProjections(t *testing.T) {
	const input = "2024-01-15T14:05:00"

	if got := datefmt.FormatDate(input); got != "Jan 15, 2024" {
		t.Errorf("FormatDate() = %q, want %q", got, "Jan 15, 2024")
	}
	if got := datefmt.FormatDateTime(input); got != "Jan 15, 2024 2:05 PM" {
		t.Errorf("FormatDateTime() = %q, want %q", got, "Jan 15, 2024 2:05 PM")
	}
	if got := datefmt.FormatTime(input); got != "2:05 PM" {
		t.Errorf("FormatTime() = %q, want %q", got, "2:05 PM")
	}
}

func TestDisplayProjectionsPassThroughMalformedInput(t *testing.T) {
	const input = "soon"
	if got := datefmt.FormatDate(input); got != input {
		t.Errorf("FormatDate(%q) = %q, want input unchanged", input, got)
	}
	if got := datefmt.FormatDateTime(input); got != input {
		t.Errorf("FormatDateTime(%q) = %q, want input unchanged", input, got)
	}
}
