package utils

import (
	"testing"
	"time"
)

func TestParseTimestampAcceptedForms(t *testing.T) {
	cases := []string{
		"2025-08-04T10:00:00Z",
		"2025-08-04T10:00:00+00:00",
		"2025-08-04T10:00:00.123Z",
		"2025-08-04T15:30:00.123+05:30",
		"2025-08-04T10:00:00",
		"2025-08-04T10:00:00.5",
		"  2025-08-04T10:00:00Z  ",
	}

	for _, raw := range cases {
		parsed, err := ParseTimestamp(raw)
		if err != nil {
			t.Fatalf("expected %q to parse, got %v", raw, err)
		}
		if parsed.Location() != time.UTC {
			t.Fatalf("expected UTC result for %q, got %v", raw, parsed.Location())
		}
	}
}

func TestParseTimestampOffsetNormalisation(t *testing.T) {
	parsed, err := ParseTimestamp("2025-08-04T15:30:00+05:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 8, 4, 10, 0, 0, 0, time.UTC)
	if !parsed.Equal(want) {
		t.Fatalf("expected %v, got %v", want, parsed)
	}
}

func TestParseTimestampRejected(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"not-a-timestamp",
		"2025-13-40T99:00:00Z",
		"04/08/2025 10:00",
		"1722765600",
	}

	for _, raw := range cases {
		if _, err := ParseTimestamp(raw); err == nil {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
