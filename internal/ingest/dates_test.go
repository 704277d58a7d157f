package ingest

import (
	"testing"
	"time"
)

func TestParseISO(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01T10:00:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:00:00Z", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		// Zone offsets are stripped: the wall-clock reading stays as written.
		{"2024-01-01T10:00:00+03:00", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseISO(c.in)
		if err != nil {
			t.Errorf("ParseISO(%q): %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseISO(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseISO("yesterday-ish"); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func TestParseFree_DayFirst(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"22.01.2024 21:30:12 UTC+03:00", time.Date(2024, 1, 22, 21, 30, 12, 0, time.UTC)},
		{"22.01.2024 21:30:12", time.Date(2024, 1, 22, 21, 30, 12, 0, time.UTC)},
		{"02.03.2024 10:00:00", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)},
		{"22.01.2024 21:30", time.Date(2024, 1, 22, 21, 30, 0, 0, time.UTC)},
		// Ambiguous numeric dates resolve day-first.
		{"02.03.2024", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"2.3.2024", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"02/03/2024 10:00", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)},
		{"02-03-24", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, err := ParseFree(c.in)
		if err != nil {
			t.Errorf("ParseFree(%q): %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseFree(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := ParseFree("99.99.2024"); err == nil {
		t.Error("expected an error for an impossible numeric date")
	}
}

func TestParseFree_Permissive(t *testing.T) {
	got, err := ParseFree("May 8, 2009 5:57:51 PM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2009, 5, 8, 17, 57, 51, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ParseFree("no date here"); err == nil {
		t.Error("expected an error for garbage input")
	}
}
