package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// numericDMYRE matches timestamps that open with a dd.mm.yyyy-style
// numeric date, which must be disambiguated day-first.
var numericDMYRE = regexp.MustCompile(`^\s*\d{1,2}[./-]\d{1,2}[./-]\d{2,4}\b`)

// utcSuffixRE strips the trailing zone annotation some HTML exports
// append to the machine timestamp ("22.01.2024 21:30:12 UTC+03:00").
var utcSuffixRE = regexp.MustCompile(`\s+UTC[+-]\d{2}:\d{2}$`)

// stripZone discards any offset, keeping the wall-clock reading as
// written in the source.
func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// ParseISO parses a machine-generated ISO-8601 timestamp as naive local
// time, with or without a zone offset.
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return stripZone(t), nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable ISO timestamp %q", s)
}

// dayFirstLayouts are the fixed layouts for numeric day-first dates,
// four-digit years before two-digit so "2024" never half-matches "06".
var dayFirstLayouts = func() []string {
	var layouts []string
	for _, year := range []string{"2006", "06"} {
		for _, sep := range []string{".", "/", "-"} {
			date := strings.Join([]string{"2", "1", year}, sep)
			layouts = append(layouts, date+" 15:04:05", date+" 15:04", date)
		}
	}
	return layouts
}()

// ParseFree parses a human-rendered timestamp. Strings that open with a
// numeric dd.mm.yyyy pattern are matched against fixed day-first
// layouts; anything else goes through the permissive parser.
func ParseFree(s string) (time.Time, error) {
	s = strings.TrimSpace(utcSuffixRE.ReplaceAllString(s, ""))
	if numericDMYRE.MatchString(s) {
		for _, layout := range dayFirstLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", s, err)
	}
	return stripZone(t), nil
}
