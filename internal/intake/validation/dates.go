package validation

import (
	"regexp"
	"strings"
	"time"
)

const CanonicalDateLayout = "2006-01-02"

var canonicalDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var dateLayouts = []string{
	CanonicalDateLayout,
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate accepts the canonical form and the display formats the front
// ends send.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDate converts s to YYYY-MM-DD. Canonical strings pass through
// unchanged; unparseable input yields ok=false.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if canonicalDatePattern.MatchString(s) {
		return s, true
	}
	t, ok := ParseDate(s)
	if !ok {
		return "", false
	}
	return t.Format(CanonicalDateLayout), true
}
