package domain

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// ParseDate accepts ISO dates and the DD/MM/YYYY form used by back-office
// operators. The result is a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("domain.ParseDate: empty: %w", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("domain.ParseDate: %q: %w", s, ErrInvalidDate)
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
