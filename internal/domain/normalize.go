package domain

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeHumanName trims surrounding whitespace and collapses internal runs
// to single spaces. Plan titles are stored in this form.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.UTC)
}

func FormatDate(t time.Time) string { return t.UTC().Format(dateLayout) }

// DateOnly truncates t to its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := DateOnly(*t)
	return &v
}

// NormalizeClock validates an HH:MM time and returns it zero-padded.
func NormalizeClock(s string) (string, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		if t2, err2 := time.Parse("15:4", strings.TrimSpace(s)); err2 == nil {
			return t2.Format(clockLayout), nil
		}
		return "", fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t.Format(clockLayout), nil
}
