package shared

import (
	"fmt"
	"time"
)

// Period is a half-open settlement window [Start, End). A booking recognised
// exactly at End belongs to the next period.
type Period struct {
	Key   string
	Start time.Time
	End   time.Time
}

// PeriodFromKey resolves a "YYYY-MM" key into its calendar-month window in UTC.
func PeriodFromKey(key string) (Period, error) {
	start, err := time.Parse("2006-01", key)
	if err != nil {
		return Period{}, fmt.Errorf("parse period key %q: %w", key, err)
	}
	start = start.UTC()
	return Period{Key: key, Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Period{Key: start.Format("2006-01"), Start: start, End: start.AddDate(0, 1, 0)}
}

// PreviousPeriod returns the period immediately before the one containing now.
func PreviousPeriod(now time.Time) Period {
	return PeriodOf(PeriodOf(now).Start.AddDate(0, 0, -1))
}

// Contains reports whether t falls inside the half-open window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
