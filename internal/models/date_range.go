package models

import (
	"fmt"
	"time"
)

// DateRange bounds the dashboard summary. Both ends are inclusive calendar
// dates in DateLayout.
type DateRange struct {
	StartDate string `json:"startDate" yaml:"start_date"`
	EndDate   string `json:"endDate" yaml:"end_date"`
}

// DefaultDateRange runs from the first day of the previous month to today.
func DefaultDateRange(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())
	return DateRange{
		StartDate: start.Format(DateLayout),
		EndDate:   now.Format(DateLayout),
	}
}

// Validate checks both dates parse and the range is not inverted.
func (r DateRange) Validate() error {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", r.StartDate, err)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", r.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", r.EndDate, r.StartDate)
	}
	return nil
}
