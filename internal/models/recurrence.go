package models

import (
	"fmt"
	"strings"
)

// RecurrencePattern describes how often a recurring transaction repeats.
type RecurrencePattern string

const (
	RecurrenceDaily     RecurrencePattern = "DAILY"
	RecurrenceWeekly    RecurrencePattern = "WEEKLY"
	RecurrenceBiweekly  RecurrencePattern = "BIWEEKLY"
	RecurrenceMonthly   RecurrencePattern = "MONTHLY"
	RecurrenceQuarterly RecurrencePattern = "QUARTERLY"
	RecurrenceYearly    RecurrencePattern = "YEARLY"
)

// RecurrencePatterns lists every known pattern in display order.
var RecurrencePatterns = []RecurrencePattern{
	RecurrenceDaily,
	RecurrenceWeekly,
	RecurrenceBiweekly,
	RecurrenceMonthly,
	RecurrenceQuarterly,
	RecurrenceYearly,
}

// Valid reports whether p is one of the known patterns.
func (p RecurrencePattern) Valid() bool {
	for _, known := range RecurrencePatterns {
		if p == known {
			return true
		}
	}
	return false
}

// ParseRecurrencePattern is case-insensitive. The empty string parses to the
// empty pattern, meaning "not recurring".
func ParseRecurrencePattern(s string) (RecurrencePattern, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	p := RecurrencePattern(strings.ToUpper(s))
	if !p.Valid() {
		return "", fmt.Errorf("unknown recurrence pattern %q", s)
	}
	return p, nil
}
