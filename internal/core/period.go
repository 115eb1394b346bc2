package core

import (
	"errors"
	"fmt"
	"time"
)

// Period is a calendar-month key in "YYYY-MM" form. The empty Period means
// "always": it matches every date and is used by budgets with no period scope.
type Period string

// PeriodOf returns the period containing the given date.
func PeriodOf(d Date) Period {
	return Period(fmt.Sprintf("%04d-%02d", d.Year(), d.Month()))
}

// Validate checks the "YYYY-MM" shape. The empty period is valid.
func (p Period) Validate() error {
	if p == "" {
		return nil
	}
	t, err := time.Parse("2006-01", string(p))
	if err != nil {
		return errors.New("invalid period key: " + string(p))
	}
	if t.Year() < 1 {
		return errors.New("invalid period key: " + string(p))
	}
	return nil
}

// Contains reports whether the date falls inside the period. The empty
// period contains every date.
func (p Period) Contains(d Date) bool {
	if p == "" {
		return true
	}
	return PeriodOf(d) == p
}

// IsAlways reports whether this is the unscoped "always" period.
func (p Period) IsAlways() bool {
	return p == ""
}
