// Package shared holds small helpers used across modules.
package shared

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod indicates a month/year pair outside the supported range.
var ErrInvalidPeriod = errors.New("invalid period")

// Period is a billing month.
type Period struct {
	Month int
	Year  int
}

// ParsePeriod parses "YYYY-MM".
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	p := Period{Month: int(t.Month()), Year: t.Year()}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// CurrentPeriod returns the period containing t.
func CurrentPeriod(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

// Validate bounds-checks the period.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 || p.Year < 2000 || p.Year > 2100 {
		return fmt.Errorf("%w: %04d-%02d", ErrInvalidPeriod, p.Year, p.Month)
	}
	return nil
}

// Previous returns the preceding month.
func (p Period) Previous() Period {
	if p.Month == 1 {
		return Period{Month: 12, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
