package shared

import (
	"errors"
	"testing"
	"time"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2024-03")
	if err != nil {
		t.Fatalf("ParsePeriod() error = %v", err)
	}
	if p.Month != 3 || p.Year != 2024 {
		t.Fatalf("got %+v", p)
	}
	for _, bad := range []string{"2024-13", "1890-01", "march 2024", ""} {
		if _, err := ParsePeriod(bad); !errors.Is(err, ErrInvalidPeriod) {
			t.Fatalf("%q: error = %v, want ErrInvalidPeriod", bad, err)
		}
	}
}

func TestPeriodPrevious(t *testing.T) {
	p := Period{Month: 1, Year: 2024}.Previous()
	if p.Month != 12 || p.Year != 2023 {
		t.Fatalf("got %+v", p)
	}
	if got := (Period{Month: 6, Year: 2024}).Previous(); got.Month != 5 || got.Year != 2024 {
		t.Fatalf("got %+v", got)
	}
}

func TestCurrentPeriod(t *testing.T) {
	p := CurrentPeriod(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	if p.String() != "2024-03" {
		t.Fatalf("got %s", p)
	}
}
