package billing

import "testing"

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		month, year int
		want        int
	}{
		{2, 2024, 29},
		{2, 2023, 28},
		{2, 2000, 29},
		{2, 1900, 28},
		{4, 2024, 30},
		{1, 2024, 31},
		{12, 2025, 31},
		{0, 2024, 0},
		{13, 2024, 0},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.month, tc.year); got != tc.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tc.month, tc.year, got, tc.want)
		}
	}
}

func TestDayHeadersCoverWholeMonth(t *testing.T) {
	headers := DayHeaders(3, 2024)
	if len(headers) != 31 {
		t.Fatalf("expected 31 headers got %d", len(headers))
	}
	first := headers[0]
	if first.MonthAbbrev != "Mar" || first.Year != 2024 || first.Day != 1 {
		t.Fatalf("unexpected first header %+v", first)
	}
	last := headers[30]
	if last.Day != 31 {
		t.Fatalf("unexpected last header %+v", last)
	}
}

func TestDayHeadersLeapFebruary(t *testing.T) {
	headers := DayHeaders(2, 2024)
	if len(headers) != 29 {
		t.Fatalf("expected 29 headers got %d", len(headers))
	}
	if headers[28].MonthAbbrev != "Feb" || headers[28].Day != 29 {
		t.Fatalf("unexpected header %+v", headers[28])
	}
}
