package billing

import "time"

// DayHeader is the display triple for one calendar-day column.
type DayHeader struct {
	MonthAbbrev string
	Year        int
	Day         int
}

// IsLeapYear applies the proleptic Gregorian rule.
func IsLeapYear(year int) bool {
	if year%400 == 0 {
		return true
	}
	if year%100 == 0 {
		return false
	}
	return year%4 == 0
}

// DaysInMonth returns the number of calendar days in the given month (1..12).
// Callers must validate the month first; an out-of-range month returns 0.
func DaysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	return 0
}

// MonthName returns the English month name used in document filenames.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

// DayHeaders builds the column headers for every day of the period. Computed
// once per report; every fuel group shares the same slice.
func DayHeaders(month, year int) []DayHeader {
	days := DaysInMonth(month, year)
	abbrev := MonthName(month)
	if len(abbrev) > 3 {
		abbrev = abbrev[:3]
	}
	headers := make([]DayHeader, days)
	for i := range headers {
		headers[i] = DayHeader{MonthAbbrev: abbrev, Year: year, Day: i + 1}
	}
	return headers
}
