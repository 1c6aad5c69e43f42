package billing

import "fmt"

// ExpandDays gives every vehicle row a dense per-day quantity array covering
// the whole period: length DaysInMonth(month, year), index 0 = day 1, zero
// for days without activity. Downstream renderers rely on full-width rows.
//
// Rows are pre-summed per day by the aggregator, so each day index is
// written at most once per vehicle; this is an assignment, not an
// accumulation. A day outside [1, daysInMonth] is a DataIntegrityError,
// which guards against off-by-one bugs in upstream date extraction.
func ExpandDays(orgID int64, month, year int, groups []*FuelGroup) error {
	days := DaysInMonth(month, year)
	if days == 0 {
		return ErrInvalidPeriod
	}
	for _, group := range groups {
		for _, vehicle := range group.Vehicles {
			quantities := make([]float64, days)
			for _, cell := range vehicle.cells {
				if cell.day < 1 || cell.day > days {
					return &DataIntegrityError{
						OrgID: orgID, Month: month, Year: year,
						Reason: fmt.Sprintf("vehicle %s has order on day %d outside period of %d days", vehicle.Code, cell.day, days),
					}
				}
				quantities[cell.day-1] = cell.qty
			}
			vehicle.DayQuantities = quantities
			vehicle.cells = nil
		}
	}
	return nil
}
