package billing

import (
	"errors"
	"fmt"
)

// ErrOrganizationNotFound indicates the requested organization is missing.
var ErrOrganizationNotFound = errors.New("billing: organization not found")

// ErrInvalidPeriod indicates a month/year pair outside the accepted range.
var ErrInvalidPeriod = errors.New("billing: invalid period")

// DataIntegrityError reports an input row that cannot be aggregated: an
// unresolvable fuel/vehicle reference or a day index outside the period.
// It aborts the report being built; no partial output is produced.
type DataIntegrityError struct {
	OrgID  int64
	Month  int
	Year   int
	Reason string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("billing: integrity error for org %d period %04d-%02d: %s", e.OrgID, e.Year, e.Month, e.Reason)
}

// AsDataIntegrityError unwraps err into a *DataIntegrityError if possible.
func AsDataIntegrityError(err error) (*DataIntegrityError, bool) {
	var die *DataIntegrityError
	if errors.As(err, &die) {
		return die, true
	}
	return nil, false
}
