package billing

// RawOrderRow is one pre-grouped slice of a month's orders, as returned by the
// persistence layer: all orders for one (fuel, vehicle, day) triple with
// quantity, price and order count already summed.
type RawOrderRow struct {
	FuelID      int64
	FuelName    string
	FuelPrice   float64
	VehicleID   int64
	VehicleCode string
	Day         int
	Quantity    float64
	Price       float64
	Orders      int
}

// VehicleRow is the per-vehicle sub-aggregation inside a FuelGroup. After
// ExpandDays runs, DayQuantities holds one cell per calendar day of the
// period (index 0 = day 1), zero-filled for days without activity.
type VehicleRow struct {
	VehicleID     int64
	Code          string
	DayQuantities []float64
	TotalQty      float64
	TotalPrice    float64
	OrderCount    int

	cells []dayCell
}

type dayCell struct {
	day int
	qty float64
}

// FuelGroup aggregates all orders for one fuel within one organization/month.
type FuelGroup struct {
	FuelID     int64
	Name       string
	UnitPrice  float64
	TotalQty   float64
	TotalPrice float64
	Vehicles   []*VehicleRow
}

// Organization carries the reference fields billing needs. VATRate is a
// percentage (e.g. 15 for 15%), zero when the organization has none.
type Organization struct {
	ID        int64
	Name      string
	LocalName string
	Code      string
	VATRate   float64
}

// ConsumptionReport is the full fuel -> vehicle -> day pivot for one
// organization and month, ready for the invoice renderer.
type ConsumptionReport struct {
	Organization Organization
	Month        int
	Year         int
	Days         int
	Headers      []DayHeader
	Fuels        []*FuelGroup
	TotalQty     float64
	TotalPrice   float64
}

// BreakdownEntry is one stored, precomputed per-fuel summary attached to an
// organization/period. TotalPrice is a pointer because the stored column is
// nullable; a nil price marks the entry malformed.
type BreakdownEntry struct {
	FuelName    string
	TotalPrice  *float64
	TotalCoupon int
}

// OrderLine is a flat order as needed by the fallback breakdown path: fuel
// name plus the order's total price. One order equals one coupon.
type OrderLine struct {
	FuelName string
	Price    float64
}

// BillSummaryRow is one ledger line per organization per month. PreviousDue,
// Paid, Balance, CheckNo and Remarks are manual bookkeeping fields filled in
// by the accountant, never computed here.
type BillSummaryRow struct {
	Serial        int
	OrgID         int64
	OrgName       string
	LocalName     string
	DieselBill    float64
	DieselCoupons int
	OctaneBill    float64
	OctaneCoupons int
	TotalBill     float64
	TotalCoupons  int
	TaxRate       float64
	PreviousDue   string
	Paid          string
	Balance       string
	CheckNo       string
	Remarks       string
}
