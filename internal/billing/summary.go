package billing

// BuildBillSummaryRow produces one ledger line from a resolved breakdown.
// Serial is the ordinal position in the ledger; callers supply organizations
// pre-sorted by code, this builder does not sort. The manual bookkeeping
// fields (previous due, paid, balance, check no, remarks) stay empty.
func BuildBillSummaryRow(serial int, org Organization, breakdown ResolvedBreakdown) BillSummaryRow {
	return BillSummaryRow{
		Serial:        serial,
		OrgID:         org.ID,
		OrgName:       org.Name,
		LocalName:     org.LocalName,
		DieselBill:    breakdown.DieselBill,
		DieselCoupons: breakdown.DieselCoupons,
		OctaneBill:    breakdown.OctaneBill,
		OctaneCoupons: breakdown.OctaneCoupons,
		TotalBill:     breakdown.DieselBill + breakdown.OctaneBill,
		TotalCoupons:  breakdown.DieselCoupons + breakdown.OctaneCoupons,
		TaxRate:       org.VATRate,
	}
}
