package billing

import (
	"log/slog"
	"strings"
)

// BreakdownSource tags which of the two mutually exclusive resolution paths
// produced a ResolvedBreakdown. The two paths are never merged: the choice
// is made once per organization/period.
type BreakdownSource int

const (
	// SourcePrecomputed means a stored fuel breakdown was trusted as-is.
	SourcePrecomputed BreakdownSource = iota + 1
	// SourceRecomputed means the breakdown was rebuilt from raw orders.
	SourceRecomputed
)

// ResolvedBreakdown is the normalized two-bucket billing view. Fuels other
// than diesel and octane are excluded from this view even though they appear
// in the consumption matrix; see the ledger handler documentation.
type ResolvedBreakdown struct {
	Source        BreakdownSource
	DieselBill    float64
	DieselCoupons int
	OctaneBill    float64
	OctaneCoupons int
}

const (
	fuelDiesel = "diesel"
	fuelOctane = "octane"
)

// ResolveBreakdown picks the resolution path for one organization/period:
// a non-empty stored breakdown is trusted entirely and the raw orders are
// ignored; otherwise the breakdown is recomputed from the orders, one coupon
// per order. Malformed stored entries degrade to a zero contribution and a
// logged warning so a single bad organization cannot block the whole ledger.
func ResolveBreakdown(orgID int64, stored []BreakdownEntry, orders []OrderLine, logger *slog.Logger) ResolvedBreakdown {
	if len(stored) > 0 {
		return resolvePrecomputed(orgID, stored, logger)
	}
	return resolveFromOrders(orders)
}

func resolvePrecomputed(orgID int64, entries []BreakdownEntry, logger *slog.Logger) ResolvedBreakdown {
	out := ResolvedBreakdown{Source: SourcePrecomputed}
	for _, entry := range entries {
		if entry.TotalPrice == nil {
			if logger != nil {
				logger.Warn("breakdown entry missing total price, contribution zeroed",
					slog.Int64("org_id", orgID),
					slog.String("fuel", entry.FuelName))
			}
			continue
		}
		switch strings.ToLower(strings.TrimSpace(entry.FuelName)) {
		case fuelDiesel:
			out.DieselBill += *entry.TotalPrice
			out.DieselCoupons += entry.TotalCoupon
		case fuelOctane:
			out.OctaneBill += *entry.TotalPrice
			out.OctaneCoupons += entry.TotalCoupon
		}
	}
	return out
}

func resolveFromOrders(orders []OrderLine) ResolvedBreakdown {
	out := ResolvedBreakdown{Source: SourceRecomputed}
	for _, order := range orders {
		switch strings.ToLower(strings.TrimSpace(order.FuelName)) {
		case fuelDiesel:
			out.DieselBill += order.Price
			out.DieselCoupons++
		case fuelOctane:
			out.OctaneBill += order.Price
			out.OctaneCoupons++
		}
	}
	return out
}
