package billing

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func fptr(v float64) *float64 { return &v }

// Scenario: stored breakdown present, raw orders must be ignored entirely.
func TestResolveBreakdownStoredWins(t *testing.T) {
	stored := []BreakdownEntry{{FuelName: "diesel", TotalPrice: fptr(750), TotalCoupon: 2}}
	orders := []OrderLine{
		{FuelName: "Diesel", Price: 9999},
		{FuelName: "Octane", Price: 1234},
	}
	bd := ResolveBreakdown(1, stored, orders, nil)
	if bd.Source != SourcePrecomputed {
		t.Fatalf("expected precomputed source got %v", bd.Source)
	}
	if bd.DieselBill != 750 || bd.DieselCoupons != 2 {
		t.Fatalf("unexpected diesel bucket %+v", bd)
	}
	if bd.OctaneBill != 0 || bd.OctaneCoupons != 0 {
		t.Fatalf("raw orders leaked into stored path: %+v", bd)
	}
}

// Scenario: no stored breakdown, three octane orders, one coupon per order.
func TestResolveBreakdownRecomputeFromOrders(t *testing.T) {
	orders := []OrderLine{
		{FuelName: "Octane", Price: 100},
		{FuelName: "octane", Price: 150},
		{FuelName: "OCTANE", Price: 200},
	}
	bd := ResolveBreakdown(1, nil, orders, nil)
	if bd.Source != SourceRecomputed {
		t.Fatalf("expected recomputed source got %v", bd.Source)
	}
	if bd.OctaneBill != 450 || bd.OctaneCoupons != 3 {
		t.Fatalf("unexpected octane bucket %+v", bd)
	}
	if bd.DieselBill != 0 || bd.DieselCoupons != 0 {
		t.Fatalf("unexpected diesel bucket %+v", bd)
	}
}

func TestResolveBreakdownOtherFuelsExcluded(t *testing.T) {
	orders := []OrderLine{
		{FuelName: "Kerosene", Price: 300},
		{FuelName: "Diesel", Price: 100},
	}
	bd := ResolveBreakdown(1, nil, orders, nil)
	if bd.DieselBill != 100 || bd.DieselCoupons != 1 {
		t.Fatalf("unexpected diesel bucket %+v", bd)
	}
	if bd.OctaneBill != 0 {
		t.Fatalf("kerosene leaked into octane bucket %+v", bd)
	}
}

func TestResolveBreakdownMalformedEntryDegradesToZero(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	stored := []BreakdownEntry{
		{FuelName: "diesel", TotalPrice: nil, TotalCoupon: 5},
		{FuelName: "octane", TotalPrice: fptr(200), TotalCoupon: 1},
	}
	bd := ResolveBreakdown(7, stored, nil, logger)
	if bd.DieselBill != 0 || bd.DieselCoupons != 0 {
		t.Fatalf("malformed entry contributed: %+v", bd)
	}
	if bd.OctaneBill != 200 || bd.OctaneCoupons != 1 {
		t.Fatalf("healthy entry lost: %+v", bd)
	}
	if !strings.Contains(buf.String(), "contribution zeroed") {
		t.Fatalf("expected warning in log, got %q", buf.String())
	}
}

func TestResolveBreakdownCaseInsensitiveStoredNames(t *testing.T) {
	stored := []BreakdownEntry{
		{FuelName: " Diesel ", TotalPrice: fptr(100), TotalCoupon: 1},
		{FuelName: "OCTANE", TotalPrice: fptr(50), TotalCoupon: 1},
	}
	bd := ResolveBreakdown(1, stored, nil, nil)
	if bd.DieselBill != 100 || bd.OctaneBill != 50 {
		t.Fatalf("case/space-insensitive match failed: %+v", bd)
	}
}
