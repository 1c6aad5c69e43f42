package http

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fueldesk/fueldesk/internal/billing"
)

func ledgerFixture() []billing.BillSummaryRow {
	return []billing.BillSummaryRow{
		{Serial: 1, OrgID: 1, OrgName: "Alpha", LocalName: "আলফা", DieselBill: 750, DieselCoupons: 2, TotalBill: 750, TotalCoupons: 2, TaxRate: 5},
		{Serial: 2, OrgID: 2, OrgName: "Beta", OctaneBill: 450, OctaneCoupons: 3, TotalBill: 450, TotalCoupons: 3},
	}
}

func TestWriteLedgerCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	err := writeLedgerCSV(buf, 3, 2024, ledgerFixture())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "# Report: Bill Summary | Period: March 2024")
	lines := strings.Split(strings.TrimSpace(out), "\r\n")
	// comment + header + 2 rows + totals
	require.Len(t, lines, 5)
	require.Contains(t, lines[2], "Alpha")
	require.Contains(t, lines[2], "750.00")
	require.Contains(t, lines[4], "1200.00")
}

func TestBuildLedgerXLSX(t *testing.T) {
	data, err := buildLedgerXLSX(3, 2024, ledgerFixture())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	title, err := f.GetCellValue("Bill Summary", "A1")
	require.NoError(t, err)
	require.Contains(t, title, "March 2024")

	org, err := f.GetCellValue("Bill Summary", "B4")
	require.NoError(t, err)
	require.Equal(t, "Alpha", org)

	total, err := f.GetCellValue("Bill Summary", "H6")
	require.NoError(t, err)
	require.Equal(t, "1200", total)
}

func TestInvoiceVMFormatsCells(t *testing.T) {
	dq := make([]float64, 31)
	dq[4] = 10
	dq[19] = 5
	report := billing.ConsumptionReport{
		Organization: billing.Organization{Name: "Alpha"},
		Month:        3, Year: 2024, Days: 31,
		Headers: billing.DayHeaders(3, 2024),
		Fuels: []*billing.FuelGroup{
			{
				FuelID: 1, Name: "Diesel", UnitPrice: 50, TotalQty: 15, TotalPrice: 750,
				Vehicles: []*billing.VehicleRow{
					{VehicleID: 10, Code: "V1", DayQuantities: dq, TotalQty: 15, TotalPrice: 750},
				},
			},
		},
		TotalQty: 15, TotalPrice: 750,
	}
	vm := NewInvoiceVM(report)
	require.Len(t, vm.Fuels, 1)
	require.Len(t, vm.Fuels[0].Vehicles, 1)
	days := vm.Fuels[0].Vehicles[0].Days
	require.Len(t, days, 31)
	require.Equal(t, "10", days[4])
	require.Equal(t, "5", days[19])
	require.Equal(t, "", days[0])
	require.Equal(t, "750.00", vm.Fuels[0].TotalPrice)
}
