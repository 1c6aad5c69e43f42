package http

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fueldesk/fueldesk/internal/billing"
)

var printer = message.NewPrinter(language.English)

func formatAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatCell renders a day cell; zero-activity days print blank so the
// pivot stays readable, the cell itself is still emitted.
func formatCell(v float64) string {
	if v == 0 {
		return ""
	}
	return formatQty(v)
}

func periodDisplay(month, year int) string {
	return fmt.Sprintf("%s %d", billing.MonthName(month), year)
}

// InvoiceVM feeds the invoice PDF template.
type InvoiceVM struct {
	OrgName   string
	LocalName string
	Period    string
	Headers   []billing.DayHeader
	Fuels     []InvoiceFuelVM
}

// InvoiceFuelVM is one fuel block in the invoice table.
type InvoiceFuelVM struct {
	Name       string
	UnitPrice  string
	TotalQty   string
	TotalPrice string
	DayCount   int
	ColSpan    int
	Vehicles   []InvoiceVehicleVM
}

// InvoiceVehicleVM is one vehicle line under a fuel block.
type InvoiceVehicleVM struct {
	Code       string
	Days       []string
	TotalQty   string
	TotalPrice string
}

// NewInvoiceVM converts a consumption report into template data.
func NewInvoiceVM(r billing.ConsumptionReport) InvoiceVM {
	vm := InvoiceVM{
		OrgName:   r.Organization.Name,
		LocalName: r.Organization.LocalName,
		Period:    periodDisplay(r.Month, r.Year),
		Headers:   r.Headers,
		Fuels:     make([]InvoiceFuelVM, 0, len(r.Fuels)),
	}
	for _, group := range r.Fuels {
		fuel := InvoiceFuelVM{
			Name:       group.Name,
			UnitPrice:  formatAmount(group.UnitPrice),
			TotalQty:   formatQty(group.TotalQty),
			TotalPrice: formatAmount(group.TotalPrice),
			DayCount:   r.Days,
			ColSpan:    r.Days + 3,
			Vehicles:   make([]InvoiceVehicleVM, 0, len(group.Vehicles)),
		}
		for _, vehicle := range group.Vehicles {
			days := make([]string, len(vehicle.DayQuantities))
			for i, q := range vehicle.DayQuantities {
				days[i] = formatCell(q)
			}
			fuel.Vehicles = append(fuel.Vehicles, InvoiceVehicleVM{
				Code:       vehicle.Code,
				Days:       days,
				TotalQty:   formatQty(vehicle.TotalQty),
				TotalPrice: formatAmount(vehicle.TotalPrice),
			})
		}
		vm.Fuels = append(vm.Fuels, fuel)
	}
	return vm
}

// CoverVM feeds the cover PDF template.
type CoverVM struct {
	OrgName    string
	LocalName  string
	Period     string
	Fuels      []CoverLineVM
	TotalQty   string
	TotalPrice string
}

// CoverLineVM is one grouped total on the cover page.
type CoverLineVM struct {
	Name       string
	TotalQty   string
	TotalPrice string
}

// NewCoverVM converts a consumption report into cover-page template data.
func NewCoverVM(r billing.ConsumptionReport) CoverVM {
	vm := CoverVM{
		OrgName:    r.Organization.Name,
		LocalName:  r.Organization.LocalName,
		Period:     periodDisplay(r.Month, r.Year),
		Fuels:      make([]CoverLineVM, 0, len(r.Fuels)),
		TotalQty:   formatQty(r.TotalQty),
		TotalPrice: formatAmount(r.TotalPrice),
	}
	for _, group := range r.Fuels {
		vm.Fuels = append(vm.Fuels, CoverLineVM{
			Name:       group.Name,
			TotalQty:   formatQty(group.TotalQty),
			TotalPrice: formatAmount(group.TotalPrice),
		})
	}
	return vm
}

// LedgerRowVM is the JSON shape of one ledger line.
type LedgerRowVM struct {
	Serial        int     `json:"serial"`
	OrgID         int64   `json:"org_id"`
	OrgName       string  `json:"org_name"`
	LocalName     string  `json:"local_name,omitempty"`
	DieselBill    float64 `json:"diesel_bill"`
	DieselCoupons int     `json:"diesel_coupons"`
	OctaneBill    float64 `json:"octane_bill"`
	OctaneCoupons int     `json:"octane_coupons"`
	TotalBill     float64 `json:"total_bill"`
	TotalCoupons  int     `json:"total_coupons"`
	TaxRate       float64 `json:"tax_rate"`
	PreviousDue   string  `json:"previous_due"`
	Paid          string  `json:"paid"`
	Balance       string  `json:"balance"`
	CheckNo       string  `json:"check_no"`
	Remarks       string  `json:"remarks"`
}

// LedgerVM is the JSON ledger response.
type LedgerVM struct {
	Month  int           `json:"month"`
	Year   int           `json:"year"`
	Period string        `json:"period"`
	Rows   []LedgerRowVM `json:"rows"`
}

// NewLedgerVM converts ledger rows into the JSON response shape.
func NewLedgerVM(month, year int, rows []billing.BillSummaryRow) LedgerVM {
	vm := LedgerVM{
		Month:  month,
		Year:   year,
		Period: periodDisplay(month, year),
		Rows:   make([]LedgerRowVM, 0, len(rows)),
	}
	for _, row := range rows {
		vm.Rows = append(vm.Rows, LedgerRowVM{
			Serial:        row.Serial,
			OrgID:         row.OrgID,
			OrgName:       row.OrgName,
			LocalName:     row.LocalName,
			DieselBill:    row.DieselBill,
			DieselCoupons: row.DieselCoupons,
			OctaneBill:    row.OctaneBill,
			OctaneCoupons: row.OctaneCoupons,
			TotalBill:     row.TotalBill,
			TotalCoupons:  row.TotalCoupons,
			TaxRate:       row.TaxRate,
			PreviousDue:   row.PreviousDue,
			Paid:          row.Paid,
			Balance:       row.Balance,
			CheckNo:       row.CheckNo,
			Remarks:       row.Remarks,
		})
	}
	return vm
}
