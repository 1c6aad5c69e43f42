package http

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fueldesk/fueldesk/internal/billing"
)

type fakeRepo struct {
	orgs       []billing.Organization
	rows       map[int64][]billing.RawOrderRow
	orders     map[int64][]billing.OrderLine
	breakdowns map[int64][]billing.BreakdownEntry
}

func (f *fakeRepo) Organization(_ context.Context, id int64) (billing.Organization, error) {
	for _, org := range f.orgs {
		if org.ID == id {
			return org, nil
		}
	}
	return billing.Organization{}, billing.ErrOrganizationNotFound
}

func (f *fakeRepo) Organizations(context.Context) ([]billing.Organization, error) {
	return append([]billing.Organization(nil), f.orgs...), nil
}

func (f *fakeRepo) RawOrderRows(_ context.Context, orgID int64, _, _ int) ([]billing.RawOrderRow, error) {
	return f.rows[orgID], nil
}

func (f *fakeRepo) OrdersForPeriod(_ context.Context, orgID int64, _, _ int) ([]billing.OrderLine, error) {
	return f.orders[orgID], nil
}

func (f *fakeRepo) StoredBreakdown(_ context.Context, orgID int64, _, _ int) ([]billing.BreakdownEntry, error) {
	return f.breakdowns[orgID], nil
}

type stubRenderer struct {
	data []byte
	err  error
}

func (r *stubRenderer) RenderHTML(context.Context, string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.data, nil
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(t *testing.T, renderer billing.Renderer) *Handler {
	t.Helper()
	t.Cleanup(bustReportCache)

	repo := &fakeRepo{
		orgs: []billing.Organization{{ID: 1, Name: "Alpha", Code: "A-01", VATRate: 5}},
		rows: map[int64][]billing.RawOrderRow{
			1: {
				{FuelID: 1, FuelName: "Diesel", FuelPrice: 50, VehicleID: 10, VehicleCode: "V1", Day: 5, Quantity: 10, Price: 500, Orders: 1},
				{FuelID: 1, FuelName: "Diesel", FuelPrice: 50, VehicleID: 10, VehicleCode: "V1", Day: 20, Quantity: 5, Price: 250, Orders: 1},
			},
		},
		orders: map[int64][]billing.OrderLine{
			1: {{FuelName: "Diesel", Price: 500}, {FuelName: "Diesel", Price: 250}},
		},
		breakdowns: map[int64][]billing.BreakdownEntry{},
	}
	logger := newDiscardLogger()
	service := billing.NewService(repo, logger)
	coordinator := billing.NewCoordinator(renderer, 100*time.Millisecond, logger)
	h, err := NewHandler(logger, service, coordinator)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func newTestRouter(t *testing.T, renderer billing.Renderer) http.Handler {
	r := chi.NewRouter()
	r.Route("/billing", newTestHandler(t, renderer).MountRoutes)
	return r
}

func TestHandleLedgerJSON(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{data: []byte("%PDF")})
	req := httptest.NewRequest(http.MethodGet, "/billing/ledger?month=3&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var vm LedgerVM
	if err := json.Unmarshal(rec.Body.Bytes(), &vm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if vm.Period != "March 2024" || len(vm.Rows) != 1 {
		t.Fatalf("unexpected ledger %+v", vm)
	}
	row := vm.Rows[0]
	if row.DieselBill != 750 || row.DieselCoupons != 2 || row.TotalBill != 750 {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestHandleLedgerRejectsBadPeriod(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{data: []byte("%PDF")})
	for _, target := range []string{
		"/billing/ledger",
		"/billing/ledger?month=13&year=2024",
		"/billing/ledger?month=2&year=1890",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", target, rec.Code)
		}
	}
}

func TestHandleInvoiceSinglePDF(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{data: []byte("%PDF-fake")})
	req := httptest.NewRequest(http.MethodGet, "/billing/1/invoice?month=3&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type %q", ct)
	}
	want := `attachment; filename="Alpha_March 2024-invoice.pdf"`
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Fatalf("content disposition %q, want %q", cd, want)
	}
}

func TestHandleInvoiceWithCoverZip(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{data: []byte("%PDF-fake")})
	req := httptest.NewRequest(http.MethodGet, "/billing/1/invoice?month=3&year=2024&cover=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type %q", ct)
	}
	want := `attachment; filename="Alpha_March 2024-invoice-with-cover.zip"`
	if cd := rec.Header().Get("Content-Disposition"); cd != want {
		t.Fatalf("content disposition %q, want %q", cd, want)
	}
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("zip unreadable: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("expected 2 members got %d", len(zr.File))
	}
}

func TestHandleInvoiceUnknownOrganization(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{data: []byte("%PDF")})
	req := httptest.NewRequest(http.MethodGet, "/billing/99/invoice?month=3&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestHandleInvoiceRendererFailure(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{err: errors.New("chromium crashed")})
	req := httptest.NewRequest(http.MethodGet, "/billing/1/invoice?month=3&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status %d, want 502", rec.Code)
	}
}

func TestHandleLedgerCSVExport(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{data: []byte("%PDF")})
	req := httptest.NewRequest(http.MethodGet, "/billing/ledger/export.csv?month=3&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !bytes.Contains([]byte(body), []byte("Alpha")) || !bytes.Contains([]byte(body), []byte("Diesel Bill")) {
		t.Fatalf("csv body missing expected content: %s", body)
	}
}

func TestHandleLedgerXLSXExport(t *testing.T) {
	router := newTestRouter(t, &stubRenderer{data: []byte("%PDF")})
	req := httptest.NewRequest(http.MethodGet, "/billing/ledger/export.xlsx?month=3&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("empty xlsx body")
	}
}
