package http

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/fueldesk/fueldesk/internal/billing"
	"github.com/fueldesk/fueldesk/internal/platform/httpx"
	"github.com/fueldesk/fueldesk/web"
)

// Handler wires billing report endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *billing.Service
	coordinator *billing.Coordinator
	invoiceTpl  *template.Template
	coverTpl    *template.Template
	validate    *validator.Validate
	rateLimit   func(http.Handler) http.Handler

	// builds collapses concurrent report builds for one org/period.
	builds singleflight.Group
}

// NewHandler constructs the billing handler. Templates come from the
// embedded web FS.
func NewHandler(logger *slog.Logger, service *billing.Service, coordinator *billing.Coordinator) (*Handler, error) {
	invoiceTpl, err := template.ParseFS(web.Templates, "templates/reports/invoice_pdf.html")
	if err != nil {
		return nil, fmt.Errorf("billing handler: parse invoice template: %w", err)
	}
	coverTpl, err := template.ParseFS(web.Templates, "templates/reports/invoice_cover_pdf.html")
	if err != nil {
		return nil, fmt.Errorf("billing handler: parse cover template: %w", err)
	}
	return &Handler{
		logger:      logger,
		service:     service,
		coordinator: coordinator,
		invoiceTpl:  invoiceTpl,
		coverTpl:    coverTpl,
		validate:    validator.New(),
		rateLimit:   httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}, nil
}

// MountRoutes registers billing routes. Export endpoints are rate limited
// because each one can fan out to the renderer or walk the whole ledger.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger", h.handleLedger)
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/ledger/export.csv", h.handleLedgerCSV)
		r.Get("/ledger/export.xlsx", h.handleLedgerXLSX)
		r.Get("/{orgID}/invoice", h.handleInvoice)
	})
}

type periodQuery struct {
	Month int `validate:"required,min=1,max=12"`
	Year  int `validate:"required,min=2000,max=2100"`
}

func (h *Handler) parsePeriod(r *http.Request) (periodQuery, error) {
	q := r.URL.Query()
	month, _ := strconv.Atoi(q.Get("month"))
	year, _ := strconv.Atoi(q.Get("year"))
	pq := periodQuery{Month: month, Year: year}
	if err := h.validate.Struct(pq); err != nil {
		return periodQuery{}, fmt.Errorf("%w: month/year", httpx.ErrValidation)
	}
	return pq, nil
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	pq, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.BuildLedger(r.Context(), pq.Month, pq.Year)
	if err != nil {
		h.respondBillingError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewLedgerVM(pq.Month, pq.Year, rows))
}

func (h *Handler) handleLedgerCSV(w http.ResponseWriter, r *http.Request) {
	pq, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.BuildLedger(r.Context(), pq.Month, pq.Year)
	if err != nil {
		h.respondBillingError(w, r, err)
		return
	}
	buf := &bytes.Buffer{}
	if err := writeLedgerCSV(buf, pq.Month, pq.Year, rows); err != nil {
		h.logger.Error("write ledger csv", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}
	filename := fmt.Sprintf("bill-summary_%s.csv", periodDisplay(pq.Month, pq.Year))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleLedgerXLSX(w http.ResponseWriter, r *http.Request) {
	pq, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	rows, err := h.service.BuildLedger(r.Context(), pq.Month, pq.Year)
	if err != nil {
		h.respondBillingError(w, r, err)
		return
	}
	data, err := buildLedgerXLSX(pq.Month, pq.Year, rows)
	if err != nil {
		h.logger.Error("write ledger xlsx", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "")
		return
	}
	filename := fmt.Sprintf("bill-summary_%s.xlsx", periodDisplay(pq.Month, pq.Year))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = w.Write(data)
}

func (h *Handler) handleInvoice(w http.ResponseWriter, r *http.Request) {
	orgID, err := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
	if err != nil || orgID <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: organization id", httpx.ErrValidation))
		return
	}
	pq, err := h.parsePeriod(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	includeCover := r.URL.Query().Get("cover") == "1" || r.URL.Query().Get("cover") == "true"

	report, err := h.loadReport(r, orgID, pq)
	if err != nil {
		h.respondBillingError(w, r, err)
		return
	}

	invoiceHTML, err := h.execute(h.invoiceTpl, NewInvoiceVM(report))
	if err != nil {
		h.logger.Error("execute invoice template", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Render Failed", "")
		return
	}
	var coverHTML string
	if includeCover {
		coverHTML, err = h.execute(h.coverTpl, NewCoverVM(report))
		if err != nil {
			h.logger.Error("execute cover template", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Render Failed", "")
			return
		}
	}

	doc, err := h.coordinator.Assemble(r.Context(), report.Organization.Name, pq.Month, pq.Year, invoiceHTML, coverHTML, includeCover)
	if err != nil {
		h.respondBillingError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	_, _ = w.Write(doc.Data)
}

// loadReport builds the consumption report behind an in-process cache and
// singleflight, so concurrent downloads for one organization/period
// aggregate once.
func (h *Handler) loadReport(r *http.Request, orgID int64, pq periodQuery) (billing.ConsumptionReport, error) {
	key := reportCacheKey(orgID, pq.Month, pq.Year)
	if report, ok := reportCache.Get(key); ok {
		return report, nil
	}
	resultChan := h.builds.DoChan(key, func() (interface{}, error) {
		report, buildErr := h.service.BuildConsumptionReport(r.Context(), orgID, pq.Month, pq.Year)
		if buildErr != nil {
			return nil, buildErr
		}
		reportCache.Set(key, report)
		return report, nil
	})
	select {
	case <-r.Context().Done():
		return billing.ConsumptionReport{}, r.Context().Err()
	case res := <-resultChan:
		if res.Err != nil {
			return billing.ConsumptionReport{}, res.Err
		}
		return res.Val.(billing.ConsumptionReport), nil
	}
}

func (h *Handler) execute(tpl *template.Template, data any) (string, error) {
	buf := &bytes.Buffer{}
	if err := tpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (h *Handler) respondBillingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, billing.ErrInvalidPeriod):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, billing.ErrOrganizationNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, billing.ErrRenderTimeout):
		h.logger.Error("invoice render timeout", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusGatewayTimeout, "Render Timeout", "document renderer timed out")
	case errors.Is(err, billing.ErrRenderFailure), errors.Is(err, billing.ErrArchiveFailure):
		h.logger.Error("invoice assembly failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "document could not be produced")
	default:
		if die, ok := billing.AsDataIntegrityError(err); ok {
			h.logger.Error("data integrity error",
				slog.Int64("org_id", die.OrgID),
				slog.Int("month", die.Month),
				slog.Int("year", die.Year),
				slog.String("reason", die.Reason))
			httpx.Problem(w, http.StatusUnprocessableEntity, "Data Integrity Error", die.Error())
			return
		}
		h.logger.Error("billing request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
