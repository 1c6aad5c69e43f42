package billing

import (
	"context"
	"fmt"
	"log/slog"
)

// Repository defines the persistence behaviour the billing service needs.
// RawOrderRows must return rows already restricted to the organization and
// the month's date range, grouped by (fuel, vehicle, day) with quantity,
// price and order count summed.
type Repository interface {
	Organization(ctx context.Context, id int64) (Organization, error)
	Organizations(ctx context.Context) ([]Organization, error)
	RawOrderRows(ctx context.Context, orgID int64, month, year int) ([]RawOrderRow, error)
	OrdersForPeriod(ctx context.Context, orgID int64, month, year int) ([]OrderLine, error)
	StoredBreakdown(ctx context.Context, orgID int64, month, year int) ([]BreakdownEntry, error)
}

// Service orchestrates report and ledger builds. It holds no mutable state
// across requests, so concurrent builds for different organizations are safe.
type Service struct {
	repo   Repository
	cache  *LedgerCache
	logger *slog.Logger
}

// NewService constructs a billing service instance.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// WithLedgerCache attaches a redis-backed cache for ledger builds.
func (s *Service) WithLedgerCache(cache *LedgerCache) *Service {
	s.cache = cache
	return s
}

// ValidatePeriod rejects month/year pairs before any aggregation runs.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if year < 2000 || year > 2100 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}

// BuildConsumptionReport composes the fuel -> vehicle -> day pivot for one
// organization and month. Fuels with no activity in the period are not
// synthesized; only fuels appearing in at least one order are included.
func (s *Service) BuildConsumptionReport(ctx context.Context, orgID int64, month, year int) (ConsumptionReport, error) {
	if s == nil || s.repo == nil {
		return ConsumptionReport{}, fmt.Errorf("billing service not initialised")
	}
	if err := ValidatePeriod(month, year); err != nil {
		return ConsumptionReport{}, err
	}
	if orgID <= 0 {
		return ConsumptionReport{}, fmt.Errorf("%w: organization id %d", ErrInvalidPeriod, orgID)
	}
	org, err := s.repo.Organization(ctx, orgID)
	if err != nil {
		return ConsumptionReport{}, err
	}
	rows, err := s.repo.RawOrderRows(ctx, orgID, month, year)
	if err != nil {
		return ConsumptionReport{}, fmt.Errorf("load order rows: %w", err)
	}
	groups, err := AggregateOrders(orgID, month, year, rows)
	if err != nil {
		return ConsumptionReport{}, err
	}
	if err := ExpandDays(orgID, month, year, groups); err != nil {
		return ConsumptionReport{}, err
	}
	report := ConsumptionReport{
		Organization: org,
		Month:        month,
		Year:         year,
		Days:         DaysInMonth(month, year),
		Headers:      DayHeaders(month, year),
		Fuels:        groups,
	}
	for _, group := range groups {
		report.TotalQty += group.TotalQty
		report.TotalPrice += group.TotalPrice
	}
	return report, nil
}

// BuildLedger builds one BillSummaryRow per organization for the month.
// Organizations come back from the repository ordered by code; serials
// follow that order. A failure for a single organization degrades that row
// to zeros and logs a warning so the rest of the batch still completes.
func (s *Service) BuildLedger(ctx context.Context, month, year int) ([]BillSummaryRow, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("billing service not initialised")
	}
	if err := ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if rows, ok := s.cache.Get(ctx, month, year); ok {
			return rows, nil
		}
	}
	orgs, err := s.repo.Organizations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	rows := make([]BillSummaryRow, 0, len(orgs))
	for i, org := range orgs {
		breakdown := s.resolveOrgBreakdown(ctx, org, month, year)
		rows = append(rows, BuildBillSummaryRow(i+1, org, breakdown))
	}
	if s.cache != nil {
		s.cache.Set(ctx, month, year, rows)
	}
	return rows, nil
}

func (s *Service) resolveOrgBreakdown(ctx context.Context, org Organization, month, year int) ResolvedBreakdown {
	stored, err := s.repo.StoredBreakdown(ctx, org.ID, month, year)
	if err != nil {
		s.warn("load stored breakdown", org.ID, month, year, err)
		stored = nil
	}
	if len(stored) > 0 {
		return ResolveBreakdown(org.ID, stored, nil, s.logger)
	}
	orders, err := s.repo.OrdersForPeriod(ctx, org.ID, month, year)
	if err != nil {
		s.warn("load orders for breakdown", org.ID, month, year, err)
		return ResolvedBreakdown{Source: SourceRecomputed}
	}
	return ResolveBreakdown(org.ID, nil, orders, s.logger)
}

func (s *Service) warn(msg string, orgID int64, month, year int, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg,
		slog.Int64("org_id", orgID),
		slog.Int("month", month),
		slog.Int("year", year),
		slog.Any("error", err))
}
