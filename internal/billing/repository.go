package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository on top of PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a billing repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func periodRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Organization loads one organization by id.
func (r *PGRepository) Organization(ctx context.Context, id int64) (Organization, error) {
	const query = `
SELECT id, name, COALESCE(local_name, ''), COALESCE(code, ''), COALESCE(vat_rate, 0)
FROM organizations
WHERE id = $1`
	var org Organization
	err := r.pool.QueryRow(ctx, query, id).Scan(&org.ID, &org.Name, &org.LocalName, &org.Code, &org.VATRate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, ErrOrganizationNotFound
		}
		return Organization{}, fmt.Errorf("billing: load organization %d: %w", id, err)
	}
	return org, nil
}

// Organizations lists all organizations ordered by their external code,
// which fixes ledger serial numbering.
func (r *PGRepository) Organizations(ctx context.Context) ([]Organization, error) {
	const query = `
SELECT id, name, COALESCE(local_name, ''), COALESCE(code, ''), COALESCE(vat_rate, 0)
FROM organizations
ORDER BY code, id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("billing: list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var org Organization
		if err := rows.Scan(&org.ID, &org.Name, &org.LocalName, &org.Code, &org.VATRate); err != nil {
			return nil, fmt.Errorf("billing: scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// RawOrderRows returns the month's orders grouped by (fuel, vehicle, day).
// Fuel and vehicle are joined with LEFT JOIN on purpose: a dangling
// reference comes back with an empty name/code and the aggregator turns it
// into a DataIntegrityError instead of the row disappearing from totals.
func (r *PGRepository) RawOrderRows(ctx context.Context, orgID int64, month, year int) ([]RawOrderRow, error) {
	const query = `
SELECT COALESCE(f.id, 0), COALESCE(f.name, ''), COALESCE(f.unit_price, 0),
       COALESCE(v.id, 0), COALESCE(v.code, ''),
       EXTRACT(DAY FROM o.sold_date)::int AS day,
       SUM(o.quantity), SUM(o.total_price), COUNT(*)::int
FROM orders o
LEFT JOIN fuels f ON f.id = o.fuel_id
LEFT JOIN vehicles v ON v.id = o.vehicle_id
WHERE o.organization_id = $1 AND o.sold_date >= $2 AND o.sold_date < $3
GROUP BY f.id, f.name, f.unit_price, v.id, v.code, day
ORDER BY f.name, v.code, day`
	start, end := periodRange(month, year)
	rows, err := r.pool.Query(ctx, query, orgID, start, end)
	if err != nil {
		return nil, fmt.Errorf("billing: query order rows: %w", err)
	}
	defer rows.Close()

	var out []RawOrderRow
	for rows.Next() {
		var row RawOrderRow
		if err := rows.Scan(&row.FuelID, &row.FuelName, &row.FuelPrice,
			&row.VehicleID, &row.VehicleCode, &row.Day,
			&row.Quantity, &row.Price, &row.Orders); err != nil {
			return nil, fmt.Errorf("billing: scan order row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// OrdersForPeriod returns the flat order list for the fallback breakdown
// path: fuel name plus each order's total price, one row per order.
func (r *PGRepository) OrdersForPeriod(ctx context.Context, orgID int64, month, year int) ([]OrderLine, error) {
	const query = `
SELECT COALESCE(f.name, ''), o.total_price
FROM orders o
LEFT JOIN fuels f ON f.id = o.fuel_id
WHERE o.organization_id = $1 AND o.sold_date >= $2 AND o.sold_date < $3
ORDER BY o.sold_date, o.id`
	start, end := periodRange(month, year)
	rows, err := r.pool.Query(ctx, query, orgID, start, end)
	if err != nil {
		return nil, fmt.Errorf("billing: query orders: %w", err)
	}
	defer rows.Close()

	var out []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.FuelName, &line.Price); err != nil {
			return nil, fmt.Errorf("billing: scan order: %w", err)
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

// StoredBreakdown returns the precomputed per-fuel summary for the period,
// empty when none was stored.
func (r *PGRepository) StoredBreakdown(ctx context.Context, orgID int64, month, year int) ([]BreakdownEntry, error) {
	const query = `
SELECT fuel_name, total_price, COALESCE(total_coupon, 0)
FROM organization_fuel_breakdowns
WHERE organization_id = $1 AND month = $2 AND year = $3
ORDER BY fuel_name`
	rows, err := r.pool.Query(ctx, query, orgID, month, year)
	if err != nil {
		return nil, fmt.Errorf("billing: query stored breakdown: %w", err)
	}
	defer rows.Close()

	var out []BreakdownEntry
	for rows.Next() {
		var entry BreakdownEntry
		if err := rows.Scan(&entry.FuelName, &entry.TotalPrice, &entry.TotalCoupon); err != nil {
			return nil, fmt.Errorf("billing: scan breakdown entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
