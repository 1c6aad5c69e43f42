package masterdata

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("masterdata: not found")
	// ErrBadReference indicates an order points at a missing organization,
	// vehicle or fuel.
	ErrBadReference = errors.New("masterdata: invalid reference")
)

// Repository provides reference-data persistence.
type Repository interface {
	ListOrganizations(ctx context.Context) ([]Organization, error)
	GetOrganization(ctx context.Context, id int64) (Organization, error)
	ListVehicles(ctx context.Context, orgID int64) ([]Vehicle, error)
	ListFuels(ctx context.Context) ([]Fuel, error)
	GetFuel(ctx context.Context, id int64) (Fuel, error)
	CreateOrder(ctx context.Context, order Order) (Order, error)
}

type repo struct {
	db *pgxpool.Pool
}

// NewRepository creates a pgx-backed master data repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repo{db: db}
}

func (r *repo) ListOrganizations(ctx context.Context) ([]Organization, error) {
	const q = `
SELECT id, COALESCE(code, ''), name, COALESCE(local_name, ''), COALESCE(vat_rate, 0), created_at, updated_at
FROM organizations
ORDER BY code, id`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Code, &o.Name, &o.LocalName, &o.VATRate, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *repo) GetOrganization(ctx context.Context, id int64) (Organization, error) {
	const q = `
SELECT id, COALESCE(code, ''), name, COALESCE(local_name, ''), COALESCE(vat_rate, 0), created_at, updated_at
FROM organizations
WHERE id = $1`
	var o Organization
	err := r.db.QueryRow(ctx, q, id).Scan(&o.ID, &o.Code, &o.Name, &o.LocalName, &o.VATRate, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return o, err
}

func (r *repo) ListVehicles(ctx context.Context, orgID int64) ([]Vehicle, error) {
	const q = `
SELECT id, organization_id, code, COALESCE(name, ''), COALESCE(model, ''), created_at
FROM vehicles
WHERE organization_id = $1
ORDER BY code`
	rows, err := r.db.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := rows.Scan(&v.ID, &v.OrganizationID, &v.Code, &v.Name, &v.Model, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *repo) ListFuels(ctx context.Context) ([]Fuel, error) {
	const q = `SELECT id, name, unit_price FROM fuels ORDER BY name, id`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fuels []Fuel
	for rows.Next() {
		var f Fuel
		if err := rows.Scan(&f.ID, &f.Name, &f.UnitPrice); err != nil {
			return nil, err
		}
		fuels = append(fuels, f)
	}
	return fuels, rows.Err()
}

func (r *repo) GetFuel(ctx context.Context, id int64) (Fuel, error) {
	const q = `SELECT id, name, unit_price FROM fuels WHERE id = $1`
	var f Fuel
	err := r.db.QueryRow(ctx, q, id).Scan(&f.ID, &f.Name, &f.UnitPrice)
	if errors.Is(err, pgx.ErrNoRows) {
		return Fuel{}, ErrNotFound
	}
	return f, err
}

func (r *repo) CreateOrder(ctx context.Context, order Order) (Order, error) {
	const q = `
INSERT INTO orders (organization_id, vehicle_id, fuel_id, quantity, unit_price, total_price, sold_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, q,
		order.OrganizationID, order.VehicleID, order.FuelID,
		order.Quantity, order.UnitPrice, order.TotalPrice,
		order.SoldDate, now,
	).Scan(&order.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Order{}, ErrBadReference
		}
		return Order{}, err
	}
	order.CreatedAt = now
	return order, nil
}
