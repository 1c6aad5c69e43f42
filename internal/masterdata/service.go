package masterdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Service applies validation and pricing rules on top of the repository.
type Service struct {
	repo          Repository
	validate      *validator.Validate
	orderRecorded func(orgID int64)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// WithOrderRecordedHook registers a callback fired after an order is
// persisted. The billing layer hangs its report cache invalidation here so
// new orders become visible without waiting out the cache TTL.
func (s *Service) WithOrderRecordedHook(fn func(orgID int64)) *Service {
	s.orderRecorded = fn
	return s
}

func (s *Service) ListOrganizations(ctx context.Context) ([]Organization, error) {
	return s.repo.ListOrganizations(ctx)
}

func (s *Service) GetOrganization(ctx context.Context, id int64) (Organization, error) {
	if id <= 0 {
		return Organization{}, ErrNotFound
	}
	return s.repo.GetOrganization(ctx, id)
}

func (s *Service) ListVehicles(ctx context.Context, orgID int64) ([]Vehicle, error) {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.repo.ListVehicles(ctx, orgID)
}

func (s *Service) ListFuels(ctx context.Context) ([]Fuel, error) {
	return s.repo.ListFuels(ctx)
}

// CreateOrder records a purchase. The unit price is snapshotted from the
// fuel record so later price changes never rewrite history.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (Order, error) {
	if err := s.validate.Struct(in); err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	soldDate, err := time.Parse("2006-01-02", in.SoldDate)
	if err != nil {
		return Order{}, fmt.Errorf("create order: sold_date: %w", err)
	}
	fuel, err := s.repo.GetFuel(ctx, in.FuelID)
	if err != nil {
		return Order{}, err
	}
	order := Order{
		OrganizationID: in.OrganizationID,
		VehicleID:      in.VehicleID,
		FuelID:         in.FuelID,
		Quantity:       in.Quantity,
		UnitPrice:      fuel.UnitPrice,
		TotalPrice:     in.Quantity * fuel.UnitPrice,
		SoldDate:       soldDate,
	}
	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return Order{}, err
	}
	if s.orderRecorded != nil {
		s.orderRecorded(created.OrganizationID)
	}
	return created, nil
}
