package masterdata

import "time"

// Organization is a fleet customer of the station.
type Organization struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	LocalName string    `json:"local_name,omitempty"`
	VATRate   float64   `json:"vat_rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vehicle belongs to an organization. Code is the registration code that
// shows up on invoices.
type Vehicle struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name,omitempty"`
	Model          string    `json:"model,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Fuel is a sellable fuel type. Names are free text and not guaranteed
// unique, which is why billing keys everything by id.
type Fuel struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is one immutable fuel purchase. TotalPrice is stored redundantly
// alongside Quantity and UnitPrice.
type Order struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	VehicleID      int64     `json:"vehicle_id"`
	FuelID         int64     `json:"fuel_id"`
	Quantity       float64   `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TotalPrice     float64   `json:"total_price"`
	SoldDate       time.Time `json:"sold_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateOrderInput is the request payload for recording a purchase. The
// unit price is resolved from the fuel at creation time.
type CreateOrderInput struct {
	OrganizationID int64   `json:"organization_id" validate:"required,gt=0"`
	VehicleID      int64   `json:"vehicle_id" validate:"required,gt=0"`
	FuelID         int64   `json:"fuel_id" validate:"required,gt=0"`
	Quantity       float64 `json:"quantity" validate:"required,gt=0"`
	SoldDate       string  `json:"sold_date" validate:"required,datetime=2006-01-02"`
}
