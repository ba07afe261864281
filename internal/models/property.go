package models

import "time"

// Property is owned by exactly one owner account; currency is fixed at
// creation and never converted.
type Property struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

type Unit struct {
	ID         int    `json:"id"`
	PropertyID int    `json:"property_id"`
	Label      string `json:"label"`
	Bedrooms   int    `json:"bedrooms"`
	Occupied   bool   `json:"occupied"`
}

type Tenant struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	IDNumber  string    `json:"id_number"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatePropertyRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Currency string `json:"currency"`
}

type CreateUnitRequest struct {
	PropertyID int    `json:"property_id"`
	Label      string `json:"label"`
	Bedrooms   int    `json:"bedrooms"`
}

type CreateTenantRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	IDNumber string `json:"id_number"`
}
