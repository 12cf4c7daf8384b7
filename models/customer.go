package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a registered principal able to authenticate against the API.
// Email is unique ignoring case; PasswordHash never leaves the server.
type Customer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	StoreID      uuid.UUID `json:"store_id" db:"store_id"` // owning store scope
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewCustomer creates a new Customer instance with a fresh ID
func NewCustomer(email, firstName, lastName, passwordHash string, storeID uuid.UUID) *Customer {
	now := time.Now().UTC()
	return &Customer{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		StoreID:      storeID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// String implements fmt.Stringer without exposing the password hash
func (c Customer) String() string {
	return "Customer{" + c.ID.String() + " " + c.Email + "}"
}
