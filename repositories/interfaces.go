package repositories

import (
	"context"
	"errors"

	"github.com/upb/warehouse-api/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned by Create when the email is already taken,
	// ignoring case
	ErrDuplicateEmail = errors.New("email already registered")
)

// CustomerRepository handles customer data operations
type CustomerRepository interface {
	// Create persists a new customer.
	// Returns ErrDuplicateEmail if the email collides with an existing one.
	Create(ctx context.Context, customer *models.Customer) error

	// GetByEmail retrieves a customer whose email matches exactly
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)

	// GetByEmailFold retrieves a customer whose email matches ignoring case
	GetByEmailFold(ctx context.Context, email string) (*models.Customer, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Customers CustomerRepository
}
