package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/upb/warehouse-api/models"
	"github.com/upb/warehouse-api/repositories"
	"go.uber.org/zap"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint failures
const uniqueViolation pq.ErrorCode = "23505"

const customerColumns = `id, email, first_name, last_name, password_hash, store_id, created_at, updated_at`

// CustomerRepository implements the repositories.CustomerRepository interface
type CustomerRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *DB, logger *zap.Logger) repositories.CustomerRepository {
	return &CustomerRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new customer
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.Email,
		customer.FirstName,
		customer.LastName,
		customer.PasswordHash,
		customer.StoreID,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create customer: %w", err)
	}

	r.logger.Debug("customer created", zap.String("id", customer.ID.String()))
	return nil
}

// GetByEmail retrieves a customer by exact email
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return r.getOne(ctx, query, email)
}

// GetByEmailFold retrieves a customer by email, ignoring case
func (r *CustomerRepository) GetByEmailFold(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE lower(email) = lower($1)`
	return r.getOne(ctx, query, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, query, email string) (*models.Customer, error) {
	customer := &models.Customer{}

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&customer.ID,
		&customer.Email,
		&customer.FirstName,
		&customer.LastName,
		&customer.PasswordHash,
		&customer.StoreID,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
