package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/upb/warehouse-api/auth"
	"github.com/upb/warehouse-api/models"
	"github.com/upb/warehouse-api/repositories"
	"github.com/upb/warehouse-api/utils"
	"go.uber.org/zap"
)

// Auth attempt operations and outcomes reported to the metrics recorder
const (
	OperationRegister = "register"
	OperationLogin    = "login"

	OutcomeSuccess            = "success"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeAlreadyExists      = "already_exists"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
)

// PasswordHasher hashes and verifies passwords.
// DummyHash must be produced at the same cost as Hash.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
	DummyHash() string
}

// TokenIssuer issues session tokens for authenticated customers
type TokenIssuer interface {
	Issue(customer *models.Customer) (string, error)
	TTL() time.Duration
}

// AttemptRecorder counts authentication attempts by outcome
type AttemptRecorder interface {
	RecordAuthAttempt(operation, outcome string)
}

// RegisterInput carries the data needed to register a customer
type RegisterInput struct {
	Email     string    `validate:"required,email,max=255"`
	Password  string    `validate:"required,min=8,maxbytes=72"`
	FirstName string    `validate:"required,max=100"`
	LastName  string    `validate:"required,max=100"`
	StoreID   uuid.UUID `validate:"required"`
}

// Credentials are the raw login inputs. They are never stored.
type Credentials struct {
	Email    string
	Password string
}

// AuthService implements customer registration and login
type AuthService struct {
	customers repositories.CustomerRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	recorder  AttemptRecorder
	logger    *zap.Logger
}

// NewAuthService creates a new auth service. recorder may be nil.
func NewAuthService(
	customers repositories.CustomerRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	recorder AttemptRecorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		customers: customers,
		hasher:    hasher,
		tokens:    tokens,
		recorder:  recorder,
		logger:    logger,
	}
}

// TokenTTL returns the lifetime of tokens returned by Login
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Register creates a new customer.
// The email is checked ignoring case; a match fails with ErrAlreadyExists
// before any hashing or persistence happens.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.Customer, error) {
	if err := utils.ValidateStruct(&input); err != nil {
		s.record(OperationRegister, OutcomeInvalidInput)
		return nil, invalidInput(err)
	}

	_, err := s.customers.GetByEmailFold(ctx, input.Email)
	switch {
	case err == nil:
		s.record(OperationRegister, OutcomeAlreadyExists)
		s.logger.Debug("registration rejected, email taken", zap.String("email", input.Email))
		return nil, ErrAlreadyExists
	case !errors.Is(err, repositories.ErrNotFound):
		s.record(OperationRegister, OutcomeError)
		return nil, WrapInternal("failed to look up customer", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) || errors.Is(err, auth.ErrEmptyPassword) {
			s.record(OperationRegister, OutcomeInvalidInput)
			return nil, ErrInvalidPassword
		}
		s.record(OperationRegister, OutcomeError)
		return nil, WrapInternal("failed to hash password", err)
	}

	customer := models.NewCustomer(input.Email, input.FirstName, input.LastName, hash, input.StoreID)
	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			s.record(OperationRegister, OutcomeAlreadyExists)
			return nil, ErrAlreadyExists
		}
		s.record(OperationRegister, OutcomeError)
		return nil, WrapInternal("failed to create customer", err)
	}

	s.record(OperationRegister, OutcomeSuccess)
	s.logger.Info("customer registered",
		zap.String("customer_id", customer.ID.String()),
		zap.String("store_id", customer.StoreID.String()))

	return customer, nil
}

// Login exchanges credentials for a signed token.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (string, error) {
	if creds.Email == "" || creds.Password == "" {
		s.record(OperationLogin, OutcomeInvalidCredentials)
		return "", ErrInvalidCredentials
	}

	customer, err := s.customers.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// same bcrypt work as a wrong password, so timing does not reveal the email
			s.hasher.Verify(creds.Password, s.hasher.DummyHash())
			s.record(OperationLogin, OutcomeInvalidCredentials)
			s.logger.Debug("login failed", zap.String("email", creds.Email))
			return "", ErrInvalidCredentials
		}
		s.record(OperationLogin, OutcomeError)
		return "", WrapInternal("failed to look up customer", err)
	}

	if !s.hasher.Verify(creds.Password, customer.PasswordHash) {
		s.record(OperationLogin, OutcomeInvalidCredentials)
		s.logger.Debug("login failed", zap.String("email", creds.Email))
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(customer)
	if err != nil {
		s.record(OperationLogin, OutcomeError)
		return "", WrapInternal("failed to issue token", err)
	}

	s.record(OperationLogin, OutcomeSuccess)
	s.logger.Info("customer logged in", zap.String("customer_id", customer.ID.String()))

	return token, nil
}

func (s *AuthService) record(operation, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordAuthAttempt(operation, outcome)
	}
}

func invalidInput(err error) error {
	domainErr := NewDomainError(ErrorTypeValidation, ErrInvalidInput.Message, err)
	for field, msg := range utils.GetValidationFields(err) {
		domainErr.WithDetail(field, msg)
	}
	return domainErr
}
