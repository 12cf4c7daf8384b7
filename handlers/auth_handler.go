package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/upb/warehouse-api/middleware"
	"github.com/upb/warehouse-api/models"
	"github.com/upb/warehouse-api/services"
	"github.com/upb/warehouse-api/utils"
	"go.uber.org/zap"
)

// AuthService is the subset of services.AuthService used by the handlers
type AuthService interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.Customer, error)
	Login(ctx context.Context, creds services.Credentials) (string, error)
	TokenTTL() time.Duration
}

// RegisterRequest is the body of POST /api/v1/auth/register
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,maxbytes=72"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	StoreID   string `json:"store_id" validate:"required,uuid"`
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

// CustomerResponse is the public view of a customer
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	StoreID   uuid.UUID `json:"store_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newCustomerResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		StoreID:   c.StoreID,
		CreatedAt: c.CreatedAt,
	}
}

// AuthHandler handles registration and login
type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// HandleRegister handles POST /api/v1/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	var req RegisterRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("failed to decode register request",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	customer, err := h.service.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		StoreID:   storeID,
	})
	if err != nil {
		h.logger.Debug("registration failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteCreated(w, newCustomerResponse(customer)); err != nil {
		h.logger.Error("failed to write register response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}

// HandleLogin handles POST /api/v1/auth/login.
// Missing fields are reported the same way as wrong credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	var req LoginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("failed to decode login request",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	token, err := h.service.Login(r.Context(), services.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	resp := LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.service.TokenTTL() / time.Second),
	}
	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write login response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
