package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/upb/warehouse-api/auth"
	"github.com/upb/warehouse-api/models"
	"github.com/upb/warehouse-api/repositories"
	"go.uber.org/zap"
)

// Outcomes of the authenticate operation reported to the recorder
const (
	operationAuthenticate = "authenticate"

	outcomeAuthenticated  = "success"
	outcomeInvalidToken   = "invalid_token"
	outcomeUnknownSubject = "unknown_subject"
	outcomeError          = "error"
)

// TokenVerifier validates session tokens
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// CustomerLookup resolves a token subject to a customer
type CustomerLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
}

// AttemptRecorder counts authentication attempts by outcome
type AttemptRecorder interface {
	RecordAuthAttempt(operation, outcome string)
}

// AuthMiddleware resolves bearer tokens into an AuthContext
type AuthMiddleware struct {
	verifier  TokenVerifier
	customers CustomerLookup
	recorder  AttemptRecorder
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware. recorder may be nil.
func NewAuthMiddleware(verifier TokenVerifier, customers CustomerLookup, recorder AttemptRecorder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		customers: customers,
		recorder:  recorder,
		logger:    logger,
	}
}

// Authenticate installs an AuthContext when the request carries a valid
// bearer token for a known customer. It never rejects a request: a missing,
// malformed or invalid token, or an unknown subject, leaves the request
// anonymous and RoutePolicy decides whether that is acceptable. A store
// failure also leaves it anonymous but is marked with LookupFailed.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractBearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		requestID := GetRequestIDFromContext(ctx)

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.record(outcomeInvalidToken)
			m.logger.Debug("token verification failed",
				zap.String("request_id", requestID))
			next.ServeHTTP(w, r)
			return
		}

		customer, err := m.customers.GetByEmail(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				m.record(outcomeUnknownSubject)
				m.logger.Warn("token subject does not match a customer",
					zap.String("request_id", requestID))
			} else {
				m.record(outcomeError)
				m.logger.Error("failed to resolve token subject",
					zap.String("request_id", requestID),
					zap.Error(err))
				r = r.WithContext(withLookupFault(ctx))
			}
			next.ServeHTTP(w, r)
			return
		}

		m.record(outcomeAuthenticated)
		m.logger.Debug("request authenticated",
			zap.String("request_id", requestID),
			zap.String("customer_id", customer.ID.String()))

		ctx = WithAuthContext(ctx, &AuthContext{Customer: customer, Claims: claims})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) record(outcome string) {
	if m.recorder != nil {
		m.recorder.RecordAuthAttempt(operationAuthenticate, outcome)
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header.
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
