package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/warehouse-api/auth"
	"github.com/upb/warehouse-api/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	// authContextKey is the context key for the authenticated principal
	authContextKey contextKey = "auth_context"

	lookupFaultKey contextKey = "auth_lookup_fault"
)

// AuthContext describes the authenticated principal of one request.
// It lives only as long as the request context.
type AuthContext struct {
	Customer *models.Customer
	Claims   *auth.Claims
}

// WithAuthContext adds the authenticated principal to the context
func WithAuthContext(ctx context.Context, ac *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, ac)
}

// GetAuthContext retrieves the authenticated principal, or nil for anonymous requests
func GetAuthContext(ctx context.Context) *AuthContext {
	if val := ctx.Value(authContextKey); val != nil {
		if ac, ok := val.(*AuthContext); ok && ac.Customer != nil {
			return ac
		}
	}
	return nil
}

// withLookupFault marks a request whose token verified but whose subject
// could not be resolved because the customer store failed
func withLookupFault(ctx context.Context) context.Context {
	return context.WithValue(ctx, lookupFaultKey, true)
}

// LookupFailed reports whether Authenticate hit a store failure for this request
func LookupFailed(ctx context.Context) bool {
	failed, _ := ctx.Value(lookupFaultKey).(bool)
	return failed
}

// GetCustomerFromContext retrieves the authenticated customer, or nil
func GetCustomerFromContext(ctx context.Context) *models.Customer {
	if ac := GetAuthContext(ctx); ac != nil {
		return ac.Customer
	}
	return nil
}

// GetRequestIDFromContext retrieves the request ID assigned by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
