package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/warehouse-api/auth"
	"github.com/upb/warehouse-api/config"
	"github.com/upb/warehouse-api/models"
	"github.com/upb/warehouse-api/repositories"
	"go.uber.org/zap"
)

// MockTokenVerifier is a mock implementation of TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

// MockCustomerLookup is a mock implementation of CustomerLookup
type MockCustomerLookup struct {
	mock.Mock
}

func (m *MockCustomerLookup) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

// MockAttemptRecorder is a mock implementation of AttemptRecorder
type MockAttemptRecorder struct {
	mock.Mock
}

func (m *MockAttemptRecorder) RecordAuthAttempt(operation, outcome string) {
	m.Called(operation, outcome)
}

func claimsFor(email string) *auth.Claims {
	c := &auth.Claims{}
	c.Subject = email
	return c
}

// captureAuth returns a handler recording the AuthContext it observed
func captureAuth(seen **AuthContext, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		*seen = GetAuthContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	logger := zap.NewNop()
	customer := models.NewCustomer("a@x.com", "A", "B", "$2a$04$hash", uuid.New())

	t.Run("valid token installs auth context", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		lookup := new(MockCustomerLookup)
		recorder := new(MockAttemptRecorder)
		mw := NewAuthMiddleware(verifier, lookup, recorder, logger)

		claims := claimsFor("a@x.com")
		verifier.On("Verify", "valid-token").Return(claims, nil)
		lookup.On("GetByEmail", mock.Anything, "a@x.com").Return(customer, nil)
		recorder.On("RecordAuthAttempt", "authenticate", "success").Return()

		var seen *AuthContext
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/me", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()

		mw.Authenticate(captureAuth(&seen, &called)).ServeHTTP(w, req)

		assert.True(t, called)
		require.NotNil(t, seen)
		assert.Same(t, customer, seen.Customer)
		assert.Same(t, claims, seen.Claims)
		verifier.AssertExpectations(t)
		lookup.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		lookup := new(MockCustomerLookup)
		mw := NewAuthMiddleware(verifier, lookup, nil, logger)

		verifier.On("Verify", "valid-token").Return(claimsFor("a@x.com"), nil)
		lookup.On("GetByEmail", mock.Anything, "a@x.com").Return(customer, nil)

		var seen *AuthContext
		var called bool
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer valid-token")

		mw.Authenticate(captureAuth(&seen, &called)).ServeHTTP(httptest.NewRecorder(), req)

		assert.NotNil(t, seen)
	})

	anonymous := []struct {
		name      string
		header    string
		setup     func(*MockTokenVerifier, *MockCustomerLookup, *MockAttemptRecorder)
		wantFault bool
	}{
		{
			name:   "no header",
			header: "",
			setup:  func(*MockTokenVerifier, *MockCustomerLookup, *MockAttemptRecorder) {},
		},
		{
			name:   "wrong scheme",
			header: "Basic dXNlcjpwYXNz",
			setup:  func(*MockTokenVerifier, *MockCustomerLookup, *MockAttemptRecorder) {},
		},
		{
			name:   "scheme without token",
			header: "Bearer",
			setup:  func(*MockTokenVerifier, *MockCustomerLookup, *MockAttemptRecorder) {},
		},
		{
			name:   "invalid token",
			header: "Bearer garbage",
			setup: func(v *MockTokenVerifier, _ *MockCustomerLookup, r *MockAttemptRecorder) {
				v.On("Verify", "garbage").Return(nil, auth.ErrInvalidToken)
				r.On("RecordAuthAttempt", "authenticate", "invalid_token").Return()
			},
		},
		{
			name:   "subject no longer exists",
			header: "Bearer orphan-token",
			setup: func(v *MockTokenVerifier, l *MockCustomerLookup, r *MockAttemptRecorder) {
				v.On("Verify", "orphan-token").Return(claimsFor("gone@x.com"), nil)
				l.On("GetByEmail", mock.Anything, "gone@x.com").Return(nil, repositories.ErrNotFound)
				r.On("RecordAuthAttempt", "authenticate", "unknown_subject").Return()
			},
		},
		{
			name:   "store failure",
			header: "Bearer valid-token",
			setup: func(v *MockTokenVerifier, l *MockCustomerLookup, r *MockAttemptRecorder) {
				v.On("Verify", "valid-token").Return(claimsFor("a@x.com"), nil)
				l.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, errors.New("connection refused"))
				r.On("RecordAuthAttempt", "authenticate", "error").Return()
			},
			wantFault: true,
		},
	}

	for _, tt := range anonymous {
		t.Run(tt.name+" continues anonymously", func(t *testing.T) {
			verifier := new(MockTokenVerifier)
			lookup := new(MockCustomerLookup)
			recorder := new(MockAttemptRecorder)
			tt.setup(verifier, lookup, recorder)
			mw := NewAuthMiddleware(verifier, lookup, recorder, logger)

			var seen *AuthContext
			var called bool
			req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			var fault bool
			next := captureAuth(&seen, &called)
			mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fault = LookupFailed(r.Context())
				next.ServeHTTP(w, r)
			})).ServeHTTP(w, req)

			assert.True(t, called, "gate must never stop the request")
			assert.Nil(t, seen)
			assert.Equal(t, tt.wantFault, fault)
			assert.Equal(t, http.StatusOK, w.Code)
			verifier.AssertExpectations(t)
			lookup.AssertExpectations(t)
			recorder.AssertExpectations(t)
		})
	}
}

func TestAuthenticate_WithTokenService(t *testing.T) {
	tokens := auth.NewTokenService(config.AuthConfig{
		JWTSecret: "0123456789abcdef0123456789abcdef",
		Issuer:    "warehouse-api",
		TokenTTL:  time.Hour,
	})
	customer := models.NewCustomer("a@x.com", "A", "B", "$2a$04$hash", uuid.New())
	token, err := tokens.Issue(customer)
	require.NoError(t, err)

	lookup := new(MockCustomerLookup)
	lookup.On("GetByEmail", mock.Anything, "a@x.com").Return(customer, nil)
	mw := NewAuthMiddleware(tokens, lookup, nil, zap.NewNop())

	var seen *AuthContext
	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	mw.Authenticate(captureAuth(&seen, &called)).ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "a@x.com", seen.Claims.Subject)
	assert.Equal(t, customer.ID, seen.Customer.ID)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi"},
		{"BEARER abc", "abc"},
		{"Bearer   padded  ", "padded"},
		{"Bearer", ""},
		{"Token abc", ""},
		{"", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, extractBearerToken(req), "header %q", tt.header)
	}
}
