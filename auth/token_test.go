package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/warehouse-api/config"
	"github.com/upb/warehouse-api/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:  testSecret,
		Issuer:     "warehouse-api",
		TokenTTL:   time.Hour,
		BcryptCost: 4,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testCustomer(email string) *models.Customer {
	return models.NewCustomer(email, "Ada", "Lovelace", "$2a$04$hash", uuid.New())
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testAuthConfig())

	token, err := svc.Issue(testCustomer("ada@example.com"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Subject)
	assert.Equal(t, "warehouse-api", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestTokenService_SubjectPreservesCase(t *testing.T) {
	svc := NewTokenService(testAuthConfig())

	token, err := svc.Issue(testCustomer("Ada@Example.COM"))
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Ada@Example.COM", claims.Subject)
}

func TestTokenService_IssueRequiresSubject(t *testing.T) {
	svc := NewTokenService(testAuthConfig())

	_, err := svc.Issue(nil)
	assert.Error(t, err)

	_, err = svc.Issue(&models.Customer{})
	assert.Error(t, err)
}

func TestTokenService_Expiry(t *testing.T) {
	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cfg := testAuthConfig()

	issuer := NewTokenService(cfg, WithClock(fixedClock(issuedAt)))
	token, err := issuer.Issue(testCustomer("ada@example.com"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		wantErr bool
	}{
		{"just issued", issuedAt, false},
		{"one second before expiry", issuedAt.Add(cfg.TokenTTL - time.Second), false},
		{"exactly at expiry", issuedAt.Add(cfg.TokenTTL), true},
		{"after expiry", issuedAt.Add(cfg.TokenTTL + time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := NewTokenService(cfg, WithClock(fixedClock(tt.now)))
			claims, err := verifier.Verify(token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", claims.Subject)
		})
	}
}

func TestTokenService_RejectsTamperedTokens(t *testing.T) {
	svc := NewTokenService(testAuthConfig())

	token, err := svc.Issue(testCustomer("ada@example.com"))
	require.NoError(t, err)

	for i := 0; i < len(token); i++ {
		replacement := byte('A')
		if token[i] == 'A' {
			replacement = 'B'
		}
		tampered := token[:i] + string(replacement) + token[i+1:]

		_, err := svc.Verify(tampered)
		assert.ErrorIs(t, err, ErrInvalidToken, "tampered byte at index %d was accepted", i)
	}
}

func TestTokenService_RejectsForeignTokens(t *testing.T) {
	cfg := testAuthConfig()
	svc := NewTokenService(cfg)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	valid := jwt.RegisteredClaims{
		Subject:   "ada@example.com",
		Issuer:    cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	noSubject := valid
	noSubject.Subject = ""

	otherKey := NewTokenService(config.AuthConfig{
		JWTSecret: "ffffffffffffffffffffffffffffffff",
		Issuer:    cfg.Issuer,
		TokenTTL:  time.Hour,
	})
	otherKeyToken, err := otherKey.Issue(testCustomer("ada@example.com"))
	require.NoError(t, err)

	unsigned := sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "garbage"},
		{"two segments", "abc.def"},
		{"wrong key", otherKeyToken},
		{"wrong issuer", sign(jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"missing expiry", sign(jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"missing subject", sign(jwt.SigningMethodHS256, []byte(testSecret), noSubject)},
		{"other hmac algorithm", sign(jwt.SigningMethodHS512, []byte(testSecret), valid)},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenService_TTL(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTL = 7 * 24 * time.Hour
	assert.Equal(t, 7*24*time.Hour, NewTokenService(cfg).TTL())
}
