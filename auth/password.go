package auth

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the input limit of bcrypt; longer inputs are truncated by the algorithm
const maxPasswordBytes = 72

// dummyPassword seeds the hash compared against when a login names an unknown email
const dummyPassword = "warehouse-api/no-such-customer"

var (
	// ErrEmptyPassword is returned when attempting to hash an empty password
	ErrEmptyPassword = errors.New("password cannot be empty")

	// ErrPasswordTooLong is returned for passwords bcrypt would silently truncate
	ErrPasswordTooLong = fmt.Errorf("password exceeds %d bytes", maxPasswordBytes)
)

// PasswordHasher provides one-way password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted hash of the password. Two calls never return the same digest.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash yields false.
	Verify(password, hash string) bool

	// DummyHash returns a hash at the same work factor as Hash for comparing
	// against when no real hash exists.
	DummyHash() string
}

// BcryptHasher implements PasswordHasher using bcrypt.
// It is safe for concurrent use.
type BcryptHasher struct {
	cost int

	dummyOnce sync.Once
	dummyHash string
}

// NewBcryptHasher creates a hasher with the given work factor.
// Out-of-range costs are clamped to the bcrypt bounds.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Cost returns the configured work factor
func (h *BcryptHasher) Cost() int {
	return h.cost
}

// DummyHash returns a hash of a fixed password at the hasher's own cost.
// Verifying against it takes as long as verifying a real customer's hash,
// so an unknown email is not faster to reject than a wrong password.
// It is computed on first use and reused afterwards.
func (h *BcryptHasher) DummyHash() string {
	h.dummyOnce.Do(func() {
		// cannot fail: the cost is clamped and the input is short
		hash, _ := bcrypt.GenerateFromPassword([]byte(dummyPassword), h.cost)
		h.dummyHash = string(hash)
	})
	return h.dummyHash
}

// Hash produces a bcrypt hash of the password with a fresh random salt
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify checks the password against the hash in constant time
func (h *BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
