package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	StoreID  string `json:"store_id" validate:"required,uuid"`
	Note     string `validate:"max=5"`
}

func validTestRequest() testRequest {
	return testRequest{
		Email:    "a@x.com",
		Password: "Passw0rd1",
		StoreID:  "3f1c2a5e-8b7d-4c3e-9a1f-2b6d7e8f9a0b",
	}
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := validTestRequest()
		assert.NoError(t, ValidateStruct(&s))
	})

	t.Run("password length is counted in bytes", func(t *testing.T) {
		s := validTestRequest()
		s.Password = strings.Repeat("é", 36)
		assert.NoError(t, ValidateStruct(&s))

		s.Password = strings.Repeat("a", 73)
		assert.Error(t, ValidateStruct(&s))
	})

	tests := []struct {
		name    string
		mutate  func(*testRequest)
		field   string
		message string
	}{
		{"missing email", func(r *testRequest) { r.Email = "" }, "email", "email is required"},
		{"invalid email", func(r *testRequest) { r.Email = "not-an-email" }, "email", "email must be a valid email"},
		{"short password", func(r *testRequest) { r.Password = "abc" }, "password", "password must be at least 8 characters"},
		{"password over 72 bytes", func(r *testRequest) { r.Password = strings.Repeat("é", 37) }, "password", "password must be at most 72 bytes"},
		{"invalid uuid", func(r *testRequest) { r.StoreID = "store-1" }, "store_id", "store_id must be a valid UUID"},
		{"field without json tag", func(r *testRequest) { r.Note = "too long" }, "Note", "Note must be at most 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validTestRequest()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, "Validation failed", err.Error())

			fields := GetValidationFields(err)
			assert.Equal(t, tt.message, fields[tt.field])
		})
	}
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	err := ValidateStruct("just a string")
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
}

func TestGetValidationFields(t *testing.T) {
	err := &ValidationError{Message: "Validation failed", Fields: map[string]string{"email": "email is required"}}
	assert.Equal(t, "email is required", GetValidationFields(err)["email"])

	assert.Nil(t, GetValidationFields(assert.AnError))
	assert.False(t, IsValidationError(assert.AnError))
	assert.False(t, IsValidationError(nil))
}
