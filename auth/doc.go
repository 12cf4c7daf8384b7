// Package auth provides the credential primitives of the warehouse API.
//
// This package implements:
//   - Password hashing and verification (bcrypt, configurable cost)
//   - Issuance and verification of HS256 session tokens
//
// Tokens are stateless. Once issued a token stays valid until it expires;
// there is no server-side revocation list.
package auth
