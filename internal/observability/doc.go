// Package observability provides structured logging and metrics for the
// warehouse API.
//
// This package implements:
//   - zap logger construction from configuration
//   - Prometheus collectors for HTTP traffic and authentication attempts
//   - The HTTP instrumentation middleware and /metrics handler
package observability
