// Package middleware holds the net/http middleware applied around the
// modelgate HTTP handler: panic recovery, request ids, request logging,
// CORS, body size limits and optional JWT authentication.
package middleware
