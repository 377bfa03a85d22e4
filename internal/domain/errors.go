package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrCodeBlocked means the active code exhausted its brute-force budget.
	ErrCodeBlocked = errors.New("code blocked")

	// ErrTokenExpired is surfaced distinctly from other token failures so the
	// client can prompt re-authentication instead of a generic error.
	ErrTokenExpired = errors.New("token expired")

	// ErrDelivery means the code email could not be handed to the transport.
	ErrDelivery = errors.New("delivery failed")
)
