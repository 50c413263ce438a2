package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Gate errors
	ErrInvalidSecret     = errors.New("invalid secret")
	ErrRateLimitExceeded = errors.New("too many failed attempts")
	ErrSessionExpired    = errors.New("session expired")
	ErrSessionRevoked    = errors.New("session revoked")

	// Booking errors
	ErrSlotTaken      = errors.New("time slot already booked")
	ErrInvalidService = errors.New("unknown service")
	ErrInvalidStatus  = errors.New("invalid status")
)
