package domain

import "errors"

// Sentinel errors for doctor operations.
var (
	// ErrDoctorNotFound indicates the requested doctor does not exist.
	// HTTP Status: 404 Not Found
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrInvalidDoctorID indicates an empty or malformed doctor identifier.
	// HTTP Status: 400 Bad Request
	ErrInvalidDoctorID = errors.New("invalid doctor id")
)
