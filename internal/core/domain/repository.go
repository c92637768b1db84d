package domain

import "context"

// DoctorRepository defines the interface for doctor data access
type DoctorRepository interface {
	// GetDoctor returns ErrDoctorNotFound when no row matches.
	GetDoctor(ctx context.Context, id string) (*Doctor, error)
	// SearchDoctors returns the default listing for an empty query.
	SearchDoctors(ctx context.Context, query string) ([]Doctor, error)
	// DeleteDoctor returns ErrDoctorNotFound when nothing was deleted.
	DeleteDoctor(ctx context.Context, id string) error
}

// DoctorCache is an optional read-through cache in front of the repository.
// Get reports a miss with (nil, nil).
type DoctorCache interface {
	Get(ctx context.Context, id string) (*Doctor, error)
	Set(ctx context.Context, doctor *Doctor) error
	Invalidate(ctx context.Context, id string) error
}
