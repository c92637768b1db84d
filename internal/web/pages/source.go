package pages

import (
	"context"
	"errors"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

// DoctorService is the in-process logic the pages read through.
type DoctorService interface {
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
	SearchDoctors(ctx context.Context, query string) ([]domain.Doctor, error)
	DeleteDoctor(ctx context.Context, id string) error
}

// serviceSource adapts DoctorService to view.DoctorSource: not-found and
// invalid IDs become an absent doctor rather than an error.
type serviceSource struct {
	svc DoctorService
}

func (s serviceSource) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	d, err := s.svc.GetDoctor(ctx, id)
	if errors.Is(err, domain.ErrDoctorNotFound) || errors.Is(err, domain.ErrInvalidDoctorID) {
		return nil, nil
	}
	return d, err
}

func (s serviceSource) SearchDoctors(ctx context.Context, query string) ([]domain.Doctor, error) {
	return s.svc.SearchDoctors(ctx, query)
}

func (s serviceSource) DeleteDoctor(ctx context.Context, id string) error {
	return s.svc.DeleteDoctor(ctx, id)
}
