package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/doctor-service/internal/core/domain"
	"github.com/duynhne/doctor-service/middleware"
)

const maxDoctorIDLength = 128

// DoctorService holds the doctor lookup, search and removal rules
type DoctorService struct {
	repo   domain.DoctorRepository
	cache  domain.DoctorCache
	logger *zap.Logger
}

// Option configures a DoctorService.
type Option func(*DoctorService)

// WithCache puts a read-through cache in front of GetDoctor.
func WithCache(cache domain.DoctorCache) Option {
	return func(s *DoctorService) { s.cache = cache }
}

// WithLogger sets the logger used for cache degradation warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *DoctorService) { s.logger = logger }
}

// NewDoctorService creates a new doctor service
func NewDoctorService(repo domain.DoctorRepository, opts ...Option) *DoctorService {
	s := &DoctorService{repo: repo, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDoctor retrieves a doctor by ID
func (s *DoctorService) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	ctx, span := middleware.StartSpan(ctx, "doctor.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("doctor.id", id),
	))
	defer span.End()
	middleware.RecordSearch("id")

	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			// Cache errors degrade to a database read.
			s.logger.Warn("Doctor cache read failed", zap.String("doctor_id", id), zap.Error(err))
		} else if cached != nil {
			span.SetAttributes(attribute.Bool("doctor.cached", true))
			return cached, nil
		}
	}

	doctor, err := s.repo.GetDoctor(ctx, id)
	if err != nil {
		span.SetAttributes(attribute.Bool("doctor.found", false))
		return nil, err
	}
	span.SetAttributes(attribute.Bool("doctor.found", true))

	if s.cache != nil {
		if err := s.cache.Set(ctx, doctor); err != nil {
			s.logger.Warn("Doctor cache write failed", zap.String("doctor_id", id), zap.Error(err))
		}
	}
	return doctor, nil
}

// SearchDoctors runs a free-text search; an empty query yields the default listing
func (s *DoctorService) SearchDoctors(ctx context.Context, query string) ([]domain.Doctor, error) {
	query = strings.TrimSpace(query)
	ctx, span := middleware.StartSpan(ctx, "doctor.search", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("doctor.query", query),
	))
	defer span.End()

	if query == "" {
		middleware.RecordSearch("listing")
	} else {
		middleware.RecordSearch("query")
	}

	doctors, err := s.repo.SearchDoctors(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("search doctors %q: %w", query, err)
	}
	if doctors == nil {
		doctors = []domain.Doctor{}
	}

	span.SetAttributes(attribute.Int("doctor.count", len(doctors)))
	return doctors, nil
}

// DeleteDoctor removes a doctor and evicts it from the cache
func (s *DoctorService) DeleteDoctor(ctx context.Context, id string) error {
	ctx, span := middleware.StartSpan(ctx, "doctor.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("doctor.id", id),
	))
	defer span.End()

	id, err := normalizeID(id)
	if err != nil {
		middleware.RecordDeletion("invalid")
		return err
	}

	if err := s.repo.DeleteDoctor(ctx, id); err != nil {
		if errors.Is(err, domain.ErrDoctorNotFound) {
			middleware.RecordDeletion("not_found")
		} else {
			middleware.RecordDeletion("error")
			span.RecordError(err)
		}
		return err
	}
	middleware.RecordDeletion("ok")

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, id); err != nil {
			s.logger.Warn("Doctor cache invalidation failed", zap.String("doctor_id", id), zap.Error(err))
		}
	}

	span.AddEvent("doctor.deleted")
	return nil
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > maxDoctorIDLength || strings.ContainsAny(id, " \t\r\n") {
		return "", fmt.Errorf("doctor id %q: %w", id, domain.ErrInvalidDoctorID)
	}
	return id, nil
}
