package psql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/doctor-service/internal/core/domain"
	"github.com/duynhne/doctor-service/middleware"
)

// Querier is the subset of *pgxpool.Pool the repository uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const doctorColumns = `id, photo, username, first_name, last_name, rating, specializations,
	experience, professional_organizations, languages, education, availability, phone`

// DefaultListingLimit caps the default listing returned for an empty query.
// Matching searches are not capped.
const DefaultListingLimit = 200

// DoctorRepository implements domain.DoctorRepository using PostgreSQL
type DoctorRepository struct {
	db Querier
}

// NewDoctorRepository creates a new PostgreSQL doctor repository
func NewDoctorRepository(db Querier) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// GetDoctor retrieves a doctor by ID
func (r *DoctorRepository) GetDoctor(ctx context.Context, id string) (*domain.Doctor, error) {
	ctx, span := middleware.StartSpan(ctx, "doctor.repository.get", trace.WithAttributes(
		attribute.String("layer", "repository"),
		attribute.String("doctor.id", id),
	))
	defer span.End()

	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	doctor, err := scanDoctor(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get doctor %q: %w", id, domain.ErrDoctorNotFound)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("query doctor: %w", err)
	}
	return doctor, nil
}

// SearchDoctors returns doctors whose name, username, ID, languages or any
// specialization contains the query (case-insensitive). An empty query returns
// the default listing capped at DefaultListingLimit. Results are ordered by
// rating, then ID.
func (r *DoctorRepository) SearchDoctors(ctx context.Context, query string) ([]domain.Doctor, error) {
	ctx, span := middleware.StartSpan(ctx, "doctor.repository.search", trace.WithAttributes(
		attribute.String("layer", "repository"),
		attribute.String("doctor.query", query),
	))
	defer span.End()

	sql := `SELECT ` + doctorColumns + ` FROM doctors
		WHERE $1 = ''
		   OR id ILIKE $2
		   OR username ILIKE $2
		   OR first_name ILIKE $2
		   OR last_name ILIKE $2
		   OR (first_name || ' ' || last_name) ILIKE $2
		   OR languages ILIKE $2
		   OR array_to_string(specializations, ' ') ILIKE $2
		ORDER BY rating DESC, id
		LIMIT $3`

	q := strings.TrimSpace(query)
	// LIMIT NULL is no limit.
	var limit any
	if q == "" {
		limit = DefaultListingLimit
	}
	rows, err := r.db.Query(ctx, sql, q, "%"+escapeLike(q)+"%", limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("search doctors: %w", err)
	}
	defer rows.Close()

	doctors := make([]domain.Doctor, 0)
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, *doctor)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}

	span.SetAttributes(attribute.Int("doctor.count", len(doctors)))
	return doctors, nil
}

// DeleteDoctor removes a doctor by ID
func (r *DoctorRepository) DeleteDoctor(ctx context.Context, id string) error {
	ctx, span := middleware.StartSpan(ctx, "doctor.repository.delete", trace.WithAttributes(
		attribute.String("layer", "repository"),
		attribute.String("doctor.id", id),
	))
	defer span.End()

	result, err := r.db.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete doctor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete doctor %q: %w", id, domain.ErrDoctorNotFound)
	}
	return nil
}

// UpsertDoctor inserts or replaces a doctor record. Used for seeding.
func (r *DoctorRepository) UpsertDoctor(ctx context.Context, d *domain.Doctor) error {
	availability := d.Availability
	if availability == nil {
		availability = []domain.Availability{}
	}
	availabilityJSON, err := json.Marshal(availability)
	if err != nil {
		return fmt.Errorf("encode availability for %q: %w", d.ID, err)
	}

	query := `INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13)
		ON CONFLICT (id) DO UPDATE SET
			photo = EXCLUDED.photo,
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			rating = EXCLUDED.rating,
			specializations = EXCLUDED.specializations,
			experience = EXCLUDED.experience,
			professional_organizations = EXCLUDED.professional_organizations,
			languages = EXCLUDED.languages,
			education = EXCLUDED.education,
			availability = EXCLUDED.availability,
			phone = EXCLUDED.phone`

	_, err = r.db.Exec(ctx, query,
		d.ID, d.User.Photo, d.User.Username, d.User.FirstName, d.User.LastName, d.Rating,
		nonNil(d.Specializations), d.Experience, d.ProfessionalDetails.ProfessionalOrganizations,
		d.Languages, nonNil(d.Education), string(availabilityJSON), d.Phone,
	)
	if err != nil {
		return fmt.Errorf("upsert doctor %q: %w", d.ID, err)
	}
	return nil
}

func scanDoctor(row pgx.Row) (*domain.Doctor, error) {
	var d domain.Doctor
	var availability []byte
	err := row.Scan(
		&d.ID,
		&d.User.Photo,
		&d.User.Username,
		&d.User.FirstName,
		&d.User.LastName,
		&d.Rating,
		&d.Specializations,
		&d.Experience,
		&d.ProfessionalDetails.ProfessionalOrganizations,
		&d.Languages,
		&d.Education,
		&availability,
		&d.Phone,
	)
	if err != nil {
		return nil, err
	}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &d.Availability); err != nil {
			return nil, fmt.Errorf("decode availability for %q: %w", d.ID, err)
		}
	}
	return &d, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Seed upserts every doctor in a JSON array read from r.
func (r *DoctorRepository) Seed(ctx context.Context, src io.Reader) (int, error) {
	var doctors []domain.Doctor
	if err := json.NewDecoder(src).Decode(&doctors); err != nil {
		return 0, fmt.Errorf("decode seed doctors: %w", err)
	}
	for i := range doctors {
		if doctors[i].ID == "" {
			return i, fmt.Errorf("seed doctor #%d: %w", i, domain.ErrInvalidDoctorID)
		}
		if err := r.UpsertDoctor(ctx, &doctors[i]); err != nil {
			return i, err
		}
	}
	return len(doctors), nil
}
