package view

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

// ProfileState is the render state of a Profile.
type ProfileState int

const (
	ProfileLoading ProfileState = iota
	ProfileNotFound
	ProfileReady
)

func (s ProfileState) String() string {
	switch s {
	case ProfileNotFound:
		return "not_found"
	case ProfileReady:
		return "ready"
	default:
		return "loading"
	}
}

// Profile is the doctor profile view. It starts in ProfileLoading and settles
// into ProfileNotFound or ProfileReady after each Load.
type Profile struct {
	source DoctorSource
	logger *zap.Logger

	mu     sync.Mutex
	id     string
	state  ProfileState
	doctor *domain.Doctor
}

// NewProfile creates a new Profile reading from source.
func NewProfile(source DoctorSource, logger *zap.Logger) *Profile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Profile{source: source, logger: logger, state: ProfileLoading}
}

// Load fetches the doctor once. Loading the ID that is already settled does
// nothing. Fetch errors are logged and render as not found; there is no retry.
func (p *Profile) Load(ctx context.Context, id string) {
	p.mu.Lock()
	if id == p.id && p.state != ProfileLoading {
		p.mu.Unlock()
		return
	}
	p.id = id
	p.state = ProfileLoading
	p.doctor = nil
	p.mu.Unlock()

	doctor, err := p.source.GetDoctor(ctx, id)
	if err != nil {
		p.logger.Error("Failed to fetch doctor data", zap.String("doctor_id", id), zap.Error(err))
		doctor = nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.id != id {
		// a newer Load owns the view
		return
	}
	if doctor == nil {
		p.state = ProfileNotFound
		return
	}
	p.doctor = doctor
	p.state = ProfileReady
}

func (p *Profile) State() ProfileState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Doctor is nil unless the state is ProfileReady.
func (p *Profile) Doctor() *domain.Doctor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doctor
}

// Card returns the render model, or nil unless the state is ProfileReady.
func (p *Profile) Card() *ProfileCard {
	d := p.Doctor()
	if d == nil {
		return nil
	}
	card := NewProfileCard(d)
	return &card
}

// ProfileCard is the flattened, render-ready profile of one doctor.
type ProfileCard struct {
	ID                    string
	Name                  string
	Photo                 string
	Username              string
	AvailableDay          string
	Rating                string
	SpecializationSummary string
	Specializations       []string
	Experience            string
	Organizations         string
	Languages             string
	Education             []string
	Phone                 string
	ChatRoute             string
	ScheduleRoute         string
	BackRoute             string
}

// NewProfileCard flattens a doctor. Absent nested fields render blank.
func NewProfileCard(d *domain.Doctor) ProfileCard {
	return ProfileCard{
		ID:                    d.ID,
		Name:                  d.DisplayName(),
		Photo:                 d.User.Photo,
		Username:              d.User.Username,
		AvailableDay:          d.FirstAvailableDay(),
		Rating:                FormatRating(d.Rating),
		SpecializationSummary: strings.Join(d.Specializations, ", "),
		Specializations:       d.Specializations,
		Experience:            d.Experience,
		Organizations:         d.ProfessionalDetails.ProfessionalOrganizations,
		Languages:             d.Languages,
		Education:             d.Education,
		Phone:                 d.Phone,
		ChatRoute:             ChatRoute,
		ScheduleRoute:         ScheduleRoute,
		BackRoute:             DirectoryRoute,
	}
}

// FormatRating prints the rating as sent by the API, e.g. 4.8 -> "4.8", 5 -> "5".
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
