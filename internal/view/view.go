// Package view holds the doctor profile and doctor directory view models.
// They hold state and behaviour only; the HTML pages and the terminal console
// render them.
package view

import (
	"context"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

// DoctorSource is where the views read and delete doctors.
// *client.DoctorClient satisfies it.
type DoctorSource interface {
	// GetDoctor returns (nil, nil) when the doctor does not exist.
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
	SearchDoctors(ctx context.Context, query string) ([]domain.Doctor, error)
	DeleteDoctor(ctx context.Context, id string) error
}

// Navigation targets.
const (
	ChatRoute      = "/chat"
	ScheduleRoute  = "/patient/features/health-calendar"
	DirectoryRoute = "/patient/features/health-connect"
)

// ProfileRoute is the page of a single doctor.
func ProfileRoute(id string) string {
	return DirectoryRoute + "/doctor/" + id
}

// User-visible messages.
const (
	MsgDoctorNotFound = "Doctor not found"
	MsgNoDoctors      = "No doctors found"
	MsgRemoved        = "Doctor removed successfully"
	MsgRemoveFailed   = "Failed to remove doctor"
)
