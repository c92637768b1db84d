package domain

import "strings"

// Doctor is the record served by /api/doctors/search. JSON names follow the
// frontend contract, so `_id` rather than `id`.
type Doctor struct {
	ID                  string              `json:"_id"`
	User                DoctorUser          `json:"user"`
	Rating              float64             `json:"rating"`
	Specializations     []string            `json:"specializations"`
	Experience          string              `json:"experience"`
	ProfessionalDetails ProfessionalDetails `json:"professionalDetails"`
	Languages           string              `json:"languages"`
	Education           []string            `json:"education"`
	Availability        []Availability      `json:"availability"`
	Phone               string              `json:"phone"`
}

// DoctorUser is the nested account profile of a doctor.
type DoctorUser struct {
	Photo     string `json:"photo"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ProfessionalDetails struct {
	ProfessionalOrganizations string `json:"professionalOrganizations"`
}

// Availability is one bookable day.
type Availability struct {
	Day string `json:"day"`
}

// DisplayName joins first and last name.
func (d Doctor) DisplayName() string {
	return strings.TrimSpace(d.User.FirstName + " " + d.User.LastName)
}

// FirstAvailableDay returns the first availability day, or "" when none is listed.
func (d Doctor) FirstAvailableDay() string {
	if len(d.Availability) == 0 {
		return ""
	}
	return d.Availability[0].Day
}
