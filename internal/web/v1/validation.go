package v1

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/duynhne/doctor-service/internal/core/domain"
)

// doctorIDQuery binds ?id= for single-doctor lookups and deletion.
type doctorIDQuery struct {
	ID string `form:"id" binding:"required,max=128"`
}

// searchQuery binds ?q= for free-text search.
type searchQuery struct {
	Q string `form:"q" binding:"max=256"`
}

// sanitizeValidationError returns a user-friendly message for validation errors.
// Raw wrapped errors carry internal detail (quoted input, layer prefixes) and are never echoed.
func sanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrInvalidDoctorID) {
		return "Invalid doctor id"
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Field() {
		case "ID":
			return "Invalid doctor id"
		case "Q":
			return "Search query too long"
		}
		return "Invalid request"
	}

	msg := err.Error()
	if strings.Contains(msg, ":") || len(msg) >= 100 {
		return "Invalid request"
	}
	return msg
}
