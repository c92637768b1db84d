package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/doctor-service/internal/core/domain"
	"github.com/duynhne/doctor-service/middleware"
)

// DoctorService is the logic the handlers depend on
type DoctorService interface {
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
	SearchDoctors(ctx context.Context, query string) ([]domain.Doctor, error)
	DeleteDoctor(ctx context.Context, id string) error
}

// DoctorHandler handles HTTP requests for /api/doctors/search
type DoctorHandler struct {
	service DoctorService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(service DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

// Register mounts the doctor routes. Deletion goes through the admin guard.
func (h *DoctorHandler) Register(api *gin.RouterGroup, adminGuard gin.HandlerFunc) {
	api.GET("/doctors/search", h.Search)
	api.DELETE("/doctors/search", adminGuard, h.Delete)
}

// Search handles GET /api/doctors/search.
// With ?id= it returns one doctor; otherwise it returns the list matching ?q=.
func (h *DoctorHandler) Search(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := middleware.GetLoggerFromGinContext(c)

	if _, ok := c.GetQuery("id"); ok {
		var req doctorIDQuery
		if err := c.ShouldBindQuery(&req); err != nil {
			badRequest(c, span, logger, err)
			return
		}
		span.SetAttributes(attribute.String("doctor.id", req.ID))

		doctor, err := h.service.GetDoctor(ctx, req.ID)
		if err != nil {
			span.RecordError(err)
			writeError(c, logger, "Failed to get doctor", err)
			return
		}

		logger.Info("Doctor retrieved", zap.String("doctor_id", doctor.ID))
		c.JSON(http.StatusOK, doctor)
		return
	}

	var req searchQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, span, logger, err)
		return
	}

	doctors, err := h.service.SearchDoctors(ctx, req.Q)
	if err != nil {
		span.RecordError(err)
		writeError(c, logger, "Failed to search doctors", err)
		return
	}

	logger.Info("Doctors searched", zap.String("query", req.Q), zap.Int("count", len(doctors)))
	c.JSON(http.StatusOK, doctors)
}

// Delete handles DELETE /api/doctors/search?id=
func (h *DoctorHandler) Delete(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	logger := middleware.GetLoggerFromGinContext(c)

	var req doctorIDQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, span, logger, err)
		return
	}
	id := req.ID
	span.SetAttributes(attribute.String("doctor.id", id))

	if err := h.service.DeleteDoctor(ctx, id); err != nil {
		span.RecordError(err)
		writeError(c, logger, "Failed to delete doctor", err)
		return
	}

	logger.Info("Doctor deleted", zap.String("doctor_id", id), zap.String("by", c.GetString("user_id")))
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func badRequest(c *gin.Context, span trace.Span, logger *zap.Logger, err error) {
	span.SetAttributes(attribute.Bool("request.valid", false))
	span.RecordError(err)
	logger.Warn("Invalid request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err)})
}

func writeError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrDoctorNotFound):
		logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
	case errors.Is(err, domain.ErrInvalidDoctorID):
		logger.Warn(msg, zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": sanitizeValidationError(err)})
	default:
		logger.Error(msg, zap.Error(err))
		middleware.RecordError(c.Request.Context(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
