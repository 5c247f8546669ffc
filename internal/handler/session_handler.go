package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/examdesk/examdesk-api/internal/dto"
	"github.com/examdesk/examdesk-api/internal/models"
	"github.com/examdesk/examdesk-api/internal/service"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
	"github.com/examdesk/examdesk-api/pkg/response"
)

type sessionService interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, *models.Pagination, error)
	Aggregates(ctx context.Context) ([]models.CategoryCount, error)
	Bookings(ctx context.Context, sessionID string) ([]models.Booking, error)
	Prerequisites(ctx context.Context, debriefID string) (*models.PrerequisiteLink, error)
	Candidates(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, error)
}

type sessionExporter interface {
	Sessions(ctx context.Context, filter models.SessionFilter, format service.ExportFormat) (*service.ExportResult, error)
}

// SessionHandler exposes the dashboard's read endpoints.
type SessionHandler struct {
	service sessionService
	exports sessionExporter
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc sessionService, exports sessionExporter) *SessionHandler {
	return &SessionHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List exam sessions
// @Tags Sessions
// @Produce json
// @Param category query string false "Exam category"
// @Param track query string false "Specialisation track"
// @Param location query string false "Location"
// @Param date_from query string false "Start of date range (YYYY-MM-DD)"
// @Param date_to query string false "End of date range (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	filter, err := bindSessionFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	sessions, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// Aggregates godoc
// @Summary Per-category session counts
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions/aggregates [get]
func (h *SessionHandler) Aggregates(c *gin.Context) {
	counts, err := h.service.Aggregates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil)
}

// Bookings godoc
// @Summary List a session's bookings
// @Tags Sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/bookings [get]
func (h *SessionHandler) Bookings(c *gin.Context) {
	bookings, err := h.service.Bookings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, nil)
}

// Prerequisites godoc
// @Summary Qualifying membership of a debrief session
// @Tags Sessions
// @Produce json
// @Param id path string true "Debrief session id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/prerequisites [get]
func (h *SessionHandler) Prerequisites(c *gin.Context) {
	link, err := h.service.Prerequisites(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Candidates godoc
// @Summary List sessions that may serve as prerequisites
// @Tags Sessions
// @Produce json
// @Param category query string false "Exam category"
// @Param location query string false "Location"
// @Param date_from query string false "Start of date range (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /sessions/candidates [get]
func (h *SessionHandler) Candidates(c *gin.Context) {
	filter, err := bindSessionFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sessions, err := h.service.Candidates(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Export godoc
// @Summary Export the filtered session listing
// @Tags Sessions
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Success 200 {file} byte
// @Failure 400 {object} response.Envelope
// @Router /sessions/export [get]
func (h *SessionHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	filter, err := bindSessionFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Sessions(c.Request.Context(), filter, service.ExportFormat(c.DefaultQuery("format", "csv")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func bindSessionFilter(c *gin.Context) (models.SessionFilter, error) {
	var query dto.SessionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		return models.SessionFilter{}, appErrors.Clone(appErrors.ErrValidation, "invalid session filters")
	}

	filter := models.SessionFilter{
		Track:     query.Track,
		Location:  query.Location,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Category != "" {
		category := models.ExamCategory(query.Category)
		if !category.Valid() {
			return models.SessionFilter{}, appErrors.Clone(appErrors.ErrValidation, "unknown category")
		}
		filter.Category = &category
	}
	if query.DateFrom != "" {
		from, err := time.Parse("2006-01-02", query.DateFrom)
		if err != nil {
			return models.SessionFilter{}, appErrors.Clone(appErrors.ErrValidation, "date_from must use YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, err := time.Parse("2006-01-02", query.DateTo)
		if err != nil {
			return models.SessionFilter{}, appErrors.Clone(appErrors.ErrValidation, "date_to must use YYYY-MM-DD")
		}
		filter.DateTo = &to
	}
	return filter, nil
}
