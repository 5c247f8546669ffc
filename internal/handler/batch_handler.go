package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examdesk/examdesk-api/internal/dto"
	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
	"github.com/examdesk/examdesk-api/pkg/response"
)

type batchService interface {
	Preview(ctx context.Context, operatorID string, req dto.PreviewRequest) (*dto.PreviewResponse, error)
	Clone(ctx context.Context, operatorID string, req dto.CloneRequest) (*models.BatchResult, error)
	Edit(ctx context.Context, operatorID string, req dto.EditRequest) (*models.BatchResult, error)
	Delete(ctx context.Context, operatorID string, req dto.DeleteRequest) (*models.BatchResult, error)
	Attendance(ctx context.Context, operatorID string, req dto.AttendanceRequest) (*models.BatchResult, error)
	Cancel(ctx context.Context, operatorID string, req dto.CancelRequest) (*models.BatchResult, error)
	ApplyPrerequisites(ctx context.Context, debriefID string, currentIDs []string) (*dto.PrerequisitesResponse, error)
}

// BatchHandler exposes the confirm-and-dispatch mutation endpoints.
type BatchHandler struct {
	service batchService
}

// NewBatchHandler constructs the handler.
func NewBatchHandler(svc batchService) *BatchHandler {
	return &BatchHandler{service: svc}
}

// Preview godoc
// @Summary Classify a pending operation without dispatching it
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.PreviewRequest true "Preview payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /batch/preview [post]
func (h *BatchHandler) Preview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid preview payload"))
		return
	}
	res, err := h.service.Preview(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Clone godoc
// @Summary Duplicate the selected sessions onto a target date
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.CloneRequest true "Clone payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /batch/clone [post]
func (h *BatchHandler) Clone(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid clone payload"))
		return
	}
	result, err := h.service.Clone(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Edit godoc
// @Summary Apply one sparse patch to the selected sessions
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.EditRequest true "Edit payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /batch/edit [post]
func (h *BatchHandler) Edit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid edit payload"))
		return
	}
	result, err := h.service.Edit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Delete godoc
// @Summary Archive the selected zero-booking sessions
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.DeleteRequest true "Delete payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /batch/delete [post]
func (h *BatchHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid delete payload"))
		return
	}
	result, err := h.service.Delete(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Attendance godoc
// @Summary Apply one attendance action to the selected bookings
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.AttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /batch/attendance [post]
func (h *BatchHandler) Attendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attendance payload"))
		return
	}
	result, err := h.service.Attendance(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Cancel godoc
// @Summary Cancel the selected bookings
// @Tags Batch
// @Accept json
// @Produce json
// @Param payload body dto.CancelRequest true "Cancel payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /batch/cancel [post]
func (h *BatchHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid cancel payload"))
		return
	}
	result, err := h.service.Cancel(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Prerequisites godoc
// @Summary Replace a debrief session's qualifying membership
// @Description Accepts the edited membership; only the delta against the last applied set is transmitted upstream.
// @Tags Batch
// @Accept json
// @Produce json
// @Param id path string true "Debrief session id"
// @Param payload body dto.PrerequisitesRequest true "Edited membership"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions/{id}/prerequisites [put]
func (h *BatchHandler) Prerequisites(c *gin.Context) {
	var req dto.PrerequisitesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid prerequisites payload"))
		return
	}
	res, err := h.service.ApplyPrerequisites(c.Request.Context(), c.Param("id"), req.CurrentIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
