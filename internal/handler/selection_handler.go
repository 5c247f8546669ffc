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

type selectionService interface {
	Enter(operatorID string, mode models.Mode) (models.SelectionState, error)
	Exit(operatorID string, mode models.Mode)
	State(operatorID string, mode models.Mode) models.SelectionState
	Toggle(ctx context.Context, operatorID string, mode models.Mode, id string) (models.SelectionState, error)
	SelectAll(ctx context.Context, operatorID string, mode models.Mode, ids []string) (models.SelectionState, error)
	Clear(operatorID string, mode models.Mode) (models.SelectionState, error)
	Confirm(operatorID string, mode models.Mode) (models.SelectionState, error)
}

// SelectionHandler drives the per-operator selection workflow.
type SelectionHandler struct {
	service selectionService
}

// NewSelectionHandler constructs the handler.
func NewSelectionHandler(svc selectionService) *SelectionHandler {
	return &SelectionHandler{service: svc}
}

// Enter godoc
// @Summary Enter a selection mode
// @Tags Selection
// @Produce json
// @Param mode path string true "attendance, cancellation or bulk_edit"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /selection/{mode}/enter [post]
func (h *SelectionHandler) Enter(c *gin.Context) {
	claims, mode, ok := h.operatorAndMode(c)
	if !ok {
		return
	}
	state, err := h.service.Enter(claims.UserID, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSelectionStateResponse(state), nil)
}

// Exit godoc
// @Summary Exit a selection mode, discarding the working set
// @Tags Selection
// @Produce json
// @Param mode path string true "Selection mode"
// @Success 204 {object} response.Envelope
// @Router /selection/{mode}/exit [post]
func (h *SelectionHandler) Exit(c *gin.Context) {
	claims, mode, ok := h.operatorAndMode(c)
	if !ok {
		return
	}
	h.service.Exit(claims.UserID, mode)
	response.NoContent(c)
}

// State godoc
// @Summary Current selection state
// @Tags Selection
// @Produce json
// @Param mode path string true "Selection mode"
// @Success 200 {object} response.Envelope
// @Router /selection/{mode} [get]
func (h *SelectionHandler) State(c *gin.Context) {
	claims, mode, ok := h.operatorAndMode(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSelectionStateResponse(h.service.State(claims.UserID, mode)), nil)
}

// Toggle godoc
// @Summary Toggle one entity in the working set
// @Tags Selection
// @Accept json
// @Produce json
// @Param mode path string true "Selection mode"
// @Param payload body dto.ToggleRequest true "Entity id"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /selection/{mode}/toggle [post]
func (h *SelectionHandler) Toggle(c *gin.Context) {
	claims, mode, ok := h.operatorAndMode(c)
	if !ok {
		return
	}
	var req dto.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "entity id is required"))
		return
	}
	state, err := h.service.Toggle(c.Request.Context(), claims.UserID, mode, req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSelectionStateResponse(state), nil)
}

// SelectAll godoc
// @Summary Select every listed candidate that is selectable
// @Tags Selection
// @Accept json
// @Produce json
// @Param mode path string true "Selection mode"
// @Param payload body dto.SelectAllRequest true "Candidate ids"
// @Success 200 {object} response.Envelope
// @Router /selection/{mode}/select-all [post]
func (h *SelectionHandler) SelectAll(c *gin.Context) {
	claims, mode, ok := h.operatorAndMode(c)
	if !ok {
		return
	}
	var req dto.SelectAllRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "candidate ids are required"))
		return
	}
	state, err := h.service.SelectAll(c.Request.Context(), claims.UserID, mode, req.IDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSelectionStateResponse(state), nil)
}

// Clear godoc
// @Summary Empty the working set
// @Tags Selection
// @Produce json
// @Param mode path string true "Selection mode"
// @Success 200 {object} response.Envelope
// @Router /selection/{mode}/clear [post]
func (h *SelectionHandler) Clear(c *gin.Context) {
	claims, mode, ok := h.operatorAndMode(c)
	if !ok {
		return
	}
	state, err := h.service.Clear(claims.UserID, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSelectionStateResponse(state), nil)
}

// Confirm godoc
// @Summary Advance a non-empty selection to the confirming phase
// @Tags Selection
// @Produce json
// @Param mode path string true "Selection mode"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /selection/{mode}/confirm [post]
func (h *SelectionHandler) Confirm(c *gin.Context) {
	claims, mode, ok := h.operatorAndMode(c)
	if !ok {
		return
	}
	state, err := h.service.Confirm(claims.UserID, mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewSelectionStateResponse(state), nil)
}

func (h *SelectionHandler) operatorAndMode(c *gin.Context) (*models.JWTClaims, models.Mode, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, "", false
	}
	mode := models.Mode(c.Param("mode"))
	if !mode.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown selection mode"))
		return nil, "", false
	}
	return claims, mode, true
}
