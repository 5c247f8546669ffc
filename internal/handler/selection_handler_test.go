package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/dto"
	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

type selectionServiceMock struct {
	state    models.SelectionState
	err      error
	exited   bool
	gotMode  models.Mode
	gotIDs   []string
	gotID    string
	operator string
}

func (m *selectionServiceMock) Enter(operatorID string, mode models.Mode) (models.SelectionState, error) {
	m.operator, m.gotMode = operatorID, mode
	return m.state, m.err
}

func (m *selectionServiceMock) Exit(operatorID string, mode models.Mode) {
	m.operator, m.gotMode, m.exited = operatorID, mode, true
}

func (m *selectionServiceMock) State(operatorID string, mode models.Mode) models.SelectionState {
	m.operator, m.gotMode = operatorID, mode
	return m.state
}

func (m *selectionServiceMock) Toggle(ctx context.Context, operatorID string, mode models.Mode, id string) (models.SelectionState, error) {
	m.operator, m.gotMode, m.gotID = operatorID, mode, id
	return m.state, m.err
}

func (m *selectionServiceMock) SelectAll(ctx context.Context, operatorID string, mode models.Mode, ids []string) (models.SelectionState, error) {
	m.operator, m.gotMode, m.gotIDs = operatorID, mode, ids
	return m.state, m.err
}

func (m *selectionServiceMock) Clear(operatorID string, mode models.Mode) (models.SelectionState, error) {
	m.operator, m.gotMode = operatorID, mode
	return m.state, m.err
}

func (m *selectionServiceMock) Confirm(operatorID string, mode models.Mode) (models.SelectionState, error) {
	m.operator, m.gotMode = operatorID, mode
	return m.state, m.err
}

func selectionContext(method, path, mode string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := authedContext(method, path, body)
	c.Params = gin.Params{{Key: "mode", Value: mode}}
	return c, w
}

func TestSelectionHandlerEnter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &selectionServiceMock{
		state: models.SelectionState{Mode: models.ModeAttendance, Phase: models.PhaseSelecting},
	}
	handler := NewSelectionHandler(mockSvc)

	c, w := selectionContext(http.MethodPost, "/selection/attendance/enter", "attendance", nil)

	handler.Enter(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "op-1", mockSvc.operator)
	require.Equal(t, models.ModeAttendance, mockSvc.gotMode)

	var envelope struct {
		Data dto.SelectionStateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, models.PhaseSelecting, envelope.Data.Phase)
}

func TestSelectionHandlerEnterModeConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSelectionHandler(&selectionServiceMock{err: appErrors.ErrModeConflict})

	c, w := selectionContext(http.MethodPost, "/selection/cancellation/enter", "cancellation", nil)

	handler.Enter(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSelectionHandlerRejectsUnknownMode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &selectionServiceMock{}
	handler := NewSelectionHandler(mockSvc)

	c, w := selectionContext(http.MethodPost, "/selection/archive/enter", "archive", nil)

	handler.Enter(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, mockSvc.operator)
}

func TestSelectionHandlerToggleRequiresID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSelectionHandler(&selectionServiceMock{})

	c, w := selectionContext(http.MethodPost, "/selection/bulk_edit/toggle", "bulk_edit", []byte(`{"id":""}`))

	handler.Toggle(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelectionHandlerSelectAllPassesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &selectionServiceMock{
		state: models.SelectionState{
			Mode:     models.ModeBulkEdit,
			Phase:    models.PhaseSelecting,
			Selected: map[string]struct{}{"s1": {}, "s2": {}},
		},
	}
	handler := NewSelectionHandler(mockSvc)

	c, w := selectionContext(http.MethodPost, "/selection/bulk_edit/select-all", "bulk_edit", []byte(`{"ids":["s1","s2"]}`))

	handler.SelectAll(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"s1", "s2"}, mockSvc.gotIDs)

	var envelope struct {
		Data dto.SelectionStateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, 2, envelope.Data.SelectedCount)
	require.Equal(t, []string{"s1", "s2"}, envelope.Data.SelectedIDs)
}

func TestSelectionHandlerExitReturnsNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &selectionServiceMock{}
	handler := NewSelectionHandler(mockSvc)

	c, w := selectionContext(http.MethodPost, "/selection/attendance/exit", "attendance", nil)

	handler.Exit(c)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.True(t, mockSvc.exited)
}
