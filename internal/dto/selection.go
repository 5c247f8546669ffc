package dto

import "github.com/examdesk/examdesk-api/internal/models"

// ToggleRequest flips one id in the active mode's working set.
type ToggleRequest struct {
	ID string `json:"id" validate:"required"`
}

// SelectAllRequest inserts every listed candidate that is selectable.
type SelectAllRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// SelectionStateResponse is the serialised per-mode state.
type SelectionStateResponse struct {
	Mode          models.Mode  `json:"mode"`
	Phase         models.Phase `json:"phase"`
	SelectedIDs   []string     `json:"selected_ids"`
	SelectedCount int          `json:"selected_count"`
	LastError     string       `json:"last_error,omitempty"`
}

// NewSelectionStateResponse converts the internal state for the wire.
func NewSelectionStateResponse(state models.SelectionState) SelectionStateResponse {
	return SelectionStateResponse{
		Mode:          state.Mode,
		Phase:         state.Phase,
		SelectedIDs:   state.SelectedIDs(),
		SelectedCount: len(state.Selected),
		LastError:     state.LastError,
	}
}
