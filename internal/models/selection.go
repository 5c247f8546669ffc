package models

import "sort"

// Mode identifies which batch workflow a selection belongs to.
// Clone, field patch and mass delete all run in bulk-edit mode.
type Mode string

const (
	ModeAttendance   Mode = "attendance"
	ModeCancellation Mode = "cancellation"
	ModeBulkEdit     Mode = "bulk_edit"
)

// Valid returns true when the mode is a supported value.
func (m Mode) Valid() bool {
	switch m {
	case ModeAttendance, ModeCancellation, ModeBulkEdit:
		return true
	default:
		return false
	}
}

// Phase is the per-mode selection lifecycle.
// inactive → selecting → confirming → submitting → (success: inactive) | (failure: selecting)
type Phase string

const (
	PhaseInactive   Phase = "inactive"
	PhaseSelecting  Phase = "selecting"
	PhaseConfirming Phase = "confirming"
	PhaseSubmitting Phase = "submitting"
)

// SelectionState is the ephemeral per-mode working set of one operator.
// It is never persisted.
type SelectionState struct {
	Mode      Mode                `json:"mode"`
	Phase     Phase               `json:"phase"`
	Selected  map[string]struct{} `json:"-"`
	LastError string              `json:"last_error,omitempty"`
}

// SelectedIDs returns the selected identifiers in stable order.
func (s SelectionState) SelectedIDs() []string {
	ids := make([]string, 0, len(s.Selected))
	for id := range s.Selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsSelected reports membership in the working set.
func (s SelectionState) IsSelected(id string) bool {
	_, ok := s.Selected[id]
	return ok
}
