package service

import (
	"sync"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

// SelectablePredicate decides whether an entity may currently enter the
// working set of a mode (e.g. already-cancelled bookings never do).
type SelectablePredicate func(id string) bool

// SelectionManager owns one operator's per-mode selection state machines.
// At most one mode is active at a time; that exclusivity is structural, not
// a convention. The submitting phase doubles as the single-flight guard:
// at most one in-flight mutation per mode.
type SelectionManager struct {
	mu         sync.Mutex
	active     models.Mode
	states     map[models.Mode]*models.SelectionState
	selectable map[models.Mode]SelectablePredicate
}

// NewSelectionManager constructs an idle manager.
func NewSelectionManager() *SelectionManager {
	return &SelectionManager{
		states:     make(map[models.Mode]*models.SelectionState),
		selectable: make(map[models.Mode]SelectablePredicate),
	}
}

// Enter activates a mode with an empty working set. Entering while another
// mode is active is a conflict; re-entering the active mode is a no-op.
func (m *SelectionManager) Enter(mode models.Mode, selectable SelectablePredicate) (models.SelectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != "" && m.active != mode {
		return models.SelectionState{}, appErrors.Clone(appErrors.ErrModeConflict,
			"selection mode "+string(m.active)+" is already active")
	}
	state, ok := m.states[mode]
	if !ok || state.Phase == models.PhaseInactive {
		state = &models.SelectionState{
			Mode:     mode,
			Phase:    models.PhaseSelecting,
			Selected: make(map[string]struct{}),
		}
		m.states[mode] = state
	}
	m.active = mode
	if selectable != nil {
		m.selectable[mode] = selectable
	}
	return snapshot(state), nil
}

// Exit deactivates the mode and discards its working set.
func (m *SelectionManager) Exit(mode models.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, mode)
	delete(m.selectable, mode)
	if m.active == mode {
		m.active = ""
	}
}

// Toggle flips membership for one id. Ids failing the mode's selectable
// predicate never enter the set. Returns the resulting membership.
func (m *SelectionManager) Toggle(mode models.Mode, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.mutableState(mode)
	if err != nil {
		return false, err
	}
	if _, ok := state.Selected[id]; ok {
		delete(state.Selected, id)
		return false, nil
	}
	if pred := m.selectable[mode]; pred != nil && !pred(id) {
		return false, nil
	}
	state.Selected[id] = struct{}{}
	return true, nil
}

// SelectAll inserts every candidate passing the selectable predicate.
// Returns the resulting selection size.
func (m *SelectionManager) SelectAll(mode models.Mode, candidates []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.mutableState(mode)
	if err != nil {
		return 0, err
	}
	pred := m.selectable[mode]
	for _, id := range candidates {
		if pred != nil && !pred(id) {
			continue
		}
		state.Selected[id] = struct{}{}
	}
	return len(state.Selected), nil
}

// Clear empties the working set regardless of prior state.
func (m *SelectionManager) Clear(mode models.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.mutableState(mode)
	if err != nil {
		return err
	}
	state.Selected = make(map[string]struct{})
	return nil
}

// State returns a copy of the mode's current state.
func (m *SelectionManager) State(mode models.Mode) models.SelectionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[mode]
	if !ok {
		return models.SelectionState{Mode: mode, Phase: models.PhaseInactive}
	}
	return snapshot(state)
}

// BeginConfirm moves selecting → confirming for a non-empty selection.
func (m *SelectionManager) BeginConfirm(mode models.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.mutableState(mode)
	if err != nil {
		return err
	}
	if len(state.Selected) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "nothing selected")
	}
	state.Phase = models.PhaseConfirming
	return nil
}

// BeginSubmit moves the mode into submitting and returns the selected set
// that the mutation must operate on. A concurrent BeginSubmit while already
// submitting is rejected, never queued.
func (m *SelectionManager) BeginSubmit(mode models.Mode) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[mode]
	if !ok || state.Phase == models.PhaseInactive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selection mode not active")
	}
	if state.Phase == models.PhaseSubmitting {
		return nil, appErrors.ErrMutationInFlight
	}
	state.Phase = models.PhaseSubmitting
	state.LastError = ""
	return state.SelectedIDs(), nil
}

// Complete resolves a submit. Success clears the mode back to inactive;
// failure returns to selecting with the prior selection intact so the
// operator can retry without re-selecting.
func (m *SelectionManager) Complete(mode models.Mode, success bool, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.states[mode]
	if !ok || state.Phase != models.PhaseSubmitting {
		return
	}
	if success {
		delete(m.states, mode)
		delete(m.selectable, mode)
		if m.active == mode {
			m.active = ""
		}
		return
	}
	state.Phase = models.PhaseSelecting
	state.LastError = errMsg
}

// Seed replaces the working set, applying the selectable predicate. Used
// when a stateless client supplies the selection with the execute request.
func (m *SelectionManager) Seed(mode models.Mode, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.mutableState(mode)
	if err != nil {
		return err
	}
	state.Selected = make(map[string]struct{}, len(ids))
	pred := m.selectable[mode]
	for _, id := range ids {
		if pred != nil && !pred(id) {
			continue
		}
		state.Selected[id] = struct{}{}
	}
	return nil
}

func (m *SelectionManager) mutableState(mode models.Mode) (*models.SelectionState, error) {
	state, ok := m.states[mode]
	if !ok || state.Phase == models.PhaseInactive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selection mode not active")
	}
	if state.Phase == models.PhaseSubmitting {
		return nil, appErrors.ErrMutationInFlight
	}
	return state, nil
}

func snapshot(state *models.SelectionState) models.SelectionState {
	copied := models.SelectionState{
		Mode:      state.Mode,
		Phase:     state.Phase,
		Selected:  make(map[string]struct{}, len(state.Selected)),
		LastError: state.LastError,
	}
	for id := range state.Selected {
		copied.Selected[id] = struct{}{}
	}
	return copied
}

// SelectionRegistry hands out one SelectionManager per operator.
type SelectionRegistry struct {
	mu       sync.Mutex
	managers map[string]*SelectionManager
}

// NewSelectionRegistry constructs an empty registry.
func NewSelectionRegistry() *SelectionRegistry {
	return &SelectionRegistry{managers: make(map[string]*SelectionManager)}
}

// ForOperator returns the operator's manager, creating it on first use.
func (r *SelectionRegistry) ForOperator(userID string) *SelectionManager {
	r.mu.Lock()
	defer r.mu.Unlock()
	mgr, ok := r.managers[userID]
	if !ok {
		mgr = NewSelectionManager()
		r.managers[userID] = mgr
	}
	return mgr
}
