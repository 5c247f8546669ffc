package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

func TestSelectionModeExclusivity(t *testing.T) {
	mgr := NewSelectionManager()

	_, err := mgr.Enter(models.ModeAttendance, nil)
	require.NoError(t, err)

	_, err = mgr.Enter(models.ModeCancellation, nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrModeConflict.Code, appErrors.FromError(err).Code)

	// re-entering the active mode is a no-op
	_, err = mgr.Enter(models.ModeAttendance, nil)
	require.NoError(t, err)

	mgr.Exit(models.ModeAttendance)
	_, err = mgr.Enter(models.ModeCancellation, nil)
	require.NoError(t, err)
}

func TestSelectionToggleAndSelectAll(t *testing.T) {
	mgr := NewSelectionManager()
	_, err := mgr.Enter(models.ModeBulkEdit, nil)
	require.NoError(t, err)

	selected, err := mgr.Toggle(models.ModeBulkEdit, "s1")
	require.NoError(t, err)
	require.True(t, selected)

	selected, err = mgr.Toggle(models.ModeBulkEdit, "s1")
	require.NoError(t, err)
	require.False(t, selected)

	n, err := mgr.SelectAll(models.ModeBulkEdit, []string{"s1", "s2", "s3"})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	state := mgr.State(models.ModeBulkEdit)
	require.Equal(t, []string{"s1", "s2", "s3"}, state.SelectedIDs())

	require.NoError(t, mgr.Clear(models.ModeBulkEdit))
	require.Empty(t, mgr.State(models.ModeBulkEdit).SelectedIDs())
}

func TestSelectionStateReadsOnReturnedValue(t *testing.T) {
	mgr := NewSelectionManager()
	_, err := mgr.Enter(models.ModeAttendance, nil)
	require.NoError(t, err)

	_, err = mgr.Toggle(models.ModeAttendance, "b1")
	require.NoError(t, err)

	// membership reads must work directly on the snapshot State returns
	require.True(t, mgr.State(models.ModeAttendance).IsSelected("b1"))
	require.False(t, mgr.State(models.ModeAttendance).IsSelected("b2"))
	require.Equal(t, []string{"b1"}, mgr.State(models.ModeAttendance).SelectedIDs())
}

func TestSelectionPredicateFiltersCandidates(t *testing.T) {
	mgr := NewSelectionManager()
	_, err := mgr.Enter(models.ModeCancellation, func(id string) bool { return id != "cancelled" })
	require.NoError(t, err)

	selected, err := mgr.Toggle(models.ModeCancellation, "cancelled")
	require.NoError(t, err)
	require.False(t, selected)

	n, err := mgr.SelectAll(models.ModeCancellation, []string{"b1", "cancelled", "b2"})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestSelectionSingleFlight(t *testing.T) {
	mgr := NewSelectionManager()
	_, err := mgr.Enter(models.ModeBulkEdit, nil)
	require.NoError(t, err)
	_, err = mgr.Toggle(models.ModeBulkEdit, "s1")
	require.NoError(t, err)

	ids, err := mgr.BeginSubmit(models.ModeBulkEdit)
	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, ids)

	// a second submit while in flight is rejected, never queued
	_, err = mgr.BeginSubmit(models.ModeBulkEdit)
	require.True(t, errors.Is(err, appErrors.ErrMutationInFlight) || appErrors.FromError(err).Code == appErrors.ErrMutationInFlight.Code)

	// so is any selection change
	_, err = mgr.Toggle(models.ModeBulkEdit, "s2")
	require.Error(t, err)
}

func TestSelectionFailurePreservesWorkingSet(t *testing.T) {
	mgr := NewSelectionManager()
	_, err := mgr.Enter(models.ModeBulkEdit, nil)
	require.NoError(t, err)
	_, err = mgr.Toggle(models.ModeBulkEdit, "s1")
	require.NoError(t, err)
	_, err = mgr.Toggle(models.ModeBulkEdit, "s2")
	require.NoError(t, err)

	_, err = mgr.BeginSubmit(models.ModeBulkEdit)
	require.NoError(t, err)
	mgr.Complete(models.ModeBulkEdit, false, "crm unavailable")

	state := mgr.State(models.ModeBulkEdit)
	require.Equal(t, models.PhaseSelecting, state.Phase)
	require.Equal(t, []string{"s1", "s2"}, state.SelectedIDs())
	require.Equal(t, "crm unavailable", state.LastError)

	// retry succeeds and the mode resets
	ids, err := mgr.BeginSubmit(models.ModeBulkEdit)
	require.NoError(t, err)
	require.Equal(t, []string{"s1", "s2"}, ids)
	mgr.Complete(models.ModeBulkEdit, true, "")

	require.Equal(t, models.PhaseInactive, mgr.State(models.ModeBulkEdit).Phase)

	// the manager is free for another mode
	_, err = mgr.Enter(models.ModeAttendance, nil)
	require.NoError(t, err)
}

func TestSelectionBeginConfirmRequiresSelection(t *testing.T) {
	mgr := NewSelectionManager()
	_, err := mgr.Enter(models.ModeBulkEdit, nil)
	require.NoError(t, err)

	require.Error(t, mgr.BeginConfirm(models.ModeBulkEdit))

	_, err = mgr.Toggle(models.ModeBulkEdit, "s1")
	require.NoError(t, err)
	require.NoError(t, mgr.BeginConfirm(models.ModeBulkEdit))
	require.Equal(t, models.PhaseConfirming, mgr.State(models.ModeBulkEdit).Phase)
}

func TestSelectionRegistryIsolatesOperators(t *testing.T) {
	registry := NewSelectionRegistry()

	a := registry.ForOperator("op-a")
	b := registry.ForOperator("op-b")
	require.NotSame(t, a, b)
	require.Same(t, a, registry.ForOperator("op-a"))

	_, err := a.Enter(models.ModeAttendance, nil)
	require.NoError(t, err)
	// operator B is unaffected by A's active mode
	_, err = b.Enter(models.ModeCancellation, nil)
	require.NoError(t, err)
}
