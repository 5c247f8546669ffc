package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

// SelectionService exposes the per-operator selection workflow over the
// registry. Booking-typed modes consult the replica so already-cancelled
// bookings never enter a working set.
type SelectionService struct {
	registry *SelectionRegistry
	reads    SessionReader
	logger   *zap.Logger
}

// NewSelectionService constructs the service.
func NewSelectionService(registry *SelectionRegistry, reads SessionReader, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionService{registry: registry, reads: reads, logger: logger}
}

// Enter activates the mode for the operator.
func (s *SelectionService) Enter(operatorID string, mode models.Mode) (models.SelectionState, error) {
	if !mode.Valid() {
		return models.SelectionState{}, appErrors.Clone(appErrors.ErrValidation, "unknown selection mode")
	}
	return s.registry.ForOperator(operatorID).Enter(mode, nil)
}

// Exit deactivates the mode and discards its working set.
func (s *SelectionService) Exit(operatorID string, mode models.Mode) {
	s.registry.ForOperator(operatorID).Exit(mode)
}

// State returns the operator's current state for the mode.
func (s *SelectionService) State(operatorID string, mode models.Mode) models.SelectionState {
	return s.registry.ForOperator(operatorID).State(mode)
}

// Toggle flips one id in the working set. In booking-typed modes a
// cancelled booking is rejected before it can enter the set.
func (s *SelectionService) Toggle(ctx context.Context, operatorID string, mode models.Mode, id string) (models.SelectionState, error) {
	mgr := s.registry.ForOperator(operatorID)
	if bookingMode(mode) {
		bookings, err := s.reads.GetBookingsByIDs(ctx, []string{id})
		if err != nil {
			return models.SelectionState{}, err
		}
		if len(bookings) == 0 {
			return models.SelectionState{}, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		if !bookings[0].Cancellable() && !mgr.State(mode).IsSelected(id) {
			return models.SelectionState{}, appErrors.Clone(appErrors.ErrValidation, "cancelled bookings cannot be selected")
		}
	}
	if _, err := mgr.Toggle(mode, id); err != nil {
		return models.SelectionState{}, err
	}
	return mgr.State(mode), nil
}

// SelectAll inserts every listed candidate that is selectable for the mode.
func (s *SelectionService) SelectAll(ctx context.Context, operatorID string, mode models.Mode, ids []string) (models.SelectionState, error) {
	mgr := s.registry.ForOperator(operatorID)
	candidates := ids
	if bookingMode(mode) {
		bookings, err := s.reads.GetBookingsByIDs(ctx, ids)
		if err != nil {
			return models.SelectionState{}, err
		}
		candidates = make([]string, 0, len(bookings))
		for _, b := range bookings {
			if b.Cancellable() {
				candidates = append(candidates, b.ID)
			}
		}
	}
	if _, err := mgr.SelectAll(mode, candidates); err != nil {
		return models.SelectionState{}, err
	}
	return mgr.State(mode), nil
}

// Clear empties the working set.
func (s *SelectionService) Clear(operatorID string, mode models.Mode) (models.SelectionState, error) {
	mgr := s.registry.ForOperator(operatorID)
	if err := mgr.Clear(mode); err != nil {
		return models.SelectionState{}, err
	}
	return mgr.State(mode), nil
}

// Confirm advances the mode to the confirming phase.
func (s *SelectionService) Confirm(operatorID string, mode models.Mode) (models.SelectionState, error) {
	mgr := s.registry.ForOperator(operatorID)
	if err := mgr.BeginConfirm(mode); err != nil {
		return models.SelectionState{}, err
	}
	return mgr.State(mode), nil
}

func bookingMode(mode models.Mode) bool {
	return mode == models.ModeAttendance || mode == models.ModeCancellation
}
