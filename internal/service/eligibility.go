package service

import (
	"fmt"

	"github.com/examdesk/examdesk-api/internal/models"
)

// EligibilityClassifier partitions a selection into mutable and blocked
// subsets per operation. The eligible count, not the raw selection size,
// sizes the confirmation gate.
type EligibilityClassifier struct{}

// Classify applies the operation-specific predicate to the selection.
func (EligibilityClassifier) Classify(selection []models.ExamSession, op models.BatchOperation) models.Classification {
	c := models.Classification{
		Eligible: make([]models.EligibleSession, 0, len(selection)),
		Blocked:  make([]models.BlockedSession, 0),
	}

	for _, s := range selection {
		switch op {
		case models.OpDelete:
			// A session with any non-cancelled booking is not deletable.
			if s.BookedCount > 0 {
				c.Blocked = append(c.Blocked, models.BlockedSession{
					Session: s,
					Reason:  fmt.Sprintf("session has %d active bookings", s.BookedCount),
				})
				continue
			}
			c.Eligible = append(c.Eligible, models.EligibleSession{Session: s})
		case models.OpEdit:
			// Bookings warn but never block a field edit.
			e := models.EligibleSession{Session: s}
			if s.BookedCount > 0 {
				e.Warning = fmt.Sprintf("changes affect %d booked trainees", s.BookedCount)
			}
			c.Eligible = append(c.Eligible, e)
		default:
			// Clone never mutates the source; everything else session-typed
			// has no blocking predicate.
			c.Eligible = append(c.Eligible, models.EligibleSession{Session: s})
		}
	}

	return c
}

// ClassifyBookings partitions booking-typed selections for attendance and
// cancellation. Cancelled bookings are blocked for both.
func (EligibilityClassifier) ClassifyBookings(selection []models.Booking, op models.BatchOperation) (eligible []models.Booking, blocked []models.EntityFailure) {
	eligible = make([]models.Booking, 0, len(selection))
	for _, b := range selection {
		if b.Status == models.BookingCancelled {
			verb := "marked"
			if op == models.OpCancel {
				verb = "cancelled"
			}
			blocked = append(blocked, models.EntityFailure{
				ID:      b.ID,
				Message: fmt.Sprintf("booking is already cancelled and cannot be %s", verb),
			})
			continue
		}
		eligible = append(eligible, b)
	}
	return eligible, blocked
}
