package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/models"
)

func sessionWithBookings(id string, booked int) models.ExamSession {
	return models.ExamSession{ID: id, Category: models.CategoryTheory, BookedCount: booked}
}

func TestClassifyDeleteBlocksBookedSessions(t *testing.T) {
	classifier := EligibilityClassifier{}

	selection := []models.ExamSession{
		sessionWithBookings("s1", 0),
		sessionWithBookings("s2", 3),
		sessionWithBookings("s3", 0),
	}

	c := classifier.Classify(selection, models.OpDelete)
	require.Equal(t, 2, c.EligibleCount())
	require.Equal(t, []string{"s1", "s3"}, c.EligibleIDs())
	require.Len(t, c.Blocked, 1)
	require.Equal(t, "s2", c.Blocked[0].Session.ID)
	require.Contains(t, c.Blocked[0].Reason, "3 active bookings")
}

func TestClassifyEditWarnsButNeverBlocks(t *testing.T) {
	classifier := EligibilityClassifier{}

	selection := []models.ExamSession{
		sessionWithBookings("s1", 0),
		sessionWithBookings("s2", 5),
	}

	c := classifier.Classify(selection, models.OpEdit)
	require.Equal(t, 2, c.EligibleCount())
	require.Empty(t, c.Blocked)
	require.Empty(t, c.Eligible[0].Warning)
	require.Contains(t, c.Eligible[1].Warning, "5 booked trainees")
}

func TestClassifyCloneAcceptsEverything(t *testing.T) {
	classifier := EligibilityClassifier{}

	selection := []models.ExamSession{
		sessionWithBookings("s1", 9),
		sessionWithBookings("s2", 0),
	}

	c := classifier.Classify(selection, models.OpClone)
	require.Equal(t, 2, c.EligibleCount())
	require.Empty(t, c.Blocked)
}

func TestClassifyBookingsRejectsCancelled(t *testing.T) {
	classifier := EligibilityClassifier{}

	selection := []models.Booking{
		{ID: "b1", Status: models.BookingActive},
		{ID: "b2", Status: models.BookingCancelled},
		{ID: "b3", Status: models.BookingCompleted},
	}

	eligible, blocked := classifier.ClassifyBookings(selection, models.OpAttendance)
	require.Len(t, eligible, 2)
	require.Len(t, blocked, 1)
	require.Equal(t, "b2", blocked[0].ID)

	_, blocked = classifier.ClassifyBookings(selection, models.OpCancel)
	require.Contains(t, blocked[0].Message, "cancelled")
}
