package models

import "time"

// BookingStatus represents the booking lifecycle.
type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// Valid returns true when the status is a supported value.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingActive, BookingCancelled, BookingCompleted:
		return true
	default:
		return false
	}
}

// AttendanceMark records whether a trainee showed up.
type AttendanceMark string

const (
	AttendanceUnset    AttendanceMark = ""
	AttendanceAttended AttendanceMark = "attended"
	AttendanceNoShow   AttendanceMark = "no_show"
)

// AttendanceAction is the operator-requested bulk attendance change.
type AttendanceAction string

const (
	ActionMarkAttended AttendanceAction = "mark_attended"
	ActionMarkNoShow   AttendanceAction = "mark_no_show"
	ActionUnmark       AttendanceAction = "unmark"
)

// Valid returns true when the action is a supported value.
func (a AttendanceAction) Valid() bool {
	switch a {
	case ActionMarkAttended, ActionMarkNoShow, ActionUnmark:
		return true
	default:
		return false
	}
}

// Booking reserves one seat in exactly one ExamSession for a trainee.
type Booking struct {
	ID          string         `db:"id" json:"id"`
	SessionID   string         `db:"session_id" json:"session_id"`
	TraineeID   string         `db:"trainee_id" json:"trainee_id"`
	TraineeName string         `db:"trainee_name" json:"trainee_name"`
	Status      BookingStatus  `db:"status" json:"status"`
	Attendance  AttendanceMark `db:"attendance" json:"attendance,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Cancellable reports whether the booking may still be cancelled.
// Already-cancelled rows are excluded from cancellation-mode selection.
func (b *Booking) Cancellable() bool {
	return b.Status != BookingCancelled
}

// CancelItem is one unit of a batch cancellation request.
type CancelItem struct {
	BookingID    string `json:"id"`
	TraineeRef   string `json:"trainee_ref"`
	RefundTokens bool   `json:"refund_tokens"`
}
