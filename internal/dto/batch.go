package dto

import "github.com/examdesk/examdesk-api/internal/models"

// OverrideInput carries the raw form-control values for a sparse batch
// patch. Controls send marker strings; empty means keep.
type OverrideInput struct {
	Track        string `json:"track"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Location     string `json:"location"`
	Capacity     string `json:"capacity"`
	Activation   string `json:"activation_state"`
	ActivationAt string `json:"activation_at"`
}

// PreviewRequest asks for the classification and effective rows of a
// pending operation without dispatching it.
type PreviewRequest struct {
	Operation  string         `json:"operation" validate:"required"`
	SessionIDs []string       `json:"session_ids"`
	BookingIDs []string       `json:"booking_ids"`
	Override   *OverrideInput `json:"override"`
	TargetDate string         `json:"target_date"`
}

// PreviewResponse returns what the confirmation dialog renders.
type PreviewResponse struct {
	Operation     models.BatchOperation   `json:"operation"`
	Eligible      []models.EligibleSession `json:"eligible"`
	Blocked       []models.BlockedSession  `json:"blocked"`
	EligibleCount int                      `json:"eligible_count"`
	Previews      []models.ExamSession     `json:"previews,omitempty"`
}

// CloneRequest duplicates the selected sessions onto a new date.
type CloneRequest struct {
	SessionIDs   []string       `json:"session_ids"`
	TargetDate   string         `json:"target_date" validate:"required"`
	Override     *OverrideInput `json:"override"`
	ConfirmCount string         `json:"confirm_count" validate:"required"`
}

// EditRequest applies one sparse patch to every selected session.
type EditRequest struct {
	SessionIDs   []string      `json:"session_ids"`
	Override     OverrideInput `json:"override"`
	ConfirmCount string        `json:"confirm_count" validate:"required"`
}

// DeleteRequest archives the selected zero-booking sessions.
type DeleteRequest struct {
	SessionIDs   []string `json:"session_ids"`
	ConfirmCount string   `json:"confirm_count" validate:"required"`
}

// AttendanceRequest applies one attendance action to the selected bookings.
type AttendanceRequest struct {
	BookingIDs   []string `json:"booking_ids"`
	Action       string   `json:"action" validate:"required"`
	ConfirmCount string   `json:"confirm_count" validate:"required"`
}

// CancelRequest cancels the selected bookings.
type CancelRequest struct {
	BookingIDs   []string `json:"booking_ids"`
	RefundTokens bool     `json:"refund_tokens"`
	ConfirmCount string   `json:"confirm_count" validate:"required"`
}

// PrerequisitesRequest carries the edited qualifying membership of one
// debrief session. The server computes the delta against its baseline.
type PrerequisitesRequest struct {
	CurrentIDs []string `json:"current_ids"`
}

// PrerequisitesResponse reports the applied membership and the transmitted
// delta.
type PrerequisitesResponse struct {
	DebriefID  string          `json:"debrief_id"`
	Membership []string        `json:"membership"`
	Delta      models.SetDelta `json:"delta"`
}
