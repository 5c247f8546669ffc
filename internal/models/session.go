package models

import (
	"fmt"
	"time"
)

// ExamCategory enumerates the supported exam session types.
type ExamCategory string

const (
	CategoryTheory     ExamCategory = "theory"
	CategoryPractical  ExamCategory = "practical"
	CategorySimulation ExamCategory = "simulation"
	CategoryDebrief    ExamCategory = "debrief"
)

// Valid returns true when the category is a supported value.
func (c ExamCategory) Valid() bool {
	switch c {
	case CategoryTheory, CategoryPractical, CategorySimulation, CategoryDebrief:
		return true
	default:
		return false
	}
}

// TrackAllowed reports whether the specialisation track applies to the category.
// Debrief sessions are category-wide and never carry a track.
func (c ExamCategory) TrackAllowed() bool {
	return c != CategoryDebrief
}

// ActivationState describes whether a session is bookable.
type ActivationState string

const (
	ActivationActive    ActivationState = "active"
	ActivationInactive  ActivationState = "inactive"
	ActivationScheduled ActivationState = "scheduled"
)

// Valid returns true when the state is a supported value.
func (s ActivationState) Valid() bool {
	switch s {
	case ActivationActive, ActivationInactive, ActivationScheduled:
		return true
	default:
		return false
	}
}

// ExamSession represents a schedulable exam offering mirrored from the CRM.
// BookedCount is derived: the count of non-cancelled bookings.
type ExamSession struct {
	ID           string          `db:"id" json:"id"`
	Category     ExamCategory    `db:"category" json:"category"`
	Track        *string         `db:"track" json:"track,omitempty"`
	Date         time.Time       `db:"session_date" json:"date"`
	StartTime    string          `db:"start_time" json:"start_time"`
	EndTime      string          `db:"end_time" json:"end_time"`
	Location     string          `db:"location" json:"location"`
	Capacity     int             `db:"capacity" json:"capacity"`
	Activation   ActivationState `db:"activation_state" json:"activation_state"`
	ActivationAt *time.Time      `db:"activation_at" json:"activation_at,omitempty"`
	BookedCount  int             `db:"booked_count" json:"booked_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// CheckInvariants verifies the structural rules a session must satisfy.
func (s *ExamSession) CheckInvariants(now time.Time) error {
	if !s.Category.Valid() {
		return fmt.Errorf("unknown category %q", s.Category)
	}
	if !s.Category.TrackAllowed() && s.Track != nil && *s.Track != "" {
		return fmt.Errorf("track must be empty for %s sessions", s.Category)
	}
	if s.Activation == ActivationScheduled {
		if s.ActivationAt == nil {
			return fmt.Errorf("scheduled activation requires an activation timestamp")
		}
		if !s.ActivationAt.After(now) {
			return fmt.Errorf("scheduled activation timestamp must be in the future")
		}
	}
	return nil
}

// SessionFilter captures listing filters served from the replica.
type SessionFilter struct {
	Category  *ExamCategory
	Track     string
	Location  string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CategoryCount is one row of the grouped aggregate view.
type CategoryCount struct {
	Category ExamCategory `db:"category" json:"category"`
	Count    int          `db:"count" json:"count"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
