package service

import (
	"fmt"
	"time"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

const clockLayout = "15:04"

// OverrideResolver merges a source entity with a sparse override patch to
// produce the effective entity used for preview rows and for the outgoing
// payload.
type OverrideResolver struct{}

// Resolve returns the effective entity: patch value where the patch is set
// or cleared, the source's own value otherwise. The source is not mutated.
func (OverrideResolver) Resolve(src models.ExamSession, patch models.SessionOverride) models.ExamSession {
	eff := src

	switch patch.Track.State {
	case models.FieldSet:
		v := patch.Track.Value
		eff.Track = &v
	case models.FieldCleared:
		eff.Track = nil
	}
	// The owning category wins over any marker.
	if !eff.Category.TrackAllowed() {
		eff.Track = nil
	}

	if patch.Date.State == models.FieldSet {
		eff.Date = patch.Date.Value
	}
	if patch.StartTime.State == models.FieldSet {
		eff.StartTime = patch.StartTime.Value
	} else if patch.StartTime.State == models.FieldCleared {
		eff.StartTime = ""
	}
	if patch.EndTime.State == models.FieldSet {
		eff.EndTime = patch.EndTime.Value
	} else if patch.EndTime.State == models.FieldCleared {
		eff.EndTime = ""
	}
	if patch.Location.State == models.FieldSet {
		eff.Location = patch.Location.Value
	} else if patch.Location.State == models.FieldCleared {
		eff.Location = ""
	}
	if patch.Capacity.State == models.FieldSet {
		eff.Capacity = patch.Capacity.Value
	} else if patch.Capacity.State == models.FieldCleared {
		eff.Capacity = 0
	}
	if patch.Activation.State == models.FieldSet {
		eff.Activation = models.ActivationState(patch.Activation.Value)
	}
	switch patch.ActivationAt.State {
	case models.FieldSet:
		v := patch.ActivationAt.Value
		eff.ActivationAt = &v
	case models.FieldCleared:
		eff.ActivationAt = nil
	}

	return eff
}

// ResolveClone builds the preview entity for one clone source. The target
// date is resolved once globally and applied identically to every clone; it
// is not part of the per-source patch. Identity and derived fields reset.
func (r OverrideResolver) ResolveClone(src models.ExamSession, patch models.SessionOverride, targetDate time.Time) models.ExamSession {
	eff := r.Resolve(src, patch)
	eff.ID = ""
	eff.Date = targetDate
	eff.BookedCount = 0
	return eff
}

// ValidateCloneDate rejects a target date equal to any source's own date.
// Cloning onto a source date would create a visually duplicate session.
func (OverrideResolver) ValidateCloneDate(sources []models.ExamSession, target time.Time) error {
	ty, tm, td := target.Date()
	for _, s := range sources {
		sy, sm, sd := s.Date.Date()
		if ty == sy && tm == sm && td == sd {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("target date %s collides with the date of session %s", target.Format(dateLayout), s.ID))
		}
	}
	return nil
}

// ValidateTimeRange rejects an inverted or degenerate effective time range.
func (OverrideResolver) ValidateTimeRange(start, end string) error {
	if start == "" || end == "" {
		return nil
	}
	st, err := time.Parse(clockLayout, start)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start time must use HH:MM")
	}
	et, err := time.Parse(clockLayout, end)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end time must use HH:MM")
	}
	if !st.Before(et) {
		return appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}
	return nil
}
