package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

// Reserved form-control markers. The dashboard sends these instead of real
// values; an empty string from a text input is ambiguous with "no change"
// and is therefore treated as keep, never as clear.
const (
	MarkerKeep          = "__keep__"
	MarkerNotApplicable = "__na__"
	MarkerClear         = "__clear__"
)

const dateLayout = "2006-01-02"

// SentinelCodec translates form markers into tri-state override fields and
// override fields into the outgoing CRM property payload.
type SentinelCodec struct{}

// EncodeText maps a text control value onto a tri-state field.
func (SentinelCodec) EncodeText(raw string) models.StringField {
	switch raw {
	case MarkerKeep, "":
		return models.KeepString()
	case MarkerClear, MarkerNotApplicable:
		return models.ClearString()
	default:
		return models.SetString(raw)
	}
}

// EncodeCapacity maps a numeric control value onto a tri-state field.
func (SentinelCodec) EncodeCapacity(raw string) (models.IntField, error) {
	switch raw {
	case MarkerKeep, "":
		return models.KeepInt(), nil
	case MarkerClear, MarkerNotApplicable:
		return models.ClearInt(), nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return models.IntField{}, appErrors.Clone(appErrors.ErrValidation, "capacity must be a non-negative integer")
	}
	return models.SetInt(n), nil
}

// EncodeDate maps an optional date control value onto a tri-state field.
// A session date can be overwritten but never cleared.
func (SentinelCodec) EncodeDate(raw string) (models.TimeField, error) {
	switch raw {
	case MarkerKeep, "":
		return models.KeepTime(), nil
	case MarkerClear, MarkerNotApplicable:
		return models.TimeField{}, appErrors.Clone(appErrors.ErrValidation, "session date cannot be cleared")
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return models.TimeField{}, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	return models.SetTime(d), nil
}

// EncodeRequiredDate parses the clone target date. The field is always
// required and never decodes to unset.
func (SentinelCodec) EncodeRequiredDate(raw string) (time.Time, error) {
	if raw == "" || raw == MarkerKeep || raw == MarkerClear || raw == MarkerNotApplicable {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "target date is required")
	}
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "target date must use YYYY-MM-DD")
	}
	return d, nil
}

// EncodeActivation maps an activation control value onto a tri-state field,
// rejecting unknown states.
func (c SentinelCodec) EncodeActivation(raw string) (models.StringField, error) {
	field := c.EncodeText(raw)
	if field.State == models.FieldSet && !models.ActivationState(field.Value).Valid() {
		return models.StringField{}, appErrors.Clone(appErrors.ErrValidation, "unsupported activation state")
	}
	return field, nil
}

// EncodeTimestamp maps an RFC3339 control value onto a tri-state field.
func (c SentinelCodec) EncodeTimestamp(raw string) (models.TimeField, error) {
	switch raw {
	case MarkerKeep, "":
		return models.KeepTime(), nil
	case MarkerClear, MarkerNotApplicable:
		return models.ClearTime(), nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return models.TimeField{}, appErrors.Clone(appErrors.ErrValidation, "activation timestamp must be RFC3339")
	}
	return models.SetTime(ts), nil
}

// Payload builds the outgoing CRM property map for one entity. Set fields
// carry their value, cleared fields carry an explicit null, unset fields are
// omitted. The track property is always emitted as null when the entity's
// category disallows it, regardless of the override state.
func (SentinelCodec) Payload(o models.SessionOverride, category models.ExamCategory) map[string]interface{} {
	props := make(map[string]interface{})

	putString := func(key string, f models.StringField) {
		switch f.State {
		case models.FieldSet:
			props[key] = f.Value
		case models.FieldCleared:
			props[key] = nil
		}
	}

	if category.TrackAllowed() {
		putString("track", o.Track)
	} else {
		props["track"] = nil
	}
	putString("start_time", o.StartTime)
	putString("end_time", o.EndTime)
	putString("location", o.Location)
	putString("activation_state", o.Activation)

	switch o.Date.State {
	case models.FieldSet:
		props["session_date"] = o.Date.Value.Format(dateLayout)
	case models.FieldCleared:
		// unreachable by construction, EncodeDate refuses clears
	}

	switch o.Capacity.State {
	case models.FieldSet:
		props["capacity"] = o.Capacity.Value
	case models.FieldCleared:
		props["capacity"] = nil
	}

	switch o.ActivationAt.State {
	case models.FieldSet:
		props["activation_at"] = o.ActivationAt.Value.UTC().Format(time.RFC3339)
	case models.FieldCleared:
		props["activation_at"] = nil
	}

	return props
}
