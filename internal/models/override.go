package models

import "time"

// FieldState distinguishes "do not touch" from "overwrite" from "explicitly clear".
// The three-state split is load-bearing: a two-state (value | omitted)
// representation cannot express clearing a field across a whole batch.
type FieldState int

const (
	FieldUnset FieldState = iota
	FieldSet
	FieldCleared
)

// StringField is a tri-state override for a text property.
type StringField struct {
	State FieldState
	Value string
}

// KeepString leaves the source value untouched.
func KeepString() StringField { return StringField{State: FieldUnset} }

// SetString overwrites with the given value.
func SetString(v string) StringField { return StringField{State: FieldSet, Value: v} }

// ClearString explicitly empties the property.
func ClearString() StringField { return StringField{State: FieldCleared} }

// IntField is a tri-state override for a numeric property.
type IntField struct {
	State FieldState
	Value int
}

// KeepInt leaves the source value untouched.
func KeepInt() IntField { return IntField{State: FieldUnset} }

// SetInt overwrites with the given value.
func SetInt(v int) IntField { return IntField{State: FieldSet, Value: v} }

// ClearInt explicitly zeroes the property.
func ClearInt() IntField { return IntField{State: FieldCleared} }

// TimeField is a tri-state override for a timestamp property.
type TimeField struct {
	State FieldState
	Value time.Time
}

// KeepTime leaves the source value untouched.
func KeepTime() TimeField { return TimeField{State: FieldUnset} }

// SetTime overwrites with the given value.
func SetTime(v time.Time) TimeField { return TimeField{State: FieldSet, Value: v} }

// ClearTime explicitly nulls the property.
func ClearTime() TimeField { return TimeField{State: FieldCleared} }

// SessionOverride is the sparse patch applied across a batch of sessions.
// Each field is independently unset, set or cleared.
type SessionOverride struct {
	Track        StringField
	Date         TimeField
	StartTime    StringField
	EndTime      StringField
	Location     StringField
	Capacity     IntField
	Activation   StringField
	ActivationAt TimeField
}

// IsZero reports whether no field would be touched.
func (o SessionOverride) IsZero() bool {
	return o.Track.State == FieldUnset &&
		o.Date.State == FieldUnset &&
		o.StartTime.State == FieldUnset &&
		o.EndTime.State == FieldUnset &&
		o.Location.State == FieldUnset &&
		o.Capacity.State == FieldUnset &&
		o.Activation.State == FieldUnset &&
		o.ActivationAt.State == FieldUnset
}
