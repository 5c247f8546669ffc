package models

// PrerequisiteLink attaches the set of qualifying session ids that must be
// attended before a debrief session. Membership is only ever mutated through
// add/remove deltas, never replaced wholesale.
type PrerequisiteLink struct {
	DebriefID     string   `json:"debrief_id"`
	QualifyingIDs []string `json:"qualifying_ids"`
}

// SetDelta is the minimal add/remove pair transforming one membership into another.
type SetDelta struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// HasChanges reports whether applying the delta would change anything.
func (d SetDelta) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}
