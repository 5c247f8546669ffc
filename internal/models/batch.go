package models

// BatchOperation enumerates the fixed operation catalog.
type BatchOperation string

const (
	OpClone         BatchOperation = "clone"
	OpEdit          BatchOperation = "edit"
	OpDelete        BatchOperation = "delete"
	OpAttendance    BatchOperation = "attendance"
	OpCancel        BatchOperation = "cancel"
	OpPrerequisites BatchOperation = "prerequisites"
)

// Valid returns true when the operation is part of the catalog.
func (o BatchOperation) Valid() bool {
	switch o {
	case OpClone, OpEdit, OpDelete, OpAttendance, OpCancel, OpPrerequisites:
		return true
	default:
		return false
	}
}

// Mode returns the selection mode the operation runs in.
func (o BatchOperation) Mode() Mode {
	switch o {
	case OpAttendance:
		return ModeAttendance
	case OpCancel:
		return ModeCancellation
	default:
		return ModeBulkEdit
	}
}

// EligibleSession is a selected session that may undergo the operation,
// optionally annotated with a non-blocking warning.
type EligibleSession struct {
	Session ExamSession `json:"session"`
	Warning string      `json:"warning,omitempty"`
}

// BlockedSession is a selected session excluded from the operation.
type BlockedSession struct {
	Session ExamSession `json:"session"`
	Reason  string      `json:"reason"`
}

// Classification partitions a selection into mutable and blocked subsets.
type Classification struct {
	Eligible []EligibleSession `json:"eligible"`
	Blocked  []BlockedSession  `json:"blocked"`
}

// EligibleCount sizes the confirmation gate. Never the raw selection size.
func (c Classification) EligibleCount() int { return len(c.Eligible) }

// EligibleIDs returns the ids of the mutable subset, in input order.
func (c Classification) EligibleIDs() []string {
	ids := make([]string, 0, len(c.Eligible))
	for _, e := range c.Eligible {
		ids = append(ids, e.Session.ID)
	}
	return ids
}

// BatchSummary is the aggregate outcome of a dispatched operation.
type BatchSummary struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// EntityFailure reports a per-entity failure inside an accepted batch.
type EntityFailure struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BatchResult is what an execute endpoint returns to the dashboard.
// Partial is true when the CRM accepted the batch but reported some
// per-entity failures; succeeded entities are reconciled regardless.
type BatchResult struct {
	Operation  BatchOperation  `json:"operation"`
	Summary    BatchSummary    `json:"summary"`
	Partial    bool            `json:"partial"`
	Created    []ExamSession   `json:"created,omitempty"`
	Updated    []ExamSession   `json:"updated,omitempty"`
	DeletedIDs []string        `json:"deleted_ids,omitempty"`
	Failures   []EntityFailure `json:"failures,omitempty"`
}
