package service

import (
	"sort"
	"sync"

	"github.com/examdesk/examdesk-api/internal/models"
)

// Delta computes the minimal add/remove pair transforming original into
// current. Delta(S, S) is always empty. Outputs are sorted for stable wire
// payloads.
func Delta(original, current []string) models.SetDelta {
	before := make(map[string]struct{}, len(original))
	for _, id := range original {
		before[id] = struct{}{}
	}
	after := make(map[string]struct{}, len(current))
	for _, id := range current {
		after[id] = struct{}{}
	}

	delta := models.SetDelta{Added: []string{}, Removed: []string{}}
	for id := range after {
		if _, ok := before[id]; !ok {
			delta.Added = append(delta.Added, id)
		}
	}
	for id := range before {
		if _, ok := after[id]; !ok {
			delta.Removed = append(delta.Removed, id)
		}
	}
	sort.Strings(delta.Added)
	sort.Strings(delta.Removed)
	return delta
}

// PrereqBaseline tracks the last-applied qualifying membership per debrief
// session. Only the delta against the baseline is ever transmitted; after a
// successful apply the baseline resets to the edited set without a refetch.
type PrereqBaseline struct {
	mu   sync.Mutex
	sets map[string][]string
}

// NewPrereqBaseline constructs an empty baseline store.
func NewPrereqBaseline() *PrereqBaseline {
	return &PrereqBaseline{sets: make(map[string][]string)}
}

// Prime records the membership loaded from the read service, unless an
// editing baseline already exists for the session.
func (b *PrereqBaseline) Prime(debriefID string, membership []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.sets[debriefID]; ok {
		return
	}
	b.sets[debriefID] = append([]string(nil), membership...)
}

// Get returns the current baseline and whether one is known.
func (b *PrereqBaseline) Get(debriefID string) ([]string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.sets[debriefID]
	if !ok {
		return nil, false
	}
	return append([]string(nil), set...), true
}

// Commit resets the baseline to the applied membership, establishing the
// reference point for subsequent edits in the same editing session.
func (b *PrereqBaseline) Commit(debriefID string, membership []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sets[debriefID] = append([]string(nil), membership...)
}

// Drop forgets the baseline, forcing the next load to re-prime.
func (b *PrereqBaseline) Drop(debriefID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sets, debriefID)
}
