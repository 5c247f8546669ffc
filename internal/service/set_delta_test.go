package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/models"
)

func TestDeltaIdenticalSetsIsEmpty(t *testing.T) {
	set := []string{"a", "b", "c"}
	delta := Delta(set, set)
	require.False(t, delta.HasChanges())
	require.Empty(t, delta.Added)
	require.Empty(t, delta.Removed)
}

func TestDeltaOrderInsensitive(t *testing.T) {
	delta := Delta([]string{"a", "b", "c"}, []string{"c", "b", "a"})
	require.False(t, delta.HasChanges())
}

func TestDeltaComputesMinimalPair(t *testing.T) {
	delta := Delta([]string{"a", "b", "c"}, []string{"b", "c", "d", "e"})
	require.Equal(t, models.SetDelta{Added: []string{"d", "e"}, Removed: []string{"a"}}, delta)
}

func TestDeltaFromEmptyBaseline(t *testing.T) {
	delta := Delta(nil, []string{"x", "y"})
	require.Equal(t, []string{"x", "y"}, delta.Added)
	require.Empty(t, delta.Removed)
}

func TestPrereqBaselinePrimeDoesNotOverwrite(t *testing.T) {
	baseline := NewPrereqBaseline()

	baseline.Prime("d1", []string{"a"})
	baseline.Prime("d1", []string{"a", "b"})

	set, ok := baseline.Get("d1")
	require.True(t, ok)
	require.Equal(t, []string{"a"}, set)
}

func TestPrereqBaselineCommitResets(t *testing.T) {
	baseline := NewPrereqBaseline()

	baseline.Prime("d1", []string{"a"})
	baseline.Commit("d1", []string{"a", "b"})

	set, ok := baseline.Get("d1")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, set)

	// a second edit in the same session diffs against the committed set
	delta := Delta(set, []string{"b"})
	require.Equal(t, []string{"a"}, delta.Removed)
	require.Empty(t, delta.Added)
}

func TestPrereqBaselineDrop(t *testing.T) {
	baseline := NewPrereqBaseline()

	baseline.Prime("d1", []string{"a"})
	baseline.Drop("d1")

	_, ok := baseline.Get("d1")
	require.False(t, ok)
}
