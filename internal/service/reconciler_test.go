package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/models"
)

func indexFixture() *SessionIndex {
	index := NewSessionIndex()
	index.Reset([]models.ExamSession{
		{ID: "s1", Location: "Hall 1"},
		{ID: "s2", Location: "Hall 2"},
		{ID: "s3", Location: "Hall 3"},
	}, 30)
	return index
}

func TestSessionIndexApplyClonePrepends(t *testing.T) {
	index := indexFixture()

	index.ApplyClone([]models.ExamSession{{ID: "s4"}, {ID: "s5"}})

	sessions, total := index.Snapshot()
	require.Equal(t, 32, total)
	require.Equal(t, "s4", sessions[0].ID)
	require.Equal(t, "s5", sessions[1].ID)
	require.Equal(t, "s1", sessions[2].ID)
}

func TestSessionIndexApplyPatchIgnoresAbsent(t *testing.T) {
	index := indexFixture()

	index.ApplyPatch([]models.ExamSession{
		{ID: "s2", Location: "Hall 9"},
		{ID: "other-page", Location: "Hall 0"},
	})

	patched, ok := index.Get("s2")
	require.True(t, ok)
	require.Equal(t, "Hall 9", patched.Location)

	_, ok = index.Get("other-page")
	require.False(t, ok)
	_, total := index.Snapshot()
	require.Equal(t, 30, total)
}

func TestSessionIndexApplyDelete(t *testing.T) {
	index := indexFixture()

	index.ApplyDelete([]string{"s1", "unknown"})

	sessions, total := index.Snapshot()
	require.Equal(t, 29, total)
	require.Len(t, sessions, 2)
	require.Equal(t, "s2", sessions[0].ID)
}

type invalidatorStub struct {
	patterns []string
}

func (i *invalidatorStub) DeleteByPattern(ctx context.Context, pattern string) error {
	i.patterns = append(i.patterns, pattern)
	return nil
}

func TestCacheReconcilerInvalidatesAggregates(t *testing.T) {
	index := indexFixture()
	invalidator := &invalidatorStub{}
	reconciler := NewCacheReconciler(index, invalidator, nil, nil)

	reconciler.Reconcile(context.Background(), &models.BatchResult{
		Operation:  models.OpDelete,
		DeletedIDs: []string{"s3"},
	})

	require.Equal(t, []string{"aggregates:*"}, invalidator.patterns)
	_, ok := index.Get("s3")
	require.False(t, ok)
}

func TestCacheReconcilerBookingOpsLeaveIndexAlone(t *testing.T) {
	index := indexFixture()
	invalidator := &invalidatorStub{}
	reconciler := NewCacheReconciler(index, invalidator, nil, nil)

	reconciler.Reconcile(context.Background(), &models.BatchResult{Operation: models.OpAttendance})

	require.Equal(t, 3, index.Len())
	require.Len(t, invalidator.patterns, 1)
}
