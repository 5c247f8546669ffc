package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

type aggregateReadsStub struct {
	*readsStub
	groupedCalls int
	counts       []models.CategoryCount
}

func (r *aggregateReadsStub) GroupedCounts(ctx context.Context) ([]models.CategoryCount, error) {
	r.groupedCalls++
	return r.counts, nil
}

type cacheStub struct {
	values map[string][]byte
	sets   int
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: make(map[string][]byte)}
}

func (c *cacheStub) Get(ctx context.Context, key string, out interface{}) error {
	raw, ok := c.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	counts := out.(*[]models.CategoryCount)
	*counts = []models.CategoryCount{{Category: models.CategoryTheory, Count: int(raw[0])}}
	return nil
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	c.values[key] = []byte{9}
	return nil
}

func TestAggregatesCacheFirst(t *testing.T) {
	reads := &aggregateReadsStub{
		readsStub: newReadsStub(),
		counts:    []models.CategoryCount{{Category: models.CategoryTheory, Count: 9}},
	}
	cache := newCacheStub()
	svc := NewSessionService(reads, nil, nil, WithAggregateCache(cache, time.Minute))

	// miss recomputes and repopulates
	counts, err := svc.Aggregates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 9, counts[0].Count)
	require.Equal(t, 1, reads.groupedCalls)
	require.Equal(t, 1, cache.sets)

	// hit skips the replica
	counts, err = svc.Aggregates(context.Background())
	require.NoError(t, err)
	require.Equal(t, 9, counts[0].Count)
	require.Equal(t, 1, reads.groupedCalls)
}

func TestPrerequisitesPrimesBaseline(t *testing.T) {
	reads := newReadsStub()
	reads.sessions["d1"] = models.ExamSession{ID: "d1", Category: models.CategoryDebrief}
	reads.prerequisites["d1"] = []string{"a", "b"}
	baseline := NewPrereqBaseline()
	svc := NewSessionService(reads, nil, baseline)

	link, err := svc.Prerequisites(context.Background(), "d1")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, link.QualifyingIDs)

	set, ok := baseline.Get("d1")
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, set)
}

func TestPrerequisitesRejectsNonDebrief(t *testing.T) {
	reads := newReadsStub()
	reads.sessions["s1"] = models.ExamSession{ID: "s1", Category: models.CategoryTheory}
	svc := NewSessionService(reads, nil, NewPrereqBaseline())

	_, err := svc.Prerequisites(context.Background(), "s1")
	require.Error(t, err)

	_, err = svc.Prerequisites(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListRefreshesIndex(t *testing.T) {
	reads := newReadsStub()
	reads.sessions["s1"] = models.ExamSession{ID: "s1"}
	index := NewSessionIndex()
	svc := NewSessionService(reads, index, nil)

	_, pagination, err := svc.List(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, pagination.TotalCount)
	require.Equal(t, 1, index.Len())
}
