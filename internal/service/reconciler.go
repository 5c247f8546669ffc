package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/examdesk/examdesk-api/internal/models"
	"github.com/examdesk/examdesk-api/pkg/jobs"
)

// SessionIndex is the optimistic in-memory view reconciled after each batch.
// Clones prepend, patches merge in place, deletes remove. It is never
// refetched wholesale after a mutation; the replica catches up on its own.
type SessionIndex struct {
	mu       sync.RWMutex
	byID     map[string]models.ExamSession
	order    []string
	total    int
	loadedAt time.Time
}

// NewSessionIndex constructs an empty index.
func NewSessionIndex() *SessionIndex {
	return &SessionIndex{byID: make(map[string]models.ExamSession)}
}

// Reset replaces the index with a freshly listed page set.
func (x *SessionIndex) Reset(sessions []models.ExamSession, total int) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.byID = make(map[string]models.ExamSession, len(sessions))
	x.order = make([]string, 0, len(sessions))
	for _, s := range sessions {
		x.byID[s.ID] = s
		x.order = append(x.order, s.ID)
	}
	x.total = total
	x.loadedAt = time.Now().UTC()
}

// ApplyClone prepends newly created sessions and grows the total count.
func (x *SessionIndex) ApplyClone(created []models.ExamSession) {
	x.mu.Lock()
	defer x.mu.Unlock()
	prepended := make([]string, 0, len(created))
	for _, s := range created {
		if s.ID == "" {
			continue
		}
		if _, exists := x.byID[s.ID]; !exists {
			prepended = append(prepended, s.ID)
			x.total++
		}
		x.byID[s.ID] = s
	}
	x.order = append(prepended, x.order...)
}

// ApplyPatch merges updated sessions in place. Sessions absent from the
// index (other pages) are ignored rather than inserted out of order.
func (x *SessionIndex) ApplyPatch(updated []models.ExamSession) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, s := range updated {
		if _, exists := x.byID[s.ID]; exists {
			x.byID[s.ID] = s
		}
	}
}

// ApplyDelete drops the given ids and shrinks the total count.
func (x *SessionIndex) ApplyDelete(ids []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	removed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, exists := x.byID[id]; exists {
			delete(x.byID, id)
			removed[id] = struct{}{}
			x.total--
		}
	}
	if len(removed) == 0 {
		return
	}
	kept := x.order[:0]
	for _, id := range x.order {
		if _, gone := removed[id]; !gone {
			kept = append(kept, id)
		}
	}
	x.order = kept
}

// Snapshot returns the indexed sessions in display order plus the total.
func (x *SessionIndex) Snapshot() ([]models.ExamSession, int) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]models.ExamSession, 0, len(x.order))
	for _, id := range x.order {
		if s, ok := x.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, x.total
}

// Get returns one indexed session.
func (x *SessionIndex) Get(id string) (models.ExamSession, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	s, ok := x.byID[id]
	return s, ok
}

// Len returns the number of indexed sessions.
func (x *SessionIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byID)
}

const (
	aggregatesKeyPattern = "aggregates:*"
	jobTypeRefresh       = "aggregates.refresh"
)

type aggregateInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheReconciler folds batch outcomes into the session index and marks the
// cached grouped counts stale, then hands the recompute to the background
// queue so dashboard reads stay fast.
type CacheReconciler struct {
	index  *SessionIndex
	cache  aggregateInvalidator
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewCacheReconciler constructs the reconciler.
func NewCacheReconciler(index *SessionIndex, cache aggregateInvalidator, queue *jobs.Queue, logger *zap.Logger) *CacheReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheReconciler{index: index, cache: cache, queue: queue, logger: logger}
}

// Reconcile applies a batch result to the index and invalidates aggregates.
// Attendance and cancellation touch bookings only, so the session index is
// left alone and only the cached counts go stale.
func (r *CacheReconciler) Reconcile(ctx context.Context, result *models.BatchResult) {
	if result == nil {
		return
	}
	switch result.Operation {
	case models.OpClone:
		r.index.ApplyClone(result.Created)
	case models.OpEdit:
		r.index.ApplyPatch(result.Updated)
	case models.OpDelete:
		r.index.ApplyDelete(result.DeletedIDs)
	}
	r.invalidate(ctx, string(result.Operation))
}

// InvalidatePrerequisites marks cached views stale after a membership change.
func (r *CacheReconciler) InvalidatePrerequisites(ctx context.Context) {
	r.invalidate(ctx, string(models.OpPrerequisites))
}

func (r *CacheReconciler) invalidate(ctx context.Context, reason string) {
	if r.cache != nil {
		if err := r.cache.DeleteByPattern(ctx, aggregatesKeyPattern); err != nil {
			r.logger.Warn("aggregate invalidation failed", zap.String("reason", reason), zap.Error(err))
		}
	}
	if r.queue == nil {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: jobTypeRefresh, Payload: reason}
	if err := r.queue.Enqueue(job); err != nil {
		r.logger.Warn("aggregate refresh enqueue failed", zap.String("reason", reason), zap.Error(err))
	}
}
