package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

const aggregatesCountsKey = "aggregates:category_counts"

// SessionReader is the replica read surface the service depends on.
type SessionReader interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, *models.Pagination, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.ExamSession, error)
	ListBookingsBySession(ctx context.Context, sessionID string) ([]models.Booking, error)
	GetBookingsByIDs(ctx context.Context, ids []string) ([]models.Booking, error)
	GetPrerequisites(ctx context.Context, debriefID string) ([]string, error)
	ListQualifyingCandidates(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, error)
	GroupedCounts(ctx context.Context) ([]models.CategoryCount, error)
}

// AggregateCache stores JSON snapshots of derived views.
type AggregateCache interface {
	Get(ctx context.Context, key string, out interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// SessionService serves dashboard reads: session listings, bookings,
// prerequisite membership and cached per-category aggregates. All reads
// come from the CRM sync replica, never from the CRM itself.
type SessionService struct {
	repo     SessionReader
	cache    AggregateCache
	index    *SessionIndex
	baseline *PrereqBaseline
	cacheTTL time.Duration
	logger   *zap.Logger
}

// SessionServiceOption configures the service.
type SessionServiceOption func(*SessionService)

// WithSessionLogger sets the logger.
func WithSessionLogger(logger *zap.Logger) SessionServiceOption {
	return func(s *SessionService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAggregateCache wires the aggregate cache with its TTL.
func WithAggregateCache(cache AggregateCache, ttl time.Duration) SessionServiceOption {
	return func(s *SessionService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewSessionService constructs the read service.
func NewSessionService(repo SessionReader, index *SessionIndex, baseline *PrereqBaseline, opts ...SessionServiceOption) *SessionService {
	s := &SessionService{
		repo:     repo,
		index:    index,
		baseline: baseline,
		cacheTTL: 10 * time.Minute,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// List returns sessions for the dashboard grid and refreshes the optimistic
// index with the listed page.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, *models.Pagination, error) {
	sessions, pagination, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	if s.index != nil {
		s.index.Reset(sessions, pagination.TotalCount)
	}
	return sessions, pagination, nil
}

// Aggregates returns the per-category counts, cache-first. A miss recomputes
// from the replica and repopulates the cache.
func (s *SessionService) Aggregates(ctx context.Context) ([]models.CategoryCount, error) {
	if s.cache != nil {
		var cached []models.CategoryCount
		err := s.cache.Get(ctx, aggregatesCountsKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("aggregate cache read failed", zap.Error(err))
		}
	}
	return s.RefreshAggregates(ctx)
}

// RefreshAggregates recomputes the grouped counts and repopulates the cache.
// Also invoked by the background refresh queue after batch mutations.
func (s *SessionService) RefreshAggregates(ctx context.Context) ([]models.CategoryCount, error) {
	counts, err := s.repo.GroupedCounts(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, aggregatesCountsKey, counts, s.cacheTTL); err != nil {
			s.logger.Warn("aggregate cache write failed", zap.Error(err))
		}
	}
	return counts, nil
}

// Bookings lists a session's bookings for the attendance and cancellation
// pickers.
func (s *SessionService) Bookings(ctx context.Context, sessionID string) ([]models.Booking, error) {
	if sessionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	return s.repo.ListBookingsBySession(ctx, sessionID)
}

// Prerequisites loads a debrief session's qualifying membership and primes
// the editing baseline so later edits transmit only deltas.
func (s *SessionService) Prerequisites(ctx context.Context, debriefID string) (*models.PrerequisiteLink, error) {
	sessions, err := s.repo.GetByIDs(ctx, []string{debriefID})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	if sessions[0].Category != models.CategoryDebrief {
		return nil, appErrors.Clone(appErrors.ErrValidation, "prerequisites only apply to debrief sessions")
	}

	ids, err := s.repo.GetPrerequisites(ctx, debriefID)
	if err != nil {
		return nil, err
	}
	if s.baseline != nil {
		s.baseline.Prime(debriefID, ids)
	}
	return &models.PrerequisiteLink{DebriefID: debriefID, QualifyingIDs: ids}, nil
}

// Candidates lists the non-debrief sessions that may be attached as
// prerequisites.
func (s *SessionService) Candidates(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, error) {
	return s.repo.ListQualifyingCandidates(ctx, filter)
}

// SessionsByIDs loads sessions preserving the request's id order where
// possible.
func (s *SessionService) SessionsByIDs(ctx context.Context, ids []string) ([]models.ExamSession, error) {
	return s.repo.GetByIDs(ctx, ids)
}
