package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/crm"
	"github.com/examdesk/examdesk-api/internal/dto"
	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

type readsStub struct {
	sessions      map[string]models.ExamSession
	bookings      map[string]models.Booking
	prerequisites map[string][]string
}

func newReadsStub() *readsStub {
	return &readsStub{
		sessions:      make(map[string]models.ExamSession),
		bookings:      make(map[string]models.Booking),
		prerequisites: make(map[string][]string),
	}
}

func (r *readsStub) List(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, *models.Pagination, error) {
	out := make([]models.ExamSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(out)}, nil
}

func (r *readsStub) GetByIDs(ctx context.Context, ids []string) ([]models.ExamSession, error) {
	out := make([]models.ExamSession, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *readsStub) ListBookingsBySession(ctx context.Context, sessionID string) ([]models.Booking, error) {
	out := []models.Booking{}
	for _, b := range r.bookings {
		if b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *readsStub) GetBookingsByIDs(ctx context.Context, ids []string) ([]models.Booking, error) {
	out := make([]models.Booking, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.bookings[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *readsStub) GetPrerequisites(ctx context.Context, debriefID string) ([]string, error) {
	return r.prerequisites[debriefID], nil
}

func (r *readsStub) ListQualifyingCandidates(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, error) {
	return nil, nil
}

func (r *readsStub) GroupedCounts(ctx context.Context) ([]models.CategoryCount, error) {
	return nil, nil
}

type dispatcherStub struct {
	cloneSources []crm.CloneSource
	cloneProps   map[string]interface{}
	updateInputs []crm.UpdateInput
	deletedIDs   []string
	attendedIDs  []string
	action       models.AttendanceAction
	cancelItems  []models.CancelItem
	prereqDelta  models.SetDelta
	prereqCalls  int
	err          error
}

func (d *dispatcherStub) CloneSessions(ctx context.Context, sources []crm.CloneSource, properties map[string]interface{}) (*crm.CloneResponse, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.cloneSources = sources
	d.cloneProps = properties
	created := make([]models.ExamSession, 0, len(sources))
	for i := range sources {
		created = append(created, models.ExamSession{ID: "new-" + sources[i].SourceID})
	}
	return &crm.CloneResponse{Created: created}, nil
}

func (d *dispatcherStub) UpdateSessions(ctx context.Context, inputs []crm.UpdateInput) (*crm.UpdateResponse, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.updateInputs = inputs
	updated := make([]models.ExamSession, 0, len(inputs))
	for _, in := range inputs {
		updated = append(updated, models.ExamSession{ID: in.ID})
	}
	return &crm.UpdateResponse{Updated: updated}, nil
}

func (d *dispatcherStub) DeleteSessions(ctx context.Context, ids []string) (*crm.DeleteResponse, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.deletedIDs = ids
	return &crm.DeleteResponse{DeletedIDs: ids, Summary: models.BatchSummary{Successful: len(ids)}}, nil
}

func (d *dispatcherStub) MarkAttendance(ctx context.Context, ids []string, action models.AttendanceAction) (*crm.SummaryResponse, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.attendedIDs = ids
	d.action = action
	return &crm.SummaryResponse{Summary: models.BatchSummary{Successful: len(ids)}}, nil
}

func (d *dispatcherStub) CancelBookings(ctx context.Context, items []models.CancelItem) (*crm.SummaryResponse, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.cancelItems = items
	return &crm.SummaryResponse{Summary: models.BatchSummary{Successful: len(items)}}, nil
}

func (d *dispatcherStub) ApplyPrerequisiteDelta(ctx context.Context, debriefID string, delta models.SetDelta) (*crm.PrereqDeltaResponse, error) {
	d.prereqCalls++
	if d.err != nil {
		return nil, d.err
	}
	d.prereqDelta = delta
	return &crm.PrereqDeltaResponse{}, nil
}

func newBatchFixture() (*BatchService, *readsStub, *dispatcherStub, *SessionIndex) {
	reads := newReadsStub()
	dispatcher := &dispatcherStub{}
	index := NewSessionIndex()
	registry := NewSelectionRegistry()
	baseline := NewPrereqBaseline()
	reconciler := NewCacheReconciler(index, nil, nil, nil)
	svc := NewBatchService(reads, dispatcher, registry, reconciler, baseline)
	return svc, reads, dispatcher, index
}

func TestBatchDeleteGatesOnEligibleCount(t *testing.T) {
	svc, reads, dispatcher, index := newBatchFixture()
	reads.sessions["s1"] = sessionWithBookings("s1", 0)
	reads.sessions["s2"] = sessionWithBookings("s2", 2)
	reads.sessions["s3"] = sessionWithBookings("s3", 0)
	index.Reset([]models.ExamSession{reads.sessions["s1"], reads.sessions["s2"], reads.sessions["s3"]}, 3)

	// typed count must match the eligible subset (2), not the selection (3)
	_, err := svc.Delete(context.Background(), "op-1", dto.DeleteRequest{
		SessionIDs:   []string{"s1", "s2", "s3"},
		ConfirmCount: "3",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConfirmationMismatch.Code, appErrors.FromError(err).Code)

	result, err := svc.Delete(context.Background(), "op-1", dto.DeleteRequest{
		SessionIDs:   []string{"s1", "s2", "s3"},
		ConfirmCount: "2",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"s1", "s3"}, dispatcher.deletedIDs)
	require.Equal(t, 2, result.Summary.Successful)

	// index reconciled without a refetch
	require.Equal(t, 1, index.Len())
	_, ok := index.Get("s2")
	require.True(t, ok)
}

func TestBatchDeleteNoEligible(t *testing.T) {
	svc, reads, _, _ := newBatchFixture()
	reads.sessions["s1"] = sessionWithBookings("s1", 4)

	_, err := svc.Delete(context.Background(), "op-1", dto.DeleteRequest{
		SessionIDs:   []string{"s1"},
		ConfirmCount: "0",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNoEligible.Code, appErrors.FromError(err).Code)
}

func TestBatchEditAppliesPerEntityPayloads(t *testing.T) {
	svc, reads, dispatcher, _ := newBatchFixture()
	track := "car"
	reads.sessions["s1"] = models.ExamSession{ID: "s1", Category: models.CategoryPractical, Track: &track}
	reads.sessions["s2"] = models.ExamSession{ID: "s2", Category: models.CategoryDebrief}

	result, err := svc.Edit(context.Background(), "op-1", dto.EditRequest{
		SessionIDs: []string{"s1", "s2"},
		Override: dto.OverrideInput{
			Track:    "motorcycle",
			Location: "Hall 3",
		},
		ConfirmCount: "2",
	})
	require.NoError(t, err)
	require.Len(t, result.Updated, 2)
	require.Len(t, dispatcher.updateInputs, 2)

	byID := map[string]map[string]interface{}{}
	for _, in := range dispatcher.updateInputs {
		byID[in.ID] = in.Properties
	}
	// the practical session takes the new track, the debrief gets null
	require.Equal(t, "motorcycle", byID["s1"]["track"])
	require.Nil(t, byID["s2"]["track"])
	require.Equal(t, "Hall 3", byID["s1"]["location"])
}

func TestBatchEditRejectsEmptyPatch(t *testing.T) {
	svc, reads, _, _ := newBatchFixture()
	reads.sessions["s1"] = sessionWithBookings("s1", 0)

	_, err := svc.Edit(context.Background(), "op-1", dto.EditRequest{
		SessionIDs:   []string{"s1"},
		Override:     dto.OverrideInput{Track: MarkerKeep},
		ConfirmCount: "1",
	})
	require.Error(t, err)
}

func TestBatchEditRejectsScheduledWithoutTimestamp(t *testing.T) {
	svc, reads, dispatcher, _ := newBatchFixture()
	reads.sessions["s1"] = sessionWithBookings("s1", 0)

	_, err := svc.Edit(context.Background(), "op-1", dto.EditRequest{
		SessionIDs:   []string{"s1"},
		Override:     dto.OverrideInput{Activation: "scheduled"},
		ConfirmCount: "1",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Empty(t, dispatcher.updateInputs)

	// scheduling with a future timestamp passes
	_, err = svc.Edit(context.Background(), "op-1", dto.EditRequest{
		SessionIDs:   []string{"s1"},
		Override:     dto.OverrideInput{Activation: "scheduled", ActivationAt: "2100-01-01T09:00:00Z"},
		ConfirmCount: "1",
	})
	require.NoError(t, err)
	require.Len(t, dispatcher.updateInputs, 1)
}

func TestBatchCloneRejectsScheduledWithoutTimestamp(t *testing.T) {
	svc, reads, dispatcher, _ := newBatchFixture()
	src := baseSession()
	src.Activation = models.ActivationScheduled
	src.ActivationAt = nil
	reads.sessions[src.ID] = src

	// the source's own broken activation must not be cloned
	_, err := svc.Clone(context.Background(), "op-1", dto.CloneRequest{
		SessionIDs:   []string{src.ID},
		TargetDate:   "2026-10-01",
		ConfirmCount: "1",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Empty(t, dispatcher.cloneSources)
}

func TestBatchCloneValidatesTargetDate(t *testing.T) {
	svc, reads, dispatcher, index := newBatchFixture()
	src := baseSession()
	reads.sessions[src.ID] = src

	// collides with the source's own date
	_, err := svc.Clone(context.Background(), "op-1", dto.CloneRequest{
		SessionIDs:   []string{src.ID},
		TargetDate:   "2026-09-10",
		ConfirmCount: "1",
	})
	require.Error(t, err)

	result, err := svc.Clone(context.Background(), "op-1", dto.CloneRequest{
		SessionIDs:   []string{src.ID},
		TargetDate:   "2026-10-01",
		ConfirmCount: "1",
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	require.Len(t, dispatcher.cloneSources, 1)
	require.Equal(t, "s1", dispatcher.cloneSources[0].SourceID)
	require.Equal(t, "2026-10-01", dispatcher.cloneProps["session_date"])
	require.Equal(t, "2026-10-01", dispatcher.cloneSources[0].Snapshot["session_date"])

	// clones prepend into the index
	sessions, total := index.Snapshot()
	require.Equal(t, 1, total)
	require.Equal(t, "new-s1", sessions[0].ID)
}

func TestBatchFailurePreservesSelectionForRetry(t *testing.T) {
	svc, reads, dispatcher, _ := newBatchFixture()
	reads.sessions["s1"] = sessionWithBookings("s1", 0)
	dispatcher.err = appErrors.ErrCRMUnavailable

	_, err := svc.Delete(context.Background(), "op-1", dto.DeleteRequest{
		SessionIDs:   []string{"s1"},
		ConfirmCount: "1",
	})
	require.Error(t, err)

	// the same selection is still live, a retry with no ids re-sends it
	dispatcher.err = nil
	result, err := svc.Delete(context.Background(), "op-1", dto.DeleteRequest{ConfirmCount: "1"})
	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, result.DeletedIDs)
}

func TestBatchAttendanceSkipsCancelledBookings(t *testing.T) {
	svc, reads, dispatcher, _ := newBatchFixture()
	reads.bookings["b1"] = models.Booking{ID: "b1", SessionID: "s1", Status: models.BookingActive}
	reads.bookings["b2"] = models.Booking{ID: "b2", SessionID: "s1", Status: models.BookingCancelled}

	result, err := svc.Attendance(context.Background(), "op-1", dto.AttendanceRequest{
		BookingIDs:   []string{"b1", "b2"},
		Action:       string(models.ActionMarkAttended),
		ConfirmCount: "1",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"b1"}, dispatcher.attendedIDs)
	require.Equal(t, models.ActionMarkAttended, dispatcher.action)
	require.Len(t, result.Failures, 1)
	require.Equal(t, "b2", result.Failures[0].ID)
}

func TestBatchCancelBuildsRefundItems(t *testing.T) {
	svc, reads, dispatcher, _ := newBatchFixture()
	reads.bookings["b1"] = models.Booking{ID: "b1", TraineeID: "t1", Status: models.BookingActive}

	_, err := svc.Cancel(context.Background(), "op-1", dto.CancelRequest{
		BookingIDs:   []string{"b1"},
		RefundTokens: true,
		ConfirmCount: "1",
	})
	require.NoError(t, err)
	require.Len(t, dispatcher.cancelItems, 1)
	require.Equal(t, "b1", dispatcher.cancelItems[0].BookingID)
	require.Equal(t, "t1", dispatcher.cancelItems[0].TraineeRef)
	require.True(t, dispatcher.cancelItems[0].RefundTokens)
}

func TestApplyPrerequisitesTransmitsOnlyDelta(t *testing.T) {
	svc, reads, dispatcher, _ := newBatchFixture()
	reads.prerequisites["d1"] = []string{"a", "b"}

	res, err := svc.ApplyPrerequisites(context.Background(), "d1", []string{"b", "c"})
	require.NoError(t, err)
	require.Equal(t, 1, dispatcher.prereqCalls)
	require.Equal(t, []string{"c"}, dispatcher.prereqDelta.Added)
	require.Equal(t, []string{"a"}, dispatcher.prereqDelta.Removed)
	require.Equal(t, []string{"b", "c"}, res.Membership)

	// the committed membership is the new baseline: re-applying dispatches nothing
	_, err = svc.ApplyPrerequisites(context.Background(), "d1", []string{"b", "c"})
	require.NoError(t, err)
	require.Equal(t, 1, dispatcher.prereqCalls)
}

func TestBatchObserverReceivesOutcomes(t *testing.T) {
	reads := newReadsStub()
	dispatcher := &dispatcherStub{}
	var gotOp models.BatchOperation
	var gotSuccess bool
	svc := NewBatchService(reads, dispatcher, NewSelectionRegistry(), nil, NewPrereqBaseline(),
		WithBatchObserver(func(op models.BatchOperation, success bool, d time.Duration) {
			gotOp, gotSuccess = op, success
		}),
	)
	reads.sessions["s1"] = sessionWithBookings("s1", 0)

	_, err := svc.Delete(context.Background(), "op-1", dto.DeleteRequest{
		SessionIDs:   []string{"s1"},
		ConfirmCount: "1",
	})
	require.NoError(t, err)
	require.Equal(t, models.OpDelete, gotOp)
	require.True(t, gotSuccess)
}
