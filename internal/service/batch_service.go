package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/examdesk/examdesk-api/internal/crm"
	"github.com/examdesk/examdesk-api/internal/dto"
	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

// BatchDispatcher is the CRM surface the orchestrator dispatches to.
type BatchDispatcher interface {
	CloneSessions(ctx context.Context, sources []crm.CloneSource, properties map[string]interface{}) (*crm.CloneResponse, error)
	UpdateSessions(ctx context.Context, inputs []crm.UpdateInput) (*crm.UpdateResponse, error)
	DeleteSessions(ctx context.Context, ids []string) (*crm.DeleteResponse, error)
	MarkAttendance(ctx context.Context, ids []string, action models.AttendanceAction) (*crm.SummaryResponse, error)
	CancelBookings(ctx context.Context, items []models.CancelItem) (*crm.SummaryResponse, error)
	ApplyPrerequisiteDelta(ctx context.Context, debriefID string, delta models.SetDelta) (*crm.PrereqDeltaResponse, error)
}

// BatchObserver receives the outcome of every dispatched operation.
type BatchObserver func(op models.BatchOperation, success bool, duration time.Duration)

// BatchService orchestrates the confirm-and-dispatch pipeline: resolve the
// operator's selection, classify eligibility, gate on the typed count,
// dispatch one batch call to the CRM and reconcile local state. Session
// payloads never touch the replica; the CRM owns persistence.
type BatchService struct {
	reads      SessionReader
	dispatcher BatchDispatcher
	registry   *SelectionRegistry
	reconciler *CacheReconciler
	baseline   *PrereqBaseline

	classifier EligibilityClassifier
	resolver   OverrideResolver
	codec      SentinelCodec

	maxSelection int
	logger       *zap.Logger
	observe      BatchObserver
	now          func() time.Time
}

// BatchServiceOption configures the orchestrator.
type BatchServiceOption func(*BatchService)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *zap.Logger) BatchServiceOption {
	return func(s *BatchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBatchObserver registers an outcome observer.
func WithBatchObserver(obs BatchObserver) BatchServiceOption {
	return func(s *BatchService) {
		if obs != nil {
			s.observe = obs
		}
	}
}

// WithMaxSelectionSize bounds how many entities one batch may carry.
func WithMaxSelectionSize(n int) BatchServiceOption {
	return func(s *BatchService) {
		if n > 0 {
			s.maxSelection = n
		}
	}
}

// NewBatchService constructs the orchestrator.
func NewBatchService(reads SessionReader, dispatcher BatchDispatcher, registry *SelectionRegistry, reconciler *CacheReconciler, baseline *PrereqBaseline, opts ...BatchServiceOption) *BatchService {
	s := &BatchService{
		reads:        reads,
		dispatcher:   dispatcher,
		registry:     registry,
		reconciler:   reconciler,
		baseline:     baseline,
		maxSelection: 200,
		logger:       zap.NewNop(),
		observe:      func(models.BatchOperation, bool, time.Duration) {},
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Preview classifies the pending operation without dispatching anything.
// For edits and clones it also resolves the effective per-entity rows the
// confirmation dialog renders.
func (s *BatchService) Preview(ctx context.Context, operatorID string, req dto.PreviewRequest) (*dto.PreviewResponse, error) {
	op := models.BatchOperation(req.Operation)
	if !op.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown operation %q", req.Operation))
	}

	ids, err := s.resolveSelection(operatorID, op.Mode(), append(req.SessionIDs, req.BookingIDs...))
	if err != nil {
		return nil, err
	}

	if op == models.OpAttendance || op == models.OpCancel {
		bookings, err := s.reads.GetBookingsByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		eligible, blocked := s.classifier.ClassifyBookings(bookings, op)
		resp := &dto.PreviewResponse{Operation: op, EligibleCount: len(eligible)}
		for _, f := range blocked {
			resp.Blocked = append(resp.Blocked, models.BlockedSession{Reason: f.Message, Session: models.ExamSession{ID: f.ID}})
		}
		for _, b := range eligible {
			resp.Eligible = append(resp.Eligible, models.EligibleSession{Session: models.ExamSession{ID: b.ID}})
		}
		return resp, nil
	}

	sessions, err := s.reads.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	classification := s.classifier.Classify(sessions, op)
	resp := &dto.PreviewResponse{
		Operation:     op,
		Eligible:      classification.Eligible,
		Blocked:       classification.Blocked,
		EligibleCount: classification.EligibleCount(),
	}

	switch op {
	case models.OpEdit:
		if req.Override != nil {
			override, err := s.decodeOverride(*req.Override)
			if err != nil {
				return nil, err
			}
			for _, e := range classification.Eligible {
				resp.Previews = append(resp.Previews, s.resolver.Resolve(e.Session, override))
			}
		}
	case models.OpClone:
		if req.TargetDate != "" {
			target, err := s.codec.EncodeRequiredDate(req.TargetDate)
			if err != nil {
				return nil, err
			}
			override := models.SessionOverride{}
			if req.Override != nil {
				if override, err = s.decodeOverride(*req.Override); err != nil {
					return nil, err
				}
			}
			for _, e := range classification.Eligible {
				resp.Previews = append(resp.Previews, s.resolver.ResolveClone(e.Session, override, target))
			}
		}
	}
	return resp, nil
}

// Clone duplicates the selected sessions onto the target date with an
// optional sparse patch applied to every clone.
func (s *BatchService) Clone(ctx context.Context, operatorID string, req dto.CloneRequest) (*models.BatchResult, error) {
	target, err := s.codec.EncodeRequiredDate(req.TargetDate)
	if err != nil {
		return nil, err
	}
	override := models.SessionOverride{}
	if req.Override != nil {
		if override, err = s.decodeOverride(*req.Override); err != nil {
			return nil, err
		}
	}

	mgr := s.registry.ForOperator(operatorID)
	ids, err := s.resolveSelection(operatorID, models.ModeBulkEdit, req.SessionIDs)
	if err != nil {
		return nil, err
	}
	sessions, err := s.reads.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	classification := s.classifier.Classify(sessions, models.OpClone)
	if err := s.gate(classification.EligibleCount(), req.ConfirmCount); err != nil {
		return nil, err
	}

	eligible := make([]models.ExamSession, 0, len(classification.Eligible))
	for _, e := range classification.Eligible {
		eligible = append(eligible, e.Session)
	}
	if err := s.resolver.ValidateCloneDate(eligible, target); err != nil {
		return nil, err
	}
	sources := make([]crm.CloneSource, 0, len(eligible))
	for _, src := range eligible {
		eff := s.resolver.ResolveClone(src, override, target)
		if err := s.resolver.ValidateTimeRange(eff.StartTime, eff.EndTime); err != nil {
			return nil, err
		}
		if err := eff.CheckInvariants(s.now()); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("session %s: %s", src.ID, err.Error()))
		}
		sources = append(sources, crm.CloneSource{SourceID: src.ID, Snapshot: s.snapshot(eff)})
	}

	if _, err := mgr.BeginSubmit(models.ModeBulkEdit); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.dispatcher.CloneSessions(ctx, sources, map[string]interface{}{
		"session_date": target.Format(dateLayout),
	})
	if err != nil {
		s.fail(mgr, models.ModeBulkEdit, models.OpClone, start, err)
		return nil, err
	}

	result := &models.BatchResult{
		Operation: models.OpClone,
		Summary:   models.BatchSummary{Successful: len(resp.Created), Failed: len(resp.Failures)},
		Partial:   len(resp.Failures) > 0,
		Created:   resp.Created,
		Failures:  resp.Failures,
	}
	s.succeed(ctx, mgr, models.ModeBulkEdit, result, start)
	return result, nil
}

// Edit applies one sparse patch to every eligible selected session. The
// patch is resolved per entity so category rules hold in mixed batches.
func (s *BatchService) Edit(ctx context.Context, operatorID string, req dto.EditRequest) (*models.BatchResult, error) {
	override, err := s.decodeOverride(req.Override)
	if err != nil {
		return nil, err
	}
	if override.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patch does not change any field")
	}

	mgr := s.registry.ForOperator(operatorID)
	ids, err := s.resolveSelection(operatorID, models.ModeBulkEdit, req.SessionIDs)
	if err != nil {
		return nil, err
	}
	sessions, err := s.reads.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	classification := s.classifier.Classify(sessions, models.OpEdit)
	if err := s.gate(classification.EligibleCount(), req.ConfirmCount); err != nil {
		return nil, err
	}

	inputs := make([]crm.UpdateInput, 0, len(classification.Eligible))
	for _, e := range classification.Eligible {
		eff := s.resolver.Resolve(e.Session, override)
		if err := s.resolver.ValidateTimeRange(eff.StartTime, eff.EndTime); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("session %s: %s", e.Session.ID, appErrors.FromError(err).Message))
		}
		if err := eff.CheckInvariants(s.now()); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("session %s: %s", e.Session.ID, err.Error()))
		}
		inputs = append(inputs, crm.UpdateInput{
			ID:         e.Session.ID,
			Properties: s.codec.Payload(override, e.Session.Category),
		})
	}

	if _, err := mgr.BeginSubmit(models.ModeBulkEdit); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.dispatcher.UpdateSessions(ctx, inputs)
	if err != nil {
		s.fail(mgr, models.ModeBulkEdit, models.OpEdit, start, err)
		return nil, err
	}

	result := &models.BatchResult{
		Operation: models.OpEdit,
		Summary:   models.BatchSummary{Successful: len(resp.Updated)},
		Updated:   resp.Updated,
	}
	s.succeed(ctx, mgr, models.ModeBulkEdit, result, start)
	return result, nil
}

// Delete archives the selected sessions. Only zero-booking sessions are
// eligible; the typed count gates on the eligible subset.
func (s *BatchService) Delete(ctx context.Context, operatorID string, req dto.DeleteRequest) (*models.BatchResult, error) {
	mgr := s.registry.ForOperator(operatorID)
	ids, err := s.resolveSelection(operatorID, models.ModeBulkEdit, req.SessionIDs)
	if err != nil {
		return nil, err
	}
	sessions, err := s.reads.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	classification := s.classifier.Classify(sessions, models.OpDelete)
	if err := s.gate(classification.EligibleCount(), req.ConfirmCount); err != nil {
		return nil, err
	}

	if _, err := mgr.BeginSubmit(models.ModeBulkEdit); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.dispatcher.DeleteSessions(ctx, classification.EligibleIDs())
	if err != nil {
		s.fail(mgr, models.ModeBulkEdit, models.OpDelete, start, err)
		return nil, err
	}

	result := &models.BatchResult{
		Operation:  models.OpDelete,
		Summary:    resp.Summary,
		Partial:    resp.Summary.Failed > 0,
		DeletedIDs: resp.DeletedIDs,
	}
	s.succeed(ctx, mgr, models.ModeBulkEdit, result, start)
	return result, nil
}

// Attendance applies one attendance action to the selected bookings.
func (s *BatchService) Attendance(ctx context.Context, operatorID string, req dto.AttendanceRequest) (*models.BatchResult, error) {
	action := models.AttendanceAction(req.Action)
	if !action.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance action %q", req.Action))
	}

	mgr := s.registry.ForOperator(operatorID)
	ids, err := s.resolveSelection(operatorID, models.ModeAttendance, req.BookingIDs)
	if err != nil {
		return nil, err
	}
	bookings, err := s.reads.GetBookingsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	eligible, blocked := s.classifier.ClassifyBookings(bookings, models.OpAttendance)
	if err := s.gate(len(eligible), req.ConfirmCount); err != nil {
		return nil, err
	}

	eligibleIDs := make([]string, 0, len(eligible))
	for _, b := range eligible {
		eligibleIDs = append(eligibleIDs, b.ID)
	}

	if _, err := mgr.BeginSubmit(models.ModeAttendance); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.dispatcher.MarkAttendance(ctx, eligibleIDs, action)
	if err != nil {
		s.fail(mgr, models.ModeAttendance, models.OpAttendance, start, err)
		return nil, err
	}

	result := &models.BatchResult{
		Operation: models.OpAttendance,
		Summary:   resp.Summary,
		Partial:   resp.Summary.Failed > 0,
		Failures:  append(blocked, resp.Failures...),
	}
	s.succeed(ctx, mgr, models.ModeAttendance, result, start)
	return result, nil
}

// Cancel cancels the selected bookings, optionally refunding tokens.
func (s *BatchService) Cancel(ctx context.Context, operatorID string, req dto.CancelRequest) (*models.BatchResult, error) {
	mgr := s.registry.ForOperator(operatorID)
	ids, err := s.resolveSelection(operatorID, models.ModeCancellation, req.BookingIDs)
	if err != nil {
		return nil, err
	}
	bookings, err := s.reads.GetBookingsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	eligible, blocked := s.classifier.ClassifyBookings(bookings, models.OpCancel)
	if err := s.gate(len(eligible), req.ConfirmCount); err != nil {
		return nil, err
	}

	items := make([]models.CancelItem, 0, len(eligible))
	for _, b := range eligible {
		items = append(items, models.CancelItem{
			BookingID:    b.ID,
			TraineeRef:   b.TraineeID,
			RefundTokens: req.RefundTokens,
		})
	}

	if _, err := mgr.BeginSubmit(models.ModeCancellation); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.dispatcher.CancelBookings(ctx, items)
	if err != nil {
		s.fail(mgr, models.ModeCancellation, models.OpCancel, start, err)
		return nil, err
	}

	result := &models.BatchResult{
		Operation: models.OpCancel,
		Summary:   resp.Summary,
		Partial:   resp.Summary.Failed > 0,
		Failures:  append(blocked, resp.Failures...),
	}
	s.succeed(ctx, mgr, models.ModeCancellation, result, start)
	return result, nil
}

// ApplyPrerequisites diffs the edited membership against the baseline and
// transmits only the delta. An unchanged membership dispatches nothing.
func (s *BatchService) ApplyPrerequisites(ctx context.Context, debriefID string, currentIDs []string) (*dto.PrerequisitesResponse, error) {
	if debriefID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}

	base, ok := s.baseline.Get(debriefID)
	if !ok {
		loaded, err := s.reads.GetPrerequisites(ctx, debriefID)
		if err != nil {
			return nil, err
		}
		s.baseline.Prime(debriefID, loaded)
		base = loaded
	}

	delta := Delta(base, currentIDs)
	if !delta.HasChanges() {
		return &dto.PrerequisitesResponse{DebriefID: debriefID, Membership: base, Delta: delta}, nil
	}

	start := time.Now()
	resp, err := s.dispatcher.ApplyPrerequisiteDelta(ctx, debriefID, delta)
	if err != nil {
		s.observe(models.OpPrerequisites, false, time.Since(start))
		return nil, err
	}
	s.observe(models.OpPrerequisites, true, time.Since(start))

	membership := resp.Membership
	if membership == nil {
		membership = currentIDs
	}
	s.baseline.Commit(debriefID, membership)
	if s.reconciler != nil {
		s.reconciler.InvalidatePrerequisites(ctx)
	}
	return &dto.PrerequisitesResponse{DebriefID: debriefID, Membership: membership, Delta: delta}, nil
}

// resolveSelection returns the ids the mutation operates on. A live
// non-empty selection for the mode is authoritative so a retry re-sends the
// original set; otherwise the request ids seed the working set.
func (s *BatchService) resolveSelection(operatorID string, mode models.Mode, requestIDs []string) ([]string, error) {
	mgr := s.registry.ForOperator(operatorID)
	state := mgr.State(mode)
	if state.Phase == models.PhaseInactive {
		if _, err := mgr.Enter(mode, nil); err != nil {
			return nil, err
		}
		state = mgr.State(mode)
	}
	if len(state.Selected) == 0 {
		if err := mgr.Seed(mode, requestIDs); err != nil {
			return nil, err
		}
		state = mgr.State(mode)
	}
	ids := state.SelectedIDs()
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing selected")
	}
	if len(ids) > s.maxSelection {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("selection exceeds the batch limit of %d", s.maxSelection))
	}
	return ids, nil
}

// gate enforces the two-step confirmation: a non-zero eligible subset and a
// typed count strictly equal to it.
func (s *BatchService) gate(eligibleCount int, typed string) error {
	if eligibleCount == 0 {
		return appErrors.ErrNoEligible
	}
	if !ConfirmCount(typed, eligibleCount) {
		return appErrors.ErrConfirmationMismatch
	}
	return nil
}

func (s *BatchService) decodeOverride(in dto.OverrideInput) (models.SessionOverride, error) {
	var o models.SessionOverride
	var err error

	o.Track = s.codec.EncodeText(in.Track)
	o.StartTime = s.codec.EncodeText(in.StartTime)
	o.EndTime = s.codec.EncodeText(in.EndTime)
	o.Location = s.codec.EncodeText(in.Location)

	if o.Date, err = s.codec.EncodeDate(in.Date); err != nil {
		return models.SessionOverride{}, err
	}
	if o.Capacity, err = s.codec.EncodeCapacity(in.Capacity); err != nil {
		return models.SessionOverride{}, err
	}
	if o.Activation, err = s.codec.EncodeActivation(in.Activation); err != nil {
		return models.SessionOverride{}, err
	}
	if o.ActivationAt, err = s.codec.EncodeTimestamp(in.ActivationAt); err != nil {
		return models.SessionOverride{}, err
	}
	return o, nil
}

// snapshot serialises one resolved entity for a clone source.
func (s *BatchService) snapshot(eff models.ExamSession) map[string]interface{} {
	props := map[string]interface{}{
		"category":         string(eff.Category),
		"session_date":     eff.Date.Format(dateLayout),
		"start_time":       eff.StartTime,
		"end_time":         eff.EndTime,
		"location":         eff.Location,
		"capacity":         eff.Capacity,
		"activation_state": string(eff.Activation),
	}
	if eff.Category.TrackAllowed() && eff.Track != nil {
		props["track"] = *eff.Track
	} else {
		props["track"] = nil
	}
	if eff.ActivationAt != nil {
		props["activation_at"] = eff.ActivationAt.UTC().Format(time.RFC3339)
	}
	return props
}

func (s *BatchService) fail(mgr *SelectionManager, mode models.Mode, op models.BatchOperation, start time.Time, err error) {
	mgr.Complete(mode, false, appErrors.FromError(err).Message)
	s.observe(op, false, time.Since(start))
	s.logger.Error("batch dispatch failed",
		zap.String("operation", string(op)),
		zap.Error(err),
	)
}

func (s *BatchService) succeed(ctx context.Context, mgr *SelectionManager, mode models.Mode, result *models.BatchResult, start time.Time) {
	mgr.Complete(mode, true, "")
	s.observe(result.Operation, true, time.Since(start))
	if s.reconciler != nil {
		s.reconciler.Reconcile(ctx, result)
	}
	s.logger.Info("batch dispatched",
		zap.String("operation", string(result.Operation)),
		zap.Int("successful", result.Summary.Successful),
		zap.Int("failed", result.Summary.Failed),
	)
}
