// Package crm wraps the CRM's batch object API. The CRM owns persistence;
// this client only dispatches batch mutations and decodes their results.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/examdesk/examdesk-api/internal/models"
	"github.com/examdesk/examdesk-api/pkg/config"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
)

// RequestObserver receives timing for every outgoing CRM call.
type RequestObserver func(operation string, duration time.Duration, err error)

// Client talks to the CRM batch object API with a bearer token.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	token           string
	sessionObjectID string
	bookingObjectID string
	logger          *zap.Logger
	observe         RequestObserver
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. Used by tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver registers a request observer.
func WithObserver(obs RequestObserver) Option {
	return func(c *Client) {
		if obs != nil {
			c.observe = obs
		}
	}
}

// NewClient constructs a CRM client from configuration.
func NewClient(cfg config.CRMConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		httpClient:      &http.Client{Timeout: cfg.Timeout},
		baseURL:         cfg.BaseURL,
		token:           cfg.Token,
		sessionObjectID: cfg.SessionObjectID,
		bookingObjectID: cfg.BookingObjectID,
		logger:          logger,
		observe:         func(string, time.Duration, error) {},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// CloneSource is one entity to duplicate, with its current field snapshot.
type CloneSource struct {
	SourceID string                 `json:"sourceId"`
	Snapshot map[string]interface{} `json:"sourceFieldSnapshot"`
}

type cloneRequest struct {
	Sources    []CloneSource          `json:"sources"`
	Properties map[string]interface{} `json:"properties"`
}

// CloneResponse reports created entities and per-source failures.
type CloneResponse struct {
	Created  []models.ExamSession   `json:"results"`
	Failures []models.EntityFailure `json:"errors"`
}

// CloneSessions duplicates the sources, applying one resolved property
// patch to every clone.
func (c *Client) CloneSessions(ctx context.Context, sources []CloneSource, properties map[string]interface{}) (*CloneResponse, error) {
	var out CloneResponse
	path := fmt.Sprintf("/objects/%s/batch/clone", c.sessionObjectID)
	if err := c.do(ctx, "clone", path, cloneRequest{Sources: sources, Properties: properties}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInput is one entity patch within a batch update.
type UpdateInput struct {
	ID         string                 `json:"id"`
	Properties map[string]interface{} `json:"properties"`
}

type updateRequest struct {
	Inputs []UpdateInput `json:"inputs"`
}

// UpdateResponse returns the updated entities.
type UpdateResponse struct {
	Updated []models.ExamSession `json:"results"`
}

// UpdateSessions applies per-entity property patches in one batch.
func (c *Client) UpdateSessions(ctx context.Context, inputs []UpdateInput) (*UpdateResponse, error) {
	var out UpdateResponse
	path := fmt.Sprintf("/objects/%s/batch/update", c.sessionObjectID)
	if err := c.do(ctx, "update", path, updateRequest{Inputs: inputs}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// DeleteResponse reports archived ids and the aggregate outcome.
type DeleteResponse struct {
	DeletedIDs []string            `json:"deletedIds"`
	Summary    models.BatchSummary `json:"summary"`
}

// DeleteSessions archives the given zero-booking sessions.
func (c *Client) DeleteSessions(ctx context.Context, ids []string) (*DeleteResponse, error) {
	var out DeleteResponse
	path := fmt.Sprintf("/objects/%s/batch/archive", c.sessionObjectID)
	if err := c.do(ctx, "delete", path, idsRequest{IDs: ids}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type attendanceRequest struct {
	IDs    []string                `json:"ids"`
	Action models.AttendanceAction `json:"action"`
}

// SummaryResponse reports the aggregate outcome plus per-entity failures.
type SummaryResponse struct {
	Summary  models.BatchSummary    `json:"summary"`
	Failures []models.EntityFailure `json:"errors"`
}

// MarkAttendance applies one attendance action to a batch of bookings.
func (c *Client) MarkAttendance(ctx context.Context, ids []string, action models.AttendanceAction) (*SummaryResponse, error) {
	var out SummaryResponse
	path := fmt.Sprintf("/objects/%s/batch/attendance", c.bookingObjectID)
	if err := c.do(ctx, "attendance", path, attendanceRequest{IDs: ids, Action: action}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type cancelRequest struct {
	Inputs []models.CancelItem `json:"inputs"`
}

// CancelBookings cancels bookings, optionally refunding trainee tokens.
func (c *Client) CancelBookings(ctx context.Context, items []models.CancelItem) (*SummaryResponse, error) {
	var out SummaryResponse
	path := fmt.Sprintf("/objects/%s/batch/cancel", c.bookingObjectID)
	if err := c.do(ctx, "cancel", path, cancelRequest{Inputs: items}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type prereqDeltaRequest struct {
	AddIDs    []string `json:"addIds"`
	RemoveIDs []string `json:"removeIds"`
}

// PrereqDeltaResponse returns the post-apply qualifying membership.
type PrereqDeltaResponse struct {
	Membership []string `json:"newMembership"`
}

// ApplyPrerequisiteDelta transmits only the add/remove pair, never the full
// membership.
func (c *Client) ApplyPrerequisiteDelta(ctx context.Context, debriefID string, delta models.SetDelta) (*PrereqDeltaResponse, error) {
	var out PrereqDeltaResponse
	path := fmt.Sprintf("/objects/%s/%s/prerequisites/delta", c.sessionObjectID, debriefID)
	if err := c.do(ctx, "prerequisites", path, prereqDeltaRequest{AddIDs: delta.Added, RemoveIDs: delta.Removed}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, operation, path string, body, out interface{}) error {
	start := time.Now()
	err := c.roundTrip(ctx, path, body, out)
	c.observe(operation, time.Since(start), err)
	if err != nil {
		c.logger.Warn("crm request failed",
			zap.String("operation", operation),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode CRM request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build CRM request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCRMUnavailable.Code, appErrors.ErrCRMUnavailable.Status, "CRM request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCRMUnavailable.Code, appErrors.ErrCRMUnavailable.Status, "read CRM response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return appErrors.Clone(appErrors.ErrCRMUnavailable, fmt.Sprintf("CRM returned %d: %s", resp.StatusCode, msg))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrCRMUnavailable.Code, appErrors.ErrCRMUnavailable.Status, "decode CRM response")
		}
	}
	return nil
}
