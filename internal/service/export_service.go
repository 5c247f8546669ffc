package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/examdesk/examdesk-api/internal/models"
	appErrors "github.com/examdesk/examdesk-api/pkg/errors"
	"github.com/examdesk/examdesk-api/pkg/export"
)

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document and its HTTP metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders filtered session listings to CSV or PDF.
type ExportService struct {
	reads   SessionReader
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	enabled bool
	now     func() time.Time
}

// NewExportService constructs the service.
func NewExportService(reads SessionReader, enabled bool) *ExportService {
	return &ExportService{
		reads:   reads,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		enabled: enabled,
		now:     time.Now,
	}
}

var exportHeaders = []string{"ID", "Category", "Track", "Date", "Start", "End", "Location", "Capacity", "Booked", "Activation"}

// Sessions renders the filtered sessions in the requested format.
func (s *ExportService) Sessions(ctx context.Context, filter models.SessionFilter, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	filter.Page = 1
	filter.PageSize = 200
	sessions, _, err := s.reads.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers:   exportHeaders,
		Rows:      make([]map[string]string, 0, len(sessions)),
		EmptyCell: "-",
	}
	for _, sess := range sessions {
		track := ""
		if sess.Track != nil {
			track = *sess.Track
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":         sess.ID,
			"Category":   string(sess.Category),
			"Track":      track,
			"Date":       sess.Date.Format(dateLayout),
			"Start":      sess.StartTime,
			"End":        sess.EndTime,
			"Location":   sess.Location,
			"Capacity":   strconv.Itoa(sess.Capacity),
			"Booked":     strconv.Itoa(sess.BookedCount),
			"Activation": string(sess.Activation),
		})
	}

	stamp := s.now().UTC().Format("20060102-150405")
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render csv export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("exam-sessions-%s.csv", stamp),
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Exam Sessions")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render pdf export")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("exam-sessions-%s.pdf", stamp),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
