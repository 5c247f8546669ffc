package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/examdesk/examdesk-api/internal/models"
)

// Booking count is derived once, here: non-cancelled bookings only.
const bookedCountExpr = `(SELECT COUNT(*) FROM bookings b WHERE b.session_id = s.id AND b.status <> 'cancelled')`

const sessionColumns = `s.id, s.category, s.track, s.session_date, s.start_time, s.end_time,
	s.location, s.capacity, s.activation_state, s.activation_at, s.created_at, s.updated_at,
	` + bookedCountExpr + ` AS booked_count`

// SessionRepository reads exam sessions and bookings from the CRM sync
// replica. It never writes; the CRM owns persistence.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns sessions matching the filter plus pagination metadata.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, *models.Pagination, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(`SELECT ` + sessionColumns + ` FROM exam_sessions s`)

	conditions := make([]string, 0, 5)
	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("s.category = $%d", len(args)))
	}
	if filter.Track != "" {
		args = append(args, filter.Track)
		conditions = append(conditions, fmt.Sprintf("s.track = $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		conditions = append(conditions, fmt.Sprintf("s.location = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("s.session_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("s.session_date <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	builder.WriteString(" ORDER BY " + sortClause(filter.SortBy, filter.SortOrder))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	args = append(args, pageSize)
	builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, (page-1)*pageSize)
	builder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	sessions := []models.ExamSession{}
	if err := r.db.SelectContext(ctx, &sessions, builder.String(), args...); err != nil {
		return nil, nil, fmt.Errorf("list sessions: %w", err)
	}

	count, err := r.countSessions(ctx, conditions, args[:len(args)-2])
	if err != nil {
		return nil, nil, err
	}

	return sessions, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: count}, nil
}

func (r *SessionRepository) countSessions(ctx context.Context, conditions []string, args []interface{}) (int, error) {
	query := `SELECT COUNT(*) FROM exam_sessions s`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return count, nil
}

// GetByIDs loads the given sessions; unknown ids are simply absent from the
// result.
func (r *SessionRepository) GetByIDs(ctx context.Context, ids []string) ([]models.ExamSession, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+sessionColumns+` FROM exam_sessions s WHERE s.id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build session lookup: %w", err)
	}
	query = r.db.Rebind(query)
	sessions := []models.ExamSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("get sessions by ids: %w", err)
	}
	return sessions, nil
}

// ListBookingsBySession returns a session's bookings for the attendance and
// cancellation pickers.
func (r *SessionRepository) ListBookingsBySession(ctx context.Context, sessionID string) ([]models.Booking, error) {
	const query = `SELECT id, session_id, trainee_id, trainee_name, status, attendance, created_at, updated_at
	FROM bookings WHERE session_id = $1 ORDER BY trainee_name, id`
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, sessionID); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// GetBookingsByIDs loads the given bookings; unknown ids are absent.
func (r *SessionRepository) GetBookingsByIDs(ctx context.Context, ids []string) ([]models.Booking, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, session_id, trainee_id, trainee_name, status, attendance, created_at, updated_at
	FROM bookings WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build booking lookup: %w", err)
	}
	query = r.db.Rebind(query)
	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("get bookings by ids: %w", err)
	}
	return bookings, nil
}

// GetPrerequisites returns the qualifying membership of a debrief session.
func (r *SessionRepository) GetPrerequisites(ctx context.Context, debriefID string) ([]string, error) {
	const query = `SELECT qualifying_id FROM session_prerequisites WHERE debrief_id = $1 ORDER BY qualifying_id`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, debriefID); err != nil {
		return nil, fmt.Errorf("get prerequisites: %w", err)
	}
	return ids, nil
}

// ListQualifyingCandidates returns non-debrief sessions that may serve as
// prerequisites, optionally narrowed by category and date-from.
func (r *SessionRepository) ListQualifyingCandidates(ctx context.Context, filter models.SessionFilter) ([]models.ExamSession, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 3)
	builder.WriteString(`SELECT ` + sessionColumns + ` FROM exam_sessions s WHERE s.category <> 'debrief'`)

	if filter.Category != nil {
		args = append(args, *filter.Category)
		builder.WriteString(fmt.Sprintf(" AND s.category = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		builder.WriteString(fmt.Sprintf(" AND s.session_date >= $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, filter.Location)
		builder.WriteString(fmt.Sprintf(" AND s.location = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY s.session_date, s.start_time")

	sessions := []models.ExamSession{}
	if err := r.db.SelectContext(ctx, &sessions, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list qualifying candidates: %w", err)
	}
	return sessions, nil
}

// GroupedCounts recomputes the per-category aggregate from the replica.
func (r *SessionRepository) GroupedCounts(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT s.category, COUNT(*) AS count FROM exam_sessions s GROUP BY s.category ORDER BY s.category`
	counts := []models.CategoryCount{}
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("grouped counts: %w", err)
	}
	return counts, nil
}

func sortClause(sortBy, sortOrder string) string {
	column := "s.session_date"
	switch sortBy {
	case "location":
		column = "s.location"
	case "category":
		column = "s.category"
	case "capacity":
		column = "s.capacity"
	case "created_at":
		column = "s.created_at"
	}
	direction := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		direction = "DESC"
	}
	return column + " " + direction + ", s.id ASC"
}
