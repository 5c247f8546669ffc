package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/examdesk/examdesk-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var sessionRowColumns = []string{
	"id", "category", "track", "session_date", "start_time", "end_time",
	"location", "capacity", "activation_state", "activation_at",
	"created_at", "updated_at", "booked_count",
}

func sessionRow(id, category string, booked int) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, category, nil, now, "09:00", "11:00",
		"Hall 1", 20, "active", nil, now, now, booked,
	}
}

func TestSessionRepositoryListDerivesBookedCount(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow(sessionRow("s1", "theory", 3)...).
		AddRow(sessionRow("s2", "theory", 0)...)
	// the count must exclude cancelled bookings
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings b WHERE b\.session_id = s\.id AND b\.status <> 'cancelled'`).
		WithArgs("theory", 50, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exam_sessions s")).
		WithArgs("theory").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	category := models.CategoryTheory
	sessions, pagination, err := repo.List(context.Background(), models.SessionFilter{Category: &category})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, 3, sessions[0].BookedCount)
	require.Equal(t, 2, pagination.TotalCount)
	require.Equal(t, 1, pagination.Page)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListDateRange(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`s\.session_date >= \$1 AND s\.session_date <= \$2`).
		WithArgs(from, to, 50, 0).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exam_sessions s")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, _, err := repo.List(context.Background(), models.SessionFilter{DateFrom: &from, DateTo: &to})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryGetByIDs(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows(sessionRowColumns).AddRow(sessionRow("s1", "practical", 1)...)
	mock.ExpectQuery(`FROM exam_sessions s WHERE s\.id IN`).
		WithArgs("s1", "missing").
		WillReturnRows(rows)

	sessions, err := repo.GetByIDs(context.Background(), []string{"s1", "missing"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "s1", sessions[0].ID)

	// empty input never touches the database
	sessions, err = repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, sessions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryGetPrerequisites(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"qualifying_id"}).AddRow("a").AddRow("b")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT qualifying_id FROM session_prerequisites WHERE debrief_id = $1")).
		WithArgs("d1").
		WillReturnRows(rows)

	ids, err := repo.GetPrerequisites(context.Background(), "d1")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListQualifyingCandidatesExcludesDebrief(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)

	mock.ExpectQuery(`WHERE s\.category <> 'debrief'`).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).AddRow(sessionRow("s1", "theory", 0)...))

	sessions, err := repo.ListQualifyingCandidates(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryGroupedCounts(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"category", "count"}).
		AddRow("debrief", 2).
		AddRow("theory", 14)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY s.category")).
		WillReturnRows(rows)

	counts, err := repo.GroupedCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, models.CategoryTheory, counts[1].Category)
	require.Equal(t, 14, counts[1].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}
