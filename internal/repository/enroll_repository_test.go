package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
)

var enrollRowColumns = []string{
	"id", "student_id", "plan_id", "start_date", "end_date", "price", "created_at", "updated_at",
	"student_name", "student_email", "plan_title", "plan_duration", "plan_price",
}

func TestEnrollRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(enrollRowColumns).
		AddRow("e1", "s1", "p1", now, now.AddDate(0, 3, 0), 109.0, now, now, "Ana", "ana@example.com", "Gold", 3, 109.0)
	mock.ExpectQuery("SELECT e.id, e.student_id, e.plan_id").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM enrolls e`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	result, total, err := repo.ListActive(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Gold", result[0].PlanTitle)

	detail := result[0].Detail()
	assert.Equal(t, "Ana", detail.Student.Name)
	assert.Equal(t, 3, detail.Plan.Duration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollRepositoryFindEligibleByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollRepository(db)

	now := time.Now()
	mock.ExpectQuery("ORDER BY created_at ASC LIMIT 1").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "plan_id", "start_date", "end_date", "price", "created_at", "updated_at"}).
			AddRow("e1", "s1", "p1", now, now.AddDate(0, 1, 0), 129.0, now, now))

	enroll, err := repo.FindEligibleByStudent(context.Background(), "s1", false)
	require.NoError(t, err)
	assert.Equal(t, "e1", enroll.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollRepositoryFindEligiblePickLatest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollRepository(db)

	mock.ExpectQuery("ORDER BY created_at DESC LIMIT 1").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "plan_id", "start_date", "end_date", "price", "created_at", "updated_at"}))

	_, err := repo.FindEligibleByStudent(context.Background(), "s1", true)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollRepository(db)

	mock.ExpectExec("INSERT INTO enrolls").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	start := time.Now()
	end := start.AddDate(0, 3, 0)
	enroll := &models.Enroll{StudentID: "s1", PlanID: "p1", StartDate: &start, EndDate: &end, Price: 109}
	err := repo.Create(context.Background(), enroll)
	require.NoError(t, err)
	assert.NotEmpty(t, enroll.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollRepositoryRevoke(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollRepository(db)

	mock.ExpectExec("UPDATE enrolls SET start_date = NULL, end_date = NULL").
		WithArgs("e1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Revoke(context.Background(), "e1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
