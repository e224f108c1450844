package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
)

func TestHelpOrderRepositoryListUnanswered(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHelpOrderRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "question", "answer", "answer_at", "created_at", "updated_at", "student_name", "student_email"}).
		AddRow("h1", "s1", "Leg day tips?", nil, nil, now, now, "Ana", "ana@example.com")
	mock.ExpectQuery("WHERE h.answer IS NULL ORDER BY h.created_at ASC").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM help_orders h`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	orders, total, err := repo.List(context.Background(), models.HelpOrderFilter{UnansweredOnly: true})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 1, total)
	assert.False(t, orders[0].Answered())
	assert.Equal(t, "Ana", orders[0].Detail().Student.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpOrderRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHelpOrderRepository(db)

	mock.ExpectQuery(`WHERE h.student_id = \$1 ORDER BY h.created_at ASC`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "question", "answer", "answer_at", "created_at", "updated_at", "student_name", "student_email"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM help_orders h`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	orders, total, err := repo.List(context.Background(), models.HelpOrderFilter{StudentID: "s1"})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpOrderRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHelpOrderRepository(db)

	mock.ExpectExec("INSERT INTO help_orders").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	order := &models.HelpOrder{StudentID: "s1", Question: "Leg day tips?"}
	err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpOrderRepositoryAnswer(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewHelpOrderRepository(db)

	answerAt := time.Now()
	mock.ExpectExec("UPDATE help_orders SET answer").
		WithArgs("h1", "Squats.", answerAt, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Answer(context.Background(), "h1", "Squats.", answerAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}
