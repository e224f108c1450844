package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type studentRepoStub struct {
	students map[string]*models.Student
}

func newStudentRepoStub() *studentRepoStub {
	return &studentRepoStub{students: make(map[string]*models.Student)}
}

func (r *studentRepoStub) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var result []models.Student
	for _, student := range r.students {
		result = append(result, *student)
	}
	return result, len(result), nil
}

func (r *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := r.students[id]; ok {
		copy := *student
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *studentRepoStub) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	for _, student := range r.students {
		if student.Email == email && student.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *studentRepoStub) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = fmt.Sprintf("student-%d", len(r.students)+1)
	}
	copy := *student
	r.students[student.ID] = &copy
	return nil
}

func (r *studentRepoStub) Update(ctx context.Context, student *models.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *student
	r.students[student.ID] = &copy
	return nil
}

func validCreateStudent() CreateStudentRequest {
	return CreateStudentRequest{
		Name:   "Ana Souza",
		Email:  "ana@example.com",
		Age:    23,
		Weight: 60.5,
		Height: 1.68,
	}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "ana@example.com", student.Email)
}

func TestStudentServiceCreateDuplicateEmail(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validCreateStudent())
	require.ErrorIs(t, err, appErrors.ErrStudentExists)
	assert.Equal(t, "Student already exists", appErrors.FromError(err).Message)
}

func TestStudentServiceCreateValidation(t *testing.T) {
	svc := NewStudentService(newStudentRepoStub(), nil, nil)

	req := validCreateStudent()
	req.Email = "not-an-email"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "Validation fails", appErrors.FromError(err).Message)
}

func TestStudentServiceUpdatePartial(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)

	weight := 62.0
	updated, err := svc.Update(context.Background(), student.ID, UpdateStudentRequest{Weight: &weight})
	require.NoError(t, err)
	assert.Equal(t, 62.0, updated.Weight)
	assert.Equal(t, "Ana Souza", updated.Name)
}

func TestStudentServiceUpdateEmailConflict(t *testing.T) {
	repo := newStudentRepoStub()
	svc := NewStudentService(repo, nil, nil)

	first, err := svc.Create(context.Background(), validCreateStudent())
	require.NoError(t, err)

	second := validCreateStudent()
	second.Email = "other@example.com"
	other, err := svc.Create(context.Background(), second)
	require.NoError(t, err)

	email := first.Email
	_, err = svc.Update(context.Background(), other.ID, UpdateStudentRequest{Email: &email})
	require.ErrorIs(t, err, appErrors.ErrStudentExists)
}

func TestStudentServiceUpdateUnknown(t *testing.T) {
	svc := NewStudentService(newStudentRepoStub(), nil, nil)

	name := "x"
	_, err := svc.Update(context.Background(), "missing", UpdateStudentRequest{Name: &name})
	require.ErrorIs(t, err, appErrors.ErrStudentNotFound)
	assert.Equal(t, "Student does not exists", appErrors.FromError(err).Message)
}
