package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/notification"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type enrollRepoStub struct {
	enrolls    map[string]*models.Enroll
	students   map[string]*models.Student
	plans      map[string]*models.Plan
	pickLatest bool
}

func newEnrollRepoStub() *enrollRepoStub {
	return &enrollRepoStub{
		enrolls:  make(map[string]*models.Enroll),
		students: make(map[string]*models.Student),
		plans:    make(map[string]*models.Plan),
	}
}

func (r *enrollRepoStub) ListActive(ctx context.Context, page, pageSize int) ([]models.EnrollRow, int, error) {
	var rows []models.EnrollRow
	for _, enroll := range r.enrolls {
		if enroll.StartDate == nil || enroll.EndDate == nil {
			continue
		}
		rows = append(rows, r.row(enroll))
	}
	return rows, len(rows), nil
}

func (r *enrollRepoStub) row(enroll *models.Enroll) models.EnrollRow {
	row := models.EnrollRow{Enroll: *enroll}
	if student, ok := r.students[enroll.StudentID]; ok {
		row.StudentName = student.Name
		row.StudentEmail = student.Email
	}
	if plan, ok := r.plans[enroll.PlanID]; ok {
		row.PlanTitle = plan.Title
		row.PlanDuration = plan.Duration
		row.PlanPrice = plan.Price
	}
	return row
}

func (r *enrollRepoStub) FindByID(ctx context.Context, id string) (*models.Enroll, error) {
	if enroll, ok := r.enrolls[id]; ok {
		copy := *enroll
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *enrollRepoStub) FindDetailByID(ctx context.Context, id string) (*models.EnrollRow, error) {
	if enroll, ok := r.enrolls[id]; ok {
		row := r.row(enroll)
		return &row, nil
	}
	return nil, sql.ErrNoRows
}

func (r *enrollRepoStub) FindEligibleByStudent(ctx context.Context, studentID string, pickLatest bool) (*models.Enroll, error) {
	r.pickLatest = pickLatest
	var eligible *models.Enroll
	for _, enroll := range r.enrolls {
		if enroll.StudentID != studentID || enroll.StartDate == nil || enroll.EndDate == nil {
			continue
		}
		if eligible == nil {
			eligible = enroll
			continue
		}
		if pickLatest && enroll.CreatedAt.After(eligible.CreatedAt) {
			eligible = enroll
		}
		if !pickLatest && enroll.CreatedAt.Before(eligible.CreatedAt) {
			eligible = enroll
		}
	}
	if eligible == nil {
		return nil, sql.ErrNoRows
	}
	copy := *eligible
	return &copy, nil
}

func (r *enrollRepoStub) CountByStudent(ctx context.Context, studentID string) (int, error) {
	count := 0
	for _, enroll := range r.enrolls {
		if enroll.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (r *enrollRepoStub) Create(ctx context.Context, enroll *models.Enroll) error {
	if enroll.ID == "" {
		enroll.ID = fmt.Sprintf("enroll-%d", len(r.enrolls)+1)
	}
	if enroll.CreatedAt.IsZero() {
		enroll.CreatedAt = time.Now()
	}
	copy := *enroll
	r.enrolls[enroll.ID] = &copy
	return nil
}

func (r *enrollRepoStub) Update(ctx context.Context, enroll *models.Enroll) error {
	if _, ok := r.enrolls[enroll.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *enroll
	r.enrolls[enroll.ID] = &copy
	return nil
}

func (r *enrollRepoStub) Revoke(ctx context.Context, id string) error {
	enroll, ok := r.enrolls[id]
	if !ok {
		return sql.ErrNoRows
	}
	enroll.StartDate = nil
	enroll.EndDate = nil
	return nil
}

func (r *enrollRepoStub) FindStudent(ctx context.Context, id string) (*models.Student, error) {
	if student, ok := r.students[id]; ok {
		return student, nil
	}
	return nil, sql.ErrNoRows
}

func (r *enrollRepoStub) FindPlan(ctx context.Context, id string) (*models.Plan, error) {
	if plan, ok := r.plans[id]; ok {
		return plan, nil
	}
	return nil, sql.ErrNoRows
}

type studentReaderStub struct{ repo *enrollRepoStub }

func (s studentReaderStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return s.repo.FindStudent(ctx, id)
}

type planReaderStub struct{ repo *enrollRepoStub }

func (p planReaderStub) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	return p.repo.FindPlan(ctx, id)
}

type notifierStub struct {
	enrollments []notification.EnrollmentMail
	helpOrders  []notification.HelpOrderMail
}

func (n *notifierStub) NotifyEnrollment(payload notification.EnrollmentMail) {
	n.enrollments = append(n.enrollments, payload)
}

func (n *notifierStub) NotifyHelpOrderAnswered(payload notification.HelpOrderMail) {
	n.helpOrders = append(n.helpOrders, payload)
}

func newEnrollService(repo *enrollRepoStub, notifier *notifierStub, cfg EnrollServiceConfig) *EnrollService {
	return NewEnrollService(repo, studentReaderStub{repo}, planReaderStub{repo}, notifier, cfg, nil, nil)
}

func TestEnrollServiceCreateComputesPeriodAndNotifies(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.students["s1"] = &models.Student{ID: "s1", Name: "Ana", Email: "ana@example.com"}
	repo.plans["p1"] = &models.Plan{ID: "p1", Title: "Gold", Duration: 3, Price: 109}
	notifier := &notifierStub{}
	svc := newEnrollService(repo, notifier, EnrollServiceConfig{})

	start := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	detail, err := svc.Create(context.Background(), CreateEnrollRequest{
		StudentID: "s1",
		PlanID:    "p1",
		StartDate: start,
	})
	require.NoError(t, err)

	require.NotNil(t, detail.StartDate)
	require.NotNil(t, detail.EndDate)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), *detail.StartDate)
	assert.Equal(t, 2024, detail.EndDate.Year())
	assert.Equal(t, time.April, detail.EndDate.Month())
	assert.Equal(t, 15, detail.EndDate.Day())
	assert.Equal(t, 109.0, detail.Price)
	assert.Equal(t, "Gold", detail.Plan.Title)

	require.Len(t, notifier.enrollments, 1)
	assert.Equal(t, "ana@example.com", notifier.enrollments[0].StudentEmail)
	assert.Equal(t, "Gold", notifier.enrollments[0].PlanTitle)
}

func TestEnrollServiceCreateFreezesPlanPrice(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.students["s1"] = &models.Student{ID: "s1", Name: "Ana"}
	repo.plans["p1"] = &models.Plan{ID: "p1", Title: "Start", Duration: 1, Price: 129}
	svc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{})

	detail, err := svc.Create(context.Background(), CreateEnrollRequest{
		StudentID: "s1", PlanID: "p1", StartDate: time.Now(),
	})
	require.NoError(t, err)

	repo.plans["p1"].Price = 999

	stored, err := repo.FindByID(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.Equal(t, 129.0, stored.Price)
}

func TestEnrollServiceCreateUnknownReferences(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.students["s1"] = &models.Student{ID: "s1"}
	svc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{})

	_, err := svc.Create(context.Background(), CreateEnrollRequest{
		StudentID: "missing", PlanID: "p1", StartDate: time.Now(),
	})
	require.ErrorIs(t, err, appErrors.ErrStudentNotFound)

	_, err = svc.Create(context.Background(), CreateEnrollRequest{
		StudentID: "s1", PlanID: "missing", StartDate: time.Now(),
	})
	require.ErrorIs(t, err, appErrors.ErrPlanNotFound)
}

func TestEnrollServiceCreateValidation(t *testing.T) {
	svc := newEnrollService(newEnrollRepoStub(), &notifierStub{}, EnrollServiceConfig{})

	_, err := svc.Create(context.Background(), CreateEnrollRequest{PlanID: "p1"})
	require.Error(t, err)
	assert.Equal(t, "Validation fails", appErrors.FromError(err).Message)
}

func TestEnrollServiceAmendRecomputesPeriod(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.students["s1"] = &models.Student{ID: "s1", Name: "Ana"}
	repo.plans["p1"] = &models.Plan{ID: "p1", Title: "Start", Duration: 1, Price: 129}
	repo.plans["p3"] = &models.Plan{ID: "p3", Title: "Diamond", Duration: 6, Price: 89}
	svc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{})

	created, err := svc.Create(context.Background(), CreateEnrollRequest{
		StudentID: "s1", PlanID: "p1", StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	amended, err := svc.Amend(context.Background(), created.ID, AmendEnrollRequest{
		PlanID: "p3", StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "p3", amended.PlanID)
	assert.Equal(t, 89.0, amended.Price)
	assert.Equal(t, time.December, amended.EndDate.Month())
}

func TestEnrollServiceAmendUnknownEnroll(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.plans["p1"] = &models.Plan{ID: "p1", Duration: 1, Price: 1}
	svc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{})

	_, err := svc.Amend(context.Background(), "missing", AmendEnrollRequest{
		PlanID: "p1", StartDate: time.Now(),
	})
	require.ErrorIs(t, err, appErrors.ErrEnrollNotFound)
}

func TestEnrollServiceRevokeIsIdempotent(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.students["s1"] = &models.Student{ID: "s1"}
	repo.plans["p1"] = &models.Plan{ID: "p1", Duration: 1, Price: 1}
	svc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{})

	created, err := svc.Create(context.Background(), CreateEnrollRequest{
		StudentID: "s1", PlanID: "p1", StartDate: time.Now(),
	})
	require.NoError(t, err)

	revoked, err := svc.Revoke(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, revoked.StartDate)
	assert.Nil(t, revoked.EndDate)

	// Second revoke still succeeds.
	_, err = svc.Revoke(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestEnrollServiceIsActivelyEnrolled(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.students["s1"] = &models.Student{ID: "s1"}
	svc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{})
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	// No enrollment rows at all.
	active, err := svc.IsActivelyEnrolled(context.Background(), "s1", now)
	require.NoError(t, err)
	assert.False(t, active)

	// Expired enrollment.
	past := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := time.Date(2024, 2, 1, 23, 59, 59, 0, time.UTC)
	repo.enrolls["e1"] = &models.Enroll{ID: "e1", StudentID: "s1", StartDate: &past, EndDate: &pastEnd, CreatedAt: past}
	active, err = svc.IsActivelyEnrolled(context.Background(), "s1", now)
	require.NoError(t, err)
	assert.False(t, active)

	// Covering enrollment.
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 9, 1, 23, 59, 59, 0, time.UTC)
	repo.enrolls["e2"] = &models.Enroll{ID: "e2", StudentID: "s1", StartDate: &start, EndDate: &end, CreatedAt: start}

	// The earliest-created dated row still wins the lookup, so the expired
	// one masks the active one unless PickLatest is set.
	active, err = svc.IsActivelyEnrolled(context.Background(), "s1", now)
	require.NoError(t, err)
	assert.False(t, active)

	latestSvc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{PickLatest: true})
	active, err = latestSvc.IsActivelyEnrolled(context.Background(), "s1", now)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestEnrollServiceExportActive(t *testing.T) {
	repo := newEnrollRepoStub()
	repo.students["s1"] = &models.Student{ID: "s1", Name: "Ana", Email: "ana@example.com"}
	repo.plans["p1"] = &models.Plan{ID: "p1", Title: "Gold", Duration: 3, Price: 109}
	svc := newEnrollService(repo, &notifierStub{}, EnrollServiceConfig{})

	_, err := svc.Create(context.Background(), CreateEnrollRequest{
		StudentID: "s1", PlanID: "p1", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	dataset, err := svc.ExportActive(context.Background())
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "Ana", dataset.Rows[0]["Student"])
	assert.Equal(t, "Gold", dataset.Rows[0]["Plan"])
	assert.Equal(t, "2024-01-01", dataset.Rows[0]["Start"])
}
