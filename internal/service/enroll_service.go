package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/notification"
	"github.com/gympoint/gympoint-api/internal/period"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
	"github.com/gympoint/gympoint-api/pkg/export"
)

// exportBatchSize bounds the per-query fetch while paging through the full
// active-enrollment set for exports.
const exportBatchSize = 500

type enrollRepository interface {
	ListActive(ctx context.Context, page, pageSize int) ([]models.EnrollRow, int, error)
	FindByID(ctx context.Context, id string) (*models.Enroll, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollRow, error)
	FindEligibleByStudent(ctx context.Context, studentID string, pickLatest bool) (*models.Enroll, error)
	CountByStudent(ctx context.Context, studentID string) (int, error)
	Create(ctx context.Context, enroll *models.Enroll) error
	Update(ctx context.Context, enroll *models.Enroll) error
	Revoke(ctx context.Context, id string) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type planReader interface {
	FindByID(ctx context.Context, id string) (*models.Plan, error)
}

type enrollmentNotifier interface {
	NotifyEnrollment(payload notification.EnrollmentMail)
}

// CreateEnrollRequest describes enrollment creation payload.
type CreateEnrollRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	PlanID    string    `json:"plan_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
}

// AmendEnrollRequest describes the re-enrollment payload. The period is
// recomputed from the new plan and start date, discarding the old one.
type AmendEnrollRequest struct {
	PlanID    string    `json:"plan_id" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
}

// EnrollServiceConfig carries tuning for the enrollment workflows.
type EnrollServiceConfig struct {
	PageSize int
	// PickLatest selects the latest-created dated enrollment for the
	// eligibility check instead of the earliest-created one.
	PickLatest bool
}

// EnrollService orchestrates the enrollment lifecycle.
type EnrollService struct {
	repo      enrollRepository
	students  studentReader
	plans     planReader
	notifier  enrollmentNotifier
	cfg       EnrollServiceConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollService constructs EnrollService.
func NewEnrollService(repo enrollRepository, students studentReader, plans planReader, notifier enrollmentNotifier, cfg EnrollServiceConfig, validate *validator.Validate, logger *zap.Logger) *EnrollService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollService{repo: repo, students: students, plans: plans, notifier: notifier, cfg: cfg, validator: validate, logger: logger}
}

// List returns active enrollments joined with student and plan summaries.
func (s *EnrollService) List(ctx context.Context, page int) ([]models.EnrollDetail, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	rows, total, err := s.repo.ListActive(ctx, page, s.cfg.PageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolls")
	}
	details := make([]models.EnrollDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.Detail())
	}
	return details, models.NewPagination(page, s.cfg.PageSize, total), nil
}

// Create enrolls a student in a plan, freezing the plan price and deriving
// the validity window from the plan duration. A confirmation mail job is
// queued after the write; its failure never affects the result.
func (s *EnrollService) Create(ctx context.Context, req CreateEnrollRequest) (*models.EnrollDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	startDate, endDate, err := period.Compute(req.StartDate, plan.Duration)
	if err != nil {
		return nil, err
	}

	enroll := &models.Enroll{
		StudentID: req.StudentID,
		PlanID:    req.PlanID,
		StartDate: &startDate,
		EndDate:   &endDate,
		Price:     plan.Price,
	}
	if err := s.repo.Create(ctx, enroll); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enroll")
	}

	row, err := s.repo.FindDetailByID(ctx, enroll.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enroll detail")
	}
	detail := row.Detail()

	s.notifier.NotifyEnrollment(notification.EnrollmentMail{
		StudentName:  detail.Student.Name,
		StudentEmail: detail.Student.Email,
		PlanTitle:    detail.Plan.Title,
		StartDate:    startDate,
		EndDate:      endDate,
		Price:        enroll.Price,
	})

	return &detail, nil
}

// ExportActive assembles the full active-enrollment set as a tabular
// dataset for CSV or PDF rendering.
func (s *EnrollService) ExportActive(ctx context.Context) (export.Dataset, error) {
	dataset := export.Dataset{
		Headers: []string{"Student", "Email", "Plan", "Start", "End", "Price"},
	}
	for page := 1; ; page++ {
		rows, total, err := s.repo.ListActive(ctx, page, exportBatchSize)
		if err != nil {
			return export.Dataset{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolls")
		}
		for _, row := range rows {
			detail := row.Detail()
			record := map[string]string{
				"Student": detail.Student.Name,
				"Email":   detail.Student.Email,
				"Plan":    detail.Plan.Title,
				"Price":   fmt.Sprintf("%.2f", detail.Price),
			}
			if detail.StartDate != nil {
				record["Start"] = detail.StartDate.Format("2006-01-02")
			}
			if detail.EndDate != nil {
				record["End"] = detail.EndDate.Format("2006-01-02")
			}
			dataset.Rows = append(dataset.Rows, record)
		}
		if len(rows) < exportBatchSize || page*exportBatchSize >= total {
			break
		}
	}
	return dataset, nil
}

// Amend re-enrolls onto a (possibly different) plan. The period and price
// are recomputed from the new plan; prior dates are overwritten.
func (s *EnrollService) Amend(ctx context.Context, id string, req AmendEnrollRequest) (*models.EnrollDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	enroll, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrEnrollNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enroll")
	}
	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}

	startDate, endDate, err := period.Compute(req.StartDate, plan.Duration)
	if err != nil {
		return nil, err
	}

	enroll.PlanID = plan.ID
	enroll.StartDate = &startDate
	enroll.EndDate = &endDate
	enroll.Price = plan.Price
	if err := s.repo.Update(ctx, enroll); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enroll")
	}

	row, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enroll detail")
	}
	detail := row.Detail()
	return &detail, nil
}

// Revoke nulls the enrollment's validity dates while keeping the row for
// audit. Revoking an already-revoked enrollment is a no-op, not an error.
func (s *EnrollService) Revoke(ctx context.Context, id string) (*models.Enroll, error) {
	enroll, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrEnrollNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enroll")
	}
	if err := s.repo.Revoke(ctx, id); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke enroll")
	}
	enroll.StartDate = nil
	enroll.EndDate = nil
	return enroll, nil
}

// IsActivelyEnrolled reports whether the student holds an enrollment whose
// validity window covers now. A student with no enrollment rows at all and
// one whose enrollment expired are both inactive; the distinction is only
// logged.
func (s *EnrollService) IsActivelyEnrolled(ctx context.Context, studentID string, now time.Time) (bool, error) {
	enroll, err := s.repo.FindEligibleByStudent(ctx, studentID, s.cfg.PickLatest)
	if err != nil {
		if err != sql.ErrNoRows {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enroll")
		}
		total, countErr := s.repo.CountByStudent(ctx, studentID)
		if countErr != nil {
			return false, appErrors.Wrap(countErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrolls")
		}
		if total == 0 {
			s.logger.Debug("student has no enrollment records", zap.String("student_id", studentID))
		} else {
			s.logger.Debug("student has only revoked enrollments", zap.String("student_id", studentID))
		}
		return false, nil
	}
	return enroll.ActiveAt(now), nil
}
