package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	"github.com/gympoint/gympoint-api/internal/notification"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type helpOrderRepository interface {
	List(ctx context.Context, filter models.HelpOrderFilter) ([]models.HelpOrderRow, int, error)
	FindByID(ctx context.Context, id string) (*models.HelpOrder, error)
	FindDetailByID(ctx context.Context, id string) (*models.HelpOrderRow, error)
	Create(ctx context.Context, order *models.HelpOrder) error
	Answer(ctx context.Context, id, answer string, answerAt time.Time) error
}

type enrollmentChecker interface {
	IsActivelyEnrolled(ctx context.Context, studentID string, now time.Time) (bool, error)
}

type helpOrderNotifier interface {
	NotifyHelpOrderAnswered(payload notification.HelpOrderMail)
}

// SubmitHelpOrderRequest describes a student question payload.
type SubmitHelpOrderRequest struct {
	Question string `json:"question" validate:"required"`
}

// AnswerHelpOrderRequest describes the staff reply payload.
type AnswerHelpOrderRequest struct {
	Answer string `json:"answer" validate:"required"`
}

// HelpOrderService manages the question/answer workflow between students
// and staff. Submitting requires an active enrollment; answering queues a
// mail back to the student.
type HelpOrderService struct {
	repo       helpOrderRepository
	students   studentReader
	enrollment enrollmentChecker
	notifier   helpOrderNotifier
	pageSize   int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewHelpOrderService constructs HelpOrderService.
func NewHelpOrderService(repo helpOrderRepository, students studentReader, enrollment enrollmentChecker, notifier helpOrderNotifier, pageSize int, validate *validator.Validate, logger *zap.Logger) *HelpOrderService {
	if pageSize <= 0 {
		pageSize = 20
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HelpOrderService{repo: repo, students: students, enrollment: enrollment, notifier: notifier, pageSize: pageSize, validator: validate, logger: logger}
}

// ListByStudent returns the student's own help orders, answered or not.
func (s *HelpOrderService) ListByStudent(ctx context.Context, studentID string, page int) ([]models.HelpOrderDetail, *models.Pagination, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.ErrStudentNotFound
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.list(ctx, models.HelpOrderFilter{StudentID: studentID, Page: page, PageSize: s.pageSize})
}

// ListUnanswered returns the staff work queue of pending questions.
func (s *HelpOrderService) ListUnanswered(ctx context.Context, page int) ([]models.HelpOrderDetail, *models.Pagination, error) {
	return s.list(ctx, models.HelpOrderFilter{UnansweredOnly: true, Page: page, PageSize: s.pageSize})
}

func (s *HelpOrderService) list(ctx context.Context, filter models.HelpOrderFilter) ([]models.HelpOrderDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list help orders")
	}
	details := make([]models.HelpOrderDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, row.Detail())
	}
	return details, models.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Submit files a new question. Only students with an active enrollment may
// ask; the gate is evaluated at submission time only, so a question outlives
// the enrollment that allowed it.
func (s *HelpOrderService) Submit(ctx context.Context, studentID string, req SubmitHelpOrderRequest) (*models.HelpOrder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	active, err := s.enrollment.IsActivelyEnrolled(ctx, studentID, time.Now())
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, appErrors.ErrNotEnrolled
	}

	order := &models.HelpOrder{StudentID: studentID, Question: req.Question}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create help order")
	}
	return order, nil
}

// Answer records the staff reply and queues the notification mail. Answering
// an already-answered order overwrites the previous reply.
func (s *HelpOrderService) Answer(ctx context.Context, id string, req AnswerHelpOrderRequest) (*models.HelpOrderDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrHelpOrderNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load help order")
	}

	answerAt := time.Now().UTC()
	if err := s.repo.Answer(ctx, id, req.Answer, answerAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to answer help order")
	}

	row, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load help order detail")
	}
	detail := row.Detail()

	s.notifier.NotifyHelpOrderAnswered(notification.HelpOrderMail{
		StudentName:  detail.Student.Name,
		StudentEmail: detail.Student.Email,
		Question:     detail.Question,
		Answer:       req.Answer,
		AnswerAt:     answerAt,
	})

	return &detail, nil
}
