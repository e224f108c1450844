package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type checkinRepository interface {
	ListByStudent(ctx context.Context, studentID string, page, pageSize int) ([]models.CheckinRecord, int, error)
	CountInWindow(ctx context.Context, studentID string, from, to time.Time) (int, error)
	Create(ctx context.Context, checkin *models.Checkin) error
}

// CheckinServiceConfig carries the rolling-window quota parameters.
type CheckinServiceConfig struct {
	Window   time.Duration
	Limit    int
	PageSize int
}

// CheckinService registers gym attendance and enforces the rolling-window
// quota.
type CheckinService struct {
	repo     checkinRepository
	students studentReader
	cfg      CheckinServiceConfig
	logger   *zap.Logger
}

// NewCheckinService constructs CheckinService.
func NewCheckinService(repo checkinRepository, students studentReader, cfg CheckinServiceConfig, logger *zap.Logger) *CheckinService {
	if cfg.Window <= 0 {
		cfg.Window = 7 * 24 * time.Hour
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 5
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckinService{repo: repo, students: students, cfg: cfg, logger: logger}
}

// List returns the student's checkin history, newest first.
func (s *CheckinService) List(ctx context.Context, studentID string, page int) (*models.CheckinPage, error) {
	if page < 1 {
		page = 1
	}
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	records, total, err := s.repo.ListByStudent(ctx, studentID, page, s.cfg.PageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list checkins")
	}
	rows := make([]models.CheckinItem, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.Item())
	}
	pagination := models.NewPagination(page, s.cfg.PageSize, total)
	return &models.CheckinPage{
		Offset:     pagination.Offset,
		TotalPages: pagination.TotalPages,
		Rows:       rows,
	}, nil
}

// Register appends a checkin unless the student already used up the quota
// inside the rolling window ending at now.
//
// The count and the insert are not atomic; two concurrent checkins at the
// boundary can both pass the count. The quota is a courtesy limit, not a
// billing invariant, so the window query stays a plain read.
func (s *CheckinService) Register(ctx context.Context, studentID string, now time.Time) (*models.Checkin, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrStudentNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	from := now.Add(-s.cfg.Window)
	count, err := s.repo.CountInWindow(ctx, studentID, from, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count checkins")
	}
	if count >= s.cfg.Limit {
		s.logger.Debug("checkin quota reached",
			zap.String("student_id", studentID),
			zap.Int("count", count),
			zap.Int("limit", s.cfg.Limit))
		return nil, appErrors.ErrCheckinLimit
	}

	checkin := &models.Checkin{StudentID: studentID, CreatedAt: now.UTC()}
	if err := s.repo.Create(ctx, checkin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create checkin")
	}
	return checkin, nil
}
