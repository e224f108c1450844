package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/models"
)

// CheckinRepository handles persistence of the append-only checkin log.
type CheckinRepository struct {
	db *sqlx.DB
}

// NewCheckinRepository constructs the repository.
func NewCheckinRepository(db *sqlx.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

// ListByStudent returns a student's checkins, newest first.
func (r *CheckinRepository) ListByStudent(ctx context.Context, studentID string, page, pageSize int) ([]models.CheckinRecord, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`SELECT c.id, c.student_id, c.created_at, s.name AS student_name, s.email AS student_email
        FROM checkins c
        LEFT JOIN students s ON s.id = c.student_id
        WHERE c.student_id = $1
        ORDER BY c.created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)

	var records []models.CheckinRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, 0, fmt.Errorf("list checkins: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM checkins WHERE student_id = $1", studentID); err != nil {
		return nil, 0, fmt.Errorf("count checkins: %w", err)
	}
	return records, total, nil
}

// CountInWindow counts a student's checkins inside (from, to]. The lower
// bound is exclusive so a checkin exactly one window old no longer counts.
func (r *CheckinRepository) CountInWindow(ctx context.Context, studentID string, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM checkins WHERE student_id = $1 AND created_at > $2 AND created_at <= $3`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentID, from, to); err != nil {
		return 0, fmt.Errorf("count checkins in window: %w", err)
	}
	return total, nil
}

// Create appends a checkin. Rows are immutable once written.
func (r *CheckinRepository) Create(ctx context.Context, checkin *models.Checkin) error {
	if checkin.ID == "" {
		checkin.ID = uuid.NewString()
	}
	if checkin.CreatedAt.IsZero() {
		checkin.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO checkins (id, student_id, created_at) VALUES (:id, :student_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, checkin); err != nil {
		return fmt.Errorf("create checkin: %w", err)
	}
	return nil
}
