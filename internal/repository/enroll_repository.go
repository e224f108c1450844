package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/models"
)

// EnrollRepository handles persistence of enrollments.
type EnrollRepository struct {
	db *sqlx.DB
}

// NewEnrollRepository constructs the repository.
func NewEnrollRepository(db *sqlx.DB) *EnrollRepository {
	return &EnrollRepository{db: db}
}

const enrollJoin = `FROM enrolls e
LEFT JOIN students s ON s.id = e.student_id
LEFT JOIN plans p ON p.id = e.plan_id`

const enrollColumns = `e.id, e.student_id, e.plan_id, e.start_date, e.end_date, e.price, e.created_at, e.updated_at,
        s.name AS student_name, s.email AS student_email, p.title AS plan_title, p.duration AS plan_duration, p.price AS plan_price`

// ListActive returns enrollments whose dates are set, joined with student
// and plan data, in creation order.
func (r *EnrollRepository) ListActive(ctx context.Context, page, pageSize int) ([]models.EnrollRow, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const clause = " WHERE e.start_date IS NOT NULL AND e.end_date IS NOT NULL"

	query := fmt.Sprintf(`SELECT %s %s ORDER BY e.created_at ASC LIMIT %d OFFSET %d`,
		enrollColumns, enrollJoin+clause, pageSize, offset)

	var rows []models.EnrollRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, 0, fmt.Errorf("list enrolls: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+enrollJoin+clause); err != nil {
		return nil, 0, fmt.Errorf("count enrolls: %w", err)
	}
	return rows, total, nil
}

// FindByID returns an enrollment by its ID.
func (r *EnrollRepository) FindByID(ctx context.Context, id string) (*models.Enroll, error) {
	const query = `SELECT id, student_id, plan_id, start_date, end_date, price, created_at, updated_at FROM enrolls WHERE id = $1`
	var enroll models.Enroll
	if err := r.db.GetContext(ctx, &enroll, query, id); err != nil {
		return nil, err
	}
	return &enroll, nil
}

// FindDetailByID returns an enrollment joined with student and plan info.
func (r *EnrollRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollRow, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE e.id = $1`, enrollColumns, enrollJoin)
	var row models.EnrollRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindEligibleByStudent returns the student's enrollment used for the
// eligibility check: the earliest-created row with both dates set, or the
// latest-created when pickLatest is true. Returns sql.ErrNoRows when the
// student has no dated enrollment.
func (r *EnrollRepository) FindEligibleByStudent(ctx context.Context, studentID string, pickLatest bool) (*models.Enroll, error) {
	order := "ASC"
	if pickLatest {
		order = "DESC"
	}
	query := fmt.Sprintf(`SELECT id, student_id, plan_id, start_date, end_date, price, created_at, updated_at
        FROM enrolls WHERE student_id = $1 AND start_date IS NOT NULL AND end_date IS NOT NULL
        ORDER BY created_at %s LIMIT 1`, order)
	var enroll models.Enroll
	if err := r.db.GetContext(ctx, &enroll, query, studentID); err != nil {
		return nil, err
	}
	return &enroll, nil
}

// CountByStudent returns the number of enrollment rows a student has,
// revoked ones included.
func (r *EnrollRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM enrolls WHERE student_id = $1", studentID); err != nil {
		return 0, fmt.Errorf("count student enrolls: %w", err)
	}
	return total, nil
}

// Create persists a new enrollment record.
func (r *EnrollRepository) Create(ctx context.Context, enroll *models.Enroll) error {
	if enroll.ID == "" {
		enroll.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enroll.CreatedAt.IsZero() {
		enroll.CreatedAt = now
	}
	enroll.UpdatedAt = now
	const query = `INSERT INTO enrolls (id, student_id, plan_id, start_date, end_date, price, created_at, updated_at)
        VALUES (:id, :student_id, :plan_id, :start_date, :end_date, :price, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enroll); err != nil {
		return fmt.Errorf("create enroll: %w", err)
	}
	return nil
}

// Update overwrites plan, period and price on an existing enrollment.
// Last write wins; there is no version check.
func (r *EnrollRepository) Update(ctx context.Context, enroll *models.Enroll) error {
	enroll.UpdatedAt = time.Now().UTC()
	const query = `UPDATE enrolls SET plan_id = :plan_id, start_date = :start_date, end_date = :end_date, price = :price, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, enroll); err != nil {
		return fmt.Errorf("update enroll: %w", err)
	}
	return nil
}

// Revoke nulls the validity dates, keeping the row for audit.
func (r *EnrollRepository) Revoke(ctx context.Context, id string) error {
	const query = `UPDATE enrolls SET start_date = NULL, end_date = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke enroll: %w", err)
	}
	return nil
}
