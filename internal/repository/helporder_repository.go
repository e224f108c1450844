package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gympoint/gympoint-api/internal/models"
)

// HelpOrderRepository handles persistence of help orders.
type HelpOrderRepository struct {
	db *sqlx.DB
}

// NewHelpOrderRepository constructs the repository.
func NewHelpOrderRepository(db *sqlx.DB) *HelpOrderRepository {
	return &HelpOrderRepository{db: db}
}

const helpOrderJoin = `FROM help_orders h
LEFT JOIN students s ON s.id = h.student_id`

const helpOrderColumns = `h.id, h.student_id, h.question, h.answer, h.answer_at, h.created_at, h.updated_at,
        s.name AS student_name, s.email AS student_email`

// List returns help orders matching the filter in creation order.
func (r *HelpOrderRepository) List(ctx context.Context, filter models.HelpOrderFilter) ([]models.HelpOrderRow, int, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("h.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.UnansweredOnly {
		conditions = append(conditions, "h.answer IS NULL")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY h.created_at ASC LIMIT %d OFFSET %d`,
		helpOrderColumns, helpOrderJoin+clause, size, offset)

	var rows []models.HelpOrderRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list help orders: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", helpOrderJoin+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count help orders: %w", err)
	}
	return rows, total, nil
}

// FindByID returns a help order by its ID.
func (r *HelpOrderRepository) FindByID(ctx context.Context, id string) (*models.HelpOrder, error) {
	const query = `SELECT id, student_id, question, answer, answer_at, created_at, updated_at FROM help_orders WHERE id = $1`
	var order models.HelpOrder
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// FindDetailByID returns a help order joined with its student.
func (r *HelpOrderRepository) FindDetailByID(ctx context.Context, id string) (*models.HelpOrderRow, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE h.id = $1`, helpOrderColumns, helpOrderJoin)
	var row models.HelpOrderRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// Create persists a new unanswered help order.
func (r *HelpOrderRepository) Create(ctx context.Context, order *models.HelpOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	const query = `INSERT INTO help_orders (id, student_id, question, answer, answer_at, created_at, updated_at)
        VALUES (:id, :student_id, :question, :answer, :answer_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("create help order: %w", err)
	}
	return nil
}

// Answer records the staff reply.
func (r *HelpOrderRepository) Answer(ctx context.Context, id, answer string, answerAt time.Time) error {
	const query = `UPDATE help_orders SET answer = $2, answer_at = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, answer, answerAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("answer help order: %w", err)
	}
	return nil
}
