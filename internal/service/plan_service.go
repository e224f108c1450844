package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type planRepository interface {
	List(ctx context.Context, page, pageSize int) ([]models.Plan, int, error)
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	Create(ctx context.Context, plan *models.Plan) error
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id string) error
}

// CreatePlanRequest describes plan creation payload.
type CreatePlanRequest struct {
	Title    string  `json:"title" validate:"required"`
	Duration int     `json:"duration" validate:"required,gte=1"`
	Price    float64 `json:"price" validate:"required,gt=0"`
}

// UpdatePlanRequest describes a partial plan update.
type UpdatePlanRequest struct {
	Title    *string  `json:"title" validate:"omitempty,min=1"`
	Duration *int     `json:"duration" validate:"omitempty,gte=1"`
	Price    *float64 `json:"price" validate:"omitempty,gt=0"`
}

type planCachePage struct {
	Plans []models.Plan `json:"plans"`
	Total int           `json:"total"`
}

// PlanService manages membership plans. The plan list is reference data
// read on every enrollment screen, so it is served through the cache.
type PlanService struct {
	repo      planRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlanService constructs PlanService.
func NewPlanService(repo planRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PlanService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns plans with pagination metadata.
func (s *PlanService) List(ctx context.Context, page, pageSize int) ([]models.Plan, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	key := fmt.Sprintf("plans:list:%d:%d", page, pageSize)
	var cached planCachePage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached.Plans, models.NewPagination(page, pageSize, cached.Total), nil
	}

	plans, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}

	_ = s.cache.Set(ctx, key, planCachePage{Plans: plans, Total: total}, 0)

	return plans, models.NewPagination(page, pageSize, total), nil
}

// Create adds a new membership plan.
func (s *PlanService) Create(ctx context.Context, req CreatePlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	plan := &models.Plan{Title: req.Title, Duration: req.Duration, Price: req.Price}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
	}
	_ = s.cache.Invalidate(ctx, "plans:*")
	return plan, nil
}

// Update modifies a plan. Existing enrollments are unaffected because they
// froze the plan's price and duration at creation.
func (s *PlanService) Update(ctx context.Context, id string, req UpdatePlanRequest) (*models.Plan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if req.Title != nil {
		plan.Title = *req.Title
	}
	if req.Duration != nil {
		plan.Duration = *req.Duration
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update plan")
	}
	_ = s.cache.Invalidate(ctx, "plans:*")
	return plan, nil
}

// Delete removes a plan.
func (s *PlanService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.ErrPlanNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	_ = s.cache.Invalidate(ctx, "plans:*")
	return nil
}
