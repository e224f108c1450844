package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympoint/gympoint-api/internal/models"
	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

type planRepoStub struct {
	plans     map[string]*models.Plan
	listCalls int
}

func newPlanRepoStub() *planRepoStub {
	return &planRepoStub{plans: make(map[string]*models.Plan)}
}

func (r *planRepoStub) List(ctx context.Context, page, pageSize int) ([]models.Plan, int, error) {
	r.listCalls++
	var result []models.Plan
	for _, plan := range r.plans {
		result = append(result, *plan)
	}
	return result, len(result), nil
}

func (r *planRepoStub) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	if plan, ok := r.plans[id]; ok {
		copy := *plan
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (r *planRepoStub) Create(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = fmt.Sprintf("plan-%d", len(r.plans)+1)
	}
	copy := *plan
	r.plans[plan.ID] = &copy
	return nil
}

func (r *planRepoStub) Update(ctx context.Context, plan *models.Plan) error {
	if _, ok := r.plans[plan.ID]; !ok {
		return sql.ErrNoRows
	}
	copy := *plan
	r.plans[plan.ID] = &copy
	return nil
}

func (r *planRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.plans[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.plans, id)
	return nil
}

type cacheRepoStub struct {
	entries map[string][]byte
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: make(map[string][]byte)}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.entries = make(map[string][]byte)
	return nil
}

func TestPlanServiceCreateAndList(t *testing.T) {
	repo := newPlanRepoStub()
	svc := NewPlanService(repo, nil, nil, nil)

	plan, err := svc.Create(context.Background(), CreatePlanRequest{Title: "Gold", Duration: 3, Price: 109})
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)

	plans, pagination, err := svc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Len(t, plans, 1)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestPlanServiceCreateValidation(t *testing.T) {
	svc := NewPlanService(newPlanRepoStub(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreatePlanRequest{Title: "Free", Duration: 1})
	require.Error(t, err)
	assert.Equal(t, "Validation fails", appErrors.FromError(err).Message)
}

func TestPlanServiceListUsesCache(t *testing.T) {
	repo := newPlanRepoStub()
	repo.plans["p1"] = &models.Plan{ID: "p1", Title: "Gold", Duration: 3, Price: 109}
	cacheSvc := NewCacheService(newCacheRepoStub(), nil, time.Minute, nil, true)
	svc := NewPlanService(repo, cacheSvc, nil, nil)

	_, _, err := svc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)
}

func TestPlanServiceUpdateInvalidatesCache(t *testing.T) {
	repo := newPlanRepoStub()
	repo.plans["p1"] = &models.Plan{ID: "p1", Title: "Gold", Duration: 3, Price: 109}
	cacheSvc := NewCacheService(newCacheRepoStub(), nil, time.Minute, nil, true)
	svc := NewPlanService(repo, cacheSvc, nil, nil)

	_, _, err := svc.List(context.Background(), 1, 20)
	require.NoError(t, err)

	price := 129.0
	_, err = svc.Update(context.Background(), "p1", UpdatePlanRequest{Price: &price})
	require.NoError(t, err)

	plans, _, err := svc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 129.0, plans[0].Price)
	assert.Equal(t, 2, repo.listCalls)
}

func TestPlanServiceUpdateUnknown(t *testing.T) {
	svc := NewPlanService(newPlanRepoStub(), nil, nil, nil)

	title := "x"
	_, err := svc.Update(context.Background(), "missing", UpdatePlanRequest{Title: &title})
	require.ErrorIs(t, err, appErrors.ErrPlanNotFound)
	assert.Equal(t, "Plan does not exists", appErrors.FromError(err).Message)
}

func TestPlanServiceDelete(t *testing.T) {
	repo := newPlanRepoStub()
	repo.plans["p1"] = &models.Plan{ID: "p1", Title: "Gold", Duration: 3, Price: 109}
	svc := NewPlanService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "p1"))
	assert.Empty(t, repo.plans)

	err := svc.Delete(context.Background(), "p1")
	require.ErrorIs(t, err, appErrors.ErrPlanNotFound)
}
