package repository

import (
	"context"
	"errors"

	"github.com/notblessy/mealplan-admin/model"
	"gorm.io/gorm"
)

type PlanRepository interface {
	FindAllOpen(ctx context.Context) ([]*model.Plan, error)
	FindAll(ctx context.Context) ([]*model.Plan, error)
	FindByID(ctx context.Context, id uint) (*model.Plan, error)
	Create(ctx context.Context, plan *model.Plan) error
	ClosePlan(ctx context.Context, id uint) error
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) FindAllOpen(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Where("closed = ?", false).
		Order("start_date ASC, id ASC").
		Find(&plans).Error
	return plans, err
}

func (r *planRepository) FindAll(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Order("start_date ASC, id ASC").
		Find(&plans).Error
	return plans, err
}

func (r *planRepository) FindByID(ctx context.Context, id uint) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).First(&plan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error, the caller decides
		}
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) Create(ctx context.Context, plan *model.Plan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

// ClosePlan is idempotent: closing a closed or unknown plan updates no rows
func (r *planRepository) ClosePlan(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&model.Plan{}).
		Where("id = ?", id).
		Update("closed", true).Error
}
