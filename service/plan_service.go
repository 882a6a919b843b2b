package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notblessy/mealplan-admin/model"
	"github.com/notblessy/mealplan-admin/repository"
	"github.com/notblessy/mealplan-admin/utils"
	"github.com/sirupsen/logrus"
)

type PlanService interface {
	Create(ctx context.Context, input model.CreatePlanInput) (model.PlanResponse, error)
	List(ctx context.Context, includeClosed bool) ([]model.PlanResponse, error)
	Get(ctx context.Context, id uint) (model.PlanResponse, error)
	Close(ctx context.Context, id uint) (model.PlanResponse, error)
	CloseExpired(ctx context.Context) (int, error)
}

type PlanServiceConfig struct {
	PlanRepo repository.PlanRepository
	Dates    DateService
	// Now defaults to time.Now
	Now func() time.Time
}

type planService struct {
	planRepo repository.PlanRepository
	dates    DateService
	now      func() time.Time

	// Serializes the scan-close-save sequence within this process
	mu sync.Mutex
}

func NewPlanService(cfg PlanServiceConfig) PlanService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &planService{
		planRepo: cfg.PlanRepo,
		dates:    cfg.Dates,
		now:      now,
	}
}

func (s *planService) today() time.Time {
	return utils.DateOf(s.now())
}

func (s *planService) endDate(p *model.Plan) time.Time {
	return utils.DateOf(s.dates.CalculateEndDate(p.StartDate, p.TotalDays, p.MealsPerDay))
}

// Create closes expired plans, then queues a new plan behind the open one.
// Closures are kept even when the new plan is rejected.
func (s *planService) Create(ctx context.Context, input model.CreatePlanInput) (model.PlanResponse, error) {
	if input.TotalDays <= 0 || input.MealsPerDay <= 0 {
		return model.PlanResponse{}, ErrInvalidPlanInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	open, _, err := s.closeExpired(ctx, today)
	if err != nil {
		return model.PlanResponse{}, err
	}

	pending := 0
	for _, p := range open {
		if p.IsPending(today) {
			pending++
		}
	}

	if pending > 1 {
		return model.PlanResponse{}, ErrTooManyPendingPlans
	}
	// One running plan plus one queued plan is the most the schedule holds
	if len(open) > 1 {
		logrus.WithFields(logrus.Fields{
			"open":    len(open),
			"pending": pending,
		}).Warn("plan queue is full")
		return model.PlanResponse{}, ErrPlanQueueFull
	}

	var startDate time.Time
	switch {
	case input.StartDate != nil:
		startDate = utils.DateOf(*input.StartDate)
	case len(open) == 1:
		startDate = utils.DateOf(s.dates.FirstWorkingDay(s.endDate(open[0]).AddDate(0, 0, 1)))
	default:
		startDate = today
	}

	plan := model.NewPlan(startDate, input.TotalDays, input.MealsPerDay)
	if pending > 0 && plan.IsPending(today) {
		return model.PlanResponse{}, ErrTooManyPendingPlans
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		return model.PlanResponse{}, fmt.Errorf("save plan: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"plan_id":    plan.ID,
		"start_date": utils.FormatDate(plan.StartDate),
	}).Info("plan created")

	return plan.ToPlanResponse(s.endDate(plan)), nil
}

func (s *planService) List(ctx context.Context, includeClosed bool) ([]model.PlanResponse, error) {
	var (
		plans []*model.Plan
		err   error
	)
	if includeClosed {
		plans, err = s.planRepo.FindAll(ctx)
	} else {
		plans, err = s.planRepo.FindAllOpen(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("find plans: %w", err)
	}

	responses := make([]model.PlanResponse, len(plans))
	for i, p := range plans {
		responses[i] = p.ToPlanResponse(s.endDate(p))
	}
	return responses, nil
}

func (s *planService) Get(ctx context.Context, id uint) (model.PlanResponse, error) {
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return model.PlanResponse{}, err
	}
	return plan.ToPlanResponse(s.endDate(plan)), nil
}

func (s *planService) Close(ctx context.Context, id uint) (model.PlanResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return model.PlanResponse{}, err
	}

	if !plan.Closed {
		if err := s.planRepo.ClosePlan(ctx, plan.ID); err != nil {
			return model.PlanResponse{}, fmt.Errorf("close plan %d: %w", plan.ID, err)
		}
		plan.Closed = true
	}

	return plan.ToPlanResponse(s.endDate(plan)), nil
}

func (s *planService) CloseExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, closed, err := s.closeExpired(ctx, s.today())
	return closed, err
}

func (s *planService) findPlan(ctx context.Context, id uint) (*model.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find plan %d: %w", id, err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// closeExpired closes every open plan whose end date is before today and
// returns the plans that are still open. A plan ending today is still active.
func (s *planService) closeExpired(ctx context.Context, today time.Time) ([]*model.Plan, int, error) {
	plans, err := s.planRepo.FindAllOpen(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("find open plans: %w", err)
	}

	open := make([]*model.Plan, 0, len(plans))
	closed := 0
	for _, p := range plans {
		end := s.endDate(p)
		if !end.Before(today) {
			open = append(open, p)
			continue
		}

		if err := s.planRepo.ClosePlan(ctx, p.ID); err != nil {
			return nil, closed, fmt.Errorf("close expired plan %d: %w", p.ID, err)
		}
		p.Closed = true
		closed++

		logrus.WithFields(logrus.Fields{
			"plan_id":  p.ID,
			"end_date": utils.FormatDate(end),
		}).Info("closed expired plan")
	}

	return open, closed, nil
}
