package model

import (
	"time"

	"github.com/notblessy/mealplan-admin/utils"
)

type Plan struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StartDate   time.Time `json:"start_date" gorm:"type:date;not null;index"`
	TotalDays   int       `json:"total_days" gorm:"not null"`
	MealsPerDay int       `json:"meals_per_day" gorm:"not null"`
	Closed      bool      `json:"closed" gorm:"not null;default:false;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPlan builds an open, not yet persisted plan
func NewPlan(startDate time.Time, totalDays, mealsPerDay int) *Plan {
	return &Plan{
		StartDate:   utils.DateOf(startDate),
		TotalDays:   totalDays,
		MealsPerDay: mealsPerDay,
		Closed:      false,
	}
}

// IsPending reports whether the plan starts strictly after today
func (p *Plan) IsPending(today time.Time) bool {
	return utils.DateOf(p.StartDate).After(utils.DateOf(today))
}

type CreatePlanRequest struct {
	TotalDays   int     `json:"total_days" validate:"required,gt=0"`
	MealsPerDay int     `json:"meals_per_day" validate:"required,gt=0"`
	StartDate   *string `json:"start_date"` // Optional, YYYY-MM-DD
}

// CreatePlanInput is the parsed form of CreatePlanRequest
type CreatePlanInput struct {
	TotalDays   int
	MealsPerDay int
	StartDate   *time.Time
}

type PlanResponse struct {
	ID          uint   `json:"id"`
	StartDate   string `json:"start_date"`
	TotalDays   int    `json:"total_days"`
	MealsPerDay int    `json:"meals_per_day"`
	Closed      bool   `json:"closed"`
	EndDate     string `json:"end_date"`
}

// ToPlanResponse converts Plan to PlanResponse with its computed end date
func (p *Plan) ToPlanResponse(endDate time.Time) PlanResponse {
	return PlanResponse{
		ID:          p.ID,
		StartDate:   utils.FormatDate(p.StartDate),
		TotalDays:   p.TotalDays,
		MealsPerDay: p.MealsPerDay,
		Closed:      p.Closed,
		EndDate:     utils.FormatDate(endDate),
	}
}
