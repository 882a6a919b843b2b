package service

import (
	"time"

	"github.com/notblessy/mealplan-admin/utils"
	"github.com/rickar/cal/v2"
)

type DateService interface {
	// CalculateEndDate returns the last active day of a plan
	CalculateEndDate(startDate time.Time, totalDays, mealsPerDay int) time.Time
	// FirstWorkingDay returns date itself when it is a working day, otherwise the next one
	FirstWorkingDay(date time.Time) time.Time
}

type dateService struct {
	calendar *cal.BusinessCalendar
}

// NewDateService treats Monday to Friday as working days, minus the given holidays
func NewDateService(holidays []time.Time) DateService {
	calendar := cal.NewBusinessCalendar()
	for _, d := range holidays {
		calendar.AddHoliday(planHoliday(d))
	}
	return &dateService{calendar: calendar}
}

// planHoliday is a one-off closure on a single calendar date
func planHoliday(date time.Time) *cal.Holiday {
	d := utils.DateOf(date)
	return &cal.Holiday{
		Name:      "Closed " + utils.FormatDate(d),
		Type:      cal.ObservanceOther,
		Month:     d.Month(),
		Day:       d.Day(),
		StartYear: d.Year(),
		EndYear:   d.Year(),
		Func:      cal.CalcDayOfMonth,
	}
}

func (s *dateService) FirstWorkingDay(date time.Time) time.Time {
	d := utils.DateOf(date)
	for !s.calendar.IsWorkday(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// CalculateEndDate returns the totalDays-th working day counting the first
// working day on or after startDate as day one. Meals are served on every
// working day, so mealsPerDay does not stretch the schedule.
func (s *dateService) CalculateEndDate(startDate time.Time, totalDays, mealsPerDay int) time.Time {
	first := s.FirstWorkingDay(startDate)
	if totalDays <= 1 {
		return first
	}
	return utils.DateOf(s.calendar.WorkdaysFrom(first, totalDays-1))
}
