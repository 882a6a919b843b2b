package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/mealplan-admin/model"
	"github.com/notblessy/mealplan-admin/service"
	"github.com/notblessy/mealplan-admin/utils"
	"github.com/sirupsen/logrus"
)

type planHandler struct {
	planService service.PlanService
	validate    *validator.Validate
}

func NewPlanHandler(planService service.PlanService) *planHandler {
	return &planHandler{
		planService: planService,
		validate:    validator.New(),
	}
}

// CreatePlan creates a new plan, closing expired ones first
func (h *planHandler) CreatePlan(c echo.Context) error {
	logger := logrus.WithField("endpoint", "create_plan")

	admin, err := authSession(c)
	if err != nil {
		logger.Errorf("Error getting session: %v", err)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "unauthorized",
		})
	}
	logger = logger.WithField("admin", admin.Email)

	var req model.CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		logger.Errorf("Error parsing request: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		logger.Errorf("Validation error: %v", err)
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "validation failed",
		})
	}

	// Parse start date (optional)
	var startDate *time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		parsedDate, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response{
				Success: false,
				Message: "invalid start date format",
			})
		}
		startDate = &parsedDate
	}

	plan, err := h.planService.Create(c.Request().Context(), model.CreatePlanInput{
		TotalDays:   req.TotalDays,
		MealsPerDay: req.MealsPerDay,
		StartDate:   startDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanQueueFull):
			logger.Warn("Rejected plan: plan queue is full")
			return c.JSON(http.StatusConflict, response{
				Success: false,
				Message: "a plan is running and another is already queued",
			})
		case errors.Is(err, service.ErrTooManyPendingPlans):
			logger.Warn("Rejected plan: too many pending plans")
			return c.JSON(http.StatusConflict, response{
				Success: false,
				Message: "there is already a plan waiting to start",
			})
		case errors.Is(err, service.ErrInvalidPlanInput):
			return c.JSON(http.StatusBadRequest, response{
				Success: false,
				Message: err.Error(),
			})
		}
		logger.Errorf("Error creating plan: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to create plan",
		})
	}

	return c.JSON(http.StatusCreated, response{
		Success: true,
		Data:    plan,
	})
}

// GetPlans lists open plans, or every plan with ?all=true
func (h *planHandler) GetPlans(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_plans")

	includeClosed, _ := strconv.ParseBool(c.QueryParam("all"))

	plans, err := h.planService.List(c.Request().Context(), includeClosed)
	if err != nil {
		logger.Errorf("Error finding plans: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to retrieve plans",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    plans,
	})
}

func (h *planHandler) GetPlan(c echo.Context) error {
	logger := logrus.WithField("endpoint", "get_plan")

	id, err := parsePlanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid plan id",
		})
	}

	plan, err := h.planService.Get(c.Request().Context(), id)
	if err != nil {
		return h.planLookupError(c, logger, err, "failed to retrieve plan")
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    plan,
	})
}

func (h *planHandler) ClosePlan(c echo.Context) error {
	logger := logrus.WithField("endpoint", "close_plan")

	id, err := parsePlanID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response{
			Success: false,
			Message: "invalid plan id",
		})
	}

	plan, err := h.planService.Close(c.Request().Context(), id)
	if err != nil {
		return h.planLookupError(c, logger, err, "failed to close plan")
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data:    plan,
	})
}

func (h *planHandler) planLookupError(c echo.Context, logger *logrus.Entry, err error, message string) error {
	if errors.Is(err, service.ErrPlanNotFound) {
		return c.JSON(http.StatusNotFound, response{
			Success: false,
			Message: "plan not found",
		})
	}

	logger.Errorf("Error handling plan: %v", err)
	return c.JSON(http.StatusInternalServerError, response{
		Success: false,
		Message: message,
	})
}

func parsePlanID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
