package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/notblessy/mealplan-admin/service"
)

func SetupRoutes(e *echo.Echo, planService service.PlanService, admin AdminCredentials, jwtSecret string) {
	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.OPTIONS},
	}))

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Health check
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(200, response{
			Success: true,
			Data:    "pong",
		})
	})

	jwtMiddleware := NewJWTMiddleware(jwtSecret)

	// Auth routes
	authHandler := NewAuthHandler(admin, jwtMiddleware)
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login)

	// Protected routes (require JWT)
	protected := e.Group("/api")
	protected.Use(jwtMiddleware.ValidateJWT)

	// Plan routes
	planHandler := NewPlanHandler(planService)
	plans := protected.Group("/plans")
	plans.GET("", planHandler.GetPlans)
	plans.POST("", planHandler.CreatePlan)
	plans.GET("/:id", planHandler.GetPlan)
	plans.PUT("/:id/close", planHandler.ClosePlan)
}
