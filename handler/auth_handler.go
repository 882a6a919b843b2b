package handler

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/notblessy/mealplan-admin/model"
	"github.com/notblessy/mealplan-admin/utils"
	"github.com/sirupsen/logrus"
)

type response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// AdminCredentials is the single administrator allowed to log in
type AdminCredentials struct {
	Email        string
	PasswordHash string // bcrypt
}

type authHandler struct {
	admin    AdminCredentials
	jwt      *JWTMiddleware
	validate *validator.Validate
}

func NewAuthHandler(admin AdminCredentials, jwt *JWTMiddleware) *authHandler {
	return &authHandler{
		admin:    admin,
		jwt:      jwt,
		validate: validator.New(),
	}
}

func (h *authHandler) Login(c echo.Context) error {
	logger := logrus.WithField("endpoint", "login")

	var req model.LoginRequest
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
			Message: err.Error(),
		})
	}

	if h.admin.Email == "" || h.admin.PasswordHash == "" {
		logger.Warn("Login attempted but no admin is configured")
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "invalid email or password",
		})
	}

	if req.Email != h.admin.Email || !utils.VerifyPassword(h.admin.PasswordHash, req.Password) {
		logger.Warnf("Invalid credentials for: %s", req.Email)
		return c.JSON(http.StatusUnauthorized, response{
			Success: false,
			Message: "invalid email or password",
		})
	}

	token, err := h.jwt.signToken(req.Email)
	if err != nil {
		logger.Errorf("Error generating token: %v", err)
		return c.JSON(http.StatusInternalServerError, response{
			Success: false,
			Message: "failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, response{
		Success: true,
		Data: model.AuthResponse{
			Token: token,
			Type:  "Bearer",
			Email: req.Email,
		},
	})
}
