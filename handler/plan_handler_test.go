package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/notblessy/mealplan-admin/model"
	"github.com/notblessy/mealplan-admin/service"
	"github.com/notblessy/mealplan-admin/utils"
)

type fakePlanService struct {
	lastInput     model.CreatePlanInput
	createErr     error
	lookupErr     error
	includeClosed bool
}

func (s *fakePlanService) Create(_ context.Context, input model.CreatePlanInput) (model.PlanResponse, error) {
	s.lastInput = input
	if s.createErr != nil {
		return model.PlanResponse{}, s.createErr
	}
	start := "2026-05-06"
	if input.StartDate != nil {
		start = utils.FormatDate(*input.StartDate)
	}
	return model.PlanResponse{
		ID:          1,
		StartDate:   start,
		TotalDays:   input.TotalDays,
		MealsPerDay: input.MealsPerDay,
		EndDate:     "2026-05-20",
	}, nil
}

func (s *fakePlanService) List(_ context.Context, includeClosed bool) ([]model.PlanResponse, error) {
	s.includeClosed = includeClosed
	return []model.PlanResponse{{ID: 1}, {ID: 2, Closed: true}}, nil
}

func (s *fakePlanService) Get(_ context.Context, id uint) (model.PlanResponse, error) {
	if s.lookupErr != nil {
		return model.PlanResponse{}, s.lookupErr
	}
	return model.PlanResponse{ID: id}, nil
}

func (s *fakePlanService) Close(_ context.Context, id uint) (model.PlanResponse, error) {
	if s.lookupErr != nil {
		return model.PlanResponse{}, s.lookupErr
	}
	return model.PlanResponse{ID: id, Closed: true}, nil
}

func (s *fakePlanService) CloseExpired(_ context.Context) (int, error) {
	return 0, nil
}

const testSecret = "test-secret"

func newTestServer(t *testing.T, svc service.PlanService) (*echo.Echo, string) {
	t.Helper()

	hashed, err := utils.HashPassword("admin-pass")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}

	e := echo.New()
	SetupRoutes(e, svc, AdminCredentials{Email: "admin@example.com", PasswordHash: hashed}, testSecret)

	token, err := NewJWTMiddleware(testSecret).signToken("admin@example.com")
	if err != nil {
		t.Fatalf("signToken() error: %v", err)
	}
	return e, token
}

func doRequest(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) response {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, data); err != nil {
			t.Fatalf("invalid data payload %s: %v", raw.Data, err)
		}
	}
	return response{Success: raw.Success, Message: raw.Message}
}

func TestCreatePlanHandler(t *testing.T) {
	svc := &fakePlanService{}
	e, token := newTestServer(t, svc)

	rec := doRequest(e, http.MethodPost, "/api/plans", `{"total_days":10,"meals_per_day":2,"start_date":"2026-06-01"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var plan model.PlanResponse
	resp := decodeResponse(t, rec, &plan)
	if !resp.Success {
		t.Error("expected success")
	}
	if plan.StartDate != "2026-06-01" || plan.TotalDays != 10 || plan.MealsPerDay != 2 {
		t.Errorf("unexpected plan %+v", plan)
	}
	if svc.lastInput.StartDate == nil || !svc.lastInput.StartDate.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date not passed to service: %+v", svc.lastInput)
	}
}

func TestCreatePlanHandlerWithoutStartDate(t *testing.T) {
	svc := &fakePlanService{}
	e, token := newTestServer(t, svc)

	rec := doRequest(e, http.MethodPost, "/api/plans", `{"total_days":5,"meals_per_day":3}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.StartDate != nil {
		t.Errorf("expected no start date, got %v", svc.lastInput.StartDate)
	}
}

func TestCreatePlanHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
	}{
		{name: "malformed json", body: `{"total_days":`, wantStatus: http.StatusBadRequest},
		{name: "zero total days", body: `{"total_days":0,"meals_per_day":2}`, wantStatus: http.StatusBadRequest},
		{name: "negative meals", body: `{"total_days":10,"meals_per_day":-2}`, wantStatus: http.StatusBadRequest},
		{name: "bad start date", body: `{"total_days":10,"meals_per_day":2,"start_date":"01/06/2026"}`, wantStatus: http.StatusBadRequest},
		{
			name:       "too many pending plans",
			body:       `{"total_days":10,"meals_per_day":2}`,
			createErr:  service.ErrTooManyPendingPlans,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "plan queue full",
			body:       `{"total_days":10,"meals_per_day":2}`,
			createErr:  service.ErrPlanQueueFull,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "store failure",
			body:       `{"total_days":10,"meals_per_day":2}`,
			createErr:  errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, token := newTestServer(t, &fakePlanService{createErr: tt.createErr})

			rec := doRequest(e, http.MethodPost, "/api/plans", tt.body, token)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if resp := decodeResponse(t, rec, nil); resp.Success {
				t.Error("expected success=false")
			}
		})
	}
}

func TestPlanRoutesRequireToken(t *testing.T) {
	e, _ := newTestServer(t, &fakePlanService{})

	rec := doRequest(e, http.MethodGet, "/api/plans", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = doRequest(e, http.MethodGet, "/api/plans", "", "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for invalid token", rec.Code)
	}
}

func TestGetPlansHandler(t *testing.T) {
	svc := &fakePlanService{}
	e, token := newTestServer(t, svc)

	rec := doRequest(e, http.MethodGet, "/api/plans?all=true", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var plans []model.PlanResponse
	decodeResponse(t, rec, &plans)
	if len(plans) != 2 {
		t.Errorf("got %d plans, want 2", len(plans))
	}
	if !svc.includeClosed {
		t.Error("expected all=true to include closed plans")
	}
}

func TestGetPlanHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		e, token := newTestServer(t, &fakePlanService{})

		rec := doRequest(e, http.MethodGet, "/api/plans/7", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		var plan model.PlanResponse
		decodeResponse(t, rec, &plan)
		if plan.ID != 7 {
			t.Errorf("ID = %d, want 7", plan.ID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		e, token := newTestServer(t, &fakePlanService{lookupErr: service.ErrPlanNotFound})

		rec := doRequest(e, http.MethodGet, "/api/plans/7", "", token)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		e, token := newTestServer(t, &fakePlanService{})

		rec := doRequest(e, http.MethodGet, "/api/plans/abc", "", token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestClosePlanHandler(t *testing.T) {
	e, token := newTestServer(t, &fakePlanService{})

	rec := doRequest(e, http.MethodPut, "/api/plans/3/close", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var plan model.PlanResponse
	decodeResponse(t, rec, &plan)
	if plan.ID != 3 || !plan.Closed {
		t.Errorf("unexpected plan %+v", plan)
	}
}

func TestCreatePlanHandlerConflictMessages(t *testing.T) {
	tests := []struct {
		err         error
		wantMessage string
	}{
		{err: service.ErrTooManyPendingPlans, wantMessage: "there is already a plan waiting to start"},
		{err: service.ErrPlanQueueFull, wantMessage: "a plan is running and another is already queued"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e, token := newTestServer(t, &fakePlanService{createErr: tt.err})

			rec := doRequest(e, http.MethodPost, "/api/plans", `{"total_days":10,"meals_per_day":2}`, token)
			if rec.Code != http.StatusConflict {
				t.Fatalf("status = %d, want 409", rec.Code)
			}
			if resp := decodeResponse(t, rec, nil); resp.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
			}
		})
	}
}
