package plan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context) ([]Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Plan), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id int) (*Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockService) Update(ctx context.Context, id int, req UpdatePlanRequest) (*Plan, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Plan), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.GET("/api/plans", h.List)
	r.GET("/api/plans/:id", h.Get)
	r.POST("/api/plans", h.Create)
	r.PUT("/api/plans/:id", h.Update)
	r.DELETE("/api/plans/:id", h.Delete)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Get(t *testing.T) {
	svc := new(MockService)
	svc.On("Get", mock.Anything, 2).Return(&Plan{ID: 2, DaysDuration: 30, Price: 80000, Description: "Mensual"}, nil)
	svc.On("Get", mock.Anything, 5).Return(nil, ErrPlanNotFound)
	r := setupRouter(svc)

	w := send(r, http.MethodGet, "/api/plans/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id_plan":2,"days_duration":30,"price":80000,"plan_description":"Mensual"}`, w.Body.String())

	w = send(r, http.MethodGet, "/api/plans/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Plan not found")

	w = send(r, http.MethodGet, "/api/plans/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid plan ID")
}

func TestHandler_CreateBatch(t *testing.T) {
	svc := new(MockService)
	svc.On("Create", mock.Anything, CreatePlanRequest{DaysDuration: 30, Price: 80000, Description: "Mensual"}).
		Return(&Plan{ID: 2, DaysDuration: 30, Price: 80000, Description: "Mensual"}, nil)
	svc.On("Create", mock.Anything, CreatePlanRequest{DaysDuration: 15, Price: 45000, Description: "Mensual"}).
		Return(nil, ErrDescriptionTaken)
	r := setupRouter(svc)

	w := send(r, http.MethodPost, "/api/plans", `[
		{"days_duration":30,"price":80000,"plan_description":"Mensual"},
		{"days_duration":15,"price":45000,"plan_description":"Mensual"},
		{"days_duration":-3,"price":45000,"plan_description":"Raro"}
	]`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Created []Plan `json:"created"`
		Errors  []struct {
			Index int    `json:"index"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Created, 1)
	require.Len(t, resp.Errors, 2)
	assert.Equal(t, "A plan with this description already exists", resp.Errors[0].Error)
	assert.Equal(t, 2, resp.Errors[1].Index)
}

func TestHandler_DeleteInUse(t *testing.T) {
	svc := new(MockService)
	svc.On("Delete", mock.Anything, 2).Return(ErrPlanInUse)
	r := setupRouter(svc)

	w := send(r, http.MethodDelete, "/api/plans/2", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Cannot delete plan")
}

func TestHandler_UpdateInvalidBody(t *testing.T) {
	r := setupRouter(new(MockService))

	w := send(r, http.MethodPut, "/api/plans/2", `{"price":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPut, "/api/plans/2", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
