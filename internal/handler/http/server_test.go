package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/rbac"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	authService "github.com/cmlabs-hris/payroll-backend-go/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/payroll-backend-go/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/payroll-backend-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/payroll-backend-go/internal/service/payroll"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestAccessExp  = "1h"
	handlerTestRefreshExp = "24h"
	handlerTestSecret     = "test-secret-key-for-jwt"

	testAdminEmail    = "admin@example.com"
	testAdminPassword = "AdminPass123!"
)

type testServer struct {
	t       *testing.T
	store   *memory.Store
	authSvc auth.AuthService
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()

	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp, handlerTestRefreshExp, false)
	require.NoError(t, err)
	authz, err := rbac.NewDefaultAuthorizer()
	require.NoError(t, err)

	authSvc := authService.NewAuthService(store.Transactor(), store.Users(), store.Employees(), jwtSvc, store.Tokens())
	empSvc := employeeService.NewEmployeeService(store.Employees())
	paySvc := payrollService.NewPayrollService(store.Transactor(), store.Payrolls(), store.Employees())
	dashSvc := dashboardService.NewDashboardService(store.Dashboard(), store.Employees(), store.Payrolls())

	router := NewRouter(
		RouterOptions{
			Version:        "test",
			Env:            "test",
			LogLevel:       slog.LevelError,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		jwtSvc,
		authz,
		NewAuthHandler(jwtSvc, authSvc, nil, "http://localhost:3000", false),
		NewEmployeeHandler(empSvc),
		NewPayrollHandler(paySvc),
		NewMeHandler(empSvc, paySvc),
		NewDashboardHandler(dashSvc),
	)

	return &testServer{t: t, store: store, authSvc: authSvc, handler: router}
}

// do sends body as JSON unless it is already a string.
func (s *testServer) do(method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp), w.Body.String())
	return resp
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	resp := decodeBody(t, w)
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeBody(t, w)
	errDetail, ok := resp["error"].(map[string]any)
	require.True(t, ok, "response has no error: %v", resp)
	return errDetail["code"].(string)
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == jwt.RefreshCookieName {
			return c
		}
	}
	return nil
}

// login returns the access token for the given credentials.
func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", auth.LoginRequest{Email: email, Password: password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return dataOf(s.t, w)["access_token"].(string)
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	require.NoError(s.t, s.authSvc.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword, "Administrator"))
	return s.login(testAdminEmail, testAdminPassword)
}

// register creates an employee-role account and returns its access token.
func (s *testServer) register(username, email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", auth.RegisterRequest{
		FullName:        "Test User",
		Username:        username,
		Email:           email,
		Password:        "SecurePass123!",
		ConfirmPassword: "SecurePass123!",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf(s.t, w)["access_token"].(string)
}

// createEmployee posts a new employee as admin and returns the response data.
func (s *testServer) createEmployee(adminToken, email, department string, salary int) map[string]any {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/employees", adminToken, map[string]any{
		"first_name":      "Jane",
		"last_name":       "Doe",
		"email":           email,
		"phone":           "+62 812 3456 7890",
		"department":      department,
		"position":        "Engineer",
		"salary":          salary,
		"date_of_joining": "2023-01-15",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return dataOf(s.t, w)
}

// linkedEmployeeToken registers an account and links it to the employee code.
func (s *testServer) linkedEmployeeToken(username, email, employeeCode string) string {
	s.t.Helper()
	token := s.register(username, email)
	w := s.do(http.MethodPost, "/api/v1/auth/me/employee", token, auth.LinkEmployeeRequest{EmployeeCode: employeeCode})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return dataOf(s.t, w)["access_token"].(string)
}
