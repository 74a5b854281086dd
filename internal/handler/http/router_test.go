package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/config"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testEmployeeID = "0190a6f2-8a6b-7c3d-9e4f-123456789abc"
	testAbsenceID  = "0190a6f2-8a6b-7c3d-9e4f-abcdefabcdef"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(auth.TokenResponse), args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(user.UserResponse), args.Error(1)
}

func (m *mockUserService) List(ctx context.Context) ([]user.UserResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]user.UserResponse), args.Error(1)
}

type mockEmployeeService struct {
	mock.Mock
	employee.EmployeeService
}

func (m *mockEmployeeService) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]employee.EmployeeResponse), args.Error(1)
}

type mockAttendanceService struct {
	mock.Mock
	attendance.AttendanceService
}

func (m *mockAttendanceService) RecordArrival(ctx context.Context, req attendance.RecordArrivalRequest) (attendance.ArrivalResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(attendance.ArrivalResponse), args.Error(1)
}

func (m *mockAttendanceService) MarkAbsence(ctx context.Context, req attendance.MarkAbsenceRequest) (attendance.AbsenceResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(attendance.AbsenceResponse), args.Error(1)
}

func (m *mockAttendanceService) GetCertificate(ctx context.Context, absenceID string) (attendance.Document, error) {
	args := m.Called(ctx, absenceID)
	return args.Get(0).(attendance.Document), args.Error(1)
}

func (m *mockAttendanceService) SweepAbsences(ctx context.Context, req attendance.SweepRequest) (attendance.SweepResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(attendance.SweepResult), args.Error(1)
}

func (m *mockAttendanceService) ListRecords(ctx context.Context, filter attendance.PeriodFilter) ([]attendance.RecordResponse, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]attendance.RecordResponse), args.Error(1)
}

type mockLeaveService struct {
	mock.Mock
	leave.LeaveService
}

func (m *mockLeaveService) Approve(ctx context.Context, id string) (leave.LeaveRequestResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(leave.LeaveRequestResponse), args.Error(1)
}

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	auth       *mockAuthService
	users      *mockUserService
	employees  *mockEmployeeService
	attendance *mockAttendanceService
	leaves     *mockLeaveService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, config.AppConfig{AllowedOrigins: []string{"http://localhost:3000"}})
}

func newTestServerWith(t *testing.T, appCfg config.AppConfig) *testServer {
	t.Helper()

	jwtService, err := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	require.NoError(t, err)

	ts := &testServer{
		jwt:        jwtService,
		auth:       &mockAuthService{},
		users:      &mockUserService{},
		employees:  &mockEmployeeService{},
		attendance: &mockAttendanceService{},
		leaves:     &mockLeaveService{},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.router = NewRouter(appCfg, logger, jwtService, Handlers{
		Auth:       NewAuthHandler(ts.auth),
		User:       NewUserHandler(ts.users),
		Employee:   NewEmployeeHandler(ts.employees, ts.attendance, ts.leaves),
		Attendance: NewAttendanceHandler(ts.attendance),
		Absence:    NewAbsenceHandler(ts.attendance),
		Leave:      NewLeaveHandler(ts.leaves),
	})
	return ts
}

func (ts *testServer) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateAccessToken("0190a6f2-8a6b-7c3d-9e4f-00000000aaaa", "operator", role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	return body.Error.Code, body.Error.Message
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	ts.auth.On("Login", mock.Anything, auth.LoginRequest{Username: "admin", Password: "secret"}).
		Return(auth.TokenResponse{AccessToken: "tok", TokenType: "Bearer", Role: "admin"}, nil).Once()
	ts.auth.On("Login", mock.Anything, auth.LoginRequest{Username: "admin", Password: "wrong"}).
		Return(auth.TokenResponse{}, auth.ErrInvalidCredentials).Once()

	rec := ts.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", auth.LoginRequest{Username: "admin", Password: "secret"}), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"tok"`)

	rec = ts.do(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", auth.LoginRequest{Username: "admin", Password: "wrong"}), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.auth.AssertExpectations(t)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(jsonRequest(t, http.MethodPost, "/api/v1/attendance/arrival", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(jsonRequest(t, http.MethodGet, "/api/v1/employees", nil), "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPermissions(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.token(t, user.RoleUser)

	rec := ts.do(jsonRequest(t, http.MethodPost, "/api/v1/leaves/"+testEmployeeID+"/approve", nil), userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(jsonRequest(t, http.MethodPost, "/api/v1/users", user.CreateUserRequest{Username: "bob", Password: "password123"}), userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(jsonRequest(t, http.MethodPost, "/api/v1/absences/sweep", nil), userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ts.leaves.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
}

func TestApproveLeave_AsAdmin(t *testing.T) {
	ts := newTestServer(t)
	id := "0190a6f2-8a6b-7c3d-9e4f-0000000000ff"

	ts.leaves.On("Approve", mock.Anything, id).
		Return(leave.LeaveRequestResponse{ID: id, Status: "approved"}, nil).Once()
	ts.leaves.On("Approve", mock.Anything, testEmployeeID).
		Return(leave.LeaveRequestResponse{}, leave.ErrLeaveAlreadyProcessed).Once()

	rec := ts.do(jsonRequest(t, http.MethodPost, "/api/v1/leaves/"+id+"/approve", nil), ts.token(t, user.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(jsonRequest(t, http.MethodPost, "/api/v1/leaves/"+testEmployeeID+"/approve", nil), ts.token(t, user.RoleAdmin))
	assert.Equal(t, http.StatusConflict, rec.Code)
	_, msg := decodeError(t, rec)
	assert.Equal(t, leave.ErrLeaveAlreadyProcessed.Error(), msg)
}

func TestRecordArrival_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"on leave", fmt.Errorf("guard: %w", attendance.ErrEmployeeOnLeave), http.StatusConflict, "CONFLICT"},
		{"unknown employee", employee.ErrEmployeeNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"pool exhausted", fmt.Errorf("%w: acquire timeout", database.ErrConnectivity), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"malformed time", validator.ValidationErrors{{Field: "time", Message: "time must be in HH:MM or HH:MM:SS format"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.attendance.On("RecordArrival", mock.Anything, mock.Anything).
				Return(attendance.ArrivalResponse{}, tt.err).Once()

			req := jsonRequest(t, http.MethodPost, "/api/v1/attendance/arrival", map[string]string{
				"employee_id": testEmployeeID, "date": "2024-01-10", "time": "07:58",
			})
			rec := ts.do(req, ts.token(t, user.RoleUser))

			assert.Equal(t, tt.wantStatus, rec.Code)
			code, _ := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestRecordArrival_DecodesBody(t *testing.T) {
	ts := newTestServer(t)

	ts.attendance.On("RecordArrival", mock.Anything, mock.MatchedBy(func(req attendance.RecordArrivalRequest) bool {
		return req.EmployeeID == testEmployeeID && req.Date == "2024-01-10" && req.Time == "07:58"
	})).Return(attendance.ArrivalResponse{EmployeeID: testEmployeeID, Status: "late", OffsetMinutes: 3, LatenessMinutes: 3}, nil).Once()

	req := jsonRequest(t, http.MethodPost, "/api/v1/attendance/arrival", map[string]string{
		"employee_id": testEmployeeID, "date": "2024-01-10", "time": "07:58",
	})
	rec := ts.do(req, ts.token(t, user.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"late"`)
	ts.attendance.AssertExpectations(t)
}

func TestRecordArrival_MalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance/arrival", strings.NewReader("{"))
	rec := ts.do(req, ts.token(t, user.RoleUser))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.attendance.AssertNotCalled(t, "RecordArrival", mock.Anything, mock.Anything)
}

func TestMarkAbsence_MultipartCertificate(t *testing.T) {
	ts := newTestServer(t)
	pdf := []byte("%PDF-1.4 medical certificate")

	ts.attendance.On("MarkAbsence", mock.Anything, mock.MatchedBy(func(req attendance.MarkAbsenceRequest) bool {
		return req.EmployeeID == testEmployeeID &&
			req.Date == "2024-01-10" &&
			req.Reason == "sick" &&
			req.Justified &&
			req.Document != nil &&
			req.Document.MediaType == "application/pdf" &&
			bytes.Equal(req.Document.Data, pdf)
	})).Return(attendance.AbsenceResponse{ID: testAbsenceID, HasCertificate: true}, nil).Once()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("employee_id", testEmployeeID))
	require.NoError(t, mw.WriteField("date", "2024-01-10"))
	require.NoError(t, mw.WriteField("reason", "sick"))
	require.NoError(t, mw.WriteField("justified", "true"))
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="certificate"; filename="note.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(pdf)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/absences", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := ts.do(req, ts.token(t, user.RoleUser))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"has_certificate":true`)
	ts.attendance.AssertExpectations(t)
}

func TestMarkAbsence_JSONWithoutCertificate(t *testing.T) {
	ts := newTestServer(t)

	ts.attendance.On("MarkAbsence", mock.Anything, mock.MatchedBy(func(req attendance.MarkAbsenceRequest) bool {
		return req.Document == nil && req.Reason == "family"
	})).Return(attendance.AbsenceResponse{ID: testAbsenceID}, nil).Once()

	req := jsonRequest(t, http.MethodPost, "/api/v1/absences", map[string]any{
		"employee_id": testEmployeeID, "date": "2024-01-10", "reason": "family", "justified": false,
	})
	rec := ts.do(req, ts.token(t, user.RoleUser))

	assert.Equal(t, http.StatusCreated, rec.Code)
	ts.attendance.AssertExpectations(t)
}

func TestGetCertificate(t *testing.T) {
	ts := newTestServer(t)
	pdf := []byte("%PDF-1.4")

	ts.attendance.On("GetCertificate", mock.Anything, testAbsenceID).
		Return(attendance.Document{Data: pdf, MediaType: "application/pdf"}, nil).Once()
	ts.attendance.On("GetCertificate", mock.Anything, testEmployeeID).
		Return(attendance.Document{}, attendance.ErrCertificateNotFound).Once()

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/absences/"+testAbsenceID+"/certificate", nil), ts.token(t, user.RoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, pdf, rec.Body.Bytes())

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/absences/"+testEmployeeID+"/certificate", nil), ts.token(t, user.RoleUser))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSweep_PassesDate(t *testing.T) {
	ts := newTestServer(t)

	ts.attendance.On("SweepAbsences", mock.Anything, attendance.SweepRequest{Date: "2024-01-10"}).
		Return(attendance.SweepResult{Date: "2024-01-10", Candidates: 1, Marked: 1}, nil).Once()

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/v1/absences/sweep?date=2024-01-10", nil), ts.token(t, user.RoleAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"marked":1`)
	ts.attendance.AssertExpectations(t)
}

func TestListRecords_PassesPeriod(t *testing.T) {
	ts := newTestServer(t)

	ts.attendance.On("ListRecords", mock.Anything, attendance.PeriodFilter{StartDate: "2024-01-01", EndDate: "2024-01-31"}).
		Return([]attendance.RecordResponse{{ID: "r1", EmployeeID: testEmployeeID, Date: "2024-01-10"}}, nil).Once()

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/attendance?start_date=2024-01-01&end_date=2024-01-31", nil), ts.token(t, user.RoleUser))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeTotalItems(t, rec))
	ts.attendance.AssertExpectations(t)
}

func TestListEmployees_ParsesFilter(t *testing.T) {
	ts := newTestServer(t)

	ts.employees.On("List", mock.Anything, mock.MatchedBy(func(f employee.EmployeeFilter) bool {
		return f.Service != nil && *f.Service == "Radiology" &&
			f.Search != nil && *f.Search == "mar" &&
			f.IncludeInactive
	})).Return([]employee.EmployeeResponse{}, nil).Once()

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/employees?service=Radiology&search=mar&include_inactive=true", nil), ts.token(t, user.RoleUser))

	assert.Equal(t, http.StatusOK, rec.Code)
	ts.employees.AssertExpectations(t)
}

func decodeTotalItems(t *testing.T, rec *httptest.ResponseRecorder) int {
	t.Helper()
	var body struct {
		Meta *struct {
			TotalItems int `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Meta)
	return body.Meta.TotalItems
}

func TestListUsers_AdminOnly(t *testing.T) {
	ts := newTestServer(t)

	ts.users.On("List", mock.Anything).Return([]user.UserResponse{
		{ID: "u1", Username: "admin", Role: "admin"},
		{ID: "u2", Username: "frontdesk", Role: "user"},
	}, nil).Once()

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/users", nil), ts.token(t, user.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/v1/users", nil), ts.token(t, user.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeTotalItems(t, rec))
	ts.users.AssertExpectations(t)
}

func TestCreateUser_UsernameTaken(t *testing.T) {
	ts := newTestServer(t)

	ts.users.On("Create", mock.Anything, mock.Anything).Return(user.UserResponse{}, user.ErrUsernameExists).Once()

	rec := ts.do(jsonRequest(t, http.MethodPost, "/api/v1/users", user.CreateUserRequest{Username: "bob", Password: "password123"}), ts.token(t, user.RoleAdmin))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin_RateLimited(t *testing.T) {
	ts := newTestServerWith(t, config.AppConfig{
		AllowedOrigins:     []string{"http://localhost:3000"},
		LoginRatePerMinute: 1,
		LoginRateBurst:     1,
	})
	ts.auth.On("Login", mock.Anything, mock.Anything).Return(auth.TokenResponse{AccessToken: "tok"}, nil).Once()

	login := func() *httptest.ResponseRecorder {
		req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", auth.LoginRequest{Username: "admin", Password: "secret"})
		req.RemoteAddr = "192.0.2.10:40000"
		return ts.do(req, "")
	}

	assert.Equal(t, http.StatusOK, login().Code)
	rec := login()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	ts.auth.AssertNumberOfCalls(t, "Login", 1)
}
