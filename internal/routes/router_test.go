package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"it-asset-dashboard/internal/config"
	domainActivity "it-asset-dashboard/internal/domain/activity"
	domainAlert "it-asset-dashboard/internal/domain/alert"
	domainMaintenance "it-asset-dashboard/internal/domain/maintenance"
	domainUser "it-asset-dashboard/internal/domain/user"
	"it-asset-dashboard/internal/testutil/memory"
	"it-asset-dashboard/pkg/utils"
)

const testSecret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details []string        `json:"details"`
}

type testEnv struct {
	router    *gin.Engine
	devices   *memory.DeviceRepository
	schedules *memory.ScheduleRepository
	alerts    *memory.AlertRepository
	users     *memory.UserRepository
	activity  *memory.ActivityRepository
}

func newTestEnv(t *testing.T, health HealthCheck) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:      testSecret,
			ExpiryHours: 1,
			CookieName:  "authToken",
		},
		Maintenance: config.MaintenanceConfig{IntervalMonths: 6},
	}

	env := &testEnv{
		devices:   memory.NewDeviceRepository(),
		schedules: memory.NewScheduleRepository(),
		alerts:    memory.NewAlertRepository(),
		users:     memory.NewUserRepository(),
		activity:  memory.NewActivityRepository(),
	}
	repos := Repositories{
		Devices:   env.devices,
		Schedules: env.schedules,
		Alerts:    env.alerts,
		Users:     env.users,
		Activity:  env.activity,
	}
	env.router = NewRouter(cfg, repos, env.activity, health)
	return env
}

func tokenFor(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, _, err := utils.GenerateToken(userID, "user-"+role, role, testSecret, 1)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type deviceBody struct {
	DeviceID            uint    `json:"DeviceID"`
	DeviceName          string  `json:"DeviceName"`
	SerialNumber        string  `json:"SerialNumber"`
	Status              string  `json:"Status"`
	NextMaintenanceDate *string `json:"NextMaintenanceDate"`
}

type scheduleBody struct {
	ScheduleID      uint    `json:"ScheduleID"`
	DeviceID        uint    `json:"DeviceID"`
	MaintenanceType string  `json:"MaintenanceType"`
	Status          string  `json:"Status"`
	CompletedDate   *string `json:"CompletedDate"`
}

func newDevicePayload(serial string) map[string]any {
	return map[string]any{
		"DeviceName":   "Reception laptop",
		"SerialNumber": serial,
		"Model":        "ThinkPad X1",
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	w, _ := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestEnv(t, func() error { return errors.New("connection refused") })
	w, _ = down.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutesRequireAuthentication(t *testing.T) {
	env := newTestEnv(t, nil)

	w, resp := env.do(t, http.MethodGet, "/api/devices", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)

	w, _ = env.do(t, http.MethodGet, "/api/devices", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestViewerCannotMutate(t *testing.T) {
	env := newTestEnv(t, nil)
	viewer := tokenFor(t, 3, domainUser.RoleViewer)

	w, _ := env.do(t, http.MethodPost, "/api/devices", newDevicePayload("SN-1"), viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/devices", nil, viewer)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateAndGetDevice(t *testing.T) {
	env := newTestEnv(t, nil)
	tech := tokenFor(t, 2, domainUser.RoleTechnician)

	w, resp := env.do(t, http.MethodPost, "/api/devices", newDevicePayload("SN-100"), tech)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[deviceBody](t, resp.Data)
	assert.Equal(t, "SN-100", created.SerialNumber)
	assert.Equal(t, "active", created.Status)

	w, resp = env.do(t, http.MethodGet, "/api/devices/1", nil, tech)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.DeviceID, decode[deviceBody](t, resp.Data).DeviceID)

	entries := env.activity.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domainActivity.ActionCreate, entries[0].Action)
	require.NotNil(t, entries[0].UserID)
	assert.Equal(t, uint(2), *entries[0].UserID)
}

func TestCreateDeviceErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := tokenFor(t, 1, domainUser.RoleAdmin)

	w, resp := env.do(t, http.MethodPost, "/api/devices", map[string]any{"DeviceName": "Printer"}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FIELDS", resp.Code)
	assert.ElementsMatch(t, []string{"SerialNumber", "Model"}, resp.Details)

	payload := newDevicePayload("SN-DUP")
	payload["PurchaseDate"] = "2024-05-01"
	payload["WarrantyExpiry"] = "2024-01-01"
	w, resp = env.do(t, http.MethodPost, "/api/devices", payload, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATES", resp.Code)

	w, _ = env.do(t, http.MethodPost, "/api/devices", newDevicePayload("SN-DUP"), admin)
	require.Equal(t, http.StatusCreated, w.Code)
	w, resp = env.do(t, http.MethodPost, "/api/devices", newDevicePayload("SN-DUP"), admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DEVICE_EXISTS", resp.Code)

	bad := newDevicePayload("SN-STATUS")
	bad["Status"] = "broken"
	w, resp = env.do(t, http.MethodPost, "/api/devices", bad, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", resp.Code)
}

func TestDeviceNotFoundAndBadID(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := tokenFor(t, 1, domainUser.RoleAdmin)

	w, resp := env.do(t, http.MethodGet, "/api/devices/42", nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Code)

	w, resp = env.do(t, http.MethodGet, "/api/devices/abc", nil, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)

	w, _ = env.do(t, http.MethodDelete, "/api/devices/42", nil, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodPut, "/api/devices/42", map[string]any{"PurchaseDate": "not-a-date"}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Code)
}

func TestStatusTransitionsDriveSchedules(t *testing.T) {
	env := newTestEnv(t, nil)
	tech := tokenFor(t, 2, domainUser.RoleTechnician)

	w, resp := env.do(t, http.MethodPost, "/api/devices", newDevicePayload("SN-200"), tech)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[deviceBody](t, resp.Data).DeviceID
	require.Equal(t, uint(1), id)

	w, _ = env.do(t, http.MethodPut, "/api/devices/1", map[string]any{"Status": "Maintenance"}, tech)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp = env.do(t, http.MethodGet, "/api/devices/1/schedules", nil, tech)
	require.Equal(t, http.StatusOK, w.Code)
	schedules := decode[[]scheduleBody](t, resp.Data)
	require.Len(t, schedules, 1)
	assert.Equal(t, domainMaintenance.AutoType, schedules[0].MaintenanceType)
	assert.Equal(t, "pending", schedules[0].Status)

	w, resp = env.do(t, http.MethodPut, "/api/devices/1", map[string]any{"Status": "active"}, tech)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[deviceBody](t, resp.Data)
	assert.NotNil(t, updated.NextMaintenanceDate)

	w, resp = env.do(t, http.MethodGet, "/api/devices/1/schedules", nil, tech)
	require.Equal(t, http.StatusOK, w.Code)
	schedules = decode[[]scheduleBody](t, resp.Data)
	require.Len(t, schedules, 1)
	assert.Equal(t, "completed", schedules[0].Status)
	assert.NotNil(t, schedules[0].CompletedDate)
}

func TestDeleteDeviceCascades(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := tokenFor(t, 1, domainUser.RoleAdmin)

	w, _ := env.do(t, http.MethodPost, "/api/devices", newDevicePayload("SN-300"), admin)
	require.Equal(t, http.StatusCreated, w.Code)
	env.alerts.Put(domainAlert.Alert{DeviceID: 1, AlertType: "disk", Severity: "high", Message: "Disk almost full"})

	w, resp := env.do(t, http.MethodGet, "/api/devices/1/alerts", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, resp.Data), 1)

	w, resp = env.do(t, http.MethodDelete, "/api/devices/1", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SN-300", decode[deviceBody](t, resp.Data).SerialNumber)

	w, resp = env.do(t, http.MethodGet, "/api/devices/1/alerts", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, resp.Data))

	w, resp = env.do(t, http.MethodGet, "/api/devices/1/schedules", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]scheduleBody](t, resp.Data))

	entries := env.activity.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domainActivity.ActionDelete, entries[1].Action)
	assert.NotNil(t, entries[1].Snapshot)
}

func TestMaintenanceRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	tech := tokenFor(t, 2, domainUser.RoleTechnician)

	w, _ := env.do(t, http.MethodPost, "/api/devices", newDevicePayload("SN-400"), tech)
	require.Equal(t, http.StatusCreated, w.Code)

	schedule := map[string]any{
		"DeviceID":        1,
		"MaintenanceType": "Inspection",
		"ScheduledDate":   "2024-04-01",
	}
	w, resp := env.do(t, http.MethodPost, "/api/maintenance", schedule, tech)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[scheduleBody](t, resp.Data)
	assert.Equal(t, "pending", created.Status)

	w, resp = env.do(t, http.MethodPost, "/api/maintenance", schedule, tech)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SCHEDULE_OPEN", resp.Code)

	schedule["DeviceID"] = 99
	w, _ = env.do(t, http.MethodPost, "/api/maintenance", schedule, tech)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodPut, "/api/maintenance/1", map[string]any{"Status": "completed"}, tech)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", decode[scheduleBody](t, resp.Data).Status)

	w, resp = env.do(t, http.MethodGet, "/api/maintenance?status=bogus", nil, tech)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)

	w, _ = env.do(t, http.MethodDelete, "/api/maintenance/1", nil, tech)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/maintenance/1", nil, tech)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardAndActivity(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := tokenFor(t, 1, domainUser.RoleAdmin)

	for _, serial := range []string{"SN-A", "SN-B"} {
		w, _ := env.do(t, http.MethodPost, "/api/devices", newDevicePayload(serial), admin)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w, _ := env.do(t, http.MethodPut, "/api/devices/2", map[string]any{"Status": "maintenance"}, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := env.do(t, http.MethodGet, "/api/dashboard", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[map[string]any](t, resp.Data)
	assert.EqualValues(t, 2, summary["totalDevices"])
	assert.EqualValues(t, 1, summary["activeDevices"])
	assert.EqualValues(t, 1, summary["maintenanceDevices"])
	assert.EqualValues(t, 1, summary["openSchedules"])

	w, resp = env.do(t, http.MethodGet, "/api/activity-logs?page=1&page_size=2", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[struct {
		Logs  []map[string]any `json:"logs"`
		Total int64            `json:"total"`
	}](t, resp.Data)
	assert.EqualValues(t, 3, logs.Total)
	require.Len(t, logs.Logs, 2)
	assert.Equal(t, "UPDATE", logs.Logs[0]["Action"])
}

func TestLoginVerifyLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	require.NoError(t, env.users.Create(context.Background(), &domainUser.User{
		Username:     "alice",
		PasswordHash: hash,
		Role:         domainUser.RoleTechnician,
	}))

	w, resp := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)

	w, _ = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "alice", "password": "s3cret-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "authToken" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.NotEmpty(t, session.Value)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify-token", nil)
	req.AddCookie(&http.Cookie{Name: "authToken", Value: session.Value})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var verified envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verified))
	body := decode[map[string]map[string]any](t, verified.Data)
	assert.Equal(t, "alice", body["user"]["username"])

	w, _ = env.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "authToken" {
			cleared = c
		}
	}
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}
