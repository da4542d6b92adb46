package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devicehub/devicehub/internal/infrastructure/auth"
	"github.com/devicehub/devicehub/internal/infrastructure/config"
	sharedConfig "github.com/devicehub/devicehub/internal/shared/config"
	"github.com/devicehub/devicehub/internal/shared/constants"
	"github.com/devicehub/devicehub/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Database: sharedConfig.DatabaseConfig{Driver: sharedConfig.DriverMemory},
		Auth: sharedConfig.AuthConfig{
			JWT: sharedConfig.JWTConfig{Secret: "test-secret", AccessExpMinutes: 60},
		},
		Consistency: sharedConfig.ConsistencyConfig{
			ScanPageSize:   50,
			LockTTL:        5 * time.Second,
			LockWait:       time.Second,
			SyncMaxRetries: 3,
			ReportTTL:      time.Hour,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type client struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func (cl *client) do(method, path string, body any) (int, envelope) {
	cl.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(cl.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set(constants.HeaderAuthorization, "Bearer "+cl.token)
	}
	w := httptest.NewRecorder()
	cl.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(cl.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func newTestContainer(t *testing.T, cfg *config.Config, opts ...Option) *Container {
	t.Helper()
	c, err := NewContainer(nil, cfg, logger.NewNopLogger(), opts...)
	require.NoError(t, err)
	c.SetupRoutes()
	t.Cleanup(c.Shutdown)
	return c
}

func TestContainer_AssociationRoundTrip(t *testing.T) {
	c := newTestContainer(t, testConfig())
	cl := &client{t: t, engine: c.GetEngine()}

	code, _ := cl.do(http.MethodPost, "/products", map[string]any{"name": "Probes", "code": "PRB", "device_type": "sensor"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = cl.do(http.MethodPost, "/devices", map[string]any{"name": "probe-1", "serial_number": "SN-1", "device_type": "sensor"})
	require.Equal(t, http.StatusCreated, code)

	code, env := cl.do(http.MethodPost, "/devices/1/associate", map[string]any{"product_id": 1})
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"ok":true,"issues":[]}`, string(env.Data))

	code, env = cl.do(http.MethodGet, "/products/1/devices", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":1`)
	assert.Contains(t, string(env.Data), "probe-1")

	code, env = cl.do(http.MethodGet, "/devices/1/verify?action=associate&product_id=1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"ok":true`)

	code, env = cl.do(http.MethodGet, "/devices/1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"product_code":"PRB"`)

	code, _ = cl.do(http.MethodPost, "/devices/1/disassociate", nil)
	require.Equal(t, http.StatusOK, code)
	code, env = cl.do(http.MethodGet, "/products/1/devices", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":0`)

	code, env = cl.do(http.MethodGet, "/devices/99", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
}

func TestContainer_AdminRoutesRequireAdminToken(t *testing.T) {
	c := newTestContainer(t, testConfig())
	cl := &client{t: t, engine: c.GetEngine()}

	code, _ := cl.do(http.MethodPost, "/admin/consistency/check", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	viewer, _, err := c.JWTService().Generate("viewer", "viewer", time.Hour)
	require.NoError(t, err)
	cl.token = viewer
	code, _ = cl.do(http.MethodPost, "/admin/consistency/check", nil)
	assert.Equal(t, http.StatusForbidden, code)

	admin, _, err := c.JWTService().Generate("ops", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)
	cl.token = admin

	code, _ = cl.do(http.MethodGet, "/admin/consistency/report", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env := cl.do(http.MethodPost, "/admin/consistency/check", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"consistent":true`)

	code, _ = cl.do(http.MethodGet, "/admin/consistency/report", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = cl.do(http.MethodPost, "/admin/consistency/repair", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"before"`)
}

func TestContainer_HealthAndMetrics(t *testing.T) {
	c := newTestContainer(t, testConfig())
	cl := &client{t: t, engine: c.GetEngine()}

	code, env := cl.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"status":"ok"`)

	code, _ = cl.do(http.MethodPost, "/devices", map[string]any{"name": "cam", "serial_number": "C-1", "device_type": "camera"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = cl.do(http.MethodPost, "/devices/1/associate", map[string]any{"product_id": 5})
	require.Equal(t, http.StatusNotFound, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	c.GetEngine().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `devicehub_association_sync_total{action="associate",result="failure"} 1`)
	assert.NotEmpty(t, w.Header().Get(constants.HeaderXRequestID))
}

func TestContainer_RedisBackedLockAndReport(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.Redis.Enabled = true
	c := newTestContainer(t, cfg, WithRedisClient(rdb))
	cl := &client{t: t, engine: c.GetEngine()}

	admin, _, err := c.JWTService().Generate("ops", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)
	cl.token = admin

	code, _ := cl.do(http.MethodPost, "/admin/consistency/check", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, mr.Exists(constants.RedisReportKey))

	code, env := cl.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"redis":"up"`)
}

func TestContainer_AdminRateLimitWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Server.AdminRatePerMinute = 2
	c := newTestContainer(t, cfg, WithRedisClient(rdb))
	cl := &client{t: t, engine: c.GetEngine()}

	admin, _, err := c.JWTService().Generate("ops", auth.RoleAdmin, time.Hour)
	require.NoError(t, err)
	cl.token = admin

	for i := 0; i < 2; i++ {
		code, _ := cl.do(http.MethodPost, "/admin/consistency/check", nil)
		require.Equal(t, http.StatusOK, code)
	}
	code, env := cl.do(http.MethodPost, "/admin/consistency/check", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.False(t, env.Success)

	code, _ = cl.do(http.MethodGet, "/devices", nil)
	assert.Equal(t, http.StatusOK, code, "public routes are not limited")
}

func TestContainer_ReconcileScheduler(t *testing.T) {
	cfg := testConfig()
	c := newTestContainer(t, cfg)
	assert.Nil(t, c.SchedulerManager())

	cfg = testConfig()
	cfg.Consistency.ReconcileEnabled = true
	cfg.Consistency.ReconcileInterval = time.Hour
	c = newTestContainer(t, cfg)
	require.NotNil(t, c.SchedulerManager())
	assert.Len(t, c.SchedulerManager().Jobs(), 1)
}

func TestContainer_DatabaseDriverNeedsConnection(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = sharedConfig.DriverSQLite
	_, err := NewContainer(nil, cfg, logger.NewNopLogger())
	assert.Error(t, err)
}
