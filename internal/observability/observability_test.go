package observability

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/todo-service/internal/config"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, parseLevel(" DEBUG "))
	require.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	require.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
	require.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestBuildLogger_JSONWithServiceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := buildLogger(
		config.LoggerConfig{Level: "warn"},
		config.AppConfig{Name: "todo-service", Env: "production", Version: "1.2.3"},
		[]string{path},
	)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "todo-service", entry["service"])
	require.Equal(t, "1.2.3", entry["version"])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/api/todos", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/api/todos", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/todos", "GET", "invalid_token")
	m.RecordAuthRejection("expired")

	snap := m.Snapshot()
	require.Equal(t, int64(2), snap.Requests["/api/todos|GET|200"])
	require.Equal(t, int64(1), snap.Errors["/api/todos|GET|invalid_token"])
	require.Equal(t, int64(1), snap.AuthRejections["expired"])
	require.Equal(t, 10*time.Millisecond, snap.TotalLatency)

	snap.AuthRejections["expired"] = 99
	require.Equal(t, int64(1), m.Snapshot().AuthRejections["expired"])

	var nilMetrics *Metrics
	nilMetrics.RecordAuthRejection("expired")
	require.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRouteKey(t *testing.T) {
	app := fiber.New()
	var keys []string
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		keys = append(keys, RouteKey(c))
		return err
	})
	app.Get("/api/todos/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, path := range []string{"/api/todos/1", "/api/todos/2", "/", "/random/abc", "/random/def"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	require.Equal(t, []string{
		"/api/todos/:id", "/api/todos/:id", "/", UnmatchedRoute, UnmatchedRoute,
	}, keys)
}
