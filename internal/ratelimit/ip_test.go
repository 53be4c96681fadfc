package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

func TestNewIPLimiter_Disabled(t *testing.T) {
	require.Nil(t, NewIPLimiter(IPConfig{}))
	require.Nil(t, NewIPLimiter(IPConfig{RequestsPerWindow: 5}))

	var l *IPLimiter
	require.True(t, l.Allow("10.0.0.1"))
}

func TestIPLimiter_Allow(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewIPLimiter(IPConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))
	require.True(t, l.Allow("10.0.0.2"))

	now = now.Add(30 * time.Second)
	require.True(t, l.Allow("10.0.0.1"))
	require.False(t, l.Allow("10.0.0.1"))
}

func TestIPLimiter_DropsIdleEntries(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewIPLimiter(IPConfig{RequestsPerWindow: 1, Window: time.Minute})
	l.now = func() time.Time { return now }

	require.True(t, l.Allow("10.0.0.1"))
	now = now.Add(idleLimiterTTL + time.Second)
	require.True(t, l.Allow("10.0.0.2"))

	l.mu.Lock()
	defer l.mu.Unlock()
	require.NotContains(t, l.entries, "10.0.0.1")
	require.Contains(t, l.entries, "10.0.0.2")
}

func TestIPLimiter_Middleware(t *testing.T) {
	l := NewIPLimiter(IPConfig{RequestsPerWindow: 1, Window: time.Hour, Burst: 1})
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Code})
		},
	})
	app.Post("/login", l.Middleware(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
}
