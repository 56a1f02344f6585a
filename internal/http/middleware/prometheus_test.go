package middleware

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromApp(t *testing.T) (*fiber.App, *PrometheusMiddleware) {
	t.Helper()
	m, err := NewPrometheusMiddleware(prometheus.NewRegistry())
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/files", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Post("/files", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })
	app.Get("/files/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/too-big", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too large")
	})
	app.Get("/wrapped", func(c *fiber.Ctx) error {
		return fmt.Errorf("lookup: %w", fiber.ErrForbidden)
	})
	return app, m
}

func TestPrometheusMiddleware(t *testing.T) {
	app, m := newPromApp(t)

	for _, req := range []struct{ method, target string }{
		{"GET", "/files"},
		{"POST", "/files"},
		{"GET", "/too-big"},
		{"GET", "/wrapped"},
	} {
		_, err := app.Test(httptest.NewRequest(req.method, req.target, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/files", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("POST", "/files", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/too-big", "413")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/wrapped", "403")))
	assert.Equal(t, 4, testutil.CollectAndCount(m.requestDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	app, m := newPromApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
	assert.Equal(t, 0, testutil.CollectAndCount(m.requestDuration))
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	app, m := newPromApp(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := app.Test(httptest.NewRequest("GET", "/files/"+id, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/files/:id", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)
	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}

func TestPrometheusMiddleware_LabelsSurviveLaterRequests(t *testing.T) {
	app, m := newPromApp(t)

	for _, req := range []struct{ method, target string }{
		{"GET", "/files"},
		{"POST", "/files"},
		{"GET", "/files/a"},
		{"POST", "/files"},
		{"GET", "/files"},
	} {
		_, err := app.Test(httptest.NewRequest(req.method, req.target, nil))
		require.NoError(t, err)
	}

	expected := `
# HELP http_requests_total HTTP requests served, by route and final status.
# TYPE http_requests_total counter
http_requests_total{method="GET",path="/files",status="200"} 2
http_requests_total{method="GET",path="/files/:id",status="200"} 1
http_requests_total{method="POST",path="/files",status="201"} 2
`
	assert.NoError(t, testutil.CollectAndCompare(m.requestCount, strings.NewReader(expected)))
}
