package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutes(t *testing.T) {
	m := NewHTTPMetrics("ledger")
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/expenses/:id", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/boom", func(echo.Context) error { return errors.New("boom") })
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, path := range []string{"/expenses/1", "/expenses/2", "/boom", "/nowhere"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `ledger_http_requests_total{method="GET",path="/expenses/:id",status="200"} 2`)
	require.Contains(t, body, `ledger_http_requests_total{method="GET",path="/boom",status="500"} 1`)
	require.Contains(t, body, `status="404"`)
	require.Contains(t, body, "ledger_http_request_duration_seconds_bucket")
	require.Contains(t, body, "go_goroutines")
}

func TestSeparateRegistries(t *testing.T) {
	require.NotPanics(t, func() {
		NewHTTPMetrics("a")
		NewHTTPMetrics("a")
	})
}
