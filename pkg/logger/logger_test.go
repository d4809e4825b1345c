package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromEchoFallsBackOutsideRequestScope(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.NotNil(t, FromEcho(c), "must never return nil")
}

func TestMiddlewareSeedsRequestLogger(t *testing.T) {
	e := echo.New()
	mw := Middleware()

	var seen *zap.Logger
	next := func(c echo.Context) error {
		seen = FromEcho(c)
		return c.NoContent(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(next)(c))

	require.NotNil(t, seen)
	assert.NotSame(t, GetLogger(), seen, "request logger carries request fields")
}
