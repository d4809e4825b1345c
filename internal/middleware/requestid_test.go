package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddlewareAssignsID(t *testing.T) {
	e := echo.New()
	mw := RequestIDMiddleware()

	var seen string
	next := func(c echo.Context) error {
		seen = c.Request().Header.Get("X-Request-ID")
		return c.NoContent(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(next)(c))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDMiddlewareKeepsCallerID(t *testing.T) {
	e := echo.New()
	mw := RequestIDMiddleware()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, mw(next)(c))

	assert.Equal(t, "caller-supplied", rec.Header().Get("X-Request-ID"))
}
