package tenant

import (
	"github.com/labstack/echo/v4"
)

// Session is the logged-in company's snapshot, built by the auth middleware
// from the session token and passed explicitly to partition resolution.
type Session struct {
	CompanyID   string
	CompanyName string
	// RawConfig is the company's connection descriptor exactly as stored,
	// possibly malformed.
	RawConfig string
	// TokenID identifies the session for once-per-session gating.
	TokenID string
}

const sessionKey = "session"

// WithEcho stores the session in the Echo context.
func WithEcho(c echo.Context, s *Session) {
	c.Set(sessionKey, s)
}

// FromEcho retrieves the session from the Echo context. Nil means no active
// company session.
func FromEcho(c echo.Context) *Session {
	s, ok := c.Get(sessionKey).(*Session)
	if !ok {
		return nil
	}
	return s
}
