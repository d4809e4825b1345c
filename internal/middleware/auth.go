package middleware

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gstbilling/internal/tenant"
	"gstbilling/pkg/jwtutil"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

// SessionMiddleware validates the session token, puts the company session in
// the context and triggers the orphan adoption sweep once per session.
func SessionMiddleware(jwtUtil *jwtutil.JWTUtil, dir *tenant.Directory) echo.MiddlewareFunc {
	// Session tokens already swept this process. Mirrors the original
	// per-session one-time marker; a restart re-arms the sweep, which is
	// harmless because a fully adopted partition adopts zero records.
	var mu sync.Mutex
	swept := make(map[string]struct{})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			claims, err := bearerClaims(c, jwtUtil)
			if err != nil {
				log.Warn("Invalid session token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}

			if claims.Vendor || claims.CompanyID == "" {
				log.Warn("Token has no company session")
				prometheus.RecordAuthError("not_a_company_session")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "company session required"})
			}

			sess := &tenant.Session{
				CompanyID:   claims.CompanyID,
				CompanyName: claims.CompanyName,
				RawConfig:   claims.DBConfig,
				TokenID:     claims.ID,
			}
			tenant.WithEcho(c, sess)

			mu.Lock()
			_, done := swept[sess.TokenID]
			if !done {
				swept[sess.TokenID] = struct{}{}
			}
			mu.Unlock()

			if !done {
				adoptOrphans(c, dir, sess)
			}

			return next(c)
		}
	}
}

// VendorAuthMiddleware admits only vendor-scoped session tokens.
func VendorAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			claims, err := bearerClaims(c, jwtUtil)
			if err != nil {
				log.Warn("Invalid vendor token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}

			if !claims.Vendor {
				log.Warn("Non-vendor token on vendor route")
				prometheus.RecordAuthError("vendor_access_denied")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "vendor access required"})
			}

			return next(c)
		}
	}
}

func bearerClaims(c echo.Context, jwtUtil *jwtutil.JWTUtil) (*jwtutil.SessionClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	claims, err := jwtUtil.ValidateToken(parts[1])
	if err != nil {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// adoptOrphans runs the sweep for a freshly seen session. Resolution or
// sweep problems never block the request; a tenant-scoped handler hitting
// the same configuration error will reject the operation itself.
func adoptOrphans(c echo.Context, dir *tenant.Directory, sess *tenant.Session) {
	log := logger.FromEcho(c)

	db, err := dir.Partition(sess)
	if err != nil {
		log.Warn("Skipping orphan sweep, partition unavailable",
			zap.String("company_id", sess.CompanyID),
			zap.Error(err))
		return
	}

	if n := tenant.AdoptOrphans(db, sess.CompanyID); n > 0 {
		prometheus.RecordOrphanAdoptions(n)
		log.Info("Adopted orphaned legacy records",
			zap.String("company_id", sess.CompanyID),
			zap.Int("count", n))
	}
}
