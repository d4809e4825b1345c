package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gstbilling/internal/tenant"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

// sessionPartition resolves the current session's partition, writing the
// error response itself when resolution fails. Handlers call it once per
// operation rather than caching a handle, because the session and therefore
// the correct partition can change between requests.
func sessionPartition(c echo.Context, dir *tenant.Directory) (*gorm.DB, *tenant.Session, bool) {
	log := logger.FromEcho(c)

	sess := tenant.FromEcho(c)
	if sess == nil {
		log.Error("No session on a tenant-scoped route")
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "company session required"})
		return nil, nil, false
	}

	db, err := dir.Partition(sess)
	if err != nil {
		var cfgErr *tenant.ConfigurationError
		if errors.As(err, &cfgErr) {
			prometheus.RecordPartitionResolution("config_error")
			log.Error("Tenant database not configured",
				zap.String("company_id", sess.CompanyID),
				zap.Error(err))
			_ = c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "company database is not configured; contact your vendor",
			})
			return nil, nil, false
		}

		prometheus.RecordPartitionResolution("open_error")
		log.Error("Failed to open tenant partition",
			zap.String("company_id", sess.CompanyID),
			zap.Error(err))
		_ = c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "company database unavailable",
		})
		return nil, nil, false
	}

	prometheus.RecordPartitionResolution("ok")
	return db, sess, true
}
