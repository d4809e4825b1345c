package tenant

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gstbilling/internal/model"
	"gstbilling/pkg/logger"
)

// AdoptOrphans attaches ownerless legacy records in the partition to the
// given company and returns how many were adopted. Re-running after full
// adoption finds nothing; the once-per-session gate is the caller's job.
// Failures are logged and skipped: adoption is a best-effort correction,
// never a precondition for using the app.
func AdoptOrphans(db *gorm.DB, companyID string) int {
	log := logger.GetLogger()

	var adopted int64
	for _, m := range []interface{}{
		&model.Party{},
		&model.Product{},
		&model.Voucher{},
	} {
		res := db.Model(m).
			Where("company_id IS NULL OR company_id = ''").
			Update("company_id", companyID)
		if res.Error != nil {
			log.Warn("orphan adoption failed",
				zap.String("company_id", companyID),
				zap.Error(res.Error))
			continue
		}
		adopted += res.RowsAffected
	}

	return int(adopted)
}
