package tenant

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"gstbilling/internal/model"
	"gstbilling/pkg/config"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

// ConfigurationError means a company's connection descriptor is missing or
// invalid while a tenant-scoped operation was attempted. The operation must
// be rejected: falling back to a shared store risks writing one tenant's
// data into another tenant's database.
type ConfigurationError struct {
	CompanyID string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("tenant %s: %s", e.CompanyID, e.Reason)
}

// Opener brings up a database connection for a DSN. Production uses the
// postgres driver; tests inject sqlite.
type Opener func(dsn string) (*gorm.DB, error)

// Directory maps company identifiers to live partition handles. Handles are
// cached by partition key for the life of the process and shared across
// sessions; callers borrow them and never close them.
type Directory struct {
	shared   *gorm.DB
	defaults *config.DBConfig
	open     Opener

	mu      sync.Mutex
	handles map[string]*gorm.DB
}

// NewDirectory creates a directory backed by the shared database and the
// given opener for per-company partitions.
func NewDirectory(shared *gorm.DB, defaults *config.DBConfig, open Opener) *Directory {
	return &Directory{
		shared:   shared,
		defaults: defaults,
		open:     open,
		handles:  make(map[string]*gorm.DB),
	}
}

// Shared returns the default database handle. It holds the companies
// registry and serves requests with no active session.
func (d *Directory) Shared() *gorm.DB {
	return d.shared
}

// PartitionKey derives the cache key for a company's partition.
func PartitionKey(companyID string) string {
	return "tenant_" + companyID
}

// PartitionFor resolves the partition for a company. A repeat call with the
// same company returns the identical cached handle. A missing or invalid
// descriptor is a ConfigurationError; an opener failure is surfaced as-is.
// There is no fallback path.
func (d *Directory) PartitionFor(companyID, rawConfig string) (*gorm.DB, error) {
	desc := ResolveConfig(rawConfig)
	if desc == nil {
		return nil, &ConfigurationError{
			CompanyID: companyID,
			Reason:    "connection descriptor missing or invalid",
		}
	}

	key := PartitionKey(companyID)

	// Opening a partition dials and migrates, so check-then-create is
	// serialized rather than raced.
	d.mu.Lock()
	defer d.mu.Unlock()

	if db, ok := d.handles[key]; ok {
		return db, nil
	}

	db, err := d.open(desc.DSN(d.defaults))
	if err != nil {
		return nil, fmt.Errorf("open partition %s: %w", key, err)
	}

	if err := db.AutoMigrate(
		&model.Party{},
		&model.Product{},
		&model.Voucher{},
		&model.VoucherItem{},
	); err != nil {
		return nil, fmt.Errorf("migrate partition %s: %w", key, err)
	}

	d.handles[key] = db
	prometheus.OpenPartitionsGauge.Inc()
	logger.GetLogger().Info("tenant partition opened",
		zap.String("partition", key),
		zap.String("dbname", desc.DBName))

	return db, nil
}

// Partition resolves the data partition for a session. No session means no
// tenant-scoped data is implied yet, so the shared handle is returned.
func (d *Directory) Partition(s *Session) (*gorm.DB, error) {
	if s == nil {
		return d.shared, nil
	}
	return d.PartitionFor(s.CompanyID, s.RawConfig)
}
