package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gstbilling/internal/model"
)

func sweepTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Party{}, &model.Product{}, &model.Voucher{}, &model.VoucherItem{},
	))
	return db
}

func TestAdoptOrphansTagsUntaggedRecords(t *testing.T) {
	db := sweepTestDB(t)

	for _, p := range []model.Party{
		{Name: "Alfa Traders", CompanyID: "c1"},
		{Name: "Bravo Metals", CompanyID: "c1"},
		{Name: "Charlie Textiles", CompanyID: "c1"},
		{Name: "Delta Exports"},
		{Name: "Echo Stores"},
	} {
		require.NoError(t, db.Create(&p).Error)
	}

	adopted := AdoptOrphans(db, "c1")
	assert.Equal(t, 2, adopted)

	var untagged int64
	db.Model(&model.Party{}).Where("company_id IS NULL OR company_id = ''").Count(&untagged)
	assert.Zero(t, untagged)

	var tagged int64
	db.Model(&model.Party{}).Where("company_id = ?", "c1").Count(&tagged)
	assert.EqualValues(t, 5, tagged)

	// Re-running against the fully tagged set adopts nothing.
	assert.Zero(t, AdoptOrphans(db, "c1"))
}

func TestAdoptOrphansCoversAllCollections(t *testing.T) {
	db := sweepTestDB(t)

	require.NoError(t, db.Create(&model.Party{Name: "Orphan Party"}).Error)
	require.NoError(t, db.Create(&model.Product{Name: "Orphan Product", Price: 10}).Error)
	require.NoError(t, db.Create(&model.Voucher{Date: "2025-04-01"}).Error)
	require.NoError(t, db.Create(&model.Voucher{Date: "2025-04-02", CompanyID: "c2"}).Error)

	assert.Equal(t, 3, AdoptOrphans(db, "c1"))

	var other model.Voucher
	require.NoError(t, db.Where("company_id = ?", "c2").First(&other).Error)
	assert.Equal(t, "2025-04-02", other.Date, "records of other tenants are untouched")
}

func TestAdoptOrphansDoesNotTouchTaggedRecords(t *testing.T) {
	db := sweepTestDB(t)

	require.NoError(t, db.Create(&model.Party{Name: "Kept", CompanyID: "c9"}).Error)

	assert.Zero(t, AdoptOrphans(db, "c1"))

	var p model.Party
	require.NoError(t, db.First(&p).Error)
	assert.Equal(t, "c9", p.CompanyID)
}
