package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"gstbilling/internal/model"
	"gstbilling/internal/tenant"
	"gstbilling/pkg/config"
)

func testDirectory(t *testing.T) *tenant.Directory {
	t.Helper()
	defaults := &config.DBConfig{
		Host: "localhost", Port: "5432", User: "postgres",
		Password: "password", SSLMode: "disable",
	}
	return tenant.NewDirectory(nil, defaults, func(dsn string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	})
}

func testSession(companyID string) *tenant.Session {
	return &tenant.Session{
		CompanyID: companyID,
		RawConfig: `{"dbname": "tenant_` + companyID + `"}`,
		TokenID:   "tok-" + companyID,
	}
}

func newTestContext(e *echo.Echo, method, target, body string, sess *tenant.Session) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		tenant.WithEcho(c, sess)
	}
	return c, rec
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.August, 31, 10, 0, 0, 0, time.UTC)
	}
}

func TestCreateVoucherMintsSequentialInvoiceNumbers(t *testing.T) {
	e := echo.New()
	dir := testDirectory(t)
	h := NewVoucherHandler(dir)
	h.now = fixedClock()

	sess := testSession("c1")
	body := `{"party_id": 1, "items": [{"product_id": 1, "name": "Steel Rod", "price": 100, "qty": 2, "tax": 18, "unit": "Kg"}]}`

	c, rec := newTestContext(e, http.MethodPost, "/vouchers", body, sess)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var first model.Voucher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "INV/25-26/001", first.InvoiceNo)
	assert.InDelta(t, 200.0, first.Subtotal, 0.001)
	assert.InDelta(t, 36.0, first.TaxTotal, 0.001)
	assert.InDelta(t, 236.0, first.Total, 0.001)
	require.Len(t, first.Items, 1)
	assert.InDelta(t, 236.0, first.Items[0].Amount, 0.001)

	c, rec = newTestContext(e, http.MethodPost, "/vouchers", body, sess)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var second model.Voucher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, "INV/25-26/002", second.InvoiceNo)
}

func TestCreateVoucherValidation(t *testing.T) {
	e := echo.New()
	h := NewVoucherHandler(testDirectory(t))
	h.now = fixedClock()

	c, rec := newTestContext(e, http.MethodPost, "/vouchers", `{"party_id": 0, "items": []}`, testSession("c1"))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateVoucherFailsClosedWithoutTenantConfig(t *testing.T) {
	e := echo.New()
	h := NewVoucherHandler(testDirectory(t))
	h.now = fixedClock()

	sess := &tenant.Session{CompanyID: "c1", RawConfig: "", TokenID: "tok-c1"}
	body := `{"party_id": 1, "items": [{"name": "Steel Rod", "price": 100, "qty": 1}]}`

	c, rec := newTestContext(e, http.MethodPost, "/vouchers", body, sess)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "not configured")
}

func TestListVouchersDerivesFallbackNumbers(t *testing.T) {
	e := echo.New()
	dir := testDirectory(t)
	h := NewVoucherHandler(dir)
	h.now = fixedClock()

	sess := testSession("c1")
	db, err := dir.PartitionFor(sess.CompanyID, sess.RawConfig)
	require.NoError(t, err)

	// Legacy rows without stored invoice numbers.
	base := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		v := model.Voucher{
			CompanyID: "c1",
			Date:      base.AddDate(0, 0, i).Format("2006-01-02"),
			PartyID:   1,
			CreatedAt: base.AddDate(0, 0, i),
		}
		require.NoError(t, db.Create(&v).Error)
	}

	c, rec := newTestContext(e, http.MethodGet, "/vouchers", "", sess)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var vouchers []model.Voucher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vouchers))
	require.Len(t, vouchers, 3)
	assert.Equal(t, "INV/24-25/001", vouchers[0].InvoiceNo)
	assert.Equal(t, "INV/24-25/002", vouchers[1].InvoiceNo)
	assert.Equal(t, "INV/24-25/003", vouchers[2].InvoiceNo)

	// Re-deriving yields the same numbers while the set is unchanged.
	c, rec = newTestContext(e, http.MethodGet, "/vouchers", "", sess)
	require.NoError(t, h.List(c))
	var again []model.Voucher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &again))
	for i := range vouchers {
		assert.Equal(t, vouchers[i].InvoiceNo, again[i].InvoiceNo)
	}
}

func TestGetVoucherFallbackMatchesListOrdinal(t *testing.T) {
	e := echo.New()
	dir := testDirectory(t)
	h := NewVoucherHandler(dir)
	h.now = fixedClock()

	sess := testSession("c1")
	db, err := dir.PartitionFor(sess.CompanyID, sess.RawConfig)
	require.NoError(t, err)

	base := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	var ids []uint
	for i := 0; i < 3; i++ {
		v := model.Voucher{CompanyID: "c1", PartyID: 1, CreatedAt: base.AddDate(0, 0, i)}
		require.NoError(t, db.Create(&v).Error)
		ids = append(ids, v.ID)
	}

	c, rec := newTestContext(e, http.MethodGet, "/vouchers/:id", "", sess)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(ids[1])))
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var v model.Voucher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, "INV/24-25/002", v.InvoiceNo)
}

func TestVoucherDeleteRemovesItems(t *testing.T) {
	e := echo.New()
	dir := testDirectory(t)
	h := NewVoucherHandler(dir)
	h.now = fixedClock()

	sess := testSession("c1")
	body := `{"party_id": 1, "items": [{"name": "Steel Rod", "price": 50, "qty": 1, "tax": 5}]}`
	c, rec := newTestContext(e, http.MethodPost, "/vouchers", body, sess)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Voucher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	c, rec = newTestContext(e, http.MethodDelete, "/vouchers/:id", "", sess)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(created.ID)))
	require.NoError(t, h.Delete(c))
	require.Equal(t, http.StatusOK, rec.Code)

	db, err := dir.PartitionFor(sess.CompanyID, sess.RawConfig)
	require.NoError(t, err)

	var items int64
	db.Model(&model.VoucherItem{}).Where("voucher_id = ?", created.ID).Count(&items)
	assert.Zero(t, items)
}
