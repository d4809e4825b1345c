package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gstbilling/internal/invoice"
	"gstbilling/internal/model"
	"gstbilling/internal/tenant"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

// VoucherHandler implements voucher (invoice) operations on the session's
// partition.
type VoucherHandler struct {
	dir *tenant.Directory
	// now is the clock for invoice numbering; overridable in tests.
	now func() time.Time
}

// NewVoucherHandler creates a voucher handler
func NewVoucherHandler(dir *tenant.Directory) *VoucherHandler {
	return &VoucherHandler{dir: dir, now: time.Now}
}

// VoucherItemRequest is a single line of a voucher creation request
type VoucherItemRequest struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Qty       float64 `json:"qty"`
	TaxRate   float64 `json:"tax"`
	Unit      string  `json:"unit"`
}

// VoucherRequest defines the structure for voucher creation requests
type VoucherRequest struct {
	Date    string               `json:"date"`
	PartyID uint                 `json:"party_id"`
	Note    string               `json:"note"`
	Items   []VoucherItemRequest `json:"items"`
}

// List returns the company's vouchers in creation order, deriving display
// numbers for legacy rows that predate stored invoice numbers.
func (h *VoucherHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var vouchers []model.Voucher
	result := db.Where("company_id = ?", sess.CompanyID).
		Order("created_at asc, id asc").
		Find(&vouchers)
	if result.Error != nil {
		log.Error("Failed to list vouchers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve vouchers"})
	}

	for i := range vouchers {
		if vouchers[i].InvoiceNo == "" {
			vouchers[i].InvoiceNo = invoice.Fallback(i, vouchers[i].CreatedAt)
		}
	}

	return c.JSON(http.StatusOK, vouchers)
}

// Get returns a single voucher with its items
func (h *VoucherHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var voucher model.Voucher
	result := db.Preload("Items").Where("company_id = ?", sess.CompanyID).First(&voucher, id)
	if result.Error != nil {
		log.Warn("Voucher not found", zap.String("voucher_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "voucher not found"})
	}

	if voucher.InvoiceNo == "" {
		// Ordinal among the company's vouchers by (created_at, id); stable,
		// so the same legacy voucher always displays the same number.
		var position int64
		db.Model(&model.Voucher{}).
			Where("company_id = ? AND (created_at < ? OR (created_at = ? AND id < ?))",
				sess.CompanyID, voucher.CreatedAt, voucher.CreatedAt, voucher.ID).
			Count(&position)
		voucher.InvoiceNo = invoice.Fallback(int(position), voucher.CreatedAt)
	}

	return c.JSON(http.StatusOK, voucher)
}

// Create saves a new voucher, minting its invoice number from the company's
// current voucher count. The count and the insert are not wrapped in a
// transaction, so concurrent creates for one company can mint the same
// number.
func (h *VoucherHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req VoucherRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid voucher request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.PartyID == 0 || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a party and at least one item are required"})
	}

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	if req.Date == "" {
		req.Date = h.now().Format("2006-01-02")
	}

	voucher := model.Voucher{
		CompanyID: sess.CompanyID,
		Date:      req.Date,
		PartyID:   req.PartyID,
		Note:      req.Note,
	}

	for _, line := range req.Items {
		base := line.Price * line.Qty
		taxAmount := base * line.TaxRate / 100
		item := model.VoucherItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Qty:       line.Qty,
			TaxRate:   line.TaxRate,
			TaxAmount: taxAmount,
			Amount:    base + taxAmount,
			Unit:      line.Unit,
		}
		voucher.Subtotal += base
		voucher.TaxTotal += taxAmount
		voucher.Total += item.Amount
		voucher.Items = append(voucher.Items, item)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var existing int64
	if err := db.Model(&model.Voucher{}).
		Where("company_id = ?", sess.CompanyID).
		Count(&existing).Error; err != nil {
		log.Error("Failed to count vouchers", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save voucher"})
	}

	voucher.InvoiceNo = invoice.Next(int(existing), h.now())

	if result := db.Create(&voucher); result.Error != nil {
		log.Error("Failed to create voucher",
			zap.String("invoice_no", voucher.InvoiceNo),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save voucher"})
	}

	prometheus.VoucherCreatedCounter.Inc()
	log.Info("Voucher created",
		zap.Uint("voucher_id", voucher.ID),
		zap.String("invoice_no", voucher.InvoiceNo),
		zap.Float64("total", voucher.Total))
	return c.JSON(http.StatusCreated, voucher)
}

// Delete removes a voucher and its items
func (h *VoucherHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	var voucher model.Voucher
	result := db.Where("company_id = ?", sess.CompanyID).First(&voucher, id)
	if result.Error != nil {
		log.Warn("Voucher not found for deletion", zap.String("voucher_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "voucher not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := db.Where("voucher_id = ?", voucher.ID).Delete(&model.VoucherItem{}).Error; err != nil {
		log.Error("Failed to delete voucher items", zap.String("voucher_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete voucher"})
	}

	if err := db.Delete(&voucher).Error; err != nil {
		log.Error("Failed to delete voucher", zap.String("voucher_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete voucher"})
	}

	log.Info("Voucher deleted",
		zap.String("voucher_id", id),
		zap.String("invoice_no", voucher.InvoiceNo))
	return c.JSON(http.StatusOK, echo.Map{"message": "voucher deleted successfully"})
}
