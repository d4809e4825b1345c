package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gstbilling/internal/model"
	"gstbilling/internal/tenant"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

// CompanyHandler implements the vendor's company registry operations.
type CompanyHandler struct {
	db  *gorm.DB
	dir *tenant.Directory
}

// NewCompanyHandler creates a company handler over the shared registry. The
// directory is needed to reach a company's partition when a delete cascades.
func NewCompanyHandler(db *gorm.DB, dir *tenant.Directory) *CompanyHandler {
	return &CompanyHandler{db: db, dir: dir}
}

// CompanyRequest defines the structure for company creation/update requests
type CompanyRequest struct {
	Name     string `json:"company_name"`
	UserID   string `json:"user_id"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	PIN      string `json:"pin"`
	Email    string `json:"email"`
	GST      string `json:"gst"`
	Address  string `json:"address"`
	DBConfig string `json:"db_config"`
}

func (r *CompanyRequest) validate() string {
	if r.Name == "" || r.UserID == "" || r.Password == "" || r.Email == "" ||
		r.Phone == "" || r.GST == "" || r.Address == "" {
		return "all fields are strictly required"
	}
	if !emailPattern.MatchString(r.Email) {
		return "invalid email format"
	}
	if !phonePattern.MatchString(r.Phone) {
		return "phone number must be exactly 10 digits"
	}
	if len(r.GST) != 15 {
		return "GST number must be exactly 15 characters"
	}
	return ""
}

// List returns every company in the registry
func (h *CompanyHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())

	var companies []model.Company
	if result := h.db.Order("created_at asc").Find(&companies); result.Error != nil {
		log.Error("Failed to list companies", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve companies"})
	}

	return c.JSON(http.StatusOK, companies)
}

// Create registers a new company
func (h *CompanyHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("create")

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid company request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if msg := req.validate(); msg != "" {
		log.Warn("Company validation failed", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var count int64
	h.db.Model(&model.Company{}).Where("user_id = ?", req.UserID).Count(&count)
	if count > 0 {
		log.Warn("User ID already exists", zap.String("user_id", req.UserID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "user ID already exists"})
	}

	company := model.Company{
		CompanyID: uuid.New().String(),
		Name:      req.Name,
		UserID:    req.UserID,
		Password:  req.Password,
		Phone:     req.Phone,
		PIN:       req.PIN,
		Email:     req.Email,
		GST:       strings.ToUpper(req.GST),
		Address:   req.Address,
		DBConfig:  req.DBConfig,
		Active:    true,
	}

	if result := h.db.Create(&company); result.Error != nil {
		log.Error("Failed to create company", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save company"})
	}

	log.Info("Company created",
		zap.String("company_id", company.CompanyID),
		zap.String("name", company.Name))
	return c.JSON(http.StatusCreated, company)
}

// Update edits a company's details
func (h *CompanyHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("update")

	id := c.Param("id")

	var req CompanyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid company request", zap.String("company_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if msg := req.validate(); msg != "" {
		log.Warn("Company validation failed", zap.String("company_id", id), zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	var company model.Company
	if result := h.db.Where("company_id = ?", id).First(&company); result.Error != nil {
		log.Error("Company not found", zap.String("company_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	var count int64
	h.db.Model(&model.Company{}).
		Where("user_id = ? AND company_id != ?", req.UserID, id).
		Count(&count)
	if count > 0 {
		log.Warn("User ID already exists", zap.String("user_id", req.UserID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "user ID already exists"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	company.Name = req.Name
	company.UserID = req.UserID
	company.Password = req.Password
	company.Phone = req.Phone
	company.PIN = req.PIN
	company.Email = req.Email
	company.GST = strings.ToUpper(req.GST)
	company.Address = req.Address
	company.DBConfig = req.DBConfig

	if result := h.db.Save(&company); result.Error != nil {
		log.Error("Failed to update company", zap.String("company_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save company"})
	}

	log.Info("Company updated", zap.String("company_id", id), zap.String("name", company.Name))
	return c.JSON(http.StatusOK, company)
}

// SetStatus activates or deactivates a company. A deactivated company can
// no longer log in; active sessions are rejected on their next login.
func (h *CompanyHandler) SetStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("status")

	id := c.Param("id")

	var req struct {
		Active bool `json:"is_active"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid status request", zap.String("company_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	result := h.db.Model(&model.Company{}).
		Where("company_id = ?", id).
		Update("active", req.Active)
	if result.Error != nil {
		log.Error("Failed to change company status", zap.String("company_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to change company status"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	log.Info("Company status changed",
		zap.String("company_id", id),
		zap.Bool("is_active", req.Active))
	return c.JSON(http.StatusOK, echo.Map{"message": "company status updated", "is_active": req.Active})
}

// Delete removes a company and cascades into its partition, deleting the
// company's parties, products and vouchers. An unresolvable partition skips
// the cascade but still removes the registry entry.
func (h *CompanyHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCompanyOperation("delete")

	id := c.Param("id")

	var company model.Company
	if result := h.db.Where("company_id = ?", id).First(&company); result.Error != nil {
		log.Error("Company not found", zap.String("company_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "company not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if db, err := h.dir.PartitionFor(company.CompanyID, company.DBConfig); err != nil {
		var cfgErr *tenant.ConfigurationError
		if errors.As(err, &cfgErr) {
			log.Warn("Skipping cascade, company has no usable partition",
				zap.String("company_id", id))
		} else {
			log.Error("Failed to reach company partition for cascade",
				zap.String("company_id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "company database unavailable"})
		}
	} else {
		h.cascadeDelete(db, company.CompanyID, log)
	}

	if result := h.db.Delete(&company); result.Error != nil {
		log.Error("Failed to delete company", zap.String("company_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete company"})
	}

	log.Info("Company deleted", zap.String("company_id", id), zap.String("name", company.Name))
	return c.JSON(http.StatusOK, echo.Map{"message": "company deleted successfully"})
}

func (h *CompanyHandler) cascadeDelete(db *gorm.DB, companyID string, log *zap.Logger) {
	var voucherIDs []uint
	db.Model(&model.Voucher{}).Where("company_id = ?", companyID).Pluck("id", &voucherIDs)
	if len(voucherIDs) > 0 {
		if err := db.Where("voucher_id IN ?", voucherIDs).Delete(&model.VoucherItem{}).Error; err != nil {
			log.Error("Failed to delete voucher items", zap.String("company_id", companyID), zap.Error(err))
		}
	}

	for _, m := range []interface{}{&model.Voucher{}, &model.Product{}, &model.Party{}} {
		if err := db.Where("company_id = ?", companyID).Delete(m).Error; err != nil {
			log.Error("Failed to cascade delete company records",
				zap.String("company_id", companyID), zap.Error(err))
		}
	}
}
