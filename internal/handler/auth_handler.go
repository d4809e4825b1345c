package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gstbilling/internal/model"
	"gstbilling/pkg/config"
	"gstbilling/pkg/jwtutil"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

// AuthHandler signs companies and the vendor operator in.
type AuthHandler struct {
	db     *gorm.DB
	jwt    *jwtutil.JWTUtil
	vendor config.VendorConfig
}

// NewAuthHandler creates an auth handler over the companies registry.
func NewAuthHandler(db *gorm.DB, jwt *jwtutil.JWTUtil, vendor config.VendorConfig) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt, vendor: vendor}
}

// Login authenticates a company by phone+PIN, or by the legacy
// userId+password pair for companies created before phone login.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Phone    string `json:"phone"`
		PIN      string `json:"pin"`
		UserID   string `json:"user_id"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var company model.Company
	var result *gorm.DB
	switch {
	case req.Phone != "" && req.PIN != "":
		result = h.db.Where("phone = ? AND pin = ?", req.Phone, req.PIN).First(&company)
	case req.UserID != "" && req.Password != "":
		result = h.db.Where("user_id = ? AND password = ?", req.UserID, req.Password).First(&company)
	default:
		prometheus.RecordAuthError("incomplete_credentials")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "credentials are required"})
	}

	if result.Error != nil {
		log.Warn("Login failed", zap.String("user_id", req.UserID), zap.String("phone", req.Phone))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !company.Active {
		log.Warn("Login attempt on deactivated company", zap.String("company_id", company.CompanyID))
		prometheus.RecordAuthError("inactive_company")
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "your account has been deactivated, please contact the vendor",
		})
	}

	token, err := h.jwt.GenerateCompanyToken(company.CompanyID, company.Name, company.DBConfig)
	if err != nil {
		log.Error("Failed to generate session token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Company logged in",
		zap.String("company_id", company.CompanyID),
		zap.String("company_name", company.Name))

	return c.JSON(http.StatusOK, echo.Map{
		"token":   token,
		"company": company,
	})
}

// VendorLogin authenticates the vendor operator against the configured
// credentials. The configured password is a bcrypt hash.
func (h *AuthHandler) VendorLogin(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.VendorLoginCounter.Inc()

	var req struct {
		UserID   string `json:"user_id"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse vendor login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if h.vendor.PasswordHash == "" {
		log.Error("Vendor login attempted but no vendor credentials configured")
		prometheus.RecordAuthError("vendor_not_configured")
		return c.JSON(http.StatusForbidden, echo.Map{"error": "vendor login is not configured"})
	}

	if req.UserID != h.vendor.UserID ||
		bcrypt.CompareHashAndPassword([]byte(h.vendor.PasswordHash), []byte(req.Password)) != nil {
		log.Warn("Vendor login failed", zap.String("user_id", req.UserID))
		prometheus.RecordAuthError("invalid_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := h.jwt.GenerateVendorToken()
	if err != nil {
		log.Error("Failed to generate vendor token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("Vendor logged in")
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
