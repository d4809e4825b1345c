package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gstbilling/internal/model"
	"gstbilling/internal/tenant"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

// ProductHandler implements product CRUD on the session's partition.
type ProductHandler struct {
	dir *tenant.Directory
}

// NewProductHandler creates a product handler
func NewProductHandler(dir *tenant.Directory) *ProductHandler {
	return &ProductHandler{dir: dir}
}

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	HSN         string  `json:"hsn"`
	TaxRate     float64 `json:"tax"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
}

// List returns the company's products
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var products []model.Product
	result := db.Where("company_id = ?", sess.CompanyID).Order("created_at asc").Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, products)
}

// Get returns a single product by ID
func (h *ProductHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var product model.Product
	result := db.Where("company_id = ?", sess.CompanyID).First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

// Create adds a new product
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name == "" || req.Price <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive price are required"})
	}
	if req.Unit == "" {
		req.Unit = "Pcs"
	}

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	product := model.Product{
		CompanyID:   sess.CompanyID,
		Name:        req.Name,
		Price:       req.Price,
		HSN:         req.HSN,
		TaxRate:     req.TaxRate,
		Unit:        req.Unit,
		Description: req.Description,
	}

	if result := db.Create(&product); result.Error != nil {
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save product"})
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Float64("price", product.Price))
	return c.JSON(http.StatusCreated, product)
}

// Update edits an existing product
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid product request", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	var product model.Product
	result := db.Where("company_id = ?", sess.CompanyID).First(&product, id)
	if result.Error != nil {
		log.Warn("Product not found for update", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	product.Name = req.Name
	product.Price = req.Price
	product.HSN = req.HSN
	product.TaxRate = req.TaxRate
	product.Unit = req.Unit
	product.Description = req.Description

	if result := db.Save(&product); result.Error != nil {
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save product"})
	}

	log.Info("Product updated", zap.String("product_id", id), zap.String("name", product.Name))
	return c.JSON(http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := db.Where("company_id = ?", sess.CompanyID).Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.String("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	log.Info("Product deleted", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}
