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

// PartyHandler implements party (customer) CRUD on the session's partition.
type PartyHandler struct {
	dir *tenant.Directory
}

// NewPartyHandler creates a party handler
func NewPartyHandler(dir *tenant.Directory) *PartyHandler {
	return &PartyHandler{dir: dir}
}

// PartyRequest defines the structure for party creation/update requests
type PartyRequest struct {
	Name    string `json:"name"`
	Mobile  string `json:"mobile"`
	Email   string `json:"email"`
	GST     string `json:"gst"`
	Address string `json:"address"`
}

// List returns the company's parties
func (h *PartyHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var parties []model.Party
	result := db.Where("company_id = ?", sess.CompanyID).Order("created_at asc").Find(&parties)
	if result.Error != nil {
		log.Error("Failed to list parties", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve parties"})
	}

	return c.JSON(http.StatusOK, parties)
}

// Get returns a single party by ID
func (h *PartyHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var party model.Party
	result := db.Where("company_id = ?", sess.CompanyID).First(&party, id)
	if result.Error != nil {
		log.Warn("Party not found", zap.String("party_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "party not found"})
	}

	return c.JSON(http.StatusOK, party)
}

// Create adds a new party
func (h *PartyHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)

	var req PartyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid party request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	party := model.Party{
		CompanyID: sess.CompanyID,
		Name:      req.Name,
		Mobile:    req.Mobile,
		Email:     req.Email,
		GST:       req.GST,
		Address:   req.Address,
	}

	if result := db.Create(&party); result.Error != nil {
		log.Error("Failed to create party", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save party"})
	}

	log.Info("Party created",
		zap.Uint("party_id", party.ID),
		zap.String("name", party.Name))
	return c.JSON(http.StatusCreated, party)
}

// Update edits an existing party
func (h *PartyHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req PartyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid party request", zap.String("party_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	var party model.Party
	result := db.Where("company_id = ?", sess.CompanyID).First(&party, id)
	if result.Error != nil {
		log.Warn("Party not found for update", zap.String("party_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "party not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	party.Name = req.Name
	party.Mobile = req.Mobile
	party.Email = req.Email
	party.GST = req.GST
	party.Address = req.Address

	if result := db.Save(&party); result.Error != nil {
		log.Error("Failed to update party", zap.String("party_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save party"})
	}

	log.Info("Party updated", zap.String("party_id", id), zap.String("name", party.Name))
	return c.JSON(http.StatusOK, party)
}

// Delete removes a party
func (h *PartyHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	db, sess, ok := sessionPartition(c, h.dir)
	if !ok {
		return nil
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	result := db.Where("company_id = ?", sess.CompanyID).Delete(&model.Party{}, id)
	if result.Error != nil {
		log.Error("Failed to delete party", zap.String("party_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete party"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "party not found"})
	}

	log.Info("Party deleted", zap.String("party_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "party deleted successfully"})
}
