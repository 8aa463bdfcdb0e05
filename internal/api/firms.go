package api

import (
	"encoding/json"
	"net/http"

	"chatbridge/internal/flow"
	"chatbridge/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FirmHandler struct {
	db *gorm.DB
}

func NewFirmHandler(db *gorm.DB) *FirmHandler {
	return &FirmHandler{db: db}
}

// GetFirms returns all firms
func (h *FirmHandler) GetFirms(c *gin.Context) {
	var firms []models.Firm
	if err := h.db.Order("name ASC").Find(&firms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, firms)
}

// GetFirm returns a single firm by id
func (h *FirmHandler) GetFirm(c *gin.Context) {
	var firm models.Firm
	if err := h.db.First(&firm, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Firm not found"})
		return
	}

	c.JSON(http.StatusOK, firm)
}

// CreateFirm creates a new firm. The flow document, when provided, must
// pass structural and reference validation before it is persisted.
func (h *FirmHandler) CreateFirm(c *gin.Context) {
	var req struct {
		Name        string          `json:"name" binding:"required"`
		PhoneNumber string          `json:"phone_number" binding:"required"`
		Active      *bool           `json:"active"`
		Flow        json.RawMessage `json:"flow"`
		FirstStep   string          `json:"first_step"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validateFlowDocument(req.Flow); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	firm := models.Firm{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Active:      active,
		Flow:        string(req.Flow),
		FirstStep:   req.FirstStep,
	}

	if err := h.db.Create(&firm).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": firm.ID, "message": "Firm created successfully"})
}

// UpdateFirm updates an existing firm, re-validating the flow document
// whenever one is supplied.
func (h *FirmHandler) UpdateFirm(c *gin.Context) {
	var req struct {
		Name        string          `json:"name"`
		PhoneNumber string          `json:"phone_number"`
		Active      *bool           `json:"active"`
		Flow        json.RawMessage `json:"flow"`
		FirstStep   *string         `json:"first_step"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updateData := map[string]interface{}{}
	if req.Name != "" {
		updateData["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		updateData["phone_number"] = req.PhoneNumber
	}
	if req.Active != nil {
		updateData["active"] = *req.Active
	}
	if len(req.Flow) > 0 {
		if err := validateFlowDocument(req.Flow); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		updateData["flow"] = string(req.Flow)
	}
	if req.FirstStep != nil {
		updateData["first_step"] = *req.FirstStep
	}
	if len(updateData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	result := h.db.Model(&models.Firm{}).Where("id = ?", c.Param("id")).Updates(updateData)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Firm not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Firm updated successfully"})
}

// DeleteFirm deletes a firm
func (h *FirmHandler) DeleteFirm(c *gin.Context) {
	if err := h.db.Delete(&models.Firm{}, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Firm deleted successfully"})
}

// ToggleFirm activates or deactivates a firm
func (h *FirmHandler) ToggleFirm(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.db.Model(&models.Firm{}).Where("id = ?", c.Param("id")).Update("active", req.Active)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error.Error()})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Firm not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Firm status updated"})
}

// validateFlowDocument rejects structurally invalid documents and dangling
// step references at save time, never at dispatch time.
func validateFlowDocument(doc json.RawMessage) error {
	if len(doc) == 0 {
		return nil
	}
	f, err := flow.ParseFlow(doc)
	if err != nil {
		return err
	}
	return f.ValidateReferences()
}
