package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/pkg/database"
	"github.com/coachdesk/teamtrainer/pkg/utils"
)

type CatalogHandler struct {
	db *database.DB
}

func NewCatalogHandler(db *database.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

type catalogRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Tags        datatypes.JSON `json:"tags"`
}

// ListDrills returns the drill catalog, optionally filtered by category.
func (h *CatalogHandler) ListDrills(c *gin.Context) {
	query := h.db.Model(&models.DrillCatalog{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var drills []models.DrillCatalog
	if err := query.Order("name ASC").Find(&drills).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch drill catalog")
		return
	}

	utils.SendSuccess(c, drills)
}

// GetDrill returns a single catalog entry.
func (h *CatalogHandler) GetDrill(c *gin.Context) {
	drillID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid drill ID", err.Error())
		return
	}

	var drill models.DrillCatalog
	if err := h.db.First(&drill, drillID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Drill not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch drill")
		}
		return
	}

	utils.SendSuccess(c, drill)
}

// CreateDrill adds a catalog entry. Names are unique.
func (h *CatalogHandler) CreateDrill(c *gin.Context) {
	var req catalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var existing int64
	h.db.Model(&models.DrillCatalog{}).Where("name = ?", req.Name).Count(&existing)
	if existing > 0 {
		utils.SendConflict(c, "A drill with this name already exists")
		return
	}

	drill := models.DrillCatalog{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
	}
	if err := h.db.Create(&drill).Error; err != nil {
		utils.SendInternalError(c, "Failed to create drill")
		return
	}

	utils.SendCreated(c, drill)
}

// UpdateDrill updates a catalog entry.
func (h *CatalogHandler) UpdateDrill(c *gin.Context) {
	drillID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid drill ID", err.Error())
		return
	}

	var drill models.DrillCatalog
	if err := h.db.First(&drill, drillID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Drill not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch drill")
		}
		return
	}

	var req catalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var clash int64
	h.db.Model(&models.DrillCatalog{}).Where("name = ? AND id != ?", req.Name, drill.ID).Count(&clash)
	if clash > 0 {
		utils.SendConflict(c, "A drill with this name already exists")
		return
	}

	drill.Name = req.Name
	drill.Description = req.Description
	drill.Category = req.Category
	drill.Tags = req.Tags

	if err := h.db.Save(&drill).Error; err != nil {
		utils.SendInternalError(c, "Failed to update drill")
		return
	}

	utils.SendSuccess(c, drill)
}

// DeleteDrill removes a catalog entry. Session drills referencing it
// keep working through their name override or fallback.
func (h *CatalogHandler) DeleteDrill(c *gin.Context) {
	drillID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid drill ID", err.Error())
		return
	}

	var drill models.DrillCatalog
	if err := h.db.First(&drill, drillID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Drill not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch drill")
		}
		return
	}

	if err := h.db.Delete(&drill).Error; err != nil {
		utils.SendInternalError(c, "Failed to delete drill")
		return
	}

	utils.SendSuccess(c, gin.H{"message": "Drill deleted"})
}
