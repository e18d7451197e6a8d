package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/pkg/database"
	"github.com/coachdesk/teamtrainer/pkg/utils"
)

type AthleteHandler struct {
	db *database.DB
}

func NewAthleteHandler(db *database.DB) *AthleteHandler {
	return &AthleteHandler{db: db}
}

type athleteRequest struct {
	Name            string   `json:"name" binding:"required"`
	JerseyNumber    *int     `json:"jersey_number"`
	BirthDate       string   `json:"birth_date"`
	BirthCity       string   `json:"birth_city"`
	HeightM         *float64 `json:"height_m"`
	WeightKg        *float64 `json:"weight_kg"`
	CurrentPosition string   `json:"current_position"`
	DesiredPosition string   `json:"desired_position"`
	CareerNotes     string   `json:"career_notes"`
	IsActive        *bool    `json:"is_active"`
}

func (r *athleteRequest) validate() (birthDate *time.Time, errMsg string) {
	if r.CurrentPosition != "" && !models.IsValidPosition(r.CurrentPosition) {
		return nil, "Invalid current position code"
	}
	if r.DesiredPosition != "" && !models.IsValidPosition(r.DesiredPosition) {
		return nil, "Invalid desired position code"
	}
	if r.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", r.BirthDate)
		if err != nil {
			return nil, "Invalid birth date, expected YYYY-MM-DD"
		}
		birthDate = &parsed
	}
	return birthDate, ""
}

// ListAthletes returns the roster, optionally filtered by position
// and active flag.
func (h *AthleteHandler) ListAthletes(c *gin.Context) {
	query := h.db.Model(&models.Athlete{})

	if position := c.Query("position"); position != "" {
		if !models.IsValidPosition(position) {
			utils.SendValidationError(c, "Invalid position code", position)
			return
		}
		query = query.Where("current_position = ?", position)
	}
	if active := c.Query("active"); active != "" {
		isActive, err := strconv.ParseBool(active)
		if err != nil {
			utils.SendValidationError(c, "Invalid active filter", active)
			return
		}
		query = query.Where("is_active = ?", isActive)
	}

	var athletes []models.Athlete
	if err := query.Order("name ASC").Find(&athletes).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch athletes")
		return
	}

	utils.SendSuccess(c, athletes)
}

// GetAthlete returns a single athlete.
func (h *AthleteHandler) GetAthlete(c *gin.Context) {
	athleteID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid athlete ID", err.Error())
		return
	}

	var athlete models.Athlete
	if err := h.db.First(&athlete, athleteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Athlete not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch athlete")
		}
		return
	}

	utils.SendSuccess(c, athlete)
}

// CreateAthlete adds an athlete to the roster.
func (h *AthleteHandler) CreateAthlete(c *gin.Context) {
	var req athleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	birthDate, errMsg := req.validate()
	if errMsg != "" {
		utils.SendValidationError(c, errMsg, "")
		return
	}

	athlete := models.Athlete{
		Name:            req.Name,
		JerseyNumber:    req.JerseyNumber,
		BirthDate:       birthDate,
		BirthCity:       req.BirthCity,
		HeightM:         req.HeightM,
		WeightKg:        req.WeightKg,
		CurrentPosition: req.CurrentPosition,
		DesiredPosition: req.DesiredPosition,
		CareerNotes:     req.CareerNotes,
		IsActive:        true,
	}
	if req.IsActive != nil {
		athlete.IsActive = *req.IsActive
	}

	if err := h.db.Create(&athlete).Error; err != nil {
		utils.SendInternalError(c, "Failed to create athlete")
		return
	}

	utils.SendCreated(c, athlete)
}

// UpdateAthlete updates an existing athlete.
func (h *AthleteHandler) UpdateAthlete(c *gin.Context) {
	athleteID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid athlete ID", err.Error())
		return
	}

	var athlete models.Athlete
	if err := h.db.First(&athlete, athleteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Athlete not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch athlete")
		}
		return
	}

	var req athleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	birthDate, errMsg := req.validate()
	if errMsg != "" {
		utils.SendValidationError(c, errMsg, "")
		return
	}

	athlete.Name = req.Name
	athlete.JerseyNumber = req.JerseyNumber
	athlete.BirthDate = birthDate
	athlete.BirthCity = req.BirthCity
	athlete.HeightM = req.HeightM
	athlete.WeightKg = req.WeightKg
	athlete.CurrentPosition = req.CurrentPosition
	athlete.DesiredPosition = req.DesiredPosition
	athlete.CareerNotes = req.CareerNotes
	if req.IsActive != nil {
		athlete.IsActive = *req.IsActive
	}

	if err := h.db.Save(&athlete).Error; err != nil {
		utils.SendInternalError(c, "Failed to update athlete")
		return
	}

	utils.SendSuccess(c, athlete)
}

// DeleteAthlete deactivates an athlete. Rows stay so historical
// rankings keep their names.
func (h *AthleteHandler) DeleteAthlete(c *gin.Context) {
	athleteID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid athlete ID", err.Error())
		return
	}

	var athlete models.Athlete
	if err := h.db.First(&athlete, athleteID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Athlete not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch athlete")
		}
		return
	}

	if err := h.db.Model(&athlete).Update("is_active", false).Error; err != nil {
		utils.SendInternalError(c, "Failed to deactivate athlete")
		return
	}

	utils.SendSuccess(c, gin.H{"message": "Athlete deactivated"})
}
