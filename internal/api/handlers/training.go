package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/internal/services"
	"github.com/coachdesk/teamtrainer/pkg/database"
	"github.com/coachdesk/teamtrainer/pkg/utils"
)

type TrainingHandler struct {
	db        *database.DB
	analytics *services.AnalyticsService
	hub       *services.Hub // optional
}

func NewTrainingHandler(db *database.DB, analytics *services.AnalyticsService, hub *services.Hub) *TrainingHandler {
	return &TrainingHandler{
		db:        db,
		analytics: analytics,
		hub:       hub,
	}
}

type trainingRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time"`
	Location  string `json:"location"`
	Notes     string `json:"notes"`
}

// ListTrainings returns sessions newest first, paginated.
func (h *TrainingHandler) ListTrainings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := h.db.Model(&models.TrainingSession{})

	var total int64
	query.Count(&total)

	var sessions []models.TrainingSession
	offset := (page - 1) * perPage
	if err := query.Order("date DESC, id DESC").Offset(offset).Limit(perPage).Find(&sessions).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch trainings")
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	utils.SendSuccessWithMeta(c, sessions, &utils.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// GetTraining returns a single session with its attendance and drills.
func (h *TrainingHandler) GetTraining(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}

	var session models.TrainingSession
	if err := h.db.First(&session, trainingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Training not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch training")
		}
		return
	}

	var attendance []models.Attendance
	if err := h.db.Preload("Athlete").Where("training_id = ?", trainingID).Find(&attendance).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch attendance")
		return
	}

	var drills []models.TrainingDrill
	if err := h.db.Preload("Catalog").Where("training_id = ?", trainingID).
		Order("drill_order ASC, id ASC").Find(&drills).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch drills")
		return
	}

	utils.SendSuccess(c, gin.H{
		"training":   session,
		"attendance": attendance,
		"drills":     drills,
	})
}

// CreateTraining creates a session.
func (h *TrainingHandler) CreateTraining(c *gin.Context) {
	var req trainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.SendValidationError(c, "Invalid date, expected YYYY-MM-DD", req.Date)
		return
	}

	session := models.TrainingSession{
		Date:      date,
		StartTime: req.StartTime,
		Location:  req.Location,
		Notes:     req.Notes,
	}
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(uint); ok {
			session.CreatedByID = &id
		}
	}

	if err := h.db.Create(&session).Error; err != nil {
		utils.SendInternalError(c, "Failed to create training")
		return
	}

	utils.SendCreated(c, session)
}

// UpdateTraining updates session metadata.
func (h *TrainingHandler) UpdateTraining(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}

	var session models.TrainingSession
	if err := h.db.First(&session, trainingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Training not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch training")
		}
		return
	}

	var req trainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.SendValidationError(c, "Invalid date, expected YYYY-MM-DD", req.Date)
		return
	}

	session.Date = date
	session.StartTime = req.StartTime
	session.Location = req.Location
	session.Notes = req.Notes

	if err := h.db.Save(&session).Error; err != nil {
		utils.SendInternalError(c, "Failed to update training")
		return
	}

	h.invalidate(session.ID, "training_updated")
	utils.SendSuccess(c, session)
}

// DeleteTraining removes a session and its dependent rows.
func (h *TrainingHandler) DeleteTraining(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}

	var session models.TrainingSession
	if err := h.db.First(&session, trainingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.SendNotFound(c, "Training not found")
		} else {
			utils.SendInternalError(c, "Failed to fetch training")
		}
		return
	}

	tx := h.db.Begin()
	var drillIDs []uint
	if err := tx.Model(&models.TrainingDrill{}).Where("training_id = ?", trainingID).
		Pluck("id", &drillIDs).Error; err != nil {
		tx.Rollback()
		utils.SendInternalError(c, "Failed to delete training")
		return
	}
	if len(drillIDs) > 0 {
		if err := tx.Where("training_drill_id IN ?", drillIDs).Delete(&models.DrillScore{}).Error; err != nil {
			tx.Rollback()
			utils.SendInternalError(c, "Failed to delete training scores")
			return
		}
	}
	if err := tx.Where("training_id = ?", trainingID).Delete(&models.TrainingDrill{}).Error; err != nil {
		tx.Rollback()
		utils.SendInternalError(c, "Failed to delete training drills")
		return
	}
	if err := tx.Where("training_id = ?", trainingID).Delete(&models.Attendance{}).Error; err != nil {
		tx.Rollback()
		utils.SendInternalError(c, "Failed to delete training attendance")
		return
	}
	if err := tx.Delete(&session).Error; err != nil {
		tx.Rollback()
		utils.SendInternalError(c, "Failed to delete training")
		return
	}
	if err := tx.Commit().Error; err != nil {
		utils.SendInternalError(c, "Failed to delete training")
		return
	}

	h.invalidate(session.ID, "training_deleted")
	utils.SendSuccess(c, gin.H{"message": "Training deleted"})
}

type attendanceEntryRequest struct {
	AthleteID   uint   `json:"athlete_id" binding:"required"`
	Status      string `json:"status" binding:"required"`
	CheckinTime string `json:"checkin_time"`
}

// BulkAttendance upserts the attendance list for a session.
func (h *TrainingHandler) BulkAttendance(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}
	if !h.trainingExists(c, trainingID) {
		return
	}

	var req struct {
		Entries []attendanceEntryRequest `json:"entries" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	for _, entry := range req.Entries {
		if !models.IsValidAttendanceStatus(entry.Status) {
			utils.SendValidationError(c, "Invalid attendance status", entry.Status)
			return
		}
	}
	if msg := h.checkAthletesExist(req.Entries); msg != "" {
		utils.SendNotFound(c, msg)
		return
	}

	rows := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		rows = append(rows, models.Attendance{
			TrainingID:  trainingID,
			AthleteID:   entry.AthleteID,
			Status:      entry.Status,
			CheckinTime: entry.CheckinTime,
		})
	}

	if len(rows) > 0 {
		err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "training_id"}, {Name: "athlete_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "checkin_time"}),
		}).Create(&rows).Error
		if err != nil {
			utils.SendInternalError(c, "Failed to save attendance")
			return
		}
	}

	h.invalidate(trainingID, "attendance_updated")
	utils.SendSuccess(c, gin.H{"saved": len(rows)})
}

type drillEntryRequest struct {
	DrillID      *uint    `json:"drill_id"`
	NameOverride string   `json:"name_override"`
	Order        int      `json:"order"`
	Description  string   `json:"description"`
	MaxScore     *int     `json:"max_score"`
	Weight       *float64 `json:"weight"`
}

// BulkDrills replaces the drill list of a session. Scores of removed
// drills go with them.
func (h *TrainingHandler) BulkDrills(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}
	if !h.trainingExists(c, trainingID) {
		return
	}

	var req struct {
		Drills []drillEntryRequest `json:"drills" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	rows := make([]models.TrainingDrill, 0, len(req.Drills))
	for i, entry := range req.Drills {
		drill := models.TrainingDrill{
			TrainingID:   trainingID,
			DrillID:      entry.DrillID,
			NameOverride: entry.NameOverride,
			Order:        entry.Order,
			Description:  entry.Description,
			MaxScore:     10,
			Weight:       1.0,
		}
		if drill.Order == 0 {
			drill.Order = i + 1
		}
		if entry.MaxScore != nil {
			drill.MaxScore = *entry.MaxScore
		}
		if entry.Weight != nil {
			if *entry.Weight <= 0 {
				utils.SendValidationError(c, "Drill weight must be positive", fmt.Sprintf("%v", *entry.Weight))
				return
			}
			drill.Weight = *entry.Weight
		}
		if entry.DrillID != nil {
			var count int64
			h.db.Model(&models.DrillCatalog{}).Where("id = ?", *entry.DrillID).Count(&count)
			if count == 0 {
				utils.SendNotFound(c, fmt.Sprintf("Catalog drill %d not found", *entry.DrillID))
				return
			}
		}
		rows = append(rows, drill)
	}

	tx := h.db.Begin()
	var oldIDs []uint
	if err := tx.Model(&models.TrainingDrill{}).Where("training_id = ?", trainingID).
		Pluck("id", &oldIDs).Error; err != nil {
		tx.Rollback()
		utils.SendInternalError(c, "Failed to save drills")
		return
	}
	if len(oldIDs) > 0 {
		if err := tx.Where("training_drill_id IN ?", oldIDs).Delete(&models.DrillScore{}).Error; err != nil {
			tx.Rollback()
			utils.SendInternalError(c, "Failed to save drills")
			return
		}
		if err := tx.Where("training_id = ?", trainingID).Delete(&models.TrainingDrill{}).Error; err != nil {
			tx.Rollback()
			utils.SendInternalError(c, "Failed to save drills")
			return
		}
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			tx.Rollback()
			utils.SendInternalError(c, "Failed to save drills")
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		utils.SendInternalError(c, "Failed to save drills")
		return
	}

	h.invalidate(trainingID, "drills_updated")
	utils.SendSuccess(c, gin.H{"saved": len(rows)})
}

type scoreEntryRequest struct {
	TrainingDrillID uint    `json:"training_drill_id" binding:"required"`
	AthleteID       uint    `json:"athlete_id" binding:"required"`
	Score           float64 `json:"score"`
	Comment         string  `json:"comment"`
}

// BulkScores upserts drill scores for a session. Every score must be
// inside [0, 10] and reference a drill belonging to this session.
func (h *TrainingHandler) BulkScores(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}
	if !h.trainingExists(c, trainingID) {
		return
	}

	var req struct {
		Scores []scoreEntryRequest `json:"scores" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	var drillIDs []uint
	if err := h.db.Model(&models.TrainingDrill{}).Where("training_id = ?", trainingID).
		Pluck("id", &drillIDs).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch drills")
		return
	}
	sessionDrills := make(map[uint]bool, len(drillIDs))
	for _, id := range drillIDs {
		sessionDrills[id] = true
	}

	var ratedBy *uint
	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(uint); ok {
			ratedBy = &id
		}
	}

	rows := make([]models.DrillScore, 0, len(req.Scores))
	for _, entry := range req.Scores {
		if !models.IsValidScore(entry.Score) {
			utils.SendError(c, http.StatusBadRequest, utils.NewAppError(utils.ErrCodeInvalidScore,
				"Score must be between 0.0 and 10.0",
				fmt.Sprintf("athlete %d, drill %d: %v", entry.AthleteID, entry.TrainingDrillID, entry.Score)))
			return
		}
		if !sessionDrills[entry.TrainingDrillID] {
			utils.SendValidationError(c, "Drill does not belong to this training",
				fmt.Sprintf("%d", entry.TrainingDrillID))
			return
		}
		rows = append(rows, models.DrillScore{
			TrainingDrillID: entry.TrainingDrillID,
			AthleteID:       entry.AthleteID,
			Score:           entry.Score,
			Comment:         entry.Comment,
			RatedByID:       ratedBy,
		})
	}

	if len(rows) > 0 {
		err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "training_drill_id"}, {Name: "athlete_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "comment", "rated_by_id"}),
		}).Create(&rows).Error
		if err != nil {
			utils.SendInternalError(c, "Failed to save scores")
			return
		}
	}

	h.invalidate(trainingID, "scores_updated")
	utils.SendSuccess(c, gin.H{"saved": len(rows)})
}

func (h *TrainingHandler) invalidate(trainingID uint, event string) {
	h.analytics.InvalidateTraining(context.Background(), trainingID)
	if h.hub != nil {
		h.hub.BroadcastTrainingUpdate(trainingID, event)
	}
}

func (h *TrainingHandler) trainingExists(c *gin.Context, trainingID uint) bool {
	var count int64
	if err := h.db.Model(&models.TrainingSession{}).Where("id = ?", trainingID).Count(&count).Error; err != nil {
		utils.SendInternalError(c, "Failed to fetch training")
		return false
	}
	if count == 0 {
		utils.SendNotFound(c, "Training not found")
		return false
	}
	return true
}

func (h *TrainingHandler) checkAthletesExist(entries []attendanceEntryRequest) string {
	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.AthleteID)
	}
	if len(ids) == 0 {
		return ""
	}
	var count int64
	h.db.Model(&models.Athlete{}).Where("id IN ?", ids).Count(&count)
	seen := make(map[uint]bool, len(ids))
	distinct := 0
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			distinct++
		}
	}
	if int(count) != distinct {
		return "One or more athletes not found"
	}
	return ""
}

func parseTrainingID(c *gin.Context) (uint, error) {
	trainingID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.SendValidationError(c, "Invalid training ID", err.Error())
		return 0, err
	}
	return uint(trainingID), nil
}
