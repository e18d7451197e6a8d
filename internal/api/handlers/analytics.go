package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/coachdesk/teamtrainer/internal/analytics"
	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/internal/services"
	"github.com/coachdesk/teamtrainer/pkg/utils"
)

type AnalyticsHandler struct {
	analytics     *services.AnalyticsService
	defaultWindow int
	maxWindow     int
}

// NewAnalyticsHandler wires the analytics read endpoints. Zero window
// settings fall back to the engine defaults.
func NewAnalyticsHandler(svc *services.AnalyticsService, defaultWindow, maxWindow int) *AnalyticsHandler {
	if defaultWindow <= 0 {
		defaultWindow = analytics.DefaultTrendWindow
	}
	if maxWindow <= 0 {
		maxWindow = analytics.MaxTrendWindow
	}
	return &AnalyticsHandler{
		analytics:     svc,
		defaultWindow: defaultWindow,
		maxWindow:     maxWindow,
	}
}

// GetRanking returns the weighted ranking for a session, optionally
// filtered by position code.
func (h *AnalyticsHandler) GetRanking(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}

	position := c.Query("position")
	if position != "" && !models.IsValidPosition(position) {
		utils.SendValidationError(c, "Invalid position code", position)
		return
	}

	resp, err := h.analytics.GetRanking(c.Request.Context(), trainingID, position)
	if err != nil {
		sendAnalyticsError(c, err, "Training not found")
		return
	}

	utils.SendSuccess(c, resp)
}

// GetAnalytics returns the composite per-session analytics report.
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}

	report, err := h.analytics.GetAnalytics(c.Request.Context(), trainingID)
	if err != nil {
		sendAnalyticsError(c, err, "Training not found")
		return
	}

	utils.SendSuccess(c, report)
}

// GetDashboard returns the full session dashboard payload.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}

	resp, err := h.analytics.GetDashboard(c.Request.Context(), trainingID)
	if err != nil {
		sendAnalyticsError(c, err, "Training not found")
		return
	}

	utils.SendSuccess(c, resp)
}

// GetOverview returns the team trend over the recent window plus the
// latest session's drill chart. limit clamps to [1, maxWindow].
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	limit := clampLimit(c.Query("limit"), h.defaultWindow, 1, h.maxWindow)

	resp, err := h.analytics.GetOverview(c.Request.Context(), limit)
	if err != nil {
		utils.SendInternalError(c, "Failed to compute overview")
		return
	}

	utils.SendSuccess(c, resp)
}

// GetEvolution returns the team trend, last-two-sessions comparison
// and optional individual series. limit clamps to [2, maxWindow].
func (h *AnalyticsHandler) GetEvolution(c *gin.Context) {
	limit := clampLimit(c.Query("limit"), h.defaultWindow, analytics.MinComparisonWindow, h.maxWindow)

	var athleteID *uint
	if raw := c.Query("athlete_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			utils.SendValidationError(c, "Invalid athlete ID", raw)
			return
		}
		id := uint(parsed)
		athleteID = &id
	}

	resp, err := h.analytics.GetEvolution(c.Request.Context(), limit, athleteID)
	if err != nil {
		sendAnalyticsError(c, err, "Athlete not found")
		return
	}

	utils.SendSuccess(c, resp)
}

func sendAnalyticsError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, utils.ErrNotFound) {
		utils.SendNotFound(c, notFoundMsg)
		return
	}
	utils.SendInternalError(c, "Failed to compute analytics")
}

// clampLimit parses a window size, silently folding bad or
// out-of-range values back into [min, max].
func clampLimit(raw string, def, min, max int) int {
	limit := def
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	if limit < min {
		limit = min
	}
	if limit > max {
		limit = max
	}
	return limit
}
