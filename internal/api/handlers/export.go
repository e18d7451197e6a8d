package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coachdesk/teamtrainer/internal/services"
	"github.com/coachdesk/teamtrainer/pkg/utils"
)

type ExportHandler struct {
	export *services.ExportService
}

func NewExportHandler(export *services.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// ExportTrainingCSV streams the session scoring grid as a CSV file.
func (h *ExportHandler) ExportTrainingCSV(c *gin.Context) {
	trainingID, err := parseTrainingID(c)
	if err != nil {
		return
	}

	export, err := h.export.BuildTrainingCSV(trainingID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			utils.SendNotFound(c, "Training not found")
		} else {
			utils.SendInternalError(c, "Failed to build export")
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}
