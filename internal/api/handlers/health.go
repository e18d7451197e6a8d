package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/coachdesk/teamtrainer/pkg/database"
)

type HealthHandler struct {
	db    *database.DB
	redis *redis.Client // optional
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// Health reports service liveness plus database and cache reachability.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{"database": "ok"}

	if sqlDB, err := h.db.DB.DB(); err != nil || sqlDB.Ping() != nil {
		checks["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		checks["cache"] = "ok"
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			checks["cache"] = "unreachable"
		}
	}

	label := "ok"
	if status != http.StatusOK {
		label = "degraded"
	}

	c.JSON(status, gin.H{
		"status": label,
		"time":   time.Now().UTC(),
		"checks": checks,
	})
}
