package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coachdesk/teamtrainer/internal/api/middleware"
	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/internal/services"
	"github.com/coachdesk/teamtrainer/pkg/config"
	"github.com/coachdesk/teamtrainer/pkg/database"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	db     *database.DB
	router *gin.Engine
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(
		&models.Athlete{},
		&models.TrainingSession{},
		&models.Attendance{},
		&models.DrillCatalog{},
		&models.TrainingDrill{},
		&models.DrillScore{},
	))

	db := &database.DB{DB: gormDB}

	cfg := &config.Config{
		JWTSecret:          testJWTSecret,
		TrendDefaultWindow: 8,
		TrendMaxWindow:     30,
		ExportRateLimit:    600,
		ExportBurst:        100,
	}

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	snapshots := services.NewSnapshotService(db)
	analyticsService := services.NewAnalyticsService(snapshots, nil, cfg, log)
	exportService := services.NewExportService(snapshots)

	router := gin.New()
	SetupRoutes(router.Group("/api/v1"), db, analyticsService, exportService, nil, cfg)

	return &testEnv{db: db, router: router}
}

func authToken(t *testing.T) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: 1,
		Email:  "coach@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+authToken(t))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (e *testEnv) createTraining(t *testing.T, date string) uint {
	t.Helper()
	rec := e.request(t, http.MethodPost, "/api/v1/trainings", gin.H{"date": date}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	return uint(data["id"].(float64))
}

func (e *testEnv) createAthlete(t *testing.T, name, position string) uint {
	t.Helper()
	body := gin.H{"name": name}
	if position != "" {
		body["current_position"] = position
	}
	rec := e.request(t, http.MethodPost, "/api/v1/athletes", body, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	return uint(resp["data"].(map[string]interface{})["id"].(float64))
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/v1/athletes", gin.H{"name": "Ana"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, false, resp["success"])
}

func TestAthleteCRUDAndFilters(t *testing.T) {
	env := setupTestEnv(t)

	anaID := env.createAthlete(t, "Ana Borges", models.PositionWideReceiver)
	env.createAthlete(t, "Bea Castro", models.PositionQuarterback)

	rec := env.request(t, http.MethodGet, "/api/v1/athletes?position=WR", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	athletes := resp["data"].([]interface{})
	require.Len(t, athletes, 1)
	assert.Equal(t, "Ana Borges", athletes[0].(map[string]interface{})["name"])

	rec = env.request(t, http.MethodGet, "/api/v1/athletes?position=XX", nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Deactivation keeps the row but flips the flag
	rec = env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/athletes/%d", anaID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/v1/athletes?active=true", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	require.Len(t, resp["data"].([]interface{}), 1)
}

func TestBulkScoresRejectsOutOfRange(t *testing.T) {
	env := setupTestEnv(t)

	athleteID := env.createAthlete(t, "Ana Borges", "")
	trainingID := env.createTraining(t, "2026-03-10")

	rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/drills/bulk", trainingID), gin.H{
		"drills": []gin.H{{"name_override": "Sprint", "order": 1}},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var drill models.TrainingDrill
	require.NoError(t, env.db.Where("training_id = ?", trainingID).First(&drill).Error)

	rec = env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/scores/bulk", trainingID), gin.H{
		"scores": []gin.H{{"training_drill_id": drill.ID, "athlete_id": athleteID, "score": 10.5}},
	}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_SCORE", errObj["code"])
}

func TestBulkScoresUpsert(t *testing.T) {
	env := setupTestEnv(t)

	athleteID := env.createAthlete(t, "Ana Borges", "")
	trainingID := env.createTraining(t, "2026-03-10")

	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/attendance/bulk", trainingID), gin.H{
		"entries": []gin.H{{"athlete_id": athleteID, "status": "PRESENT"}},
	}, true)
	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/drills/bulk", trainingID), gin.H{
		"drills": []gin.H{{"name_override": "Sprint", "order": 1}},
	}, true)

	var drill models.TrainingDrill
	require.NoError(t, env.db.Where("training_id = ?", trainingID).First(&drill).Error)

	for _, score := range []float64{6.0, 8.5} {
		rec := env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/scores/bulk", trainingID), gin.H{
			"scores": []gin.H{{"training_drill_id": drill.ID, "athlete_id": athleteID, "score": score}},
		}, true)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var scores []models.DrillScore
	require.NoError(t, env.db.Where("training_drill_id = ?", drill.ID).Find(&scores).Error)
	require.Len(t, scores, 1)
	assert.InDelta(t, 8.5, scores[0].Score, 1e-9)
}

func TestRankingEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	anaID := env.createAthlete(t, "Ana Borges", models.PositionWideReceiver)
	beaID := env.createAthlete(t, "Bea Castro", models.PositionQuarterback)
	trainingID := env.createTraining(t, "2026-03-10")

	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/attendance/bulk", trainingID), gin.H{
		"entries": []gin.H{
			{"athlete_id": anaID, "status": "PRESENT"},
			{"athlete_id": beaID, "status": "LATE"},
		},
	}, true)
	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/drills/bulk", trainingID), gin.H{
		"drills": []gin.H{{"name_override": "Sprint", "order": 1, "weight": 2.0}},
	}, true)

	var drill models.TrainingDrill
	require.NoError(t, env.db.Where("training_id = ?", trainingID).First(&drill).Error)
	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/scores/bulk", trainingID), gin.H{
		"scores": []gin.H{
			{"training_drill_id": drill.ID, "athlete_id": anaID, "score": 9.0},
			{"training_drill_id": drill.ID, "athlete_id": beaID, "score": 5.0},
		},
	}, true)

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/trainings/%d/ranking", trainingID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "Ana Borges", first["athlete_name"])
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, 9.0, first["weighted_average"])
	assert.Equal(t, 18.0, first["weighted_points"])

	// Position filter narrows the set
	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/trainings/%d/ranking?position=QB", trainingID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decodeResponse(t, rec)
	items = resp["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Bea Castro", items[0].(map[string]interface{})["athlete_name"])

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/trainings/%d/ranking?position=XX", trainingID), nil, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankingUnknownTraining(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/v1/trainings/999/ranking", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyticsEmptySession(t *testing.T) {
	env := setupTestEnv(t)

	trainingID := env.createTraining(t, "2026-03-10")

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/trainings/%d/analytics", trainingID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	data := resp["data"].(map[string]interface{})
	assert.Nil(t, data["most_consistent_athlete"])
	assert.Nil(t, data["hardest_drill"])
}

func TestOverviewClampsLimit(t *testing.T) {
	env := setupTestEnv(t)

	// Out-of-range and junk limits still answer 200
	for _, raw := range []string{"0", "999", "abc", ""} {
		rec := env.request(t, http.MethodGet, "/api/v1/trainings/overview?limit="+raw, nil, false)
		assert.Equal(t, http.StatusOK, rec.Code, "limit=%q", raw)
	}
}

func TestEvolutionUnknownAthlete(t *testing.T) {
	env := setupTestEnv(t)

	env.createTraining(t, "2026-03-01")
	env.createTraining(t, "2026-03-08")

	rec := env.request(t, http.MethodGet, "/api/v1/trainings/evolution?athlete_id=777", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportCSVEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	athleteID := env.createAthlete(t, "Ana Borges", "")
	trainingID := env.createTraining(t, "2026-03-10")

	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/attendance/bulk", trainingID), gin.H{
		"entries": []gin.H{{"athlete_id": athleteID, "status": "PRESENT"}},
	}, true)

	rec := env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/trainings/%d/export/csv", trainingID), nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "training_2026-03-10_scores.csv")
	assert.Contains(t, rec.Body.String(), "athlete_name")
}

func TestTrainingDeleteCascades(t *testing.T) {
	env := setupTestEnv(t)

	athleteID := env.createAthlete(t, "Ana Borges", "")
	trainingID := env.createTraining(t, "2026-03-10")

	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/attendance/bulk", trainingID), gin.H{
		"entries": []gin.H{{"athlete_id": athleteID, "status": "PRESENT"}},
	}, true)
	env.request(t, http.MethodPost, fmt.Sprintf("/api/v1/trainings/%d/drills/bulk", trainingID), gin.H{
		"drills": []gin.H{{"name_override": "Sprint", "order": 1}},
	}, true)

	rec := env.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/trainings/%d", trainingID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	env.db.Model(&models.Attendance{}).Count(&count)
	assert.Zero(t, count)
	env.db.Model(&models.TrainingDrill{}).Count(&count)
	assert.Zero(t, count)

	rec = env.request(t, http.MethodGet, fmt.Sprintf("/api/v1/trainings/%d", trainingID), nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
