package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/coachdesk/teamtrainer/internal/analytics"
	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/pkg/config"
	"github.com/coachdesk/teamtrainer/pkg/utils"
)

// AnalyticsService fronts the analytics engine: it loads snapshots,
// runs the pure computations and caches assembled responses. The
// engine itself stays storage- and transport-free.
type AnalyticsService struct {
	snapshots *SnapshotService
	cache     *CacheService // optional; nil disables caching
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewAnalyticsService(snapshots *SnapshotService, cache *CacheService, cfg *config.Config, logger *logrus.Logger) *AnalyticsService {
	return &AnalyticsService{
		snapshots: snapshots,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
	}
}

// TrainingInfo is the session header attached to ranking and dashboard
// payloads.
type TrainingInfo struct {
	ID        uint   `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time,omitempty"`
	Location  string `json:"location,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func trainingInfo(session models.TrainingSession) TrainingInfo {
	return TrainingInfo{
		ID:        session.ID,
		Date:      session.DateLabel(),
		StartTime: session.StartTime,
		Location:  session.Location,
		Notes:     session.Notes,
	}
}

type RankingFilters struct {
	Position string `json:"position,omitempty"`
}

type RankingResponse struct {
	Training TrainingInfo            `json:"training"`
	Filters  RankingFilters          `json:"filters"`
	Items    []analytics.RankingItem `json:"items"`
}

// GetRanking computes the weighted session ranking, optionally
// filtered by position code.
func (s *AnalyticsService) GetRanking(ctx context.Context, trainingID uint, position string) (*RankingResponse, error) {
	cacheKey := RankingCacheKey(trainingID, position)
	var cached RankingResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	snap, err := s.snapshots.LoadSession(trainingID)
	if err != nil {
		return nil, err
	}

	resp := &RankingResponse{
		Training: trainingInfo(snap.Session),
		Filters:  RankingFilters{Position: position},
		Items:    analytics.ComputeRanking(snap, position),
	}

	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

// GetAnalytics computes the composite per-session report.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, trainingID uint) (*analytics.AnalyticsReport, error) {
	cacheKey := AnalyticsCacheKey(trainingID)
	var cached analytics.AnalyticsReport
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	snap, err := s.snapshots.LoadSession(trainingID)
	if err != nil {
		return nil, err
	}

	report := analytics.Analytics(snap)
	s.cacheSet(ctx, cacheKey, &report)
	return &report, nil
}

type AttendanceEntry struct {
	AthleteID    uint   `json:"athlete_id"`
	AthleteName  string `json:"athlete_name"`
	JerseyNumber *int   `json:"jersey_number"`
	Position     string `json:"position"`
	Status       string `json:"status"`
	CheckinTime  string `json:"checkin_time,omitempty"`
}

type DrillEntry struct {
	TrainingDrillID uint     `json:"training_drill_id"`
	Name            string   `json:"name"`
	Order           int      `json:"order"`
	MaxScore        int      `json:"max_score"`
	Weight          float64  `json:"weight"`
	Description     string   `json:"description,omitempty"`
	AverageScore    *float64 `json:"average_score"`
}

type ScoreCell struct {
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
	RatedBy *uint   `json:"rated_by,omitempty"`
}

type DashboardSummary struct {
	AthletesTotal           int      `json:"athletes_total"`
	DrillsTotal             int      `json:"drills_total"`
	TrainingWeightedAverage *float64 `json:"training_weighted_average"`
}

type DashboardResponse struct {
	Training          TrainingInfo                       `json:"training"`
	Summary           DashboardSummary                   `json:"summary"`
	Attendance        []AttendanceEntry                  `json:"attendance"`
	Drills            []DrillEntry                       `json:"drills"`
	Ranking           []analytics.RankingItem            `json:"ranking"`
	RankingByPosition map[string][]analytics.RankingItem `json:"ranking_by_position"`
	ScoreMap          map[string]map[string]ScoreCell    `json:"score_map"`
}

// GetDashboard assembles the coach dashboard: full attendance, drills
// with averages, overall and per-position rankings and the raw score
// map the scoring grid renders from.
func (s *AnalyticsService) GetDashboard(ctx context.Context, trainingID uint) (*DashboardResponse, error) {
	cacheKey := DashboardCacheKey(trainingID)
	var cached DashboardResponse
	if s.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	snap, err := s.snapshots.LoadSession(trainingID)
	if err != nil {
		return nil, err
	}

	attendance := make([]AttendanceEntry, 0, len(snap.Attendance))
	for _, att := range snap.Attendance {
		attendance = append(attendance, AttendanceEntry{
			AthleteID:    att.AthleteID,
			AthleteName:  att.Athlete.Name,
			JerseyNumber: att.Athlete.JerseyNumber,
			Position:     att.Athlete.CurrentPosition,
			Status:       att.Status,
			CheckinTime:  att.CheckinTime,
		})
	}

	drillItems, _ := analytics.DrillAverages(snap)
	avgByDrill := make(map[uint]*float64, len(drillItems))
	for _, item := range drillItems {
		avgByDrill[item.TrainingDrillID] = item.AvgScore
	}

	drills := make([]DrillEntry, 0, len(snap.Drills))
	for _, d := range snap.Drills {
		drills = append(drills, DrillEntry{
			TrainingDrillID: d.ID,
			Name:            d.DisplayName(),
			Order:           d.Order,
			MaxScore:        d.MaxScore,
			Weight:          d.Weight,
			Description:     d.Description,
			AverageScore:    avgByDrill[d.ID],
		})
	}

	scoreMap := make(map[string]map[string]ScoreCell)
	for _, sc := range snap.Scores {
		athleteKey := strconv.FormatUint(uint64(sc.AthleteID), 10)
		if scoreMap[athleteKey] == nil {
			scoreMap[athleteKey] = make(map[string]ScoreCell)
		}
		scoreMap[athleteKey][strconv.FormatUint(uint64(sc.TrainingDrillID), 10)] = ScoreCell{
			Score:   sc.Score,
			Comment: sc.Comment,
			RatedBy: sc.RatedByID,
		}
	}

	rankingByPosition := make(map[string][]analytics.RankingItem)
	for _, pos := range analytics.RankablePositions(snap) {
		rankingByPosition[pos] = analytics.ComputeRanking(snap, pos)
	}

	resp := &DashboardResponse{
		Training: trainingInfo(snap.Session),
		Summary: DashboardSummary{
			AthletesTotal:           len(attendance),
			DrillsTotal:             len(drills),
			TrainingWeightedAverage: analytics.TeamAverage(snap),
		},
		Attendance:        attendance,
		Drills:            drills,
		Ranking:           analytics.ComputeRanking(snap, ""),
		RankingByPosition: rankingByPosition,
		ScoreMap:          scoreMap,
	}

	s.cacheSet(ctx, cacheKey, resp)
	return resp, nil
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type LatestTraining struct {
	ID                      uint     `json:"id"`
	Date                    string   `json:"date"`
	Location                string   `json:"location,omitempty"`
	TrainingWeightedAverage *float64 `json:"training_weighted_average"`
}

type OverviewResponse struct {
	Team           string                 `json:"team"`
	Trend          []analytics.TrendPoint `json:"trend"`
	LatestTraining *LatestTraining        `json:"latest_training"`
	LatestDrills   []ChartPoint           `json:"latest_drills"`
}

// GetOverview returns the team trend for the window plus drill
// averages of the latest session, shaped for dashboard charts.
func (s *AnalyticsService) GetOverview(ctx context.Context, limit int) (*OverviewResponse, error) {
	window, err := s.snapshots.LoadRecentSessions(limit)
	if err != nil {
		return nil, err
	}

	resp := &OverviewResponse{
		Team:         s.cfg.TeamName,
		Trend:        analytics.TeamTrend(window),
		LatestDrills: []ChartPoint{},
	}

	if len(window) > 0 {
		latest := window[len(window)-1]
		resp.LatestTraining = &LatestTraining{
			ID:                      latest.Session.ID,
			Date:                    latest.Session.DateLabel(),
			Location:                latest.Session.Location,
			TrainingWeightedAverage: analytics.TeamAverage(latest),
		}
		drillItems, _ := analytics.DrillAverages(latest)
		for _, item := range drillItems {
			value := 0.0
			if item.AvgScore != nil {
				value = *item.AvgScore
			}
			resp.LatestDrills = append(resp.LatestDrills, ChartPoint{Label: item.Name, Value: value})
		}
	}

	return resp, nil
}

type IndividualSeries struct {
	AthleteID uint                             `json:"athlete_id"`
	Trend     []analytics.IndividualTrendPoint `json:"trend"`
}

type EvolutionResponse struct {
	Trainings       []analytics.SessionRef      `json:"trainings"`
	TeamTrend       []analytics.TrendPoint      `json:"team_trend"`
	Comparison      *analytics.ComparisonReport `json:"comparison"`
	AthletesSummary []analytics.AthleteDelta    `json:"athletes_summary"`
	Individual      *IndividualSeries           `json:"individual"`
}

// GetEvolution returns the team trend, the last-two-sessions
// comparison and, when athleteID is set, that athlete's individual
// series over the same window.
func (s *AnalyticsService) GetEvolution(ctx context.Context, limit int, athleteID *uint) (*EvolutionResponse, error) {
	if athleteID != nil {
		exists, err := s.snapshots.AthleteExists(*athleteID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("athlete %d: %w", *athleteID, utils.ErrNotFound)
		}
	}

	window, err := s.snapshots.LoadRecentSessions(limit)
	if err != nil {
		return nil, err
	}

	resp := &EvolutionResponse{
		Trainings:       make([]analytics.SessionRef, 0, len(window)),
		TeamTrend:       analytics.TeamTrend(window),
		AthletesSummary: []analytics.AthleteDelta{},
	}
	for _, snap := range window {
		resp.Trainings = append(resp.Trainings, snap.Ref())
	}

	if comparison := analytics.Comparison(window); comparison != nil {
		resp.Comparison = comparison
		resp.AthletesSummary = comparison.Athletes
	}

	if athleteID != nil {
		resp.Individual = &IndividualSeries{
			AthleteID: *athleteID,
			Trend:     analytics.IndividualTrend(window, *athleteID),
		}
	}

	return resp, nil
}

// GetTeamTrend computes just the team trend series, used by the cron
// cache warmer.
func (s *AnalyticsService) GetTeamTrend(ctx context.Context, limit int) ([]analytics.TrendPoint, error) {
	cacheKey := TeamTrendCacheKey(limit)
	var cached []analytics.TrendPoint
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	window, err := s.snapshots.LoadRecentSessions(limit)
	if err != nil {
		return nil, err
	}

	trend := analytics.TeamTrend(window)
	s.cacheSet(ctx, cacheKey, trend)
	return trend, nil
}

// LoadSnapshot exposes raw snapshots for the export service.
func (s *AnalyticsService) LoadSnapshot(trainingID uint) (*analytics.SessionSnapshot, error) {
	return s.snapshots.LoadSession(trainingID)
}

// InvalidateTraining drops every cached payload derived from the given
// session, including trend windows that may include it.
func (s *AnalyticsService) InvalidateTraining(ctx context.Context, trainingID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, TrainingCachePrefix(trainingID)); err != nil {
		s.logger.Warnf("Failed to invalidate training cache: %v", err)
	}
	if err := s.cache.DeleteByPrefix(ctx, TrendCachePrefix()); err != nil {
		s.logger.Warnf("Failed to invalidate trend cache: %v", err)
	}
}

func (s *AnalyticsService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	return s.cache.Get(ctx, key, dest) == nil
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithRetry(ctx, key, value, s.cfg.AnalyticsCacheTTL, 3); err != nil {
		s.logger.Warnf("Failed to cache %s: %v", key, err)
	}
}
