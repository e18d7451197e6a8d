package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/coachdesk/teamtrainer/pkg/config"
)

// TrendRefresher keeps the team trend cache warm so the overview
// dashboard never pays the recompute cost on first load after an edit.
type TrendRefresher struct {
	analytics *AnalyticsService
	cache     *CacheService
	cfg       *config.Config
	logger    *logrus.Logger
	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewTrendRefresher(analytics *AnalyticsService, cache *CacheService, cfg *config.Config, logger *logrus.Logger) *TrendRefresher {
	return &TrendRefresher{
		analytics: analytics,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start begins the scheduled trend refresh.
func (s *TrendRefresher) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("trend refresher is already running")
	}

	_, err := s.cron.AddFunc(s.cfg.TrendRefreshSchedule, s.refreshTrend)
	if err != nil {
		return fmt.Errorf("failed to schedule trend refresh: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	// Warm the cache immediately on boot
	go s.refreshTrend()

	s.logger.Info("Trend refresher started")
	return nil
}

// Stop halts the scheduled refresh.
func (s *TrendRefresher) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Stop()
	s.isRunning = false
	s.logger.Info("Trend refresher stopped")
}

func (s *TrendRefresher) refreshTrend() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.cache != nil {
		if err := s.cache.Delete(ctx, TeamTrendCacheKey(s.cfg.TrendDefaultWindow)); err != nil {
			s.logger.Warnf("Failed to drop stale trend cache: %v", err)
		}
	}

	trend, err := s.analytics.GetTeamTrend(ctx, s.cfg.TrendDefaultWindow)
	if err != nil {
		s.logger.Errorf("Failed to refresh team trend: %v", err)
		return
	}

	s.logger.WithField("points", len(trend)).Debug("Team trend cache refreshed")
}
