package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/coachdesk/teamtrainer/internal/analytics"
	"github.com/coachdesk/teamtrainer/internal/models"
	"github.com/coachdesk/teamtrainer/pkg/database"
	"github.com/coachdesk/teamtrainer/pkg/utils"
)

// SnapshotService loads immutable session snapshots for the analytics
// engine. It only ever reads; every engine computation works off the
// snapshot it returns.
type SnapshotService struct {
	db *database.DB
}

func NewSnapshotService(db *database.DB) *SnapshotService {
	return &SnapshotService{db: db}
}

// LoadSession fetches one session together with its attendance, drills
// and scores. Returns utils.ErrNotFound when the session id is unknown.
func (s *SnapshotService) LoadSession(trainingID uint) (*analytics.SessionSnapshot, error) {
	var session models.TrainingSession
	if err := s.db.First(&session, trainingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("training session %d: %w", trainingID, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load training session: %w", err)
	}

	return s.loadSnapshot(session)
}

func (s *SnapshotService) loadSnapshot(session models.TrainingSession) (*analytics.SessionSnapshot, error) {
	snap := &analytics.SessionSnapshot{Session: session}

	err := s.db.Preload("Athlete").
		Joins("JOIN athletes ON athletes.id = attendances.athlete_id").
		Where("attendances.training_id = ?", session.ID).
		Order("athletes.name ASC").
		Find(&snap.Attendance).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}

	err = s.db.Preload("Catalog").
		Where("training_id = ?", session.ID).
		Order("drill_order ASC, id ASC").
		Find(&snap.Drills).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load drills: %w", err)
	}

	if len(snap.Drills) > 0 {
		drillIDs := make([]uint, len(snap.Drills))
		for i, d := range snap.Drills {
			drillIDs[i] = d.ID
		}
		err = s.db.Preload("Athlete").
			Where("training_drill_id IN ?", drillIDs).
			Order("id ASC").
			Find(&snap.Scores).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load scores: %w", err)
		}
	}

	return snap, nil
}

// LoadRecentSessions returns snapshots for the most recent limit
// sessions, reordered chronologically (oldest first) for trend series.
func (s *SnapshotService) LoadRecentSessions(limit int) ([]*analytics.SessionSnapshot, error) {
	var sessions []models.TrainingSession
	err := s.db.Order("date DESC, id DESC").Limit(limit).Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent sessions: %w", err)
	}

	// Reverse to chronological order.
	window := make([]*analytics.SessionSnapshot, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		snap, err := s.loadSnapshot(sessions[i])
		if err != nil {
			return nil, err
		}
		window = append(window, snap)
	}

	return window, nil
}

// AthleteExists reports whether an athlete id is present in the store.
func (s *SnapshotService) AthleteExists(athleteID uint) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Athlete{}).Where("id = ?", athleteID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check athlete: %w", err)
	}
	return count > 0, nil
}
