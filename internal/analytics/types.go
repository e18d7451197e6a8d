// Package analytics implements the training analytics and ranking
// engine: weighted session rankings with deterministic tie-breaks,
// score distributions, consistency detection and multi-session trends.
//
// Every function in this package is a pure function of a
// SessionSnapshot loaded once from storage. Nothing here reads or
// writes the database, so computations are idempotent and safely
// parallelizable across sessions.
package analytics

import (
	"math"

	"github.com/coachdesk/teamtrainer/internal/models"
)

// SessionSnapshot is an immutable view of one training session:
// its attendance list, its drills and every score recorded for them.
// Attendance rows carry the Athlete association; Drills carry the
// Catalog association and are ordered by (drill_order, id); Scores
// carry the Athlete association.
type SessionSnapshot struct {
	Session    models.TrainingSession
	Attendance []models.Attendance
	Drills     []models.TrainingDrill
	Scores     []models.DrillScore
}

// SessionRef identifies a session in trend and comparison payloads.
type SessionRef struct {
	ID   uint   `json:"id"`
	Date string `json:"date"`
}

// Ref returns the snapshot's session reference.
func (s *SessionSnapshot) Ref() SessionRef {
	return SessionRef{ID: s.Session.ID, Date: s.Session.DateLabel()}
}

// RankingItem is one row of a session ranking. WeightedAverage is nil
// when the athlete has no positively weighted scores; such rows always
// sort last.
type RankingItem struct {
	AthleteID         uint     `json:"athlete_id"`
	AthleteName       string   `json:"athlete_name"`
	JerseyNumber      *int     `json:"jersey_number"`
	Position          string   `json:"position"`
	AttendanceStatus  string   `json:"attendance_status"`
	WeightedAverage   *float64 `json:"weighted_average"`
	ScoredDrillsCount int      `json:"scored_drills_count"`
	WeightedPoints    float64  `json:"weighted_points"`
	Rank              int      `json:"rank"`
}

// DistributionBin is one quality bucket of the score distribution.
// Labels are historical; boundaries are half-open except the last,
// which includes 10.
type DistributionBin struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type DistributionReport struct {
	TotalScores int               `json:"total_scores"`
	Bins        []DistributionBin `json:"bins"`
}

// DrillAverageItem reports the mean raw score of one drill.
type DrillAverageItem struct {
	TrainingDrillID uint     `json:"training_drill_id"`
	Name            string   `json:"name"`
	Order           int      `json:"order"`
	AvgScore        *float64 `json:"avg_score"`
	ScoresCount     int      `json:"scores_count"`
}

// ConsistencyItem reports the athlete with the most uniform raw scores
// in a session (lowest population variance).
type ConsistencyItem struct {
	AthleteID    uint    `json:"athlete_id"`
	AthleteName  string  `json:"athlete_name"`
	Variance     float64 `json:"variance"`
	StdDev       float64 `json:"stddev"`
	ScoredDrills int     `json:"scored_drills"`

	// unrounded variance, kept for exact tie comparisons
	rawVariance float64
}

// WeightedAverageStats are population statistics over the weighted
// averages of a session's rankable athletes.
type WeightedAverageStats struct {
	AthletesCount int      `json:"athletes_count"`
	Mean          *float64 `json:"mean"`
	StdDev        *float64 `json:"stddev"`
}

// GapReport is the top3-vs-bottom3 spread of a session ranking. When
// fewer than three athletes have averages, both ends use what exists.
type GapReport struct {
	Top3Mean    *float64 `json:"top3_mean"`
	Bottom3Mean *float64 `json:"bottom3_mean"`
	Gap         *float64 `json:"gap"`
}

// PositionStat summarizes weighted averages for one position group.
// Position is nil for athletes without an assigned position.
type PositionStat struct {
	Position      *string `json:"position"`
	AthletesCount int     `json:"athletes_count"`
	AvgWeighted   float64 `json:"avg_weighted"`
	InternalGap   float64 `json:"internal_gap"`
}

// AnalyticsReport is the composite per-session report. Every section
// is computed from raw values and rounded independently at its own
// boundary; no section consumes another section's rounded output.
type AnalyticsReport struct {
	Training              SessionRef           `json:"training"`
	Distribution          DistributionReport   `json:"distribution"`
	WeightedAverage       WeightedAverageStats `json:"weighted_average"`
	TopBottomGap          GapReport            `json:"top3_bottom3_gap"`
	ByPosition            []PositionStat       `json:"by_position"`
	ByDrill               []DrillAverageItem   `json:"by_drill"`
	HardestDrill          *DrillAverageItem    `json:"hardest_drill"`
	MostConsistentAthlete *ConsistencyItem     `json:"most_consistent_athlete"`
}

// TrendPoint is one session of a team-level trend series.
type TrendPoint struct {
	TrainingID uint    `json:"training_id"`
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
}

// IndividualTrendPoint is one session of an athlete's series. Value is
// nil for sessions where the athlete has no defined weighted average;
// gaps are preserved rather than skipped.
type IndividualTrendPoint struct {
	TrainingID uint     `json:"training_id"`
	Label      string   `json:"label"`
	Value      *float64 `json:"value"`
}

// AthleteDelta is one athlete's movement between two sessions.
type AthleteDelta struct {
	AthleteID   uint    `json:"athlete_id"`
	AthleteName string  `json:"athlete_name"`
	From        float64 `json:"from"`
	To          float64 `json:"to"`
	Delta       float64 `json:"delta"`
}

// ComparisonReport contrasts the two most recent sessions of a window.
// BiggestImprovement and BiggestRegression are nil when no athlete has
// a defined average in both sessions.
type ComparisonReport struct {
	FromTraining       SessionRef     `json:"from_training"`
	ToTraining         SessionRef     `json:"to_training"`
	Athletes           []AthleteDelta `json:"athletes"`
	BiggestImprovement *AthleteDelta  `json:"biggest_improvement"`
	BiggestRegression  *AthleteDelta  `json:"biggest_regression"`
}

// Rounding is applied exactly once, at the boundary of each computed
// value: 2 decimals for averages and percentages, 3 for weighted point
// totals, 4 for variance and standard deviation.

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func float64Ptr(v float64) *float64 {
	return &v
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// populationVariance divides by the sample count, not count-1.
func populationVariance(values []float64) (float64, bool) {
	mu, ok := mean(values)
	if !ok {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return sum / float64(len(values)), true
}
