package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attendance statuses. Only PRESENT and LATE athletes are rankable.
const (
	AttendancePresent   = "PRESENT"
	AttendanceLate      = "LATE"
	AttendanceAbsent    = "ABSENT"
	AttendanceJustified = "JUSTIFIED"
)

var validAttendanceStatuses = map[string]bool{
	AttendancePresent:   true,
	AttendanceLate:      true,
	AttendanceAbsent:    true,
	AttendanceJustified: true,
}

// IsValidAttendanceStatus reports whether status is a known attendance status.
func IsValidAttendanceStatus(status string) bool {
	return validAttendanceStatuses[status]
}

// IsRankable reports whether an attendance status makes the athlete
// eligible for session rankings.
func IsRankable(status string) bool {
	return status == AttendancePresent || status == AttendanceLate
}

type TrainingSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	StartTime string    `json:"start_time,omitempty"`
	Location  string    `json:"location,omitempty"`
	Notes     string    `json:"notes,omitempty"`

	CreatedByID *uint     `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}

// DateLabel is the chart label used by trend series.
func (s *TrainingSession) DateLabel() string {
	return s.Date.Format("2006-01-02")
}

type Attendance struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	TrainingID uint `gorm:"not null;uniqueIndex:idx_training_athlete" json:"training_id"`
	AthleteID  uint `gorm:"not null;uniqueIndex:idx_training_athlete" json:"athlete_id"`

	Status      string `gorm:"size:12;not null;default:PRESENT" json:"status"`
	CheckinTime string `json:"checkin_time,omitempty"`

	// Associations
	Training TrainingSession `gorm:"foreignKey:TrainingID" json:"-"`
	Athlete  Athlete         `gorm:"foreignKey:AthleteID" json:"athlete,omitempty"`
}

func (Attendance) TableName() string {
	return "attendances"
}

type DrillCatalog struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Tags        datatypes.JSON `json:"tags,omitempty"`
}

func (DrillCatalog) TableName() string {
	return "drill_catalog"
}

type TrainingDrill struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	TrainingID uint  `gorm:"not null;index" json:"training_id"`
	DrillID    *uint `json:"drill_id,omitempty"`

	NameOverride string `json:"name_override,omitempty"`
	Order        int    `gorm:"column:drill_order;default:1" json:"order"`
	Description  string `json:"description,omitempty"`

	MaxScore int     `gorm:"default:10" json:"max_score"`
	Weight   float64 `gorm:"default:1.0" json:"weight"`

	// Associations
	Training TrainingSession `gorm:"foreignKey:TrainingID" json:"-"`
	Catalog  *DrillCatalog   `gorm:"foreignKey:DrillID" json:"catalog,omitempty"`
}

func (TrainingDrill) TableName() string {
	return "training_drills"
}

// DisplayName resolves the drill name: explicit override first, then the
// catalog entry, then a generic fallback.
func (d *TrainingDrill) DisplayName() string {
	if d.NameOverride != "" {
		return d.NameOverride
	}
	if d.Catalog != nil && d.Catalog.Name != "" {
		return d.Catalog.Name
	}
	return "Drill"
}

type DrillScore struct {
	ID              uint `gorm:"primaryKey" json:"id"`
	TrainingDrillID uint `gorm:"not null;uniqueIndex:idx_drill_athlete" json:"training_drill_id"`
	AthleteID       uint `gorm:"not null;uniqueIndex:idx_drill_athlete" json:"athlete_id"`

	Score     float64 `gorm:"not null" json:"score"` // 0.0 to 10.0, validated at the write boundary
	Comment   string  `json:"comment,omitempty"`
	RatedByID *uint   `json:"rated_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Associations
	TrainingDrill TrainingDrill `gorm:"foreignKey:TrainingDrillID" json:"-"`
	Athlete       Athlete       `gorm:"foreignKey:AthleteID" json:"-"`
}

func (DrillScore) TableName() string {
	return "drill_scores"
}

// MinScore/MaxScoreValue bound valid drill scores.
const (
	MinScoreValue = 0.0
	MaxScoreValue = 10.0
)

// IsValidScore reports whether v is inside the accepted score range.
func IsValidScore(v float64) bool {
	return v >= MinScoreValue && v <= MaxScoreValue
}
