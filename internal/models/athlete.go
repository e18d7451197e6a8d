package models

import (
	"time"
)

// Position codes used by the roster. Athletes may have no position set.
const (
	PositionQuarterback   = "QB"
	PositionCenter        = "C"
	PositionWideReceiver  = "WR"
	PositionRunningBack   = "RB"
	PositionDefensiveBack = "DB"
	PositionRusher        = "R"
	PositionSafety        = "S"
	PositionCornerback    = "CB"
)

var validPositions = map[string]bool{
	PositionQuarterback:   true,
	PositionCenter:        true,
	PositionWideReceiver:  true,
	PositionRunningBack:   true,
	PositionDefensiveBack: true,
	PositionRusher:        true,
	PositionSafety:        true,
	PositionCornerback:    true,
}

// IsValidPosition reports whether code is a known position code.
func IsValidPosition(code string) bool {
	return validPositions[code]
}

type Athlete struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null" json:"name"`
	JerseyNumber *int   `json:"jersey_number"`

	BirthDate *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	BirthCity string     `json:"birth_city,omitempty"`

	HeightM  *float64 `json:"height_m,omitempty"`
	WeightKg *float64 `json:"weight_kg,omitempty"`

	// Empty string means no position assigned
	CurrentPosition string `gorm:"size:5;index" json:"current_position"`
	DesiredPosition string `gorm:"size:5" json:"desired_position"`

	CareerNotes string `json:"career_notes,omitempty"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func (Athlete) TableName() string {
	return "athletes"
}
