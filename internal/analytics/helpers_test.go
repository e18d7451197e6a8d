package analytics

import (
	"time"

	"github.com/coachdesk/teamtrainer/internal/models"
)

// Fixture helpers shared by the engine tests.

func testAthlete(id uint, name, position string) models.Athlete {
	return models.Athlete{ID: id, Name: name, CurrentPosition: position}
}

func testAttendance(a models.Athlete, status string) models.Attendance {
	return models.Attendance{AthleteID: a.ID, Status: status, Athlete: a}
}

func testDrill(id uint, order int, weight float64, name string) models.TrainingDrill {
	return models.TrainingDrill{ID: id, Order: order, Weight: weight, NameOverride: name}
}

func testScore(drillID, athleteID uint, value float64) models.DrillScore {
	return models.DrillScore{TrainingDrillID: drillID, AthleteID: athleteID, Score: value}
}

func testSession(id uint, date string) models.TrainingSession {
	d, _ := time.Parse("2006-01-02", date)
	return models.TrainingSession{ID: id, Date: d}
}

func testSnapshot(session models.TrainingSession, attendance []models.Attendance, drills []models.TrainingDrill, scores []models.DrillScore) *SessionSnapshot {
	return &SessionSnapshot{
		Session:    session,
		Attendance: attendance,
		Drills:     drills,
		Scores:     scores,
	}
}
