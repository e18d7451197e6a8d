package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachdesk/teamtrainer/internal/models"
)

func analyticsFixture() *SessionSnapshot {
	// Four rankable athletes, single drill of weight 1 so the weighted
	// averages equal the raw scores: 9, 7, 5, 3.
	ana := testAthlete(1, "Ana", "WR")
	bruno := testAthlete(2, "Bruno", "WR")
	caio := testAthlete(3, "Caio", "QB")
	dani := testAthlete(4, "Dani", "")

	return testSnapshot(
		testSession(1, "2025-03-01"),
		[]models.Attendance{
			testAttendance(ana, models.AttendancePresent),
			testAttendance(bruno, models.AttendancePresent),
			testAttendance(caio, models.AttendanceLate),
			testAttendance(dani, models.AttendancePresent),
		},
		[]models.TrainingDrill{testDrill(10, 1, 1.0, "Sprint")},
		[]models.DrillScore{
			testScore(10, 1, 9.0),
			testScore(10, 2, 7.0),
			testScore(10, 3, 5.0),
			testScore(10, 4, 3.0),
		},
	)
}

func TestAnalyticsWeightedAverageStats(t *testing.T) {
	report := Analytics(analyticsFixture())

	stats := report.WeightedAverage
	assert.Equal(t, 4, stats.AthletesCount)
	require.NotNil(t, stats.Mean)
	assert.Equal(t, 6.0, *stats.Mean)
	// Population stddev of (9, 7, 5, 3): sqrt(5) = 2.2360679...
	require.NotNil(t, stats.StdDev)
	assert.Equal(t, 2.2361, *stats.StdDev)
}

func TestAnalyticsTopBottomGap(t *testing.T) {
	report := Analytics(analyticsFixture())

	gap := report.TopBottomGap
	require.NotNil(t, gap.Top3Mean)
	require.NotNil(t, gap.Bottom3Mean)
	require.NotNil(t, gap.Gap)
	// Top three averages: 9, 7, 5; bottom three: 7, 5, 3.
	assert.Equal(t, 7.0, *gap.Top3Mean)
	assert.Equal(t, 5.0, *gap.Bottom3Mean)
	assert.Equal(t, 2.0, *gap.Gap)
}

func TestAnalyticsTopBottomGapFewAthletes(t *testing.T) {
	ana := testAthlete(1, "Ana", "")
	bruno := testAthlete(2, "Bruno", "")
	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		[]models.Attendance{
			testAttendance(ana, models.AttendancePresent),
			testAttendance(bruno, models.AttendancePresent),
		},
		[]models.TrainingDrill{testDrill(10, 1, 1.0, "Sprint")},
		[]models.DrillScore{
			testScore(10, 1, 8.0),
			testScore(10, 2, 4.0),
		},
	)

	gap := Analytics(snap).TopBottomGap
	// Both ends use the two available athletes.
	require.NotNil(t, gap.Gap)
	assert.Equal(t, 6.0, *gap.Top3Mean)
	assert.Equal(t, 6.0, *gap.Bottom3Mean)
	assert.Equal(t, 0.0, *gap.Gap)
}

func TestAnalyticsByPosition(t *testing.T) {
	report := Analytics(analyticsFixture())

	require.Len(t, report.ByPosition, 3)

	// Alphabetical, unassigned position last.
	require.NotNil(t, report.ByPosition[0].Position)
	assert.Equal(t, "QB", *report.ByPosition[0].Position)
	assert.Equal(t, 5.0, report.ByPosition[0].AvgWeighted)
	assert.Equal(t, 0.0, report.ByPosition[0].InternalGap)

	require.NotNil(t, report.ByPosition[1].Position)
	assert.Equal(t, "WR", *report.ByPosition[1].Position)
	assert.Equal(t, 2, report.ByPosition[1].AthletesCount)
	assert.Equal(t, 8.0, report.ByPosition[1].AvgWeighted)
	assert.Equal(t, 2.0, report.ByPosition[1].InternalGap)

	assert.Nil(t, report.ByPosition[2].Position)
	assert.Equal(t, 3.0, report.ByPosition[2].AvgWeighted)
}

func TestAnalyticsComposesSections(t *testing.T) {
	report := Analytics(analyticsFixture())

	assert.Equal(t, uint(1), report.Training.ID)
	assert.Equal(t, "2025-03-01", report.Training.Date)
	assert.Equal(t, 4, report.Distribution.TotalScores)
	require.Len(t, report.ByDrill, 1)
	require.NotNil(t, report.HardestDrill)
	assert.Equal(t, "Sprint", report.HardestDrill.Name)
	// Every athlete has a single score, so nobody qualifies.
	assert.Nil(t, report.MostConsistentAthlete)
}

func TestAnalyticsEmptySession(t *testing.T) {
	snap := testSnapshot(testSession(9, "2025-04-01"), nil, nil, nil)
	report := Analytics(snap)

	assert.Equal(t, 0, report.Distribution.TotalScores)
	assert.Equal(t, 0, report.WeightedAverage.AthletesCount)
	assert.Nil(t, report.WeightedAverage.Mean)
	assert.Nil(t, report.WeightedAverage.StdDev)
	assert.Nil(t, report.TopBottomGap.Gap)
	assert.Empty(t, report.ByPosition)
	assert.Empty(t, report.ByDrill)
	assert.Nil(t, report.HardestDrill)
	assert.Nil(t, report.MostConsistentAthlete)
}

func TestTeamAverage(t *testing.T) {
	avg := TeamAverage(analyticsFixture())
	require.NotNil(t, avg)
	assert.Equal(t, 6.0, *avg)

	empty := testSnapshot(testSession(2, "2025-03-02"), nil, nil, nil)
	assert.Nil(t, TeamAverage(empty))
}
