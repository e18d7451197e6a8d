package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachdesk/teamtrainer/internal/models"
)

func TestScoreDistributionBins(t *testing.T) {
	raw := []float64{9, 3, 8, 4, 6, 6, 4, 7}
	scores := make([]models.DrillScore, 0, len(raw))
	for i, v := range raw {
		scores = append(scores, testScore(10, uint(i+1), v))
	}
	snap := testSnapshot(testSession(1, "2025-03-01"), nil, []models.TrainingDrill{testDrill(10, 1, 1.0, "Sprint")}, scores)

	report := ScoreDistribution(snap)
	assert.Equal(t, 8, report.TotalScores)

	require.Len(t, report.Bins, 4)
	assert.Equal(t, "0-4", report.Bins[0].Key)
	assert.Equal(t, 3, report.Bins[0].Count)
	assert.Equal(t, 2, report.Bins[1].Count)
	assert.Equal(t, 2, report.Bins[2].Count)
	assert.Equal(t, 1, report.Bins[3].Count)

	assert.Equal(t, 37.5, report.Bins[0].Percent)
	assert.Equal(t, 25.0, report.Bins[1].Percent)
	assert.Equal(t, 25.0, report.Bins[2].Percent)
	assert.Equal(t, 12.5, report.Bins[3].Percent)
}

func TestScoreDistributionBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		bin   string
	}{
		{0.0, "0-4"},
		{4.9, "0-4"},
		{5.0, "5-6"},
		{6.9, "5-6"},
		{7.0, "7-8"},
		{8.9, "7-8"},
		{9.0, "9-10"},
		{10.0, "9-10"},
	}

	for _, tt := range tests {
		snap := testSnapshot(testSession(1, "2025-03-01"), nil,
			[]models.TrainingDrill{testDrill(10, 1, 1.0, "Sprint")},
			[]models.DrillScore{testScore(10, 1, tt.score)})
		report := ScoreDistribution(snap)
		for _, bin := range report.Bins {
			if bin.Key == tt.bin {
				assert.Equal(t, 1, bin.Count, "score %.1f should land in bin %s", tt.score, tt.bin)
			} else {
				assert.Equal(t, 0, bin.Count, "score %.1f leaked into bin %s", tt.score, bin.Key)
			}
		}
	}
}

func TestScoreDistributionEmpty(t *testing.T) {
	snap := testSnapshot(testSession(1, "2025-03-01"), nil, nil, nil)
	report := ScoreDistribution(snap)

	assert.Equal(t, 0, report.TotalScores)
	for _, bin := range report.Bins {
		assert.Equal(t, 0, bin.Count)
		assert.Equal(t, 0.0, bin.Percent)
	}
}

func TestDrillAveragesAndHardest(t *testing.T) {
	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		nil,
		[]models.TrainingDrill{
			testDrill(10, 1, 1.0, "Routes"),
			testDrill(11, 2, 1.0, "Tackling"),
		},
		[]models.DrillScore{
			testScore(10, 1, 8.0),
			testScore(10, 2, 9.0),
			testScore(11, 1, 5.0),
		},
	)

	items, hardest := DrillAverages(snap)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].AvgScore)
	assert.Equal(t, 8.5, *items[0].AvgScore)
	assert.Equal(t, 2, items[0].ScoresCount)
	require.NotNil(t, items[1].AvgScore)
	assert.Equal(t, 5.0, *items[1].AvgScore)

	require.NotNil(t, hardest)
	assert.Equal(t, "Tackling", hardest.Name)
}

func TestDrillAveragesStableMinTie(t *testing.T) {
	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		nil,
		[]models.TrainingDrill{
			testDrill(10, 1, 1.0, "First"),
			testDrill(11, 2, 1.0, "Second"),
		},
		[]models.DrillScore{
			testScore(10, 1, 6.0),
			testScore(11, 1, 6.0),
		},
	)

	_, hardest := DrillAverages(snap)
	require.NotNil(t, hardest)
	assert.Equal(t, "First", hardest.Name)
}

func TestDrillAveragesUnscoredDrill(t *testing.T) {
	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		nil,
		[]models.TrainingDrill{testDrill(10, 1, 1.0, "Routes")},
		nil,
	)

	items, hardest := DrillAverages(snap)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].AvgScore)
	assert.Equal(t, 0, items[0].ScoresCount)
	assert.Nil(t, hardest)
}

func TestMostConsistentAthlete(t *testing.T) {
	steady := testAthlete(1, "Steady", "")
	erratic := testAthlete(2, "Erratic", "")

	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		nil,
		[]models.TrainingDrill{
			testDrill(10, 1, 1.0, "A"),
			testDrill(11, 2, 1.0, "B"),
		},
		[]models.DrillScore{
			{TrainingDrillID: 10, AthleteID: 1, Score: 6.0, Athlete: steady},
			{TrainingDrillID: 11, AthleteID: 1, Score: 6.0, Athlete: steady},
			{TrainingDrillID: 10, AthleteID: 2, Score: 4.0, Athlete: erratic},
			{TrainingDrillID: 11, AthleteID: 2, Score: 7.0, Athlete: erratic},
		},
	)

	item := MostConsistentAthlete(snap)
	require.NotNil(t, item)
	assert.Equal(t, uint(1), item.AthleteID)
	assert.Equal(t, "Steady", item.AthleteName)
	assert.Equal(t, 0.0, item.Variance)
	assert.Equal(t, 0.0, item.StdDev)
	assert.Equal(t, 2, item.ScoredDrills)
}

func TestMostConsistentAthleteVarianceValue(t *testing.T) {
	a := testAthlete(1, "Ana", "")
	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		nil,
		[]models.TrainingDrill{
			testDrill(10, 1, 1.0, "A"),
			testDrill(11, 2, 1.0, "B"),
		},
		[]models.DrillScore{
			{TrainingDrillID: 10, AthleteID: 1, Score: 4.0, Athlete: a},
			{TrainingDrillID: 11, AthleteID: 1, Score: 7.0, Athlete: a},
		},
	)

	item := MostConsistentAthlete(snap)
	require.NotNil(t, item)
	// Population variance of (4, 7): mean 5.5, ((1.5)^2 + (1.5)^2) / 2.
	assert.Equal(t, 2.25, item.Variance)
	assert.Equal(t, 1.5, item.StdDev)
}

func TestMostConsistentAthleteTieByID(t *testing.T) {
	second := testAthlete(7, "Second", "")
	first := testAthlete(3, "First", "")

	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		nil,
		[]models.TrainingDrill{
			testDrill(10, 1, 1.0, "A"),
			testDrill(11, 2, 1.0, "B"),
		},
		[]models.DrillScore{
			{TrainingDrillID: 10, AthleteID: 7, Score: 5.0, Athlete: second},
			{TrainingDrillID: 11, AthleteID: 7, Score: 5.0, Athlete: second},
			{TrainingDrillID: 10, AthleteID: 3, Score: 8.0, Athlete: first},
			{TrainingDrillID: 11, AthleteID: 3, Score: 8.0, Athlete: first},
		},
	)

	item := MostConsistentAthlete(snap)
	require.NotNil(t, item)
	assert.Equal(t, uint(3), item.AthleteID)
}

func TestMostConsistentAthleteRequiresTwoScores(t *testing.T) {
	a := testAthlete(1, "Ana", "")
	snap := testSnapshot(
		testSession(1, "2025-03-01"),
		nil,
		[]models.TrainingDrill{testDrill(10, 1, 1.0, "A")},
		[]models.DrillScore{{TrainingDrillID: 10, AthleteID: 1, Score: 6.0, Athlete: a}},
	)

	assert.Nil(t, MostConsistentAthlete(snap))
}

func TestMostConsistentAthleteEmptySession(t *testing.T) {
	snap := testSnapshot(testSession(1, "2025-03-01"), nil, nil, nil)
	assert.Nil(t, MostConsistentAthlete(snap))
}
