package analytics

import (
	"math"
	"sort"
)

// ScoreDistribution buckets every score in the session into fixed
// quality bins. Boundaries are half-open: [0,5), [5,7), [7,9), [9,10].
// The bin labels predate the current boundaries and intentionally do
// not match them.
func ScoreDistribution(snap *SessionSnapshot) DistributionReport {
	bins := []DistributionBin{
		{Key: "0-4", Label: "0–4"},
		{Key: "5-6", Label: "5–6"},
		{Key: "7-8", Label: "7–8"},
		{Key: "9-10", Label: "9–10"},
	}

	total := len(snap.Scores)
	for _, s := range snap.Scores {
		switch {
		case s.Score < 5:
			bins[0].Count++
		case s.Score < 7:
			bins[1].Count++
		case s.Score < 9:
			bins[2].Count++
		default:
			bins[3].Count++
		}
	}

	for i := range bins {
		if total > 0 {
			bins[i].Percent = round2(float64(bins[i].Count) / float64(total) * 100.0)
		}
	}

	return DistributionReport{TotalScores: total, Bins: bins}
}

// DrillAverages computes the mean raw score per drill, in the
// session's drill order. The hardest drill is the stable minimum
// average among drills with at least one score; nil when none qualify.
func DrillAverages(snap *SessionSnapshot) ([]DrillAverageItem, *DrillAverageItem) {
	sums := make(map[uint]float64, len(snap.Drills))
	counts := make(map[uint]int, len(snap.Drills))
	for _, s := range snap.Scores {
		sums[s.TrainingDrillID] += s.Score
		counts[s.TrainingDrillID]++
	}

	items := make([]DrillAverageItem, 0, len(snap.Drills))
	for _, d := range snap.Drills {
		item := DrillAverageItem{
			TrainingDrillID: d.ID,
			Name:            d.DisplayName(),
			Order:           d.Order,
			ScoresCount:     counts[d.ID],
		}
		if item.ScoresCount > 0 {
			item.AvgScore = float64Ptr(round2(sums[d.ID] / float64(item.ScoresCount)))
		}
		items = append(items, item)
	}

	var hardest *DrillAverageItem
	for i := range items {
		if items[i].AvgScore == nil {
			continue
		}
		if hardest == nil || *items[i].AvgScore < *hardest.AvgScore {
			hardest = &items[i]
		}
	}
	if hardest != nil {
		h := *hardest
		return items, &h
	}
	return items, nil
}

// MostConsistentAthlete finds the athlete whose raw scores have the
// lowest population variance, considering only athletes with at least
// two scores in the session. Exact variance ties are broken by athlete
// id ascending. Returns nil when no athlete qualifies.
func MostConsistentAthlete(snap *SessionSnapshot) *ConsistencyItem {
	values := make(map[uint][]float64)
	names := make(map[uint]string)
	for _, s := range snap.Scores {
		values[s.AthleteID] = append(values[s.AthleteID], s.Score)
		if s.Athlete.Name != "" {
			names[s.AthleteID] = s.Athlete.Name
		}
	}

	athleteIDs := make([]uint, 0, len(values))
	for id := range values {
		athleteIDs = append(athleteIDs, id)
	}
	sort.Slice(athleteIDs, func(i, j int) bool { return athleteIDs[i] < athleteIDs[j] })

	var best *ConsistencyItem
	for _, id := range athleteIDs {
		scores := values[id]
		if len(scores) < 2 {
			continue
		}
		variance, ok := populationVariance(scores)
		if !ok {
			continue
		}
		if best == nil || variance < best.rawVariance {
			best = &ConsistencyItem{
				AthleteID:    id,
				AthleteName:  names[id],
				Variance:     round4(variance),
				StdDev:       round4(math.Sqrt(variance)),
				ScoredDrills: len(scores),
			}
			best.rawVariance = variance
		}
	}

	return best
}
