package analytics

import (
	"math"
	"sort"
)

// Analytics builds the composite per-session report. Population
// statistics, the top/bottom gap and the position breakdown are all
// recomputed from raw weighted points and weights rather than from the
// rounded ranking output, so rounding error never compounds across
// sections.
func Analytics(snap *SessionSnapshot) AnalyticsReport {
	report := AnalyticsReport{
		Training:              snap.Ref(),
		Distribution:          ScoreDistribution(snap),
		MostConsistentAthlete: MostConsistentAthlete(snap),
	}
	report.ByDrill, report.HardestDrill = DrillAverages(snap)

	// Raw weighted averages in ranking order.
	totals := aggregateTotals(snap, "")
	rawByID := make(map[uint]float64, len(totals))
	posByID := make(map[uint]string, len(totals))
	for _, t := range totals {
		if avg, ok := t.rawAverage(); ok {
			rawByID[t.athlete.ID] = avg
			posByID[t.athlete.ID] = t.athlete.CurrentPosition
		}
	}

	var ordered []float64
	var orderedIDs []uint
	for _, item := range ComputeRanking(snap, "") {
		if raw, ok := rawByID[item.AthleteID]; ok {
			ordered = append(ordered, raw)
			orderedIDs = append(orderedIDs, item.AthleteID)
		}
	}

	report.WeightedAverage = weightedAverageStats(ordered)
	report.TopBottomGap = topBottomGap(ordered)
	report.ByPosition = positionStats(orderedIDs, rawByID, posByID)

	return report
}

func weightedAverageStats(values []float64) WeightedAverageStats {
	stats := WeightedAverageStats{AthletesCount: len(values)}
	if mu, ok := mean(values); ok {
		stats.Mean = float64Ptr(round2(mu))
	}
	if variance, ok := populationVariance(values); ok {
		stats.StdDev = float64Ptr(round4(math.Sqrt(variance)))
	}
	return stats
}

// topBottomGap contrasts the mean of the three best and three worst
// averages. With fewer than three athletes both ends use what exists,
// so the gap degrades to zero for a single athlete.
func topBottomGap(ordered []float64) GapReport {
	var gap GapReport
	if len(ordered) == 0 {
		return gap
	}

	top := ordered
	if len(top) > 3 {
		top = ordered[:3]
	}
	bottom := ordered
	if len(ordered) >= 3 {
		bottom = ordered[len(ordered)-3:]
	}

	topMean, _ := mean(top)
	bottomMean, _ := mean(bottom)
	gap.Top3Mean = float64Ptr(round2(topMean))
	gap.Bottom3Mean = float64Ptr(round2(bottomMean))
	gap.Gap = float64Ptr(round2(topMean - bottomMean))
	return gap
}

func positionStats(orderedIDs []uint, rawByID map[uint]float64, posByID map[uint]string) []PositionStat {
	groups := make(map[string][]float64)
	for _, id := range orderedIDs {
		pos := posByID[id]
		groups[pos] = append(groups[pos], rawByID[id])
	}

	stats := make([]PositionStat, 0, len(groups))
	for pos, vals := range groups {
		avg, _ := mean(vals)
		item := PositionStat{
			AthletesCount: len(vals),
			AvgWeighted:   round2(avg),
		}
		if pos != "" {
			p := pos
			item.Position = &p
		}
		if len(vals) >= 2 {
			min, max := vals[0], vals[0]
			for _, v := range vals[1:] {
				if v < min {
					min = v
				}
				if v > max {
					max = v
				}
			}
			item.InternalGap = round2(max - min)
		}
		stats = append(stats, item)
	}

	// Unassigned positions sort last, the rest alphabetically.
	sort.Slice(stats, func(i, j int) bool {
		if (stats[i].Position == nil) != (stats[j].Position == nil) {
			return stats[j].Position == nil
		}
		if stats[i].Position == nil {
			return false
		}
		return *stats[i].Position < *stats[j].Position
	})

	return stats
}

// TeamAverage is the mean of the session's raw weighted averages,
// rounded once for output. Nil when no rankable athlete has a defined
// average.
func TeamAverage(snap *SessionSnapshot) *float64 {
	values := definedAverages(snap)
	if mu, ok := mean(values); ok {
		return float64Ptr(round2(mu))
	}
	return nil
}

func definedAverages(snap *SessionSnapshot) []float64 {
	var values []float64
	for _, t := range aggregateTotals(snap, "") {
		if avg, ok := t.rawAverage(); ok {
			values = append(values, avg)
		}
	}
	return values
}
