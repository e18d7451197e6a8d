package analytics

import (
	"sort"
)

// Window limits for trend queries. Handlers clamp request parameters
// to these bounds before loading snapshots.
const (
	DefaultTrendWindow  = 8
	MaxTrendWindow      = 30
	MinComparisonWindow = 2
)

// TeamTrend computes the per-session mean of raw weighted averages
// over a chronologically ordered window of snapshots. Sessions where
// no athlete has a defined average contribute 0.0, keeping the series
// aligned with the window.
func TeamTrend(window []*SessionSnapshot) []TrendPoint {
	points := make([]TrendPoint, 0, len(window))
	for _, snap := range window {
		value := 0.0
		if mu, ok := mean(definedAverages(snap)); ok {
			value = round2(mu)
		}
		points = append(points, TrendPoint{
			TrainingID: snap.Session.ID,
			Label:      snap.Session.DateLabel(),
			Value:      value,
		})
	}
	return points
}

// Comparison contrasts the last two sessions of a chronological
// window. Only athletes with a defined weighted average in both
// sessions participate; everyone else is excluded outright, with no
// partial-period interpolation. Returns nil when the window holds
// fewer than two sessions.
func Comparison(window []*SessionSnapshot) *ComparisonReport {
	if len(window) < 2 {
		return nil
	}
	from := window[len(window)-2]
	to := window[len(window)-1]

	fromAvgs := rawAverageMap(from)
	toAvgs := rawAverageMap(to)

	names := make(map[uint]string)
	for _, att := range from.Attendance {
		names[att.AthleteID] = att.Athlete.Name
	}
	for _, att := range to.Attendance {
		names[att.AthleteID] = att.Athlete.Name
	}

	var commonIDs []uint
	for id := range fromAvgs {
		if _, ok := toAvgs[id]; ok {
			commonIDs = append(commonIDs, id)
		}
	}
	sort.Slice(commonIDs, func(i, j int) bool { return commonIDs[i] < commonIDs[j] })

	report := &ComparisonReport{
		FromTraining: from.Ref(),
		ToTraining:   to.Ref(),
	}

	for _, id := range commonIDs {
		delta := toAvgs[id] - fromAvgs[id]
		report.Athletes = append(report.Athletes, AthleteDelta{
			AthleteID:   id,
			AthleteName: names[id],
			From:        round2(fromAvgs[id]),
			To:          round2(toAvgs[id]),
			Delta:       round2(delta),
		})
	}

	// Strict comparisons keep the lowest athlete id on exact ties.
	for i := range report.Athletes {
		d := &report.Athletes[i]
		if report.BiggestImprovement == nil || d.Delta > report.BiggestImprovement.Delta {
			report.BiggestImprovement = d
		}
		if report.BiggestRegression == nil || d.Delta < report.BiggestRegression.Delta {
			report.BiggestRegression = d
		}
	}

	return report
}

// IndividualTrend reports one athlete's weighted average across the
// window. Sessions without a defined average yield a nil value; the
// series always spans the full window.
func IndividualTrend(window []*SessionSnapshot, athleteID uint) []IndividualTrendPoint {
	points := make([]IndividualTrendPoint, 0, len(window))
	for _, snap := range window {
		point := IndividualTrendPoint{
			TrainingID: snap.Session.ID,
			Label:      snap.Session.DateLabel(),
		}
		if avg, ok := rawAverageMap(snap)[athleteID]; ok {
			point.Value = float64Ptr(round2(avg))
		}
		points = append(points, point)
	}
	return points
}

// rawAverageMap indexes defined raw weighted averages by athlete id.
func rawAverageMap(snap *SessionSnapshot) map[uint]float64 {
	avgs := make(map[uint]float64)
	for _, t := range aggregateTotals(snap, "") {
		if avg, ok := t.rawAverage(); ok {
			avgs[t.athlete.ID] = avg
		}
	}
	return avgs
}
