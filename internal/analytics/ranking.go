package analytics

import (
	"sort"
	"strings"

	"github.com/coachdesk/teamtrainer/internal/models"
)

// athleteTotals carries the raw per-athlete aggregates of one session.
type athleteTotals struct {
	athlete models.Athlete
	status  string
	points  float64 // sum of score*weight
	weights float64 // sum of drill weights over scored drills
	count   int     // number of scored drills
}

// rawAverage is the unrounded weighted average. Defined only when the
// scored drills carry positive total weight.
func (t *athleteTotals) rawAverage() (float64, bool) {
	if t.weights <= 0 {
		return 0, false
	}
	return t.points / t.weights, true
}

// aggregateTotals builds raw score totals for every rankable athlete
// in the snapshot, optionally restricted to one position code. The
// result preserves attendance order; callers sort as needed.
func aggregateTotals(snap *SessionSnapshot, positionFilter string) []*athleteTotals {
	drillWeights := make(map[uint]float64, len(snap.Drills))
	for _, d := range snap.Drills {
		drillWeights[d.ID] = d.Weight
	}

	byAthlete := make(map[uint]*athleteTotals)
	var ordered []*athleteTotals
	for _, att := range snap.Attendance {
		if !models.IsRankable(att.Status) {
			continue
		}
		if positionFilter != "" && att.Athlete.CurrentPosition != positionFilter {
			continue
		}
		t := &athleteTotals{athlete: att.Athlete, status: att.Status}
		t.athlete.ID = att.AthleteID
		byAthlete[att.AthleteID] = t
		ordered = append(ordered, t)
	}

	for _, s := range snap.Scores {
		t, ok := byAthlete[s.AthleteID]
		if !ok {
			continue
		}
		w, ok := drillWeights[s.TrainingDrillID]
		if !ok {
			continue
		}
		t.points += s.Score * w
		t.weights += w
		t.count++
	}

	return ordered
}

// ComputeRanking ranks the session's rankable athletes by weighted
// average with deterministic tie-breaks: nil averages last, then
// average descending, scored-drill count descending, weighted points
// descending, athlete name ascending case-insensitively. Ranks are
// assigned 1..N over the sorted order. An empty rankable set yields an
// empty slice, not an error.
func ComputeRanking(snap *SessionSnapshot, positionFilter string) []RankingItem {
	totals := aggregateTotals(snap, positionFilter)

	items := make([]RankingItem, 0, len(totals))
	for _, t := range totals {
		item := RankingItem{
			AthleteID:         t.athlete.ID,
			AthleteName:       t.athlete.Name,
			JerseyNumber:      t.athlete.JerseyNumber,
			Position:          t.athlete.CurrentPosition,
			AttendanceStatus:  t.status,
			ScoredDrillsCount: t.count,
			WeightedPoints:    round3(t.points),
		}
		if avg, ok := t.rawAverage(); ok {
			item.WeightedAverage = float64Ptr(round2(avg))
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return rankingLess(&items[i], &items[j])
	})

	for i := range items {
		items[i].Rank = i + 1
	}

	return items
}

func rankingLess(a, b *RankingItem) bool {
	switch {
	case a.WeightedAverage == nil && b.WeightedAverage != nil:
		return false
	case a.WeightedAverage != nil && b.WeightedAverage == nil:
		return true
	case a.WeightedAverage != nil && b.WeightedAverage != nil && *a.WeightedAverage != *b.WeightedAverage:
		return *a.WeightedAverage > *b.WeightedAverage
	}
	if a.ScoredDrillsCount != b.ScoredDrillsCount {
		return a.ScoredDrillsCount > b.ScoredDrillsCount
	}
	if a.WeightedPoints != b.WeightedPoints {
		return a.WeightedPoints > b.WeightedPoints
	}
	return strings.ToLower(a.AthleteName) < strings.ToLower(b.AthleteName)
}

// RankablePositions returns the distinct non-empty position codes of
// the session's rankable athletes, sorted alphabetically. Used by the
// dashboard to build per-position rankings.
func RankablePositions(snap *SessionSnapshot) []string {
	seen := make(map[string]bool)
	for _, att := range snap.Attendance {
		if !models.IsRankable(att.Status) {
			continue
		}
		if pos := att.Athlete.CurrentPosition; pos != "" {
			seen[pos] = true
		}
	}
	positions := make([]string, 0, len(seen))
	for pos := range seen {
		positions = append(positions, pos)
	}
	sort.Strings(positions)
	return positions
}
