package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/coachdesk/teamtrainer/internal/analytics"
	"github.com/coachdesk/teamtrainer/internal/models"
)

// ExportService renders session data into downloadable files.
type ExportService struct {
	snapshots *SnapshotService
}

func NewExportService(snapshots *SnapshotService) *ExportService {
	return &ExportService{snapshots: snapshots}
}

// Export holds a rendered file ready to stream to the client.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BuildTrainingCSV renders the session scoring grid as CSV: one row
// per attendance-listed athlete, base columns followed by a score and
// a comment column per drill, drills in session order. Ranked athletes
// come first in ranking order; absent and excused athletes follow with
// blank average and rank so the roster stays complete.
func (s *ExportService) BuildTrainingCSV(trainingID uint) (*Export, error) {
	snap, err := s.snapshots.LoadSession(trainingID)
	if err != nil {
		return nil, err
	}

	ranking := analytics.ComputeRanking(snap, "")

	header := []string{"athlete_name", "jersey_number", "position", "attendance_status", "weighted_average", "rank"}
	for _, d := range snap.Drills {
		header = append(header, "Drill: "+d.DisplayName())
	}
	for _, d := range snap.Drills {
		header = append(header, "Comment: "+d.DisplayName())
	}

	type cell struct {
		score   float64
		comment string
	}
	// athlete id -> drill id -> score cell
	cells := make(map[uint]map[uint]cell)
	for _, sc := range snap.Scores {
		if cells[sc.AthleteID] == nil {
			cells[sc.AthleteID] = make(map[uint]cell)
		}
		cells[sc.AthleteID][sc.TrainingDrillID] = cell{score: sc.Score, comment: sc.Comment}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	writeRow := func(athleteID uint, name string, jersey *int, position, status, average, rank string) error {
		row := make([]string, 0, len(header))
		row = append(row, name)
		if jersey != nil {
			row = append(row, strconv.Itoa(*jersey))
		} else {
			row = append(row, "")
		}
		row = append(row, position, status, average, rank)

		byDrill := cells[athleteID]
		for _, d := range snap.Drills {
			if c, ok := byDrill[d.ID]; ok {
				row = append(row, strconv.FormatFloat(c.score, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		for _, d := range snap.Drills {
			if c, ok := byDrill[d.ID]; ok {
				row = append(row, c.comment)
			} else {
				row = append(row, "")
			}
		}
		return w.Write(row)
	}

	for _, item := range ranking {
		average := ""
		if item.WeightedAverage != nil {
			average = strconv.FormatFloat(*item.WeightedAverage, 'f', 2, 64)
		}
		if err := writeRow(item.AthleteID, item.AthleteName, item.JerseyNumber, item.Position, item.AttendanceStatus, average, strconv.Itoa(item.Rank)); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	// Absent and excused athletes still appear on the roster, after the
	// ranked rows, with blank average and rank.
	for _, att := range snap.Attendance {
		if models.IsRankable(att.Status) {
			continue
		}
		if err := writeRow(att.AthleteID, att.Athlete.Name, att.Athlete.JerseyNumber, att.Athlete.CurrentPosition, att.Status, "", ""); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return &Export{
		Filename:    fmt.Sprintf("training_%s_scores.csv", snap.Session.DateLabel()),
		ContentType: "text/csv",
		Data:        buf.Bytes(),
	}, nil
}
