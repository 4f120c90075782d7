package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hirehub-ranking/internal/domain/model"
)

const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Ranked Candidates"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var candidateHeaders = []string{
	"Rank", "Candidate", "Candidate ID", "Score", "Technical", "Experience",
	"Education", "Soft Skills", "Strengths", "Gaps", "Summary", "Applied",
}

// FileName is the download name for a job's workbook.
func FileName(res *model.RankingResults) string {
	stamp := res.RankedAt
	if stamp.IsZero() {
		stamp = time.Now()
	}
	return fmt.Sprintf("ranking-%s-%s.xlsx", res.JobID, stamp.UTC().Format("20060102-1504"))
}

// WriteResults renders res as an xlsx workbook into w.
func WriteResults(w io.Writer, res *model.RankingResults) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeSummary(f, headerStyle, res); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeCandidates(f, headerStyle, res.Entries); err != nil {
		return fmt.Errorf("candidates sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, headerStyle int, res *model.RankingResults) error {
	s := SummarySheet
	_ = f.SetColWidth(s, "A", "A", 24)
	_ = f.SetColWidth(s, "B", "B", 40)

	if err := f.SetCellValue(s, "A1", "Candidate Ranking Report"); err != nil {
		return err
	}
	_ = f.MergeCell(s, "A1", "B1")
	_ = f.SetCellStyle(s, "A1", "B1", headerStyle)

	var excellent, good, fair, poor int
	var sum float64
	for _, e := range res.Entries {
		sum += e.Score
		switch {
		case e.Score >= 90:
			excellent++
		case e.Score >= 70:
			good++
		case e.Score >= 50:
			fair++
		default:
			poor++
		}
	}
	avg := 0.0
	if n := len(res.Entries); n > 0 {
		avg = sum / float64(n)
	}

	rows := [][2]any{
		{"Job", firstNonEmpty(res.JobTitle, res.JobID)},
		{"Job ID", res.JobID},
		{"Task ID", res.TaskID},
		{"Ranked At", formatTime(res.RankedAt)},
		{"Applicants", res.Total},
		{"Scored", len(res.Entries)},
		{"Average Score", roundTo(avg, 1)},
		{"Excellent (90+)", excellent},
		{"Good (70-89)", good},
		{"Fair (50-69)", fair},
		{"Below 50", poor},
	}
	for i, r := range rows {
		row := i + 3
		if err := f.SetCellValue(s, fmt.Sprintf("A%d", row), r[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(s, fmt.Sprintf("B%d", row), r[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidates(f *excelize.File, headerStyle int, entries []model.RankedEntry) error {
	s := CandidatesSheet
	for i, h := range candidateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(s, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(candidateHeaders), 1)
	_ = f.SetCellStyle(s, "A1", last, headerStyle)
	_ = f.SetColWidth(s, "B", "C", 24)
	_ = f.SetColWidth(s, "I", "K", 48)
	_ = f.SetPanes(s, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i, e := range entries {
		row := []any{i + 1, e.CandidateName, e.CandidateID, roundTo(e.Score, 1), "", "", "", "", "", "", "", formatTime(e.AppliedAt)}
		if a := e.Analysis; a != nil {
			row[4] = roundTo(a.Technical.Score, 1)
			row[5] = roundTo(a.Experience.Score, 1)
			row[6] = roundTo(a.Education.Score, 1)
			row[7] = roundTo(a.SoftSkillsScore, 1)
			row[8] = joinAll(a.Technical.Strengths, a.Experience.Strengths, a.Education.Strengths)
			row[9] = joinAll(a.Technical.Gaps, a.Experience.Gaps, a.Education.Gaps)
			row[10] = a.Summary
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func joinAll(groups ...[]string) string {
	var out []string
	for _, g := range groups {
		for _, v := range g {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return strings.Join(out, "; ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for i := 0; i < places; i++ {
		p *= 10
	}
	n := v * p
	if n < 0 {
		return float64(int64(n-0.5)) / p
	}
	return float64(int64(n+0.5)) / p
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
