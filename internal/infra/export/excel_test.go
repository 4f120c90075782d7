//go:build !integration

package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"hirehub-ranking/internal/domain/model"
)

func TestWriteResults(t *testing.T) {
	at := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	res := &model.RankingResults{
		JobID: "J1", JobTitle: "Backend Engineer", TaskID: "T1", RankedAt: at, Total: 3,
		Entries: []model.RankedEntry{
			{CandidateID: "C2", CandidateName: "Ada", Score: 91.26, Analysis: &model.Analysis{
				Technical: model.CategoryScore{Score: 95, Strengths: []string{"Go"}, Gaps: []string{"k8s"}},
				Summary:   "strong fit",
			}},
			{CandidateID: "C1", CandidateName: "Linus", Score: 64},
		},
	}

	var buf bytes.Buffer
	if err := WriteResults(&buf, res); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SummarySheet || sheets[1] != CandidatesSheet {
		t.Fatalf("sheets %v", sheets)
	}

	if v, _ := f.GetCellValue(SummarySheet, "B3"); v != "Backend Engineer" {
		t.Fatalf("job title cell %q", v)
	}
	if v, _ := f.GetCellValue(SummarySheet, "B8"); v != "2" {
		t.Fatalf("scored cell %q", v)
	}

	rows, err := f.GetRows(CandidatesSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(rows))
	}
	if rows[1][1] != "Ada" || rows[1][3] != "91.3" || rows[1][8] != "Go" || rows[1][10] != "strong fit" {
		t.Fatalf("first row %v", rows[1])
	}
	if rows[2][0] != "2" || rows[2][1] != "Linus" {
		t.Fatalf("second row %v", rows[2])
	}
}

func TestFileName(t *testing.T) {
	res := &model.RankingResults{JobID: "J1", RankedAt: time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)}
	if got := FileName(res); got != "ranking-J1-20250602-0930.xlsx" {
		t.Fatalf("got %q", got)
	}
}
