// Package report exports assessment results for a job as an Excel workbook.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/screeniq/internal/types"
)

// Sheet names
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Candidates"
)

// Row is one ranked application in the export.
type Row struct {
	Rank        int
	Name        string
	Email       string
	Application types.Application
}

// Rank collects every application for job and orders them by score, highest first.
func Rank(job types.Job, candidates []types.Candidate) []Row {
	var rows []Row
	for i := range candidates {
		c := &candidates[i]
		if app := c.Application(job.ID); app != nil {
			rows = append(rows, Row{Name: c.Name, Email: c.Email, Application: *app})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Application.Score > rows[j].Application.Score
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// ExportOutcomes writes the workbook for job to outputPath, adding an .xlsx extension if missing.
func ExportOutcomes(job types.Job, candidates []types.Candidate, outputPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f, err := build(job, Rank(job, candidates))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return outputPath, nil
}

// Write streams the workbook for job to w.
func Write(w io.Writer, job types.Job, candidates []types.Candidate) error {
	f, err := build(job, Rank(job, candidates))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func build(job types.Job, rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := summarySheet(f, job, rows); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := candidatesSheet(f, job, rows); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to create candidates sheet: %w", err)
	}
	return f, nil
}

func summarySheet(f *excelize.File, job types.Job, rows []Row) error {
	const sheet = SummarySheet
	_ = f.SetColWidth(sheet, "A", "A", 25)
	_ = f.SetColWidth(sheet, "B", "B", 50)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	_ = f.SetCellValue(sheet, "A1", "Assessment Report")
	_ = f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	_ = f.MergeCell(sheet, "A1", "B1")

	var passed int
	var total float64
	for _, r := range rows {
		total += r.Application.Score
		if r.Application.Score >= float64(job.Cutoff()) {
			passed++
		}
	}
	average := 0.0
	if len(rows) > 0 {
		average = total / float64(len(rows))
	}

	pairs := [][2]any{
		{"Job ID:", job.ID},
		{"Job Title:", job.Title},
		{"Company:", job.Company},
		{"Cutoff Score:", job.Cutoff()},
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Candidates Assessed:", len(rows)},
		{"Above Cutoff:", passed},
		{"Average Score:", fmt.Sprintf("%.1f", average)},
	}
	for i, p := range pairs {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		_ = f.SetCellValue(sheet, label, p[0])
		_ = f.SetCellStyle(sheet, label, label, labelStyle)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p[1])
	}
	return nil
}

var candidateHeaders = []string{
	"Rank", "Candidate", "Email", "Status", "Score", "Suitability", "Integrity", "Tab Switches", "Verdict", "Applied At",
}

func candidatesSheet(f *excelize.File, job types.Job, rows []Row) error {
	const sheet = CandidatesSheet
	widths := []float64{8, 25, 30, 22, 10, 12, 10, 14, 60, 20}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}
	passStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return err
	}
	failStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
		Border: border,
	})
	if err != nil {
		return err
	}

	for i, h := range candidateHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, r := range rows {
		row := i + 2
		app := r.Application
		values := []any{
			r.Rank,
			r.Name,
			r.Email,
			string(app.Status),
			app.Score,
			app.Suitability,
			app.IntegrityScore,
			app.TabSwitches,
			app.OneSentenceVerdict,
			app.AppliedAt.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		style := failStyle
		if app.Score >= float64(job.Cutoff()) {
			style = passStyle
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(candidateHeaders), row)
		_ = f.SetCellStyle(sheet, first, last, style)
	}
	return nil
}
