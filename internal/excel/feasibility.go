package excel

import (
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/fieldplan/internal/feasibility"
)

const (
	summarySheet      = "Feasibility"
	requirementsSheet = "Requirements"
)

// GenerateFeasibility creates a workbook with one summary row per venue and
// the per-category match requirements behind each verdict.
func GenerateFeasibility(analyses []feasibility.VenueAnalysis) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeSummarySheet(f, analyses); err != nil {
		return nil, eris.Wrap(err, "writing feasibility sheet")
	}
	if err := writeRequirementsSheet(f, analyses); err != nil {
		return nil, eris.Wrap(err, "writing requirements sheet")
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func writeSummarySheet(f *excelize.File, analyses []feasibility.VenueAnalysis) error {
	sheet := summarySheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, []string{
		"Venue", "Fields", "Available Minutes", "Slot Minutes", "Total Slots",
		"Required Matches", "Surplus", "Verdict", "Narrative",
	})

	fills := map[feasibility.Verdict]string{
		feasibility.Viable:     "#C6EFCE",
		feasibility.Marginal:   "#FFEB9C",
		feasibility.Infeasible: "#FFC7CE",
	}
	styles := make(map[feasibility.Verdict]int)
	for verdict, color := range fills {
		style, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true, Size: 12, Family: "Arial"},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		styles[verdict] = style
	}

	for i, a := range analyses {
		row := i + 2
		name := a.VenueName
		if name == "" {
			name = a.VenueID
		}
		f.SetCellValue(sheet, cellRef(1, row), name)
		f.SetCellValue(sheet, cellRef(2, row), a.Capacity.Fields)
		f.SetCellValue(sheet, cellRef(3, row), a.Capacity.TotalAvailableMinutes)
		f.SetCellValue(sheet, cellRef(4, row), a.Capacity.MatchSlotMinutes)
		f.SetCellValue(sheet, cellRef(5, row), a.Capacity.TotalSlots)
		f.SetCellValue(sheet, cellRef(6, row), a.Requirement.GrandTotal)
		f.SetCellValue(sheet, cellRef(7, row), a.Result.SlotsSurplus)
		f.SetCellValue(sheet, cellRef(8, row), a.Result.Verdict.String())
		f.SetCellValue(sheet, cellRef(9, row), a.Result.Narrative)
		if style := styles[a.Result.Verdict]; style != 0 {
			f.SetCellStyle(sheet, cellRef(8, row), cellRef(8, row), style)
		}
	}

	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "G", 12)
	f.SetColWidth(sheet, "H", "H", 12)
	f.SetColWidth(sheet, "I", "I", 90)
	return nil
}

func writeRequirementsSheet(f *excelize.File, analyses []feasibility.VenueAnalysis) error {
	sheet := requirementsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, []string{
		"Venue", "Category", "Teams", "Groups", "Group Stage", "Cross Stage", "Total",
	})

	row := 2
	for _, a := range analyses {
		for _, id := range a.Requirement.Order {
			cr := a.Requirement.PerCategory[id]
			f.SetCellValue(sheet, cellRef(1, row), a.VenueID)
			f.SetCellValue(sheet, cellRef(2, row), cr.CategoryID)
			f.SetCellValue(sheet, cellRef(3, row), cr.EnrolledTeams)
			f.SetCellValue(sheet, cellRef(4, row), cr.GroupCount)
			f.SetCellValue(sheet, cellRef(5, row), cr.MatchesInGroupStage)
			f.SetCellValue(sheet, cellRef(6, row), cr.MatchesInCrossStage)
			f.SetCellValue(sheet, cellRef(7, row), cr.TotalMatches)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "B", 16)
	f.SetColWidth(sheet, "C", "G", 12)
	return nil
}
