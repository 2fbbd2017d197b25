package excel

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/fieldplan/internal/config"
	"github.com/derekprior/fieldplan/internal/schedule"
)

// MasterSheet is the sheet holding the day/time/field grid.
const MasterSheet = "Master Schedule"

const unscheduledSheet = "Unscheduled"

// Entry is one match cell of the master sheet.
type Entry struct {
	Row        int
	Day        int
	Start      config.TimeOfDay
	Field      int
	CategoryID string
	Group      string
	Home       string
	Away       string
}

type categoryRow struct {
	group    string
	day      int
	start    config.TimeOfDay
	field    int
	home     string
	away     string
	conflict string
}

// Generate creates a workbook with the master grid, one sheet per category,
// and an Unscheduled sheet when the draw ran out of slots.
func Generate(v *config.Venue, draw *schedule.Draw, slots []schedule.Slot) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeMasterSheet(f, v, draw, slots); err != nil {
		return nil, eris.Wrap(err, "writing master sheet")
	}

	rows := make(map[string][]categoryRow)
	var order []string
	for _, g := range draw.Groups {
		order = append(order, g.CategoryID)
	}
	for _, m := range draw.Matches {
		r := categoryRow{
			group: m.GroupLabel, day: m.Day, start: m.Start, field: m.Field,
			home: m.TeamA, away: m.TeamB,
		}
		if m.Conflict != nil {
			r.conflict = m.Conflict.Reason
		}
		rows[m.CategoryID] = append(rows[m.CategoryID], r)
	}
	if err := writeCategorySheets(f, order, rows); err != nil {
		return nil, eris.Wrap(err, "writing category sheets")
	}

	if len(draw.Unscheduled) > 0 {
		if err := writeUnscheduledSheet(f, draw.Unscheduled); err != nil {
			return nil, eris.Wrap(err, "writing unscheduled sheet")
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

// FormatCell renders a match the way the master sheet stores it.
func FormatCell(categoryID, group, home, away string) string {
	return fmt.Sprintf("%s %s: %s vs %s", categoryID, group, home, away)
}

// ParseCell parses "<category> <group>: <home> vs <away>".
func ParseCell(cell string) (categoryID, group, home, away string, ok bool) {
	label, teams, found := strings.Cut(cell, ": ")
	if !found {
		return "", "", "", "", false
	}
	sp := strings.LastIndex(label, " ")
	if sp <= 0 {
		return "", "", "", "", false
	}
	home, away, found = strings.Cut(teams, " vs ")
	if !found || home == "" || away == "" {
		return "", "", "", "", false
	}
	return label[:sp], label[sp+1:], home, away, true
}

func fieldHeader(n int) string {
	return fmt.Sprintf("Field %d", n)
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style := headerStyle(f); style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}
}

func writeMasterSheet(f *excelize.File, v *config.Venue, draw *schedule.Draw, slots []schedule.Slot) error {
	sheet := MasterSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Day", "Label", "Time"}
	for i := 1; i <= v.Fields; i++ {
		headers = append(headers, fieldHeader(i))
	}
	writeHeaders(f, sheet, headers)

	cellStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 12, Family: "Arial"},
	})
	conflictStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	fieldCellStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 12, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	type slotKey struct {
		day   int
		start config.TimeOfDay
		field int
	}
	matches := make(map[slotKey]schedule.Match)
	for _, m := range draw.Matches {
		k := slotKey{m.Day, m.Start, m.Field}
		if other, ok := matches[k]; ok {
			return eris.Errorf("day %d %s field %d holds both %s vs %s and %s vs %s",
				m.Day, m.Start, m.Field, other.TeamA, other.TeamB, m.TeamA, m.TeamB)
		}
		matches[k] = m
	}

	type timeSlot struct {
		day   int
		label string
		start config.TimeOfDay
	}
	seen := make(map[timeSlot]bool)
	var times []timeSlot
	for _, s := range slots {
		ts := timeSlot{s.Day, s.DayLabel, s.Start}
		if !seen[ts] {
			seen[ts] = true
			times = append(times, ts)
		}
	}
	sort.SliceStable(times, func(i, j int) bool {
		if times[i].day != times[j].day {
			return times[i].day < times[j].day
		}
		return times[i].start < times[j].start
	})

	for i, ts := range times {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), ts.day)
		f.SetCellValue(sheet, cellRef(2, row), ts.label)
		f.SetCellValue(sheet, cellRef(3, row), ts.start.String())
		if cellStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(3, row), cellStyle)
		}

		for field := 1; field <= v.Fields; field++ {
			col := field + 3
			m, ok := matches[slotKey{ts.day, ts.start, field}]
			if !ok {
				continue
			}
			f.SetCellValue(sheet, cellRef(col, row), FormatCell(m.CategoryID, m.GroupLabel, m.TeamA, m.TeamB))
			style := fieldCellStyle
			if m.Conflict != nil {
				style = conflictStyle
			}
			if style != 0 {
				f.SetCellStyle(sheet, cellRef(col, row), cellRef(col, row), style)
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "C", "C", 10)
	for i := 1; i <= v.Fields; i++ {
		col := colLetter(i + 3)
		f.SetColWidth(sheet, col, col, 36)
	}
	return nil
}

func writeCategorySheets(f *excelize.File, order []string, rows map[string][]categoryRow) error {
	headers := []string{"Group", "Day", "Time", "Field", "Home", "Away", "Conflict"}
	names := sheetNames(order)
	for _, id := range order {
		sheet := names[id]
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		writeHeaders(f, sheet, headers)

		games := rows[id]
		sort.SliceStable(games, func(i, j int) bool {
			if games[i].group != games[j].group {
				return games[i].group < games[j].group
			}
			if games[i].day != games[j].day {
				return games[i].day < games[j].day
			}
			if games[i].start != games[j].start {
				return games[i].start < games[j].start
			}
			return games[i].field < games[j].field
		})

		for i, g := range games {
			row := i + 2
			f.SetCellValue(sheet, cellRef(1, row), g.group)
			f.SetCellValue(sheet, cellRef(2, row), g.day)
			f.SetCellValue(sheet, cellRef(3, row), g.start.String())
			f.SetCellValue(sheet, cellRef(4, row), g.field)
			f.SetCellValue(sheet, cellRef(5, row), g.home)
			f.SetCellValue(sheet, cellRef(6, row), g.away)
			if g.conflict != "" {
				f.SetCellValue(sheet, cellRef(7, row), g.conflict)
			}
		}

		widths := map[string]float64{"A": 8, "B": 6, "C": 8, "D": 7, "E": 22, "F": 22, "G": 50}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}
	return nil
}

func writeUnscheduledSheet(f *excelize.File, pairings []schedule.Pairing) error {
	sheet := unscheduledSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, []string{"Category", "Group", "Home", "Away", "Leg"})
	for i, p := range pairings {
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), p.CategoryID)
		f.SetCellValue(sheet, cellRef(2, row), p.GroupLabel)
		f.SetCellValue(sheet, cellRef(3, row), p.TeamA)
		f.SetCellValue(sheet, cellRef(4, row), p.TeamB)
		f.SetCellValue(sheet, cellRef(5, row), p.Leg)
	}
	f.SetColWidth(sheet, "C", "D", 22)
	return nil
}

// ReadMaster reads every match cell back from the master sheet. Times that
// go backwards within a day are taken to be after midnight.
func ReadMaster(f *excelize.File) (fields int, entries []Entry, err error) {
	rows, err := f.GetRows(MasterSheet)
	if err != nil {
		return 0, nil, eris.Wrapf(err, "reading %s", MasterSheet)
	}
	if len(rows) == 0 {
		return 0, nil, eris.Errorf("%s is empty", MasterSheet)
	}

	header := rows[0]
	fieldCols := make(map[int]int)
	for i := 3; i < len(header); i++ {
		var n int
		if _, err := fmt.Sscanf(header[i], "Field %d", &n); err == nil {
			fieldCols[i] = n
			if n > fields {
				fields = n
			}
		}
	}

	lastStart := make(map[int]config.TimeOfDay)
	for i, row := range rows {
		if i == 0 || len(row) < 3 || row[0] == "" {
			continue
		}
		day, err := strconv.Atoi(row[0])
		if err != nil {
			continue
		}
		start, err := config.ParseTimeOfDay(row[2])
		if err != nil {
			continue
		}
		if prev, ok := lastStart[day]; ok && start < prev-config.TimeOfDay(config.MinutesPerDay/2) {
			start += config.MinutesPerDay
		}
		lastStart[day] = start

		for col, field := range fieldCols {
			if col >= len(row) || row[col] == "" {
				continue
			}
			cat, group, home, away, ok := ParseCell(row[col])
			if !ok {
				continue
			}
			entries = append(entries, Entry{
				Row: i + 1, Day: day, Start: start, Field: field,
				CategoryID: cat, Group: group, Home: home, Away: away,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Row != entries[j].Row {
			return entries[i].Row < entries[j].Row
		}
		return entries[i].Field < entries[j].Field
	})
	return fields, entries, nil
}

// UpdateCategorySheets rebuilds the per-category sheets of a saved workbook
// from its master sheet, after the master sheet was edited by hand.
func UpdateCategorySheets(path string, cfg *config.Config) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return eris.Wrap(err, "opening file")
	}
	defer f.Close()

	_, entries, err := ReadMaster(f)
	if err != nil {
		return err
	}

	rows := make(map[string][]categoryRow)
	var order []string
	for _, cat := range cfg.Categories {
		order = append(order, cat.ID)
	}
	known := make(map[string]bool)
	for _, id := range order {
		known[id] = true
	}
	for _, e := range entries {
		if !known[e.CategoryID] {
			continue
		}
		rows[e.CategoryID] = append(rows[e.CategoryID], categoryRow{
			group: e.Group, day: e.Day, start: e.Start, field: e.Field, home: e.Home, away: e.Away,
		})
	}

	var present []string
	for _, id := range order {
		if len(rows[id]) > 0 {
			present = append(present, id)
		}
	}

	// Every category sheet is rebuilt, so sheets of categories that no
	// longer have matches go away too.
	for _, sheet := range f.GetSheetList() {
		if sheet == MasterSheet || sheet == unscheduledSheet {
			continue
		}
		if err := f.DeleteSheet(sheet); err != nil {
			return eris.Wrapf(err, "removing sheet %s", sheet)
		}
	}

	if err := writeCategorySheets(f, present, rows); err != nil {
		return eris.Wrap(err, "writing category sheets")
	}
	return f.Save()
}

const maxSheetName = 31

// sheetName makes a category id safe to use as a sheet name.
func sheetName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, id)
	return truncate(name, maxSheetName)
}

// sheetNames assigns each category id a distinct sheet name. Names are
// compared case-insensitively, as Excel does, and never reuse the master or
// unscheduled sheet names. Later ids that collide get a "~2", "~3", ... suffix.
func sheetNames(ids []string) map[string]string {
	taken := map[string]bool{
		strings.ToLower(MasterSheet):      true,
		strings.ToLower(unscheduledSheet): true,
		"sheet1":                          true, // removed once the workbook is written
	}
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		base := sheetName(id)
		name := base
		for n := 2; taken[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf("~%d", n)
			name = truncate(base, maxSheetName-len(suffix)) + suffix
		}
		taken[strings.ToLower(name)] = true
		names[id] = name
	}
	return names
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
