package validator

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/derekprior/fieldplan/internal/capacity"
	"github.com/derekprior/fieldplan/internal/config"
	"github.com/derekprior/fieldplan/internal/excel"
	"github.com/derekprior/fieldplan/internal/schedule"
	"github.com/derekprior/fieldplan/internal/strategy"
)

// Violation represents a problem found in a draw workbook.
type Violation struct {
	Row     int
	Type    string // "error" or "warning"
	Message string
}

// Validate reads a draw workbook and checks it against the venue it was
// generated for.
func Validate(cfg *config.Config, venueID, path string) ([]Violation, error) {
	v, ok := cfg.Venue(venueID)
	if !ok {
		return nil, eris.Wrapf(config.ErrInvalidConfig, "unknown venue %q", venueID)
	}
	slotMinutes, err := capacity.SlotMinutes(v.Timing)
	if err != nil {
		return nil, eris.Wrapf(err, "venue %q", v.ID)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "opening file")
	}
	defer f.Close()

	_, entries, err := excel.ReadMaster(f)
	if err != nil {
		return nil, eris.Wrap(err, "reading matches")
	}

	var violations []Violation

	// Hard constraints
	violations = append(violations, checkEntries(cfg, v, entries)...)
	violations = append(violations, checkFieldOverlap(entries, slotMinutes)...)
	violations = append(violations, checkTeamOverlap(entries, slotMinutes)...)
	violations = append(violations, checkPairings(cfg, v, entries)...)

	// Soft constraints
	violations = append(violations, checkArrivals(cfg.ArrivalConstraints, entries)...)

	return violations, nil
}

func checkEntries(cfg *config.Config, v *config.Venue, entries []excel.Entry) []Violation {
	var violations []Violation
	for _, e := range entries {
		if e.Field > v.Fields {
			violations = append(violations, Violation{
				Row:     e.Row,
				Type:    "error",
				Message: fmt.Sprintf("field %d does not exist at %s (%d fields)", e.Field, v.ID, v.Fields),
			})
		}
		if _, ok := cfg.Category(e.CategoryID); !ok || !v.Hosts(e.CategoryID) {
			violations = append(violations, Violation{
				Row:     e.Row,
				Type:    "error",
				Message: fmt.Sprintf("category %s is not hosted at %s", e.CategoryID, v.ID),
			})
		}
		if e.Home == e.Away {
			violations = append(violations, Violation{
				Row:     e.Row,
				Type:    "error",
				Message: fmt.Sprintf("%s is drawn against itself", e.Home),
			})
		}
	}
	return violations
}

func overlaps(a, b excel.Entry, slotMinutes int) bool {
	d := config.TimeOfDay(slotMinutes)
	return a.Start < b.Start+d && b.Start < a.Start+d
}

func checkFieldOverlap(entries []excel.Entry, slotMinutes int) []Violation {
	type fieldDay struct {
		day   int
		field int
	}
	byField := make(map[fieldDay][]excel.Entry)
	var keys []fieldDay
	for _, e := range entries {
		k := fieldDay{e.Day, e.Field}
		if _, ok := byField[k]; !ok {
			keys = append(keys, k)
		}
		byField[k] = append(byField[k], e)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].day != keys[j].day {
			return keys[i].day < keys[j].day
		}
		return keys[i].field < keys[j].field
	})

	var violations []Violation
	for _, k := range keys {
		games := byField[k]
		sort.SliceStable(games, func(i, j int) bool { return games[i].Start < games[j].Start })
		for i := 1; i < len(games); i++ {
			prev, cur := games[i-1], games[i]
			if overlaps(prev, cur, slotMinutes) {
				violations = append(violations, Violation{
					Row:  cur.Row,
					Type: "error",
					Message: fmt.Sprintf("field %d double booked on day %d: %s vs %s at %s overlaps %s vs %s at %s",
						k.field, k.day, cur.Home, cur.Away, cur.Start, prev.Home, prev.Away, prev.Start),
				})
			}
		}
	}
	return violations
}

func checkTeamOverlap(entries []excel.Entry, slotMinutes int) []Violation {
	var violations []Violation
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if a.CategoryID != b.CategoryID || a.Day != b.Day || !overlaps(a, b, slotMinutes) {
				continue
			}
			for _, team := range []string{a.Home, a.Away} {
				if team != b.Home && team != b.Away {
					continue
				}
				violations = append(violations, Violation{
					Row:  b.Row,
					Type: "error",
					Message: fmt.Sprintf("%s %s plays overlapping matches on day %d: field %d at %s and field %d at %s",
						a.CategoryID, team, a.Day, a.Field, a.Start, b.Field, b.Start),
				})
			}
		}
	}
	return violations
}

// checkPairings recomputes the groups the draw would produce and checks that
// every pairing inside each group appears once per leg.
func checkPairings(cfg *config.Config, v *config.Venue, entries []excel.Entry) []Violation {
	legs := 1
	if v.Format.DoubleRoundRobin {
		legs = 2
	}

	type pair struct{ a, b string }
	key := func(a, b string) pair {
		if a > b {
			a, b = b, a
		}
		return pair{a, b}
	}

	type catGroup struct{ category, group string }
	played := make(map[catGroup]map[pair]int)
	member := make(map[string]map[string]string) // category -> team -> group

	for _, cat := range cfg.HostedCategories(v) {
		member[cat.ID] = make(map[string]string)
		for _, g := range strategy.Partition(schedule.Roster(cat), v.Format.GroupSize, v.Format.AvoidSameClub) {
			played[catGroup{cat.ID, g.Label}] = make(map[pair]int)
			for _, team := range g.TeamNames() {
				member[cat.ID][team] = g.Label
			}
		}
	}

	var violations []Violation
	for _, e := range entries {
		teams, ok := member[e.CategoryID]
		if !ok {
			continue
		}
		inGroup := true
		for _, team := range []string{e.Home, e.Away} {
			if teams[team] != e.Group {
				inGroup = false
				violations = append(violations, Violation{
					Row:     e.Row,
					Type:    "error",
					Message: fmt.Sprintf("%s is not in %s group %s", team, e.CategoryID, e.Group),
				})
			}
		}
		if inGroup {
			played[catGroup{e.CategoryID, e.Group}][key(e.Home, e.Away)]++
		}
	}

	for _, cat := range cfg.HostedCategories(v) {
		for _, g := range strategy.Partition(schedule.Roster(cat), v.Format.GroupSize, v.Format.AvoidSameClub) {
			counts := played[catGroup{cat.ID, g.Label}]
			names := g.TeamNames()
			for i := 0; i < len(names); i++ {
				for j := i + 1; j < len(names); j++ {
					n := counts[key(names[i], names[j])]
					if n == legs {
						continue
					}
					violations = append(violations, Violation{
						Type: "error",
						Message: fmt.Sprintf("%s group %s: %s vs %s played %d times, want %d",
							cat.ID, g.Label, names[i], names[j], n, legs),
					})
				}
			}
		}
	}
	return violations
}

func checkArrivals(constraints []config.ArrivalConstraint, entries []excel.Entry) []Violation {
	var violations []Violation
	for _, e := range entries {
		for _, ac := range constraints {
			if ac.Category != e.CategoryID || ac.Group != e.Group {
				continue
			}
			if ac.Day != nil && *ac.Day != e.Day {
				continue
			}
			if e.Start < ac.Earliest {
				violations = append(violations, Violation{
					Row:  e.Row,
					Type: "warning",
					Message: fmt.Sprintf("%s vs %s starts at %s but %s group %s arrives at %s",
						e.Home, e.Away, e.Start, e.CategoryID, e.Group, ac.Earliest),
				})
			}
		}
	}
	return violations
}
