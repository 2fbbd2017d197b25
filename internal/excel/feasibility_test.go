package excel

import (
	"testing"

	"github.com/derekprior/fieldplan/internal/capacity"
	"github.com/derekprior/fieldplan/internal/feasibility"
	"github.com/derekprior/fieldplan/internal/requirement"
)

func TestGenerateFeasibility(t *testing.T) {
	analyses := []feasibility.VenueAnalysis{
		{
			VenueID:   "north",
			VenueName: "North Sports Park",
			Capacity:  capacity.Report{Fields: 2, TotalAvailableMinutes: 600, MatchSlotMinutes: 60, TotalSlots: 20},
			Requirement: requirement.Report{
				PerCategory: map[string]requirement.CategoryRequirement{
					"u12": {CategoryID: "u12", EnrolledTeams: 4, GroupCount: 1, MatchesInGroupStage: 6, MatchesInCrossStage: 3, TotalMatches: 9},
				},
				Order:      []string{"u12"},
				GrandTotal: 9,
			},
			Result: feasibility.Result{Verdict: feasibility.Viable, SlotsSurplus: 11, Narrative: "ok"},
		},
		{
			VenueID:  "south",
			Capacity: capacity.Report{Fields: 1, TotalSlots: 2},
			Requirement: requirement.Report{
				PerCategory: map[string]requirement.CategoryRequirement{},
			},
			Result: feasibility.Result{Verdict: feasibility.Marginal, SlotsSurplus: 2},
		},
	}

	f, err := GenerateFeasibility(analyses)
	if err != nil {
		t.Fatalf("GenerateFeasibility() error: %v", err)
	}

	t.Run("summary row per venue", func(t *testing.T) {
		rows, err := f.GetRows("Feasibility")
		if err != nil {
			t.Fatalf("GetRows error: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want 3", len(rows))
		}
		if rows[1][0] != "North Sports Park" || rows[1][7] != "viable" {
			t.Errorf("north row = %v", rows[1])
		}
		if rows[2][0] != "south" || rows[2][7] != "marginal" {
			t.Errorf("south row = %v", rows[2])
		}
	})

	t.Run("requirements listed", func(t *testing.T) {
		rows, err := f.GetRows("Requirements")
		if err != nil {
			t.Fatalf("GetRows error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("rows = %d, want 2", len(rows))
		}
		if rows[1][1] != "u12" || rows[1][6] != "9" {
			t.Errorf("u12 row = %v", rows[1])
		}
	})

	t.Run("default Sheet1 removed", func(t *testing.T) {
		idx, _ := f.GetSheetIndex("Sheet1")
		if idx >= 0 {
			t.Error("Sheet1 should have been removed")
		}
	})
}
