package feasibility

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/derekprior/fieldplan/internal/config"
	"github.com/derekprior/fieldplan/internal/requirement"
)

func sixteenTeams(t *testing.T) requirement.Report {
	t.Helper()
	report, err := requirement.Calculate(config.Format{GroupSize: 4}, []config.Category{
		{ID: "u12", EnrolledTeams: 16},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return report
}

func TestAnalyzeBoundaries(t *testing.T) {
	req := sixteenTeams(t)
	tests := []struct {
		slots   int
		verdict Verdict
		surplus int
	}{
		{30, Infeasible, -1},
		{31, Marginal, 0},
		{34, Marginal, 3},
		{35, Viable, 4},
		{100, Viable, 69},
	}
	for _, tt := range tests {
		got := Analyze(tt.slots, req)
		if got.Verdict != tt.verdict {
			t.Errorf("Analyze(%d) verdict = %s, want %s", tt.slots, got.Verdict, tt.verdict)
		}
		if got.SlotsSurplus != tt.surplus {
			t.Errorf("Analyze(%d) surplus = %d, want %d", tt.slots, got.SlotsSurplus, tt.surplus)
		}
	}
}

func TestAnalyzeNarrative(t *testing.T) {
	req := sixteenTeams(t)

	t.Run("infeasible states the deficit", func(t *testing.T) {
		got := Analyze(26, req)
		if !strings.Contains(got.Narrative, "deficit of 5 slots") {
			t.Errorf("narrative = %q", got.Narrative)
		}
		if !strings.Contains(got.Narrative, "u12 with 31 matches") {
			t.Errorf("narrative does not name the largest category: %q", got.Narrative)
		}
	})

	t.Run("marginal warns about delays", func(t *testing.T) {
		got := Analyze(32, req)
		if !strings.Contains(got.Narrative, "1 slot to spare") || !strings.Contains(got.Narrative, "delay") {
			t.Errorf("narrative = %q", got.Narrative)
		}
	})

	t.Run("viable states the margin", func(t *testing.T) {
		got := Analyze(40, req)
		if !strings.Contains(got.Narrative, "9 slots as contingency") {
			t.Errorf("narrative = %q", got.Narrative)
		}
	})
}

func TestAnalyzeNoCategories(t *testing.T) {
	t.Run("nothing hosted", func(t *testing.T) {
		got := Analyze(50, requirement.Report{})
		if got.Verdict != Marginal {
			t.Errorf("verdict = %s, want marginal", got.Verdict)
		}
		if !strings.Contains(got.Narrative, "No categories configured") {
			t.Errorf("narrative = %q", got.Narrative)
		}
	})

	t.Run("only empty categories", func(t *testing.T) {
		req, err := requirement.Calculate(config.Format{GroupSize: 3}, []config.Category{{ID: "u8"}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := Analyze(50, req); got.Verdict != Marginal {
			t.Errorf("verdict = %s, want marginal", got.Verdict)
		}
	})
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	req := sixteenTeams(t)
	first := Analyze(33, req)
	for i := 0; i < 10; i++ {
		if got := Analyze(33, req); got != first {
			t.Fatalf("run %d = %+v, want %+v", i, got, first)
		}
	}
}

func TestVerdictText(t *testing.T) {
	b, err := Infeasible.MarshalText()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "infeasible" {
		t.Errorf("MarshalText() = %q, want infeasible", b)
	}
}

func testVenue(id string, fields int, hosted ...string) config.Venue {
	return config.Venue{
		ID:     id,
		Fields: fields,
		Schedule: []config.DaySchedule{{Day: 1, Windows: []config.TimeWindow{
			{Start: config.Clock(9, 0), End: config.Clock(18, 0)},
		}}},
		Timing:            config.MatchTiming{PartMinutes: 20, Parts: 2, BreakMinutes: 5, RotationMinutes: 10},
		Format:            config.Format{GroupSize: 4},
		HostedCategoryIDs: hosted,
	}
}

func TestAnalyzeVenue(t *testing.T) {
	categories := []config.Category{
		{ID: "u12", EnrolledTeams: 16},
		{ID: "u14", EnrolledTeams: 8},
	}

	t.Run("only hosted categories count", func(t *testing.T) {
		v := testVenue("north", 4, "u12")
		got, err := AnalyzeVenue(&v, categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 540 / 55 = 9 slots per field, 36 total
		if got.Capacity.TotalSlots != 36 {
			t.Errorf("total slots = %d, want 36", got.Capacity.TotalSlots)
		}
		if got.Requirement.GrandTotal != 31 {
			t.Errorf("grand total = %d, want 31", got.Requirement.GrandTotal)
		}
		if got.Result.Verdict != Viable || got.Result.SlotsSurplus != 5 {
			t.Errorf("result = %+v, want viable with surplus 5", got.Result)
		}
	})

	t.Run("venue without hosted categories", func(t *testing.T) {
		v := testVenue("east", 1)
		got, err := AnalyzeVenue(&v, categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Result.Verdict != Marginal {
			t.Errorf("verdict = %s, want marginal", got.Result.Verdict)
		}
	})

	t.Run("invalid timing", func(t *testing.T) {
		v := testVenue("west", 2, "u12")
		v.Timing.Parts = 0
		if _, err := AnalyzeVenue(&v, categories); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestAnalyzeVenues(t *testing.T) {
	categories := []config.Category{
		{ID: "u12", EnrolledTeams: 16},
		{ID: "u14", EnrolledTeams: 8},
	}
	venues := []config.Venue{
		testVenue("north", 4, "u12"),
		testVenue("south", 1, "u12", "u14"),
		testVenue("east", 2),
	}

	t.Run("results in venue order", func(t *testing.T) {
		got, err := AnalyzeVenues(context.Background(), venues, categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("results = %d, want 3", len(got))
		}
		want := []struct {
			id      string
			verdict Verdict
		}{
			{"north", Viable},
			{"south", Infeasible},
			{"east", Marginal},
		}
		for i, w := range want {
			if got[i].VenueID != w.id || got[i].Result.Verdict != w.verdict {
				t.Errorf("result %d = %s/%s, want %s/%s", i, got[i].VenueID, got[i].Result.Verdict, w.id, w.verdict)
			}
		}
	})

	t.Run("matches sequential analysis", func(t *testing.T) {
		got, err := AnalyzeVenues(context.Background(), venues, categories)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range venues {
			want, err := AnalyzeVenue(&venues[i], categories)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got[i].Result != want.Result {
				t.Errorf("venue %s = %+v, want %+v", venues[i].ID, got[i].Result, want.Result)
			}
		}
	})

	t.Run("one invalid venue fails the batch", func(t *testing.T) {
		bad := append([]config.Venue{}, venues...)
		bad[1].Fields = 0
		if _, err := AnalyzeVenues(context.Background(), bad, categories); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})
}
