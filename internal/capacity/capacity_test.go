package capacity

import (
	"errors"
	"testing"

	"github.com/derekprior/fieldplan/internal/config"
)

func window(start, end string) config.TimeWindow {
	s, err := config.ParseTimeOfDay(start)
	if err != nil {
		panic(err)
	}
	e, err := config.ParseTimeOfDay(end)
	if err != nil {
		panic(err)
	}
	return config.TimeWindow{Start: s, End: e}
}

func testVenue() *config.Venue {
	return &config.Venue{
		ID:     "north",
		Fields: 2,
		Schedule: []config.DaySchedule{
			{Day: 1, Label: "Saturday", Windows: []config.TimeWindow{
				window("09:00", "13:00"),
				window("15:00", "19:00"),
			}},
			{Day: 2, Label: "Sunday", Windows: []config.TimeWindow{
				window("09:00", "12:00"),
			}},
		},
		Timing: config.MatchTiming{PartMinutes: 20, Parts: 2, BreakMinutes: 5, RotationMinutes: 10},
		Format: config.Format{GroupSize: 4},
	}
}

func TestAvailableMinutes(t *testing.T) {
	t.Run("sums all windows of all days", func(t *testing.T) {
		got := AvailableMinutes(testVenue().Schedule)
		// 240 + 240 + 180
		if got != 660 {
			t.Errorf("AvailableMinutes() = %d, want 660", got)
		}
	})

	t.Run("window crossing midnight", func(t *testing.T) {
		got := WindowMinutes(window("22:00", "02:00"))
		if got != 240 {
			t.Errorf("WindowMinutes(22:00-02:00) = %d, want 240", got)
		}
	})

	t.Run("no days", func(t *testing.T) {
		if got := AvailableMinutes(nil); got != 0 {
			t.Errorf("AvailableMinutes(nil) = %d, want 0", got)
		}
	})

	t.Run("day without windows", func(t *testing.T) {
		sched := []config.DaySchedule{{Day: 1}}
		if got := AvailableMinutes(sched); got != 0 {
			t.Errorf("AvailableMinutes() = %d, want 0", got)
		}
	})

	t.Run("overlapping windows are counted twice", func(t *testing.T) {
		sched := []config.DaySchedule{{Day: 1, Windows: []config.TimeWindow{
			window("09:00", "12:00"),
			window("11:00", "13:00"),
		}}}
		if got := AvailableMinutes(sched); got != 300 {
			t.Errorf("AvailableMinutes() = %d, want 300", got)
		}
	})
}

func TestSlotMinutes(t *testing.T) {
	t.Run("formula", func(t *testing.T) {
		got, err := SlotMinutes(config.MatchTiming{PartMinutes: 20, Parts: 2, BreakMinutes: 5, RotationMinutes: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 55 {
			t.Errorf("SlotMinutes() = %d, want 55", got)
		}
	})

	t.Run("single part has no break", func(t *testing.T) {
		got, err := SlotMinutes(config.MatchTiming{PartMinutes: 30, Parts: 1, BreakMinutes: 10, RotationMinutes: 5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 35 {
			t.Errorf("SlotMinutes() = %d, want 35", got)
		}
	})

	invalid := map[string]config.MatchTiming{
		"zero parts":        {PartMinutes: 20, Parts: 0},
		"negative part":     {PartMinutes: -1, Parts: 2},
		"negative break":    {PartMinutes: 20, Parts: 2, BreakMinutes: -5},
		"negative rotation": {PartMinutes: 20, Parts: 2, RotationMinutes: -1},
		"zero length":       {Parts: 1},
	}
	for name, timing := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := SlotMinutes(timing)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("SlotMinutes(%+v) error = %v, want ErrInvalidConfig", timing, err)
			}
		})
	}
}

func TestEstimate(t *testing.T) {
	t.Run("floors slots per field", func(t *testing.T) {
		r, err := Estimate(660, 55, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.SlotsPerField != 12 {
			t.Errorf("slots per field = %d, want 12", r.SlotsPerField)
		}
		if r.TotalSlots != 24 {
			t.Errorf("total slots = %d, want 24", r.TotalSlots)
		}
	})

	t.Run("remainder is discarded", func(t *testing.T) {
		r, err := Estimate(109, 55, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.TotalSlots != 1 {
			t.Errorf("total slots = %d, want 1", r.TotalSlots)
		}
	})

	t.Run("zero slot duration", func(t *testing.T) {
		if _, err := Estimate(600, 0, 2); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("zero fields", func(t *testing.T) {
		if _, err := Estimate(600, 55, 0); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("more fields never lowers capacity", func(t *testing.T) {
		prev := -1
		for fields := 1; fields <= 10; fields++ {
			r, err := Estimate(537, 55, fields)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.TotalSlots < prev {
				t.Errorf("fields=%d total slots %d < %d", fields, r.TotalSlots, prev)
			}
			prev = r.TotalSlots
		}
	})
}

func TestForVenue(t *testing.T) {
	r, err := ForVenue(testVenue())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("totals", func(t *testing.T) {
		if r.TotalAvailableMinutes != 660 || r.MatchSlotMinutes != 55 || r.TotalSlots != 24 {
			t.Errorf("report = %+v", r)
		}
	})

	t.Run("per day breakdown", func(t *testing.T) {
		if len(r.Days) != 2 {
			t.Fatalf("days = %d, want 2", len(r.Days))
		}
		if r.Days[0].Minutes != 480 || r.Days[0].SlotsPerField != 8 {
			t.Errorf("day 1 = %+v, want 480 minutes and 8 slots", r.Days[0])
		}
		if r.Days[1].Label != "Sunday" || r.Days[1].SlotsPerField != 3 {
			t.Errorf("day 2 = %+v, want Sunday with 3 slots", r.Days[1])
		}
	})

	t.Run("bad timing fails before dividing", func(t *testing.T) {
		v := testVenue()
		v.Timing.Parts = 0
		if _, err := ForVenue(v); !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})
}
