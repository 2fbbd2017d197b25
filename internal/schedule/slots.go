package schedule

import (
	"sort"

	"github.com/derekprior/fieldplan/internal/config"
)

// Slot represents one bookable unit of field time: a day, a start time, and a field.
type Slot struct {
	Day      int
	DayLabel string
	Start    config.TimeOfDay
	Field    int // 1-based
}

// GenerateSlots builds every (day, start, field) tuple of the venue, ordered
// by day, then start, then field. Each field keeps a running clock that
// advances by slotMinutes; a match is only placed where it fits entirely
// inside a window, and the clock never moves backwards, so overlapping
// windows cannot double-book a field. Entries sharing a day index share
// one clock.
func GenerateSlots(v *config.Venue, slotMinutes int) []Slot {
	if slotMinutes <= 0 || v.Fields < 1 {
		return nil
	}

	days := mergeDays(v.Schedule)

	var slots []Slot
	for _, day := range days {
		windows := make([]config.TimeWindow, len(day.Windows))
		copy(windows, day.Windows)
		sort.SliceStable(windows, func(i, j int) bool {
			return windows[i].Start < windows[j].Start
		})

		clock := config.TimeOfDay(-1)
		for _, w := range windows {
			t := w.Start
			if clock > t {
				t = clock
			}
			end := w.NormalizedEnd()
			for t+config.TimeOfDay(slotMinutes) <= end {
				for f := 1; f <= v.Fields; f++ {
					slots = append(slots, Slot{Day: day.Day, DayLabel: day.Label, Start: t, Field: f})
				}
				t += config.TimeOfDay(slotMinutes)
			}
			if t > clock {
				clock = t
			}
		}
	}

	return slots
}

// mergeDays combines schedule entries with the same day index, keeping the
// first label, and returns them sorted by index.
func mergeDays(schedule []config.DaySchedule) []config.DaySchedule {
	var days []config.DaySchedule
	index := make(map[int]int)
	for _, d := range schedule {
		i, ok := index[d.Day]
		if !ok {
			index[d.Day] = len(days)
			days = append(days, config.DaySchedule{Day: d.Day, Label: d.Label})
			i = len(days) - 1
		}
		days[i].Windows = append(days[i].Windows, d.Windows...)
	}
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Day < days[j].Day
	})
	return days
}
