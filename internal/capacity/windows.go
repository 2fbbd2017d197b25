package capacity

import "github.com/derekprior/fieldplan/internal/config"

// WindowMinutes returns the length of w in minutes, treating an end before
// the start as a window that runs past midnight.
func WindowMinutes(w config.TimeWindow) int {
	return int(w.NormalizedEnd() - w.Start)
}

// DayMinutes sums the windows of a single day.
func DayMinutes(day config.DaySchedule) int {
	total := 0
	for _, w := range day.Windows {
		total += WindowMinutes(w)
	}
	return total
}

// AvailableMinutes sums every window of every day. Overlapping windows are
// not merged, so overlap is counted twice.
func AvailableMinutes(schedule []config.DaySchedule) int {
	total := 0
	for _, day := range schedule {
		total += DayMinutes(day)
	}
	return total
}
