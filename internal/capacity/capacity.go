package capacity

import (
	"github.com/rotisserie/eris"

	"github.com/derekprior/fieldplan/internal/config"
)

// DayReport is the capacity of a single configured day, for display.
type DayReport struct {
	Day           int    `json:"day"`
	Label         string `json:"label"`
	Minutes       int    `json:"minutes"`
	SlotsPerField int    `json:"slots_per_field"`
}

// Report is the theoretical maximum number of matches a venue can host.
type Report struct {
	TotalAvailableMinutes int         `json:"total_available_minutes"`
	MatchSlotMinutes      int         `json:"match_slot_minutes"`
	Fields                int         `json:"fields"`
	SlotsPerField         int         `json:"slots_per_field"`
	TotalSlots            int         `json:"total_slots"`
	Days                  []DayReport `json:"days,omitempty"`
}

// Estimate divides the available minutes into match slots on every field.
// It assumes each field is usable for every available minute, so the result
// is a ceiling rather than a realistic throughput.
func Estimate(totalMinutes, slotMinutes, fields int) (Report, error) {
	if slotMinutes <= 0 {
		return Report{}, eris.Wrapf(config.ErrInvalidConfig, "match slot duration must be positive, got %d", slotMinutes)
	}
	if fields < 1 {
		return Report{}, eris.Wrapf(config.ErrInvalidConfig, "at least one field is required, got %d", fields)
	}
	if totalMinutes < 0 {
		return Report{}, eris.Wrapf(config.ErrInvalidConfig, "available minutes cannot be negative, got %d", totalMinutes)
	}

	perField := totalMinutes / slotMinutes
	return Report{
		TotalAvailableMinutes: totalMinutes,
		MatchSlotMinutes:      slotMinutes,
		Fields:                fields,
		SlotsPerField:         perField,
		TotalSlots:            perField * fields,
	}, nil
}

// ForVenue estimates the capacity of v and fills in the per-day breakdown.
// Timing is rejected before any division happens.
func ForVenue(v *config.Venue) (Report, error) {
	slot, err := SlotMinutes(v.Timing)
	if err != nil {
		return Report{}, eris.Wrapf(err, "venue %q", v.ID)
	}

	report, err := Estimate(AvailableMinutes(v.Schedule), slot, v.Fields)
	if err != nil {
		return Report{}, eris.Wrapf(err, "venue %q", v.ID)
	}

	for _, day := range v.Schedule {
		minutes := DayMinutes(day)
		report.Days = append(report.Days, DayReport{
			Day:           day.Day,
			Label:         day.Label,
			Minutes:       minutes,
			SlotsPerField: minutes / slot,
		})
	}
	return report, nil
}
