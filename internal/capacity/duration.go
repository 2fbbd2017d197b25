package capacity

import (
	"github.com/rotisserie/eris"

	"github.com/derekprior/fieldplan/internal/config"
)

// SlotMinutes returns how long one match occupies a field: every part, the
// breaks between parts, and the rotation to the next match.
func SlotMinutes(t config.MatchTiming) (int, error) {
	if t.Parts < 1 {
		return 0, eris.Wrapf(config.ErrInvalidConfig, "number of parts must be at least 1, got %d", t.Parts)
	}
	if t.PartMinutes < 0 {
		return 0, eris.Wrapf(config.ErrInvalidConfig, "part duration cannot be negative, got %d", t.PartMinutes)
	}
	if t.BreakMinutes < 0 {
		return 0, eris.Wrapf(config.ErrInvalidConfig, "break between parts cannot be negative, got %d", t.BreakMinutes)
	}
	if t.RotationMinutes < 0 {
		return 0, eris.Wrapf(config.ErrInvalidConfig, "rotation time cannot be negative, got %d", t.RotationMinutes)
	}

	slot := t.PartMinutes*t.Parts + t.BreakMinutes*(t.Parts-1) + t.RotationMinutes
	if slot <= 0 {
		return 0, eris.Wrap(config.ErrInvalidConfig, "match slot duration must be positive")
	}
	return slot, nil
}
