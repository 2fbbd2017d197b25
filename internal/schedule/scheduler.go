package schedule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/derekprior/fieldplan/internal/capacity"
	"github.com/derekprior/fieldplan/internal/config"
	"github.com/derekprior/fieldplan/internal/requirement"
	"github.com/derekprior/fieldplan/internal/strategy"
)

var matchNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("fieldplan/match"))

// Conflict explains why a scheduled match needs attention.
type Conflict struct {
	Reason string `json:"reason"`
}

// Match is one scheduled group-stage match.
type Match struct {
	ID              string           `json:"id"`
	CategoryID      string           `json:"category_id"`
	GroupLabel      string           `json:"group"`
	TeamA           string           `json:"team_a"`
	TeamB           string           `json:"team_b"`
	Leg             int              `json:"leg"`
	Day             int              `json:"day"`
	DayLabel        string           `json:"day_label,omitempty"`
	Start           config.TimeOfDay `json:"start"`
	Field           int              `json:"field"`
	DurationMinutes int              `json:"duration_minutes"`
	Conflict        *Conflict        `json:"conflict,omitempty"`
}

// End is the time the match frees its field.
func (m Match) End() config.TimeOfDay {
	return m.Start + config.TimeOfDay(m.DurationMinutes)
}

// Pairing is a match that was generated but could not be given a slot.
type Pairing struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	GroupLabel string `json:"group"`
	TeamA      string `json:"team_a"`
	TeamB      string `json:"team_b"`
	Leg        int    `json:"leg"`
}

// CategoryGroups records how a category's teams were split into groups.
type CategoryGroups struct {
	CategoryID string           `json:"category_id"`
	Groups     []strategy.Group `json:"groups"`
}

// Draw is the output of one generation run. A new run replaces it entirely.
type Draw struct {
	VenueID     string           `json:"venue_id"`
	SlotMinutes int              `json:"slot_minutes"`
	Groups      []CategoryGroups `json:"groups"`
	Matches     []Match          `json:"matches"`
	Unscheduled []Pairing        `json:"unscheduled,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// Conflicts returns the scheduled matches that carry a conflict.
func (d *Draw) Conflicts() []Match {
	var flagged []Match
	for _, m := range d.Matches {
		if m.Conflict != nil {
			flagged = append(flagged, m)
		}
	}
	return flagged
}

// Generate partitions each category into groups, pairs every group
// round-robin, and gives the n-th pairing the n-th slot of the venue.
// Pairings left over when slots run out are returned in Unscheduled rather
// than wrapped onto earlier days. Matches are ordered by field, day, and
// start time, and identical inputs always produce an identical draw.
func Generate(v *config.Venue, categories []config.Category, constraints []config.ArrivalConstraint) (*Draw, error) {
	if v.Fields < 1 {
		return nil, eris.Wrapf(config.ErrInvalidConfig, "venue %q: at least one field is required, got %d", v.ID, v.Fields)
	}
	slotMinutes, err := capacity.SlotMinutes(v.Timing)
	if err != nil {
		return nil, eris.Wrapf(err, "venue %q", v.ID)
	}
	if _, err := requirement.PairingsPerGroup(v.Format); err != nil {
		return nil, eris.Wrapf(err, "venue %q", v.ID)
	}

	for _, cat := range categories {
		if n := cat.EnrolledTeamCount(); n < 0 {
			return nil, eris.Wrapf(config.ErrInvalidConfig, "category %q: enrolled teams cannot be negative, got %d", cat.ID, n)
		}
	}

	draw := &Draw{VenueID: v.ID, SlotMinutes: slotMinutes}
	strat := strategy.ForFormat(v.Format)

	var pairings []Pairing
	for _, cat := range categories {
		groups := strategy.Partition(Roster(cat), v.Format.GroupSize, v.Format.AvoidSameClub)
		draw.Groups = append(draw.Groups, CategoryGroups{CategoryID: cat.ID, Groups: groups})

		for _, g := range groups {
			for seq, game := range strat.GenerateMatchups(g.TeamNames()) {
				pairings = append(pairings, Pairing{
					ID:         matchID(v.ID, cat.ID, g.Label, seq, game),
					CategoryID: cat.ID,
					GroupLabel: g.Label,
					TeamA:      game.Home,
					TeamB:      game.Away,
					Leg:        game.Leg,
				})
			}
		}
	}

	slots := GenerateSlots(v, slotMinutes)
	for i, p := range pairings {
		if i >= len(slots) {
			draw.Unscheduled = append(draw.Unscheduled, pairings[i:]...)
			break
		}
		s := slots[i]
		draw.Matches = append(draw.Matches, Match{
			ID:              p.ID,
			CategoryID:      p.CategoryID,
			GroupLabel:      p.GroupLabel,
			TeamA:           p.TeamA,
			TeamB:           p.TeamB,
			Leg:             p.Leg,
			Day:             s.Day,
			DayLabel:        s.DayLabel,
			Start:           s.Start,
			Field:           s.Field,
			DurationMinutes: slotMinutes,
		})
	}

	flagConflicts(draw.Matches, constraints)

	sort.SliceStable(draw.Matches, func(i, j int) bool {
		a, b := draw.Matches[i], draw.Matches[j]
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.Start < b.Start
	})

	if n := len(draw.Unscheduled); n > 0 {
		draw.Warnings = append(draw.Warnings, fmt.Sprintf(
			"%d of %d matches could not be scheduled: all %d slots are taken", n, len(pairings), len(slots)))
	}
	if n := len(draw.Conflicts()); n > 0 {
		draw.Warnings = append(draw.Warnings, fmt.Sprintf("%d matches have conflicts", n))
	}

	return draw, nil
}

// Roster returns the category's teams, or numbered placeholders when only
// an enrolled count is known.
func Roster(cat config.Category) []config.Team {
	if len(cat.Teams) > 0 {
		return cat.Teams
	}
	teams := make([]config.Team, cat.EnrolledTeams)
	for i := range teams {
		teams[i] = config.Team{Name: fmt.Sprintf("%s #%d", cat.ID, i+1)}
	}
	return teams
}

func matchID(venueID, categoryID, group string, seq int, g strategy.Game) string {
	name := fmt.Sprintf("%s/%s/%s/%d/%s/%s/%d", venueID, categoryID, group, seq, g.Home, g.Away, g.Leg)
	return uuid.NewSHA1(matchNamespace, []byte(name)).String()
}

// flagConflicts marks matches that start before their group can arrive, and
// matches where a team is already playing on another field.
func flagConflicts(matches []Match, constraints []config.ArrivalConstraint) {
	type teamDay struct {
		category string
		team     string
		day      int
	}
	playing := make(map[teamDay][]int)
	for i, m := range matches {
		for _, team := range []string{m.TeamA, m.TeamB} {
			k := teamDay{m.CategoryID, team, m.Day}
			playing[k] = append(playing[k], i)
		}
	}

	for i := range matches {
		m := &matches[i]
		var reasons []string

		for _, ac := range constraints {
			if ac.Category != m.CategoryID || ac.Group != m.GroupLabel {
				continue
			}
			if ac.Day != nil && *ac.Day != m.Day {
				continue
			}
			if m.Start < ac.Earliest {
				reasons = append(reasons, fmt.Sprintf("starts at %s but group %s arrives at %s", m.Start, m.GroupLabel, ac.Earliest))
			}
		}

		for _, team := range []string{m.TeamA, m.TeamB} {
			for _, j := range playing[teamDay{m.CategoryID, team, m.Day}] {
				if j == i {
					continue
				}
				other := matches[j]
				if m.Start < other.End() && other.Start < m.End() {
					reasons = append(reasons, fmt.Sprintf("%s also plays at %s on field %d", team, other.Start, other.Field))
				}
			}
		}

		if len(reasons) > 0 {
			m.Conflict = &Conflict{Reason: strings.Join(reasons, "; ")}
		}
	}
}
