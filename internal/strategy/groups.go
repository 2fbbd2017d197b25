package strategy

import "github.com/derekprior/fieldplan/internal/config"

// Group is one round-robin group of a category.
type Group struct {
	Label string        `json:"label"`
	Teams []config.Team `json:"teams"`
}

// TeamNames returns the group's team names in placement order.
func (g Group) TeamNames() []string {
	names := make([]string, len(g.Teams))
	for i, t := range g.Teams {
		names[i] = t.Name
	}
	return names
}

// GroupCount is the number of groups needed for n teams. A partly filled
// group still counts as a whole group.
func GroupCount(teams, groupSize int) int {
	if teams <= 0 || groupSize <= 0 {
		return 0
	}
	return (teams + groupSize - 1) / groupSize
}

// Partition splits teams into groups of groupSize in registration order.
// With avoidSameClub, each team goes to the first group that has room and no
// team from the same club, falling back to the first group with room.
func Partition(teams []config.Team, groupSize int, avoidSameClub bool) []Group {
	count := GroupCount(len(teams), groupSize)
	groups := make([]Group, count)
	for i := range groups {
		groups[i].Label = GroupLabel(i)
	}

	for i, team := range teams {
		if !avoidSameClub {
			g := &groups[i/groupSize]
			g.Teams = append(g.Teams, team)
			continue
		}
		target := -1
		for gi := range groups {
			if len(groups[gi].Teams) >= groupSize {
				continue
			}
			if target < 0 {
				target = gi
			}
			if !hasClub(groups[gi], team.Club) {
				target = gi
				break
			}
		}
		groups[target].Teams = append(groups[target].Teams, team)
	}
	return groups
}

func hasClub(g Group, club string) bool {
	if club == "" {
		return false
	}
	for _, t := range g.Teams {
		if t.Club == club {
			return true
		}
	}
	return false
}

// GroupLabel names the i-th group (0-based): A, B, ..., Z, AA, AB, ...
func GroupLabel(i int) string {
	label := ""
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		label = string(rune('A'+(n-1)%26)) + label
	}
	return label
}
