// Package requirement estimates how many matches a competition format needs.
//
// The knockout stage is sized with fixed allowances rather than derived from
// the number of qualifying teams.
package requirement

import (
	"github.com/rotisserie/eris"

	"github.com/derekprior/fieldplan/internal/config"
	"github.com/derekprior/fieldplan/internal/strategy"
)

const (
	// MainBracketMatches covers quarterfinals through the final.
	MainBracketMatches = 7
	// SingleGroupBracketMatches covers two semifinals and a final.
	SingleGroupBracketMatches = 3
	// ConsolationBracketMatches is the size of the secondary "silver" bracket.
	ConsolationBracketMatches = 7
)

// CategoryRequirement is the match count for one category.
type CategoryRequirement struct {
	CategoryID          string `json:"category_id"`
	EnrolledTeams       int    `json:"enrolled_teams"`
	GroupCount          int    `json:"group_count"`
	MatchesInGroupStage int    `json:"matches_in_group_stage"`
	MatchesInCrossStage int    `json:"matches_in_cross_stage"`
	TotalMatches        int    `json:"total_matches"`
}

// Report aggregates requirements across the categories of a venue.
type Report struct {
	PerCategory map[string]CategoryRequirement `json:"per_category"`
	// Order lists category ids as they were given, for stable display.
	Order      []string `json:"order"`
	GrandTotal int      `json:"grand_total"`
}

// PairingsPerGroup is the number of matches played inside one full group.
func PairingsPerGroup(f config.Format) (int, error) {
	if f.GroupSize != 3 && f.GroupSize != 4 {
		return 0, eris.Wrapf(config.ErrInvalidConfig, "group size must be 3 or 4, got %d", f.GroupSize)
	}
	pairings := strategy.PairingCount(f.GroupSize)
	if f.DoubleRoundRobin {
		pairings *= 2
	}
	return pairings, nil
}

// ForCategory computes the requirement for one category with the given
// number of enrolled teams.
func ForCategory(f config.Format, categoryID string, enrolled int) (CategoryRequirement, error) {
	pairings, err := PairingsPerGroup(f)
	if err != nil {
		return CategoryRequirement{}, err
	}
	if enrolled < 0 {
		return CategoryRequirement{}, eris.Wrapf(config.ErrInvalidConfig, "category %q: enrolled teams cannot be negative, got %d", categoryID, enrolled)
	}

	req := CategoryRequirement{CategoryID: categoryID, EnrolledTeams: enrolled}
	if enrolled == 0 {
		return req, nil
	}

	req.GroupCount = strategy.GroupCount(enrolled, f.GroupSize)
	req.MatchesInGroupStage = req.GroupCount * pairings

	switch {
	case req.GroupCount >= 2:
		req.MatchesInCrossStage = MainBracketMatches
		if f.ConsolationBracket {
			req.MatchesInCrossStage += ConsolationBracketMatches
		}
	case req.GroupCount == 1:
		req.MatchesInCrossStage = SingleGroupBracketMatches
	}

	req.TotalMatches = req.MatchesInGroupStage + req.MatchesInCrossStage
	return req, nil
}

// Calculate computes every category's requirement and the grand total.
// Categories with no enrolled teams are reported with zero matches.
func Calculate(f config.Format, categories []config.Category) (Report, error) {
	if _, err := PairingsPerGroup(f); err != nil {
		return Report{}, err
	}

	report := Report{PerCategory: make(map[string]CategoryRequirement, len(categories))}
	for _, cat := range categories {
		req, err := ForCategory(f, cat.ID, cat.EnrolledTeamCount())
		if err != nil {
			return Report{}, err
		}
		report.PerCategory[cat.ID] = req
		report.Order = append(report.Order, cat.ID)
		report.GrandTotal += req.TotalMatches
	}
	return report, nil
}

// EnrolledTeams is the number of teams across all categories of the report.
func (r Report) EnrolledTeams() int {
	total := 0
	for _, req := range r.PerCategory {
		total += req.EnrolledTeams
	}
	return total
}
