package feasibility

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/fieldplan/internal/capacity"
	"github.com/derekprior/fieldplan/internal/config"
	"github.com/derekprior/fieldplan/internal/requirement"
)

// Verdict is the judgment of whether required matches fit the available slots.
type Verdict int

const (
	Viable Verdict = iota
	Marginal
	Infeasible
)

// MarginalSurplus is the largest surplus still considered too thin to absorb
// a delay.
const MarginalSurplus = 3

func (v Verdict) String() string {
	switch v {
	case Viable:
		return "viable"
	case Marginal:
		return "marginal"
	case Infeasible:
		return "infeasible"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Result is a verdict with the slot surplus (negative for a deficit) and an
// explanation for the administrator.
type Result struct {
	Verdict      Verdict `json:"verdict"`
	SlotsSurplus int     `json:"slots_surplus"`
	Narrative    string  `json:"narrative"`
}

// Analyze compares available slots with the required matches. It is pure:
// identical inputs always produce an identical result.
func Analyze(totalSlots int, req requirement.Report) Result {
	surplus := totalSlots - req.GrandTotal

	if req.GrandTotal == 0 && req.EnrolledTeams() == 0 {
		return Result{
			Verdict:      Marginal,
			SlotsSurplus: surplus,
			Narrative:    "No categories configured: there are no matches to schedule. Confirm the hosted categories before publishing.",
		}
	}

	if surplus < 0 {
		return Result{
			Verdict:      Infeasible,
			SlotsSurplus: surplus,
			Narrative: fmt.Sprintf("Not enough field time: %d matches are required but only %d slots are available, a deficit of %d slots.%s",
				req.GrandTotal, totalSlots, -surplus, largestDemand(req)),
		}
	}

	if surplus <= MarginalSurplus {
		return Result{
			Verdict:      Marginal,
			SlotsSurplus: surplus,
			Narrative: fmt.Sprintf("Tight schedule: %d matches fit into %d slots with only %s to spare. A single delay collapses the schedule.",
				req.GrandTotal, totalSlots, plural(surplus, "slot")),
		}
	}

	return Result{
		Verdict:      Viable,
		SlotsSurplus: surplus,
		Narrative: fmt.Sprintf("The plan fits: %d matches in %d slots, leaving %s as contingency margin.",
			req.GrandTotal, totalSlots, plural(surplus, "slot")),
	}
}

func largestDemand(req requirement.Report) string {
	best := ""
	most := 0
	for _, id := range req.Order {
		if n := req.PerCategory[id].TotalMatches; n > most {
			best, most = id, n
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" The largest demand is %s with %s.", best, plural(most, "match"))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if strings.HasSuffix(noun, "ch") {
		return fmt.Sprintf("%d %ses", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// VenueAnalysis bundles the capacity, requirement, and verdict for one venue.
type VenueAnalysis struct {
	VenueID     string             `json:"venue_id"`
	VenueName   string             `json:"venue_name"`
	Capacity    capacity.Report    `json:"capacity"`
	Requirement requirement.Report `json:"requirement"`
	Result      Result             `json:"result"`
}

// AnalyzeVenue runs the full feasibility check for the categories v hosts.
// Categories not hosted by v are ignored.
func AnalyzeVenue(v *config.Venue, categories []config.Category) (VenueAnalysis, error) {
	capReport, err := capacity.ForVenue(v)
	if err != nil {
		return VenueAnalysis{}, err
	}

	var hosted []config.Category
	for _, cat := range categories {
		if v.Hosts(cat.ID) {
			hosted = append(hosted, cat)
		}
	}

	reqReport, err := requirement.Calculate(v.Format, hosted)
	if err != nil {
		return VenueAnalysis{}, eris.Wrapf(err, "venue %q", v.ID)
	}

	return VenueAnalysis{
		VenueID:     v.ID,
		VenueName:   v.Name,
		Capacity:    capReport,
		Requirement: reqReport,
		Result:      Analyze(capReport.TotalSlots, reqReport),
	}, nil
}

// AnalyzeVenues analyzes each venue concurrently and returns the results in
// venue order. The first failing venue cancels the rest.
func AnalyzeVenues(ctx context.Context, venues []config.Venue, categories []config.Category) ([]VenueAnalysis, error) {
	results := make([]VenueAnalysis, len(venues))
	g, gCtx := errgroup.WithContext(ctx)
	for i := range venues {
		i := i
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			analysis, err := AnalyzeVenue(&venues[i], categories)
			if err != nil {
				return err
			}
			results[i] = analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
