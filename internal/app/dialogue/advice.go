package dialogue

import (
	"strings"

	"github.com/PabloGalante/partsdesk/internal/app/intent"
	"github.com/PabloGalante/partsdesk/internal/domain"
)

// Advice is a canned troubleshooting summary for a common problem.
type Advice struct {
	Problem     string
	Category    domain.Appliance
	Solutions   []string
	CommonParts []string
	Warnings    []string
}

var adviceTable = []Advice{
	{
		Problem:  "ice maker not working",
		Category: domain.ApplianceRefrigerator,
		Solutions: []string{
			"Check if the ice maker is turned on and the water supply is connected",
			"Inspect the water filter - replace if clogged or overdue",
			"Test the ice maker assembly for proper operation",
			"Check water inlet valve for proper water flow",
		},
		CommonParts: []string{"PS12584610", "PS733947", "PS2179605"},
		Warnings:    []string{"Always disconnect power before servicing", "Check warranty status before repairs"},
	},
	{
		Problem:  "dishwasher not draining",
		Category: domain.ApplianceDishwasher,
		Solutions: []string{
			"Clean the drain filter at the bottom of the tub",
			"Check the drain hose for kinks or clogs",
			"Run the garbage disposal if the dishwasher drains through it",
			"Test the drain pump for proper operation",
		},
		CommonParts: []string{"PS11756692", "PS11746240", "PS11753379"},
		Warnings:    []string{"Turn off power and water supply before servicing", "Wear gloves when handling drain components"},
	},
	{
		Problem:  "refrigerator not cooling",
		Category: domain.ApplianceRefrigerator,
		Solutions: []string{
			"Verify temperature settings (37°F fridge, 0°F freezer)",
			"Clean the condenser coils",
			"Check the evaporator fan motor",
			"Inspect the defrost system",
		},
		CommonParts: []string{"PS2355119", "PS2071928"},
		Warnings:    []string{"Allow 24 hours after temperature adjustments", "Unplug refrigerator before electrical work"},
	},
	{
		Problem:  "dishwasher not cleaning dishes",
		Category: domain.ApplianceDishwasher,
		Solutions: []string{
			"Check spray arms for clogs and clean if necessary",
			"Verify proper loading technique and use appropriate detergent",
			"Inspect door seals for proper sealing during wash cycle",
			"Test wash pump motor pressure and operation",
		},
		CommonParts: []string{"PS11739132", "PS11747979"},
		Warnings:    []string{"Use only dishwasher-safe detergents", "Check water temperature (120°F recommended)"},
	},
}

// LookupAdvice returns the entry whose problem phrase occurs in the message,
// or else the entry sharing the most keywords with it. "not" is not a keyword.
func LookupAdvice(message string) *Advice {
	text := intent.Normalize(message)

	var (
		best      *Advice
		bestScore int
	)
	for i := range adviceTable {
		a := &adviceTable[i]
		if strings.Contains(text, a.Problem) {
			return a
		}
		score := 0
		for _, kw := range strings.Fields(a.Problem) {
			if kw == "not" {
				continue
			}
			if (intent.Words{kw}).Match(text) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = a, score
		}
	}
	return best
}

// AdviceFor returns every entry for an appliance category.
func AdviceFor(category domain.Appliance) []Advice {
	var out []Advice
	for _, a := range adviceTable {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}
