package engine

import (
	"github.com/famnudger/fam/backend/internal/types"
)

type band struct {
	above  float64
	points float64
}

// Bands are checked in order; the first threshold exceeded wins.
var (
	energyBands       = []band{{335, -10}, {250, -5}}
	sugarBands        = []band{{22.5, -15}, {12.5, -10}, {5, -5}}
	saturatedFatBands = []band{{5, -15}, {2.5, -10}, {1, -5}}
	sodiumBands       = []band{{600, -15}, {400, -10}, {200, -5}}
	fiberBands        = []band{{4.7, 15}, {2.8, 10}, {0.9, 5}}
	proteinBands      = []band{{8, 10}, {4.7, 5}}
)

func bandPoints(v *float64, bands []band) float64 {
	if v == nil {
		return 0
	}
	for _, b := range bands {
		if *v > b.above {
			return b.points
		}
	}
	return 0
}

// EstimateNutriScore derives a 0..100 nutritional quality estimate from
// per-100g nutrition facts, starting from a neutral 50.
func EstimateNutriScore(n types.NutritionFacts) float64 {
	score := DefaultNutriScore
	score += bandPoints(n.EnergyKcal, energyBands)
	score += bandPoints(n.Sugars, sugarBands)
	score += bandPoints(n.SaturatedFat, saturatedFatBands)
	score += bandPoints(n.SodiumMg, sodiumBands)
	score += bandPoints(n.Fiber, fiberBands)
	score += bandPoints(n.Protein, proteinBands)
	return clamp(score, 0, 100)
}

// NutriGrade converts a nutrition estimate into a letter from A to E.
func NutriGrade(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	case score >= 20:
		return "D"
	default:
		return "E"
	}
}

// EstimateBudgetPenalty maps a shelf price onto a 0..100 budget penalty.
func EstimateBudgetPenalty(price float64) float64 {
	switch {
	case price > 20:
		return 30
	case price > 10:
		return 20
	case price > 5:
		return 10
	default:
		return 0
	}
}

var ultraProcessedMarkers = [][]string{
	{"high", "fructose", "corn", "syrup"},
	{"maltodextrin"},
	{"dextrose"},
	{"hydrogenated"},
	{"modified", "starch"},
	{"hydrolyzed"},
	{"artificial"},
	{"natural", "flavor"},
	{"natural", "flavour"},
	{"natural", "flavors"},
	{"natural", "flavours"},
	{"color"},
	{"colour"},
	{"colors"},
	{"colours"},
	{"emulsifier"},
	{"emulsifiers"},
	{"stabilizer"},
	{"stabilizers"},
	{"thickener"},
	{"thickeners"},
	{"anti", "caking"},
	{"bulking", "agent"},
}

// ClassifyProcessing estimates the NOVA processing group (1 unprocessed to
// 4 ultra-processed) from industrial markers and severe flags.
func ClassifyProcessing(ingredients []string, flags []types.IngredientFlag) int {
	if len(ingredients) == 0 {
		return 0
	}

	markers := 0
	for _, marker := range ultraProcessedMarkers {
		for _, ing := range ingredients {
			if containsRun(normalizeWords(ing), marker) {
				markers++
				break
			}
		}
	}

	severe := 0
	for _, f := range flags {
		if f.RiskLevel.AtLeast(types.RiskHigh) {
			severe++
		}
	}

	switch {
	case markers >= 3 || severe >= 2:
		return 4
	case markers >= 1 || severe >= 1:
		return 3
	case len(ingredients) > 5:
		return 2
	default:
		return 1
	}
}
