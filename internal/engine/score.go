package engine

import (
	"math"

	"github.com/famnudger/fam/backend/internal/types"
)

// Score weights and defaults.
const (
	WeightNutri  = 0.30
	WeightRisk   = 0.35
	WeightGoal   = 0.25
	WeightBudget = 0.10

	DefaultNutriScore    = 50.0
	DefaultGoalFit       = 50.0
	DefaultBudgetPenalty = 0.0
)

var riskPenaltyCost = map[types.RiskLevel]float64{
	types.RiskSafe:     0,
	types.RiskLow:      5,
	types.RiskMedium:   10,
	types.RiskHigh:     20,
	types.RiskCritical: 30,
}

// Estimates are the optional upstream inputs to the score, each on 0..100.
// A nil field falls back to its default.
type Estimates struct {
	NutriScore    *float64
	GoalFit       *float64
	BudgetPenalty *float64
}

// Score is the aggregated product score and its components.
type Score struct {
	Value     float64
	Risk      types.RiskLevel
	Breakdown types.ScoreBreakdown
}

// RiskPenalty sums the per-level cost of every flag.
func RiskPenalty(flags []types.IngredientFlag) float64 {
	var total float64
	for _, f := range flags {
		total += riskPenaltyCost[f.RiskLevel]
	}
	return total
}

// Aggregate combines nutrition, risk, goal fit and budget into a 0..100 score:
//
//	0.30*nutri - 0.35*riskPenalty + 0.25*goalFit - 0.10*budgetPenalty
func Aggregate(flags []types.IngredientFlag, est Estimates) Score {
	nutri := estimateOr(est.NutriScore, DefaultNutriScore)
	goal := estimateOr(est.GoalFit, DefaultGoalFit)
	budget := estimateOr(est.BudgetPenalty, DefaultBudgetPenalty)
	penalty := RiskPenalty(flags)

	value := WeightNutri*nutri - WeightRisk*penalty + WeightGoal*goal - WeightBudget*budget
	value = clamp(value, 0, 100)

	return Score{
		Value: value,
		Risk:  RiskForScore(value),
		Breakdown: types.ScoreBreakdown{
			NutriScore:    nutri,
			RiskPenalty:   penalty,
			GoalFit:       goal,
			BudgetPenalty: budget,
		},
	}
}

// RiskForScore buckets a score into a risk level.
func RiskForScore(score float64) types.RiskLevel {
	switch {
	case score >= 80:
		return types.RiskSafe
	case score >= 60:
		return types.RiskLow
	case score >= 40:
		return types.RiskMedium
	case score >= 20:
		return types.RiskHigh
	default:
		return types.RiskCritical
	}
}

func estimateOr(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return def
	}
	return clamp(*v, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
