package engine

import (
	"fmt"
	"time"

	"github.com/famnudger/fam/backend/internal/types"
)

// AnalysisInput is everything the engine needs to analyze one product.
type AnalysisInput struct {
	ProductID   string
	Ingredients []string
	Members     []types.FamilyMember
	Estimates   Estimates
	// Nutrition and Price are used to derive the nutri and budget estimates
	// when those are not supplied directly.
	Nutrition *types.NutritionFacts
	Price     *float64
}

// InputFromRequest converts an API request into engine input.
func InputFromRequest(req types.AnalysisRequest) AnalysisInput {
	return AnalysisInput{
		ProductID:   req.ProductID,
		Ingredients: req.Ingredients,
		Members:     req.Members,
		Estimates: Estimates{
			NutriScore:    req.NutriScoreEstimate,
			GoalFit:       req.GoalFitEstimate,
			BudgetPenalty: req.BudgetPenaltyEstimate,
		},
		Nutrition: req.Nutrition,
		Price:     req.Price,
	}
}

// Assembler runs the full analysis pipeline against a registry.
type Assembler struct {
	registry *Registry
	now      func() time.Time
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the time source used for AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// NewAssembler creates an Assembler over the given registry.
func NewAssembler(registry *Registry, opts ...Option) *Assembler {
	a := &Assembler{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Registry returns the registry the assembler matches against.
func (a *Assembler) Registry() *Registry {
	return a.registry
}

// Assemble runs tags, matching, flagging, scoring and member derivation and
// returns a new result. It never fails; missing estimates fall back to defaults.
func (a *Assembler) Assemble(in AnalysisInput) types.AnalysisResult {
	tags := BuildProfileTags(in.Members)
	flags := GenerateFlags(a.registry.Match(in.Ingredients), tags)
	return a.finish(in, flags, types.SourceLocalRegistry)
}

// AssembleFromFlags finishes an analysis from flags produced elsewhere, such
// as a normalized classifier response. Matching and flag generation are skipped.
func (a *Assembler) AssembleFromFlags(in AnalysisInput, flags []types.IngredientFlag, source types.AnalysisSource) types.AnalysisResult {
	return a.finish(in, flags, source)
}

func (a *Assembler) finish(in AnalysisInput, flags []types.IngredientFlag, source types.AnalysisSource) types.AnalysisResult {
	if flags == nil {
		flags = []types.IngredientFlag{}
	}

	est, grade := resolveEstimates(in)
	score := Aggregate(flags, est)

	return types.AnalysisResult{
		ProductID:       in.ProductID,
		OverallScore:    score.Value,
		OverallRisk:     score.Risk,
		Flags:           flags,
		MemberRisks:     DeriveMemberRisks(in.Members, flags, in.Ingredients, est),
		Explanation:     explainResult(len(in.Ingredients), flags, score),
		AnalyzedAt:      a.now().UTC(),
		Breakdown:       score.Breakdown,
		Recommendations: Recommendations(flags),
		NovaGroup:       ClassifyProcessing(in.Ingredients, flags),
		NutriGrade:      grade,
		Source:          source,
	}
}

// resolveEstimates fills nutri and budget estimates from nutrition facts and
// price when they were not given. The grade is empty without any nutri input.
func resolveEstimates(in AnalysisInput) (Estimates, string) {
	est := in.Estimates
	if est.NutriScore == nil && in.Nutrition != nil {
		v := EstimateNutriScore(*in.Nutrition)
		est.NutriScore = &v
	}
	if est.BudgetPenalty == nil && in.Price != nil {
		v := EstimateBudgetPenalty(*in.Price)
		est.BudgetPenalty = &v
	}
	grade := ""
	if est.NutriScore != nil {
		grade = NutriGrade(estimateOr(est.NutriScore, DefaultNutriScore))
	}
	return est, grade
}

func explainResult(ingredientCount int, flags []types.IngredientFlag, score Score) string {
	if len(flags) == 0 {
		return fmt.Sprintf("No ingredients of concern found among %d ingredient(s). FAM score %.0f (%s).",
			ingredientCount, score.Value, score.Risk)
	}
	worst := types.RiskSafe
	for _, f := range flags {
		worst = types.MaxRisk(worst, f.RiskLevel)
	}
	return fmt.Sprintf("%d of %d ingredient(s) flagged, the most severe at %s risk. FAM score %.0f (%s).",
		len(flags), ingredientCount, worst, score.Value, score.Risk)
}
