package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famnudger/fam/backend/internal/types"
)

var fixedNow = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	return NewAssembler(mustRegistry(t), WithClock(func() time.Time { return fixedNow }))
}

func flagByName(t *testing.T, flags []types.IngredientFlag, name string) types.IngredientFlag {
	t.Helper()
	for _, f := range flags {
		if f.IngredientName == name {
			return f
		}
	}
	t.Fatalf("no flag for %q", name)
	return types.IngredientFlag{}
}

func TestAssembleWaterAndSugarForEmptyRoster(t *testing.T) {
	a := newTestAssembler(t)
	result := a.Assemble(AnalysisInput{ProductID: "p-1", Ingredients: []string{"Water", "Sugar"}})

	assert.Equal(t, []string{"adult"}, BuildProfileTags(nil).Sorted())
	require.Len(t, result.Flags, 1)
	sugar := result.Flags[0]
	assert.Equal(t, "Sugar", sugar.IngredientName)
	assert.Empty(t, sugar.AffectedMemberTypes)
	assert.Empty(t, sugar.AffectedConditions)
	assert.Empty(t, result.MemberRisks)

	adult := types.FamilyMember{ID: uuid.New(), Name: "Default", Type: types.MemberAdult}
	assert.Equal(t, types.RiskSafe, DeriveMemberRisk(adult, result.Flags, Estimates{}).OverallRisk)

	assert.Equal(t, "p-1", result.ProductID)
	assert.Equal(t, fixedNow, result.AnalyzedAt)
	assert.Equal(t, types.SourceLocalRegistry, result.Source)
	assert.InDelta(t, 27.5-0.35*5, result.OverallScore, 1e-9)
	assert.Equal(t, 1, result.NovaGroup)
}

func TestAssembleChildWithDyesAndSweeteners(t *testing.T) {
	a := newTestAssembler(t)
	age := 6
	child := types.FamilyMember{ID: uuid.New(), Name: "Mia", Type: types.MemberChild, Age: &age}

	result := a.Assemble(AnalysisInput{
		Ingredients: []string{"Red 40", "Aspartame", "High Fructose Corn Syrup"},
		Members:     []types.FamilyMember{child},
	})

	require.Len(t, result.Flags, 3)
	assert.Contains(t, flagByName(t, result.Flags, "Red 40").AffectedMemberTypes, types.MemberChild)
	assert.Contains(t, flagByName(t, result.Flags, "Aspartame").AffectedMemberTypes, types.MemberChild)
	assert.NotContains(t, flagByName(t, result.Flags, "High Fructose Corn Syrup").AffectedMemberTypes, types.MemberChild)

	require.Len(t, result.MemberRisks, 1)
	mr := result.MemberRisks[0]
	assert.True(t, mr.OverallRisk.AtLeast(types.RiskMedium))
	assert.Equal(t, types.RiskHigh, mr.OverallRisk)
	assert.Len(t, mr.Flags, 2)
	assert.Equal(t, 4, result.NovaGroup)
	assert.Equal(t, types.RiskCritical, result.OverallRisk)
}

func TestAssembleCardiacMember(t *testing.T) {
	a := newTestAssembler(t)
	member := types.FamilyMember{
		ID:         uuid.New(),
		Name:       "Sam",
		Type:       types.MemberAdult,
		Conditions: types.HealthConditions{types.ConditionCardiac},
	}

	result := a.Assemble(AnalysisInput{
		Ingredients: []string{"Sodium Nitrate", "Trans Fat", "Salt"},
		Members:     []types.FamilyMember{member},
	})

	nitrate := flagByName(t, result.Flags, "Sodium Nitrate")
	transFat := flagByName(t, result.Flags, "Trans Fat")
	assert.Contains(t, nitrate.AffectedConditions, types.ConditionCardiac)
	assert.Contains(t, transFat.AffectedConditions, types.ConditionCardiac)

	require.Len(t, result.MemberRisks, 1)
	assert.Equal(t, types.MaxRisk(nitrate.RiskLevel, transFat.RiskLevel), result.MemberRisks[0].OverallRisk)
	assert.Len(t, result.MemberRisks[0].Flags, 3)
}

func TestAssembleNoMatchesUsesEstimatesOnly(t *testing.T) {
	a := newTestAssembler(t)
	result := a.Assemble(AnalysisInput{
		Ingredients: []string{"Water", "Oats"},
		Estimates:   Estimates{NutriScore: ptr(90), GoalFit: ptr(80), BudgetPenalty: ptr(20)},
	})
	assert.Empty(t, result.Flags)
	assert.NotNil(t, result.Flags)
	assert.InDelta(t, 0.3*90+0.25*80-0.1*20, result.OverallScore, 1e-9)
	assert.Equal(t, RiskForScore(result.OverallScore), result.OverallRisk)
	assert.Equal(t, "A", result.NutriGrade)
	assert.Equal(t, []string{"No significant concerns found for your health profile."}, result.Recommendations)

	empty := a.Assemble(AnalysisInput{})
	assert.Empty(t, empty.Flags)
	assert.InDelta(t, 27.5, empty.OverallScore, 1e-9)
	assert.Equal(t, "", empty.NutriGrade)
	assert.Equal(t, 0, empty.NovaGroup)
}

func TestAssembleDerivesEstimatesFromNutritionAndPrice(t *testing.T) {
	a := newTestAssembler(t)
	result := a.Assemble(AnalysisInput{
		Ingredients: []string{"Oats"},
		Nutrition:   &types.NutritionFacts{Fiber: ptr(10), Protein: ptr(13)},
		Price:       ptr(12),
	})
	assert.Equal(t, 75.0, result.Breakdown.NutriScore)
	assert.Equal(t, 20.0, result.Breakdown.BudgetPenalty)
	assert.Equal(t, "B", result.NutriGrade)

	explicit := a.Assemble(AnalysisInput{
		Ingredients: []string{"Oats"},
		Estimates:   Estimates{NutriScore: ptr(30)},
		Nutrition:   &types.NutritionFacts{Fiber: ptr(10)},
	})
	assert.Equal(t, 30.0, explicit.Breakdown.NutriScore)
}

func TestAssembleIsIdempotent(t *testing.T) {
	reg := mustRegistry(t)
	clock := fixedNow
	a := NewAssembler(reg, WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))
	in := AnalysisInput{
		ProductID:   "p-2",
		Ingredients: []string{"Caffeine", "Sugar", "Red 40", "Sodium Benzoate"},
		Members: []types.FamilyMember{
			{ID: uuid.New(), Name: "A", Type: types.MemberPregnant},
			{ID: uuid.New(), Name: "B", Type: types.MemberChild, Allergies: []string{"Red"}},
		},
	}

	first := a.Assemble(in)
	second := a.Assemble(in)
	assert.NotEqual(t, first.AnalyzedAt, second.AnalyzedAt)

	second.AnalyzedAt = first.AnalyzedAt
	assert.Equal(t, first, second)
}

func TestAssembleResultRoundTrip(t *testing.T) {
	a := newTestAssembler(t)
	result := a.Assemble(AnalysisInput{
		ProductID:   "p-3",
		Ingredients: []string{"Red 40", "Aspartame", "Salt"},
		Members: []types.FamilyMember{
			{ID: uuid.New(), Name: "Kid", Type: types.MemberChild},
			{ID: uuid.New(), Name: "Dad", Type: types.MemberAdult, Conditions: types.HealthConditions{types.ConditionHypertensive}},
		},
	})

	data, err := json.Marshal(result)
	require.NoError(t, err)
	var decoded types.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, result, decoded)
}

func TestAssembleFromFlags(t *testing.T) {
	a := newTestAssembler(t)
	member := types.FamilyMember{ID: uuid.New(), Name: "Kid", Type: types.MemberChild}
	in := AnalysisInput{Ingredients: []string{"Carmine"}, Members: []types.FamilyMember{member}}
	flags := NormalizeAIFlags([]AIFlag{{Ingredient: "Carmine", RiskLevel: "medium", AffectedProfiles: []string{"child"}}}, BuildProfileTags(in.Members))

	result := a.AssembleFromFlags(in, flags, types.SourceAIFallback)
	assert.Equal(t, types.SourceAIFallback, result.Source)
	require.Len(t, result.MemberRisks, 1)
	assert.Equal(t, types.RiskMedium, result.MemberRisks[0].OverallRisk)
	assert.InDelta(t, 27.5-0.35*10, result.OverallScore, 1e-9)
}
