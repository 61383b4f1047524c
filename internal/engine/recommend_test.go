package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famnudger/fam/backend/internal/types"
)

func TestRecommendationsNoFlags(t *testing.T) {
	assert.Equal(t, []string{"No significant concerns found for your health profile."}, Recommendations(nil))
}

func TestRecommendations(t *testing.T) {
	flags := []types.IngredientFlag{
		{RiskLevel: types.RiskHigh, Categories: []string{"dye"}, AffectedMemberTypes: []types.MemberType{types.MemberChild}},
		{RiskLevel: types.RiskLow, Categories: []string{"sugar"}, AffectedConditions: types.HealthConditions{types.ConditionDiabetic}},
	}
	recs := Recommendations(flags)
	require.Len(t, recs, 4)
	assert.Equal(t, "Found 1 high-risk ingredient(s). Consider avoiding this product or finding alternatives.", recs[0])
	assert.Equal(t, "This product contains ingredients that may affect: child, diabetic.", recs[1])
	assert.Contains(t, recs[2], "artificial dyes")
	assert.Contains(t, recs[3], "added sugars")
}

func TestSuggestAlternatives(t *testing.T) {
	alts := SuggestAlternatives(nil)
	require.Len(t, alts, 1)
	assert.Equal(t, "Whole, unprocessed food alternative", alts[0].Name)
	assert.Equal(t, 95.0, alts[0].Score)

	flags := []types.IngredientFlag{
		{Categories: []string{"fat"}},
		{Categories: []string{"dye", "sugar"}},
		{Categories: []string{"dye"}},
	}
	alts = SuggestAlternatives(flags)
	require.Len(t, alts, 3)
	assert.Equal(t, "Products with natural colorings", alts[0].Name)
	assert.Equal(t, "Low-sugar or naturally sweetened alternatives", alts[1].Name)
	assert.Equal(t, 90.0, alts[2].Score)

	every := []types.IngredientFlag{{Categories: []string{"sweetener", "dye", "sugar", "preservative", "fat", "stimulant"}}}
	assert.Len(t, SuggestAlternatives(every), MaxAlternatives)
}
