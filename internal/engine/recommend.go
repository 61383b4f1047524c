package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/famnudger/fam/backend/internal/types"
)

// MaxAlternatives caps the rule-based suggestions returned for one product.
const MaxAlternatives = 5

var categoryAdvice = []struct {
	category Category
	advice   string
}{
	{CategorySweetener, "Contains artificial sweeteners. Consider products with natural sweeteners like stevia."},
	{CategoryDye, "Contains artificial dyes. Look for products with natural colorings."},
	{CategorySugar, "High in added sugars. Consider low-sugar or sugar-free alternatives."},
	{CategoryPreservative, "Contains preservatives of concern. Fresh or minimally processed options may be better."},
}

var categoryAlternatives = []struct {
	category Category
	alt      types.Alternative
}{
	{CategorySweetener, types.Alternative{Name: "Products with natural sweeteners (stevia, monk fruit)", Reason: "Natural sweeteners without metabolic concerns", Score: 85}},
	{CategoryDye, types.Alternative{Name: "Products with natural colorings", Reason: "Natural colors from fruits and vegetables", Score: 88}},
	{CategorySugar, types.Alternative{Name: "Low-sugar or naturally sweetened alternatives", Reason: "Reduced sugar content for better metabolic health", Score: 82}},
	{CategoryPreservative, types.Alternative{Name: "Fresh or minimally preserved options", Reason: "Fewer preservatives means fewer potential health concerns", Score: 86}},
	{CategoryFat, types.Alternative{Name: "Products with healthy fats (olive oil, avocado)", Reason: "Heart-healthy fats instead of trans fats", Score: 90}},
	{CategoryStimulant, types.Alternative{Name: "Caffeine-free alternatives", Reason: "No stimulants that affect sleep or blood pressure", Score: 88}},
}

var wholeFoodAlternative = types.Alternative{
	Name:   "Whole, unprocessed food alternative",
	Reason: "Whole foods provide nutrients without additives",
	Score:  95,
}

// Recommendations produces short advice lines for a set of flags.
func Recommendations(flags []types.IngredientFlag) []string {
	if len(flags) == 0 {
		return []string{"No significant concerns found for your health profile."}
	}

	var out []string
	severe := 0
	for _, f := range flags {
		if f.RiskLevel.AtLeast(types.RiskHigh) {
			severe++
		}
	}
	if severe > 0 {
		out = append(out, fmt.Sprintf("Found %d high-risk ingredient(s). Consider avoiding this product or finding alternatives.", severe))
	}

	if affected := affectedProfiles(flags); len(affected) > 0 {
		out = append(out, fmt.Sprintf("This product contains ingredients that may affect: %s.", strings.Join(affected, ", ")))
	}

	present := flaggedCategories(flags)
	for _, a := range categoryAdvice {
		if present[a.category] {
			out = append(out, a.advice)
		}
	}
	return out
}

// SuggestAlternatives returns at most MaxAlternatives rule-based swaps, one
// per flagged category, or a whole-food suggestion when nothing specific applies.
func SuggestAlternatives(flags []types.IngredientFlag) []types.Alternative {
	present := flaggedCategories(flags)
	var out []types.Alternative
	for _, c := range categoryAlternatives {
		if len(out) == MaxAlternatives {
			break
		}
		if present[c.category] {
			out = append(out, c.alt)
		}
	}
	if len(out) == 0 {
		out = append(out, wholeFoodAlternative)
	}
	return out
}

func flaggedCategories(flags []types.IngredientFlag) map[Category]bool {
	present := map[Category]bool{}
	for _, f := range flags {
		for _, c := range f.Categories {
			present[Category(c)] = true
		}
	}
	return present
}

// affectedProfiles lists the member types and conditions named by any flag, sorted.
func affectedProfiles(flags []types.IngredientFlag) []string {
	seen := map[string]bool{}
	for _, f := range flags {
		for _, t := range f.AffectedMemberTypes {
			seen[string(t)] = true
		}
		for _, c := range f.AffectedConditions {
			seen[string(c)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
