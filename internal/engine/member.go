package engine

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/famnudger/fam/backend/internal/types"
)

// memberWorkers bounds concurrent member derivations.
const memberWorkers = 8

// DeriveMemberRisk filters flags down to those affecting m and summarizes them.
// The member's score is the product score recomputed over the relevant flags only.
func DeriveMemberRisk(m types.FamilyMember, flags []types.IngredientFlag, est Estimates) types.MemberRisk {
	memberType := effectiveType(m.Type)

	relevant := []types.IngredientFlag{}
	for _, f := range flags {
		if f.Affects(memberType, m.Conditions) {
			relevant = append(relevant, f)
		}
	}

	overall := types.RiskSafe
	for _, f := range relevant {
		overall = types.MaxRisk(overall, f.RiskLevel)
	}

	return types.MemberRisk{
		MemberID:    m.ID,
		MemberName:  m.Name,
		MemberType:  memberType,
		OverallRisk: overall,
		Score:       Aggregate(relevant, est).Value,
		Flags:       relevant,
		Summary:     memberSummary(m.Name, relevant, overall),
	}
}

// DeriveMemberRisks derives every member's risk concurrently. The result is
// in roster order. Allergy matches against ingredients are attached for
// display and do not change a member's risk.
func DeriveMemberRisks(members []types.FamilyMember, flags []types.IngredientFlag, ingredients []string, est Estimates) []types.MemberRisk {
	out := make([]types.MemberRisk, len(members))
	var g errgroup.Group
	g.SetLimit(memberWorkers)
	for i := range members {
		g.Go(func() error {
			risk := DeriveMemberRisk(members[i], flags, est)
			risk.AllergenMatches = MatchAllergens(members[i].Allergies, ingredients)
			out[i] = risk
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// MatchAllergens returns the ingredients that mention any of the allergies
// as whole words. Parenthetical text is kept, since labels often name
// allergens there ("flour (wheat)").
func MatchAllergens(allergies, ingredients []string) []string {
	if len(allergies) == 0 || len(ingredients) == 0 {
		return nil
	}
	patterns := make([][]string, 0, len(allergies))
	for _, a := range allergies {
		if words := normalizeWords(a); len(words) > 0 {
			patterns = append(patterns, words)
		}
	}
	var found []string
	for _, ing := range ingredients {
		words := normalizeWords(ing)
		for _, p := range patterns {
			if containsRun(words, p) {
				found = append(found, ing)
				break
			}
		}
	}
	return found
}

func memberSummary(name string, relevant []types.IngredientFlag, overall types.RiskLevel) string {
	if name == "" {
		name = "this member"
	}
	if len(relevant) == 0 {
		return fmt.Sprintf("No specific concerns found for %s.", name)
	}

	noun := "ingredient"
	if len(relevant) > 1 {
		noun = "ingredients"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d %s of concern for %s (highest risk: %s).", len(relevant), noun, name, overall)
	if overall.AtLeast(types.RiskHigh) {
		b.WriteString(" Consider choosing an alternative product.")
	}
	return b.String()
}
