package engine

import (
	"fmt"
	"strings"

	"github.com/famnudger/fam/backend/internal/types"
)

var categoryExplanations = map[Category]string{
	CategorySweetener:    "%s is an artificial sweetener that may affect metabolic health and gut bacteria.",
	CategoryDye:          "%s is a synthetic color additive linked to hyperactivity in sensitive children.",
	CategoryPreservative: "%s is a preservative that may form harmful compounds or affect sensitive groups.",
	CategoryFat:          "%s may increase cardiovascular risk due to its fat profile.",
	CategorySodium:       "%s adds sodium, which can raise blood pressure.",
	CategorySugar:        "%s is an added sugar that can spike blood glucose and contribute to weight gain.",
	CategoryStimulant:    "%s is a stimulant that can affect sleep, heart rate and blood pressure.",
	CategoryOther:        "%s may not be suitable for some dietary conditions.",
}

// GenerateFlags turns matches into one flag per distinct ingredient string,
// in order of first appearance. Repeats of the same string fold into the
// first one's flag. tags limits the affected member types and conditions to
// those present in the household.
func GenerateFlags(matches []Match, tags TagSet) []types.IngredientFlag {
	if len(matches) == 0 {
		return nil
	}

	var order []string
	groups := make(map[string][]Match)
	for _, m := range matches {
		if _, ok := groups[m.Ingredient]; !ok {
			order = append(order, m.Ingredient)
		}
		groups[m.Ingredient] = append(groups[m.Ingredient], m)
	}

	flags := make([]types.IngredientFlag, 0, len(order))
	for _, ingredient := range order {
		flags = append(flags, buildFlag(groups[ingredient], tags))
	}
	return flags
}

func buildFlag(group []Match, tags TagSet) types.IngredientFlag {
	primary := group[0].Entry
	var categories []Category
	seenCategory := map[Category]bool{}
	for _, m := range group {
		if m.Entry.BaseTier.Rank() > primary.BaseTier.Rank() {
			primary = m.Entry
		}
		if !seenCategory[m.Entry.Category] {
			seenCategory[m.Entry.Category] = true
			categories = append(categories, m.Entry.Category)
		}
	}

	level := primary.BaseTier.RiskLevel()
	if len(categories) >= 2 {
		level = escalate(level)
	}

	memberTypes, conditions := affectedSets(group, tags)

	explanations := make([]string, 0, len(categories))
	categoryNames := make([]string, 0, len(categories))
	for _, c := range categories {
		categoryNames = append(categoryNames, string(c))
		explanations = append(explanations, explainCategory(c, categoryEntryName(group, c)))
	}

	return types.IngredientFlag{
		IngredientName:      group[0].Ingredient,
		CanonicalName:       primary.Name,
		RiskLevel:           level,
		Categories:          categoryNames,
		Explanation:         strings.Join(explanations, " "),
		AffectedMemberTypes: memberTypes,
		AffectedConditions:  conditions,
		EvidenceURL:         evidenceFor(group, primary),
	}
}

// escalate raises a level by one step, stopping at Critical.
func escalate(level types.RiskLevel) types.RiskLevel {
	switch level {
	case types.RiskSafe:
		return types.RiskLow
	case types.RiskLow:
		return types.RiskMedium
	case types.RiskMedium:
		return types.RiskHigh
	default:
		return types.RiskCritical
	}
}

func affectedSets(group []Match, tags TagSet) ([]types.MemberType, types.HealthConditions) {
	memberTypes := []types.MemberType{}
	conditions := types.HealthConditions{}
	seen := map[string]bool{}
	for _, m := range group {
		for _, tag := range m.Entry.AffectedTags {
			if seen[tag] || !tags.Has(tag) {
				continue
			}
			seen[tag] = true
			if types.IsMemberType(tag) {
				memberTypes = append(memberTypes, types.MemberType(tag))
			} else if c, ok := types.ParseHealthCondition(tag); ok {
				conditions = append(conditions, c)
			}
		}
	}
	return memberTypes, conditions
}

func categoryEntryName(group []Match, c Category) string {
	var best *RegistryEntry
	for _, m := range group {
		if m.Entry.Category != c {
			continue
		}
		if best == nil || m.Entry.BaseTier.Rank() > best.BaseTier.Rank() {
			best = m.Entry
		}
	}
	return best.Name
}

func explainCategory(c Category, name string) string {
	tmpl, ok := categoryExplanations[c]
	if !ok {
		tmpl = categoryExplanations[CategoryOther]
	}
	return fmt.Sprintf(tmpl, capitalize(name))
}

func evidenceFor(group []Match, primary *RegistryEntry) string {
	if primary.EvidenceURL != "" {
		return primary.EvidenceURL
	}
	for _, m := range group {
		if m.Entry.EvidenceURL != "" {
			return m.Entry.EvidenceURL
		}
	}
	return ""
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
