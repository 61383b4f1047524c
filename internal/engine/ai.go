package engine

import (
	"strings"

	"github.com/famnudger/fam/backend/internal/types"
)

// AIFlag is one ingredient assessment as returned by an external classifier.
type AIFlag struct {
	Ingredient       string   `json:"ingredient"`
	RiskLevel        string   `json:"risk_level"`
	Category         string   `json:"category,omitempty"`
	Concern          string   `json:"concern"`
	AffectedProfiles []string `json:"affected_profiles"`
}

var aiRiskLevels = map[string]types.RiskLevel{
	"none":     types.RiskSafe,
	"safe":     types.RiskSafe,
	"low":      types.RiskLow,
	"medium":   types.RiskMedium,
	"moderate": types.RiskMedium,
	"high":     types.RiskHigh,
	"critical": types.RiskCritical,
}

// profileAliases maps free-form classifier wording onto profile tags.
var profileAliases = map[string]string{
	"children":            "child",
	"kids":                "child",
	"infant":              "toddler",
	"infants":             "toddler",
	"toddlers":            "toddler",
	"elderly":             "senior",
	"seniors":             "senior",
	"pregnancy":           "pregnant",
	"pregnant-women":      "pregnant",
	"diabetes":            "diabetic",
	"diabetics":           "diabetic",
	"hypertension":        "hypertensive",
	"high-blood-pressure": "hypertensive",
	"heart-disease":       "cardiac",
	"cardiovascular":      "cardiac",
	"celiac-disease":      "celiac",
	"lactose-intolerance": "lactose-intolerant",
	"gluten-sensitivity":  "gluten-sensitive",
	"kidney":              "kidney-disease",
	"liver":               "liver-disease",
	"obese":               "obesity",
}

// NormalizeAIFlags converts classifier output into flags with the same shape
// the registry path produces. Affected profiles are reduced to known member
// types and conditions present in tags; entries without an ingredient are dropped.
func NormalizeAIFlags(raw []AIFlag, tags TagSet) []types.IngredientFlag {
	flags := make([]types.IngredientFlag, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Ingredient)
		if name == "" {
			continue
		}

		level, ok := aiRiskLevels[strings.ToLower(strings.TrimSpace(r.RiskLevel))]
		if !ok {
			level = types.RiskLow
		}

		category := Category(strings.ToLower(strings.TrimSpace(r.Category)))
		if !knownCategories[category] {
			category = CategoryOther
		}

		memberTypes := []types.MemberType{}
		conditions := types.HealthConditions{}
		seen := map[string]bool{}
		for _, p := range r.AffectedProfiles {
			tag := profileTag(p)
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

		explanation := strings.TrimSpace(r.Concern)
		if explanation == "" {
			explanation = explainCategory(category, strings.ToLower(name))
		}

		flags = append(flags, types.IngredientFlag{
			IngredientName:      name,
			CanonicalName:       strings.ToLower(name),
			RiskLevel:           level,
			Categories:          []string{string(category)},
			Explanation:         explanation,
			AffectedMemberTypes: memberTypes,
			AffectedConditions:  conditions,
		})
	}
	return flags
}

func profileTag(p string) string {
	tag := strings.Join(normalizeWords(p), "-")
	if alias, ok := profileAliases[tag]; ok {
		return alias
	}
	return tag
}
