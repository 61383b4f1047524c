package types

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisSource records which path produced an analysis' flags.
type AnalysisSource string

const (
	SourceLocalRegistry AnalysisSource = "local_registry"
	SourceAIFallback    AnalysisSource = "ai_fallback"
)

// IngredientFlag describes one risky ingredient found in a product.
type IngredientFlag struct {
	IngredientName      string           `json:"ingredient_name"`
	CanonicalName       string           `json:"canonical_name"`
	RiskLevel           RiskLevel        `json:"risk_level"`
	Categories          []string         `json:"categories,omitempty"`
	Explanation         string           `json:"explanation"`
	AffectedMemberTypes []MemberType     `json:"affected_member_types"`
	AffectedConditions  HealthConditions `json:"affected_conditions"`
	EvidenceURL         string           `json:"evidence_url,omitempty"`
}

// Affects reports whether the flag applies to a member of the given type
// or with any of the given conditions.
func (f IngredientFlag) Affects(memberType MemberType, conditions HealthConditions) bool {
	for _, t := range f.AffectedMemberTypes {
		if t == memberType {
			return true
		}
	}
	for _, c := range conditions {
		if f.AffectedConditions.Contains(c) {
			return true
		}
	}
	return false
}

// MemberRisk summarizes the flags that apply to one household member.
type MemberRisk struct {
	MemberID        uuid.UUID        `json:"member_id"`
	MemberName      string           `json:"member_name"`
	MemberType      MemberType       `json:"member_type"`
	OverallRisk     RiskLevel        `json:"overall_risk"`
	Score           float64          `json:"score"`
	Flags           []IngredientFlag `json:"flags"`
	Summary         string           `json:"summary"`
	AllergenMatches []string         `json:"allergen_matches,omitempty"`
}

// ScoreBreakdown holds the weighted components that make up a FAM score.
type ScoreBreakdown struct {
	NutriScore    float64 `json:"nutri_score"`
	RiskPenalty   float64 `json:"risk_penalty"`
	GoalFit       float64 `json:"goal_fit"`
	BudgetPenalty float64 `json:"budget_penalty"`
}

// AnalysisResult is the complete outcome of analyzing one product for one household.
// MemberRisks has one entry per roster member, in roster order. An empty
// roster is scored against the default adult profile but yields no
// MemberRisks, since there is no member to attach them to.
type AnalysisResult struct {
	ProductID       string           `json:"product_id"`
	OverallScore    float64          `json:"overall_score"`
	OverallRisk     RiskLevel        `json:"overall_risk"`
	Flags           []IngredientFlag `json:"flags"`
	MemberRisks     []MemberRisk     `json:"member_risks"`
	Explanation     string           `json:"explanation"`
	AnalyzedAt      time.Time        `json:"analyzed_at"`
	Breakdown       ScoreBreakdown   `json:"breakdown"`
	Recommendations []string         `json:"recommendations,omitempty"`
	NovaGroup       int              `json:"nova_group,omitempty"`
	NutriGrade      string           `json:"nutri_grade,omitempty"`
	Source          AnalysisSource   `json:"source,omitempty"`
}

// Alternative is a suggested replacement for a flagged product.
type Alternative struct {
	Name      string  `json:"name"`
	Reason    string  `json:"reason"`
	Score     float64 `json:"score"`
	ProductID string  `json:"product_id,omitempty"`
}
