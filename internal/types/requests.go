package types

import (
	"github.com/google/uuid"
)

// NutritionFacts are per-100g values as reported by a product database.
type NutritionFacts struct {
	EnergyKcal   *float64 `json:"energy_kcal,omitempty"`
	Sugars       *float64 `json:"sugars,omitempty"`
	SaturatedFat *float64 `json:"saturated_fat,omitempty"`
	SodiumMg     *float64 `json:"sodium_mg,omitempty"`
	Fiber        *float64 `json:"fiber,omitempty"`
	Protein      *float64 `json:"protein,omitempty"`
}

// AnalysisRequest is the body of POST /analyses.
type AnalysisRequest struct {
	ProductID             string          `json:"product_id"`
	Barcode               string          `json:"barcode,omitempty"`
	Ingredients           []string        `json:"ingredients"`
	Members               []FamilyMember  `json:"members,omitempty"`
	NutriScoreEstimate    *float64        `json:"nutri_score_estimate,omitempty"`
	GoalFitEstimate       *float64        `json:"goal_fit_estimate,omitempty"`
	BudgetPenaltyEstimate *float64        `json:"budget_penalty_estimate,omitempty"`
	Nutrition             *NutritionFacts `json:"nutrition,omitempty"`
	Price                 *float64        `json:"price,omitempty"`
}

// CreateMemberRequest is the body of POST /members.
type CreateMemberRequest struct {
	Name               string           `json:"name" binding:"required"`
	Type               MemberType       `json:"type"`
	Age                *int             `json:"age"`
	Conditions         HealthConditions `json:"conditions"`
	Allergies          []string         `json:"allergies"`
	DietaryPreferences []string         `json:"dietary_preferences"`
}

// RegisterRequest creates a household account.
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	HouseholdName string `json:"household_name" binding:"required"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token       string    `json:"token"`
	HouseholdID uuid.UUID `json:"household_id"`
}

// AnalysisResponse wraps a stored analysis with its record ID. ID is the nil
// UUID when the analysis could not be stored.
type AnalysisResponse struct {
	ID     uuid.UUID      `json:"id"`
	Cached bool           `json:"cached"`
	Result AnalysisResult `json:"result"`
}
