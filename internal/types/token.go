package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in a household JWT
type TokenClaims struct {
	jwt.RegisteredClaims
	HouseholdID uuid.UUID `json:"household_id"`
	Email       string    `json:"email"`
}
