package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/famnudger/fam/backend/internal/types"
)

// Context keys set by AuthMiddleware.
const (
	ContextHouseholdID = "household_id"
	ContextEmail       = "email"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates household JWTs
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid authorization header format")
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil || claims.HouseholdID == uuid.Nil {
			AbortWithError(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		c.Set(ContextHouseholdID, claims.HouseholdID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// HouseholdID returns the authenticated household, if any.
func HouseholdID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextHouseholdID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}
