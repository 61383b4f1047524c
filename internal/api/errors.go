package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/famnudger/fam/backend/internal/middleware"
	"github.com/famnudger/fam/backend/internal/service"
)

// errorMapping translates service errors into HTTP status and error code.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
	{service.ErrHouseholdExists, http.StatusConflict, "household_exists"},
	{service.ErrMemberNotFound, http.StatusNotFound, "member_not_found"},
	{service.ErrAnalysisNotFound, http.StatusNotFound, "analysis_not_found"},
	{service.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{service.ErrNoIngredients, http.StatusUnprocessableEntity, "no_ingredients"},
	{service.ErrProductLookupFailed, http.StatusBadGateway, "analysis_failed"},
	{service.ErrAnalysisFailed, http.StatusBadGateway, "analysis_failed"},
}

// respondError writes the error envelope for err. Unknown errors become a
// 500 without leaking their text.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			middleware.AbortWithError(c, m.status, m.code, m.err.Error())
			return
		}
	}
	middleware.AbortWithError(c, http.StatusInternalServerError, "internal_error", "internal server error")
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	middleware.AbortWithError(c, http.StatusBadRequest, "invalid_request", err.Error())
}

// householdID aborts with 401 when the request is not authenticated.
func householdID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.HouseholdID(c)
	if !ok {
		middleware.AbortWithError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	return id, ok
}
