package service

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrProductLookupFailed = errors.New("product lookup failed")
	ErrNoIngredients       = errors.New("product has no ingredient list")
	ErrMemberNotFound      = errors.New("family member not found")
	ErrAnalysisNotFound    = errors.New("analysis not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrHouseholdExists     = errors.New("household already exists")
	ErrInvalidToken        = errors.New("invalid token")
	// ErrAnalysisFailed means no result could be produced, as opposed to a
	// result with zero flags.
	ErrAnalysisFailed = errors.New("analysis failed")
)
