package api

import (
	"github.com/gin-gonic/gin"

	"github.com/famnudger/fam/backend/internal/logger"
	"github.com/famnudger/fam/backend/internal/middleware"
	"github.com/famnudger/fam/backend/internal/service"
)

// Services are the collaborators the HTTP layer needs.
type Services struct {
	Auth      service.IAuthService
	Roster    service.IRosterService
	Analysis  service.IAnalysisService
	// RateLimit guards POST /analyses when set.
	RateLimit gin.HandlerFunc
}

// SetupAPI registers all /api/v1 routes on router.
func SetupAPI(router *gin.Engine, svc Services, log *logger.Logger) {
	v1 := router.Group("/api/v1")

	NewAuthHandler(svc.Auth, log).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(svc.Auth))
	NewMemberHandler(svc.Roster).RegisterRoutes(protected)
	NewAnalysisHandler(svc.Analysis).RegisterRoutes(protected, svc.RateLimit)
}
