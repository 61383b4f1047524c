package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/famnudger/fam/backend/config"
	"github.com/famnudger/fam/backend/internal/api"
	"github.com/famnudger/fam/backend/internal/database"
	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/logger"
	"github.com/famnudger/fam/backend/internal/middleware"
	"github.com/famnudger/fam/backend/internal/service"
)

// ServiceName identifies this process in traces.
const ServiceName = "fam-api"

// Deps are the long-lived connections the server is built on. Redis may be
// nil, in which case caching and rate limiting are off.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Assembler *engine.Assembler
	Log       *logger.Logger
}

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	deps   Deps
}

// New wires services, middleware and routes.
func New(cfg *config.Config, deps Deps) *Server {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTelEnabled {
		router.Use(otelgin.Middleware(ServiceName))
	}
	router.Use(middleware.RequestID(), middleware.RequestLogger(deps.Log), middleware.CORS(cfg.CORSOrigins))

	s := &Server{router: router, deps: deps}
	router.GET("/health", gin.WrapH(middleware.ErrorHandler(deps.Log, http.HandlerFunc(s.health))))

	api.SetupAPI(router, buildServices(cfg, deps), deps.Log)

	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func buildServices(cfg *config.Config, deps Deps) api.Services {
	auth := service.NewAuthService(deps.DB, cfg.JWTSecret, cfg.JWTTTL)
	roster := service.NewRosterService(deps.DB, deps.Log)

	opts := []service.AnalysisOption{
		service.WithProductLookup(service.NewOpenFoodFactsClient(cfg.ProductAPIURL, cfg.ProductAPITimeout)),
	}
	if cfg.AIFallbackEnabled {
		opts = append(opts, service.WithClassifier(
			service.NewLLMClassifier(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, deps.Log)))
	}

	svc := api.Services{Auth: auth, Roster: roster}
	if deps.Redis != nil {
		opts = append(opts, service.WithCache(service.NewRedisAnalysisCache(deps.Redis, cfg.AnalysisCacheTTL)))
		limiter := middleware.NewRateLimiter(deps.Redis, middleware.RateLimitConfig{
			Window:    cfg.RateLimitWindow,
			Limit:     cfg.AnalysisRateLimit,
			KeyPrefix: "fam:ratelimit:analyses",
		}, deps.Log)
		svc.RateLimit = limiter.Middleware()
	}
	svc.Analysis = service.NewAnalysisService(deps.DB, deps.Assembler, roster, deps.Log, opts...)
	return svc
}

// health reports 503 when the database or redis cannot be reached.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx, s.deps.DB); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"status":"ok","registry_entries":%d}`, s.deps.Assembler.Registry().Len())
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.deps.Log.Info("server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
