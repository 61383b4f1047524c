package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/logger"
	"github.com/famnudger/fam/backend/internal/models"
	"github.com/famnudger/fam/backend/internal/observability"
	"github.com/famnudger/fam/backend/internal/types"
)

// similarCandidates bounds how many stored analyses are considered when
// looking for better-scoring similar products.
const similarCandidates = 20

// AnalysisService sequences product lookup, the engine, the optional AI
// fallback, caching and persistence.
type AnalysisService struct {
	db         *gorm.DB
	assembler  *engine.Assembler
	roster     IRosterService
	products   ProductLookup
	classifier IngredientClassifier
	cache      AnalysisCache
	log        *logger.Logger
	tracer     trace.Tracer
}

var _ IAnalysisService = (*AnalysisService)(nil)

// AnalysisOption configures optional collaborators.
type AnalysisOption func(*AnalysisService)

func WithProductLookup(p ProductLookup) AnalysisOption {
	return func(s *AnalysisService) { s.products = p }
}

// WithClassifier enables the AI fallback.
func WithClassifier(c IngredientClassifier) AnalysisOption {
	return func(s *AnalysisService) { s.classifier = c }
}

func WithCache(c AnalysisCache) AnalysisOption {
	return func(s *AnalysisService) { s.cache = c }
}

func NewAnalysisService(db *gorm.DB, assembler *engine.Assembler, roster IRosterService, log *logger.Logger, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		db:        db,
		assembler: assembler,
		roster:    roster,
		log:       log,
		tracer:    observability.Tracer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze produces, stores and caches an analysis. When members is omitted
// the household's stored roster is used. An error means no analysis could be
// produced; a result with zero flags is a success.
func (s *AnalysisService) Analyze(ctx context.Context, householdID uuid.UUID, req *types.AnalysisRequest) (*types.AnalysisResponse, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.analyze")
	defer span.End()

	resp, err := s.analyze(ctx, householdID, *req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("analysis.id", resp.ID.String()),
		attribute.Bool("analysis.cached", resp.Cached),
		attribute.Int("analysis.flags", len(resp.Result.Flags)),
		attribute.String("analysis.risk", string(resp.Result.OverallRisk)),
		attribute.String("analysis.source", string(resp.Result.Source)),
	)
	return resp, nil
}

func (s *AnalysisService) analyze(ctx context.Context, householdID uuid.UUID, req types.AnalysisRequest) (*types.AnalysisResponse, error) {
	log := s.log.With("household_id", householdID, "product_id", req.ProductID)

	var productName string
	if len(req.Ingredients) == 0 && strings.TrimSpace(req.Barcode) != "" {
		product, err := s.lookup(ctx, req.Barcode)
		if err != nil {
			return nil, err
		}
		req.Ingredients = product.Ingredients
		productName = product.Name
		if req.ProductID == "" {
			req.ProductID = product.Barcode
		}
		if req.Nutrition == nil {
			req.Nutrition = product.Nutrition
		}
	}

	if req.Members == nil {
		members, err := s.roster.ListMembers(ctx, householdID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster: %w", err)
		}
		req.Members = members
	}

	in := engine.InputFromRequest(req)
	cache := s.cache
	key, err := CacheKey(householdID, in)
	if err != nil {
		log.Warn("analysis not cacheable", "error", err)
		cache = nil
	}

	if cache != nil {
		cached, ok, err := cache.Get(ctx, key)
		if err != nil {
			log.Warn("analysis cache read failed", "error", err)
		} else if ok {
			cached.Cached = true
			return cached, nil
		}
	}

	result := s.assembler.Assemble(in)
	if len(result.Flags) == 0 && len(in.Ingredients) > 0 && s.classifier != nil {
		fallback, err := s.classify(ctx, in)
		if err != nil {
			log.Error("ai fallback failed", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
		}
		result = fallback
	}

	record, err := models.NewAnalysis(householdID, productName, result, IngredientEmbedding(in.Ingredients))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}
	record.ID = uuid.New()
	resp := &types.AnalysisResponse{ID: record.ID, Result: result}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		// an unsaved ID never resolves
		log.Error("failed to persist analysis", "analysis_id", record.ID, "error", err)
		resp.ID = uuid.Nil
		cache = nil
	}

	if cache != nil {
		if err := cache.Set(ctx, key, resp); err != nil {
			log.Warn("analysis cache write failed", "error", err)
		}
	}

	log.Info("analysis completed",
		"analysis_id", record.ID,
		"flags", len(result.Flags),
		"score", result.OverallScore,
		"risk", result.OverallRisk,
		"source", result.Source)
	return resp, nil
}

func (s *AnalysisService) lookup(ctx context.Context, barcode string) (*Product, error) {
	if s.products == nil {
		return nil, fmt.Errorf("%w: no product database configured", ErrProductLookupFailed)
	}
	ctx, span := s.tracer.Start(ctx, "analysis.product_lookup", trace.WithAttributes(attribute.String("product.barcode", barcode)))
	defer span.End()

	product, err := s.products.Lookup(ctx, barcode)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(product.Ingredients) == 0 {
		return nil, ErrNoIngredients
	}
	return product, nil
}

func (s *AnalysisService) classify(ctx context.Context, in engine.AnalysisInput) (types.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.ai_fallback")
	defer span.End()

	tags := engine.BuildProfileTags(in.Members)
	raw, err := s.classifier.Classify(ctx, in.Ingredients, tags.Sorted())
	if err != nil {
		span.RecordError(err)
		return types.AnalysisResult{}, err
	}
	flags := engine.NormalizeAIFlags(raw, tags)
	return s.assembler.AssembleFromFlags(in, flags, types.SourceAIFallback), nil
}

func (s *AnalysisService) GetAnalysis(ctx context.Context, householdID, analysisID uuid.UUID) (*types.AnalysisResponse, error) {
	record, err := s.find(ctx, householdID, analysisID)
	if err != nil {
		return nil, err
	}
	result, err := record.Decode()
	if err != nil {
		return nil, err
	}
	return &types.AnalysisResponse{ID: record.ID, Result: result}, nil
}

// Alternatives lists stored products that scored better than the analyzed one,
// nearest ingredient profile first, followed by rule-based swaps for the
// flagged categories.
func (s *AnalysisService) Alternatives(ctx context.Context, householdID, analysisID uuid.UUID) ([]types.Alternative, error) {
	record, err := s.find(ctx, householdID, analysisID)
	if err != nil {
		return nil, err
	}
	result, err := record.Decode()
	if err != nil {
		return nil, err
	}

	similar, err := s.similar(ctx, record)
	if err != nil {
		s.log.Warn("similar product search failed", "analysis_id", analysisID, "error", err)
	}
	return append(similar, engine.SuggestAlternatives(result.Flags)...), nil
}

func (s *AnalysisService) similar(ctx context.Context, record *models.Analysis) ([]types.Alternative, error) {
	q := s.db.WithContext(ctx).
		Where("id <> ? AND overall_score > ? AND product_id <> '' AND product_id <> ?",
			record.ID, record.OverallScore, record.ProductID)
	if s.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{record.Embedding}},
		})
	} else {
		q = q.Order("overall_score DESC")
	}

	var candidates []models.Analysis
	if err := q.Limit(similarCandidates).Find(&candidates).Error; err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []types.Alternative
	for _, c := range candidates {
		if seen[c.ProductID] || len(out) == engine.MaxAlternatives {
			continue
		}
		seen[c.ProductID] = true
		name := c.ProductName
		if name == "" {
			name = c.ProductID
		}
		out = append(out, types.Alternative{
			Name:      name,
			Reason:    fmt.Sprintf("Similar ingredients with a better FAM score (%.0f vs %.0f).", c.OverallScore, record.OverallScore),
			Score:     c.OverallScore,
			ProductID: c.ProductID,
		})
	}
	return out, nil
}

func (s *AnalysisService) find(ctx context.Context, householdID, analysisID uuid.UUID) (*models.Analysis, error) {
	var record models.Analysis
	err := s.db.WithContext(ctx).
		Where("id = ? AND household_id = ?", analysisID, householdID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	return &record, nil
}
