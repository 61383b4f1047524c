package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/types"
)

// IAuthService defines the interface for household authentication
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IRosterService defines the interface for household roster operations
type IRosterService interface {
	ListMembers(ctx context.Context, householdID uuid.UUID) ([]types.FamilyMember, error)
	CreateMember(ctx context.Context, householdID uuid.UUID, req *types.CreateMemberRequest) (*types.FamilyMember, error)
	UpdateMember(ctx context.Context, householdID, memberID uuid.UUID, update types.MemberUpdate) (*types.FamilyMember, error)
	DeleteMember(ctx context.Context, householdID, memberID uuid.UUID) error
}

// IAnalysisService defines the interface for product analysis
type IAnalysisService interface {
	Analyze(ctx context.Context, householdID uuid.UUID, req *types.AnalysisRequest) (*types.AnalysisResponse, error)
	GetAnalysis(ctx context.Context, householdID, analysisID uuid.UUID) (*types.AnalysisResponse, error)
	Alternatives(ctx context.Context, householdID, analysisID uuid.UUID) ([]types.Alternative, error)
}

// Product is what a product database knows about a barcode.
type Product struct {
	Barcode     string
	Name        string
	Ingredients []string
	Nutrition   *types.NutritionFacts
}

// ProductLookup resolves a barcode to a product.
type ProductLookup interface {
	Lookup(ctx context.Context, barcode string) (*Product, error)
}

// IngredientClassifier assesses ingredients the local registry does not know.
// profiles are the household's profile tags.
type IngredientClassifier interface {
	Classify(ctx context.Context, ingredients []string, profiles []string) ([]engine.AIFlag, error)
}

// AnalysisCache stores finished analyses by input key.
type AnalysisCache interface {
	Get(ctx context.Context, key string) (*types.AnalysisResponse, bool, error)
	Set(ctx context.Context, key string, resp *types.AnalysisResponse) error
}
