package testhelpers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/service"
	"github.com/famnudger/fam/backend/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AuthResponse), args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

// MockRosterService is a mock implementation of the RosterService interface
type MockRosterService struct {
	mock.Mock
}

func (m *MockRosterService) ListMembers(ctx context.Context, householdID uuid.UUID) ([]types.FamilyMember, error) {
	args := m.Called(ctx, householdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.FamilyMember), args.Error(1)
}

func (m *MockRosterService) CreateMember(ctx context.Context, householdID uuid.UUID, req *types.CreateMemberRequest) (*types.FamilyMember, error) {
	args := m.Called(ctx, householdID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FamilyMember), args.Error(1)
}

func (m *MockRosterService) UpdateMember(ctx context.Context, householdID, memberID uuid.UUID, update types.MemberUpdate) (*types.FamilyMember, error) {
	args := m.Called(ctx, householdID, memberID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.FamilyMember), args.Error(1)
}

func (m *MockRosterService) DeleteMember(ctx context.Context, householdID, memberID uuid.UUID) error {
	args := m.Called(ctx, householdID, memberID)
	return args.Error(0)
}

// MockAnalysisService is a mock implementation of the AnalysisService interface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, householdID uuid.UUID, req *types.AnalysisRequest) (*types.AnalysisResponse, error) {
	args := m.Called(ctx, householdID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AnalysisResponse), args.Error(1)
}

func (m *MockAnalysisService) GetAnalysis(ctx context.Context, householdID, analysisID uuid.UUID) (*types.AnalysisResponse, error) {
	args := m.Called(ctx, householdID, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AnalysisResponse), args.Error(1)
}

func (m *MockAnalysisService) Alternatives(ctx context.Context, householdID, analysisID uuid.UUID) ([]types.Alternative, error) {
	args := m.Called(ctx, householdID, analysisID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Alternative), args.Error(1)
}

type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) Lookup(ctx context.Context, barcode string) (*service.Product, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Product), args.Error(1)
}

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, ingredients []string, profiles []string) ([]engine.AIFlag, error) {
	args := m.Called(ctx, ingredients, profiles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]engine.AIFlag), args.Error(1)
}

// MemoryCache is an in-process AnalysisCache for tests.
type MemoryCache struct {
	Entries map[string]*types.AnalysisResponse
	Err     error
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{Entries: map[string]*types.AnalysisResponse{}}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*types.AnalysisResponse, bool, error) {
	if c.Err != nil {
		return nil, false, c.Err
	}
	resp, ok := c.Entries[key]
	if !ok {
		return nil, false, nil
	}
	cp := *resp
	return &cp, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, resp *types.AnalysisResponse) error {
	if c.Err != nil {
		return c.Err
	}
	cp := *resp
	c.Entries[key] = &cp
	return nil
}

var (
	_ service.IAuthService         = (*MockAuthService)(nil)
	_ service.IRosterService       = (*MockRosterService)(nil)
	_ service.IAnalysisService     = (*MockAnalysisService)(nil)
	_ service.ProductLookup        = (*MockProductLookup)(nil)
	_ service.IngredientClassifier = (*MockClassifier)(nil)
	_ service.AnalysisCache        = (*MemoryCache)(nil)
)
