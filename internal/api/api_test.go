package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/famnudger/fam/backend/internal/logger"
	"github.com/famnudger/fam/backend/internal/middleware"
	"github.com/famnudger/fam/backend/internal/service"
	"github.com/famnudger/fam/backend/internal/testhelpers"
	"github.com/famnudger/fam/backend/internal/types"
)

type apiFixture struct {
	router    *gin.Engine
	auth      *testhelpers.MockAuthService
	roster    *testhelpers.MockRosterService
	analysis  *testhelpers.MockAnalysisService
	household uuid.UUID
}

func setupAPITest(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &apiFixture{
		router:    gin.New(),
		auth:      new(testhelpers.MockAuthService),
		roster:    new(testhelpers.MockRosterService),
		analysis:  new(testhelpers.MockAnalysisService),
		household: uuid.New(),
	}
	f.auth.On("ValidateToken", "valid-token").Return(&types.TokenClaims{HouseholdID: f.household}, nil).Maybe()
	SetupAPI(f.router, Services{Auth: f.auth, Roster: f.roster, Analysis: f.analysis}, logger.Nop())
	return f
}

func (f *apiFixture) do(method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer valid-token")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorDetail {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestRegisterAndLogin(t *testing.T) {
	f := setupAPITest(t)
	resp := &types.AuthResponse{Token: "t", HouseholdID: f.household}
	f.auth.On("Register", mock.Anything, mock.MatchedBy(func(r *types.RegisterRequest) bool {
		return r.Email == "a@example.com" && r.HouseholdName == "Home"
	})).Return(resp, nil)
	f.auth.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials)

	w := f.do(http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{Email: "a@example.com", Password: "password1", HouseholdName: "Home"}, false)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), f.household.String())

	w = f.do(http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "not-an-email"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeError(t, w).Code)

	w = f.do(http.MethodPost, "/api/v1/auth/login", types.LoginRequest{Email: "a@example.com", Password: "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, w).Code)
}

func TestRegisterConflict(t *testing.T) {
	f := setupAPITest(t)
	f.auth.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrHouseholdExists)

	w := f.do(http.MethodPost, "/api/v1/auth/register", types.RegisterRequest{Email: "a@example.com", Password: "password1", HouseholdName: "Home"}, false)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMembersRequireAuth(t *testing.T) {
	f := setupAPITest(t)
	w := f.do(http.MethodGet, "/api/v1/members", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.roster.AssertNotCalled(t, "ListMembers", mock.Anything, mock.Anything)
}

func TestMemberRoutes(t *testing.T) {
	f := setupAPITest(t)
	member := types.FamilyMember{ID: uuid.New(), Name: "Mia", Type: types.MemberChild, CreatedAt: time.Now().UTC()}
	f.roster.On("ListMembers", mock.Anything, f.household).Return([]types.FamilyMember{member}, nil)
	f.roster.On("CreateMember", mock.Anything, f.household, mock.Anything).Return(&member, nil)
	f.roster.On("UpdateMember", mock.Anything, f.household, member.ID, mock.Anything).Return(&member, nil)
	f.roster.On("DeleteMember", mock.Anything, f.household, member.ID).Return(nil)
	f.roster.On("DeleteMember", mock.Anything, f.household, mock.Anything).Return(service.ErrMemberNotFound)

	w := f.do(http.MethodGet, "/api/v1/members", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Members []types.FamilyMember `json:"members"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Members, 1)
	assert.Equal(t, types.MemberChild, list.Members[0].Type)
	assert.Contains(t, w.Body.String(), `"type":1`, "member type is sent as its ordinal")

	w = f.do(http.MethodPost, "/api/v1/members", map[string]interface{}{"name": "Mia", "type": 1}, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = f.do(http.MethodPost, "/api/v1/members", map[string]interface{}{"type": 1}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPut, "/api/v1/members/"+member.ID.String(), map[string]interface{}{"name": "Mia R."}, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodDelete, "/api/v1/members/"+member.ID.String(), nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodDelete, "/api/v1/members/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "member_not_found", decodeError(t, w).Code)

	w = f.do(http.MethodDelete, "/api/v1/members/not-a-uuid", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAnalysis(t *testing.T) {
	f := setupAPITest(t)
	id := uuid.New()
	result := types.AnalysisResult{
		ProductID:    "p-1",
		OverallScore: 17,
		OverallRisk:  types.RiskCritical,
		Flags:        []types.IngredientFlag{},
		MemberRisks:  []types.MemberRisk{},
		Source:       types.SourceLocalRegistry,
	}
	f.analysis.On("Analyze", mock.Anything, f.household, mock.MatchedBy(func(r *types.AnalysisRequest) bool {
		return r.ProductID == "p-1" && len(r.Ingredients) == 2 && r.Members == nil
	})).Return(&types.AnalysisResponse{ID: id, Result: result}, nil).Once()
	f.analysis.On("Analyze", mock.Anything, f.household, mock.Anything).Return(&types.AnalysisResponse{ID: id, Cached: true, Result: result}, nil).Once()

	body := map[string]interface{}{"product_id": "p-1", "ingredients": []string{"sugar", "salt"}}
	w := f.do(http.MethodPost, "/api/v1/analyses", body, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"overall_risk":4`)

	w = f.do(http.MethodPost, "/api/v1/analyses", body, true)
	assert.Equal(t, http.StatusOK, w.Code)
	f.analysis.AssertExpectations(t)
}

func TestCreateAnalysisFailuresAreDistinct(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrAnalysisFailed, http.StatusBadGateway, "analysis_failed"},
		{errors.Join(service.ErrProductLookupFailed, errors.New("timeout")), http.StatusBadGateway, "analysis_failed"},
		{service.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
		{service.ErrNoIngredients, http.StatusUnprocessableEntity, "no_ingredients"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			f := setupAPITest(t)
			f.analysis.On("Analyze", mock.Anything, f.household, mock.Anything).Return(nil, tt.err)

			w := f.do(http.MethodPost, "/api/v1/analyses", map[string]string{"barcode": "123"}, true)
			assert.Equal(t, tt.status, w.Code)
			detail := decodeError(t, w)
			assert.Equal(t, tt.code, detail.Code)
			assert.NotContains(t, detail.Message, "disk on fire")
		})
	}
}

func TestGetAnalysisAndAlternatives(t *testing.T) {
	f := setupAPITest(t)
	id := uuid.New()
	f.analysis.On("GetAnalysis", mock.Anything, f.household, id).Return(&types.AnalysisResponse{ID: id, Result: types.AnalysisResult{OverallRisk: types.RiskSafe, Source: types.SourceLocalRegistry}}, nil)
	f.analysis.On("GetAnalysis", mock.Anything, f.household, mock.Anything).Return(nil, service.ErrAnalysisNotFound)
	f.analysis.On("Alternatives", mock.Anything, f.household, id).Return([]types.Alternative{{Name: "Plain oats", Score: 80}}, nil)

	w := f.do(http.MethodGet, "/api/v1/analyses/"+id.String(), nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(http.MethodGet, "/api/v1/analyses/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/v1/analyses/"+id.String()+"/alternatives", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Plain oats")
}

func TestRateLimitOnlyGuardsCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := new(testhelpers.MockAuthService)
	analysis := new(testhelpers.MockAnalysisService)
	household := uuid.New()
	auth.On("ValidateToken", "valid-token").Return(&types.TokenClaims{HouseholdID: household}, nil)
	analysis.On("GetAnalysis", mock.Anything, household, mock.Anything).Return(nil, service.ErrAnalysisNotFound)

	router := gin.New()
	deny := func(c *gin.Context) {
		middleware.AbortWithError(c, http.StatusTooManyRequests, "rate_limited", "slow down")
	}
	SetupAPI(router, Services{Auth: auth, Roster: new(testhelpers.MockRosterService), Analysis: analysis, RateLimit: deny}, logger.Nop())

	f := &apiFixture{router: router}
	w := f.do(http.MethodPost, "/api/v1/analyses", map[string]string{}, true)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	analysis.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything)

	w = f.do(http.MethodGet, "/api/v1/analyses/"+uuid.NewString(), nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
