package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famnudger/fam/backend/config"
	"github.com/famnudger/fam/backend/internal/engine"
	"github.com/famnudger/fam/backend/internal/logger"
	"github.com/famnudger/fam/backend/internal/testhelpers"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:       config.Test,
		ServerHost:        "127.0.0.1",
		ServerPort:        "0",
		CORSOrigins:       []string{"*"},
		DBDriver:          "sqlite",
		JWTSecret:         "server-test-secret",
		JWTTTL:            time.Hour,
		AnalysisCacheTTL:  time.Hour,
		AnalysisRateLimit: 10,
		RateLimitWindow:   time.Minute,
		ProductAPIURL:     "http://127.0.0.1:1",
		ProductAPITimeout: time.Second,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry, err := engine.DefaultRegistry()
	require.NoError(t, err)
	return New(testConfig(), Deps{
		DB:        testhelpers.SetupSQLite(t),
		Assembler: engine.NewAssembler(registry),
		Log:       logger.Nop(),
	})
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv.Handler(), http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Greater(t, body["registry_entries"], float64(0))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthReportsDatabaseOutage(t *testing.T) {
	srv := newTestServer(t)
	sqlDB, err := srv.deps.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := doJSON(t, srv.Handler(), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"service_unavailable"`)
}

func TestRegisterAndAnalyze(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	w := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"household_name": "Okafor", "email": "okafor@example.com", "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var auth struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	w = doJSON(t, h, http.MethodPost, "/api/v1/members", auth.Token, map[string]interface{}{
		"name": "Chidi", "type": 3, "conditions": []int{0},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, h, http.MethodPost, "/api/v1/analyses", auth.Token, map[string]interface{}{
		"product_id":  "cola",
		"ingredients": []string{"carbonated water", "high fructose corn syrup", "caramel color"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result struct {
		ID     string `json:"id"`
		Result struct {
			Flags       []interface{} `json:"flags"`
			MemberRisks []struct {
				MemberName string `json:"member_name"`
			} `json:"member_risks"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Result.Flags)
	require.Len(t, result.Result.MemberRisks, 1)
	assert.Equal(t, "Chidi", result.Result.MemberRisks[0].MemberName)

	w = doJSON(t, h, http.MethodGet, "/api/v1/analyses/"+result.ID, auth.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newTestServer(t)
	w := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/members", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(t)
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}

type fakeFetcher struct {
	data []byte
	err  error
}

func (f fakeFetcher) Fetch(context.Context) ([]byte, error) {
	return f.data, f.err
}

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(context.Background(), testConfig(), logger.Nop())
	require.NoError(t, err)
	assert.Greater(t, reg.Len(), 0)

	override := []byte(`
entries:
  - name: palm oil
    category: fat
    tier: low
`)
	reg, err = loadFrom(context.Background(), fakeFetcher{data: override}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	_, err = loadFrom(context.Background(), fakeFetcher{err: errors.New("no such key")}, logger.Nop())
	assert.ErrorContains(t, err, "no such key")

	_, err = loadFrom(context.Background(), fakeFetcher{data: []byte("entries: [")}, logger.Nop())
	assert.ErrorContains(t, err, "invalid registry override")
}
