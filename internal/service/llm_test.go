package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famnudger/fam/backend/internal/logger"
)

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat["type"])
		assert.Contains(t, req.Messages[1].Content, "carrageenan")
		assert.Contains(t, req.Messages[1].Content, "child, diabetic")

		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}))
}

func TestLLMClassifierParsesFlags(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```json\n{\"flags\":[{\"ingredient\":\"carrageenan\",\"risk_level\":\"medium\",\"category\":\"other\",\"concern\":\"Gut irritation\",\"affected_profiles\":[\"children\"]}]}\n```")
	defer srv.Close()

	c := NewLLMClassifier(srv.URL, "test-key", "test-model", time.Second, logger.Nop())
	flags, err := c.Classify(context.Background(), []string{"water", "carrageenan"}, []string{"child", "diabetic"})
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, "carrageenan", flags[0].Ingredient)
	assert.Equal(t, []string{"children"}, flags[0].AffectedProfiles)
}

func TestLLMClassifierErrors(t *testing.T) {
	srv := chatServer(t, http.StatusTooManyRequests, "")
	defer srv.Close()
	c := NewLLMClassifier(srv.URL, "test-key", "test-model", time.Second, logger.Nop())
	_, err := c.Classify(context.Background(), []string{"carrageenan"}, []string{"child", "diabetic"})
	assert.ErrorContains(t, err, "status 429")

	bad := chatServer(t, http.StatusOK, "I cannot help with that.")
	defer bad.Close()
	c = NewLLMClassifier(bad.URL, "test-key", "test-model", time.Second, logger.Nop())
	_, err = c.Classify(context.Background(), []string{"carrageenan"}, []string{"child", "diabetic"})
	assert.ErrorContains(t, err, "parse classifier flags")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(` {"a":1} `))
}
