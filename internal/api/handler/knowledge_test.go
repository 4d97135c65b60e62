package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellbot/swellbot/internal/api/handler"
	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/knowledge"
	"github.com/swellbot/swellbot/internal/knowledge/vectorstore"
)

type stubStore struct {
	results []vectorstore.SearchResult
	findErr error
	lastK   int
}

func (s *stubStore) FindStore(_ context.Context, _ string) (string, error) {
	if s.findErr != nil {
		return "", s.findErr
	}
	return "vs_123", nil
}

func (s *stubStore) Search(_ context.Context, _, _ string, k int) ([]vectorstore.SearchResult, error) {
	s.lastK = k
	return s.results, nil
}

func knowledgeService(store *stubStore) *knowledge.Service {
	return knowledge.NewService(knowledge.ServiceConfig{
		Store:     store,
		StoreName: "surf-knowledge",
		Logger:    zerolog.Nop(),
	})
}

func TestKnowledgeHandler_Search(t *testing.T) {
	store := &stubStore{
		results: []vectorstore.SearchResult{
			{Filename: "rips.md", Score: 0.91, Text: "Swim across the rip."},
		},
	}
	h := handler.NewKnowledgeHandler(knowledgeService(store), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/search",
		strings.NewReader(`{"query": "rip currents", "k": 3}`))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, store.lastK)

	var resp models.KnowledgeSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "rip currents", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "rips.md", resp.Results[0].Source)
	assert.Equal(t, "Swim across the rip.", resp.Results[0].Content)
	assert.InDelta(t, 0.91, resp.Results[0].Score, 0.001)
}

func TestKnowledgeHandler_Search_EmptyResultsAreOK(t *testing.T) {
	h := handler.NewKnowledgeHandler(knowledgeService(&stubStore{}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/search",
		strings.NewReader(`{"query": "quantum surfing"}`))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.KnowledgeSearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
}

func TestKnowledgeHandler_Search_MissingQuery(t *testing.T) {
	h := handler.NewKnowledgeHandler(knowledgeService(&stubStore{}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/search", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var p models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "query", p.Errors[0].Field)
}

func TestKnowledgeHandler_Search_InvalidJSON(t *testing.T) {
	h := handler.NewKnowledgeHandler(knowledgeService(&stubStore{}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/search", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKnowledgeHandler_Search_StoreNotReady(t *testing.T) {
	store := &stubStore{findErr: vectorstore.ErrStoreNotFound}
	h := handler.NewKnowledgeHandler(knowledgeService(store), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/knowledge/search",
		strings.NewReader(`{"query": "anything"}`))
	w := httptest.NewRecorder()
	h.Search(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
