package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/api/response"
	"github.com/swellbot/swellbot/internal/knowledge"
)

// KnowledgeHandler handles knowledge base search endpoints.
type KnowledgeHandler struct {
	service *knowledge.Service
	logger  zerolog.Logger
}

// NewKnowledgeHandler creates a new KnowledgeHandler.
func NewKnowledgeHandler(service *knowledge.Service, logger zerolog.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{service: service, logger: logger}
}

// Search handles POST /v1/knowledge/search.
func (h *KnowledgeHandler) Search(w http.ResponseWriter, r *http.Request) {
	var input models.KnowledgeSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if strings.TrimSpace(input.Query) == "" {
		response.BadRequest(w, r, "query is required", []models.FieldError{
			{Field: "query", Message: "must not be empty", Code: "required"},
		})
		return
	}

	docs, err := h.service.Search(r.Context(), input.Query, input.K)
	if err != nil {
		if errors.Is(err, knowledge.ErrStoreNotReady) {
			response.ServiceUnavailable(w, r, "knowledge base is not ready")
			return
		}
		h.logger.Error().Err(err).Msg("knowledge search failed")
		response.InternalError(w, r, "failed to search knowledge base")
		return
	}

	out := models.KnowledgeSearchResponse{
		Query:   input.Query,
		Results: make([]models.KnowledgeDocument, 0, len(docs)),
	}
	for _, d := range docs {
		out.Results = append(out.Results, models.KnowledgeDocument{
			Source:  d.Source,
			Content: d.Content,
			Score:   d.Score,
		})
	}

	response.JSON(w, r, http.StatusOK, out)
}
