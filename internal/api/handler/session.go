package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/api/response"
	"github.com/swellbot/swellbot/internal/chat"
)

// SessionHandler handles session history endpoints.
type SessionHandler struct {
	service *chat.Service
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(service *chat.Service) *SessionHandler {
	return &SessionHandler{service: service}
}

// History handles GET /v1/sessions/{sessionId}/history.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	msgs, err := h.service.History(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			response.NotFound(w, r, "session not found")
			return
		}
		response.InternalError(w, r, "failed to load session history")
		return
	}

	history := models.SessionHistory{
		SessionID: sessionID,
		Messages:  make([]models.ChatMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		history.Messages = append(history.Messages, models.ChatMessage{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: models.Timestamp(m.CreatedAt),
		})
	}

	response.JSON(w, r, http.StatusOK, history)
}

// Delete handles DELETE /v1/sessions/{sessionId}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	// Verify existence so unknown sessions get a 404 rather than silence
	if _, err := h.service.History(r.Context(), sessionID); err != nil {
		if errors.Is(err, chat.ErrSessionNotFound) {
			response.NotFound(w, r, "session not found")
			return
		}
		response.InternalError(w, r, "failed to delete session")
		return
	}

	if err := h.service.Delete(r.Context(), sessionID); err != nil {
		response.InternalError(w, r, "failed to delete session")
		return
	}

	response.NoContent(w, r)
}
