// Package handler provides HTTP handlers for the Swellbot API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/api/response"
	"github.com/swellbot/swellbot/internal/chat"
)

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	service *chat.Service
	logger  zerolog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service *chat.Service, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// Chat handles POST /v1/chat - one conversation turn.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	exchange, err := h.service.Chat(r.Context(), input.SessionID, input.Message)
	if err != nil {
		h.writeChatError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ChatResponse{
		Response:  exchange.Answer,
		SessionID: exchange.SessionID,
		Timestamp: models.Timestamp(time.Now()),
	})
}

// ChatStream handles POST /v1/chat/stream - one conversation turn with the
// assistant's answer delivered as Server-Sent Events. Each content chunk is
// a data frame; a terminal "session" event carries the session ID.
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalError(w, r, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	exchange, err := h.service.ChatStream(r.Context(), input.SessionID, input.Message, func(chunk string) {
		writeSSEData(w, chunk)
		flusher.Flush()
	})
	if err != nil {
		// Headers are already sent, so report the failure in-stream
		h.logger.Error().Err(err).Msg("chat stream failed")
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", sseEscape(err.Error()))
		flusher.Flush()
		return
	}

	fmt.Fprintf(w, "event: session\ndata: %s\n\n", exchange.SessionID)
	flusher.Flush()
}

func (h *ChatHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*models.ChatRequest, bool) {
	var input models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return nil, false
	}
	if strings.TrimSpace(input.Message) == "" {
		response.BadRequest(w, r, "message is required", []models.FieldError{
			{Field: "message", Message: "must not be empty", Code: "required"},
		})
		return nil, false
	}
	return &input, true
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMessageTooLong):
		response.BadRequest(w, r, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Msg("chat turn failed")
		response.InternalError(w, r, "failed to generate a response")
	}
}

// writeSSEData writes one data frame, splitting embedded newlines into
// multiple data lines per the SSE framing rules.
func writeSSEData(w http.ResponseWriter, chunk string) {
	for _, line := range strings.Split(chunk, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}

func sseEscape(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
