package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swellbot/swellbot/internal/agent"
	"github.com/swellbot/swellbot/internal/api/handler"
	"github.com/swellbot/swellbot/internal/api/models"
	"github.com/swellbot/swellbot/internal/chat"
)

type stubRunner struct {
	answer string
	chunks []string
	err    error
}

func (r *stubRunner) Run(_ context.Context, _ []agent.Message, _ string) (string, error) {
	return r.answer, r.err
}

func (r *stubRunner) RunStream(_ context.Context, _ []agent.Message, _ string, onChunk func(string)) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	for _, c := range r.chunks {
		onChunk(c)
	}
	return r.answer, nil
}

func newChatService(runner chat.Runner) *chat.Service {
	return chat.NewService(chat.ServiceConfig{
		Repo:   chat.NewInMemoryRepository(),
		Agent:  runner,
		Logger: zerolog.Nop(),
	})
}

func TestChatHandler_Chat(t *testing.T) {
	svc := newChatService(&stubRunner{answer: "Clean 1.5m this morning."})
	h := handler.NewChatHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message": "Surf at Bondi?"}`))
	w := httptest.NewRecorder()

	h.Chat(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Clean 1.5m this morning.", resp.Response)
	assert.NotEmpty(t, resp.SessionID)
}

func TestChatHandler_Chat_ReusesSession(t *testing.T) {
	svc := newChatService(&stubRunner{answer: "ok"})
	h := handler.NewChatHandler(svc, zerolog.Nop())

	first := httptest.NewRecorder()
	h.Chat(first, httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message": "hi"}`)))
	var firstResp models.ChatResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))

	second := httptest.NewRecorder()
	h.Chat(second, httptest.NewRequest(http.MethodPost, "/v1/chat",
		strings.NewReader(`{"message": "again", "sessionId": "`+firstResp.SessionID+`"}`)))

	var secondResp models.ChatResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))
	assert.Equal(t, firstResp.SessionID, secondResp.SessionID)
}

func TestChatHandler_Chat_InvalidJSON(t *testing.T) {
	h := handler.NewChatHandler(newChatService(&stubRunner{}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.Chat(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestChatHandler_Chat_EmptyMessage(t *testing.T) {
	h := handler.NewChatHandler(newChatService(&stubRunner{}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message": "   "}`))
	w := httptest.NewRecorder()

	h.Chat(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var p models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "message", p.Errors[0].Field)
}

func TestChatHandler_Chat_AgentFailure(t *testing.T) {
	h := handler.NewChatHandler(newChatService(&stubRunner{err: errors.New("provider down")}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(`{"message": "Surf?"}`))
	w := httptest.NewRecorder()

	h.Chat(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestChatHandler_ChatStream(t *testing.T) {
	svc := newChatService(&stubRunner{
		answer: "Clean surf today.",
		chunks: []string{"Clean ", "surf today."},
	})
	h := handler.NewChatHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message": "Surf?"}`))
	w := httptest.NewRecorder()

	h.ChatStream(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "data: Clean \n")
	assert.Contains(t, body, "data: surf today.\n")
	assert.Contains(t, body, "event: session\n")
}

func TestChatHandler_ChatStream_MultilineChunk(t *testing.T) {
	svc := newChatService(&stubRunner{
		answer: "line one\nline two",
		chunks: []string{"line one\nline two"},
	})
	h := handler.NewChatHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message": "Surf?"}`))
	w := httptest.NewRecorder()

	h.ChatStream(w, req)

	// Embedded newlines become separate data lines in one frame.
	assert.Contains(t, w.Body.String(), "data: line one\ndata: line two\n\n")
}

func TestChatHandler_ChatStream_ErrorMidStream(t *testing.T) {
	h := handler.NewChatHandler(newChatService(&stubRunner{err: errors.New("provider down")}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader(`{"message": "Surf?"}`))
	w := httptest.NewRecorder()

	h.ChatStream(w, req)

	// Headers are committed before the failure, so the error travels in-stream.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error\n")
	assert.NotContains(t, w.Body.String(), "event: session")
}

func TestChatHandler_ChatStream_InvalidBodyStaysJSON(t *testing.T) {
	h := handler.NewChatHandler(newChatService(&stubRunner{}), zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/chat/stream", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.ChatStream(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}
