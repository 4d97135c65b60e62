package models

// ChatRequest is the request body for POST /v1/chat and /v1/chat/stream.
type ChatRequest struct {
	// Message is the user's question (required).
	Message string `json:"message"`

	// SessionID continues an existing conversation when set. A new
	// session is created when omitted or unknown.
	SessionID string `json:"sessionId,omitempty"`
}

// ChatResponse is the response body for POST /v1/chat.
type ChatResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"sessionId"`
	Timestamp Timestamp `json:"timestamp"`
}

// ChatMessage is a single entry in a session's history.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"createdAt"`
}

// SessionHistory is the response body for GET /v1/sessions/{sessionId}/history.
type SessionHistory struct {
	SessionID string        `json:"sessionId"`
	Messages  []ChatMessage `json:"messages"`
}
