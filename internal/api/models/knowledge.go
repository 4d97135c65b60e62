package models

// KnowledgeSearchRequest is the request body for POST /v1/knowledge/search.
type KnowledgeSearchRequest struct {
	// Query is the search text (required).
	Query string `json:"query"`

	// K caps the number of results. Zero means the service default.
	K int `json:"k,omitempty"`
}

// KnowledgeSearchResponse is the response body for POST /v1/knowledge/search.
type KnowledgeSearchResponse struct {
	Query   string              `json:"query"`
	Results []KnowledgeDocument `json:"results"`
}

// KnowledgeDocument is one retrieved chunk with source metadata.
type KnowledgeDocument struct {
	Source  string  `json:"source"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}
