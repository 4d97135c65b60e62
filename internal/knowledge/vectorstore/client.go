// Package vectorstore provides a client for the OpenAI hosted vector stores
// API: store lookup/creation, file upload, and semantic search. Chunking and
// embedding happen server-side.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/provider/resilience"
)

const (
	// ProviderName identifies this vector store provider.
	ProviderName = "openai-vectorstore"

	// DefaultBaseURL is the OpenAI API base URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	// filePurpose is the upload purpose required for vector store files.
	filePurpose = "assistants"
)

// Vector store errors.
var (
	// ErrStoreNotFound indicates no vector store with the requested name exists.
	ErrStoreNotFound = errors.New("vector store not found")
)

// StoreFile is a file attached to a vector store.
type StoreFile struct {
	ID       string
	Filename string
}

// SearchResult is one retrieved chunk.
type SearchResult struct {
	FileID   string
	Filename string
	Score    float64
	Text     string
}

// ClientConfig holds configuration for the vector store client.
type ClientConfig struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient *resilience.Client

	// Registry tracks provider health when a default client is built.
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the OpenAI vector stores API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new vector store client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = 60 * time.Second // uploads can be slow
		clientCfg.Registry = cfg.Registry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FindStore returns the ID of the vector store with the given name, or
// ErrStoreNotFound.
func (c *Client) FindStore(ctx context.Context, name string) (string, error) {
	var list struct {
		Data []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/vector_stores", nil, &list); err != nil {
		return "", fmt.Errorf("listing vector stores: %w", err)
	}

	for _, vs := range list.Data {
		if vs.Name == name {
			return vs.ID, nil
		}
	}
	return "", fmt.Errorf("%q: %w", name, ErrStoreNotFound)
}

// CreateStore creates a new vector store and returns its ID.
func (c *Client) CreateStore(ctx context.Context, name string) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	body := map[string]any{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores", body, &created); err != nil {
		return "", fmt.Errorf("creating vector store: %w", err)
	}

	c.logger.Info().Str("store", name).Str("store_id", created.ID).Msg("vector store created")
	return created.ID, nil
}

// UploadFile uploads contents as filename and attaches it to the store. The
// API chunks and embeds the file automatically. Returns the file ID.
func (c *Client) UploadFile(ctx context.Context, storeID, filename string, contents io.Reader) (string, error) {
	fileID, err := c.uploadRaw(ctx, filename, contents)
	if err != nil {
		return "", err
	}

	attach := map[string]any{"file_id": fileID}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores/"+storeID+"/files", attach, nil); err != nil {
		return "", fmt.Errorf("attaching file %s: %w", filename, err)
	}

	c.logger.Debug().Str("filename", filename).Str("file_id", fileID).Msg("file uploaded to vector store")
	return fileID, nil
}

// ListFiles returns the files attached to a store.
func (c *Client) ListFiles(ctx context.Context, storeID string) ([]StoreFile, error) {
	var attached struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/vector_stores/"+storeID+"/files", nil, &attached); err != nil {
		return nil, fmt.Errorf("listing store files: %w", err)
	}

	files := make([]StoreFile, 0, len(attached.Data))
	for _, f := range attached.Data {
		// The store listing carries IDs only; resolve each filename from
		// the files API so callers can match by name.
		var meta struct {
			Filename string `json:"filename"`
		}
		if err := c.doJSON(ctx, http.MethodGet, "/files/"+f.ID, nil, &meta); err != nil {
			c.logger.Warn().Err(err).Str("file_id", f.ID).Msg("could not resolve filename")
			continue
		}
		files = append(files, StoreFile{ID: f.ID, Filename: meta.Filename})
	}
	return files, nil
}

// DeleteFile detaches a file from the store and deletes the underlying file.
func (c *Client) DeleteFile(ctx context.Context, storeID, fileID string) error {
	if err := c.doJSON(ctx, http.MethodDelete, "/vector_stores/"+storeID+"/files/"+fileID, nil, nil); err != nil {
		return fmt.Errorf("detaching file: %w", err)
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/files/"+fileID, nil, nil); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}

// Search runs a semantic query against the store and returns up to k chunks.
func (c *Client) Search(ctx context.Context, storeID, query string, k int) ([]SearchResult, error) {
	body := map[string]any{
		"query":           query,
		"max_num_results": k,
	}

	var found struct {
		Data []struct {
			FileID   string  `json:"file_id"`
			Filename string  `json:"filename"`
			Score    float64 `json:"score"`
			Content  []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/vector_stores/"+storeID+"/search", body, &found); err != nil {
		return nil, fmt.Errorf("searching vector store: %w", err)
	}

	results := make([]SearchResult, 0, len(found.Data))
	for _, d := range found.Data {
		var text strings.Builder
		for _, part := range d.Content {
			if part.Type == "text" {
				text.WriteString(part.Text)
			}
		}
		results = append(results, SearchResult{
			FileID:   d.FileID,
			Filename: d.Filename,
			Score:    d.Score,
			Text:     text.String(),
		})
	}
	return results, nil
}

// uploadRaw uploads a file via the multipart files endpoint.
func (c *Client) uploadRaw(ctx context.Context, filename string, contents io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("purpose", filePurpose); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, contents); err != nil {
		return "", fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &buf)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("uploading %s: status %d", filename, resp.StatusCode)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	return uploaded.ID, nil
}

// doJSON executes a JSON request against the API and decodes the response
// into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("openai api key not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
