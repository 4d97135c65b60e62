package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/knowledge/vectorstore"
)

// Store is the subset of the vector store client the service needs.
type Store interface {
	FindStore(ctx context.Context, name string) (string, error)
	Search(ctx context.Context, storeID, query string, k int) ([]vectorstore.SearchResult, error)
}

// ServiceConfig holds configuration for the knowledge service.
type ServiceConfig struct {
	// Store is the vector store client (required).
	Store Store

	// StoreName is the hosted vector store to search (required).
	StoreName string

	// TopK is the default number of chunks to retrieve (default 5).
	TopK int

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service searches the knowledge base. The store ID is resolved on first use
// and cached for the life of the service.
type Service struct {
	store     Store
	storeName string
	topK      int
	logger    zerolog.Logger

	mu      sync.Mutex
	storeID string
}

// NewService creates a knowledge search service.
func NewService(cfg ServiceConfig) *Service {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{
		store:     cfg.Store,
		storeName: cfg.StoreName,
		topK:      topK,
		logger:    cfg.Logger,
	}
}

// Search returns up to k relevant chunks for the query. k <= 0 uses the
// configured default. Returns ErrStoreNotReady when the hosted store has not
// been created yet.
func (s *Service) Search(ctx context.Context, query string, k int) ([]Document, error) {
	if k <= 0 {
		k = s.topK
	}

	storeID, err := s.resolveStoreID(ctx)
	if err != nil {
		return nil, err
	}

	results, err := s.store.Search(ctx, storeID, query, k)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge base: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, Document{
			Source:  r.Filename,
			Content: r.Text,
			Score:   r.Score,
			FileID:  r.FileID,
		})
	}

	s.logger.Debug().
		Str("query", query).
		Int("k", k).
		Int("results", len(docs)).
		Msg("knowledge search completed")

	return docs, nil
}

func (s *Service) resolveStoreID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storeID != "" {
		return s.storeID, nil
	}

	id, err := s.store.FindStore(ctx, s.storeName)
	if err != nil {
		if errors.Is(err, vectorstore.ErrStoreNotFound) {
			return "", fmt.Errorf("%q: %w", s.storeName, ErrStoreNotReady)
		}
		return "", fmt.Errorf("resolving store: %w", err)
	}

	s.storeID = id
	return id, nil
}

// FormatDocuments renders retrieved chunks as the plain text block handed to
// the model: each chunk prefixed with its source, blank-line separated.
func FormatDocuments(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Source != "" {
			parts = append(parts, fmt.Sprintf("Source: %s\n%s", d.Source, d.Content))
		} else {
			parts = append(parts, d.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
