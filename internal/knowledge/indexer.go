package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/swellbot/swellbot/internal/knowledge/vectorstore"
)

// indexableExtensions lists the file types shipped to the vector store.
var indexableExtensions = map[string]bool{
	".md":  true,
	".txt": true,
}

// IndexerStore is the subset of the vector store client the indexer needs.
type IndexerStore interface {
	FindStore(ctx context.Context, name string) (string, error)
	CreateStore(ctx context.Context, name string) (string, error)
	ListFiles(ctx context.Context, storeID string) ([]vectorstore.StoreFile, error)
	UploadFile(ctx context.Context, storeID, filename string, contents io.Reader) (string, error)
	DeleteFile(ctx context.Context, storeID, fileID string) error
}

// IndexerConfig holds configuration for the indexer.
type IndexerConfig struct {
	// Store is the vector store client (required).
	Store IndexerStore

	// StoreName is the hosted vector store to sync into (required).
	StoreName string

	// DocsDir is the local directory of markdown documents (required).
	DocsDir string

	// Logger for indexer operations.
	Logger zerolog.Logger
}

// Indexer syncs a local document directory into the hosted vector store.
// Uploads are idempotent: an existing file with the same name is replaced.
type Indexer struct {
	store     IndexerStore
	storeName string
	docsDir   string
	logger    zerolog.Logger
}

// IndexResult summarizes one reindex run.
type IndexResult struct {
	StartedAt  time.Time
	Duration   time.Duration
	Total      int
	Uploaded   int
	Replaced   int
	Failed     int
	FailedDocs []string
}

// NewIndexer creates a knowledge base indexer.
func NewIndexer(cfg IndexerConfig) *Indexer {
	return &Indexer{
		store:     cfg.Store,
		storeName: cfg.StoreName,
		docsDir:   cfg.DocsDir,
		logger:    cfg.Logger,
	}
}

// Reindex walks the docs directory and uploads every markdown/text file,
// creating the vector store on first run. Individual file failures are
// counted, logged, and skipped; the run itself only fails when the store is
// unreachable or the directory cannot be read.
func (i *Indexer) Reindex(ctx context.Context) (*IndexResult, error) {
	result := &IndexResult{StartedAt: time.Now()}
	defer func() { result.Duration = time.Since(result.StartedAt) }()

	storeID, err := i.ensureStore(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := i.store.ListFiles(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("listing existing files: %w", err)
	}
	byName := make(map[string]string, len(existing))
	for _, f := range existing {
		byName[f.Filename] = f.ID
	}

	docs, err := i.collectDocs()
	if err != nil {
		return nil, err
	}
	result.Total = len(docs)

	for _, path := range docs {
		name := filepath.Base(path)

		if oldID, ok := byName[name]; ok {
			if err := i.store.DeleteFile(ctx, storeID, oldID); err != nil {
				i.logger.Warn().Err(err).Str("doc", name).Msg("could not replace existing file")
				result.Failed++
				result.FailedDocs = append(result.FailedDocs, name)
				continue
			}
			result.Replaced++
		}

		if err := i.uploadDoc(ctx, storeID, path, name); err != nil {
			i.logger.Warn().Err(err).Str("doc", name).Msg("upload failed")
			result.Failed++
			result.FailedDocs = append(result.FailedDocs, name)
			continue
		}
		result.Uploaded++
	}

	i.logger.Info().
		Int("total", result.Total).
		Int("uploaded", result.Uploaded).
		Int("replaced", result.Replaced).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("knowledge base reindexed")

	return result, nil
}

func (i *Indexer) ensureStore(ctx context.Context) (string, error) {
	id, err := i.store.FindStore(ctx, i.storeName)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, vectorstore.ErrStoreNotFound) {
		return "", fmt.Errorf("finding store: %w", err)
	}

	id, err = i.store.CreateStore(ctx, i.storeName)
	if err != nil {
		return "", fmt.Errorf("creating store: %w", err)
	}
	return id, nil
}

func (i *Indexer) collectDocs() ([]string, error) {
	var docs []string
	err := filepath.WalkDir(i.docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if indexableExtensions[strings.ToLower(filepath.Ext(path))] {
			docs = append(docs, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking docs dir %s: %w", i.docsDir, err)
	}
	return docs, nil
}

func (i *Indexer) uploadDoc(ctx context.Context, storeID, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	_, err = i.store.UploadFile(ctx, storeID, name, f)
	return err
}
