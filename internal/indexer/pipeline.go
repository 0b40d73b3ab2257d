// Package indexer orchestrates the crawl-to-index pipeline: crawl a site,
// chunk each saved artifact, embed the chunks, and upsert them into the
// vector store.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mike-a-ellis/siterag/internal/chunker"
	"github.com/mike-a-ellis/siterag/internal/crawler"
	"github.com/mike-a-ellis/siterag/internal/storage"
)

// SiteCrawler walks a site and returns the saved artifact paths.
type SiteCrawler interface {
	Crawl(ctx context.Context, seedURL string, maxDepth int) ([]string, crawler.Stats, error)
}

// Embedder converts chunk texts into vectors, positionally aligned.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Index persists aligned (vector, chunk, metadata) triples.
type Index interface {
	Upsert(ctx context.Context, vectors [][]float32, chunks []string, metas []storage.Metadata) error
}

// Result contains statistics about one crawl-and-index run.
type Result struct {
	Crawl            crawler.Stats
	TotalArtifacts   int
	IndexedArtifacts int
	TotalChunks      int
	Failed           []FailedArtifact
	Duration         time.Duration
}

// FailedArtifact is an artifact that crawled fine but failed to index.
type FailedArtifact struct {
	Path   string
	Reason string
}

// Pipeline wires the crawler, chunker, embedder, and index together.
type Pipeline struct {
	crawler   SiteCrawler
	embedder  Embedder
	index     Index
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

// NewPipeline creates a pipeline. Zero chunk parameters fall back to the
// chunker defaults; a nil logger falls back to slog.Default.
func NewPipeline(c SiteCrawler, e Embedder, idx Index, chunkSize, overlap int, logger *slog.Logger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultSize
	}
	if overlap < 0 {
		overlap = chunker.DefaultOverlap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		crawler:   c,
		embedder:  e,
		index:     idx,
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    logger,
	}
}

// IndexSite crawls the site rooted at seedURL and indexes every saved
// artifact. Indexing failures are recorded per artifact and do not stop the
// run; the crawl itself failing does.
func (p *Pipeline) IndexSite(ctx context.Context, seedURL string, maxDepth int) (*Result, error) {
	start := time.Now()
	result := &Result{}

	p.logger.Info("starting crawl", "seed", seedURL, "max_depth", maxDepth)
	paths, stats, err := p.crawler.Crawl(ctx, seedURL, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}
	result.Crawl = stats
	result.TotalArtifacts = len(paths)

	for _, path := range paths {
		chunks, err := p.indexArtifact(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Warn("failed to index artifact", "path", path, "error", err)
			result.Failed = append(result.Failed, FailedArtifact{
				Path:   path,
				Reason: err.Error(),
			})
			continue
		}
		result.IndexedArtifacts++
		result.TotalChunks += chunks
	}

	result.Duration = time.Since(start)
	p.logger.Info("indexing complete",
		"artifacts", result.IndexedArtifacts,
		"failed", len(result.Failed),
		"chunks", result.TotalChunks,
		"duration", result.Duration,
	)

	return result, nil
}

// indexArtifact chunks, embeds, and upserts one saved page. Returns the
// number of chunks indexed. Embedding and storage failures abort the whole
// artifact; nothing is left partially indexed with mismatched lengths.
func (p *Pipeline) indexArtifact(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read artifact: %w", err)
	}

	chunks, err := chunker.Split(string(content), p.chunkSize, p.overlap)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}

	source := filepath.Base(path)
	metas := make([]storage.Metadata, len(chunks))
	for i := range chunks {
		metas[i] = storage.Metadata{
			Source:      source,
			ChunkIndex:  i,
			TotalChunks: len(chunks),
		}
	}

	if err := p.index.Upsert(ctx, vectors, chunks, metas); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	p.logger.Info("indexed artifact", "path", path, "chunks", len(chunks))
	return len(chunks), nil
}
