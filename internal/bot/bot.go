// Package bot answers user questions from the indexed site: embed the
// question, retrieve the nearest chunks, and hand them to the completion
// model with source attribution.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mike-a-ellis/siterag/internal/storage"
	"github.com/mike-a-ellis/siterag/internal/webpage"
)

// DefaultTopK is how many chunks are retrieved per question.
const DefaultTopK = 3

// Embedder converts the question into a query vector (single-item batch).
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever answers nearest-neighbor queries over the indexed chunks.
type Retriever interface {
	Query(ctx context.Context, vector []float32, k int) ([]storage.ScoredChunk, error)
}

// Answer is the generated response plus the source URLs of the chunks that
// informed it, in retrieval order.
type Answer struct {
	Text    string
	Sources []string
}

// Bot is the query service.
type Bot struct {
	embedder  Embedder
	index     Retriever
	completer Completer
	topK      int
	logger    *slog.Logger
}

// New creates a Bot. A non-positive topK falls back to DefaultTopK; a nil
// logger falls back to slog.Default.
func New(embedder Embedder, index Retriever, completer Completer, topK int, logger *slog.Logger) *Bot {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		embedder:  embedder,
		index:     index,
		completer: completer,
		topK:      topK,
		logger:    logger,
	}
}

// Answer embeds the question, retrieves the top-k nearest chunks, and asks
// the completion model with the retrieved context. When retrieval finds
// nothing the completion still runs with an empty context block, so the
// model can decline gracefully instead of the call failing.
func (b *Bot) Answer(ctx context.Context, question string) (*Answer, error) {
	vectors, err := b.embedder.EmbedBatch(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed question: expected 1 vector, got %d", len(vectors))
	}

	hits, err := b.index.Query(ctx, vectors[0], b.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	b.logger.Debug("retrieved chunks", "count", len(hits))

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Chunk
	}
	contextBlock := strings.Join(texts, "\n\n")

	text, err := b.completer.Complete(ctx, question, contextBlock)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	return &Answer{
		Text:    text,
		Sources: sourceURLs(hits),
	}, nil
}

// sourceURLs reconstructs a human-readable source per hit from the stored
// artifact name, deduplicated in retrieval order. The reconstruction is
// best-effort: sanitization is lossy, so the URL may differ from the
// original for paths containing underscores.
func sourceURLs(hits []storage.ScoredChunk) []string {
	sources := make([]string, 0, len(hits))
	seen := make(map[string]bool)
	for _, hit := range hits {
		src := webpage.SourceURL(hit.Metadata.Source)
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}
