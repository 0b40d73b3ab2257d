// Package server exposes the crawl and ask operations over HTTP, plus an
// MCP tool surface for agent clients.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mike-a-ellis/siterag/internal/bot"
	"github.com/mike-a-ellis/siterag/internal/indexer"
)

// Asker answers a user question from the index.
type Asker interface {
	Answer(ctx context.Context, question string) (*bot.Answer, error)
}

// SiteIndexer runs the crawl-to-index pipeline for a seed URL.
type SiteIndexer interface {
	IndexSite(ctx context.Context, seedURL string, maxDepth int) (*indexer.Result, error)
}

// HealthChecker reports vector-store connectivity.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Counter reports how many points the index holds.
type Counter interface {
	Count(ctx context.Context) (uint64, error)
}

// Config holds the server's dependencies.
type Config struct {
	Bot     Asker
	Indexer SiteIndexer
	Health  HealthChecker
	Status  Counter
	// MaxDepth is the crawl depth used when a request doesn't specify one.
	MaxDepth int
	Logger   *slog.Logger
}

// NewMux builds the HTTP surface: the landing page, the health endpoint,
// and the crawl/ask JSON endpoints.
func NewMux(cfg *Config) *http.ServeMux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", NewLandingHandler())
	mux.HandleFunc("/health", NewHealthHandler(cfg.Health))
	mux.HandleFunc("POST /crawl", makeCrawlHandler(cfg))
	mux.HandleFunc("POST /ask", makeAskHandler(cfg))
	return mux
}
