// Package main provides the siterag HTTP/MCP server entry point.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mike-a-ellis/siterag/internal/bot"
	"github.com/mike-a-ellis/siterag/internal/config"
	"github.com/mike-a-ellis/siterag/internal/crawler"
	"github.com/mike-a-ellis/siterag/internal/embedding"
	"github.com/mike-a-ellis/siterag/internal/indexer"
	"github.com/mike-a-ellis/siterag/internal/server"
	"github.com/mike-a-ellis/siterag/internal/storage"
)

func main() {
	// Load .env if present (local development), ignore if missing.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Cancel on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(getEnv("SITERAG_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Environment overrides for containerized deployments.
	qdrantHost := getEnv("QDRANT_HOST", cfg.Qdrant.Host)
	qdrantPort := getEnvInt("QDRANT_PORT", cfg.Qdrant.Port)
	port := getEnv("PORT", fmt.Sprintf("%d", cfg.Server.Port))

	store, err := storage.NewStore(qdrantHost, qdrantPort, cfg.Qdrant.Collection)
	if err != nil {
		log.Fatalf("failed to connect to Qdrant: %v", err)
	}
	defer store.Close()

	client, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create OpenAI client: %v", err)
	}
	embedder := embedding.NewEmbedder(client, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbedBatchSize)
	completer := bot.NewOpenAICompleter(client.API(), cfg.OpenAI.ChatModel)

	logger := slog.Default()
	fetcher := crawler.NewHTTPFetcher(time.Duration(cfg.Crawler.TimeoutSecs) * time.Second)
	siteCrawler := crawler.New(fetcher, crawler.Options{
		OutputDir:     cfg.Crawler.OutputDir,
		Delay:         time.Duration(cfg.Crawler.DelayMillis) * time.Millisecond,
		MinContentLen: cfg.Crawler.MinContentLen,
	}, logger)
	pipeline := indexer.NewPipeline(siteCrawler, embedder, store, cfg.Chunker.Size, cfg.Chunker.Overlap, logger)
	qaBot := bot.New(embedder, store, completer, cfg.Query.TopK, logger)

	serverCfg := &server.Config{
		Bot:      qaBot,
		Indexer:  pipeline,
		Health:   store,
		Status:   store,
		MaxDepth: cfg.Crawler.MaxDepth,
		Logger:   logger,
	}

	mux := server.NewMux(serverCfg)
	mcpServer := server.NewMCPServer(serverCfg)
	mux.Handle("/mcp", server.NewMCPHTTPHandler(mcpServer))

	addr := "0.0.0.0:" + port
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listen on %s: %v", addr, err)
	}

	// SERVER_MODE=true serves HTTP; otherwise MCP runs on stdio with the
	// HTTP surface in the background for local testing. Either way the
	// signal context drains the HTTP server on SIGTERM/SIGINT.
	if getEnv("SERVER_MODE", "true") == "true" {
		log.Printf("Starting HTTP server on %s (API at /crawl and /ask, MCP at /mcp, health at /health)", addr)
		if err := server.Serve(ctx, ln, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
		return
	}

	go func() {
		log.Printf("Starting HTTP server on %s", addr)
		if err := server.Serve(ctx, ln, mux); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	log.Println("Starting siterag MCP server (stdio mode)...")
	if err := mcpServer.Run(ctx); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		var i int
		if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}
