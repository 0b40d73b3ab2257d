// Package main provides the siterag CLI for crawling, indexing, and
// querying a site from the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mike-a-ellis/siterag/internal/bot"
	"github.com/mike-a-ellis/siterag/internal/config"
	"github.com/mike-a-ellis/siterag/internal/crawler"
	"github.com/mike-a-ellis/siterag/internal/embedding"
	"github.com/mike-a-ellis/siterag/internal/indexer"
	"github.com/mike-a-ellis/siterag/internal/storage"
)

var (
	configPath string
	maxDepth   int
)

var rootCmd = &cobra.Command{
	Use:   "siterag",
	Short: "Crawl a website and answer questions about it",
	Long:  "CLI for the siterag pipeline: crawl a site, index its text in Qdrant, and query it with retrieval-augmented generation",
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <url>",
	Short: "Crawl a site and index its pages",
	Long: `Crawls the site rooted at the given URL, saves one text artifact per
page, and indexes chunked embeddings in Qdrant.

Environment variables:
  QDRANT_HOST    Qdrant hostname (default from config)
  QDRANT_PORT    Qdrant gRPC port (default from config)
  OPENAI_API_KEY OpenAI API key for embeddings (required)`,
	Args: cobra.ExactArgs(1),
	RunE: runCrawl,
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the indexed site",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many chunks the index holds",
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the config file")
	crawlCmd.Flags().IntVar(&maxDepth, "depth", 0, "crawl depth (0 uses the configured default)")
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps bundles the constructed components shared by the subcommands.
type deps struct {
	cfg      *config.Config
	store    *storage.Store
	embedder *embedding.Embedder
	client   *embedding.Client
}

func buildDeps() (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	qdrantHost := getEnv("QDRANT_HOST", cfg.Qdrant.Host)
	qdrantPort := getEnvInt("QDRANT_PORT", cfg.Qdrant.Port)

	store, err := storage.NewStore(qdrantHost, qdrantPort, cfg.Qdrant.Collection)
	if err != nil {
		return nil, fmt.Errorf("connect to Qdrant: %w", err)
	}

	client, err := embedding.NewClient()
	if err != nil {
		store.Close()
		return nil, err
	}

	return &deps{
		cfg:      cfg,
		store:    store,
		client:   client,
		embedder: embedding.NewEmbedder(client, cfg.OpenAI.EmbeddingModel, cfg.OpenAI.EmbedBatchSize),
	}, nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.store.Close()

	depth := maxDepth
	if depth <= 0 {
		depth = d.cfg.Crawler.MaxDepth
	}

	logger := slog.Default()
	fetcher := crawler.NewHTTPFetcher(time.Duration(d.cfg.Crawler.TimeoutSecs) * time.Second)
	siteCrawler := crawler.New(fetcher, crawler.Options{
		OutputDir:     d.cfg.Crawler.OutputDir,
		Delay:         time.Duration(d.cfg.Crawler.DelayMillis) * time.Millisecond,
		MinContentLen: d.cfg.Crawler.MinContentLen,
	}, logger)
	pipeline := indexer.NewPipeline(siteCrawler, d.embedder, d.store, d.cfg.Chunker.Size, d.cfg.Chunker.Overlap, logger)

	fmt.Printf("Crawling %s (depth %d)...\n", args[0], depth)
	result, err := pipeline.IndexSite(cmd.Context(), args[0], depth)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Crawl complete!")
	fmt.Printf("  Pages visited: %d\n", result.Crawl.Visited)
	fmt.Printf("  Pages saved:   %d\n", result.Crawl.Saved)
	fmt.Printf("  Chunks:        %d\n", result.TotalChunks)
	fmt.Printf("  Duration:      %s\n", result.Duration.Round(time.Second))

	if len(result.Failed) > 0 {
		fmt.Println()
		fmt.Println("Failed artifacts:")
		for _, failed := range result.Failed {
			fmt.Printf("  - %s: %s\n", failed.Path, failed.Reason)
		}
	}

	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.store.Close()

	completer := bot.NewOpenAICompleter(d.client.API(), d.cfg.OpenAI.ChatModel)
	qaBot := bot.New(d.embedder, d.store, completer, d.cfg.Query.TopK, slog.Default())

	answer, err := qaBot.Answer(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	fmt.Println(answer.Text)
	if len(answer.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, src := range answer.Sources {
			fmt.Printf("  %s\n", src)
		}
	}

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(
		getEnv("QDRANT_HOST", cfg.Qdrant.Host),
		getEnvInt("QDRANT_PORT", cfg.Qdrant.Port),
		cfg.Qdrant.Collection,
	)
	if err != nil {
		return fmt.Errorf("connect to Qdrant: %w", err)
	}
	defer store.Close()

	points, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("Collection %q holds %d chunks\n", cfg.Qdrant.Collection, points)

	return nil
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
