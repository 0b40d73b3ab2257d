package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MCPServer wraps the MCP server exposing the ask/crawl/status tools.
type MCPServer struct {
	server *mcp.Server
}

// NewMCPServer creates a configured MCP server with the tools registered.
func NewMCPServer(cfg *Config) *MCPServer {
	impl := &mcp.Implementation{
		Name:    "siterag-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed site content. Returns the answer plus the source URLs of the retrieved chunks.",
	}, makeAskTool(cfg.Bot))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "crawl_site",
		Description: "Crawl a website and index its pages for question answering. Follows internal links up to max_depth.",
	}, makeCrawlTool(cfg))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Report how many chunks the vector index currently holds.",
	}, makeStatusTool(cfg.Status))

	return &MCPServer{server: server}
}

// Run starts the server on stdio transport (blocks until the client
// disconnects).
func (s *MCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// NewMCPHTTPHandler mounts the MCP server on an HTTP path using the
// Streamable HTTP transport.
func NewMCPHTTPHandler(s *MCPServer) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{Stateless: true})
}

func makeAskTool(asker Asker) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		answer, err := asker.Answer(ctx, input.Question)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("answer failed: %w", err)
		}
		sources := answer.Sources
		if sources == nil {
			sources = []string{}
		}
		return nil, AskOutput{
			Answer:  answer.Text,
			Sources: sources,
		}, nil
	}
}

func makeCrawlTool(cfg *Config) func(
	context.Context, *mcp.CallToolRequest, CrawlSiteInput,
) (*mcp.CallToolResult, CrawlSiteOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CrawlSiteInput) (
		*mcp.CallToolResult, CrawlSiteOutput, error,
	) {
		depth := input.MaxDepth
		if depth <= 0 {
			depth = cfg.MaxDepth
		}

		result, err := cfg.Indexer.IndexSite(ctx, input.URL, depth)
		if err != nil {
			return nil, CrawlSiteOutput{}, fmt.Errorf("crawl failed: %w", err)
		}

		return nil, CrawlSiteOutput{
			PagesVisited:  result.Crawl.Visited,
			PagesSaved:    result.Crawl.Saved,
			ChunksIndexed: result.TotalChunks,
			Failed:        len(result.Failed),
		}, nil
	}
}

func makeStatusTool(counter Counter) func(
	context.Context, *mcp.CallToolRequest, IndexStatusInput,
) (*mcp.CallToolResult, IndexStatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input IndexStatusInput) (
		*mcp.CallToolResult, IndexStatusOutput, error,
	) {
		points, err := counter.Count(ctx)
		if err != nil {
			return nil, IndexStatusOutput{}, fmt.Errorf("count failed: %w", err)
		}
		return nil, IndexStatusOutput{Points: points}, nil
	}
}
