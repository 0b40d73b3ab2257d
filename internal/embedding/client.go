package embedding

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client shared by the embedder and the answer
// generator.
type Client struct {
	api *openai.Client
}

// NewClient creates the OpenAI client. The API key comes from the
// OPENAI_API_KEY environment variable; an unset key is an error at
// construction time rather than on first use.
func NewClient() (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// openai-go reads OPENAI_API_KEY from the environment itself.
	api := openai.NewClient()

	return &Client{api: &api}, nil
}

// API exposes the underlying OpenAI client for other consumers (answer
// generation).
func (c *Client) API() *openai.Client {
	return c.api
}
