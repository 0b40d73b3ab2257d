package webpage

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestExtract_StripsMarkupAndCollapsesWhitespace(t *testing.T) {
	doc := `<html><head>
		<title>Docs</title>
		<style>body { color: red; }</style>
		<script>var tracking = true;</script>
	</head><body>
		<h1>Getting   Started</h1>
		<p>First
		paragraph.</p>
		<noscript>enable javascript</noscript>
		<p>Second paragraph.</p>
	</body></html>`

	page, err := Extract(mustParse(t, "https://example.com/docs"), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "Docs Getting Started First paragraph. Second paragraph.", page.Text)
	assert.NotContains(t, page.Text, "tracking")
	assert.NotContains(t, page.Text, "color")
	assert.NotContains(t, page.Text, "enable javascript")
}

func TestExtract_ResolvesLinks(t *testing.T) {
	doc := `<body>
		<a href="/guide">Guide</a>
		<a href="intro">Intro</a>
		<a href="https://other.example.org/page">External</a>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="#section">Anchor</a>
		<a href="/guide">Duplicate</a>
		<a href="/api#auth">Fragmented</a>
		<a>No href</a>
	</body>`

	page, err := Extract(mustParse(t, "https://example.com/docs/"), strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://example.com/guide",
		"https://example.com/docs/intro",
		"https://other.example.org/page",
		"https://example.com/api",
	}, page.Links)
}

func TestExtract_EmptyBody(t *testing.T) {
	page, err := Extract(mustParse(t, "https://example.com/"), strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)

	assert.Empty(t, page.Text)
	assert.Empty(t, page.Links)
}
