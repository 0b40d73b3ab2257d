package webpage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/docs/intro", "example.com_docs_intro.txt"},
		{"https://example.com/", "example.com_.txt"},
		{"http://example.com/a/b/c", "example.com_a_b_c.txt"},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.url)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ArtifactName(u), "url %s", tc.url)
	}
}

func TestSourceURL_RoundTrip(t *testing.T) {
	for _, raw := range []string{
		"https://example.com/docs/intro",
		"https://example.com/",
	} {
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, SourceURL(ArtifactName(u)))
	}
}

func TestSourceURL_StripsDirectory(t *testing.T) {
	assert.Equal(t, "https://example.com/docs", SourceURL("scraped_content/example.com_docs.txt"))
}

// A literal underscore in a path segment is indistinguishable from a
// separator, so reconstruction is best-effort.
func TestSourceURL_LossyUnderscore(t *testing.T) {
	u, err := url.Parse("https://example.com/release_notes")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/release/notes", SourceURL(ArtifactName(u)))
}
