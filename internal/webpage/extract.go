// Package webpage turns raw HTML into clean document text and resolves the
// links a page points at.
package webpage

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Page is the extracted view of a single fetched page.
type Page struct {
	// Text is the visible text with markup stripped and whitespace
	// collapsed to single spaces.
	Text string
	// Links holds every absolute http(s) URL the page's anchors resolve
	// to, in document order, with fragments removed. Host filtering is
	// the caller's concern.
	Links []string
}

// skipTags are elements whose subtree contributes no visible text.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// Extract parses HTML and returns the page text plus resolved links.
// Relative hrefs are resolved against pageURL.
func Extract(pageURL *url.URL, r io.Reader) (*Page, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var words []string
	var links []string
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			if n.Data == "a" {
				if link, ok := resolveLink(pageURL, n); ok && !seen[link] {
					seen[link] = true
					links = append(links, link)
				}
			}
		case html.TextNode:
			words = append(words, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return &Page{
		Text:  strings.Join(words, " "),
		Links: links,
	}, nil
}

// resolveLink turns an anchor's href into an absolute http(s) URL without a
// fragment. Returns false for missing, unparsable, or non-http targets
// (mailto:, javascript:, etc).
func resolveLink(base *url.URL, n *html.Node) (string, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}
