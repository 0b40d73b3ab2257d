// Package crawler walks a site's internal link graph depth-first, saving one
// clean-text artifact per accepted page. Each crawl owns its own visited set
// and artifact accumulator, so concurrent or repeated crawls never share
// state.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mike-a-ellis/siterag/internal/webpage"
)

// Options bounds a crawl and places its artifacts.
type Options struct {
	// OutputDir receives one .txt artifact per accepted page.
	OutputDir string
	// Delay is the politeness pause between consecutive fetches.
	Delay time.Duration
	// MinContentLen filters out non-content pages (redirect stubs and the
	// like): pages whose cleaned text is shorter are marked visited but
	// not persisted.
	MinContentLen int
}

// Stats summarizes one crawl.
type Stats struct {
	Visited  int           // distinct URLs fetched successfully
	Saved    int           // artifacts written
	Skipped  int           // pages below the content threshold
	Failed   int           // fetch or extraction failures
	Duration time.Duration
}

// Crawler performs depth-bounded, same-host traversals.
type Crawler struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger
}

// New creates a Crawler. A nil logger falls back to slog.Default.
func New(fetcher Fetcher, opts Options, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Crawler{fetcher: fetcher, opts: opts, logger: logger}
}

// frame is one pending traversal step: a URL and the depth budget left when
// it was discovered.
type frame struct {
	url   *url.URL
	depth int
}

// session holds the per-crawl mutable state.
type session struct {
	seedHost string
	visited  map[string]bool
	saved    []string
	limiter  *rate.Limiter
	stats    Stats
}

// Crawl traverses the site rooted at seedURL down to maxDepth links from the
// seed and returns the paths of all saved artifacts. A depth of 0 visits
// nothing. Fetch failures are logged and counted but do not stop the
// traversal, and the failing URL stays retry-eligible if another page links
// to it. The traversal aborts early only when ctx is cancelled.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, maxDepth int) ([]string, Stats, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parse seed url: %w", err)
	}
	if seed.Host == "" || (seed.Scheme != "http" && seed.Scheme != "https") {
		return nil, Stats{}, fmt.Errorf("seed url %q must be absolute http(s)", seedURL)
	}

	every := rate.Inf
	if c.opts.Delay > 0 {
		every = rate.Every(c.opts.Delay)
	}
	s := &session{
		seedHost: seed.Host,
		visited:  make(map[string]bool),
		limiter:  rate.NewLimiter(every, 1),
	}

	start := time.Now()
	// Explicit LIFO frontier instead of recursion: same depth-first order,
	// bounded stack.
	frontier := []frame{{url: seed, depth: maxDepth}}
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			s.stats.Duration = time.Since(start)
			return s.saved, s.stats, err
		}
		f := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if f.depth <= 0 {
			continue
		}
		key := canonical(f.url)
		if s.visited[key] {
			continue
		}

		links, err := c.visit(ctx, s, f.url, key)
		if err != nil {
			if ctx.Err() != nil {
				s.stats.Duration = time.Since(start)
				return s.saved, s.stats, ctx.Err()
			}
			c.logger.Warn("page failed", "url", key, "error", err)
			s.stats.Failed++
			continue
		}

		for _, link := range links {
			u, err := url.Parse(link)
			if err != nil || u.Host != s.seedHost {
				continue // external or malformed links are never fetched
			}
			frontier = append(frontier, frame{url: u, depth: f.depth - 1})
		}
	}

	s.stats.Duration = time.Since(start)
	c.logger.Info("crawl complete",
		"seed", seedURL,
		"visited", s.stats.Visited,
		"saved", s.stats.Saved,
		"skipped", s.stats.Skipped,
		"failed", s.stats.Failed,
		"duration", s.stats.Duration,
	)
	return s.saved, s.stats, nil
}

// visit fetches and extracts one page, persisting it when it carries enough
// content, and returns the page's outgoing links. The URL is marked visited
// only after a successful fetch, so transient failures do not poison the
// visited set.
func (c *Crawler) visit(ctx context.Context, s *session, u *url.URL, key string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	page, err := webpage.Extract(u, strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	s.visited[key] = true
	s.stats.Visited++

	if len(page.Text) < c.opts.MinContentLen {
		c.logger.Debug("page below content threshold", "url", key, "len", len(page.Text))
		s.stats.Skipped++
		return page.Links, nil
	}

	path, err := c.save(u, page.Text)
	if err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	s.saved = append(s.saved, path)
	s.stats.Saved++
	c.logger.Info("page saved", "url", key, "artifact", path)

	return page.Links, nil
}

// save writes the cleaned text to <OutputDir>/<sanitized name>.
func (c *Crawler) save(u *url.URL, text string) (string, error) {
	if err := os.MkdirAll(c.opts.OutputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(c.opts.OutputDir, webpage.ArtifactName(u))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// canonical is the visited-set key for a URL: the URL without its fragment.
func canonical(u *url.URL) string {
	cp := *u
	cp.Fragment = ""
	return cp.String()
}
