package server

import "net/http"

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>siterag</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; display: flex; align-items: center; justify-content: center; }
  .card { max-width: 560px; width: 90%; background: #1e293b; border-radius: 12px; padding: 2.5rem; }
  h1 { font-size: 1.75rem; margin-bottom: 0.5rem; color: #f8fafc; }
  .subtitle { color: #94a3b8; margin-bottom: 1.5rem; }
  .endpoint { font-family: "SF Mono", Menlo, monospace; font-size: 0.9rem; color: #a5b4fc; }
  p { margin: 0.4rem 0; }
</style>
</head>
<body>
<div class="card">
  <h1>siterag</h1>
  <p class="subtitle">Welcome to the site Q&amp;A API. Crawl a website, then ask questions about it.</p>
  <p><span class="endpoint">POST /crawl</span> &mdash; {"url": "https://example.com/"}</p>
  <p><span class="endpoint">POST /ask</span> &mdash; {"prompt": "..."}</p>
  <p><span class="endpoint">GET /health</span> &mdash; health check</p>
</div>
</body>
</html>`

// NewLandingHandler serves the landing page at /.
func NewLandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(landingHTML))
	}
}
