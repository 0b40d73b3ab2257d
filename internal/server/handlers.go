package server

import (
	"encoding/json"
	"net/http"
)

type crawlRequest struct {
	URL string `json:"url"`
	// MaxDepth overrides the configured crawl depth when positive.
	MaxDepth int `json:"max_depth,omitempty"`
}

type crawlResponse struct {
	Status        string `json:"status"`
	PagesVisited  int    `json:"pages_visited"`
	PagesSaved    int    `json:"pages_saved"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Failed        int    `json:"failed"`
}

type askRequest struct {
	Prompt string `json:"prompt"`
}

type askResponse struct {
	Response string   `json:"response"`
	Source   []string `json:"source"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// makeCrawlHandler triggers a synchronous crawl+index of the requested
// site. Missing url is a 400; any pipeline failure is a 500 with a generic
// message (details stay in the server log).
func makeCrawlHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req crawlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
			return
		}

		depth := req.MaxDepth
		if depth <= 0 {
			depth = cfg.MaxDepth
		}

		result, err := cfg.Indexer.IndexSite(r.Context(), req.URL, depth)
		if err != nil {
			cfg.Logger.Error("crawl failed", "url", req.URL, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		writeJSON(w, http.StatusOK, crawlResponse{
			Status:        "ok",
			PagesVisited:  result.Crawl.Visited,
			PagesSaved:    result.Crawl.Saved,
			ChunksIndexed: result.TotalChunks,
			Failed:        len(result.Failed),
		})
	}
}

// makeAskHandler answers a question from the index. Missing prompt is a
// 400; internal failures are a 500 with a generic message.
func makeAskHandler(cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req askRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if req.Prompt == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prompt is required"})
			return
		}

		answer, err := cfg.Bot.Answer(r.Context(), req.Prompt)
		if err != nil {
			cfg.Logger.Error("ask failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			return
		}

		sources := answer.Sources
		if sources == nil {
			sources = []string{}
		}
		writeJSON(w, http.StatusOK, askResponse{
			Response: answer.Text,
			Source:   sources,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
