package server

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Qdrant    string `json:"qdrant"`
	Timestamp string `json:"timestamp"`
}

// NewHealthHandler serves /health: 200 when the vector store answers within
// the deadline, 503 otherwise.
func NewHealthHandler(store HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		if err := store.Health(ctx); err != nil {
			response.Status = "unhealthy"
			response.Qdrant = "disconnected"
			writeJSON(w, http.StatusServiceUnavailable, response)
			return
		}

		response.Status = "healthy"
		response.Qdrant = "connected"
		writeJSON(w, http.StatusOK, response)
	}
}
