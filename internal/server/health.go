package server

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HealthResponse is the JSON body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const healthTimeout = 5 * time.Second

// handleHealthz pings every configured dependency and answers 200 when all of
// them respond, 503 with the first failure otherwise.
//
// Response format:
//   - Success: {"status": "healthy"}
//   - Failure: {"status": "unhealthy", "error": "database: connection refused"}
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	for _, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "unhealthy",
				Error:  fmt.Sprintf("%s: %v", check.Name, err),
			})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}
