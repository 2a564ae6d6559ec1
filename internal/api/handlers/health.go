package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nirvachan/server/internal/metrics"
	"github.com/nirvachan/server/internal/storage"
)

const serviceName = "nepal-elections-api"

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
	Mode     string `json:"mode"`
}

// Health reports liveness plus database connectivity. The endpoint answers
// 200 in both states; "degraded" with the database error string signals the
// store is unreachable.
func Health(repo storage.Repository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		response := healthResponse{
			Status:   "healthy",
			Service:  serviceName,
			Database: "connected",
			Mode:     "full-db",
		}

		if err := repo.Ping(ctx); err != nil {
			response.Status = "degraded"
			response.Database = "error: " + err.Error()
			metrics.HealthStatus.Set(1)
		} else {
			metrics.HealthStatus.Set(2)
		}

		writeJSON(w, http.StatusOK, response)
	})
}
