package handler

import (
	"net/http"
	"time"
)

// Root handles GET /, a small banner for anyone poking at the API host.
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Frelsi Backend API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": map[string]string{
			"auth":  "/api/auth",
			"items": "/api/items",
			"likes": "/api/likes",
		},
	})
}

// Health handles GET /health for load-balancer probes.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound is the JSON 404 for unmatched routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "Route not found")
}
