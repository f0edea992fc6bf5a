package handler

import (
	"net/http"
	"runtime"
	"time"

	"akasha-terminal-api/internal/catalog"
	"akasha-terminal-api/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// Handler contains shared HTTP handlers and their dependencies.
type Handler struct {
	version string
	catalog *catalog.Catalog
}

// New creates a new handler.
func New(version string, cat *catalog.Catalog) *Handler {
	return &Handler{version: version, catalog: cat}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	response.OK(w, resp)
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Ready handles GET /api/v1/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := []Check{
		{Name: "api", Status: "ok"},
	}

	catalogStatus := "ok"
	if h.catalog == nil || len(h.catalog.All()) == 0 {
		catalogStatus = "empty"
	}
	checks = append(checks, Check{Name: "weapon_catalog", Status: catalogStatus})

	allReady := true
	for _, check := range checks {
		if check.Status != "ok" {
			allReady = false
			break
		}
	}

	resp := ReadyResponse{
		Ready:     allReady,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}

	if !allReady {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response.OK(w, resp)
}

// StatusResponse carries uptime and runtime stats for the status page.
type StatusResponse struct {
	Status     string    `json:"status"`
	Version    string    `json:"version"`
	Uptime     string    `json:"uptime"`
	Timestamp  time.Time `json:"timestamp"`
	Goroutines int       `json:"goroutines"`
	Weapons    int       `json:"weapons"`
}

// Status handles GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	weapons := 0
	if h.catalog != nil {
		weapons = len(h.catalog.All())
	}
	resp := StatusResponse{
		Status:     "online",
		Version:    h.version,
		Uptime:     time.Since(StartTime).Round(time.Second).String(),
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
		Weapons:    weapons,
	}
	response.OK(w, resp)
}

// Weapons handles GET /api/v1/weapons
func (h *Handler) Weapons(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.catalog.All())
}
