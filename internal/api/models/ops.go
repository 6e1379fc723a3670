// Package models provides request and response models for the faultmesh
// HTTP APIs.
package models

// HealthResponse is the body of GET /health. The health fields are derived
// from the active fault set at query time; the connectivity flags report
// live dependency reachability.
type HealthResponse struct {
	Service           string  `json:"service"`
	Status            string  `json:"status"`
	LatencyMs         float64 `json:"latency_ms"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryMB          float64 `json:"memory_mb"`
	RedisConnected    *bool   `json:"redis_connected,omitempty"`
	DatabaseConnected *bool   `json:"database_connected,omitempty"`
	Timestamp         string  `json:"timestamp"`
}

// StatusResponse is the body of GET /api/status on the frontend role:
// one entry per known peer service.
type StatusResponse struct {
	Timestamp string              `json:"timestamp"`
	Services  []PeerStatusSummary `json:"services"`
}

// PeerStatusSummary is one peer's health as seen by the frontend.
type PeerStatusSummary struct {
	Name      string  `json:"name"`
	Status    string  `json:"status"`
	LatencyMs float64 `json:"latency_ms"`
	Reachable bool    `json:"reachable"`
	Error     string  `json:"error,omitempty"`
}
