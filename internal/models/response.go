package models

import "time"

// Envelope wraps every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Uptime    string    `json:"uptime"`
}

type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

type RouteNotFoundResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

type StoreInfo struct {
	CurrentTime time.Time `json:"current_time"`
	Version     string    `json:"version"`
}
