// Package api implements the HTTP REST API and Prometheus metrics endpoint.
package api

// Response is the standard JSON response envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse holds server status information.
type StatusResponse struct {
	Uptime        string `json:"uptime"`
	DocumentCount int    `json:"document_count"`
	ObjectCount   int    `json:"object_count"`
}

// DocumentSummary describes one stored document.
type DocumentSummary struct {
	Name     string `json:"name"`
	Objects  int    `json:"objects"`
	Failures int    `json:"failures"`
}

// ConvertResponse reports the outcome of a conversion request.
type ConvertResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Failures  []FailureDetail   `json:"failures,omitempty"`
}

// FailureDetail describes one file that failed to parse.
type FailureDetail struct {
	File  string `json:"file"`
	Error string `json:"error"`
}
