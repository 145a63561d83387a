package dto

import "github.com/spec-kit/ticket-bot/internal/observability"

// LiveResponse is returned by the liveness probe.
type LiveResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ReadyResponse is returned when every enabled dependency is reachable.
type ReadyResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// ErrorBody is the error envelope of the HTTP surface.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps ErrorBody.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MetricsResponse exposes the in-process counters.
type MetricsResponse struct {
	observability.Snapshot
	OpenTranscripts int `json:"open_transcripts"`
}
