package api

import (
	"time"

	"github.com/dd0wney/archval/pkg/model"
)

// API Request/Response Types

// ConvertRequest asks for a model-to-Cypher conversion.
type ConvertRequest struct {
	Model       model.ArchitectureModel `json:"model"`
	FormatStyle string                  `json:"format_style" validate:"omitempty,oneof=multiline single"`
}

// ConvertResponse carries the compiled statement and a shape summary.
type ConvertResponse struct {
	Success bool           `json:"success"`
	Cypher  string         `json:"cypher"`
	Format  string         `json:"format,omitempty"`
	Summary map[string]any `json:"summary"`
}

// ModelRequest wraps a bare architecture model.
type ModelRequest struct {
	Model model.ArchitectureModel `json:"model"`
}

// ValidateModelResponse reports compilation-compatibility findings without
// touching a graph store.
type ValidateModelResponse struct {
	Valid    bool           `json:"valid"`
	Issues   []string       `json:"issues"`
	Warnings []string       `json:"warnings"`
	Summary  map[string]any `json:"summary"`
}

// ConnectionTestResponse reports the outcome of a store reachability probe.
type ConnectionTestResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Config  map[string]string `json:"config,omitempty"`
}

// LabelAssignmentRequest asks for catalog labels on a set of nodes.
type LabelAssignmentRequest struct {
	Nodes []model.Node `json:"nodes" validate:"required,min=1"`
}

// LabelAssignmentResponse returns the labeled nodes plus per-node findings.
type LabelAssignmentResponse struct {
	Success      bool         `json:"success"`
	LabeledNodes []model.Node `json:"labeled_nodes"`
	Errors       []string     `json:"errors"`
	Warnings     []string     `json:"warnings"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Checkers  []string  `json:"checkers"`
	Uptime    string    `json:"uptime"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
