package domain

import "time"

// Extraction records one extraction run in the catalog.
type Extraction struct {
	ExtractionID     string                  `json:"extraction_id"`
	RunName          string                  `json:"run_name"`
	SourceDir        string                  `json:"source_dir"`
	OutputDir        string                  `json:"output_dir"`
	TotalCheckpoints int                     `json:"total_checkpoints"`
	AgentCount       int                     `json:"agent_count"`
	Failures         []ExtractionFailure     `json:"failures,omitempty"`
	Warnings         []string                `json:"warnings,omitempty"`
	Agents           map[string]AgentSummary `json:"agents,omitempty"`
	StartedAt        time.Time               `json:"started_at"`
	FinishedAt       time.Time               `json:"finished_at"`
}

// ExtractionFailure is a checkpoint skipped during an extraction.
type ExtractionFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}
