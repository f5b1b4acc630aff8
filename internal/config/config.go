// Package config provides configuration for the replay service.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the replay service configuration.
type Config struct {
	// Server settings
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Storage layout: <ResultsDir>/<CheckpointsSubdir>/<run> holds checkpoints,
	// <ResultsDir>/<CompressedSubdir>/<run>/<MovementFile> the movement log.
	ResultsDir        string `env:"RESULTS_DIR" envDefault:"results"`
	CheckpointsSubdir string `env:"CHECKPOINTS_SUBDIR" envDefault:"checkpoints"`
	CompressedSubdir  string `env:"COMPRESSED_SUBDIR" envDefault:"compressed"`
	AgentLogsDir      string `env:"AGENT_LOGS_DIR" envDefault:"agent_logs"`
	MovementFile      string `env:"MOVEMENT_FILE" envDefault:"movement.json"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:replay.db?cache=shared&mode=rwc"`

	// Extraction
	ReadWorkers int      `env:"READ_WORKERS" envDefault:"4"`
	Personas    []string `env:"PERSONAS" envSeparator:","`

	// Replay
	FramesPerStep       int           `env:"FRAMES_PER_STEP" envDefault:"1"`
	StreamFrameInterval time.Duration `env:"STREAM_FRAME_INTERVAL" envDefault:"1s"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// CheckpointsDir returns the checkpoint directory of a simulation run.
func (c *Config) CheckpointsDir(name string) string {
	return filepath.Join(c.ResultsDir, c.CheckpointsSubdir, name)
}

// AgentLogsPath returns where extracted timelines of a run are written.
func (c *Config) AgentLogsPath(name string) string {
	return filepath.Join(c.CheckpointsDir(name), c.AgentLogsDir)
}

// MovementPath returns the compressed movement log of a simulation run.
func (c *Config) MovementPath(name string) string {
	return filepath.Join(c.ResultsDir, c.CompressedSubdir, name, c.MovementFile)
}
