// Package config provides the configuration structure for the musicgen service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"

	"github.com/thaitrn/musicgen-service/internal/core"
)

// Fallback values applied when the loaded TOML leaves a field unset.
const (
	defaultEngineHost    = "localhost"
	defaultEnginePort    = 8000
	defaultEngineTimeout = 600
	defaultRemoteTimeout = 300
	defaultOutputDir     = "generated_music"
	defaultModelsDir     = "models"
	defaultModelSize     = string(core.ModelSmall)
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                    string `toml:"url"`
	GenerationJobsSubject  string `toml:"generation_jobs_subject"`
	ClipStoredSubject      string `toml:"clip_stored_subject"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
}

// EngineConfig holds the connection settings for the MusicGen inference
// engine. When BinaryPath is set the local binary backend is used instead
// of the HTTP service.
type EngineConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BinaryPath     string `toml:"binary_path"`
}

// GetServiceURL returns the base URL of the engine HTTP service.
func (e EngineConfig) GetServiceURL() string {
	return fmt.Sprintf("http://%s:%d", e.Host, e.Port)
}

// GenerationConfig holds the default sampling parameters applied to requests
// that do not override them.
type GenerationConfig struct {
	ModelSize   string  `toml:"model_size"`
	Duration    float64 `toml:"duration"`
	TopK        int     `toml:"top_k"`
	TopP        float64 `toml:"top_p"`
	Temperature float64 `toml:"temperature"`
	CFGCoef     float64 `toml:"cfg_coef"`
}

// RemoteConfig holds the hosted inference endpoint URLs used by the smoke
// test client.
type RemoteConfig struct {
	GenerateURL    string `toml:"generate_url"`
	HealthURL      string `toml:"health_url"`
	ModelsURL      string `toml:"models_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	OutputDir   string `toml:"output_dir"`
	ModelsDir   string `toml:"models_dir"`
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS       NATSConfig       `toml:"nats"`
	Engine     EngineConfig     `toml:"engine"`
	Generation GenerationConfig `toml:"generation"`
	Remote     RemoteConfig     `toml:"remote"`
	Paths      PathsConfig      `toml:"paths"`
}

// Load loads the configuration for the musicgen service and fills in
// defaults for anything the TOML leaves unset.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	cfg.ApplyDefaults()

	return &cfg, nil
}

// ApplyDefaults fills unset fields with the standard MusicGen defaults.
func (c *Config) ApplyDefaults() {
	if c.Engine.Host == "" {
		c.Engine.Host = defaultEngineHost
	}

	if c.Engine.Port == 0 {
		c.Engine.Port = defaultEnginePort
	}

	if c.Engine.TimeoutSeconds == 0 {
		c.Engine.TimeoutSeconds = defaultEngineTimeout
	}

	if c.Remote.TimeoutSeconds == 0 {
		c.Remote.TimeoutSeconds = defaultRemoteTimeout
	}

	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = defaultOutputDir
	}

	if c.Paths.ModelsDir == "" {
		c.Paths.ModelsDir = defaultModelsDir
	}

	c.applyGenerationDefaults()
}

func (c *Config) applyGenerationDefaults() {
	if c.Generation.ModelSize == "" {
		c.Generation.ModelSize = defaultModelSize
	}

	if c.Generation.Duration == 0 {
		c.Generation.Duration = core.DefaultDuration
	}

	if c.Generation.TopK == 0 {
		c.Generation.TopK = core.DefaultTopK
	}

	if c.Generation.Temperature == 0 {
		c.Generation.Temperature = core.DefaultTemperature
	}

	if c.Generation.CFGCoef == 0 {
		c.Generation.CFGCoef = core.DefaultCFGCoef
	}
}
