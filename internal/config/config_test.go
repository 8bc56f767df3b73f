// Package config_test tests the configuration loading for the musicgen service.
package config_test

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thaitrn/musicgen-service/internal/config"
)

func TestConfigUnmarshal(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
generation_jobs_subject = "music.generation.jobs"
clip_stored_subject = "music.clip.stored"
audio_object_store_bucket = "MUSIC_CLIPS"

[engine]
host = "127.0.0.1"
port = 8000
timeout_seconds = 600

[generation]
model_size = "medium"
duration = 15.0
top_k = 250
top_p = 0.0
temperature = 1.0
cfg_coef = 3.0

[remote]
generate_url = "https://example.modal.run/generate"
health_url = "https://example.modal.run/health"
models_url = "https://example.modal.run/models"
timeout_seconds = 300

[paths]
output_dir = "generated_music"
models_dir = "models"
base_logs_dir = "/tmp/musicgen-logs"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "music.generation.jobs", cfg.NATS.GenerationJobsSubject)
	assert.Equal(t, "music.clip.stored", cfg.NATS.ClipStoredSubject)
	assert.Equal(t, "MUSIC_CLIPS", cfg.NATS.AudioObjectStoreBucket)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Engine.GetServiceURL())
	assert.Equal(t, 600, cfg.Engine.TimeoutSeconds)
	assert.Equal(t, "medium", cfg.Generation.ModelSize)
	assert.InEpsilon(t, 15.0, cfg.Generation.Duration, 0.001)
	assert.Equal(t, "https://example.modal.run/generate", cfg.Remote.GenerateURL)
	assert.Equal(t, 300, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, "generated_music", cfg.Paths.OutputDir)
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	var cfg config.Config

	cfg.ApplyDefaults()

	assert.Equal(t, "http://localhost:8000", cfg.Engine.GetServiceURL())
	assert.Equal(t, 600, cfg.Engine.TimeoutSeconds)
	assert.Equal(t, 300, cfg.Remote.TimeoutSeconds)
	assert.Equal(t, "generated_music", cfg.Paths.OutputDir)
	assert.Equal(t, "models", cfg.Paths.ModelsDir)
	assert.Equal(t, "small", cfg.Generation.ModelSize)
	assert.InEpsilon(t, 30.0, cfg.Generation.Duration, 0.001)
	assert.Equal(t, 250, cfg.Generation.TopK)
	assert.InEpsilon(t, 1.0, cfg.Generation.Temperature, 0.001)
	assert.InEpsilon(t, 3.0, cfg.Generation.CFGCoef, 0.001)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.Engine.Host = "gpu-box"
	cfg.Engine.Port = 9000
	cfg.Generation.ModelSize = "large"

	cfg.ApplyDefaults()

	assert.Equal(t, "http://gpu-box:9000", cfg.Engine.GetServiceURL())
	assert.Equal(t, "large", cfg.Generation.ModelSize)
}
