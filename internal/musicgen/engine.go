package musicgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"

	"github.com/thaitrn/musicgen-service/internal/config"
	"github.com/thaitrn/musicgen-service/internal/core"
	"github.com/thaitrn/musicgen-service/internal/musicgen/audio"
	"github.com/thaitrn/musicgen-service/internal/musicgen/genutils"
)

const (
	// HealthCheckTimeout defines the timeout for health check operations.
	HealthCheckTimeout = 10 * time.Second

	// DurationTolerance is the accepted mismatch, in seconds, between the
	// requested clip duration and the duration decoded from the WAV header.
	DurationTolerance = 1.0

	// File permissions for written clips.
	filePermissions = 0o600
)

// Static errors.
var (
	ErrOutputDirEmpty   = errors.New("output directory cannot be empty")
	ErrDurationMismatch = errors.New("generated clip duration outside tolerance")
)

// Log formats.
const (
	errFmtHealthCheckFailed = "musicgen service health check failed: %w"
	logFmtGeneratedClip     = "Generated clip: %s (%s, %s)"
	logFmtClipGenerated     = "Generated clip %d/%d"
	errFmtClipFailed        = "clip %d failed: %w"
)

// SampleClipPrompts are the fixed descriptions used by the sample-clip run.
var SampleClipPrompts = []string{
	"upbeat electronic dance music with synthesizers",
	"peaceful acoustic guitar melody",
	"energetic rock music with drums and electric guitar",
}

// SampleClipDuration is the per-clip duration of the sample-clip run, kept
// short so the run stays usable as an installation check.
const SampleClipDuration = 10.0

// ClipResult describes a generated clip written to disk.
type ClipResult struct {
	Path       string
	SizeBytes  int64
	SampleRate int
	Channels   int
	Duration   float64
}

// Engine orchestrates music generation by driving a generation backend and
// managing the output-file lifecycle for the resulting WAV clips. It is
// single-shot per clip: a backend failure surfaces as-is with no retry.
type Engine struct {
	generator core.Generator
	config    *config.Config
	logger    *logger.Logger
}

// NewEngine creates an engine around the given generation backend.
func NewEngine(generator core.Generator, cfg *config.Config, log *logger.Logger) *Engine {
	return &Engine{
		generator: generator,
		config:    cfg,
		logger:    log,
	}
}

// GenerateClip runs a single generation job and writes the resulting
// waveform to outputDir, falling back to the configured output directory
// when outputDir is empty. When filename is empty a name is derived from
// the model size, the prompt, and a timestamp. The output directory is
// created if absent. The resolved clip path and its decoded WAV metadata
// are returned on success.
func (e *Engine) GenerateClip(
	ctx context.Context,
	req core.GenerationRequest,
	outputDir, filename string,
) (*ClipResult, error) {
	validationErr := req.Validate()
	if validationErr != nil {
		return nil, validationErr
	}

	if outputDir == "" {
		outputDir = e.config.Paths.OutputDir
	}

	if outputDir == "" {
		return nil, ErrOutputDirEmpty
	}

	dirErr := genutils.EnsureDir(outputDir)
	if dirErr != nil {
		return nil, dirErr
	}

	outputPath := e.resolveOutputPath(req, outputDir, filename)

	audioData, genErr := e.generator.Generate(ctx, req)
	if genErr != nil {
		return nil, fmt.Errorf("failed to generate music: %w", genErr)
	}

	writeErr := os.WriteFile(outputPath, audioData, filePermissions)
	if writeErr != nil {
		return nil, fmt.Errorf("failed to write audio file: %w", writeErr)
	}

	result, metaErr := e.describeClip(outputPath, audioData)
	if metaErr != nil {
		return nil, metaErr
	}

	e.logger.Info(
		logFmtGeneratedClip,
		outputPath,
		genutils.FormatDuration(result.Duration),
		genutils.FormatFileSize(result.SizeBytes),
	)

	return result, nil
}

// VerifyClipDuration checks a generated clip against the requested duration
// within DurationTolerance.
func VerifyClipDuration(result *ClipResult, req core.GenerationRequest) error {
	if math.Abs(result.Duration-req.Duration) > DurationTolerance {
		return fmt.Errorf(
			"%w: requested %.1fs, got %.1fs",
			ErrDurationMismatch,
			req.Duration,
			result.Duration,
		)
	}

	return nil
}

// GenerateSampleClips generates the fixed sample descriptions sequentially
// in one process, as an end-to-end installation check. Exactly one output
// file per prompt is produced; the first failure aborts the run.
func (e *Engine) GenerateSampleClips(
	ctx context.Context,
	outputDir string,
) ([]*ClipResult, error) {
	results := make([]*ClipResult, 0, len(SampleClipPrompts))

	for clipIndex, prompt := range SampleClipPrompts {
		req := core.NewGenerationRequest(prompt, core.ModelSmall)
		req.Duration = SampleClipDuration

		result, err := e.GenerateClip(ctx, req, outputDir, "")
		if err != nil {
			return results, fmt.Errorf(errFmtClipFailed, clipIndex+1, err)
		}

		e.logger.Info(logFmtClipGenerated, clipIndex+1, len(SampleClipPrompts))
		results = append(results, result)
	}

	return results, nil
}

// CheckHealth verifies the backend is reachable when it supports health
// probing. Backends without a health endpoint (the local binary) pass
// trivially.
func (e *Engine) CheckHealth(ctx context.Context) error {
	client, ok := e.generator.(*HTTPClient)
	if !ok {
		return nil
	}

	healthCtx, cancel := context.WithTimeout(ctx, HealthCheckTimeout)
	defer cancel()

	healthErr := client.HealthCheck(healthCtx)
	if healthErr != nil {
		return fmt.Errorf(errFmtHealthCheckFailed, healthErr)
	}

	return nil
}

func (e *Engine) resolveOutputPath(
	req core.GenerationRequest,
	outputDir, filename string,
) string {
	if filename == "" {
		filename = genutils.ClipFileName(string(req.Model), req.Prompt, time.Now())
	} else {
		filename = genutils.EnsureWavExtension(genutils.SanitizeFilename(filename))
	}

	return filepath.Join(outputDir, filename)
}

func (e *Engine) describeClip(outputPath string, audioData []byte) (*ClipResult, error) {
	meta, metaErr := audio.ParseMetadata(audioData)
	if metaErr != nil {
		return nil, fmt.Errorf("generated data is not a valid WAV clip: %w", metaErr)
	}

	return &ClipResult{
		Path:       outputPath,
		SizeBytes:  int64(len(audioData)),
		SampleRate: meta.SampleRate,
		Channels:   meta.Channels,
		Duration:   meta.Duration(),
	}, nil
}
