// Package core defines the core business logic and interfaces for the
// music-generation service.
package core

import (
	"context"
	"errors"
	"fmt"
)

// ObjectStore defines the interface for interacting with a key-value blob store.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// Generator defines the interface for a text-to-music generation backend.
// Implementations return the complete generated clip as WAV bytes.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) ([]byte, error)
}

// ModelSize selects which pretrained MusicGen checkpoint to load.
type ModelSize string

// Supported checkpoint sizes.
const (
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// Default generation parameters, matching the upstream MusicGen CLI.
const (
	DefaultDuration    = 30.0
	DefaultTopK        = 250
	DefaultTopP        = 0.0
	DefaultTemperature = 1.0
	DefaultCFGCoef     = 3.0
)

var (
	// ErrPromptEmpty indicates that the text prompt is empty.
	ErrPromptEmpty = errors.New("prompt cannot be empty")
	// ErrDurationNotPositive indicates a zero or negative clip duration.
	ErrDurationNotPositive = errors.New("duration must be greater than zero")
	// ErrUnknownModelSize indicates a model size outside {small, medium, large}.
	ErrUnknownModelSize = errors.New("unknown model size")
	// ErrTopKNegative indicates that the top-k sampling parameter is negative.
	ErrTopKNegative = errors.New("top_k must be non-negative")
	// ErrTopPRange indicates that the TopP parameter is out of the valid range [0.0, 1.0].
	ErrTopPRange = errors.New("top_p must be between 0.0 and 1.0")
	// ErrTemperatureRange indicates that the Temperature parameter is out of the valid range [0.0, ...).
	ErrTemperatureRange = errors.New("temperature must be >= 0.0")
	// ErrCFGCoefNegative indicates a negative classifier-free-guidance coefficient.
	ErrCFGCoefNegative = errors.New("cfg_coef must be non-negative")
)

// ParseModelSize converts a string into a ModelSize, rejecting anything
// outside the supported checkpoint set before a model load is attempted.
func ParseModelSize(value string) (ModelSize, error) {
	switch ModelSize(value) {
	case ModelSmall, ModelMedium, ModelLarge:
		return ModelSize(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownModelSize, value)
	}
}

// Checkpoint returns the pretrained checkpoint name for the size.
func (m ModelSize) Checkpoint() string {
	return "facebook/musicgen-" + string(m)
}

// GenerationRequest holds the parameters for a single music-generation job.
type GenerationRequest struct {
	Prompt      string
	Duration    float64
	Model       ModelSize
	TopK        int
	TopP        float64
	Temperature float64
	CFGCoef     float64
}

// NewGenerationRequest returns a request for the given prompt with the
// default sampling parameters applied.
func NewGenerationRequest(prompt string, model ModelSize) GenerationRequest {
	return GenerationRequest{
		Prompt:      prompt,
		Duration:    DefaultDuration,
		Model:       model,
		TopK:        DefaultTopK,
		TopP:        DefaultTopP,
		Temperature: DefaultTemperature,
		CFGCoef:     DefaultCFGCoef,
	}
}

// Validate ensures the request contains valid and safe values. Validation
// runs at the boundary, before any model load or engine call is attempted.
func (r GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return ErrPromptEmpty
	}

	if r.Duration <= 0 {
		return fmt.Errorf("%w: got %f", ErrDurationNotPositive, r.Duration)
	}

	_, err := ParseModelSize(string(r.Model))
	if err != nil {
		return err
	}

	return r.validateSamplingParams()
}

func (r GenerationRequest) validateSamplingParams() error {
	if r.TopK < 0 {
		return fmt.Errorf("%w: got %d", ErrTopKNegative, r.TopK)
	}

	if r.TopP < 0.0 || r.TopP > 1.0 {
		return fmt.Errorf("%w: got %f", ErrTopPRange, r.TopP)
	}

	if r.Temperature < 0.0 {
		return fmt.Errorf("%w: got %f", ErrTemperatureRange, r.Temperature)
	}

	if r.CFGCoef < 0.0 {
		return fmt.Errorf("%w: got %f", ErrCFGCoefNegative, r.CFGCoef)
	}

	return nil
}
