// Package musicgen provides music-generation functionality that orchestrates
// text-to-music jobs against a standalone MusicGen inference engine.
package musicgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thaitrn/musicgen-service/internal/core"
)

// API endpoints and paths.
const (
	apiGenerateMusic = "/v1/generate/music"
	apiListModels    = "/v1/models"
	apiHealth        = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypeWAV    = "audio/wav"
)

// Error messages.
const (
	errUnexpectedContentType   = "unexpected content type: expected audio/wav, got %s"
	errReceivedEmptyAudio      = "received empty audio data"
	errFmtServiceErrorWithCode = "musicgen service error (%s): %s (code: %s)"
	errFmtServiceNonOKStatus   = "musicgen service returned non-OK status: %s, body: %s"
)

// HTTPClient represents a client for the standalone MusicGen HTTP service.
// It encapsulates the HTTP configuration and provides methods for music
// generation, model discovery, and health monitoring.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// GenerateBody defines the JSON payload for generation requests. Field names
// match the inference service contract.
type GenerateBody struct {
	Prompt      string  `json:"prompt"`
	Duration    float64 `json:"duration"`
	ModelSize   string  `json:"model_size"`
	TopK        int     `json:"top_k"`
	TopP        float64 `json:"top_p"`
	Temperature float64 `json:"temperature"`
	CFGCoef     float64 `json:"cfg_coef"`
}

// ErrorResponse represents a structured error response from the engine.
// This provides actionable diagnostics when requests fail.
type ErrorResponse struct {
	// Detail contains a human-readable error description.
	Detail string `json:"detail"`

	// ErrorCode provides a machine-readable error classification.
	ErrorCode string `json:"error_code,omitempty"`
}

// ModelInfo describes one entry of the engine's model catalog.
type ModelInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}

// modelCatalog is the wire shape of the /v1/models response.
type modelCatalog struct {
	Models []ModelInfo `json:"models"`
}

// NewHTTPClient creates and configures an HTTP client for the engine service.
// The baseURL should include the protocol and port (e.g., "http://localhost:8000").
// The timeout applies to all HTTP requests made by this client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Generate sends a music-generation request and returns the raw audio data.
// The request is validated at the boundary before any network round trip,
// so an unknown model size or a non-positive duration never reaches the
// engine. The returned audio data is in WAV format as specified by the
// service contract; callers are responsible for writing it to files.
func (c *HTTPClient) Generate(ctx context.Context, req core.GenerationRequest) ([]byte, error) {
	validationErr := req.Validate()
	if validationErr != nil {
		return nil, validationErr
	}

	body := GenerateBody{
		Prompt:      req.Prompt,
		Duration:    req.Duration,
		ModelSize:   string(req.Model),
		TopK:        req.TopK,
		TopP:        req.TopP,
		Temperature: req.Temperature,
		CFGCoef:     req.CFGCoef,
	}

	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + apiGenerateMusic

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		url,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set explicit headers as per API contract.
	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeWAV)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to send request to musicgen service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	return readAudioResponse(resp)
}

func readAudioResponse(resp *http.Response) ([]byte, error) {
	contentType := resp.Header.Get(headerContentType)
	if contentType != contentTypeWAV {
		return nil, fmt.Errorf(errUnexpectedContentType, contentType)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, errors.New(errReceivedEmptyAudio)
	}

	return audioData, nil
}

// ListModels fetches the engine's checkpoint catalog.
func (c *HTTPClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	url := c.baseURL + apiListModels

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create models request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to list models from service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var catalog modelCatalog

	err = json.NewDecoder(resp.Body).Decode(&catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model catalog: %w", err)
	}

	return catalog.Models, nil
}

// HealthCheck verifies that the engine service is running and operational.
// Health checks should be performed before long generations to fail fast and
// provide clear diagnostics when the service is unavailable.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	url := c.baseURL + apiHealth

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(
			"health check failed for service at %s: %w",
			c.baseURL,
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %s", resp.Status)
	}

	return nil
}

// parseErrorResponse attempts to decode a structured JSON error from the service.
// If structured parsing fails, it falls back to returning the raw response body
// to ensure diagnostic information is preserved.
func (c *HTTPClient) parseErrorResponse(resp *http.Response) error {
	var errorResp ErrorResponse

	err := json.NewDecoder(resp.Body).Decode(&errorResp)
	if err == nil {
		return fmt.Errorf(errFmtServiceErrorWithCode,
			resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	// Fallback to raw response for non-JSON errors.
	body, _ := io.ReadAll(resp.Body)

	return fmt.Errorf(
		errFmtServiceNonOKStatus,
		resp.Status,
		string(body),
	)
}
