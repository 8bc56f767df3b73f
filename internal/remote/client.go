// Package remote provides a client for the hosted music-generation
// inference endpoints, used for external smoke testing.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Probe timeouts. The generation round trip is bounded by the client-side
// timeout passed to NewClient; a timeout expiry is a terminal failure for
// that invocation, never retried.
const (
	ProbeTimeout = 10 * time.Second

	jsonIndent      = "  "
	filePermissions = 0o600
)

var (
	// ErrGenerateURLEmpty indicates that no hosted generate URL is configured.
	ErrGenerateURLEmpty = errors.New("remote generate URL cannot be empty")
	// ErrGenerationFailed indicates a well-formed response reporting failure.
	ErrGenerationFailed = errors.New("remote generation failed")
	// ErrNoAudioData indicates a success response without audio payload.
	ErrNoAudioData = errors.New("remote response contains no audio data")
)

// GenerateRequest is the JSON body posted to the hosted generate endpoint.
type GenerateRequest struct {
	Prompt      string  `json:"prompt"`
	Duration    float64 `json:"duration"`
	Temperature float64 `json:"temperature"`
	CFGCoef     float64 `json:"cfg_coef"`
	ModelSize   string  `json:"model_size"`
}

// GenerateResponse is the hosted endpoint's JSON reply. AudioData carries
// the generated WAV clip base64-encoded when generation succeeded.
type GenerateResponse struct {
	Success   bool   `json:"success"`
	Model     string `json:"model,omitempty"`
	Format    string `json:"format,omitempty"`
	AudioData string `json:"audio_data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Client issues single synchronous round trips against the hosted inference
// service. No retry or polling logic exists here.
type Client struct {
	httpClient  *http.Client
	generateURL string
	healthURL   string
	modelsURL   string
}

// NewClient creates a smoke-test client. The timeout bounds the generation
// POST; health and model probes use the shorter ProbeTimeout.
func NewClient(generateURL, healthURL, modelsURL string, timeout time.Duration) (*Client, error) {
	if generateURL == "" {
		return nil, ErrGenerateURLEmpty
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		generateURL: generateURL,
		healthURL:   healthURL,
		modelsURL:   modelsURL,
	}, nil
}

// Generate fires one POST with the given request and decodes the JSON
// response. The raw response is also returned pretty-printed for display.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, string, error) {
	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.generateURL,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf(
			"failed to reach hosted service at %s: %w",
			c.generateURL,
			err,
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf(
			"hosted service returned non-OK status: %s, body: %s",
			resp.Status,
			string(body),
		)
	}

	var decoded GenerateResponse

	err = json.Unmarshal(body, &decoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode response JSON: %w", err)
	}

	pretty, err := prettyJSON(body)
	if err != nil {
		return nil, "", err
	}

	if !decoded.Success {
		return &decoded, pretty, fmt.Errorf("%w: %s", ErrGenerationFailed, decoded.Error)
	}

	return &decoded, pretty, nil
}

// SaveAudio decodes the base64 audio payload of a success response and
// writes it to path.
func (c *Client) SaveAudio(resp *GenerateResponse, path string) (int, error) {
	if resp.AudioData == "" {
		return 0, ErrNoAudioData
	}

	audioBytes, err := base64.StdEncoding.DecodeString(resp.AudioData)
	if err != nil {
		return 0, fmt.Errorf("failed to decode audio payload: %w", err)
	}

	writeErr := os.WriteFile(path, audioBytes, filePermissions)
	if writeErr != nil {
		return 0, fmt.Errorf("failed to write audio file: %w", writeErr)
	}

	return len(audioBytes), nil
}

// Health probes the hosted health endpoint and returns its pretty-printed
// JSON body.
func (c *Client) Health(ctx context.Context) (string, error) {
	return c.probe(ctx, c.healthURL, "health")
}

// ListModels probes the hosted model-catalog endpoint and returns its
// pretty-printed JSON body.
func (c *Client) ListModels(ctx context.Context) (string, error) {
	return c.probe(ctx, c.modelsURL, "models")
}

func (c *Client) probe(ctx context.Context, url, name string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("%s URL is not configured", name)
	}

	probeCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create %s request: %w", name, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s probe failed for %s: %w", name, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s response: %w", name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"%s probe returned non-OK status: %s, body: %s",
			name,
			resp.Status,
			string(body),
		)
	}

	return prettyJSON(body)
}

func prettyJSON(body []byte) (string, error) {
	var buf bytes.Buffer

	err := json.Indent(&buf, body, "", jsonIndent)
	if err != nil {
		return "", fmt.Errorf("response is not valid JSON: %w", err)
	}

	return buf.String(), nil
}
