package musicgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/book-expert/logger"

	"github.com/thaitrn/musicgen-service/internal/core"
)

// ErrBinaryPathEmpty indicates that no musicgen binary path was configured.
var ErrBinaryPathEmpty = errors.New("musicgen binary path cannot be empty")

// Name the binary writes inside its output directory.
const binaryClipName = "clip"

// BinaryGenerator implements core.Generator by calling a local musicgen
// binary, for hosts that run the model in-process instead of behind the
// HTTP service.
type BinaryGenerator struct {
	binaryPath string
	log        *logger.Logger
}

// NewBinaryGenerator creates a generator around the binary at binaryPath.
func NewBinaryGenerator(binaryPath string, log *logger.Logger) (*BinaryGenerator, error) {
	if binaryPath == "" {
		return nil, ErrBinaryPathEmpty
	}

	return &BinaryGenerator{
		binaryPath: binaryPath,
		log:        log,
	}, nil
}

// Generate runs the binary against a temporary output directory and returns
// the produced WAV bytes. The binary's stderr/stdout is folded into the
// error on failure so the underlying model error stays visible.
func (g *BinaryGenerator) Generate(ctx context.Context, req core.GenerationRequest) ([]byte, error) {
	validationErr := req.Validate()
	if validationErr != nil {
		return nil, validationErr
	}

	tempDir, err := os.MkdirTemp("", "musicgen-out-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir for musicgen output: %w", err)
	}

	defer func() {
		removeErr := os.RemoveAll(tempDir)
		if removeErr != nil {
			g.log.Warn("Failed to remove temp dir '%s': %v", tempDir, removeErr)
		}
	}()

	args := []string{
		"--prompt", req.Prompt,
		"--duration", strconv.FormatFloat(req.Duration, 'f', -1, 64),
		"--model", string(req.Model),
		"--output", tempDir,
		"--filename", binaryClipName,
		"--top-k", strconv.Itoa(req.TopK),
		"--top-p", fmt.Sprintf("%.2f", req.TopP),
		"--temperature", fmt.Sprintf("%.2f", req.Temperature),
		"--cfg-coef", fmt.Sprintf("%.2f", req.CFGCoef),
	}

	// #nosec G204 -- arguments are validated via core.GenerationRequest validation
	cmd := exec.CommandContext(ctx, g.binaryPath, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf(
			"musicgen binary execution failed: %w - output: %s",
			err,
			string(output),
		)
	}

	clipPath := filepath.Join(tempDir, binaryClipName+".wav")

	// The binary exiting zero without producing the clip is still a failure.
	stat, statErr := os.Stat(clipPath)
	if os.IsNotExist(statErr) || (statErr == nil && stat.Size() == 0) {
		return nil, fmt.Errorf("output file not found: %s", clipPath)
	}

	audioData, err := os.ReadFile(clipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data from temp file: %w", err)
	}

	return audioData, nil
}
