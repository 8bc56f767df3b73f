package musicgen_test

import (
	"context"
	"testing"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thaitrn/musicgen-service/internal/core"
	"github.com/thaitrn/musicgen-service/internal/musicgen"
)

func newTestBinaryGenerator(t *testing.T, binaryPath string) *musicgen.BinaryGenerator {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	generator, err := musicgen.NewBinaryGenerator(binaryPath, testLogger)
	require.NoError(t, err)

	return generator
}

func TestNewBinaryGeneratorRequiresPath(t *testing.T) {
	t.Parallel()

	testLogger, err := logger.New(t.TempDir(), "test.log")
	require.NoError(t, err)

	_, err = musicgen.NewBinaryGenerator("", testLogger)
	require.ErrorIs(t, err, musicgen.ErrBinaryPathEmpty)
}

// Validation runs before the binary is ever executed.
func TestBinaryGeneratorRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	generator := newTestBinaryGenerator(t, "/nonexistent/musicgen")

	req := core.NewGenerationRequest("", core.ModelSmall)

	_, err := generator.Generate(context.Background(), req)
	require.ErrorIs(t, err, core.ErrPromptEmpty)
}

func TestBinaryGeneratorExecutionFailure(t *testing.T) {
	t.Parallel()

	generator := newTestBinaryGenerator(t, "/nonexistent/musicgen")

	req := core.NewGenerationRequest("ambient pads", core.ModelSmall)
	req.Duration = 1.0

	_, err := generator.Generate(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "musicgen binary execution failed")
}
