// Package genutils_test tests the file, path, and naming utilities.
package genutils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thaitrn/musicgen-service/internal/musicgen/genutils"
)

func TestPromptSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{
			name:   "spaces become underscores",
			prompt: "upbeat electronic dance",
			want:   "upbeat_electronic_dance",
		},
		{
			name:   "punctuation is dropped",
			prompt: "lo-fi beats, chill!",
			want:   "lo-fi_beats_chill",
		},
		{
			name:   "uppercase folds to lowercase",
			prompt: "Epic Orchestral",
			want:   "epic_orchestral",
		},
		{
			name:   "empty prompt",
			prompt: "",
			want:   "",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := genutils.PromptSlug(testCase.prompt, 30)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestPromptSlugTruncates(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 100)
	slug := genutils.PromptSlug(long, 30)

	assert.LessOrEqual(t, len(slug), 30)
}

func TestClipFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	name := genutils.ClipFileName("small", "peaceful acoustic guitar melody", now)

	assert.True(t, strings.HasPrefix(name, "musicgen_small_peaceful_acoustic_guitar_melo"))
	assert.Contains(t, name, "20250601_123045")
	assert.True(t, strings.HasSuffix(name, ".wav"))
}

// Two clips named within the same second must not collide.
func TestClipFileNameDistinctWithinSameSecond(t *testing.T) {
	t.Parallel()

	now := time.Now()
	first := genutils.ClipFileName("small", "same prompt", now)
	second := genutils.ClipFileName("small", "same prompt", now)

	assert.NotEqual(t, first, second)
}

func TestClipFileNameEmptyPromptFallsBack(t *testing.T) {
	t.Parallel()

	name := genutils.ClipFileName("large", "!!!", time.Now())

	assert.True(t, strings.HasPrefix(name, "musicgen_large_clip_"))
}

func TestEnsureWavExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "track.wav", genutils.EnsureWavExtension("track"))
	assert.Equal(t, "track.wav", genutils.EnsureWavExtension("track.wav"))
	assert.Equal(t, "track.WAV", genutils.EnsureWavExtension("track.WAV"))
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a_b_c", genutils.SanitizeFilename("a/b\\c"))
	assert.Equal(t, "name_", genutils.SanitizeFilename("name?"))
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "nested", "output")

	err := genutils.EnsureDir(target)
	require.NoError(t, err)

	info, statErr := os.Stat(target)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())

	// Idempotent on an existing directory.
	require.NoError(t, genutils.EnsureDir(target))
}

func TestGetModelPathNotFound(t *testing.T) {
	t.Parallel()

	_, err := genutils.GetModelPath("no-such-checkpoint.bin")
	require.ErrorIs(t, err, genutils.ErrModelNotFound)
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "45.2s", genutils.FormatDuration(45.2))
	assert.Equal(t, "5m 30.5s", genutils.FormatDuration(330.5))
	assert.Equal(t, "1h 15m", genutils.FormatDuration(4500))
}

func TestFormatFileSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", genutils.FormatFileSize(512))
	assert.Equal(t, "1.5 KB", genutils.FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", genutils.FormatFileSize(2*1024*1024))
	assert.Equal(t, "3.0 GB", genutils.FormatFileSize(3*1024*1024*1024))
}
