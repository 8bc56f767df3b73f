// Package audio_test tests WAV metadata parsing and encoding.
package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thaitrn/musicgen-service/internal/musicgen/audio"
)

// silence returns interleaved zero samples for the given clip shape.
func silence(sampleRate, channels int, seconds float64) []int16 {
	return make([]int16, int(float64(sampleRate)*seconds)*channels)
}

func TestEncodeParseRoundTrip(t *testing.T) {
	t.Parallel()

	const (
		sampleRate = 32000
		channels   = 1
	)

	data := audio.EncodePCM16(sampleRate, channels, silence(sampleRate, channels, 2.0))

	meta, err := audio.ParseMetadata(data)
	require.NoError(t, err)

	assert.Equal(t, sampleRate, meta.SampleRate)
	assert.Equal(t, channels, meta.Channels)
	assert.Equal(t, 16, meta.BitsPerSample)
	assert.InEpsilon(t, 2.0, meta.Duration(), 0.01)
}

func TestParseMetadataStereo(t *testing.T) {
	t.Parallel()

	const (
		sampleRate = 44100
		channels   = 2
	)

	data := audio.EncodePCM16(sampleRate, channels, silence(sampleRate, channels, 0.5))

	meta, err := audio.ParseMetadata(data)
	require.NoError(t, err)

	assert.Equal(t, channels, meta.Channels)
	assert.InEpsilon(t, 0.5, meta.Duration(), 0.01)
}

func TestParseMetadataRejectsNonWAV(t *testing.T) {
	t.Parallel()

	_, err := audio.ParseMetadata([]byte("this is definitely not audio data"))
	require.ErrorIs(t, err, audio.ErrNotWAV)
}

func TestParseMetadataRejectsTruncated(t *testing.T) {
	t.Parallel()

	_, err := audio.ParseMetadata([]byte("RIFF"))
	require.ErrorIs(t, err, audio.ErrTruncated)
}

func TestParseMetadataRejectsMissingChunks(t *testing.T) {
	t.Parallel()

	// A RIFF/WAVE header with no chunks at all.
	header := []byte("RIFF\x04\x00\x00\x00WAVE")

	_, err := audio.ParseMetadata(header)
	require.ErrorIs(t, err, audio.ErrMissingFmtChunk)
}

func TestDurationZeroSafe(t *testing.T) {
	t.Parallel()

	var meta audio.Metadata

	assert.Zero(t, meta.Duration())
}
