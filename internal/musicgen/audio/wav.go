// Package audio provides WAV metadata parsing and encoding helpers for
// generated music clips.
package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// RIFF chunk identifiers.
const (
	riffChunkID = "RIFF"
	waveFormat  = "WAVE"
	fmtChunkID  = "fmt "
	dataChunkID = "data"
)

// Header layout sizes in bytes.
const (
	riffHeaderSize  = 12
	chunkHeaderSize = 8
	fmtChunkMinSize = 16
	bitsPerByte     = 8
)

// PCM format code in the fmt chunk.
const formatPCM = 1

var (
	// ErrNotWAV indicates data that does not start with a RIFF/WAVE header.
	ErrNotWAV = errors.New("data is not a RIFF WAVE stream")
	// ErrTruncated indicates a WAV stream cut short mid-chunk.
	ErrTruncated = errors.New("wav data truncated")
	// ErrMissingFmtChunk indicates a WAV stream without a fmt chunk.
	ErrMissingFmtChunk = errors.New("wav data has no fmt chunk")
	// ErrMissingDataChunk indicates a WAV stream without a data chunk.
	ErrMissingDataChunk = errors.New("wav data has no data chunk")
)

// Metadata describes a decoded WAV header.
type Metadata struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	DataBytes     int
}

// Duration returns the clip length in seconds derived from the data chunk
// size and the sample format.
func (m Metadata) Duration() float64 {
	bytesPerSecond := m.SampleRate * m.Channels * m.BitsPerSample / bitsPerByte
	if bytesPerSecond == 0 {
		return 0
	}

	return float64(m.DataBytes) / float64(bytesPerSecond)
}

// ParseMetadata reads the RIFF header and chunk list of a WAV stream and
// returns its audio format metadata. Only the header is inspected; sample
// data is never decoded.
func ParseMetadata(data []byte) (Metadata, error) {
	var meta Metadata

	if len(data) < riffHeaderSize {
		return meta, fmt.Errorf("%w: %d bytes", ErrTruncated, len(data))
	}

	if string(data[0:4]) != riffChunkID || string(data[8:12]) != waveFormat {
		return meta, ErrNotWAV
	}

	sawFmt := false
	sawData := false
	offset := riffHeaderSize

	for offset+chunkHeaderSize <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += chunkHeaderSize

		switch chunkID {
		case fmtChunkID:
			fmtErr := parseFmtChunk(data[offset:], chunkSize, &meta)
			if fmtErr != nil {
				return meta, fmtErr
			}

			sawFmt = true
		case dataChunkID:
			meta.DataBytes = chunkSize
			sawData = true
		}

		// Chunks are word-aligned.
		offset += chunkSize + chunkSize%2
	}

	if !sawFmt {
		return meta, ErrMissingFmtChunk
	}

	if !sawData {
		return meta, ErrMissingDataChunk
	}

	return meta, nil
}

func parseFmtChunk(chunk []byte, size int, meta *Metadata) error {
	if size < fmtChunkMinSize || len(chunk) < fmtChunkMinSize {
		return fmt.Errorf("%w: fmt chunk of %d bytes", ErrTruncated, size)
	}

	meta.Channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
	meta.SampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
	meta.BitsPerSample = int(binary.LittleEndian.Uint16(chunk[14:16]))

	return nil
}

// EncodePCM16 wraps 16-bit little-endian PCM samples in a minimal WAV
// container. The interleaved sample count must be a multiple of the channel
// count.
func EncodePCM16(sampleRate, channels int, samples []int16) []byte {
	dataBytes := len(samples) * 2
	blockAlign := channels * 2
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer

	buf.WriteString(riffChunkID)
	writeUint32(&buf, uint32(4+chunkHeaderSize+fmtChunkMinSize+chunkHeaderSize+dataBytes))
	buf.WriteString(waveFormat)

	buf.WriteString(fmtChunkID)
	writeUint32(&buf, fmtChunkMinSize)
	writeUint16(&buf, formatPCM)
	writeUint16(&buf, uint16(channels))
	writeUint32(&buf, uint32(sampleRate))
	writeUint32(&buf, uint32(byteRate))
	writeUint16(&buf, uint16(blockAlign))
	writeUint16(&buf, 16)

	buf.WriteString(dataChunkID)
	writeUint32(&buf, uint32(dataBytes))

	for _, sample := range samples {
		writeUint16(&buf, uint16(sample))
	}

	return buf.Bytes()
}

func writeUint32(buf *bytes.Buffer, value uint32) {
	var scratch [4]byte

	binary.LittleEndian.PutUint32(scratch[:], value)
	buf.Write(scratch[:])
}

func writeUint16(buf *bytes.Buffer, value uint16) {
	var scratch [2]byte

	binary.LittleEndian.PutUint16(scratch[:], value)
	buf.Write(scratch[:])
}
