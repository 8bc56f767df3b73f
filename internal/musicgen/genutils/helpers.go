// Package genutils provides file, path, and naming utilities for the
// music-generation service.
//
// This package focuses on platform-agnostic ways to handle application paths,
// format data for display, and derive safe output filenames for generated
// audio clips.
package genutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Environment variable names used for path resolution.
const (
	envCacheDir = "CACHE_DIR"
)

// Common application directory and path constants.
const (
	appName               = "musicgen-service"
	cacheDirName          = "cache"
	modelsDirName         = "models"
	tmpDir                = "/tmp"
	dotCache              = ".cache"
	defaultDirPermissions = 0o750
)

// Clip filename derivation constants.
const (
	clipPrefix       = "musicgen"
	clipTimestampFmt = "20060102_150405"
	clipSuffixLength = 8
	maxPromptSlugLen = 30
	slugSeparator    = "_"
	wavExtension     = ".wav"
)

// Data size constants.
const (
	byteUnit = 1
	kilobyte = byteUnit * 1024
	megabyte = kilobyte * 1024
	gigabyte = megabyte * 1024
)

// Time and size formatting constants.
const (
	secondsInMinute = 60
	secondsInHour   = 3600
	formatSeconds   = "%.1fs"
	formatMinutes   = "%dm %.1fs"
	formatHours     = "%dh %dm"
	formatGB        = "%.1f GB"
	formatMB        = "%.1f MB"
	formatKB        = "%.1f KB"
	formatBytes     = "%d B"
)

// Error message and format string constants.
const (
	errModelNotFoundMsg               = "model not found"
	errFmtFailedToCreateDir           = "failed to create directory %s: %w"
	errFmtCouldNotResolveAbsolutePath = "could not resolve absolute path for %q: %w"
	errFmtErrorCheckingModelPath      = "error checking model path %q: %w"
	errFmtModelNotFound               = "%w: %s"
)

// ErrModelNotFound is returned when a model file cannot be located.
var ErrModelNotFound = errors.New(errModelNotFoundMsg)

// GetCacheDir returns the application's cache directory, respecting an
// environment variable override and falling back to a standard user-based
// cache directory. Downloaded model weights live under this directory.
func GetCacheDir() string {
	// Honor the user-defined CACHE_DIR if it's set.
	if cacheDir := os.Getenv(envCacheDir); cacheDir != "" {
		return cacheDir
	}

	// Default to a .cache directory in the user's home.
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to a temporary directory if home cannot be determined.
		return filepath.Join(tmpDir, appName, cacheDirName)
	}

	return filepath.Join(homeDir, dotCache, appName)
}

// EnsureDir ensures a directory exists at the given path, creating it if it doesn't.
func EnsureDir(path string) error {
	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		// MkdirAll is used to create parent directories as needed.
		mkdirErr := os.MkdirAll(path, defaultDirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf(
				errFmtFailedToCreateDir,
				path,
				mkdirErr,
			)
		}
	}

	return nil
}

// PromptSlug reduces a text prompt to a filesystem-safe fragment for use in
// auto-generated clip filenames. Letters, digits, dashes and underscores are
// kept, spaces become underscores, and everything else is dropped. The result
// is truncated to maxLen bytes.
func PromptSlug(prompt string, maxLen int) string {
	var builder strings.Builder

	for _, r := range prompt {
		if builder.Len() >= maxLen {
			break
		}

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(unicode.ToLower(r))
		case r == ' ':
			builder.WriteString(slugSeparator)
		case r == '-' || r == '_':
			builder.WriteRune(r)
		}
	}

	return strings.Trim(builder.String(), slugSeparator)
}

// ClipFileName derives an auto-generated output filename for a clip from the
// model size, the prompt, and a timestamp. A short random suffix keeps two
// generations within the same second from colliding.
func ClipFileName(model, prompt string, now time.Time) string {
	slug := PromptSlug(prompt, maxPromptSlugLen)
	if slug == "" {
		slug = "clip"
	}

	suffix := uuid.NewString()[:clipSuffixLength]

	return strings.Join(
		[]string{clipPrefix, model, slug, now.Format(clipTimestampFmt), suffix},
		slugSeparator,
	) + wavExtension
}

// EnsureWavExtension appends ".wav" to a user-supplied filename that lacks it.
func EnsureWavExtension(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), wavExtension) {
		return filename
	}

	return filename + wavExtension
}

// SanitizeFilename removes or replaces characters that are invalid in most filesystems.
func SanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"<", "_",
		">", "_",
		":", "_",
		"\"", "_",
		"/", "_",
		"\\", "_",
		"|", "_",
		"?", "_",
		"*", "_",
	)

	return replacer.Replace(filename)
}

// resolveSinglePath checks if a file exists at a given path.
// If it exists, it returns the absolute path and found=true.
// If it doesn't exist, it returns found=false and no error.
// If a file system error other than "not found" occurs, it returns an error.
func resolveSinglePath(path string) (resolvedPath string, found bool, err error) {
	_, statErr := os.Stat(path)
	if statErr == nil {
		absPath, errAbs := filepath.Abs(path)
		if errAbs != nil {
			return "", false, fmt.Errorf(
				errFmtCouldNotResolveAbsolutePath,
				path,
				errAbs,
			)
		}

		return absPath, true, nil
	} else if !os.IsNotExist(statErr) {
		return "", false, fmt.Errorf(errFmtErrorCheckingModelPath, path, statErr)
	}

	return "", false, nil
}

// GetModelPath resolves the absolute path to a cached model checkpoint by
// checking standard locations: the name as given, a local models directory,
// and the weights cache.
func GetModelPath(modelName string) (string, error) {
	candidatePaths := []string{
		modelName,
		filepath.Join(modelsDirName, modelName),
		filepath.Join(GetCacheDir(), modelsDirName, modelName),
	}

	for _, path := range candidatePaths {
		resolvedPath, found, err := resolveSinglePath(path)
		if err != nil {
			return "", err
		} else if found {
			return resolvedPath, nil
		}
	}

	return "", fmt.Errorf(errFmtModelNotFound, ErrModelNotFound, modelName)
}

// FormatDuration formats a duration in a human-readable string (e.g., "1h 15m",
// "5m 30.5s", "45.2s").
func FormatDuration(seconds float64) string {
	if seconds < secondsInMinute {
		return fmt.Sprintf(formatSeconds, seconds)
	}

	if seconds < secondsInHour {
		minutes := int(seconds / secondsInMinute)
		remainingSeconds := seconds - float64(minutes*secondsInMinute)

		return fmt.Sprintf(formatMinutes, minutes, remainingSeconds)
	}

	hours := int(seconds / secondsInHour)
	remainingSeconds := seconds - float64(hours*secondsInHour)
	remainingMinutes := int(remainingSeconds / secondsInMinute)

	return fmt.Sprintf(formatHours, hours, remainingMinutes)
}

// FormatFileSize formats a file size in a human-readable string (e.g., "1.2 GB",
// "500.5 MB").
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= gigabyte:
		return fmt.Sprintf(formatGB, float64(bytes)/gigabyte)
	case bytes >= megabyte:
		return fmt.Sprintf(formatMB, float64(bytes)/megabyte)
	case bytes >= kilobyte:
		return fmt.Sprintf(formatKB, float64(bytes)/kilobyte)
	default:
		return fmt.Sprintf(formatBytes, bytes)
	}
}
