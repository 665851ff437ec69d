// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no vidtext-specific dependencies and could be extracted
// as a standalone library.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//
// Primary entry point:
//   - Inspect: executes ffprobe and returns a parsed Result
//
// Helper methods on Result answer the questions the pipeline asks: which
// subtitle streams exist, whether an audio track is present, and how long
// the container runs.
package ffprobe
