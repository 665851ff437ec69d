// Package pipeline aggregates audio transcription and embedded subtitles for
// one video and persists the combined record.
//
// A run is a fixed sequence of best-effort stages: probe the media tool,
// extract a normalized WAV, transcribe it, extract and parse embedded
// subtitles, then write the JSON and plain-text artifacts. A stage failure
// leaves the matching record field empty and the run continues; only artifact
// persistence can fail the run. Runs are recorded in the history store when
// one is attached.
package pipeline
