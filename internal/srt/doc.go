// Package srt parses SubRip subtitle files into ordered cue entries.
// Parsing is tolerant: real-world SRT files extracted from video containers
// routinely contain malformed blocks, and a bad cue drops only that entry,
// never the rest of the file.
package srt
