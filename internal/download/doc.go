// Package download retrieves videos from remote platforms by orchestrating
// the yt-dlp CLI: availability probing, metadata queries, and single-video
// downloads with streamed progress.
package download
