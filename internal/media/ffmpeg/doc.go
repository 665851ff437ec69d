// Package ffmpeg wraps the ffmpeg and ffprobe binaries behind the narrow set
// of operations the extraction pipeline needs: version probing, audio track
// extraction, subtitle stream copying, stream listing, and audio
// segmentation. Every operation shells out with a context so configured
// timeouts apply; a command runner seam lets tests substitute fakes.
package ffmpeg
