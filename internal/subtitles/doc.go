// Package subtitles extracts embedded subtitle streams from video containers.
// Not every container advertises a default subtitle track, so extraction runs
// an ordered strategy chain: copy the default stream, then fall back to
// probing the stream list and copying each subtitle stream by absolute index.
package subtitles
