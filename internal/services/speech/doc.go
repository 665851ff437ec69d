// Package speech wraps an OpenAI-compatible audio transcription API.
// The client uploads a waveform as multipart form data and asks for a plain
// text response, which keeps the wire contract to a single round trip with no
// response parsing beyond a trim.
package speech
