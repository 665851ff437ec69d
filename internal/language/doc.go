// Package language normalizes user-supplied language hints into the ISO 639
// codes the transcription backends expect.
package language
