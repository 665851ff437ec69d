// Package whisper invokes the local whisper CLI for speech-to-text.
//
// The engine writes one JSON file per input next to any other requested
// formats; this package requests JSON only and reads the recognized text
// back from it. An engine run that completes but hears nothing is reported
// as ErrNoSpeech so callers can tell unintelligible audio apart from a
// broken installation.
package whisper
