package pipeline

// State identifies one step outcome in an extraction run. A run walks the
// states in order; failed best-effort steps land in their *_failed/none
// variant and the run continues to the next step.
type State string

const (
	StateInit               State = "init"
	StateAudioExtracted     State = "audio_extracted"
	StateAudioFailed        State = "audio_failed"
	StateTranscribed        State = "transcribed"
	StateTranscribeFailed   State = "transcribe_failed"
	StateSubtitlesExtracted State = "subtitles_extracted"
	StateSubtitlesNone      State = "subtitles_none"
	StatePersisted          State = "persisted"
)
