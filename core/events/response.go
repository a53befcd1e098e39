package events

import "time"

const (
	// KindTapDetected identifies a subject tap during letter presentation.
	KindTapDetected Kind = "response.tap_detected"
	// KindTranscriptReceived identifies an available clip transcript.
	KindTranscriptReceived Kind = "response.transcript_received"
	// KindClipRecorded identifies a persisted response clip.
	KindClipRecorded Kind = "response.clip_recorded"
)

// TapDetected carries the timestamp of a subject tap. The tap time is the
// moment the tap was registered, not the event emission time.
type TapDetected struct {
	Base
	At time.Time
}

// NewTapDetected creates a tap detected event.
func NewTapDetected(at time.Time) TapDetected {
	return TapDetected{Base: NewBase(KindTapDetected), At: at}
}

// TranscriptReceived carries the transcript resolved for a recorded clip.
type TranscriptReceived struct {
	Base
	TrialNumber int
	Transcript  string
}

// NewTranscriptReceived creates a transcript received event.
func NewTranscriptReceived(trialNumber int, transcript string) TranscriptReceived {
	return TranscriptReceived{Base: NewBase(KindTranscriptReceived), TrialNumber: trialNumber, Transcript: transcript}
}

// ClipRecorded marks that a response clip finished recording.
type ClipRecorded struct {
	Base
	TrialNumber int
	Duration    time.Duration
}

// NewClipRecorded creates a clip recorded event.
func NewClipRecorded(trialNumber int, duration time.Duration) ClipRecorded {
	return ClipRecorded{Base: NewBase(KindClipRecorded), TrialNumber: trialNumber, Duration: duration}
}
