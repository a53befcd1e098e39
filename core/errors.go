package assessment

import "errors"

var (
	// ErrPermissionDenied reports that the capture device could not be
	// opened, most often because microphone access was refused.
	ErrPermissionDenied = errors.New("audio capture permission denied")

	// ErrPlaybackFormatMismatch reports that queued audio cannot be
	// converted to the output device format.
	ErrPlaybackFormatMismatch = errors.New("playback format mismatch")

	// ErrEvaluationTimeout reports that no transcript or evaluation arrived
	// within the transcription ceiling.
	ErrEvaluationTimeout = errors.New("evaluation timed out")

	// ErrTaskActive reports that a task run was requested while another
	// one is still in progress.
	ErrTaskActive = errors.New("task already active")
)
