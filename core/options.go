package assessment

import (
	"time"

	"github.com/cognivoice/assess-core/core/events"
	"github.com/cognivoice/assess-core/core/responses"
)

type OrchestratorOption func(*Orchestrator)

func WithCaptureEngine(engine *CaptureEngine) OrchestratorOption {
	return func(o *Orchestrator) { o.capture = engine }
}

func WithPlaybackEngine(engine *PlaybackEngine) OrchestratorOption {
	return func(o *Orchestrator) { o.playback = engine }
}

func WithPromptSpeaker(speaker *PromptSpeaker) OrchestratorOption {
	return func(o *Orchestrator) { o.speaker = speaker }
}

func WithTranscriptionSource(source TranscriptionSource) OrchestratorOption {
	return func(o *Orchestrator) { o.transcripts = source }
}

// WithLiveTranscription streams each recording window into live as it is
// captured; live then also serves as the run's transcription source, so
// transcripts are usually resolved by the time evaluation polls.
func WithLiveTranscription(live *LiveTranscriber) OrchestratorOption {
	return func(o *Orchestrator) {
		o.live = live
		o.transcripts = live
	}
}

func WithResponseStore(store responses.ResponseStore) OrchestratorOption {
	return func(o *Orchestrator) { o.responseStore = store }
}

func WithClipStore(store responses.ClipStore) OrchestratorOption {
	return func(o *Orchestrator) { o.clipStore = store }
}

func WithSessionID(sessionID string) OrchestratorOption {
	return func(o *Orchestrator) { o.sessionID = sessionID }
}

// WithTranscriptPolling tunes how often and how many times a trial polls
// for its transcript before giving up.
func WithTranscriptPolling(interval time.Duration, maxAttempts int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.pollInterval = interval
		o.maxPollAttempts = maxAttempts
	}
}

// WithTapGrace sets how long after a letter's presentation window a tap
// still counts for that letter.
func WithTapGrace(grace time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.tapGrace = grace }
}

type RunOptions struct {
	onPhaseChanged  func(from, to Phase)
	onStimulus      func(text string, index int)
	onPromptSpoken  func(text string)
	onWordDisplayed func(word string)
	onTranscript    func(trialNumber int, transcript string)
	onEvaluation    func(trialNumber int, score float64, isCorrect bool)
	onCompleted     func(taskID string)
	onCancelled     func(taskID string)
	onFailed        func(taskID string, err error)
	onEvent         func(events.Event)
}

type RunOption func(*RunOptions)

func WithPhaseChangedCallback(callback func(from, to Phase)) RunOption {
	return func(o *RunOptions) { o.onPhaseChanged = callback }
}

func WithStimulusCallback(callback func(text string, index int)) RunOption {
	return func(o *RunOptions) { o.onStimulus = callback }
}

func WithPromptSpokenCallback(callback func(text string)) RunOption {
	return func(o *RunOptions) { o.onPromptSpoken = callback }
}

func WithWordDisplayedCallback(callback func(word string)) RunOption {
	return func(o *RunOptions) { o.onWordDisplayed = callback }
}

func WithTranscriptCallback(callback func(trialNumber int, transcript string)) RunOption {
	return func(o *RunOptions) { o.onTranscript = callback }
}

func WithEvaluationCallback(callback func(trialNumber int, score float64, isCorrect bool)) RunOption {
	return func(o *RunOptions) { o.onEvaluation = callback }
}

func WithCompletedCallback(callback func(taskID string)) RunOption {
	return func(o *RunOptions) { o.onCompleted = callback }
}

func WithCancelledCallback(callback func(taskID string)) RunOption {
	return func(o *RunOptions) { o.onCancelled = callback }
}

func WithFailedCallback(callback func(taskID string, err error)) RunOption {
	return func(o *RunOptions) { o.onFailed = callback }
}

// WithEventCallback registers a callback receiving every typed event the
// run emits, in addition to any flat callbacks.
func WithEventCallback(callback func(events.Event)) RunOption {
	return func(o *RunOptions) { o.onEvent = callback }
}
