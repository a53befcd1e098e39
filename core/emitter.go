package assessment

import "github.com/cognivoice/assess-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// newCallbackEventEmitter bridges typed events to the flat callbacks
// configured for a run, so callers can subscribe to just the signals they
// care about without switching on event types themselves.
func newCallbackEventEmitter(opts RunOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.TaskPhaseChanged:
			if opts.onPhaseChanged != nil {
				opts.onPhaseChanged(Phase(typedEvent.From), Phase(typedEvent.To))
			}
		case events.StimulusPresented:
			if opts.onStimulus != nil {
				opts.onStimulus(typedEvent.Text, typedEvent.Index)
			}
		case events.PromptSpoken:
			if opts.onPromptSpoken != nil {
				opts.onPromptSpoken(typedEvent.Text)
			}
		case events.WordDisplayed:
			if opts.onWordDisplayed != nil {
				opts.onWordDisplayed(typedEvent.Word)
			}
		case events.TranscriptReceived:
			if opts.onTranscript != nil {
				opts.onTranscript(typedEvent.TrialNumber, typedEvent.Transcript)
			}
		case events.EvaluationReceived:
			if opts.onEvaluation != nil {
				opts.onEvaluation(typedEvent.TrialNumber, typedEvent.Score, typedEvent.IsCorrect)
			}
		case events.TaskCompleted:
			if opts.onCompleted != nil {
				opts.onCompleted(typedEvent.TaskID)
			}
		case events.TaskCancelled:
			if opts.onCancelled != nil {
				opts.onCancelled(typedEvent.TaskID)
			}
		case events.TaskFailed:
			if opts.onFailed != nil {
				opts.onFailed(typedEvent.TaskID, typedEvent.Err)
			}
		}

		if opts.onEvent != nil {
			opts.onEvent(event)
		}
	}
}
