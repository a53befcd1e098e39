package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/cognivoice/assess-core/core/events"
	"github.com/cognivoice/assess-core/core/responses"
	"github.com/cognivoice/assess-core/core/scoring"
)

// Orchestrator drives one task at a time through its lifecycle phases:
// announce the trial, present its stimuli, record the spoken response,
// evaluate it, then move on or finish. Cancellation is cooperative; the
// current step observes it at the next phase boundary.
type Orchestrator struct {
	capture  *CaptureEngine
	playback *PlaybackEngine
	speaker  *PromptSpeaker

	responseStore responses.ResponseStore
	clipStore     responses.ClipStore
	transcripts   TranscriptionSource
	live          *LiveTranscriber

	sessionID       string
	pollInterval    time.Duration
	maxPollAttempts int
	tapGrace        time.Duration

	mu        sync.Mutex
	running   bool
	cancelRun context.CancelFunc
	emit      eventEmitter

	tapsMu sync.Mutex
	taps   []time.Time
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		responseStore: responses.NewMemoryStore(),
		tapGrace:      500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.clipStore == nil {
		if memory, ok := o.responseStore.(*responses.MemoryStore); ok {
			o.clipStore = memory
		} else {
			o.clipStore = responses.NewMemoryStore()
		}
	}

	return o
}

// Tap records a subject tap. Taps arrive from whatever input surface hosts
// the assessment; attribution to letters happens at scoring time.
func (o *Orchestrator) Tap() {
	at := time.Now()

	o.tapsMu.Lock()
	o.taps = append(o.taps, at)
	o.tapsMu.Unlock()

	o.mu.Lock()
	emit := o.emit
	o.mu.Unlock()
	if emit != nil {
		emit(events.NewTapDetected(at))
	}
}

// Cancel requests cooperative cancellation of the active run. It returns
// immediately; the run transitions to Cancelled at its next checkpoint.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	cancel := o.cancelRun
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Run executes the task from start to finish and blocks until it
// completes, fails or is cancelled. Only one run may be active at a time.
func (o *Orchestrator) Run(ctx context.Context, task Task, opts ...RunOption) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return ErrTaskActive
	}
	o.running = true
	ctx, cancel := context.WithCancel(ctx)
	o.cancelRun = cancel
	o.mu.Unlock()

	defer func() {
		cancel()
		o.mu.Lock()
		o.running = false
		o.cancelRun = nil
		o.emit = nil
		o.mu.Unlock()
	}()

	runOptions := RunOptions{}
	for _, opt := range opts {
		opt(&runOptions)
	}
	emit := newCallbackEventEmitter(runOptions)
	phase := newPhaseTracker(emit)
	o.mu.Lock()
	o.emit = emit
	o.mu.Unlock()

	ctx, span := tracer.Start(ctx, "run task")
	defer span.End()

	err := o.runTrials(ctx, task, phase, emit)
	switch {
	case err == nil:
		emit(events.NewTaskCompleted(task.ID))
		return nil
	case errors.Is(err, context.Canceled):
		if transitionErr := phase.transition(PhaseCancelled); transitionErr != nil {
			logger.ErrorContext(ctx, "failed to mark task cancelled", "error", transitionErr)
		}
		emit(events.NewTaskCancelled(task.ID))
		return err
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !phase.isTerminal() {
			if transitionErr := phase.transition(PhaseCancelled); transitionErr != nil {
				logger.ErrorContext(ctx, "failed to mark task cancelled", "error", transitionErr)
			}
		}
		emit(events.NewTaskFailed(task.ID, err))
		return err
	}
}

func (o *Orchestrator) runTrials(ctx context.Context, task Task, phase *phaseTracker, emit eventEmitter) error {
	for _, trial := range task.Trials {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := phase.transition(PhaseAnnouncing); err != nil {
			return err
		}
		if err := o.speak(ctx, trial.Instruction, emit); err != nil {
			return err
		}

		if err := phase.transition(PhasePresenting); err != nil {
			return err
		}
		windows, err := o.present(ctx, trial, emit)
		if err != nil {
			return err
		}

		if trial.RecordsResponse() {
			if err := phase.transition(PhaseRecording); err != nil {
				return err
			}
			clip, err := o.record(ctx, trial, emit)
			if err != nil {
				return err
			}

			if err := phase.transition(PhaseEvaluating); err != nil {
				return err
			}
			if err := o.evaluate(ctx, task, trial, clip, emit); err != nil {
				return err
			}
		} else {
			if err := phase.transition(PhaseEvaluating); err != nil {
				return err
			}
			o.evaluateTaps(trial, task, windows, emit)
		}
	}

	return phase.transition(PhaseCompleted)
}

func (o *Orchestrator) speak(ctx context.Context, text string, emit eventEmitter) error {
	if o.speaker == nil || text == "" {
		return ctx.Err()
	}

	if err := o.speaker.Speak(ctx, text); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("failed to speak prompt: %w", err)
	}
	emit(events.NewPromptSpoken(text))
	return nil
}

// present reads the trial's stimuli one by one. For letter tapping it also
// returns the per-letter tap windows built while presenting.
func (o *Orchestrator) present(ctx context.Context, trial Trial, emit eventEmitter) ([]scoring.Window, error) {
	var windows []scoring.Window
	if trial.Kind == TrialLetterTapping {
		o.tapsMu.Lock()
		o.taps = nil
		o.tapsMu.Unlock()
	}

	for i, item := range trial.Stimuli() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		if err := o.speak(ctx, item, emit); err != nil {
			return nil, err
		}
		emit(events.NewStimulusPresented(item, i))

		if trial.Kind == TrialLetterTapping {
			windows = append(windows, scoring.Window{
				Start: start,
				End:   start.Add(trial.PresentationInterval + o.tapGrace),
			})
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(trial.PresentationInterval):
		}
	}

	return windows, nil
}

func (o *Orchestrator) record(ctx context.Context, trial Trial, emit eventEmitter) (responses.Clip, error) {
	recorder := NewRecorder()
	dest := AudioDestination(recorder)

	var session *liveSession
	if o.live != nil {
		liveSess, err := o.live.beginSession(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "failed to start live transcription", "error", err)
		} else {
			session = liveSess
			dest = teeDestination{recorder, session}
		}
	}
	closeSession := func() {
		if session == nil {
			return
		}
		if err := session.stop(); err != nil {
			logger.ErrorContext(ctx, "failed to close live transcription stream", "error", err)
		}
	}

	if o.capture != nil {
		if err := o.capture.Start(dest); err != nil {
			closeSession()
			return responses.Clip{}, err
		}
	}

	select {
	case <-ctx.Done():
		if o.capture != nil {
			_ = o.capture.Stop()
		}
		closeSession()
		return responses.Clip{}, ctx.Err()
	case <-time.After(trial.ResponseWindow):
	}

	if o.capture != nil {
		if err := o.capture.Stop(); err != nil {
			closeSession()
			return responses.Clip{}, err
		}
	}
	closeSession()

	// Nothing captured means nothing to transcribe; the trial is scored as
	// an absent response instead of failing the task.
	if recorder.Snapshot().Frames() == 0 {
		return responses.Clip{}, nil
	}

	wavData, err := recorder.WAV()
	if err != nil {
		return responses.Clip{}, fmt.Errorf("failed to encode response clip: %w", err)
	}

	clip, err := o.clipStore.SaveClip(responses.Clip{
		SessionID:   o.sessionID,
		TrialNumber: trial.Number,
		Audio:       wavData,
		Duration:    recorder.Duration(),
	})
	if err != nil {
		return responses.Clip{}, err
	}

	if session != nil {
		o.live.bind(clip.ID, session)
	}

	emit(events.NewClipRecorded(trial.Number, clip.Duration))
	return clip, nil
}

func (o *Orchestrator) evaluate(ctx context.Context, task Task, trial Trial, clip responses.Clip, emit eventEmitter) error {
	if clip.ID == "" {
		return o.saveResponse(task, trial, "", 0, false, "no response", emit)
	}

	if o.transcripts == nil {
		return fmt.Errorf("no transcription source configured")
	}

	transcript, err := awaitTranscript(ctx, o.transcripts, clip.ID, o.pollInterval, o.maxPollAttempts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			return context.Canceled
		}
		if errors.Is(err, ErrEvaluationTimeout) {
			emit(events.NewEvaluationTimedOut(trial.Number))
			return o.saveResponse(task, trial, "", 0, false, "no transcript", emit)
		}
		return err
	}
	emit(events.NewTranscriptReceived(trial.Number, transcript))

	score, isCorrect, detail, err := scoreTrial(trial, transcript)
	if err != nil && !errors.Is(err, scoring.ErrNoResponse) {
		return fmt.Errorf("failed to score trial %d: %w", trial.Number, err)
	}
	if errors.Is(err, scoring.ErrNoResponse) {
		detail = "no response"
	}

	return o.saveResponse(task, trial, transcript, score, isCorrect, detail, emit)
}

func (o *Orchestrator) evaluateTaps(trial Trial, task Task, windows []scoring.Window, emit eventEmitter) {
	o.tapsMu.Lock()
	taps := make([]time.Time, len(o.taps))
	copy(taps, o.taps)
	o.tapsMu.Unlock()

	errorCount, score := scoring.ScoreLetterTapping(trial.Letters, trial.TargetLetter, windows, taps, o.tapGrace)
	detail := fmt.Sprintf("errors=%d taps=%d", errorCount, len(taps))

	if err := o.saveResponse(task, trial, "", score, errorCount == 0, detail, emit); err != nil {
		logger.Error("failed to save tap response", "error", err)
	}
}

func (o *Orchestrator) saveResponse(task Task, trial Trial, transcript string, score float64, isCorrect bool, detail string, emit eventEmitter) error {
	if _, err := o.responseStore.SaveResponse(responses.Response{
		SessionID:   o.sessionID,
		TaskID:      task.ID,
		TrialNumber: trial.Number,
		Transcript:  transcript,
		Score:       score,
		IsCorrect:   isCorrect,
		Detail:      detail,
	}); err != nil {
		return fmt.Errorf("failed to save response for trial %d: %w", trial.Number, err)
	}

	emit(events.NewEvaluationReceived(trial.Number, transcript, isCorrect, score))
	return nil
}
