package assessment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cognivoice/assess-core/core/audio"
	"github.com/cognivoice/assess-core/core/events"
	"github.com/cognivoice/assess-core/core/protocol"
	"github.com/cognivoice/assess-core/core/responses"
)

// promptPlaybackCeiling bounds how long the session waits for an evaluator
// prompt to finish playing before acknowledging it anyway.
const promptPlaybackCeiling = 30 * time.Second

// BackendSession runs a task against a remote evaluator instead of the
// local scorers: captured audio streams over the protocol connection, the
// evaluator drives phase changes and sends back per-trial results, and the
// session persists whatever verdicts arrive.
type BackendSession struct {
	capture  *CaptureEngine
	playback *PlaybackEngine
	uploader *protocol.Uploader

	responseStore responses.ResponseStore
	sessionID     string
	taskID        string

	mu        sync.Mutex
	client    *protocol.Client
	recorder  *Recorder
	streaming bool
	emit      eventEmitter

	done     chan struct{}
	doneOnce sync.Once
}

type BackendSessionOption func(*BackendSession)

func WithBackendCapture(engine *CaptureEngine) BackendSessionOption {
	return func(s *BackendSession) { s.capture = engine }
}

func WithBackendPlayback(engine *PlaybackEngine) BackendSessionOption {
	return func(s *BackendSession) { s.playback = engine }
}

func WithBackendResponseStore(store responses.ResponseStore) BackendSessionOption {
	return func(s *BackendSession) { s.responseStore = store }
}

func WithBackendSessionID(sessionID string) BackendSessionOption {
	return func(s *BackendSession) { s.sessionID = sessionID }
}

func WithBackendTaskID(taskID string) BackendSessionOption {
	return func(s *BackendSession) { s.taskID = taskID }
}

// WithBackendUploader configures multipart clip upload: each recorded
// response clip is also posted to the upload endpoint when the evaluator
// reports recording complete.
func WithBackendUploader(uploader *protocol.Uploader) BackendSessionOption {
	return func(s *BackendSession) { s.uploader = uploader }
}

func NewBackendSession(opts ...BackendSessionOption) *BackendSession {
	s := &BackendSession{
		responseStore: responses.NewMemoryStore(),
		taskID:        "attention",
		emit:          noopEventEmitter,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run connects to the evaluator at endpoint, starts the task and blocks
// until the evaluator reports completion or ctx is cancelled. The session
// ends cleanly either way: end_session is sent and the transport closed.
func (s *BackendSession) Run(ctx context.Context, endpoint string, opts ...RunOption) error {
	runOptions := RunOptions{}
	for _, opt := range opts {
		opt(&runOptions)
	}
	s.emit = newCallbackEventEmitter(runOptions)

	client := protocol.NewClient(
		protocol.WithMessageHandler(func(msg protocol.InboundMessage) { s.handleMessage(ctx, msg) }),
		protocol.WithErrorHandler(func(err error) {
			logger.ErrorContext(ctx, "protocol error", "error", err)
		}),
	)

	if err := client.Connect(ctx, endpoint); err != nil {
		return fmt.Errorf("failed to connect to evaluator: %w", err)
	}
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	defer func() {
		s.stopStreaming()
		client.SendEvent(protocol.EventEndSession)
		client.Disconnect()
	}()

	client.SendEvent(protocol.EventStartTask)

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		s.emit(events.NewTaskCancelled(s.taskID))
		return ctx.Err()
	}
}

func (s *BackendSession) handleMessage(ctx context.Context, msg protocol.InboundMessage) {
	switch typedMsg := msg.(type) {
	case protocol.TTSAudio:
		if s.playback == nil {
			return
		}
		if err := s.playback.Enqueue(audio.Buffer{Format: audio.Canonical(), Data: typedMsg.Audio}); err != nil {
			logger.ErrorContext(ctx, "failed to enqueue evaluator audio", "error", err)
		}
		if err := s.playback.Flush(); err != nil {
			logger.ErrorContext(ctx, "failed to flush evaluator audio", "error", err)
		}

		// The evaluator holds the next prompt until playback is acknowledged.
		playCtx, cancel := context.WithTimeout(ctx, promptPlaybackCeiling)
		if err := s.playback.AwaitPlayed(playCtx); err != nil {
			logger.ErrorContext(ctx, "prompt playback did not finish", "error", err)
		}
		cancel()
		s.sendAudioComplete()

	case protocol.TaskState:
		switch typedMsg.State {
		case protocol.TaskStateListening:
			s.startStreaming(ctx)
		case protocol.TaskStateComplete:
			s.finish()
		}

	case protocol.StateTransition:
		s.emit(events.NewTaskPhaseChanged("", string(typedMsg.Phase)))
		switch typedMsg.Phase {
		case protocol.PhaseRecording:
			s.startStreaming(ctx)
		case protocol.PhaseRecordingComplete:
			s.stopStreaming()
			s.uploadRecordedClip(ctx, typedMsg.TrialNumber)
			s.sendAudioComplete()
		case protocol.PhaseComplete:
			s.finish()
		}

	case protocol.EvaluationResult:
		s.saveResult(ctx, typedMsg)

	case protocol.AllResults:
		for _, result := range typedMsg {
			s.saveResult(ctx, result)
		}
		s.finish()

	case protocol.WordDisplay:
		s.emit(events.NewWordDisplayed(typedMsg.Word))

	case protocol.Debug:
		logger.DebugContext(ctx, "evaluator debug", "message", typedMsg.Message)
	}
}

// startStreaming opens the capture tap and tees audio to the evaluator
// and, when clip upload is configured, a local recorder.
func (s *BackendSession) startStreaming(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming || s.capture == nil || s.client == nil {
		return
	}

	dest := AudioDestination(s.client)
	if s.uploader != nil {
		s.recorder = NewRecorder()
		dest = teeDestination{s.client, s.recorder}
	}

	if err := s.capture.Start(dest); err != nil {
		logger.ErrorContext(ctx, "failed to start capture for evaluator", "error", err)
		return
	}
	s.streaming = true
}

func (s *BackendSession) stopStreaming() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.streaming {
		return
	}
	s.streaming = false

	if err := s.capture.Stop(); err != nil {
		logger.Error("failed to stop capture", "error", err)
	}
}

func (s *BackendSession) sendAudioComplete() {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()

	if client != nil {
		client.SendEvent(protocol.EventAudioComplete)
	}
}

func (s *BackendSession) uploadRecordedClip(ctx context.Context, trialNumber *int) {
	s.mu.Lock()
	recorder := s.recorder
	s.recorder = nil
	s.mu.Unlock()

	if s.uploader == nil || recorder == nil || trialNumber == nil {
		return
	}

	wavData, err := recorder.WAV()
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode recorded clip", "error", err)
		return
	}

	if err := s.uploader.UploadClip(ctx, s.sessionID, *trialNumber, wavData); err != nil {
		logger.ErrorContext(ctx, "failed to upload recorded clip",
			"trial_number", *trialNumber, "error", err)
	}
}

func (s *BackendSession) saveResult(ctx context.Context, result protocol.EvaluationResult) {
	score := 0.0
	if result.Score != nil {
		score = *result.Score
	} else if result.IsCorrect {
		score = 1
	}

	if _, err := s.responseStore.SaveResponse(responses.Response{
		SessionID:   s.sessionID,
		TaskID:      s.taskID,
		TrialNumber: result.TrialNumber,
		Transcript:  result.Transcript,
		Score:       score,
		IsCorrect:   result.IsCorrect,
		Detail:      result.Notes,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to save evaluator result",
			"trial_number", result.TrialNumber, "error", err)
		return
	}

	s.emit(events.NewTranscriptReceived(result.TrialNumber, result.Transcript))
	s.emit(events.NewEvaluationReceived(result.TrialNumber, result.Transcript, result.IsCorrect, score))
}

func (s *BackendSession) finish() {
	s.doneOnce.Do(func() {
		s.emit(events.NewTaskCompleted(s.taskID))
		close(s.done)
	})
}

// teeDestination forwards each captured buffer to every destination.
type teeDestination []AudioDestination

func (t teeDestination) WriteAudio(buf audio.Buffer) error {
	for _, dest := range t {
		if err := dest.WriteAudio(buf); err != nil {
			return err
		}
	}
	return nil
}

var _ AudioDestination = teeDestination{}
