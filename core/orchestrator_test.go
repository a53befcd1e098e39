package assessment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cognivoice/assess-core/core/events"
	"github.com/cognivoice/assess-core/core/responses"
)

func quickDigitSpanTask(digits []int) Task {
	return Task{
		ID:   "attention",
		Name: "Attention",
		Trials: []Trial{{
			Number:               1,
			Kind:                 TrialDigitSpanForward,
			Digits:               digits,
			PresentationInterval: time.Millisecond,
			ResponseWindow:       10 * time.Millisecond,
		}},
	}
}

func TestOrchestratorRunsDigitSpanTaskToCompletion(t *testing.T) {
	store := responses.NewMemoryStore()
	source := &fakeCaptureSource{emitOnStart: make([]byte, 640)}

	orchestrator := NewOrchestrator(
		WithCaptureEngine(NewCaptureEngine(source)),
		WithTranscriptionSource(newMemoTranscriptionSource(0, "two one eight five four")),
		WithResponseStore(store),
		WithSessionID("session-1"),
		WithTranscriptPolling(time.Millisecond, 10),
	)

	var phasesMu sync.Mutex
	var phases []Phase
	var completed string

	err := orchestrator.Run(context.Background(), quickDigitSpanTask([]int{2, 1, 8, 5, 4}),
		WithPhaseChangedCallback(func(_, to Phase) {
			phasesMu.Lock()
			phases = append(phases, to)
			phasesMu.Unlock()
		}),
		WithCompletedCallback(func(taskID string) { completed = taskID }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed != "attention" {
		t.Fatalf("expected completion callback for attention, got %q", completed)
	}

	want := []Phase{PhaseAnnouncing, PhasePresenting, PhaseRecording, PhaseEvaluating, PhaseCompleted}
	if len(phases) != len(want) {
		t.Fatalf("expected phases %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("expected phases %v, got %v", want, phases)
		}
	}

	saved := store.Responses("session-1")
	if len(saved) != 1 {
		t.Fatalf("expected one saved response, got %d", len(saved))
	}
	if saved[0].Score != 1 || !saved[0].IsCorrect {
		t.Fatalf("expected a correct response, got %+v", saved[0])
	}
	if saved[0].Transcript != "two one eight five four" {
		t.Fatalf("unexpected transcript %q", saved[0].Transcript)
	}
}

func TestOrchestratorCancelMidPresentation(t *testing.T) {
	orchestrator := NewOrchestrator(WithSessionID("session-1"))

	task := quickDigitSpanTask([]int{1, 2, 3, 4, 5})
	task.Trials[0].PresentationInterval = 50 * time.Millisecond

	var cancelled string
	err := orchestrator.Run(context.Background(), task,
		WithStimulusCallback(func(string, int) { orchestrator.Cancel() }),
		WithCancelledCallback(func(taskID string) { cancelled = taskID }),
	)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if cancelled != "attention" {
		t.Fatalf("expected cancellation callback for attention, got %q", cancelled)
	}
}

func TestOrchestratorRejectsConcurrentRuns(t *testing.T) {
	orchestrator := NewOrchestrator()

	task := quickDigitSpanTask([]int{1, 2, 3})
	task.Trials[0].PresentationInterval = time.Second

	presenting := make(chan struct{})
	var once sync.Once
	done := make(chan error, 1)
	go func() {
		done <- orchestrator.Run(context.Background(), task,
			WithStimulusCallback(func(string, int) {
				once.Do(func() { close(presenting) })
			}),
		)
	}()

	<-presenting
	if err := orchestrator.Run(context.Background(), task); !errors.Is(err, ErrTaskActive) {
		t.Fatalf("expected ErrTaskActive, got %v", err)
	}

	orchestrator.Cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected first run to report cancellation, got %v", err)
	}
}

func TestOrchestratorTranscriptTimeoutScoresZero(t *testing.T) {
	store := responses.NewMemoryStore()

	orchestrator := NewOrchestrator(
		WithCaptureEngine(NewCaptureEngine(&fakeCaptureSource{emitOnStart: make([]byte, 640)})),
		WithTranscriptionSource(newMemoTranscriptionSource(1000)),
		WithResponseStore(store),
		WithSessionID("session-1"),
		WithTranscriptPolling(time.Millisecond, 2),
	)

	var timedOutTrial int
	err := orchestrator.Run(context.Background(), quickDigitSpanTask([]int{2, 1, 8}),
		WithEventCallback(func(event events.Event) {
			if timeout, ok := event.(events.EvaluationTimedOut); ok {
				timedOutTrial = timeout.TrialNumber
			}
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if timedOutTrial != 1 {
		t.Fatalf("expected timeout event for trial 1, got %d", timedOutTrial)
	}

	saved := store.Responses("session-1")
	if len(saved) != 1 {
		t.Fatalf("expected one saved response, got %d", len(saved))
	}
	if saved[0].Score != 0 || saved[0].IsCorrect {
		t.Fatalf("expected a zero score, got %+v", saved[0])
	}
	if saved[0].Detail != "no transcript" {
		t.Fatalf("unexpected detail %q", saved[0].Detail)
	}
}

func TestOrchestratorSilentResponseScoresZero(t *testing.T) {
	store := responses.NewMemoryStore()

	// No capture engine at all, so the recorder stays empty and the trial
	// is scored as an absent response without touching transcription.
	orchestrator := NewOrchestrator(
		WithResponseStore(store),
		WithSessionID("session-1"),
	)

	if err := orchestrator.Run(context.Background(), quickDigitSpanTask([]int{2, 1, 8})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := store.Responses("session-1")
	if len(saved) != 1 {
		t.Fatalf("expected one saved response, got %d", len(saved))
	}
	if saved[0].Detail != "no response" || saved[0].Score != 0 {
		t.Fatalf("expected an absent response, got %+v", saved[0])
	}
}

func TestOrchestratorScoresLetterTapping(t *testing.T) {
	store := responses.NewMemoryStore()

	orchestrator := NewOrchestrator(
		WithResponseStore(store),
		WithSessionID("session-1"),
		WithTapGrace(5*time.Millisecond),
	)

	task := Task{
		ID: "attention",
		Trials: []Trial{{
			Number:               1,
			Kind:                 TrialLetterTapping,
			Letters:              []string{"A", "B", "A"},
			TargetLetter:         "A",
			PresentationInterval: 30 * time.Millisecond,
		}},
	}

	err := orchestrator.Run(context.Background(), task,
		WithStimulusCallback(func(text string, _ int) {
			if text == "A" {
				orchestrator.Tap()
			}
		}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := store.Responses("session-1")
	if len(saved) != 1 {
		t.Fatalf("expected one saved response, got %d", len(saved))
	}
	if saved[0].Score != 1 || !saved[0].IsCorrect {
		t.Fatalf("expected a perfect tapping score, got %+v", saved[0])
	}
	if !strings.HasPrefix(saved[0].Detail, "errors=0") {
		t.Fatalf("unexpected detail %q", saved[0].Detail)
	}
}

func TestOrchestratorSpeaksInstructionsAndStimuli(t *testing.T) {
	sink := &fakePlaybackSink{}
	playback := NewPlaybackEngine(sink)
	speaker := NewPromptSpeaker(&fakeSynthesizer{chunk: make([]byte, 320)}, playback)

	store := responses.NewMemoryStore()
	orchestrator := NewOrchestrator(
		WithPromptSpeaker(speaker),
		WithPlaybackEngine(playback),
		WithResponseStore(store),
		WithSessionID("session-1"),
	)

	task := quickDigitSpanTask([]int{4, 2})
	task.Trials[0].Instruction = "Repeat these numbers."

	var spoken []string
	err := orchestrator.Run(context.Background(), task,
		WithPromptSpokenCallback(func(text string) { spoken = append(spoken, text) }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Instruction plus each digit goes through the speaker.
	if len(spoken) != 3 {
		t.Fatalf("expected 3 spoken prompts, got %v", spoken)
	}
	if spoken[0] != "Repeat these numbers." {
		t.Fatalf("expected instruction spoken first, got %q", spoken[0])
	}
	if sink.playCount() != 3 {
		t.Fatalf("expected 3 playbacks, got %d", sink.playCount())
	}
}
