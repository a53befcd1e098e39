// Package assessment orchestrates spoken cognitive tasks: it speaks
// prompts, presents stimuli, records and scores subject responses, and
// reports progress through typed events.
package assessment

import (
	"fmt"
	"sync"

	"github.com/cognivoice/assess-core/core/events"
)

// Phase is one stage of the task lifecycle. A task moves strictly forward
// through its phases; Cancelled is reachable from every live phase.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAnnouncing Phase = "announcing"
	PhasePresenting Phase = "presenting"
	PhaseRecording  Phase = "recording"
	PhaseEvaluating Phase = "evaluating"
	PhaseCompleted  Phase = "completed"
	PhaseCancelled  Phase = "cancelled"
)

var allowedTransitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseAnnouncing, PhaseCancelled},
	PhaseAnnouncing: {PhasePresenting, PhaseCancelled},
	// Presenting may loop back to announcing for the next trial, and tasks
	// without a recorded response skip straight to evaluating.
	PhasePresenting: {PhaseRecording, PhaseEvaluating, PhaseAnnouncing, PhaseCancelled},
	PhaseRecording:  {PhaseEvaluating, PhaseCancelled},
	PhaseEvaluating: {PhaseAnnouncing, PhaseCompleted, PhaseCancelled},
	PhaseCompleted:  {},
	PhaseCancelled:  {},
}

// phaseTracker guards the current phase and publishes transitions. Terminal
// phases are sticky: once Completed or Cancelled is reached no further
// transition is accepted.
type phaseTracker struct {
	mu      sync.Mutex
	current Phase
	emit    eventEmitter
}

func newPhaseTracker(emit eventEmitter) *phaseTracker {
	if emit == nil {
		emit = noopEventEmitter
	}
	return &phaseTracker{current: PhaseIdle, emit: emit}
}

func (t *phaseTracker) Current() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *phaseTracker) transition(to Phase) error {
	t.mu.Lock()
	from := t.current
	allowed := false
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			allowed = true
			break
		}
	}
	if !allowed {
		t.mu.Unlock()
		return fmt.Errorf("invalid phase transition from %s to %s", from, to)
	}
	t.current = to
	t.mu.Unlock()

	t.emit(events.NewTaskPhaseChanged(string(from), string(to)))
	return nil
}

func (t *phaseTracker) isTerminal() bool {
	current := t.Current()
	return current == PhaseCompleted || current == PhaseCancelled
}
