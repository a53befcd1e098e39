package events

import (
	"errors"
	"testing"
	"time"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "task phase changed", event: NewTaskPhaseChanged("idle", "announcing"), expected: KindTaskPhaseChanged},
		{name: "task completed", event: NewTaskCompleted("attention"), expected: KindTaskCompleted},
		{name: "task cancelled", event: NewTaskCancelled("attention"), expected: KindTaskCancelled},
		{name: "task failed", event: NewTaskFailed("attention", errors.New("boom")), expected: KindTaskFailed},
		{name: "stimulus presented", event: NewStimulusPresented("7", 0), expected: KindStimulusPresented},
		{name: "prompt spoken", event: NewPromptSpoken("repeat after me"), expected: KindPromptSpoken},
		{name: "word displayed", event: NewWordDisplayed("FACE"), expected: KindWordDisplayed},
		{name: "tap detected", event: NewTapDetected(time.Now()), expected: KindTapDetected},
		{name: "transcript received", event: NewTranscriptReceived(1, "seven four two"), expected: KindTranscriptReceived},
		{name: "clip recorded", event: NewClipRecorded(1, time.Second), expected: KindClipRecorded},
		{name: "evaluation received", event: NewEvaluationReceived(1, "seven four two", true, 1), expected: KindEvaluationReceived},
		{name: "evaluation timed out", event: NewEvaluationTimedOut(2), expected: KindEvaluationTimedOut},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestTimestampsAreSetOnConstruction(t *testing.T) {
	before := time.Now()
	event := NewTaskPhaseChanged("presenting", "recording")
	after := time.Now()

	if event.Timestamp().Before(before) || event.Timestamp().After(after) {
		t.Fatalf("expected timestamp within construction bounds, got %v", event.Timestamp())
	}
}
