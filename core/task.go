package assessment

import (
	"strconv"
	"time"
)

type TrialKind string

const (
	TrialDigitSpanForward  TrialKind = "digit_span_forward"
	TrialDigitSpanBackward TrialKind = "digit_span_backward"
	TrialLetterTapping     TrialKind = "letter_tapping"
	TrialSerialSubtraction TrialKind = "serial_subtraction"
	TrialWordPairRecall    TrialKind = "word_pair_recall"
)

// Trial is one stimulus-response exchange within a task. Which stimulus
// fields are populated depends on Kind.
type Trial struct {
	Number      int
	Kind        TrialKind
	Instruction string

	Digits       []int
	Letters      []string
	TargetLetter string
	Expected     []int
	Pairs        [][2]string

	// PresentationInterval is the pause between presented stimulus items.
	PresentationInterval time.Duration
	// ResponseWindow is how long the subject's spoken response is recorded.
	ResponseWindow time.Duration
}

// Stimuli returns the items presented one at a time for this trial.
// Instruction-only trials present nothing.
func (t Trial) Stimuli() []string {
	switch t.Kind {
	case TrialDigitSpanForward, TrialDigitSpanBackward:
		items := make([]string, 0, len(t.Digits))
		for _, digit := range t.Digits {
			items = append(items, strconv.Itoa(digit))
		}
		return items
	case TrialLetterTapping:
		return t.Letters
	case TrialWordPairRecall:
		items := make([]string, 0, len(t.Pairs))
		for _, pair := range t.Pairs {
			items = append(items, pair[0]+", "+pair[1])
		}
		return items
	}
	return nil
}

// RecordsResponse reports whether the trial ends with a spoken response
// that has to be recorded. Letter tapping responds with taps instead.
func (t Trial) RecordsResponse() bool {
	return t.Kind != TrialLetterTapping
}

type Task struct {
	ID     string
	Name   string
	Trials []Trial
}

// AttentionTask is the standard attention battery: digit spans forward and
// backward, target-letter tapping, and serial subtraction by sevens.
func AttentionTask() Task {
	return Task{
		ID:   "attention",
		Name: "Attention",
		Trials: []Trial{
			{
				Number:               1,
				Kind:                 TrialDigitSpanForward,
				Instruction:          "I am going to say some numbers. When I am through, repeat them to me exactly as I said them.",
				Digits:               []int{2, 1, 8, 5, 4},
				PresentationInterval: time.Second,
				ResponseWindow:       10 * time.Second,
			},
			{
				Number:               2,
				Kind:                 TrialDigitSpanBackward,
				Instruction:          "Now I am going to say some more numbers, but when I am through you must repeat them to me in the backward order.",
				Digits:               []int{7, 4, 2},
				PresentationInterval: time.Second,
				ResponseWindow:       10 * time.Second,
			},
			{
				Number:      3,
				Kind:        TrialLetterTapping,
				Instruction: "I am going to read a sequence of letters. Every time I say the letter A, tap once. If I say a different letter, do not tap.",
				Letters: []string{
					"F", "B", "A", "C", "M", "N", "A", "A", "J", "K",
					"L", "B", "A", "F", "A", "K", "D", "E", "A", "A",
					"A", "J", "A", "M", "O", "F", "A", "A", "B",
				},
				TargetLetter:         "A",
				PresentationInterval: time.Second,
			},
			{
				Number:               4,
				Kind:                 TrialSerialSubtraction,
				Instruction:          "Now, I will ask you to count by subtracting seven from one hundred, and then, keep subtracting seven from your answer until I tell you to stop.",
				Expected:             []int{93, 86, 79, 72, 65},
				PresentationInterval: time.Second,
				ResponseWindow:       30 * time.Second,
			},
		},
	}
}

// WorkingMemoryTask presents category-cued word pairs and asks the subject
// to recall the paired words.
func WorkingMemoryTask() Task {
	pairs := [][2]string{
		{"rose", "flower"},
		{"hammer", "tool"},
		{"salmon", "fish"},
		{"oak", "tree"},
		{"copper", "metal"},
	}

	return Task{
		ID:   "working_memory",
		Name: "Working Memory",
		Trials: []Trial{
			{
				Number:               1,
				Kind:                 TrialWordPairRecall,
				Instruction:          "I am going to read you pairs of words. Listen carefully, because afterwards I will ask you to recall as many of the first words as you can.",
				Pairs:                pairs,
				PresentationInterval: 2 * time.Second,
				ResponseWindow:       20 * time.Second,
			},
		},
	}
}
