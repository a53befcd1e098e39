package assessment

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAwaitTranscriptResolvesAfterPolls(t *testing.T) {
	source := newMemoTranscriptionSource(3, "seven four two")

	transcript, err := awaitTranscript(context.Background(), source, "clip-1", time.Millisecond, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transcript != "seven four two" {
		t.Fatalf("expected transcript, got %q", transcript)
	}
	if source.pollsPerClip["clip-1"] < 4 {
		t.Fatalf("expected at least 4 polls, got %d", source.pollsPerClip["clip-1"])
	}
}

func TestAwaitTranscriptTimesOutAfterMaxAttempts(t *testing.T) {
	source := newMemoTranscriptionSource(1000)

	start := time.Now()
	_, err := awaitTranscript(context.Background(), source, "clip-1", time.Millisecond, 3)
	if !errors.Is(err, ErrEvaluationTimeout) {
		t.Fatalf("expected ErrEvaluationTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected bounded wait, took %v", elapsed)
	}
}

func TestScoreTrialDispatch(t *testing.T) {
	testCases := []struct {
		name        string
		trial       Trial
		transcript  string
		wantScore   float64
		wantCorrect bool
	}{
		{
			name:        "digit span forward exact",
			trial:       Trial{Kind: TrialDigitSpanForward, Digits: []int{2, 1, 8, 5, 4}},
			transcript:  "two one eight five four",
			wantScore:   1,
			wantCorrect: true,
		},
		{
			name:        "digit span backward reversed",
			trial:       Trial{Kind: TrialDigitSpanBackward, Digits: []int{7, 4, 2}},
			transcript:  "two four seven",
			wantScore:   1,
			wantCorrect: true,
		},
		{
			name:        "serial subtraction partial",
			trial:       Trial{Kind: TrialSerialSubtraction, Expected: []int{93, 86, 79, 72, 65}},
			transcript:  "ninety-three eighty-six seventy",
			wantScore:   2,
			wantCorrect: false,
		},
		{
			name: "word pair recall",
			trial: Trial{Kind: TrialWordPairRecall, Pairs: [][2]string{
				{"rose", "flower"}, {"hammer", "tool"},
			}},
			transcript:  "rose and I think hammer",
			wantScore:   2,
			wantCorrect: true,
		},
		{
			name: "word pair recall needs whole words",
			trial: Trial{Kind: TrialWordPairRecall, Pairs: [][2]string{
				{"rose", "flower"}, {"ham", "sandwich"},
			}},
			transcript:  "rosemary and a hamster",
			wantScore:   0,
			wantCorrect: false,
		},
		{
			name: "word pair recall trims punctuation",
			trial: Trial{Kind: TrialWordPairRecall, Pairs: [][2]string{
				{"rose", "flower"}, {"hammer", "tool"},
			}},
			transcript:  "Rose, then hammer.",
			wantScore:   2,
			wantCorrect: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			score, isCorrect, _, err := scoreTrial(testCase.trial, testCase.transcript)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score != testCase.wantScore {
				t.Fatalf("expected score %.1f, got %.1f", testCase.wantScore, score)
			}
			if isCorrect != testCase.wantCorrect {
				t.Fatalf("expected correct=%t, got %t", testCase.wantCorrect, isCorrect)
			}
		})
	}
}

func TestScoreTrialUnknownKind(t *testing.T) {
	if _, _, _, err := scoreTrial(Trial{Kind: TrialLetterTapping}, "anything"); err == nil {
		t.Fatal("expected an error for a kind without a transcript scorer")
	}
}

type fixedClipTranscriptionClient struct {
	transcript string
}

func (c fixedClipTranscriptionClient) TranscribeClip(context.Context, []byte) (string, error) {
	return c.transcript, nil
}

func TestClipTranscriberResolvesThroughStore(t *testing.T) {
	store := newTestClipStore(t)
	clip := saveTestClip(t, store)

	transcriber := NewClipTranscriber(store, fixedClipTranscriptionClient{transcript: "ninety-three"})

	if _, ok, err := transcriber.Transcript(context.Background(), clip.ID); err != nil || ok {
		t.Fatalf("expected first poll to be unresolved, got ok=%t err=%v", ok, err)
	}

	awaitCondition(t, func() bool {
		transcript, ok, err := transcriber.Transcript(context.Background(), clip.ID)
		return err == nil && ok && transcript == "ninety-three"
	})
}

func TestClipTranscriberUnknownClip(t *testing.T) {
	store := newTestClipStore(t)
	transcriber := NewClipTranscriber(store, fixedClipTranscriptionClient{})

	if _, _, err := transcriber.Transcript(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for an unknown clip")
	}
}
