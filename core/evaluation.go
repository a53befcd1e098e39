package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cognivoice/assess-core/core/responses"
	"github.com/cognivoice/assess-core/core/scoring"
)

const (
	// transcriptionCeiling bounds how long a trial waits for its transcript
	// before the response is scored as missing.
	transcriptionCeiling = 60 * time.Second

	defaultPollInterval    = 500 * time.Millisecond
	defaultMaxPollAttempts = 120
)

// TranscriptionSource resolves transcripts for recorded clips. A source
// may resolve asynchronously; ok reports whether the transcript is
// available yet.
type TranscriptionSource interface {
	Transcript(ctx context.Context, clipID string) (transcript string, ok bool, err error)
}

// awaitTranscript polls source until the clip's transcript resolves. It
// gives up with [ErrEvaluationTimeout] after maxAttempts polls or once the
// transcription ceiling elapses, whichever comes first. Transient source
// errors do not abort the wait; the transcript may still arrive.
func awaitTranscript(ctx context.Context, source TranscriptionSource, clipID string, interval time.Duration, maxAttempts int) (string, error) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxPollAttempts
	}

	ctx, cancel := context.WithTimeout(ctx, transcriptionCeiling)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		transcript, ok, err := source.Transcript(ctx, clipID)
		if err != nil {
			lastErr = err
		} else if ok {
			return transcript, nil
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return "", fmt.Errorf("%w: %v", ErrEvaluationTimeout, lastErr)
			}
			return "", ErrEvaluationTimeout
		case <-time.After(interval):
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrEvaluationTimeout, lastErr)
	}
	return "", ErrEvaluationTimeout
}

// scoreTrial applies the trial's scorer to the transcript. Letter tapping
// is scored from the tap timeline instead and never reaches this path.
func scoreTrial(trial Trial, transcript string) (score float64, isCorrect bool, detail string, err error) {
	switch trial.Kind {
	case TrialDigitSpanForward:
		score, err = scoring.ScoreDigitSpan(transcript, trial.Digits, false)
		return score, score == 1, "", err
	case TrialDigitSpanBackward:
		score, err = scoring.ScoreDigitSpan(transcript, trial.Digits, true)
		return score, score == 1, "", err
	case TrialSerialSubtraction:
		correct, score, err := scoring.ScoreSerialSubtraction(transcript, trial.Expected)
		return score, correct == len(trial.Expected), fmt.Sprintf("correct=%d", correct), err
	case TrialWordPairRecall:
		// Whole-word matches only, so "rose" is not credited for "rosemary".
		spoken := map[string]bool{}
		for _, token := range strings.Fields(strings.ToLower(transcript)) {
			spoken[strings.Trim(token, ".,!?;:")] = true
		}
		recalled := 0
		for _, pair := range trial.Pairs {
			if spoken[strings.ToLower(pair[0])] {
				recalled++
			}
		}
		return float64(recalled), recalled == len(trial.Pairs), fmt.Sprintf("recalled=%d", recalled), nil
	}
	return 0, false, "", fmt.Errorf("no scorer for trial kind %q", trial.Kind)
}

// ClipTranscriptionClient transcribes one encoded WAV clip.
type ClipTranscriptionClient interface {
	TranscribeClip(ctx context.Context, wavData []byte) (string, error)
}

// ClipTranscriber is a store-backed transcription source. The first poll
// for a clip kicks off transcription in the background; subsequent polls
// observe the transcript once it lands in the store.
type ClipTranscriber struct {
	store  responses.ClipStore
	client ClipTranscriptionClient

	mu       sync.Mutex
	inflight map[string]bool
}

func NewClipTranscriber(store responses.ClipStore, client ClipTranscriptionClient) *ClipTranscriber {
	return &ClipTranscriber{store: store, client: client, inflight: map[string]bool{}}
}

func (t *ClipTranscriber) Transcript(ctx context.Context, clipID string) (string, bool, error) {
	clip, err := t.store.Clip(clipID)
	if err != nil {
		return "", false, err
	}
	if clip.Transcript != nil {
		return *clip.Transcript, true, nil
	}

	t.mu.Lock()
	alreadyRunning := t.inflight[clipID]
	t.inflight[clipID] = true
	t.mu.Unlock()

	if !alreadyRunning {
		go t.resolve(ctx, clip)
	}
	return "", false, nil
}

func (t *ClipTranscriber) resolve(ctx context.Context, clip responses.Clip) {
	defer func() {
		t.mu.Lock()
		delete(t.inflight, clip.ID)
		t.mu.Unlock()
	}()

	transcript, err := t.client.TranscribeClip(ctx, clip.Audio)
	if err != nil {
		logger.ErrorContext(ctx, "failed to transcribe clip",
			"clip_id", clip.ID, "error", err)
		return
	}

	if _, err := t.store.SetClipTranscript(clip.ID, transcript); err != nil {
		logger.ErrorContext(ctx, "failed to store clip transcript",
			"clip_id", clip.ID, "error", err)
	}
}
