package assessment

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognivoice/assess-core/core/audio"
	"github.com/cognivoice/assess-core/core/texttospeech"
)

// SpeechSynthesizer opens one streaming speech generation per spoken
// prompt.
type SpeechSynthesizer interface {
	NewSpeechGenerator(ctx context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGenerator, error)
}

// PromptSpeaker turns prompt text into audible speech: synthesized audio
// is fed through the playback engine, and Speak returns once the device
// has played the whole prompt.
type PromptSpeaker struct {
	synthesizer SpeechSynthesizer
	playback    *PlaybackEngine
}

func NewPromptSpeaker(synthesizer SpeechSynthesizer, playback *PlaybackEngine) *PromptSpeaker {
	return &PromptSpeaker{synthesizer: synthesizer, playback: playback}
}

// Speak synthesizes and plays text, blocking until playback finishes or
// ctx is cancelled. On cancellation the generator is cancelled and queued
// audio is cleared so no stale prompt audio leaks into the next phase.
func (s *PromptSpeaker) Speak(ctx context.Context, text string) error {
	generated := make(chan struct{})
	var once sync.Once

	generator, err := s.synthesizer.NewSpeechGenerator(ctx,
		texttospeech.WithFormat(audio.Canonical()),
		texttospeech.WithSpeechAudioCallback(func(chunk []byte) {
			if err := s.playback.Enqueue(audio.Buffer{Format: audio.Canonical(), Data: chunk}); err != nil {
				logger.Error("failed to enqueue synthesized audio", "error", err)
			}
		}),
		texttospeech.WithSpeechEndedCallback(func() {
			once.Do(func() { close(generated) })
		}),
		texttospeech.WithErrorCallback(func(err error) {
			logger.Error("speech generation failed", "error", err)
			once.Do(func() { close(generated) })
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to open speech generator: %w", err)
	}

	if err := generator.SendText(text); err != nil {
		return fmt.Errorf("failed to send prompt text: %w", err)
	}
	if err := generator.EndOfText(); err != nil {
		return fmt.Errorf("failed to finish prompt text: %w", err)
	}

	select {
	case <-generated:
	case <-ctx.Done():
		_ = generator.Cancel()
		s.playback.Clear()
		return ctx.Err()
	}

	if err := s.playback.Flush(); err != nil {
		return err
	}
	return s.playback.AwaitPlayed(ctx)
}
