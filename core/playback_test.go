package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/cognivoice/assess-core/core/audio"
)

func canonicalBytes(n int) audio.Buffer {
	return audio.Buffer{Format: audio.Canonical(), Data: make([]byte, n)}
}

func TestPlaybackEngineHoldsAudioBelowThreshold(t *testing.T) {
	sink := &fakePlaybackSink{}
	engine := NewPlaybackEngine(sink)

	if err := engine.Enqueue(canonicalBytes(playbackAccumulationThreshold - 1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.playCount() != 0 {
		t.Fatalf("expected no playback below threshold, got %d plays", sink.playCount())
	}

	if err := engine.Enqueue(canonicalBytes(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.playCount() != 1 {
		t.Fatalf("expected one play at threshold, got %d", sink.playCount())
	}
	if sink.playedBytes() != playbackAccumulationThreshold {
		t.Fatalf("expected %d bytes played, got %d", playbackAccumulationThreshold, sink.playedBytes())
	}
}

func TestPlaybackEngineFlushPlaysResidualExactlyOnce(t *testing.T) {
	sink := &fakePlaybackSink{}
	engine := NewPlaybackEngine(sink)

	if err := engine.Enqueue(canonicalBytes(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := engine.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sink.playCount() != 1 {
		t.Fatalf("expected residual played exactly once, got %d plays", sink.playCount())
	}
	if sink.playedBytes() != 100 {
		t.Fatalf("expected 100 residual bytes, got %d", sink.playedBytes())
	}
}

func TestPlaybackEngineConvertsToDeviceFormat(t *testing.T) {
	sink := &fakePlaybackSink{format: audio.Format{
		SampleRate: 48000,
		Channels:   2,
		Encoding:   audio.EncodingLinear16,
	}}
	engine := NewPlaybackEngine(sink)

	if err := engine.Enqueue(canonicalBytes(1600)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 800 canonical frames at 16 kHz become 2400 frames at 48 kHz, stereo
	// 16-bit, so 4 bytes per frame.
	if sink.playedBytes() != 2400*4 {
		t.Fatalf("expected %d device bytes, got %d", 2400*4, sink.playedBytes())
	}
}

func TestPlaybackEngineRejectsUnconvertibleSinkFormat(t *testing.T) {
	sink := &fakePlaybackSink{format: audio.Format{
		SampleRate: 48000,
		Channels:   6,
		Encoding:   audio.EncodingLinear16,
	}}
	engine := NewPlaybackEngine(sink)

	if err := engine.Enqueue(canonicalBytes(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.Flush(); !errors.Is(err, ErrPlaybackFormatMismatch) {
		t.Fatalf("expected ErrPlaybackFormatMismatch, got %v", err)
	}
}

func TestPlaybackEnginePlayClipAwaitsMark(t *testing.T) {
	sink := &fakePlaybackSink{}
	engine := NewPlaybackEngine(sink)

	if err := engine.PlayClip(context.Background(), canonicalBytes(500)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.playCount() != 1 {
		t.Fatalf("expected clip played, got %d plays", sink.playCount())
	}
}

func TestPlaybackEngineClearDropsPendingAudio(t *testing.T) {
	sink := &fakePlaybackSink{}
	engine := NewPlaybackEngine(sink)

	if err := engine.Enqueue(canonicalBytes(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Clear()

	if err := engine.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.playCount() != 0 {
		t.Fatalf("expected cleared audio to stay unplayed, got %d plays", sink.playCount())
	}
	if sink.cleared != 1 {
		t.Fatalf("expected sink clear to be forwarded, got %d", sink.cleared)
	}
}
