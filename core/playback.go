package assessment

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognivoice/assess-core/core/audio"
)

// playbackAccumulationThreshold is how much canonical audio is buffered
// before it is handed to the device, about a quarter second. Streaming
// synthesis arrives in small bursts; batching them keeps the device queue
// from starving between bursts.
const playbackAccumulationThreshold = audio.CanonicalSampleRate * 2 / 4

// PlaybackSink is an output device queue. Play appends audio in the
// device format, Mark registers a callback invoked once everything queued
// before it has been played.
type PlaybackSink interface {
	PlaybackFormat() audio.Format
	Play(audio []byte) error
	Mark(callback func()) error
	Clear()
}

// PlaybackEngine accumulates canonical audio and feeds it to the sink in
// device format. Audio below the accumulation threshold is held back until
// more arrives or Flush forces it out.
type PlaybackEngine struct {
	sink PlaybackSink

	mu      sync.Mutex
	pending []byte
}

func NewPlaybackEngine(sink PlaybackSink) *PlaybackEngine {
	return &PlaybackEngine{sink: sink}
}

// Enqueue normalizes buf to the canonical format and queues it. Once the
// queue crosses the accumulation threshold everything queued is converted
// to the device format and played.
func (e *PlaybackEngine) Enqueue(buf audio.Buffer) error {
	canonical, err := audio.Convert(buf, audio.Canonical())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFormatMismatch, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending = append(e.pending, canonical.Data...)
	if len(e.pending) < playbackAccumulationThreshold {
		return nil
	}

	return e.playPendingLocked()
}

// Flush plays whatever is queued below the threshold. Flushing an empty
// queue is a no-op, so the residual tail of a stream is played exactly
// once no matter how many times the end of the stream is signalled.
func (e *PlaybackEngine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.pending) == 0 {
		return nil
	}
	return e.playPendingLocked()
}

func (e *PlaybackEngine) playPendingLocked() error {
	converted, err := audio.Convert(
		audio.Buffer{Format: audio.Canonical(), Data: e.pending},
		e.sink.PlaybackFormat(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFormatMismatch, err)
	}
	e.pending = nil

	if err := e.sink.Play(converted.Data); err != nil {
		return fmt.Errorf("failed to queue audio for playback: %w", err)
	}
	return nil
}

// PlayClip queues one complete clip and blocks until the device reports it
// has been played or ctx is cancelled.
func (e *PlaybackEngine) PlayClip(ctx context.Context, buf audio.Buffer) error {
	if err := e.Enqueue(buf); err != nil {
		return err
	}
	if err := e.Flush(); err != nil {
		return err
	}

	return e.AwaitPlayed(ctx)
}

// AwaitPlayed blocks until everything queued so far has been played or ctx
// is cancelled.
func (e *PlaybackEngine) AwaitPlayed(ctx context.Context) error {
	played := make(chan struct{})
	var once sync.Once
	if err := e.sink.Mark(func() {
		once.Do(func() { close(played) })
	}); err != nil {
		return fmt.Errorf("failed to register playback mark: %w", err)
	}

	select {
	case <-played:
		return nil
	case <-ctx.Done():
		e.Clear()
		return ctx.Err()
	}
}

// Clear drops queued audio, both the engine's pending bytes and whatever
// the device has not played yet.
func (e *PlaybackEngine) Clear() {
	e.mu.Lock()
	e.pending = nil
	e.mu.Unlock()

	e.sink.Clear()
}
