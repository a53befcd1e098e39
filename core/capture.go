package assessment

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/cognivoice/assess-core/core/audio"
)

// CaptureSource is a microphone tap delivering fixed-size blocks in the
// device's native format.
type CaptureSource interface {
	CaptureFormat() audio.Format
	StartCapture(onAudio func(audio []byte)) error
	StopCapture() error
}

// AudioDestination receives canonical-format audio from the capture engine.
// WriteAudio runs on the capture path and should hand the buffer off rather
// than process it inline.
type AudioDestination interface {
	WriteAudio(buf audio.Buffer) error
}

// CaptureEngine pulls blocks from a capture source, normalizes them to the
// canonical format and forwards them to a destination. Empty blocks from
// the device are dropped and counted instead of being forwarded.
type CaptureEngine struct {
	source CaptureSource

	mu      sync.Mutex
	started bool

	emptyDropped  atomic.Int64
	convertErrors atomic.Int64
}

func NewCaptureEngine(source CaptureSource) *CaptureEngine {
	return &CaptureEngine{source: source}
}

// Start opens the capture tap and begins forwarding converted audio to
// dest. Starting an already started engine is an error; a failure to open
// the device maps to [ErrPermissionDenied] so callers can prompt the user.
func (e *CaptureEngine) Start(dest AudioDestination) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return fmt.Errorf("capture engine already started")
	}

	sourceFormat := e.source.CaptureFormat()
	if err := e.source.StartCapture(func(block []byte) {
		if len(block) == 0 {
			e.emptyDropped.Add(1)
			return
		}

		buf := audio.Buffer{Format: sourceFormat, Data: block}
		converted, err := audio.Convert(buf, audio.Canonical())
		if err != nil {
			e.convertErrors.Add(1)
			logger.Error("failed to convert captured block", "error", err)
			return
		}

		if err := dest.WriteAudio(converted); err != nil {
			logger.Error("failed to forward captured block", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	e.started = true
	return nil
}

// Stop closes the capture tap. Stopping an engine that is not running is a
// no-op.
func (e *CaptureEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return nil
	}
	e.started = false

	if err := e.source.StopCapture(); err != nil {
		return fmt.Errorf("failed to stop capture: %w", err)
	}
	return nil
}

// EmptyBlocksDropped reports how many empty device blocks were discarded
// since the engine was created.
func (e *CaptureEngine) EmptyBlocksDropped() int64 {
	return e.emptyDropped.Load()
}
