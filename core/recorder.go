package assessment

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cognivoice/assess-core/core/audio"
)

// Recorder accumulates canonical audio into one response clip. It is the
// capture destination during the recording phase; Reset starts the next
// clip without reallocating the engine wiring.
type Recorder struct {
	mu   sync.Mutex
	data []byte
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) WriteAudio(buf audio.Buffer) error {
	if buf.Format != audio.Canonical() {
		return fmt.Errorf("recorder expects canonical audio, got %+v", buf.Format)
	}

	r.mu.Lock()
	r.data = append(r.data, buf.Data...)
	r.mu.Unlock()
	return nil
}

// Snapshot returns the accumulated clip so far.
func (r *Recorder) Snapshot() audio.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]byte, len(r.data))
	copy(data, r.data)
	return audio.Buffer{Format: audio.Canonical(), Data: data}
}

func (r *Recorder) Duration() time.Duration {
	return r.Snapshot().Duration()
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.data = nil
	r.mu.Unlock()
}

// WAV encodes the accumulated clip as a WAV file body.
func (r *Recorder) WAV() ([]byte, error) {
	return audio.EncodeWAV(r.Snapshot())
}

// SaveTo writes the accumulated clip to path as a WAV file.
func (r *Recorder) SaveTo(path string) error {
	wavData, err := r.WAV()
	if err != nil {
		return fmt.Errorf("failed to encode clip: %w", err)
	}

	if err := os.WriteFile(path, wavData, 0o644); err != nil {
		return fmt.Errorf("failed to write clip: %w", err)
	}
	return nil
}
