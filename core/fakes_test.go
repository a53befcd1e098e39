package assessment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cognivoice/assess-core/core/audio"
	"github.com/cognivoice/assess-core/core/responses"
	"github.com/cognivoice/assess-core/core/texttospeech"
)

type fakeCaptureSource struct {
	format audio.Format

	// emitOnStart is delivered synchronously as soon as capture starts.
	emitOnStart []byte

	mu      sync.Mutex
	onAudio func([]byte)
	started bool
	stops   int
}

func (f *fakeCaptureSource) CaptureFormat() audio.Format {
	if f.format.IsZero() {
		return audio.Canonical()
	}
	return f.format
}

func (f *fakeCaptureSource) StartCapture(onAudio func(audio []byte)) error {
	f.mu.Lock()
	f.onAudio = onAudio
	f.started = true
	f.mu.Unlock()

	if f.emitOnStart != nil {
		onAudio(f.emitOnStart)
	}
	return nil
}

func (f *fakeCaptureSource) StopCapture() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = false
	f.stops++
	return nil
}

func (f *fakeCaptureSource) emit(block []byte) {
	f.mu.Lock()
	onAudio := f.onAudio
	started := f.started
	f.mu.Unlock()

	if started && onAudio != nil {
		onAudio(block)
	}
}

type fakePlaybackSink struct {
	format audio.Format

	mu      sync.Mutex
	played  [][]byte
	cleared int
}

func (f *fakePlaybackSink) PlaybackFormat() audio.Format {
	if f.format.IsZero() {
		return audio.Canonical()
	}
	return f.format
}

func (f *fakePlaybackSink) Play(data []byte) error {
	copied := make([]byte, len(data))
	copy(copied, data)

	f.mu.Lock()
	f.played = append(f.played, copied)
	f.mu.Unlock()
	return nil
}

func (f *fakePlaybackSink) Mark(callback func()) error {
	callback()
	return nil
}

func (f *fakePlaybackSink) Clear() {
	f.mu.Lock()
	f.cleared++
	f.mu.Unlock()
}

func (f *fakePlaybackSink) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

func (f *fakePlaybackSink) playedBytes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, chunk := range f.played {
		total += len(chunk)
	}
	return total
}

type fakeDestination struct {
	mu      sync.Mutex
	buffers []audio.Buffer
}

func (f *fakeDestination) WriteAudio(buf audio.Buffer) error {
	f.mu.Lock()
	f.buffers = append(f.buffers, buf)
	f.mu.Unlock()
	return nil
}

func (f *fakeDestination) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buffers)
}

// fakeSynthesizer emits one small canonical audio chunk per SendText and
// reports speech ended on EndOfText.
type fakeSynthesizer struct {
	chunk []byte
}

func (f *fakeSynthesizer) NewSpeechGenerator(_ context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGenerator, error) {
	options := texttospeech.TextToSpeechOptions{
		SpeechAudioCallback: func([]byte) {},
		SpeechEndedCallback: func() {},
		ErrorCallback:       func(error) {},
	}
	for _, opt := range opts {
		opt(&options)
	}

	chunk := f.chunk
	if chunk == nil {
		chunk = make([]byte, 640)
	}
	return &fakeGenerator{options: options, chunk: chunk}, nil
}

type fakeGenerator struct {
	options texttospeech.TextToSpeechOptions
	chunk   []byte
}

func (g *fakeGenerator) SendText(string) error {
	g.options.SpeechAudioCallback(g.chunk)
	return nil
}

func (g *fakeGenerator) EndOfText() error {
	g.options.SpeechEndedCallback()
	return nil
}

func (g *fakeGenerator) Cancel() error { return nil }
func (g *fakeGenerator) Close() error  { return nil }

// memoTranscriptionSource hands out queued transcripts, pinning each clip
// to the transcript it saw first. resolveAfter delays resolution by that
// many polls per clip.
type memoTranscriptionSource struct {
	mu           sync.Mutex
	queue        []string
	assigned     map[string]string
	pollsPerClip map[string]int
	resolveAfter int
}

func newMemoTranscriptionSource(resolveAfter int, transcripts ...string) *memoTranscriptionSource {
	return &memoTranscriptionSource{
		queue:        transcripts,
		assigned:     map[string]string{},
		pollsPerClip: map[string]int{},
		resolveAfter: resolveAfter,
	}
}

func (s *memoTranscriptionSource) Transcript(_ context.Context, clipID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollsPerClip[clipID]++
	if s.pollsPerClip[clipID] <= s.resolveAfter {
		return "", false, nil
	}

	transcript, ok := s.assigned[clipID]
	if !ok {
		if len(s.queue) == 0 {
			return "", false, nil
		}
		transcript = s.queue[0]
		s.queue = s.queue[1:]
		s.assigned[clipID] = transcript
	}
	return transcript, true, nil
}

func newTestClipStore(t *testing.T) *responses.MemoryStore {
	t.Helper()
	return responses.NewMemoryStore()
}

func saveTestClip(t *testing.T, store *responses.MemoryStore) responses.Clip {
	t.Helper()
	clip, err := store.SaveClip(responses.Clip{SessionID: "session-1", TrialNumber: 1, Audio: []byte("RIFF")})
	if err != nil {
		t.Fatalf("unexpected error saving clip: %v", err)
	}
	return clip
}

func awaitCondition(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline")
}
