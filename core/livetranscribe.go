package assessment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cognivoice/assess-core/core/audio"
	"github.com/cognivoice/assess-core/core/speechtotext"
	sttdeepgram "github.com/cognivoice/assess-core/core/speechtotext/deepgram"
)

// StreamingTranscriptionClient is one live speech-to-text stream: open it,
// feed it audio while the subject speaks, then close the stream so the
// service flushes its final segments.
type StreamingTranscriptionClient interface {
	Transcribe(ctx context.Context, opts ...speechtotext.TranscriptionOption) error
	SendAudio(audio []byte) error
	StopStream() error
}

var _ StreamingTranscriptionClient = (*sttdeepgram.TranscriptionClient)(nil)

// LiveTranscriber transcribes responses while they are still being recorded.
// Each recording window opens one streaming session; captured audio is teed
// into it alongside the recorder, so by the time evaluation starts polling
// the transcript has usually already resolved. Once the clip is saved the
// session is bound to the clip ID and serves as its [TranscriptionSource].
type LiveTranscriber struct {
	newClient func() StreamingTranscriptionClient

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewLiveTranscriber opens one client per recording through newClient.
func NewLiveTranscriber(newClient func() StreamingTranscriptionClient) *LiveTranscriber {
	return &LiveTranscriber{
		newClient: newClient,
		sessions:  map[string]*liveSession{},
	}
}

// NewDeepgramLiveTranscriber streams each recording to deepgram.
func NewDeepgramLiveTranscriber() *LiveTranscriber {
	return NewLiveTranscriber(func() StreamingTranscriptionClient {
		return sttdeepgram.NewTranscriptionClient()
	})
}

func (l *LiveTranscriber) beginSession(ctx context.Context) (*liveSession, error) {
	session := &liveSession{client: l.newClient()}
	if err := session.client.Transcribe(ctx,
		speechtotext.WithFormat(audio.Canonical()),
		speechtotext.WithTranscriptionCallback(session.appendTranscript),
	); err != nil {
		return nil, fmt.Errorf("failed to open live transcription stream: %w", err)
	}
	return session, nil
}

func (l *LiveTranscriber) bind(clipID string, session *liveSession) {
	l.mu.Lock()
	l.sessions[clipID] = session
	l.mu.Unlock()
}

// Transcript implements [TranscriptionSource]. Final segments can trail the
// stream close, so an empty transcript reports not-ready and the caller's
// polling picks it up once the tail arrives.
func (l *LiveTranscriber) Transcript(_ context.Context, clipID string) (string, bool, error) {
	l.mu.Lock()
	session := l.sessions[clipID]
	l.mu.Unlock()

	if session == nil {
		return "", false, fmt.Errorf("no live transcription session for clip %q", clipID)
	}

	transcript := session.snapshot()
	if transcript == "" {
		return "", false, nil
	}
	return transcript, true, nil
}

// liveSession is the audio destination for one recording window.
type liveSession struct {
	client StreamingTranscriptionClient

	mu         sync.Mutex
	transcript string
}

func (s *liveSession) WriteAudio(buf audio.Buffer) error {
	return s.client.SendAudio(buf.Data)
}

func (s *liveSession) appendTranscript(transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}

	s.mu.Lock()
	if s.transcript != "" {
		s.transcript += " "
	}
	s.transcript += transcript
	s.mu.Unlock()
}

func (s *liveSession) snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

func (s *liveSession) stop() error {
	return s.client.StopStream()
}

var _ AudioDestination = (*liveSession)(nil)
var _ TranscriptionSource = (*LiveTranscriber)(nil)
