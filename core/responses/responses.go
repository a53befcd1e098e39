// Package responses persists per-trial task results and recorded response
// clips. The stores are the single source of truth for what the subject
// said and how it was scored; scorers and orchestration read and write
// through them and never share live records.
package responses

import (
	"errors"
	"time"
)

// ErrNotFound reports that no record matches the requested ID.
var ErrNotFound = errors.New("record not found")

// Response is one scored trial result.
type Response struct {
	ID          string
	SessionID   string
	TaskID      string
	TrialNumber int
	Transcript  string
	Score       float64
	IsCorrect   bool
	// Detail carries scorer-specific context, e.g. the continuous error
	// count behind a pass/fail score or the presented sequence.
	Detail    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clip is one recorded response clip. Audio holds the encoded WAV bytes;
// Transcript stays nil until transcription resolves it.
type Clip struct {
	ID          string
	SessionID   string
	TrialNumber int
	Audio       []byte
	Duration    time.Duration
	Transcript  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ResponseStore persists scored trial results.
type ResponseStore interface {
	SaveResponse(response Response) (Response, error)
	UpdateResponse(id string, update func(*Response)) (Response, error)
	Responses(sessionID string) []Response
}

// ClipStore persists recorded response clips and their transcripts.
type ClipStore interface {
	SaveClip(clip Clip) (Clip, error)
	SetClipTranscript(id string, transcript string) (Clip, error)
	Clip(id string) (Clip, error)
	ClipByTrial(sessionID string, trialNumber int) (Clip, error)
}
