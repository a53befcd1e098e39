package responses

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

var (
	_ ResponseStore = (*MemoryStore)(nil)
	_ ClipStore     = (*MemoryStore)(nil)
)

// MemoryStore keeps responses and clips in memory for the lifetime of a
// session. All records pass the store boundary by deep copy, so callers
// can mutate what they get back without racing the store.
type MemoryStore struct {
	mu        sync.RWMutex
	responses []Response
	clips     []Clip
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveResponse(response Response) (Response, error) {
	var stored Response
	if err := copier.CopyWithOption(&stored, response, copier.Option{DeepCopy: true}); err != nil {
		return Response{}, err
	}

	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.mu.Lock()
	s.responses = append(s.responses, stored)
	s.mu.Unlock()

	return s.copyResponse(stored)
}

func (s *MemoryStore) UpdateResponse(id string, update func(*Response)) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.responses {
		if s.responses[i].ID != id {
			continue
		}

		update(&s.responses[i])
		s.responses[i].ID = id
		s.responses[i].UpdatedAt = time.Now()
		return s.copyResponse(s.responses[i])
	}

	return Response{}, ErrNotFound
}

func (s *MemoryStore) Responses(sessionID string) []Response {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []Response
	for i := range s.responses {
		if s.responses[i].SessionID != sessionID {
			continue
		}
		if copied, err := s.copyResponse(s.responses[i]); err == nil {
			matched = append(matched, copied)
		}
	}
	return matched
}

func (s *MemoryStore) SaveClip(clip Clip) (Clip, error) {
	var stored Clip
	if err := copier.CopyWithOption(&stored, clip, copier.Option{DeepCopy: true}); err != nil {
		return Clip{}, err
	}

	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.mu.Lock()
	s.clips = append(s.clips, stored)
	s.mu.Unlock()

	return s.copyClip(stored)
}

func (s *MemoryStore) SetClipTranscript(id string, transcript string) (Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.clips {
		if s.clips[i].ID != id {
			continue
		}

		s.clips[i].Transcript = &transcript
		s.clips[i].UpdatedAt = time.Now()
		return s.copyClip(s.clips[i])
	}

	return Clip{}, ErrNotFound
}

func (s *MemoryStore) Clip(id string) (Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.clips {
		if s.clips[i].ID == id {
			return s.copyClip(s.clips[i])
		}
	}
	return Clip{}, ErrNotFound
}

func (s *MemoryStore) ClipByTrial(sessionID string, trialNumber int) (Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.clips {
		if s.clips[i].SessionID == sessionID && s.clips[i].TrialNumber == trialNumber {
			return s.copyClip(s.clips[i])
		}
	}
	return Clip{}, ErrNotFound
}

func (s *MemoryStore) copyResponse(response Response) (Response, error) {
	var copied Response
	if err := copier.CopyWithOption(&copied, response, copier.Option{DeepCopy: true}); err != nil {
		return Response{}, err
	}
	return copied, nil
}

func (s *MemoryStore) copyClip(clip Clip) (Clip, error) {
	var copied Clip
	if err := copier.CopyWithOption(&copied, clip, copier.Option{DeepCopy: true}); err != nil {
		return Clip{}, err
	}
	return copied, nil
}
