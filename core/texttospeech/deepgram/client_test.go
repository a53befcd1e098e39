package deepgram

import "testing"

func TestNewTextToSpeechClientRejectsUnknownVoice(t *testing.T) {
	if _, err := NewTextToSpeechClient("aura-2-made-up-en"); err == nil {
		t.Fatal("expected an error for an unknown voice")
	}
}

func TestNewTextToSpeechClientAcceptsAvailableVoices(t *testing.T) {
	for _, voice := range GetAvailableVoices() {
		client, err := NewTextToSpeechClient(voice)
		if err != nil {
			t.Fatalf("unexpected error for voice %q: %v", voice, err)
		}
		if client.voice != voice {
			t.Fatalf("expected voice %q, got %q", voice, client.voice)
		}
	}
}
