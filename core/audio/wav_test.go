package audio

import (
	"bytes"
	"testing"
)

func TestEncodeWAVRoundTrip(t *testing.T) {
	in := linear16(16000, 1, 320)

	encoded, err := EncodeWAV(in)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	decoded, err := DecodeWAV(encoded)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if decoded.Format.SampleRate != 16000 || decoded.Format.Channels != 1 {
		t.Fatalf("expected canonical format, got %+v", decoded.Format)
	}
	if !bytes.Equal(decoded.Data, in.Data) {
		t.Fatalf("decoded payload differs from input")
	}
}

func TestEncodeWAVRejectsEmptyBuffer(t *testing.T) {
	if _, err := EncodeWAV(Buffer{Format: Canonical()}); err == nil {
		t.Fatalf("expected error for empty buffer")
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	if _, err := DecodeWAV(make([]byte, 100)); err == nil {
		t.Fatalf("expected error for non-wav data")
	}
}
