package audio

import (
	"errors"
	"math"
	"testing"
)

func linear16(sampleRate, channels, frames int) Buffer {
	data := make([]byte, frames*2*channels)
	for i := range frames * channels {
		sample := int16(math.Sin(float64(i)/10) * 12000)
		data[i*2] = byte(sample)
		data[i*2+1] = byte(sample >> 8)
	}
	return Buffer{
		Format: Format{SampleRate: sampleRate, Channels: channels, Encoding: EncodingLinear16},
		Data:   data,
	}
}

func TestConvertFrameCountMatchesRateRatio(t *testing.T) {
	testCases := []struct {
		name     string
		fromRate int
		toRate   int
		frames   int
	}{
		{name: "44.1k to canonical", fromRate: 44100, toRate: 16000, frames: 4410},
		{name: "48k to canonical", fromRate: 48000, toRate: 16000, frames: 4800},
		{name: "canonical to 48k", fromRate: 16000, toRate: 48000, frames: 1600},
		{name: "8k to canonical", fromRate: 8000, toRate: 16000, frames: 800},
		{name: "24k to canonical", fromRate: 24000, toRate: 16000, frames: 1024},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			in := linear16(testCase.fromRate, 1, testCase.frames)
			out, err := Convert(in, Format{SampleRate: testCase.toRate, Channels: 1, Encoding: EncodingLinear16})
			if err != nil {
				t.Fatalf("unexpected conversion error: %v", err)
			}

			want := int(math.Round(float64(testCase.frames) * float64(testCase.toRate) / float64(testCase.fromRate)))
			got := out.Frames()
			if got < want-1 || got > want+1 {
				t.Fatalf("expected %d frames (within one), got %d", want, got)
			}
			if got == 0 {
				t.Fatalf("expected non-zero output frames for non-empty input")
			}
		})
	}
}

func TestConvertSameRateIsPassthrough(t *testing.T) {
	in := linear16(16000, 1, 1024)
	out, err := Convert(in, Canonical())
	if err != nil {
		t.Fatalf("unexpected conversion error: %v", err)
	}
	if out.Frames() != 1024 {
		t.Fatalf("expected 1024 frames, got %d", out.Frames())
	}
}

func TestConvertDownmixesStereo(t *testing.T) {
	in := linear16(16000, 2, 512)
	out, err := Convert(in, Canonical())
	if err != nil {
		t.Fatalf("unexpected conversion error: %v", err)
	}
	if out.Format.Channels != 1 {
		t.Fatalf("expected mono output, got %d channels", out.Format.Channels)
	}
	if out.Frames() != 512 {
		t.Fatalf("expected 512 frames after downmix, got %d", out.Frames())
	}
}

func TestConvertUpmixesMono(t *testing.T) {
	in := linear16(16000, 1, 512)
	out, err := Convert(in, Format{SampleRate: 16000, Channels: 2, Encoding: EncodingLinear16})
	if err != nil {
		t.Fatalf("unexpected conversion error: %v", err)
	}
	if out.Format.Channels != 2 || out.Frames() != 512 {
		t.Fatalf("expected 512 stereo frames, got %d frames with %d channels", out.Frames(), out.Format.Channels)
	}
}

func TestConvertRejectsUnsupportedEncodings(t *testing.T) {
	in := Buffer{
		Format: Format{SampleRate: 8000, Channels: 1, Encoding: EncodingMulaw},
		Data:   make([]byte, 160),
	}
	if _, err := Convert(in, Canonical()); !errors.Is(err, ErrConversionUnavailable) {
		t.Fatalf("expected ErrConversionUnavailable, got %v", err)
	}
}

func TestConvertRejectsUnspecifiedFormat(t *testing.T) {
	if _, err := Convert(Buffer{Data: []byte{0, 0}}, Canonical()); !errors.Is(err, ErrConversionUnavailable) {
		t.Fatalf("expected ErrConversionUnavailable for zero source format, got %v", err)
	}
}

func TestConvertEmptyInputYieldsEmptyOutput(t *testing.T) {
	out, err := Convert(Buffer{Format: Format{SampleRate: 44100, Channels: 1, Encoding: EncodingLinear16}}, Canonical())
	if err != nil {
		t.Fatalf("unexpected conversion error: %v", err)
	}
	if out.Frames() != 0 {
		t.Fatalf("expected empty output for empty input, got %d frames", out.Frames())
	}
}
