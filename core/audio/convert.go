package audio

import (
	"errors"
	"fmt"
	"math"

	resampling "github.com/tphakala/go-audio-resampling"
)

var (
	// ErrConversionUnavailable is returned when no conversion path exists
	// between the requested formats.
	ErrConversionUnavailable = errors.New("no conversion path between formats")
	// ErrConversionFailed is returned when the underlying resampler reports
	// an error or produces no frames for a non-empty input.
	ErrConversionFailed = errors.New("audio conversion failed")
)

// Convert resamples and reformats a PCM buffer into the target format.
//
// Only linear16 buffers with one or two channels are convertible. The output
// holds round(inputFrames * toRate/fromRate) frames (within one frame of
// rounding); a non-empty input never converts to an empty output. The input
// buffer is not modified.
func Convert(buf Buffer, to Format) (Buffer, error) {
	from := buf.Format
	if from.IsZero() || to.IsZero() {
		return Buffer{}, fmt.Errorf("%w: unspecified format", ErrConversionUnavailable)
	}
	if from.Encoding != EncodingLinear16 || to.Encoding != EncodingLinear16 {
		return Buffer{}, fmt.Errorf("%w: %s to %s", ErrConversionUnavailable, from.Encoding.Name(), to.Encoding.Name())
	}
	if from.Channels < 1 || from.Channels > 2 || to.Channels < 1 || to.Channels > 2 {
		return Buffer{}, fmt.Errorf("%w: unsupported channel count", ErrConversionUnavailable)
	}

	if len(buf.Data) == 0 {
		return Buffer{Format: to}, nil
	}

	data := buf.Data
	if from.Channels != to.Channels {
		if from.Channels == 2 {
			data = stereoToMono(data)
		} else {
			data = monoToStereo(data)
		}
	}

	if from.SampleRate == to.SampleRate {
		return Buffer{Format: to, Data: data}, nil
	}

	out, err := resample(data, from.SampleRate, to.SampleRate, to.Channels)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if len(out) == 0 {
		return Buffer{}, fmt.Errorf("%w: resampler produced no frames", ErrConversionFailed)
	}

	return Buffer{Format: to, Data: out}, nil
}

// resample converts 16-bit little-endian PCM between sample rates. The
// resampler is streaming and holds back filter-delay samples, so the tail is
// drained with silence and the result trimmed to the rounded frame count.
func resample(data []byte, fromRate, toRate, channels int) ([]byte, error) {
	resampler, err := resampling.New(&resampling.Config{
		InputRate:  float64(fromRate),
		OutputRate: float64(toRate),
		Channels:   channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	inputFrames := len(data) / (2 * channels)
	wantFrames := int(math.Round(float64(inputFrames) * float64(toRate) / float64(fromRate)))
	if wantFrames == 0 {
		wantFrames = 1
	}
	wantSamples := wantFrames * channels

	input := make([]float64, len(data)/2)
	for i := range input {
		sample := int16(data[i*2]) | int16(data[i*2+1])<<8
		input[i] = float64(sample) / 32768.0
	}

	output, err := resampler.Process(input)
	if err != nil {
		return nil, fmt.Errorf("resample error: %w", err)
	}

	// Push silence through until the delayed tail of the real signal has
	// come out the other side.
	silence := make([]float64, toRate/100*channels)
	for attempts := 0; len(output) < wantSamples && attempts < 100; attempts++ {
		drained, err := resampler.Process(silence)
		if err != nil {
			return nil, fmt.Errorf("resample drain error: %w", err)
		}
		output = append(output, drained...)
	}
	if len(output) > wantSamples {
		output = output[:wantSamples]
	}

	out := make([]byte, len(output)*2)
	for i, s := range output {
		sample := int16(s * 32767.0)
		if s > 1.0 {
			sample = math.MaxInt16
		} else if s < -1.0 {
			sample = math.MinInt16
		}
		out[i*2] = byte(sample)
		out[i*2+1] = byte(sample >> 8)
	}

	return out, nil
}

// stereoToMono averages left and right 16-bit samples into a new mono buffer.
func stereoToMono(b []byte) []byte {
	numFrames := len(b) / 4
	out := make([]byte, numFrames*2)
	for i := range numFrames {
		j := i * 4
		l := int16(b[j]) | int16(b[j+1])<<8
		r := int16(b[j+2]) | int16(b[j+3])<<8
		m := int16((int32(l) + int32(r)) / 2)
		out[i*2] = byte(m)
		out[i*2+1] = byte(m >> 8)
	}
	return out
}

// monoToStereo duplicates each 16-bit sample into both channels.
func monoToStereo(b []byte) []byte {
	numSamples := len(b) / 2
	out := make([]byte, numSamples*4)
	for i := range numSamples {
		s0, s1 := b[i*2], b[i*2+1]
		j := i * 4
		out[j], out[j+1] = s0, s1
		out[j+2], out[j+3] = s0, s1
	}
	return out
}
