package audio

import "time"

const (
	CanonicalSampleRate = 16000
	CanonicalChannels   = 1
	CanonicalFormat     = "linear16"
)

// Canonical returns the fixed interchange format used for capture and
// network transport: 16 kHz, mono, 16-bit signed little-endian PCM.
func Canonical() Format {
	return Format{
		SampleRate: CanonicalSampleRate,
		Channels:   CanonicalChannels,
		Encoding:   encodingFormat(CanonicalFormat),
	}
}

type Format struct {
	SampleRate int
	Channels   int
	Encoding   encodingFormat
}

func (f Format) IsZero() bool {
	return f.SampleRate == 0 || f.Channels == 0 || f.Encoding.Name() == ""
}

// BytesPerFrame is the size of one frame (one sample per channel).
func (f Format) BytesPerFrame() int {
	return f.Encoding.ByteSize() * f.Channels
}

func (f Format) SilenceValue() byte {
	switch f.Encoding {
	case EncodingALaw:
		return 0x55
	case EncodingMulaw:
		return 0xFF
	case EncodingLinear16:
		return 0
	}

	return 0
}

// Buffer is a chunk of PCM audio tagged with its format. A buffer is owned
// by whichever pipeline stage currently holds it; stages hand it off rather
// than sharing it.
type Buffer struct {
	Format Format
	Data   []byte
}

func (b Buffer) Frames() int {
	if b.Format.IsZero() {
		return 0
	}
	return len(b.Data) / b.Format.BytesPerFrame()
}

func (b Buffer) Duration() time.Duration {
	if b.Format.IsZero() {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.Format.SampleRate) * float64(time.Second))
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
