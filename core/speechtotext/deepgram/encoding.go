package deepgram

import (
	"fmt"

	"github.com/cognivoice/assess-core/core/audio"
)

type encodingInfo struct {
	SampleRate int
	Encoding   string
}

func convertEncoding(format audio.Format) (*encodingInfo, error) {
	deepgramEncoding := encodingInfo{Encoding: format.Encoding.Name()}
	switch format.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
		deepgramEncoding.SampleRate = format.SampleRate
	default:
		return nil, fmt.Errorf("unsupported sample rate")
	}

	switch format.Encoding {
	case audio.EncodingLinear16:
	case audio.EncodingALaw, audio.EncodingMulaw:
		if deepgramEncoding.SampleRate != 8000 {
			return nil, fmt.Errorf("unsupported sample rate for %s encoding", format.Encoding.Name())
		}
	default:
		return nil, fmt.Errorf("unsupported encoding")
	}

	if format.Channels != 1 {
		return nil, fmt.Errorf("only mono transcription streams are supported")
	}

	return &deepgramEncoding, nil
}
