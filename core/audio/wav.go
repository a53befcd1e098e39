package audio

import (
	"encoding/binary"
	"fmt"
)

const wavHeaderSize = 44

// EncodeWAV wraps a linear16 PCM buffer in a RIFF/WAVE container.
func EncodeWAV(buf Buffer) ([]byte, error) {
	if buf.Format.Encoding != EncodingLinear16 {
		return nil, fmt.Errorf("cannot encode %s audio as wav", buf.Format.Encoding.Name())
	}
	if len(buf.Data) == 0 {
		return nil, fmt.Errorf("cannot encode empty audio buffer")
	}

	channels := uint16(buf.Format.Channels)
	sampleRate := uint32(buf.Format.SampleRate)
	bitsPerSample := uint16(16)
	dataSize := uint32(len(buf.Data))

	out := make([]byte, 0, wavHeaderSize+len(buf.Data))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, 36+dataSize)
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1) // PCM
	out = binary.LittleEndian.AppendUint16(out, channels)
	out = binary.LittleEndian.AppendUint32(out, sampleRate)
	out = binary.LittleEndian.AppendUint32(out, sampleRate*uint32(channels)*uint32(bitsPerSample)/8)
	out = binary.LittleEndian.AppendUint16(out, channels*bitsPerSample/8)
	out = binary.LittleEndian.AppendUint16(out, bitsPerSample)
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, dataSize)
	out = append(out, buf.Data...)

	return out, nil
}

// DecodeWAV extracts the PCM payload and format from a RIFF/WAVE container.
// Only 16-bit PCM is supported.
func DecodeWAV(data []byte) (Buffer, error) {
	if len(data) < wavHeaderSize {
		return Buffer{}, fmt.Errorf("wav data too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Buffer{}, fmt.Errorf("not a wav file")
	}
	if string(data[12:16]) != "fmt " {
		return Buffer{}, fmt.Errorf("wav file missing fmt chunk")
	}
	if audioFormat := binary.LittleEndian.Uint16(data[20:22]); audioFormat != 1 {
		return Buffer{}, fmt.Errorf("unsupported wav audio format: %d", audioFormat)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != 16 {
		return Buffer{}, fmt.Errorf("unsupported wav bit depth: %d", bits)
	}
	if string(data[36:40]) != "data" {
		return Buffer{}, fmt.Errorf("wav file missing data chunk")
	}

	dataSize := int(binary.LittleEndian.Uint32(data[40:44]))
	if dataSize > len(data)-wavHeaderSize {
		dataSize = len(data) - wavHeaderSize
	}

	return Buffer{
		Format: Format{
			SampleRate: int(binary.LittleEndian.Uint32(data[24:28])),
			Channels:   int(binary.LittleEndian.Uint16(data[22:24])),
			Encoding:   EncodingLinear16,
		},
		Data: data[wavHeaderSize : wavHeaderSize+dataSize],
	}, nil
}
