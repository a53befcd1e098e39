//go:build cgo

// Package miniaudio provides malgo-backed capture and playback devices for
// the assessment audio engines.
package miniaudio

import (
	"fmt"

	"github.com/cognivoice/assess-core/core/audio"
	"github.com/gen2brain/malgo"
)

const (
	// Devices run at a typical hardware rate; the engines convert to and
	// from the canonical 16 kHz format.
	deviceSampleRate = 48000

	// CaptureBlockFrames is the fixed capture tap block size.
	CaptureBlockFrames = 1024
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	captureClient
	playbackClient
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
	if err != nil {
		return nil, fmt.Errorf("malgo InitContext failed: %w", err)
	}

	client := Client{audioContext: audioCtx}

	if err := client.captureClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize capture client: %w", err)
	}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	if err := client.playbackClient.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return &client, nil
}

func (c *Client) Close() {
	_ = c.captureClient.Uninit()
	_ = c.playbackClient.Uninit()
	_ = c.audioContext.Uninit()
	c.audioContext.Free()
}

// CaptureFormat reports the hardware-native format delivered by the tap.
func (c *Client) CaptureFormat() audio.Format {
	return audio.Format{
		SampleRate: deviceSampleRate,
		Channels:   1,
		Encoding:   audio.EncodingLinear16,
	}
}

// PlaybackFormat reports the connected output format segments must match.
func (c *Client) PlaybackFormat() audio.Format {
	return audio.Format{
		SampleRate: deviceSampleRate,
		Channels:   playbackChannels,
		Encoding:   audio.EncodingLinear16,
	}
}
