//go:build cgo

// Package portaudio provides a portaudio-backed capture device, an
// alternative to the miniaudio backend on hosts where malgo is unavailable.
package portaudio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cognivoice/assess-core/core/audio"
	"github.com/gordonklaus/portaudio"
)

const blockFrames = 1024

type Client struct {
	stream *portaudio.Stream
	in     []int16

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func NewClient() (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, blockFrames)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.CanonicalSampleRate, blockFrames, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{stream: stream, in: in}, nil
}

func (c *Client) CaptureFormat() audio.Format {
	return audio.Canonical()
}

func (c *Client) StartCapture(onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	c.running = true
	c.done = make(chan struct{})
	go c.readLoop(c.done, onAudio)
	return nil
}

func (c *Client) readLoop(done chan struct{}, onAudio func(audio []byte)) {
	for {
		select {
		case <-done:
			return
		default:
			if err := c.stream.Read(); err != nil {
				// Overflows happen when the consumer stalls; skip the block.
				continue
			}

			audioBuffer := bytes.Buffer{}
			_ = binary.Write(&audioBuffer, binary.LittleEndian, c.in)
			onAudio(audioBuffer.Bytes())
		}
	}
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}

	close(c.done)
	c.running = false
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.StopCapture()
	c.stream.Close()
	_ = portaudio.Terminate()
}
