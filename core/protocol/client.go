package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cognivoice/assess-core/core/audio"
	"github.com/gorilla/websocket"
)

// ErrTransportClosed reports that the connection is gone. For a streaming
// task this is terminal; the client never reconnects on its own.
var ErrTransportClosed = errors.New("protocol transport closed")

// TransportError wraps a websocket-level failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// Client multiplexes the typed assessment event stream over one websocket.
//
// One background receive loop decodes inbound frames and dispatches them to
// subscribers in transport order; dispatch of consecutive messages never
// overlaps. The loop exits exactly once, either when the transport closes or
// errors, or when Disconnect is called.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	onMessage func(InboundMessage)
	onError   func(error)

	closeOnce sync.Once
	done      chan struct{}
}

type ClientOption func(*Client)

// WithMessageHandler registers the subscriber invoked per decoded inbound
// message, in decode order.
func WithMessageHandler(handler func(InboundMessage)) ClientOption {
	return func(c *Client) { c.onMessage = handler }
}

// WithErrorHandler registers the subscriber invoked for decode and transport
// errors. Decode errors do not terminate the connection.
func WithErrorHandler(handler func(error)) ClientOption {
	return func(c *Client) { c.onError = handler }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		onMessage: func(InboundMessage) {},
		onError:   func(error) {},
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the evaluator endpoint and starts the receive loop.
func (c *Client) Connect(ctx context.Context, endpoint string) error {
	if c.conn != nil {
		return fmt.Errorf("already connected")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to open socket connection to %s: %w", endpoint, err)
	}

	c.conn = conn
	go c.readAndProcessMessages(conn)

	return nil
}

func (c *Client) readAndProcessMessages(conn *websocket.Conn) {
	defer c.terminate()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, frame, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !isDone(c.done) {
				c.onError(&TransportError{Op: "receive", Err: err})
			}
			return
		}

		msg, err := DecodeInbound(frame)
		if err != nil {
			// One bad message must not kill the session.
			c.onError(err)
			continue
		}

		c.onMessage(msg)
	}
}

// Send encodes and writes one outbound message. Sends are fire-and-forget: a
// failure is reported to the error subscriber and does not block later sends.
func (c *Client) Send(msg OutboundMessage) {
	frame, err := EncodeOutbound(msg)
	if err != nil {
		c.onError(err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil || isDone(c.done) {
		c.onError(&TransportError{Op: "send", Err: ErrTransportClosed})
		return
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.onError(&TransportError{Op: "send", Err: err})
	}
}

// SendAudioChunk streams one canonical-format capture block.
func (c *Client) SendAudioChunk(buf audio.Buffer) {
	c.Send(AudioChunk{
		Audio:      buf.Data,
		SampleRate: buf.Format.SampleRate,
		Format:     PCMFormatTag,
	})
}

// SendEvent sends a control event.
func (c *Client) SendEvent(action EventAction) {
	c.Send(Event{Action: action})
}

// WriteAudio implements the capture destination contract so the capture
// engine can stream straight into the outbound channel.
func (c *Client) WriteAudio(buf audio.Buffer) error {
	c.SendAudioChunk(buf)
	return nil
}

// Disconnect sends a close frame and tears the connection down. It is safe
// to call more than once.
func (c *Client) Disconnect() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn == nil {
			return
		}

		c.writeMu.Lock()
		_ = c.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		c.writeMu.Unlock()
		_ = c.conn.Close()
	})
}

// terminate releases the connection after the receive loop exits on its own.
func (c *Client) terminate() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func isDone(done chan struct{}) bool {
	select {
	case <-done:
		return true
	default:
		return false
	}
}
