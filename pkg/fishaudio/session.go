// Package fishaudio implements the Fish Audio live TTS session protocol:
// msgpack-framed events over a WebSocket, one ephemeral session per request.
package fishaudio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultEndpoint is the vendor's live synthesis endpoint.
const DefaultEndpoint = "wss://api.fish.audio/v1/tts/live"

// DefaultReceiveTimeout bounds the whole audio receive loop.
const DefaultReceiveTimeout = 30 * time.Second

// State tracks the per-request session lifecycle.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateSessionStarted
	StateStreamingText
	StateAwaitingAudio
	StateComplete
	StateTimedOut
	StateFailed
)

// String returns a readable state name for logs.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateSessionStarted:
		return "session-started"
	case StateStreamingText:
		return "streaming-text"
	case StateAwaitingAudio:
		return "awaiting-audio"
	case StateComplete:
		return "complete"
	case StateTimedOut:
		return "timed-out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Config holds vendor connection and synthesis parameters.
type Config struct {
	Key         string
	ReferenceID string
	Model       string // e.g. "speech-1.5"
	Latency     string
	Format      string // vendor-native stream format, e.g. "opus"
	Temperature float64
	TopP        float64
	Speed       float64
	Volume      int

	// Endpoint overrides DefaultEndpoint (ws:// in tests).
	Endpoint string
	// ReceiveTimeout overrides DefaultReceiveTimeout.
	ReceiveTimeout time.Duration
}

// Result is the outcome of one vendor session.
type Result struct {
	// Audio is the received chunks concatenated in receipt order.
	// On a timed-out session it holds whatever partial audio was buffered.
	Audio []byte
	State State
}

// ErrConnect means the secure socket to the vendor could not be established.
var ErrConnect = errors.New("fishaudio: vendor connection failed")

// Client runs ephemeral synthesis sessions against the vendor endpoint.
type Client struct {
	cfg    Config
	dialer *websocket.Dialer
}

// NewClient creates a vendor session client.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.ReceiveTimeout <= 0 {
		cfg.ReceiveTimeout = DefaultReceiveTimeout
	}
	if cfg.Model == "" {
		cfg.Model = "speech-1.5"
	}
	if cfg.Latency == "" {
		cfg.Latency = "normal"
	}
	if cfg.Format == "" {
		cfg.Format = "opus"
	}
	return &Client{
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
	}
}

// Synthesize runs one full session: connect, start, stream the text, stop,
// then collect audio frames until a finish event or the receive timeout.
func (c *Client) Synthesize(ctx context.Context, text string) (*Result, error) {
	state := StateConnecting

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.Key)

	url := fmt.Sprintf("%s?model=%s", c.cfg.Endpoint, c.cfg.Model)
	conn, resp, err := c.dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			slog.Warn("FishAudio: handshake rejected", "status", resp.StatusCode)
		}
		return &Result{State: StateFailed}, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	defer conn.Close()

	if err := c.send(conn, &message{
		Event: eventStart,
		Request: &startRequest{
			Text:        "",
			Latency:     c.cfg.Latency,
			Format:      c.cfg.Format,
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
			Prosody:     prosody{Speed: c.cfg.Speed, Volume: c.cfg.Volume},
			ReferenceID: c.cfg.ReferenceID,
		},
	}); err != nil {
		return &Result{State: StateFailed}, err
	}
	state = StateSessionStarted

	// One text message with a trailing space, then an immediate stop.
	// No incremental streaming is needed for this use case.
	if err := c.send(conn, &message{Event: eventText, Text: text + " "}); err != nil {
		return &Result{State: StateFailed}, err
	}
	state = StateStreamingText

	if err := c.send(conn, &message{Event: eventStop}); err != nil {
		return &Result{State: StateFailed}, err
	}
	state = StateAwaitingAudio

	result := c.collectAudio(conn)
	slog.Debug("FishAudio: session finished",
		"state", result.State.String(), "bytes", len(result.Audio), "from", state.String())
	return result, nil
}

func (c *Client) send(conn *websocket.Conn, m *message) error {
	data, err := encodeMessage(m)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("failed to send %s frame: %w", m.Event, err)
	}
	return nil
}

// collectAudio reads frames until finish, the overall receive deadline, or a
// closed connection. Audio chunks are appended in receipt order.
func (c *Client) collectAudio(conn *websocket.Conn) *Result {
	deadline := time.Now().Add(c.cfg.ReceiveTimeout)
	_ = conn.SetReadDeadline(deadline)

	var audio []byte
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				// No finish frame arrived in time; the buffer may be partial.
				slog.Warn("FishAudio: receive timed out", "buffered_bytes", len(audio))
				return &Result{Audio: audio, State: StateTimedOut}
			}
			// The vendor closed the conversation without a finish frame.
			// Keep what was buffered rather than discarding a usable tail.
			slog.Warn("FishAudio: connection closed before finish",
				"error", err, "buffered_bytes", len(audio))
			return &Result{Audio: audio, State: StateComplete}
		}

		m, err := decodeMessage(data)
		if err != nil {
			slog.Warn("FishAudio: dropping undecodable frame", "error", err)
			continue
		}

		switch m.Event {
		case eventAudio:
			chunk, err := m.audioBytes()
			if err != nil {
				slog.Warn("FishAudio: dropping audio chunk", "error", err)
				continue
			}
			audio = append(audio, chunk...)
		case eventFinish:
			return &Result{Audio: audio, State: StateComplete}
		case eventLog:
			slog.Debug("FishAudio: vendor log", "message", m.Message)
		}
	}
}
