package fishaudio

import (
	"encoding/base64"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Wire events exchanged with the vendor endpoint.
const (
	eventStart  = "start"
	eventText   = "text"
	eventFlush  = "flush"
	eventStop   = "stop"
	eventAudio  = "audio"
	eventFinish = "finish"
	eventLog    = "log"
)

// prosody carries speech shaping parameters in the start request.
type prosody struct {
	Speed  float64 `msgpack:"speed"`
	Volume int     `msgpack:"volume"`
}

// startRequest is the request payload of the start event.
type startRequest struct {
	Text        string  `msgpack:"text"`
	Latency     string  `msgpack:"latency"`
	Format      string  `msgpack:"format"`
	Temperature float64 `msgpack:"temperature"`
	TopP        float64 `msgpack:"top_p"`
	Prosody     prosody `msgpack:"prosody"`
	ReferenceID string  `msgpack:"reference_id,omitempty"`
}

// message is one framed vendor message. Every frame is a msgpack-encoded map
// keyed by event; the remaining fields are event-specific.
type message struct {
	Event   string        `msgpack:"event"`
	Request *startRequest `msgpack:"request,omitempty"`
	Text    string        `msgpack:"text,omitempty"`
	// Audio is raw bytes or a base64 string depending on the vendor's mood;
	// audioBytes normalizes both.
	Audio   interface{} `msgpack:"audio,omitempty"`
	Message string      `msgpack:"message,omitempty"`
}

func encodeMessage(m *message) ([]byte, error) {
	data, err := msgpack.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s frame: %w", m.Event, err)
	}
	return data, nil
}

func decodeMessage(data []byte) (*message, error) {
	var m message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode vendor frame: %w", err)
	}
	return &m, nil
}

// audioBytes extracts the audio payload of an audio event, decoding base64
// when the vendor sends the chunk as a string.
func (m *message) audioBytes() ([]byte, error) {
	switch chunk := m.Audio.(type) {
	case nil:
		return nil, nil
	case []byte:
		return chunk, nil
	case string:
		decoded, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 audio chunk: %w", err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("unexpected audio payload type %T", m.Audio)
	}
}
