// Package audio plays WAV artifacts on a selectable output device.
package audio

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Clip is decoded 16-bit PCM audio with interleaved channel samples.
type Clip struct {
	SampleRate int
	Channels   int
	Samples    []int16
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 || c.Channels == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.Channels) / float64(c.SampleRate)
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	clip, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return clip, nil
}

// Decode parses a RIFF/WAVE byte stream. Only 16-bit PCM is supported.
func Decode(data []byte) (*Clip, error) {
	if len(data) < 44 {
		return nil, fmt.Errorf("too small to be a valid WAV")
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		format     uint16
		channels   uint16
		sampleRate uint32
		bits       uint16
		pcm        []byte
	)

	// Walk the chunk list; fmt and data can appear in any order.
	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("truncated fmt chunk")
			}
			format = binary.LittleEndian.Uint16(data[body : body+2])
			channels = binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate = binary.LittleEndian.Uint32(data[body+4 : body+8])
			bits = binary.LittleEndian.Uint16(data[body+14 : body+16])
		case "data":
			pcm = data[body : body+chunkSize]
		}

		pos = body + chunkSize
		if pos%2 != 0 {
			pos++
		}
	}

	if sampleRate == 0 || pcm == nil {
		return nil, fmt.Errorf("missing fmt or data chunk")
	}
	if format != 1 || bits != 16 {
		return nil, fmt.Errorf("unsupported encoding (format %d, %d bits); need 16-bit PCM", format, bits)
	}
	if channels == 0 {
		return nil, fmt.Errorf("zero channels")
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
	}
	return &Clip{
		SampleRate: int(sampleRate),
		Channels:   int(channels),
		Samples:    samples,
	}, nil
}
