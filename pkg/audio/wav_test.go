package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeWAV builds a minimal RIFF/WAVE stream for tests.
func encodeWAV(format, channels uint16, sampleRate uint32, bits uint16, samples []int16) []byte {
	var pcm bytes.Buffer
	for _, s := range samples {
		binary.Write(&pcm, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+pcm.Len()))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, format)
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	byteRate := sampleRate * uint32(channels) * uint32(bits) / 8
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, channels*bits/8)
	binary.Write(&buf, binary.LittleEndian, bits)

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(pcm.Len()))
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768, 7, 8, 9}
	data := encodeWAV(1, 2, 44100, 16, samples)

	clip, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 44100, clip.SampleRate)
	assert.Equal(t, 2, clip.Channels)
	assert.Equal(t, samples, clip.Samples)
}

func TestDecode_Rejections(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"too small", []byte("RIFF")},
		{"not riff", bytes.Repeat([]byte{0}, 64)},
		{"float format", encodeWAV(3, 1, 44100, 16, []int16{1, 2})},
		{"8 bit", encodeWAV(1, 1, 44100, 8, []int16{1, 2})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestClipDuration(t *testing.T) {
	clip := &Clip{SampleRate: 44100, Channels: 2, Samples: make([]int16, 44100*2)}
	assert.InDelta(t, 1.0, clip.Duration(), 1e-9)
}
