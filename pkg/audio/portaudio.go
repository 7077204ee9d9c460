package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

func openPortAudioStream(dev Device, channels int, sampleRate float64, buf *[]int16) (outputStream, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}
	if dev.ID < 0 || dev.ID >= len(infos) {
		return nil, fmt.Errorf("%w: id %d", ErrDeviceNotFound, dev.ID)
	}

	params := portaudio.HighLatencyParameters(nil, infos[dev.ID])
	params.Output.Channels = channels
	params.SampleRate = sampleRate
	params.FramesPerBuffer = len(*buf) / channels

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream on %q: %w", dev.Name, err)
	}
	return stream, nil
}
