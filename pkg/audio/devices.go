package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// ErrDeviceNotFound means no output device matched the configured name.
var ErrDeviceNotFound = errors.New("audio: output device not found")

// Device identifies one host output device.
type Device struct {
	ID       int
	Name     string
	Channels int
}

// Initialize brings up the host audio API. Call once at startup; pair with
// Terminate at shutdown.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize audio host: %w", err)
	}
	return nil
}

// Terminate releases the host audio API.
func Terminate() {
	if err := portaudio.Terminate(); err != nil {
		slog.Warn("Audio: host terminate failed", "error", err)
	}
}

// OutputDevices lists devices that can play audio.
func OutputDevices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}
	var out []Device
	for i, info := range infos {
		if info.MaxOutputChannels < 1 {
			continue
		}
		out = append(out, Device{ID: i, Name: info.Name, Channels: info.MaxOutputChannels})
	}
	return out, nil
}

// FindOutput resolves a configured device name to a Device. An empty name
// selects the host default output. Matching is exact first, then
// case-insensitive substring.
func FindOutput(name string) (Device, error) {
	if name == "" {
		info, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return Device{}, fmt.Errorf("failed to query default output device: %w", err)
		}
		dev, err := deviceByName(info.Name)
		if err != nil {
			return Device{}, err
		}
		return dev, nil
	}
	return deviceByName(name)
}

func deviceByName(name string) (Device, error) {
	devices, err := OutputDevices()
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	lower := strings.ToLower(name)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), lower) {
			return d, nil
		}
	}
	return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}
