// Package config loads and persists the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Hotkeys HotkeysConfig `yaml:"hotkeys"`
	Audio   AudioConfig   `yaml:"audio"`
	TTS     TTSConfig     `yaml:"tts"`
	Fish    FishConfig    `yaml:"fish"`
	Log     LogConfig     `yaml:"log"`
}

// HotkeysConfig holds the global hotkey bindings.
type HotkeysConfig struct {
	// Activation triggers clipboard-read-and-speak, e.g. "<ctrl>+x".
	Activation string `yaml:"activation"`
	// FloatingInput opens the floating text entry window. Empty disables it.
	FloatingInput string `yaml:"floating_input"`
	// Separator joins key tokens in the combination strings above.
	Separator string `yaml:"separator"`
}

// AudioConfig holds output device and volume settings.
type AudioConfig struct {
	// Device is the output device name as reported by the device list.
	Device string  `yaml:"device"`
	Volume float64 `yaml:"volume"`
}

// HTTPAPIConfig holds settings for the plain local HTTP TTS backend.
type HTTPAPIConfig struct {
	Address  string `yaml:"address"` // e.g. "http://127.0.0.1:10086/"
	Language string `yaml:"language"`
}

// TTSConfig holds synthesis settings.
type TTSConfig struct {
	Engine      string        `yaml:"engine"` // Options: windows-sapi, http-api, fish-bridge
	Voice       string        `yaml:"voice"`  // SAPI voice token id, empty for default
	HTTPAPI     HTTPAPIConfig `yaml:"http_api"`
	LocalDir    string        `yaml:"local_dir"`    // pre-recorded overrides, <text>.wav
	TempDir     string        `yaml:"temp_dir"`     // synthesis cache, <md5>.wav
	BypassCache bool          `yaml:"bypass_cache"` // delete and resynthesize on every request
}

// FishServerConfig holds the listen address of the local protocol bridge.
type FishServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// FishConfig holds Fish Audio vendor settings.
type FishConfig struct {
	Key         string           `yaml:"key"` // API key, falls back to FISH_AUDIO_API_KEY
	ReferenceID string           `yaml:"reference_id"`
	Model       string           `yaml:"model"`
	Latency     string           `yaml:"latency"`
	Format      string           `yaml:"format"` // vendor-native stream format
	Temperature float64          `yaml:"temperature"`
	TopP        float64          `yaml:"top_p"`
	Speed       float64          `yaml:"speed"`
	Volume      int              `yaml:"volume"`
	Server      FishServerConfig `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	TTS    LogSettings `yaml:"tts"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Hotkeys: HotkeysConfig{
			Activation:    "<ctrl>+x",
			FloatingInput: "<ctrl>+<alt>+t",
			Separator:     "+",
		},
		Audio: AudioConfig{
			Device: "",
			Volume: 1.0,
		},
		TTS: TTSConfig{
			Engine: "windows-sapi",
			HTTPAPI: HTTPAPIConfig{
				Address:  "http://127.0.0.1:10086/",
				Language: "ZH",
			},
			LocalDir:    "./local",
			TempDir:     "./temp",
			BypassCache: false,
		},
		Fish: FishConfig{
			ReferenceID: "",
			Model:       "speech-1.5",
			Latency:     "normal",
			Format:      "opus",
			Temperature: 0.7,
			TopP:        0.7,
			Speed:       1.0,
			Volume:      0,
			Server: FishServerConfig{
				Host: "127.0.0.1",
				Port: 10087,
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			TTS: LogSettings{
				Path:  "./logs/tts.log",
				Level: "INFO",
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save
// back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Load secrets from env if empty (fallback only, never saved back).
	if cfg.Fish.Key == "" {
		if key := os.Getenv("FISH_AUDIO_API_KEY"); key != "" {
			cfg.Fish.Key = key
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Audio.Volume < 0 {
		return fmt.Errorf("audio.volume must not be negative, got %v", c.Audio.Volume)
	}
	if c.Hotkeys.Separator == "" {
		return fmt.Errorf("hotkeys.separator must not be empty")
	}
	if c.Hotkeys.Activation == "" {
		return fmt.Errorf("hotkeys.activation must not be empty")
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Tttsvm Configuration
# --------------------
# Hotkey combinations are key tokens joined by the configured separator,
# e.g. "<ctrl>+x". Modifier tokens: <ctrl>, <alt>, <shift>, <win>.

`)
	data = append(header, data...)

	// Inject an options comment above the engine key.
	reEngine := regexp.MustCompile(`(?m)^(\s+)engine:`)
	data = reEngine.ReplaceAll(data, []byte("${1}# Options: windows-sapi, http-api, fish-bridge\n${1}engine:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}
