package fishaudio

import "tttsvm/pkg/config"

// SessionConfig maps the application's vendor settings onto a session Config.
func SessionConfig(c config.FishConfig) Config {
	return Config{
		Key:         c.Key,
		ReferenceID: c.ReferenceID,
		Model:       c.Model,
		Latency:     c.Latency,
		Format:      c.Format,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		Speed:       c.Speed,
		Volume:      c.Volume,
	}
}
