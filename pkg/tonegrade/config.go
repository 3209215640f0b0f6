package tonegrade

import "github.com/speechcoach/tonegrade/pkg/models"

// Config is assembled once at startup and never mutated afterwards.
type Config struct {
	DBPath       string
	VADModelPath string
	Weights      models.Weights
	Logger       Logger
	Storage      Storage
}

type Option func(*Config)

func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithVADModelPath points at a trained VAD artifact. An empty path, or a
// missing/corrupt artifact, leaves the energy-threshold method in place.
func WithVADModelPath(path string) Option {
	return func(c *Config) {
		c.VADModelPath = path
	}
}

func WithWeights(w models.Weights) Option {
	return func(c *Config) {
		c.Weights = w
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func defaultConfig() *Config {
	return &Config{
		DBPath:  "tonegrade.sqlite3",
		Weights: models.Weights{Accuracy: 0.4, Trend: 0.3, Stability: 0.2, Range: 0.1},
	}
}
