package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the optional TOML configuration file. Flags given
// on the command line override whatever the file says.
type fileConfig struct {
	Port           int           `toml:"port"`
	DBPath         string        `toml:"db_path"`
	TempDir        string        `toml:"temp_dir"`
	VADModelPath   string        `toml:"vad_model_path"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	Weights        weightsConfig `toml:"weights"`
}

type weightsConfig struct {
	Accuracy  float64 `toml:"accuracy"`
	Trend     float64 `toml:"trend"`
	Stability float64 `toml:"stability"`
	Range     float64 `toml:"range"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Port:           8080,
		DBPath:         "tonegrade.sqlite3",
		TempDir:        os.TempDir(),
		AllowedOrigins: []string{"*"},
		Weights:        weightsConfig{Accuracy: 0.4, Trend: 0.3, Stability: 0.2, Range: 0.1},
	}
}

// loadFileConfig overlays the TOML file at path onto the defaults.
// Fields absent from the file keep their default values.
func loadFileConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}
