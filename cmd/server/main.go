package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/speechcoach/tonegrade/pkg/models"
	"github.com/speechcoach/tonegrade/pkg/tonegrade"
	"github.com/speechcoach/tonegrade/pkg/utils"
)

var (
	configPath     string
	port           int
	dbPath         string
	tempDir        string
	vadModelPath   string
	allowedOrigins string
)

func init() {
	flag.StringVar(&configPath, "config", getEnvOrDefault("TONEGRADE_CONFIG", ""), "Path to TOML config file")
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("TONEGRADE_DB_PATH", "tonegrade.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("TONEGRADE_TEMP_DIR", os.TempDir()), "Temporary directory for uploads")
	flag.StringVar(&vadModelPath, "vad-model", getEnvOrDefault("TONEGRADE_VAD_MODEL", ""), "Path to trained VAD model (optional)")
	flag.StringVar(&allowedOrigins, "origins", "", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	config, err := loadFileConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags set explicitly on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			config.Port = port
		case "db":
			config.DBPath = dbPath
		case "temp":
			config.TempDir = tempDir
		case "vad-model":
			config.VADModelPath = vadModelPath
		case "origins":
			config.AllowedOrigins = splitOrigins(allowedOrigins)
		}
	})

	if err := utils.MakeDir(config.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}

	service, err := tonegrade.NewService(
		tonegrade.WithDBPath(config.DBPath),
		tonegrade.WithVADModelPath(config.VADModelPath),
		tonegrade.WithWeights(models.Weights{
			Accuracy:  config.Weights.Accuracy,
			Trend:     config.Weights.Trend,
			Stability: config.Weights.Stability,
			Range:     config.Weights.Range,
		}),
	)
	if err != nil {
		log.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, &config)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func splitOrigins(value string) []string {
	if value == "" || value == "*" {
		return []string{"*"}
	}
	origins := strings.Split(value, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}
