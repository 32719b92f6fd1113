package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	defaultEngineBuffer = 64
	defaultDepthLevels  = 10
)

type Config struct {
	LogLevel     zerolog.Level
	EngineBuffer int // command channel capacity
	DepthLevels  int // levels shown per side when printing the book
}

// Load pulls settings from a .env file if one is present, then from the
// environment, falling back to defaults. A missing .env is not an error.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:     zerolog.InfoLevel,
		EngineBuffer: defaultEngineBuffer,
		DepthLevels:  defaultDepthLevels,
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if level, err := zerolog.ParseLevel(v); err == nil {
			cfg.LogLevel = level
		}
	}
	if n, ok := positiveInt(os.Getenv("ENGINE_BUFFER")); ok {
		cfg.EngineBuffer = n
	}
	if n, ok := positiveInt(os.Getenv("DEPTH_LEVELS")); ok {
		cfg.DepthLevels = n
	}
	return cfg
}

func positiveInt(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
