package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ENGINE_BUFFER", "")
	t.Setenv("DEPTH_LEVELS", "")

	cfg := Load()
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, defaultEngineBuffer, cfg.EngineBuffer)
	assert.Equal(t, defaultDepthLevels, cfg.DepthLevels)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ENGINE_BUFFER", "7")
	t.Setenv("DEPTH_LEVELS", "3")

	cfg := Load()
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.Equal(t, 7, cfg.EngineBuffer)
	assert.Equal(t, 3, cfg.DepthLevels)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouting")
	t.Setenv("ENGINE_BUFFER", "-2")
	t.Setenv("DEPTH_LEVELS", "many")

	cfg := Load()
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, defaultEngineBuffer, cfg.EngineBuffer)
	assert.Equal(t, defaultDepthLevels, cfg.DepthLevels)
}
