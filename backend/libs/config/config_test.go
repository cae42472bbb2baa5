package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	HTTP struct {
		Port string `yaml:"port" env:"SAMPLE_HTTP_PORT"`
	} `yaml:"http"`
	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`
	Rate     float64       `yaml:"rate" env:"SAMPLE_RATE"`
	Timeout  time.Duration `yaml:"timeout" env:"SAMPLE_TIMEOUT"`
	Origins  []string      `yaml:"origins" env:"SAMPLE_ORIGINS"`
	Debug    bool          `yaml:"debug" env:"SAMPLE_DEBUG"`
	Internal string        `env:"-"`
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: \"9000\"\nredis:\n  addr: cache:6379\n  db: 2\nrate: 1.5\n"), 0o600))

	t.Setenv("SAMPLE_RATE", "2.25")
	t.Setenv("REDIS_DB", "4")

	var cfg sampleConfig
	require.NoError(t, LoadConfigFile(path, &cfg))

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 4, cfg.Redis.DB)
	assert.Equal(t, 2.25, cfg.Rate)
}

func TestLoadConfigEnvTypes(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")
	t.Setenv("SAMPLE_TIMEOUT", "1500ms")
	t.Setenv("SAMPLE_ORIGINS", "a.example, b.example,,")
	t.Setenv("SAMPLE_DEBUG", "true")
	t.Setenv("INTERNAL", "ignored")

	var cfg sampleConfig
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"a.example", "b.example"}, cfg.Origins)
	assert.True(t, cfg.Debug)
	assert.Empty(t, cfg.Internal)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	var cfg sampleConfig
	assert.Error(t, LoadConfigFile("", nil))
	assert.Error(t, LoadConfigFile("", cfg))

	t.Setenv("SAMPLE_RATE", "not-a-number")
	err := LoadConfigFile("", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAMPLE_RATE")

	assert.Error(t, LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))
}
