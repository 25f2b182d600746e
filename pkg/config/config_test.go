package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
server:
  listen: ":9090"
  timeout: 45s

schedule:
  mode: interval
  poll_interval: 2h

llm:
  endpoint: http://localhost:11434/v1
  model: llama3
  relevance_threshold: 6

sources:
  news:
    queries: ["data center rezoning"]
  youtube:
    api_key: yt-key
    window: 12h
    news_clips: ["data center news"]
  bluesky:
    disabled: true

geocoder:
  api_key: geo-key

thumbnails:
  dir: /tmp/thumbs
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, ScheduleInterval, cfg.Schedule.Mode)
		assert.Equal(t, 2*time.Hour, cfg.Schedule.PollInterval)
		assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.Endpoint)
		assert.Equal(t, "llama3", cfg.LLM.Model)
		assert.Equal(t, 6, cfg.LLM.RelevanceThreshold)
		assert.Equal(t, []string{"data center rezoning"}, cfg.Sources.News.Queries)
		assert.Equal(t, "yt-key", cfg.Sources.YouTube.APIKey)
		assert.Equal(t, 12*time.Hour, cfg.Sources.YouTube.Window)
		assert.Equal(t, []string{"data center news"}, cfg.Sources.YouTube.NewsClips)
		assert.Equal(t, defaultMeetingQueries, cfg.Sources.YouTube.PublicMeeting)
		assert.True(t, cfg.Sources.Bluesky.Disabled)
		assert.Equal(t, "geo-key", cfg.Geocoder.APIKey)
		assert.Equal(t, "/tmp/thumbs", cfg.Thumbnails.Dir)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "llm:\n  model: gpt-4o\n"))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, ScheduleHours, cfg.Schedule.Mode)
		assert.Equal(t, []int{6, 12, 18, 0}, cfg.Schedule.RunHours)
		assert.Equal(t, "America/New_York", cfg.Schedule.Timezone)
		assert.Equal(t, 5*time.Minute, cfg.Schedule.CheckInterval)
		assert.Equal(t, "gpt-4o", cfg.LLM.Model)
		assert.Equal(t, 7, cfg.LLM.RelevanceThreshold)
		assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
		assert.Len(t, cfg.Sources.News.Queries, 7)
		assert.Equal(t, 6*time.Hour, cfg.Sources.YouTube.Window)
		assert.Equal(t, 3, cfg.Sources.YouTube.MaxPages)
		assert.Equal(t, 25, cfg.Sources.Bluesky.Limit)
		assert.Equal(t, "https://api.geocod.io/v1.7", cfg.Geocoder.Endpoint)
		assert.Equal(t, "public/thumbnails", cfg.Thumbnails.Dir)
		assert.False(t, cfg.Extraction.Enabled)
		assert.Equal(t, "dcwatch.lock", cfg.Database.LockFile)
	})

	t.Run("no file uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.Endpoint)
		assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("TEST_LLM_KEY", "secret-key")
		cfg, err := Load(writeConfig(t, "llm:\n  api_key: ${TEST_LLM_KEY}\n"))
		require.NoError(t, err)
		assert.Equal(t, "secret-key", cfg.LLM.APIKey)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [unclosed"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("validation error", func(t *testing.T) {
		_, err := Load(writeConfig(t, "schedule:\n  run_hours: [6, 25]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validate config")
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", modify: func(*Config) {}},
		{name: "unknown mode", modify: func(c *Config) { c.Schedule.Mode = "cron" }, wantErr: "schedule.mode"},
		{name: "bad hour", modify: func(c *Config) { c.Schedule.RunHours = []int{-1} }, wantErr: "run_hours"},
		{name: "short poll interval", modify: func(c *Config) {
			c.Schedule.Mode = ScheduleInterval
			c.Schedule.PollInterval = time.Second
		}, wantErr: "poll_interval"},
		{name: "bad timezone", modify: func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		{name: "threshold too high", modify: func(c *Config) { c.LLM.RelevanceThreshold = 11 }, wantErr: "relevance_threshold"},
		{name: "bad temperature", modify: func(c *Config) { c.LLM.Temperature = 3 }, wantErr: "temperature"},
		{name: "bluesky limit", modify: func(c *Config) { c.Sources.Bluesky.Limit = 500 }, wantErr: "bluesky.limit"},
		{name: "ntfy topic not url", modify: func(c *Config) { c.Notify.NtfyTopic = "mytopic" }, wantErr: "ntfy_topic"},
		{name: "server timeout", modify: func(c *Config) { c.Server.Timeout = time.Millisecond }, wantErr: "server timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)
			err := validate(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	assert.Equal(t, "America/New_York", cfg.Location().String())

	cfg.Schedule.Timezone = "bad/zone"
	assert.Equal(t, time.UTC, cfg.Location())

	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":8080", listen)
	assert.Equal(t, 30*time.Second, timeout)
}
