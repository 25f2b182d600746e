package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// schedule modes
const (
	ScheduleInterval = "interval"
	ScheduleHours    = "hours"
)

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=Health and status server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:dcwatch.db?cache=shared&mode=rwc&_txlock=immediate,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=4,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=2,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
		LockFile        string `yaml:"lock_file" json:"lock_file" jsonschema:"default=dcwatch.lock,description=Lock file preventing concurrent workers"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Ingestion cycle schedule"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for mention classification"`

	Sources SourcesConfig `yaml:"sources" json:"sources" jsonschema:"description=Content sources"`

	Transcript TranscriptConfig `yaml:"transcript" json:"transcript" jsonschema:"description=Video transcript retrieval"`

	Geocoder GeocoderConfig `yaml:"geocoder" json:"geocoder" jsonschema:"description=Geocoding service"`

	Thumbnails ThumbnailsConfig `yaml:"thumbnails" json:"thumbnails" jsonschema:"description=Local thumbnail cache"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Article content extraction"`

	Notify NotifyConfig `yaml:"notify" json:"notify" jsonschema:"description=Push notifications"`
}

// ScheduleConfig defines when ingestion cycles run
type ScheduleConfig struct {
	Mode          string        `yaml:"mode" json:"mode" jsonschema:"default=hours,enum=hours,enum=interval,description=Run on fixed hours of the day or on a fixed interval"`
	PollInterval  time.Duration `yaml:"poll_interval" json:"poll_interval" jsonschema:"default=6h,description=Cycle interval in interval mode"`
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval" jsonschema:"default=5m,description=How often to check the clock in hours mode"`
	RunHours      []int         `yaml:"run_hours" json:"run_hours" jsonschema:"description=Hours of the day (0-23) to run in hours mode"`
	Timezone      string        `yaml:"timezone" json:"timezone" jsonschema:"default=America/New_York,description=Timezone of run_hours"`
}

// LLMConfig holds LLM configuration for mention classification
type LLMConfig struct {
	Endpoint           string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://api.openai.com/v1,description=OpenAI-compatible API endpoint"`
	APIKey             string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model              string        `yaml:"model" json:"model" jsonschema:"default=gpt-4o-mini,description=Model name"`
	Temperature        float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.2,description=Temperature for response generation"`
	MaxTokens          int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=1024,description=Maximum tokens in response"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Request timeout"`
	UseJSONMode        bool          `yaml:"use_json_mode" json:"use_json_mode" jsonschema:"default=false,description=Use JSON response format (not all models support this)"`
	RelevanceThreshold int           `yaml:"relevance_threshold" json:"relevance_threshold" jsonschema:"default=7,minimum=1,maximum=10,description=Minimum relevance score to persist a mention"`
}

// SourcesConfig holds settings of all content sources
type SourcesConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP timeout for source requests"`
	News    NewsConfig    `yaml:"news" json:"news" jsonschema:"description=Google News RSS search"`
	YouTube YouTubeConfig `yaml:"youtube" json:"youtube" jsonschema:"description=YouTube Data API search"`
	Bluesky BlueskyConfig `yaml:"bluesky" json:"bluesky" jsonschema:"description=Bluesky post search"`
}

// NewsConfig is the news search source
type NewsConfig struct {
	Disabled  bool          `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Disable the source"`
	Endpoint  string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://news.google.com/rss/search,description=RSS search endpoint"`
	Queries   []string      `yaml:"queries" json:"queries" jsonschema:"description=Search queries"`
	RateLimit time.Duration `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=1s,description=Minimum delay between requests"`
}

// YouTubeConfig is the video search source
type YouTubeConfig struct {
	Disabled      bool          `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Disable the source"`
	APIKey        string        `yaml:"api_key" json:"api_key" jsonschema:"description=YouTube Data API key, source is skipped when empty"`
	Endpoint      string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://www.googleapis.com/youtube/v3,description=Data API base URL"`
	Window        time.Duration `yaml:"window" json:"window" jsonschema:"default=6h,description=Only videos published within this window"`
	MaxPages      int           `yaml:"max_pages" json:"max_pages" jsonschema:"default=3,minimum=1,description=Maximum result pages per query"`
	RateLimit     time.Duration `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=200ms,description=Minimum delay between requests"`
	NewsClips     []string      `yaml:"news_clips" json:"news_clips" jsonschema:"description=Queries for short news clips"`
	PublicMeeting []string      `yaml:"public_meetings" json:"public_meetings" jsonschema:"description=Queries for long public meeting recordings"`
}

// BlueskyConfig is the social post search source
type BlueskyConfig struct {
	Disabled  bool          `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Disable the source"`
	Endpoint  string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://public.api.bsky.app,description=AppView base URL"`
	Queries   []string      `yaml:"queries" json:"queries" jsonschema:"description=Search queries"`
	Limit     int           `yaml:"limit" json:"limit" jsonschema:"default=25,minimum=1,maximum=100,description=Posts per query"`
	RateLimit time.Duration `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=500ms,description=Minimum delay between requests"`
}

// TranscriptConfig holds caption retrieval settings
type TranscriptConfig struct {
	Disabled bool          `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=Skip transcript retrieval"`
	Language string        `yaml:"language" json:"language" jsonschema:"default=en,description=Preferred caption language"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Timeout per request"`
}

// GeocoderConfig holds geocoding service settings
type GeocoderConfig struct {
	APIKey   string        `yaml:"api_key" json:"api_key" jsonschema:"description=Geocodio API key, geocoding is skipped when empty"`
	Endpoint string        `yaml:"endpoint" json:"endpoint" jsonschema:"default=https://api.geocod.io/v1.7,description=Geocodio base URL"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Request timeout"`
}

// ThumbnailsConfig holds thumbnail cache settings
type ThumbnailsConfig struct {
	Dir     string        `yaml:"dir" json:"dir" jsonschema:"default=public/thumbnails,description=Directory for cached thumbnails"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Download timeout"`
}

// ExtractionConfig holds content extraction settings
type ExtractionConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Extract article text for non-video mentions"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Extraction timeout per article"`
	MinTextLength int           `yaml:"min_text_length" json:"min_text_length" jsonschema:"default=300,description=Extract only when item content is shorter than this"`
}

// NotifyConfig holds push notification settings
type NotifyConfig struct {
	NtfyTopic string        `yaml:"ntfy_topic" json:"ntfy_topic" jsonschema:"description=ntfy topic URL, notifications disabled when empty"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Request timeout"`
}

// default search queries
var (
	defaultNewsQueries = []string{
		"data center zoning", "data center permit", "data center opposition", "data center protest",
		"hyperscale data center", "data center construction", "data center environmental",
	}
	defaultClipQueries = []string{
		"data center zoning hearing", "data center community opposition", "data center town hall",
		"data center environmental impact", "hyperscale data center announcement",
	}
	defaultMeetingQueries = []string{
		"data center planning commission meeting", "data center board of supervisors",
		"data center public hearing", "data center city council meeting",
	}
	defaultBlueskyQueries = []string{
		"data center zoning", "data center opposition", "hyperscale data center", "data center protest",
	}
	defaultRunHours = []int{6, 12, 18, 0}
)

// Load reads configuration from a YAML file. Empty path means defaults only.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:dcwatch.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 4
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}
	if cfg.Database.LockFile == "" {
		cfg.Database.LockFile = "dcwatch.lock"
	}

	// schedule
	if cfg.Schedule.Mode == "" {
		cfg.Schedule.Mode = ScheduleHours
	}
	if cfg.Schedule.PollInterval == 0 {
		cfg.Schedule.PollInterval = 6 * time.Hour
	}
	if cfg.Schedule.CheckInterval == 0 {
		cfg.Schedule.CheckInterval = 5 * time.Minute
	}
	if len(cfg.Schedule.RunHours) == 0 {
		cfg.Schedule.RunHours = append([]int(nil), defaultRunHours...)
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "America/New_York"
	}

	// llm
	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.2
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 60 * time.Second
	}
	if cfg.LLM.RelevanceThreshold == 0 {
		cfg.LLM.RelevanceThreshold = 7
	}

	// sources
	if cfg.Sources.Timeout == 0 {
		cfg.Sources.Timeout = 30 * time.Second
	}
	if cfg.Sources.News.Endpoint == "" {
		cfg.Sources.News.Endpoint = "https://news.google.com/rss/search"
	}
	if len(cfg.Sources.News.Queries) == 0 {
		cfg.Sources.News.Queries = append([]string(nil), defaultNewsQueries...)
	}
	if cfg.Sources.News.RateLimit == 0 {
		cfg.Sources.News.RateLimit = time.Second
	}
	if cfg.Sources.YouTube.Endpoint == "" {
		cfg.Sources.YouTube.Endpoint = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.Sources.YouTube.Window == 0 {
		cfg.Sources.YouTube.Window = 6 * time.Hour
	}
	if cfg.Sources.YouTube.MaxPages == 0 {
		cfg.Sources.YouTube.MaxPages = 3
	}
	if cfg.Sources.YouTube.RateLimit == 0 {
		cfg.Sources.YouTube.RateLimit = 200 * time.Millisecond
	}
	if len(cfg.Sources.YouTube.NewsClips) == 0 {
		cfg.Sources.YouTube.NewsClips = append([]string(nil), defaultClipQueries...)
	}
	if len(cfg.Sources.YouTube.PublicMeeting) == 0 {
		cfg.Sources.YouTube.PublicMeeting = append([]string(nil), defaultMeetingQueries...)
	}
	if cfg.Sources.Bluesky.Endpoint == "" {
		cfg.Sources.Bluesky.Endpoint = "https://public.api.bsky.app"
	}
	if len(cfg.Sources.Bluesky.Queries) == 0 {
		cfg.Sources.Bluesky.Queries = append([]string(nil), defaultBlueskyQueries...)
	}
	if cfg.Sources.Bluesky.Limit == 0 {
		cfg.Sources.Bluesky.Limit = 25
	}
	if cfg.Sources.Bluesky.RateLimit == 0 {
		cfg.Sources.Bluesky.RateLimit = 500 * time.Millisecond
	}

	// enrichment
	if cfg.Transcript.Language == "" {
		cfg.Transcript.Language = "en"
	}
	if cfg.Transcript.Timeout == 0 {
		cfg.Transcript.Timeout = 30 * time.Second
	}
	if cfg.Geocoder.Endpoint == "" {
		cfg.Geocoder.Endpoint = "https://api.geocod.io/v1.7"
	}
	if cfg.Geocoder.Timeout == 0 {
		cfg.Geocoder.Timeout = 15 * time.Second
	}
	if cfg.Thumbnails.Dir == "" {
		cfg.Thumbnails.Dir = "public/thumbnails"
	}
	if cfg.Thumbnails.Timeout == 0 {
		cfg.Thumbnails.Timeout = 30 * time.Second
	}
	if cfg.Extraction.Timeout == 0 {
		cfg.Extraction.Timeout = 30 * time.Second
	}
	if cfg.Extraction.MinTextLength == 0 {
		cfg.Extraction.MinTextLength = 300
	}
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = 10 * time.Second
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	switch cfg.Schedule.Mode {
	case ScheduleHours:
		for _, h := range cfg.Schedule.RunHours {
			if h < 0 || h > 23 {
				return fmt.Errorf("schedule.run_hours must be within 0-23, got %d", h)
			}
		}
		if cfg.Schedule.CheckInterval < time.Second {
			return fmt.Errorf("schedule.check_interval must be at least 1 second")
		}
	case ScheduleInterval:
		if cfg.Schedule.PollInterval < time.Minute {
			return fmt.Errorf("schedule.poll_interval must be at least 1 minute")
		}
	default:
		return fmt.Errorf("schedule.mode must be %q or %q, got %q", ScheduleHours, ScheduleInterval, cfg.Schedule.Mode)
	}
	if _, err := time.LoadLocation(cfg.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}

	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.RelevanceThreshold < 1 || cfg.LLM.RelevanceThreshold > 10 {
		return fmt.Errorf("llm.relevance_threshold must be between 1 and 10")
	}

	if cfg.Sources.YouTube.MaxPages < 1 {
		return fmt.Errorf("sources.youtube.max_pages must be at least 1")
	}
	if cfg.Sources.Bluesky.Limit < 1 || cfg.Sources.Bluesky.Limit > 100 {
		return fmt.Errorf("sources.bluesky.limit must be between 1 and 100")
	}

	if cfg.Extraction.Enabled && cfg.Extraction.Timeout < time.Second {
		return fmt.Errorf("extraction timeout must be at least 1 second")
	}
	if cfg.Extraction.MinTextLength < 0 {
		return fmt.Errorf("extraction min_text_length must be non-negative")
	}

	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if topic := strings.TrimSpace(cfg.Notify.NtfyTopic); topic != "" && !strings.HasPrefix(topic, "http") {
		return fmt.Errorf("notify.ntfy_topic must be a full URL, got %q", topic)
	}

	return nil
}

// Location returns the timezone of scheduled hours
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
