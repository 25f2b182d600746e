package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/gofrs/flock"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/dcwatch/pkg/config"
	"github.com/umputun/dcwatch/pkg/content"
	"github.com/umputun/dcwatch/pkg/domain"
	"github.com/umputun/dcwatch/pkg/geo"
	"github.com/umputun/dcwatch/pkg/llm"
	"github.com/umputun/dcwatch/pkg/notify"
	"github.com/umputun/dcwatch/pkg/pipeline"
	"github.com/umputun/dcwatch/pkg/repository"
	"github.com/umputun/dcwatch/pkg/source"
	"github.com/umputun/dcwatch/pkg/thumbnail"
	"github.com/umputun/dcwatch/pkg/transcript"
	"github.com/umputun/dcwatch/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" description:"configuration file, defaults only if not set"`

	LLMKey      string `long:"llm-key" env:"LLM_API_KEY" description:"LLM API key, overrides config"`
	YouTubeKey  string `long:"youtube-key" env:"YOUTUBE_API_KEY" description:"YouTube Data API key, overrides config"`
	GeocodioKey string `long:"geocodio-key" env:"GEOCODIO_API_KEY" description:"Geocodio API key, overrides config"`
	NtfyTopic   string `long:"ntfy-topic" env:"NTFY_TOPIC" description:"ntfy topic URL, overrides config"`

	// common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	if opts.NoColor {
		color.NoColor = true
	}
	SetupLog(opts.Debug, opts.LLMKey, opts.YouTubeKey, opts.GeocodioKey, opts.NtfyTopic)
	log.Printf("[INFO] starting dcwatch version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()
	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
	log.Print("[INFO] shutdown complete")
}

func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(cfg, opts)
	SetupLog(opts.Debug, cfg.LLM.APIKey, cfg.Sources.YouTube.APIKey, cfg.Geocoder.APIKey, cfg.Notify.NtfyTopic)

	lock := flock.New(cfg.Database.LockFile)
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another instance running, lock %s is held", cfg.Database.LockFile)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("[WARN] failed to release lock: %v", err)
		}
	}()

	repos, err := repository.NewRepositories(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := repos.Close(); err != nil {
			log.Printf("[WARN] failed to close database: %v", err)
		}
	}()

	thumbs := thumbnail.NewCache(cfg.Thumbnails.Dir, cfg.Thumbnails.Timeout)
	proc := pipeline.NewProcessor(pipelineConfig(cfg, repos, thumbs))

	sched := pipeline.NewScheduler(proc, pipeline.SchedulerConfig{
		Mode:          cfg.Schedule.Mode,
		PollInterval:  cfg.Schedule.PollInterval,
		CheckInterval: cfg.Schedule.CheckInterval,
		RunHours:      cfg.Schedule.RunHours,
		Location:      cfg.Location(),
	})
	sched.Start(ctx)
	defer sched.Stop()

	srv := server.New(server.Params{
		Config:        cfg,
		Stats:         statsProvider{clips: repos.Clip, locations: repos.Location, runs: repos.Run},
		Scheduler:     sched,
		ThumbnailsDir: thumbs.Dir(),
		Version:       revision,
		Debug:         opts.Debug,
	})
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// applyOverrides sets credentials passed by flags or env over the file values
func applyOverrides(cfg *config.Config, opts Opts) {
	if opts.LLMKey != "" {
		cfg.LLM.APIKey = opts.LLMKey
	}
	if opts.YouTubeKey != "" {
		cfg.Sources.YouTube.APIKey = opts.YouTubeKey
	}
	if opts.GeocodioKey != "" {
		cfg.Geocoder.APIKey = opts.GeocodioKey
	}
	if opts.NtfyTopic != "" {
		cfg.Notify.NtfyTopic = opts.NtfyTopic
	}
	if cfg.LLM.APIKey == "" {
		log.Printf("[WARN] no LLM API key, classification disabled and no mention will be saved")
	}
	if cfg.Geocoder.APIKey == "" {
		log.Printf("[INFO] no geocoder API key, locations saved without coordinates")
	}
}

// pipelineConfig builds processor dependencies from configuration
func pipelineConfig(cfg *config.Config, repos *repository.Repositories, thumbs *thumbnail.Cache) pipeline.Config {
	res := pipeline.Config{
		Fetchers:           makeFetchers(cfg),
		Store:              repos.Store(),
		Classifier:         llm.NewClassifier(cfg.LLM),
		Resolver:           geo.NewResolver(geo.NewGeocodio(cfg.Geocoder.APIKey, cfg.Geocoder.Endpoint, cfg.Geocoder.Timeout)),
		Thumbnails:         thumbs,
		Notifier:           notify.NewService(cfg.Notify.NtfyTopic, cfg.Notify.Timeout),
		RelevanceThreshold: cfg.LLM.RelevanceThreshold,
		ExtractMinLength:   cfg.Extraction.MinTextLength,
	}
	if !cfg.Transcript.Disabled {
		res.Transcriber = transcript.New(transcript.Params{Language: cfg.Transcript.Language, Timeout: cfg.Transcript.Timeout})
	}
	if cfg.Extraction.Enabled {
		res.Extractor = content.NewHTTPExtractor(cfg.Extraction.Timeout)
	}
	return res
}

// makeFetchers returns enabled sources, youtube is skipped without an API key
func makeFetchers(cfg *config.Config) []source.Fetcher {
	var res []source.Fetcher
	src := cfg.Sources

	if !src.News.Disabled {
		res = append(res, source.NewNews(source.NewsParams{
			Endpoint:  src.News.Endpoint,
			Queries:   src.News.Queries,
			Timeout:   src.Timeout,
			RateLimit: src.News.RateLimit,
		}))
	}

	switch {
	case src.YouTube.Disabled:
	case src.YouTube.APIKey == "":
		log.Printf("[INFO] no YouTube API key, video search disabled")
	default:
		res = append(res, source.NewYouTube(source.YouTubeParams{
			APIKey:   src.YouTube.APIKey,
			Endpoint: src.YouTube.Endpoint,
			Buckets: []source.BucketQueries{
				{Bucket: domain.BucketNewsClip, Queries: src.YouTube.NewsClips},
				{Bucket: domain.BucketPublicMeeting, Queries: src.YouTube.PublicMeeting},
			},
			Window:    src.YouTube.Window,
			MaxPages:  src.YouTube.MaxPages,
			Timeout:   src.Timeout,
			RateLimit: src.YouTube.RateLimit,
		}))
	}

	if !src.Bluesky.Disabled {
		res = append(res, source.NewBluesky(source.BlueskyParams{
			Endpoint:  src.Bluesky.Endpoint,
			Queries:   src.Bluesky.Queries,
			Limit:     src.Bluesky.Limit,
			Timeout:   src.Timeout,
			RateLimit: src.Bluesky.RateLimit,
		}))
	}

	names := make([]string, 0, len(res))
	for _, f := range res {
		names = append(names, f.Name())
	}
	log.Printf("[INFO] sources enabled: %v", names)
	return res
}

// statsProvider joins repository counters for the status endpoint
type statsProvider struct {
	clips     *repository.ClipRepository
	locations *repository.LocationRepository
	runs      *repository.RunRepository
}

func (s statsProvider) LastRun(ctx context.Context) (*domain.CycleStats, error) {
	return s.runs.LastRun(ctx)
}

func (s statsProvider) CountClips(ctx context.Context) (int, error) {
	return s.clips.CountClips(ctx)
}

func (s statsProvider) CountLocations(ctx context.Context) (int, error) {
	return s.locations.CountLocations(ctx)
}

// SetupLog configures logger, secrets are masked in the output
func SetupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	var secrets []string
	for _, s := range secs {
		if s != "" {
			secrets = append(secrets, s)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
