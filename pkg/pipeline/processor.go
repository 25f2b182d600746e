// Package pipeline runs ingestion cycles: fetch candidates from all sources, skip known ones,
// enrich and classify the rest, persist the relevant mentions with their locations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/dcwatch/pkg/domain"
	"github.com/umputun/dcwatch/pkg/llm"
	"github.com/umputun/dcwatch/pkg/repository"
	"github.com/umputun/dcwatch/pkg/source"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/transcriber.go -pkg mocks -skip-ensure -fmt goimports . Transcriber
//go:generate moq -out mocks/classifier.go -pkg mocks -skip-ensure -fmt goimports . Classifier
//go:generate moq -out mocks/location_resolver.go -pkg mocks -skip-ensure -fmt goimports . LocationResolver
//go:generate moq -out mocks/thumbnail_cache.go -pkg mocks -skip-ensure -fmt goimports . ThumbnailCache
//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

// Store is the durable state used by the processor
type Store interface {
	ClipExists(ctx context.Context, url, externalID string) (bool, error)
	SaveClip(ctx context.Context, clip *domain.Clip, place domain.ResolvedPlace) error
	CreateRun(ctx context.Context, stats *domain.CycleStats) error
}

// Transcriber returns caption text of a video
type Transcriber interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Classifier classifies a single mention
type Classifier interface {
	Classify(ctx context.Context, req llm.Request) (*domain.Classification, error)
}

// LocationResolver normalizes and geocodes a classification place
type LocationResolver interface {
	Resolve(ctx context.Context, place domain.Place) (domain.ResolvedPlace, error)
}

// ThumbnailCache keeps local copies of video thumbnails
type ThumbnailCache interface {
	Ensure(ctx context.Context, externalID, remoteURL string) (string, error)
}

// Extractor retrieves full article text
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Notifier reports important mentions and cycle results
type Notifier interface {
	NotifyMention(ctx context.Context, clip *domain.Clip) error
	NotifyCycle(ctx context.Context, stats domain.CycleStats) error
}

// Config holds processor dependencies and parameters.
// Transcriber, Thumbnails, Extractor and Notifier are optional.
type Config struct {
	Fetchers           []source.Fetcher
	Store              Store
	Classifier         Classifier
	Resolver           LocationResolver
	Transcriber        Transcriber
	Thumbnails         ThumbnailCache
	Extractor          Extractor
	Notifier           Notifier
	RelevanceThreshold int
	ExtractMinLength   int // extract article text only when item content is shorter than this
	Now                func() time.Time
}

// Processor runs ingestion cycles, items are handled one by one
type Processor struct {
	Config
}

// NewProcessor makes processor with the provided configuration
func NewProcessor(cfg Config) *Processor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RelevanceThreshold <= 0 {
		cfg.RelevanceThreshold = 7
	}
	return &Processor{Config: cfg}
}

// RunCycle fetches all sources and processes every returned item. A failing item is logged and counted,
// it never stops the cycle. Canceled context stops the cycle before the next item.
func (p *Processor) RunCycle(ctx context.Context) domain.CycleStats {
	stats := domain.CycleStats{StartedAt: p.Now().UTC()}
	lgr.Printf("[INFO] ingestion cycle started")

	results := source.FetchAll(ctx, p.Fetchers)
	for _, r := range results {
		if r.Err != nil {
			sourceFailuresTotal.WithLabelValues(r.Source).Inc()
			continue
		}
		sourceItemsTotal.WithLabelValues(r.Source).Add(float64(len(r.Items)))
	}
	items := source.Items(results)
	stats.Fetched = len(items)

	for i, item := range items {
		if ctx.Err() != nil {
			lgr.Printf("[WARN] cycle interrupted, %d of %d items left", len(items)-i, len(items))
			break
		}
		outcome, err := p.safeProcessItem(ctx, item)
		if err != nil {
			lgr.Printf("[WARN] failed to process %s: %v", item.URL, err)
			outcome = outcomeError
		}
		itemsTotal.WithLabelValues(outcome).Inc()
		switch outcome {
		case outcomeProcessed:
			stats.Processed++
		case outcomeDuplicate:
			stats.SkippedDuplicate++
		case outcomeLowRelevance:
			stats.SkippedRelevance++
		case outcomeError:
			stats.Errors++
		}
	}

	stats.FinishedAt = p.Now().UTC()
	cycleDuration.Observe(stats.Duration().Seconds())
	lastCycleTimestamp.Set(float64(stats.FinishedAt.Unix()))
	lgr.Printf("[INFO] ingestion cycle completed in %v, fetched %d, processed %d, duplicates %d, low relevance %d, errors %d",
		stats.Duration().Round(time.Millisecond), stats.Fetched, stats.Processed, stats.SkippedDuplicate,
		stats.SkippedRelevance, stats.Errors)

	// cycle record and summary are written even if the cycle was interrupted
	finCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.Store.CreateRun(finCtx, &stats); err != nil {
		lgr.Printf("[WARN] failed to save cycle stats: %v", err)
	}
	if p.Notifier != nil {
		if err := p.Notifier.NotifyCycle(finCtx, stats); err != nil {
			lgr.Printf("[WARN] failed to send cycle notification: %v", err)
		}
	}
	return stats
}

// safeProcessItem converts a panic in item processing into an error
func (p *Processor) safeProcessItem(ctx context.Context, item domain.RawItem) (outcome string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			lgr.Printf("[DEBUG] panic stack: %s", debug.Stack())
			outcome, err = outcomeError, fmt.Errorf("panic: %v", rec)
		}
	}()
	return p.processItem(ctx, item)
}

// processItem runs a single item through dedup, enrichment, classification, gate and persistence.
// Only store failures are returned as errors, missing enrichments degrade the item.
func (p *Processor) processItem(ctx context.Context, item domain.RawItem) (string, error) {
	exists, err := p.Store.ClipExists(ctx, item.URL, item.ExternalID)
	if err != nil {
		return outcomeError, fmt.Errorf("check known item: %w", err)
	}
	if exists {
		return outcomeDuplicate, nil
	}

	transcript := p.transcript(ctx, item)
	item.Content = p.articleText(ctx, item)

	classification, err := p.Classifier.Classify(ctx, llm.Request{
		Title:       item.Title,
		Description: item.Content,
		SourceName:  item.SourceName,
		Transcript:  transcript,
		Bucket:      item.Bucket,
	})
	switch {
	case errors.Is(err, llm.ErrDisabled):
		lgr.Printf("[DEBUG] classification disabled, skip %s", item.URL)
	case errors.Is(err, llm.ErrInvalidClassification):
		lgr.Printf("[WARN] invalid classification for %s: %v", item.URL, err)
	case err != nil:
		lgr.Printf("[WARN] classification of %s failed: %v", item.URL, err)
	}
	if err != nil {
		classification = nil
	}

	if !ShouldPersist(classification, p.RelevanceThreshold) {
		if classification != nil {
			lgr.Printf("[DEBUG] skip %s, relevance %d below %d", item.URL, classification.RelevanceScore, p.RelevanceThreshold)
		}
		return outcomeLowRelevance, nil
	}

	clip := domain.NewClip(item, *classification)
	clip.Transcript = transcript
	clip.ThumbnailPath = p.thumbnail(ctx, item)

	place, err := p.Resolver.Resolve(ctx, classification.Location)
	if err != nil {
		return outcomeError, fmt.Errorf("resolve location: %w", err)
	}

	// location count and clip row are written together, a duplicate counts nothing
	if err := p.Store.SaveClip(ctx, clip, place); err != nil {
		if errors.Is(err, repository.ErrDuplicateClip) {
			return outcomeDuplicate, nil
		}
		return outcomeError, fmt.Errorf("save clip: %w", err)
	}
	lgr.Printf("[INFO] saved %s mention %q (%s, score %d, %s)", clip.SourceType, clip.Title,
		place.Key, classification.RelevanceScore, classification.Importance)

	if p.Notifier != nil && classification.Importance == domain.ImportanceHigh {
		if err := p.Notifier.NotifyMention(ctx, clip); err != nil {
			lgr.Printf("[WARN] failed to send notification for %s: %v", clip.URL, err)
		}
	}
	return outcomeProcessed, nil
}

func (p *Processor) transcript(ctx context.Context, item domain.RawItem) string {
	if p.Transcriber == nil || item.ExternalID == "" {
		return ""
	}
	text, err := p.Transcriber.Fetch(ctx, item.ExternalID)
	if err != nil {
		lgr.Printf("[DEBUG] no transcript for %s: %v", item.ExternalID, err)
		return ""
	}
	return text
}

// articleText returns extracted article text when the item has only a short snippet
func (p *Processor) articleText(ctx context.Context, item domain.RawItem) string {
	if p.Extractor == nil || item.ExternalID != "" || item.SourceType != domain.SourceNews ||
		utf8.RuneCountInString(item.Content) >= p.ExtractMinLength {
		return item.Content
	}
	text, err := p.Extractor.Extract(ctx, item.URL)
	if err != nil {
		lgr.Printf("[DEBUG] extraction of %s failed: %v", item.URL, err)
		return item.Content
	}
	if utf8.RuneCountInString(text) <= utf8.RuneCountInString(item.Content) {
		return item.Content
	}
	return text
}

func (p *Processor) thumbnail(ctx context.Context, item domain.RawItem) string {
	if p.Thumbnails == nil || item.ExternalID == "" || item.ThumbnailURL == "" {
		return ""
	}
	path, err := p.Thumbnails.Ensure(ctx, item.ExternalID, item.ThumbnailURL)
	if err != nil {
		lgr.Printf("[WARN] thumbnail for %s: %v", item.ExternalID, err)
		return ""
	}
	return path
}
