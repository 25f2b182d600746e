package domain

import (
	"encoding/json"
	"time"
)

// Clip is a persisted, classified mention that passed the relevance gate
type Clip struct {
	ID             int64
	URL            string
	ExternalID     string
	Title          string
	Content        string
	SourceName     string
	SourceType     SourceType
	PublishedAt    *time.Time
	DiscoveredAt   time.Time
	Bucket         Bucket
	DurationSecs   int
	Transcript     string
	ThumbnailPath  string
	LocationID     *int64
	Classification Classification
	RawPayload     json.RawMessage
}

// NewClip builds a clip from the raw item and its classification
func NewClip(item RawItem, c Classification) *Clip {
	return &Clip{
		URL:            item.URL,
		ExternalID:     item.ExternalID,
		Title:          item.Title,
		Content:        item.Content,
		SourceName:     item.SourceName,
		SourceType:     item.SourceType,
		PublishedAt:    item.PublishedAt,
		Bucket:         item.Bucket,
		DurationSecs:   item.DurationSecs,
		Classification: c,
		RawPayload:     item.RawPayload,
	}
}
