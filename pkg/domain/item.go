package domain

import (
	"encoding/json"
	"time"
)

// SourceType identifies the kind of upstream an item came from
type SourceType string

const (
	SourceNews    SourceType = "news"
	SourceYouTube SourceType = "youtube"
	SourceBluesky SourceType = "bluesky"
)

// Bucket is the video category, drives duration filtering and prompt choice
type Bucket string

const (
	BucketNone          Bucket = ""
	BucketNewsClip      Bucket = "news_clip"
	BucketPublicMeeting Bucket = "public_meeting"
)

// RawItem is an unprocessed candidate mention returned by a source fetcher.
// URL is the primary dedup key, ExternalID the secondary one (video id).
type RawItem struct {
	URL          string
	Title        string
	Content      string
	SourceName   string
	SourceType   SourceType
	PublishedAt  *time.Time
	ExternalID   string
	DurationSecs int
	Bucket       Bucket
	ThumbnailURL string
	RawPayload   json.RawMessage
}

// IsVideo reports whether the item carries a video identifier
func (r RawItem) IsVideo() bool {
	return r.ExternalID != ""
}
