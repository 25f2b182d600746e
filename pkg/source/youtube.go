package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/time/rate"

	"github.com/umputun/dcwatch/pkg/domain"
)

const (
	ytMaxResults   = 50 // max page size of search and max ids per videos call
	ytWatchURLBase = "https://www.youtube.com/watch?v="
)

// durationBand is the accepted duration range of a bucket, bounds inclusive
type durationBand struct {
	filter  string // videoDuration search filter
	minSecs int
	maxSecs int
}

var bands = map[domain.Bucket]durationBand{
	domain.BucketNewsClip:      {filter: "any", minSecs: 60, maxSecs: 20 * 60},
	domain.BucketPublicMeeting: {filter: "long", minSecs: 20 * 60, maxSecs: 6 * 60 * 60},
}

// BucketQueries is a set of search queries of a single bucket
type BucketQueries struct {
	Bucket  domain.Bucket
	Queries []string
}

// YouTubeParams defines parameters of the video search source
type YouTubeParams struct {
	APIKey    string
	Endpoint  string // Data API base URL
	Buckets   []BucketQueries
	Window    time.Duration // only videos published within window
	MaxPages  int
	Timeout   time.Duration
	RateLimit time.Duration
	Now       func() time.Time
}

// YouTube searches recent videos per bucket and enriches them with duration details
type YouTube struct {
	YouTubeParams
	client  *http.Client
	limiter *rate.Limiter
}

// NewYouTube makes video source
func NewYouTube(p YouTubeParams) *YouTube {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.MaxPages <= 0 {
		p.MaxPages = 1
	}
	return &YouTube{YouTubeParams: p, client: newHTTPClient(p.Timeout), limiter: newLimiter(p.RateLimit)}
}

// Name returns source name
func (y *YouTube) Name() string { return "youtube" }

// Fetch searches all bucket queries and returns videos inside bucket duration bands.
// Missing API key is not an error, the source is skipped.
func (y *YouTube) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	if y.APIKey == "" {
		lgr.Printf("[WARN] youtube api key not configured, skipping")
		return nil, nil
	}

	publishedAfter := y.Now().Add(-y.Window).UTC()
	emitted := map[string]bool{} // ids kept by an earlier bucket
	var res []domain.RawItem
	for _, bq := range y.Buckets {
		band, ok := bands[bq.Bucket]
		if !ok {
			lgr.Printf("[WARN] unknown youtube bucket %q, skipping", bq.Bucket)
			continue
		}
		var ids []string
		candidates := map[string]bool{}
		for _, q := range bq.Queries {
			found, err := y.search(ctx, q, band, publishedAfter)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				lgr.Printf("[WARN] youtube search for %q failed: %v", q, err)
			}
			for _, id := range found {
				if emitted[id] || candidates[id] {
					continue
				}
				candidates[id] = true
				ids = append(ids, id)
			}
		}

		videos, err := y.details(ctx, ids)
		if err != nil && ctx.Err() != nil {
			return res, ctx.Err()
		}
		kept := 0
		for _, v := range videos {
			secs := ParseISODuration(v.ContentDetails.Duration)
			if secs < band.minSecs || secs > band.maxSecs {
				continue
			}
			res = append(res, v.toRawItem(bq.Bucket, secs))
			emitted[v.ID] = true
			kept++
		}
		lgr.Printf("[DEBUG] youtube bucket %s, %d candidates, %d in duration band", bq.Bucket, len(ids), kept)
	}
	return res, nil
}

type ytSearchResp struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type ytThumb struct {
	URL string `json:"url"`
}

type ytVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string             `json:"title"`
		Description  string             `json:"description"`
		ChannelTitle string             `json:"channelTitle"`
		PublishedAt  string             `json:"publishedAt"`
		Thumbnails   map[string]ytThumb `json:"thumbnails"`
	} `json:"snippet"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type ytVideosResp struct {
	Items []json.RawMessage `json:"items"`
}

// search pages through results of a single query, returns video ids in result order.
// Ids collected before a failed page are returned along with the error.
func (y *YouTube) search(ctx context.Context, query string, band durationBand, publishedAfter time.Time) ([]string, error) {
	var ids []string
	pageToken := ""
	for page := 0; page < y.MaxPages; page++ {
		if err := y.limiter.Wait(ctx); err != nil {
			return ids, fmt.Errorf("wait for rate limiter: %w", err)
		}
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("q", query)
		params.Set("type", "video")
		params.Set("order", "date")
		params.Set("regionCode", "US")
		params.Set("relevanceLanguage", "en")
		params.Set("maxResults", strconv.Itoa(ytMaxResults))
		params.Set("publishedAfter", publishedAfter.Format(time.RFC3339))
		params.Set("videoDuration", band.filter)
		params.Set("key", y.APIKey)
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp ytSearchResp
		if err := getJSON(ctx, y.client, y.Endpoint+"/search?"+params.Encode(), &resp); err != nil {
			return ids, fmt.Errorf("search page %d: %w", page+1, err)
		}
		for _, item := range resp.Items {
			if item.ID.VideoID != "" {
				ids = append(ids, item.ID.VideoID)
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return ids, nil
}

// details loads snippet and duration of videos in chunks. Failed chunks are logged and skipped.
func (y *YouTube) details(ctx context.Context, ids []string) ([]ytVideo, error) {
	var res []ytVideo
	for start := 0; start < len(ids); start += ytMaxResults {
		end := min(start+ytMaxResults, len(ids))
		if err := y.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("wait for rate limiter: %w", err)
		}
		params := url.Values{}
		params.Set("part", "snippet,contentDetails")
		params.Set("id", strings.Join(ids[start:end], ","))
		params.Set("key", y.APIKey)

		var resp ytVideosResp
		if err := getJSON(ctx, y.client, y.Endpoint+"/videos?"+params.Encode(), &resp); err != nil {
			lgr.Printf("[WARN] youtube details for %d videos failed: %v", end-start, err)
			continue
		}
		for _, raw := range resp.Items {
			var v ytVideo
			if err := json.Unmarshal(raw, &v); err != nil {
				lgr.Printf("[WARN] can't decode youtube video: %v", err)
				continue
			}
			res = append(res, v)
		}
	}
	return res, nil
}

func (v ytVideo) toRawItem(bucket domain.Bucket, secs int) domain.RawItem {
	item := domain.RawItem{
		URL:          ytWatchURLBase + v.ID,
		Title:        v.Snippet.Title,
		Content:      v.Snippet.Description,
		SourceName:   v.Snippet.ChannelTitle,
		SourceType:   domain.SourceYouTube,
		ExternalID:   v.ID,
		DurationSecs: secs,
		Bucket:       bucket,
		ThumbnailURL: bestThumbnail(v.Snippet.Thumbnails),
	}
	if ts, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
		ts = ts.UTC()
		item.PublishedAt = &ts
	}
	if raw, err := json.Marshal(v); err == nil {
		item.RawPayload = raw
	}
	return item
}

func bestThumbnail(thumbs map[string]ytThumb) string {
	for _, k := range []string{"maxres", "standard", "high", "medium", "default"} {
		if t, ok := thumbs[k]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts ISO-8601 duration like PT1H2M3S to seconds.
// Malformed input gives 0.
func ParseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	mult := []int{24 * 3600, 3600, 60, 1}
	total := 0
	for i, part := range m[1:] {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0
		}
		total += n * mult[i]
	}
	return total
}
