package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/time/rate"

	"github.com/umputun/dcwatch/pkg/domain"
)

const bskyTitleLen = 100

// BlueskyParams defines parameters of the social post search source
type BlueskyParams struct {
	Endpoint  string // AppView base URL
	Queries   []string
	Limit     int
	Timeout   time.Duration
	RateLimit time.Duration
}

// Bluesky searches public posts, one request per query
type Bluesky struct {
	BlueskyParams
	client  *http.Client
	limiter *rate.Limiter
}

// NewBluesky makes social post source
func NewBluesky(p BlueskyParams) *Bluesky {
	if p.Limit <= 0 {
		p.Limit = 25
	}
	return &Bluesky{BlueskyParams: p, client: newHTTPClient(p.Timeout), limiter: newLimiter(p.RateLimit)}
}

// Name returns source name
func (b *Bluesky) Name() string { return "bluesky" }

type bskyPost struct {
	URI    string `json:"uri"`
	CID    string `json:"cid"`
	Author struct {
		Handle      string `json:"handle"`
		DisplayName string `json:"displayName"`
	} `json:"author"`
	Record struct {
		Text      string `json:"text"`
		CreatedAt string `json:"createdAt"`
	} `json:"record"`
}

type bskySearchResp struct {
	Posts []json.RawMessage `json:"posts"`
}

// Fetch runs all queries and returns posts de-duplicated by post uri
func (b *Bluesky) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	seen := map[string]bool{}
	var res []domain.RawItem
	for _, q := range b.Queries {
		if err := b.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("wait for rate limiter: %w", err)
		}
		params := url.Values{}
		params.Set("q", q)
		params.Set("limit", strconv.Itoa(b.Limit))

		var resp bskySearchResp
		if err := getJSON(ctx, b.client, b.Endpoint+"/xrpc/app.bsky.feed.searchPosts?"+params.Encode(), &resp); err != nil {
			lgr.Printf("[WARN] bluesky search for %q failed: %v", q, err)
			continue
		}

		for _, raw := range resp.Posts {
			var post bskyPost
			if err := json.Unmarshal(raw, &post); err != nil {
				lgr.Printf("[WARN] can't decode bluesky post: %v", err)
				continue
			}
			if post.URI == "" || seen[post.URI] {
				continue
			}
			seen[post.URI] = true
			item, err := post.toRawItem(raw)
			if err != nil {
				lgr.Printf("[WARN] skip bluesky post %s: %v", post.URI, err)
				continue
			}
			res = append(res, item)
		}
	}
	return res, nil
}

func (p bskyPost) toRawItem(raw json.RawMessage) (domain.RawItem, error) {
	webURL, err := PostWebURL(p.URI, p.Author.Handle)
	if err != nil {
		return domain.RawItem{}, err
	}
	name := p.Author.DisplayName
	if strings.TrimSpace(name) == "" {
		name = p.Author.Handle
	}
	item := domain.RawItem{
		URL:        webURL,
		Title:      truncateRunes(p.Record.Text, bskyTitleLen),
		Content:    p.Record.Text,
		SourceName: name,
		SourceType: domain.SourceBluesky,
		RawPayload: raw,
	}
	if ts, err := time.Parse(time.RFC3339, p.Record.CreatedAt); err == nil {
		ts = ts.UTC()
		item.PublishedAt = &ts
	}
	return item, nil
}

// PostWebURL converts at://<did>/app.bsky.feed.post/<rkey> to the public web url of the post
func PostWebURL(uri, handle string) (string, error) {
	parts := strings.Split(strings.TrimPrefix(uri, "at://"), "/")
	if len(parts) != 3 || parts[1] != "app.bsky.feed.post" || parts[2] == "" {
		return "", fmt.Errorf("unexpected post uri %q", uri)
	}
	if handle == "" {
		handle = parts[0]
	}
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", handle, parts[2]), nil
}
