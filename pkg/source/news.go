package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/umputun/dcwatch/pkg/domain"
)

const defaultNewsSourceName = "Google News"

// NewsParams defines parameters of the news search source
type NewsParams struct {
	Endpoint  string // RSS search endpoint, query string is appended
	Queries   []string
	Timeout   time.Duration
	RateLimit time.Duration
}

// News searches news articles via RSS search feed, one request per query
type News struct {
	client   *http.Client
	endpoint string
	queries  []string
	limiter  *rate.Limiter
	policy   *bluemonday.Policy
}

// NewNews makes news source
func NewNews(p NewsParams) *News {
	return &News{
		client:   newHTTPClient(p.Timeout),
		endpoint: p.Endpoint,
		queries:  p.Queries,
		limiter:  newLimiter(p.RateLimit),
		policy:   bluemonday.StrictPolicy(),
	}
}

// Name returns source name
func (n *News) Name() string { return "news" }

// Fetch runs all queries and returns items de-duplicated by link
func (n *News) Fetch(ctx context.Context) ([]domain.RawItem, error) {
	seen := map[string]bool{}
	var res []domain.RawItem
	for _, q := range n.queries {
		if err := n.limiter.Wait(ctx); err != nil {
			return res, fmt.Errorf("wait for rate limiter: %w", err)
		}
		feed, err := n.search(ctx, q)
		if err != nil {
			lgr.Printf("[WARN] news search for %q failed: %v", q, err)
			continue
		}
		added := 0
		for _, item := range feed.Items {
			if item == nil || item.Link == "" || seen[item.Link] {
				continue
			}
			seen[item.Link] = true
			res = append(res, n.toRawItem(item))
			added++
		}
		lgr.Printf("[DEBUG] news search for %q, %d items, %d new", q, len(feed.Items), added)
	}
	return res, nil
}

func (n *News) search(ctx context.Context, query string) (*gofeed.Feed, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	addBrowserHeaders(req)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (n *News) toRawItem(item *gofeed.Item) domain.RawItem {
	title, publisher := splitPublisher(strings.TrimSpace(item.Title))
	if title == "" {
		title = "Untitled"
	}
	if publisher == "" {
		publisher = defaultNewsSourceName
	}

	res := domain.RawItem{
		URL:        item.Link,
		Title:      title,
		Content:    n.plainText(item.Description),
		SourceName: publisher,
		SourceType: domain.SourceNews,
	}
	if res.Content == "" {
		res.Content = n.plainText(item.Content)
	}

	if item.PublishedParsed != nil {
		ts := item.PublishedParsed.UTC()
		res.PublishedAt = &ts
	} else if item.UpdatedParsed != nil {
		ts := item.UpdatedParsed.UTC()
		res.PublishedAt = &ts
	}

	if raw, err := json.Marshal(item); err == nil {
		res.RawPayload = raw
	}
	return res
}

// plainText strips html tags and entities, collapses whitespace
func (n *News) plainText(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(n.policy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// splitPublisher splits "Headline - Publisher" titles used by news search feeds
func splitPublisher(title string) (headline, publisher string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 || idx+3 >= len(title) {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
