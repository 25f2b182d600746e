// Package source implements fetchers of candidate mentions from public upstreams
// (news RSS search, video search, social post search) and the concurrent join over them.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/umputun/dcwatch/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// Fetcher returns candidate mentions from a single upstream.
// Per-query failures are logged and skipped, an error means the whole source failed.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.RawItem, error)
}

// Result is the outcome of a single fetcher run
type Result struct {
	Source   string
	Items    []domain.RawItem
	Err      error
	Duration time.Duration
}

// FetchAll runs all fetchers concurrently and waits for every one of them.
// A failed or panicking fetcher contributes no items, results keep registration order.
func FetchAll(ctx context.Context, fetchers []Fetcher) []Result {
	results := make([]Result, len(fetchers))
	var g errgroup.Group
	for i, f := range fetchers {
		g.Go(func() error {
			results[i] = runFetcher(ctx, f)
			return nil
		})
	}
	_ = g.Wait() // fetchers never return errors to the group

	for _, r := range results {
		if r.Err != nil {
			lgr.Printf("[WARN] source %s failed in %v: %v", r.Source, r.Duration, r.Err)
			continue
		}
		lgr.Printf("[INFO] source %s returned %d items in %v", r.Source, len(r.Items), r.Duration.Round(time.Millisecond))
	}
	return results
}

// Items flattens successful results in source order
func Items(results []Result) []domain.RawItem {
	var res []domain.RawItem
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		res = append(res, r.Items...)
	}
	return res
}

func runFetcher(ctx context.Context, f Fetcher) (res Result) {
	res.Source = f.Name()
	st := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			res.Items = nil
			res.Err = fmt.Errorf("panic: %v", rec)
		}
		res.Duration = time.Since(st)
	}()
	items, err := f.Fetch(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.Items = items
	return res
}

// newHTTPClient makes a client with bounded timeout, shared by all sources
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// newLimiter paces requests to one request per interval, zero interval means no pacing
func newLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// getJSON fetches url and decodes json response into target
func getJSON(ctx context.Context, client *http.Client, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// truncateRunes cuts s to n runes, adding ellipsis when cut
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
