// Package notify pushes alerts about important mentions and finished cycles to an ntfy topic.
// Without a configured topic every call is a no-op.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/umputun/dcwatch/pkg/domain"
)

const userAgent = "dcwatch/1.0"

// Service sends notifications about pipeline events
type Service interface {
	NotifyMention(ctx context.Context, clip *domain.Clip) error
	NotifyCycle(ctx context.Context, stats domain.CycleStats) error
}

// NewService builds ntfy backed service, empty topic gives a no-op implementation
func NewService(topic string, timeout time.Duration) Service {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return noopService{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{endpoint: topic, client: &http.Client{Timeout: timeout}}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	click    string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

// NotifyMention sends a high priority alert for a persisted mention
func (n *ntfyService) NotifyMention(ctx context.Context, clip *domain.Clip) error {
	if clip == nil {
		return nil
	}
	c := clip.Classification
	where := domain.NewLocationKey(c.Location).String()
	topics := make([]string, 0, len(c.Topics))
	for _, t := range c.Topics {
		topics = append(topics, string(t))
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(clip.Title))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s | %s | score %d\n", where, strings.Join(topics, ", "), c.RelevanceScore))
	if c.Summary != "" {
		sb.WriteString(c.Summary)
	}

	priority := "default"
	if c.Importance == domain.ImportanceHigh {
		priority = "high"
	}
	data := payload{
		title:    fmt.Sprintf("dcwatch - %s mention in %s", c.Importance, where),
		message:  strings.TrimSpace(sb.String()),
		tags:     append([]string{"dcwatch", string(clip.SourceType)}, topics...),
		priority: priority,
		click:    clip.URL,
	}
	return n.send(ctx, data)
}

// NotifyCycle sends cycle summary
func (n *ntfyService) NotifyCycle(ctx context.Context, stats domain.CycleStats) error {
	data := payload{
		title: "dcwatch - Cycle Complete",
		message: fmt.Sprintf("fetched %d, processed %d, duplicates %d, low relevance %d, errors %d in %v",
			stats.Fetched, stats.Processed, stats.SkippedDuplicate, stats.SkippedRelevance, stats.Errors,
			stats.Duration().Round(time.Second)),
		tags: []string{"dcwatch", "cycle"},
	}
	if stats.Errors > 0 {
		data.tags = append(data.tags, "warning")
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	if data.click != "" {
		req.Header.Set("Click", data.click)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyMention(context.Context, *domain.Clip) error    { return nil }
func (noopService) NotifyCycle(context.Context, domain.CycleStats) error { return nil }
