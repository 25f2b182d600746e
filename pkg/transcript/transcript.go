// Package transcript retrieves caption text of public videos. It asks the player api for
// caption tracks first and falls back to the raw timed-text endpoint, manual then auto-generated.
package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ErrNoTranscript returned when no stage produced caption text
var ErrNoTranscript = errors.New("no transcript available")

const (
	defaultPlayerURL    = "https://www.youtube.com/youtubei/v1/player"
	defaultTimedTextURL = "https://www.youtube.com/api/timedtext"
	maxCaptionSize      = 4 * 1024 * 1024
)

// Params defines caption fetcher parameters, empty urls use public youtube endpoints
type Params struct {
	PlayerURL    string
	TimedTextURL string
	Language     string
	Timeout      time.Duration
}

// Fetcher gets transcripts by video id
type Fetcher struct {
	playerURL    string
	timedTextURL string
	lang         string
	client       *http.Client
	policy       *bluemonday.Policy
}

// New makes transcript fetcher
func New(p Params) *Fetcher {
	if p.PlayerURL == "" {
		p.PlayerURL = defaultPlayerURL
	}
	if p.TimedTextURL == "" {
		p.TimedTextURL = defaultTimedTextURL
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Timeout <= 0 {
		p.Timeout = 30 * time.Second
	}
	return &Fetcher{
		playerURL:    p.PlayerURL,
		timedTextURL: p.TimedTextURL,
		lang:         p.Language,
		client:       &http.Client{Timeout: p.Timeout},
		policy:       bluemonday.StrictPolicy(),
	}
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated
}

type playerResponse struct {
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch returns plain caption text of the video. All stage failures end with ErrNoTranscript.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", fmt.Errorf("empty video id: %w", ErrNoTranscript)
	}

	var errs []error
	text, err := f.viaPlayer(ctx, videoID)
	if err == nil {
		return text, nil
	}
	errs = append(errs, fmt.Errorf("player: %w", err))

	for _, kind := range []string{"", "asr"} {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		params := url.Values{}
		params.Set("lang", f.lang)
		params.Set("v", videoID)
		if kind != "" {
			params.Set("kind", kind)
		}
		text, err := f.timedText(ctx, f.timedTextURL+"?"+params.Encode())
		if err == nil {
			return text, nil
		}
		errs = append(errs, fmt.Errorf("timedtext %q: %w", kind, err))
	}

	lgr.Printf("[DEBUG] no transcript for %s: %v", videoID, errors.Join(errs...))
	return "", fmt.Errorf("video %s: %w", videoID, ErrNoTranscript)
}

func (f *Fetcher) viaPlayer(ctx context.Context, videoID string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client": map[string]string{
				"clientName":    "TVHTML5_SIMPLY_EMBEDDED_PLAYER",
				"clientVersion": "2.0",
				"hl":            f.lang,
				"gl":            "US",
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.playerURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post player: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", fmt.Errorf("decode player response: %w", err)
	}
	if pr.Captions == nil || len(pr.Captions.Renderer.CaptionTracks) == 0 {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			return "", fmt.Errorf("no caption tracks, %s", pr.PlayabilityStatus.Reason)
		}
		return "", errors.New("no caption tracks")
	}

	track := pickBestTrack(pr.Captions.Renderer.CaptionTracks, f.lang)
	return f.timedText(ctx, track.BaseURL)
}

// pickBestTrack prefers manual track in lang, then any track in lang, then any manual track, then the first one
func pickBestTrack(tracks []captionTrack, lang string) captionTrack {
	inLang := func(t captionTrack) bool { return t.LanguageCode == lang }
	manual := func(t captionTrack) bool { return t.Kind != "asr" }
	for _, match := range []func(captionTrack) bool{
		func(t captionTrack) bool { return inLang(t) && manual(t) },
		inLang,
		manual,
	} {
		for _, t := range tracks {
			if match(t) {
				return t
			}
		}
	}
	return tracks[0]
}

func (f *Fetcher) timedText(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get captions: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionSize))
	if err != nil {
		return "", fmt.Errorf("read captions: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", errors.New("empty captions")
	}
	return f.parseTimedText(data)
}

// parseTimedText joins caption segments to a single line.
// Segment text is often double-encoded, so entities are decoded after xml unmarshal as well.
func (f *Fetcher) parseTimedText(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", fmt.Errorf("parse captions: %w", err)
	}

	parts := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		s := html.UnescapeString(line.Text)
		s = html.UnescapeString(f.policy.Sanitize(s))
		if s = strings.Join(strings.Fields(s), " "); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("no caption text")
	}
	return strings.Join(parts, " "), nil
}
