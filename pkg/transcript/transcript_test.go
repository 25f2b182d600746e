package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const captionsXML = `<?xml version="1.0" encoding="utf-8" ?>
<transcript>
	<text start="0.5" dur="2.1">The county board  voted</text>
	<text start="2.6" dur="3.0">on the data center &amp;amp; substation</text>
	<text start="5.6" dur="1.0">it&amp;#39;s &lt;font color="#E5E5E5"&gt;approved&lt;/font&gt;</text>
	<text start="6.6" dur="1.0">   </text>
</transcript>`

type fakeYT struct {
	mu           sync.Mutex
	playerStatus int
	tracks       []captionTrack
	timedText    map[string]string // "lang|kind" -> xml
	paths        []string
}

func (f *fakeYT) server(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.paths = append(f.paths, r.URL.Path)
		switch r.URL.Path {
		case "/player":
			assert.Equal(t, http.MethodPost, r.Method)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var req struct {
				VideoID string `json:"videoId"`
				Context struct {
					Client map[string]string `json:"client"`
				} `json:"context"`
			}
			require.NoError(t, json.Unmarshal(body, &req))
			assert.Equal(t, "vid123", req.VideoID)
			assert.Equal(t, "TVHTML5_SIMPLY_EMBEDDED_PLAYER", req.Context.Client["clientName"])
			if f.playerStatus != 0 {
				w.WriteHeader(f.playerStatus)
				return
			}
			resp := map[string]any{"playabilityStatus": map[string]string{"status": "OK"}}
			if len(f.tracks) > 0 {
				resp["captions"] = map[string]any{
					"playerCaptionsTracklistRenderer": map[string]any{"captionTracks": f.tracks},
				}
			}
			_ = json.NewEncoder(w).Encode(resp)
		case "/track/en", "/track/en-asr", "/track/de":
			_, _ = w.Write([]byte(captionsXML))
		case "/api/timedtext":
			key := r.URL.Query().Get("lang") + "|" + r.URL.Query().Get("kind")
			if xmlBody, ok := f.timedText[key]; ok {
				_, _ = w.Write([]byte(xmlBody))
				return
			}
			// timedtext answers 200 with empty body when captions are missing
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func (f *fakeYT) calledPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func TestFetcher_Fetch(t *testing.T) {
	t.Run("player track", func(t *testing.T) {
		fake := &fakeYT{}
		ts := fake.server(t)
		defer ts.Close()
		fake.tracks = []captionTrack{
			{BaseURL: ts.URL + "/track/en-asr", LanguageCode: "en", Kind: "asr"},
			{BaseURL: ts.URL + "/track/en", LanguageCode: "en"},
		}

		f := New(Params{PlayerURL: ts.URL + "/player", TimedTextURL: ts.URL + "/api/timedtext", Timeout: time.Second})
		text, err := f.Fetch(context.Background(), "vid123")
		require.NoError(t, err)
		assert.Equal(t, "The county board voted on the data center & substation it's approved", text)
		assert.Equal(t, []string{"/player", "/track/en"}, fake.calledPaths())
	})

	t.Run("falls back to manual timedtext", func(t *testing.T) {
		fake := &fakeYT{playerStatus: http.StatusForbidden, timedText: map[string]string{"en|": captionsXML}}
		ts := fake.server(t)
		defer ts.Close()

		f := New(Params{PlayerURL: ts.URL + "/player", TimedTextURL: ts.URL + "/api/timedtext"})
		text, err := f.Fetch(context.Background(), "vid123")
		require.NoError(t, err)
		assert.Contains(t, text, "county board voted")
		assert.Equal(t, []string{"/player", "/api/timedtext"}, fake.calledPaths())
	})

	t.Run("falls back to auto-generated timedtext", func(t *testing.T) {
		fake := &fakeYT{timedText: map[string]string{"en|asr": captionsXML}}
		ts := fake.server(t)
		defer ts.Close()

		f := New(Params{PlayerURL: ts.URL + "/player", TimedTextURL: ts.URL + "/api/timedtext"})
		text, err := f.Fetch(context.Background(), "vid123")
		require.NoError(t, err)
		assert.Contains(t, text, "substation")
		assert.Equal(t, []string{"/player", "/api/timedtext", "/api/timedtext"}, fake.calledPaths())
	})

	t.Run("nothing available", func(t *testing.T) {
		fake := &fakeYT{}
		ts := fake.server(t)
		defer ts.Close()

		f := New(Params{PlayerURL: ts.URL + "/player", TimedTextURL: ts.URL + "/api/timedtext"})
		_, err := f.Fetch(context.Background(), "vid123")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoTranscript))
	})

	t.Run("empty video id", func(t *testing.T) {
		f := New(Params{})
		_, err := f.Fetch(context.Background(), " ")
		assert.ErrorIs(t, err, ErrNoTranscript)
	})
}

func TestPickBestTrack(t *testing.T) {
	enManual := captionTrack{BaseURL: "en", LanguageCode: "en"}
	enAuto := captionTrack{BaseURL: "en-asr", LanguageCode: "en", Kind: "asr"}
	deManual := captionTrack{BaseURL: "de", LanguageCode: "de"}
	deAuto := captionTrack{BaseURL: "de-asr", LanguageCode: "de", Kind: "asr"}
	frAuto := captionTrack{BaseURL: "fr-asr", LanguageCode: "fr", Kind: "asr"}

	tests := []struct {
		name   string
		tracks []captionTrack
		want   string
	}{
		{"english manual wins", []captionTrack{deManual, enAuto, enManual}, "en"},
		{"english auto over foreign manual", []captionTrack{deManual, enAuto}, "en-asr"},
		{"foreign manual over foreign auto", []captionTrack{deAuto, deManual}, "de"},
		{"first when all auto foreign", []captionTrack{frAuto, deAuto}, "fr-asr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickBestTrack(tt.tracks, "en").BaseURL)
		})
	}
}

func TestParseTimedText(t *testing.T) {
	f := New(Params{})

	text, err := f.parseTimedText([]byte(captionsXML))
	require.NoError(t, err)
	assert.Equal(t, "The county board voted on the data center & substation it's approved", text)

	_, err = f.parseTimedText([]byte(`<transcript><text>  </text></transcript>`))
	require.Error(t, err)

	_, err = f.parseTimedText([]byte(`not xml at all <`))
	require.Error(t, err)
}
