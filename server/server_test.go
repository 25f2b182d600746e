package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/dcwatch/pkg/domain"
	"github.com/umputun/dcwatch/server/mocks"
)

func testConfig(listen string) *mocks.ConfigProviderMock {
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration) { return listen, 30 * time.Second },
	}
}

func testStats() *mocks.StatsMock {
	started := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	return &mocks.StatsMock{
		CountClipsFunc:     func(context.Context) (int, error) { return 12, nil },
		CountLocationsFunc: func(context.Context) (int, error) { return 4, nil },
		LastRunFunc: func(context.Context) (*domain.CycleStats, error) {
			return &domain.CycleStats{StartedAt: started, FinishedAt: started.Add(90 * time.Second),
				Fetched: 40, Processed: 3, SkippedDuplicate: 30, SkippedRelevance: 6, Errors: 1}, nil
		},
	}
}

func TestServer_New(t *testing.T) {
	srv := New(Params{Config: testConfig(":8080"), Stats: &mocks.StatsMock{}, Version: "1.0.0"})
	assert.NotNil(t, srv)
	assert.Equal(t, "1.0.0", srv.version)
	assert.False(t, srv.debug)
}

func TestServer_Health(t *testing.T) {
	srv := New(Params{Config: testConfig(":8080"), Stats: &mocks.StatsMock{}, Version: "1.0.0"})

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, "dcwatch", w.Header().Get("App-Name"))

	req = httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	srv := New(Params{Config: testConfig(":8080"), Stats: &mocks.StatsMock{}})

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestServer_Status(t *testing.T) {
	stats := testStats()
	sched := &mocks.SchedulerMock{RunningFunc: func() bool { return true }}
	srv := New(Params{Config: testConfig(":8080"), Stats: stats, Scheduler: sched, Version: "1.2.3"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.True(t, resp.Running)
	assert.Equal(t, 12, resp.Clips)
	assert.Equal(t, 4, resp.Locations)
	require.NotNil(t, resp.LastRun)
	assert.Equal(t, 40, resp.LastRun.Fetched)
	assert.Equal(t, 3, resp.LastRun.Processed)
	assert.Equal(t, 30, resp.LastRun.SkippedDuplicate)
	assert.Equal(t, 6, resp.LastRun.SkippedRelevance)
	assert.Equal(t, 1, resp.LastRun.Errors)
	assert.InDelta(t, 90.0, resp.LastRun.DurationSecs, 0.001)
	assert.Len(t, sched.RunningCalls(), 1)
}

func TestServer_StatusNoRuns(t *testing.T) {
	stats := testStats()
	stats.LastRunFunc = func(context.Context) (*domain.CycleStats, error) { return nil, nil }
	srv := New(Params{Config: testConfig(":8080"), Stats: stats})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "last_run")
	assert.Contains(t, w.Body.String(), `"running":false`)
}

func TestServer_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *mocks.StatsMock)
		errMsg string
	}{
		{name: "clips", errMsg: "count clips: locked", modify: func(s *mocks.StatsMock) {
			s.CountClipsFunc = func(context.Context) (int, error) { return 0, errors.New("count clips: locked") }
		}},
		{name: "locations", errMsg: "count locations: locked", modify: func(s *mocks.StatsMock) {
			s.CountLocationsFunc = func(context.Context) (int, error) { return 0, errors.New("count locations: locked") }
		}},
		{name: "last run", errMsg: "get last run: locked", modify: func(s *mocks.StatsMock) {
			s.LastRunFunc = func(context.Context) (*domain.CycleStats, error) { return nil, errors.New("get last run: locked") }
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := testStats()
			tt.modify(stats)
			srv := New(Params{Config: testConfig(":8080"), Stats: stats})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/status", http.NoBody)
			w := httptest.NewRecorder()
			srv.router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusInternalServerError, w.Code)

			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.errMsg, resp["error"])
		})
	}
}

func TestServer_Thumbnails(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc123.jpg"), []byte("jpeg-data"), 0o600))
	srv := New(Params{Config: testConfig(":8080"), Stats: &mocks.StatsMock{}, ThumbnailsDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/thumbnails/abc123.jpg", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg-data", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/thumbnails/missing.jpg", http.NoBody)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/thumbnails/", http.NoBody)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code, "no directory listing")
}

func TestServer_ThumbnailsDisabled(t *testing.T) {
	srv := New(Params{Config: testConfig(":8080"), Stats: &mocks.StatsMock{}})
	req := httptest.NewRequest(http.MethodGet, "/thumbnails/abc123.jpg", http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	srv := New(Params{Config: testConfig(fmt.Sprintf("127.0.0.1:%d", port)), Stats: testStats(), Version: "1.0.0"})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:gosec,noctx // test request
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && strings.TrimSpace(string(body)) == "ok"
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRenderError(t *testing.T) {
	w := httptest.NewRecorder()
	RenderError(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody), nil, http.StatusBadRequest)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"unknown error"}`, w.Body.String())
}
