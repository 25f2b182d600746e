// Package thumbnail keeps local copies of video preview images served under /thumbnails/
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-pkgz/lgr"
)

// PublicPrefix is the url path thumbnails are served from
const PublicPrefix = "/thumbnails/"

const maxImageSize = 10 * 1024 * 1024

var idRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Cache downloads thumbnails once and keeps them in a directory
type Cache struct {
	dir    string
	client *http.Client
}

// NewCache makes thumbnail cache for the directory, the directory is created on first write
func NewCache(dir string, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cache{dir: dir, client: &http.Client{Timeout: timeout}}
}

// Dir returns cache directory
func (c *Cache) Dir() string { return c.dir }

// Ensure returns public path of the thumbnail, downloading it if not cached yet
func (c *Cache) Ensure(ctx context.Context, externalID, remoteURL string) (string, error) {
	if !idRe.MatchString(externalID) {
		return "", fmt.Errorf("invalid thumbnail id %q", externalID)
	}
	name := externalID + ".jpg"
	localPath := filepath.Join(c.dir, name)
	publicPath := PublicPrefix + name

	if _, err := os.Stat(localPath); err == nil {
		return publicPath, nil
	}
	if remoteURL == "" {
		return "", errors.New("no thumbnail url")
	}

	if err := c.download(ctx, remoteURL, localPath); err != nil {
		return "", fmt.Errorf("download thumbnail %s: %w", externalID, err)
	}
	lgr.Printf("[DEBUG] thumbnail %s saved to %s", externalID, localPath)
	return publicPath, nil
}

func (c *Cache) download(ctx context.Context, remoteURL, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("get image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return fmt.Errorf("make dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".thumb-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, maxImageSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if n == 0 {
		return errors.New("empty image")
	}
	if n > maxImageSize {
		return fmt.Errorf("image is larger than %d bytes", maxImageSize)
	}
	if err := os.Rename(tmpName, localPath); err != nil {
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}
