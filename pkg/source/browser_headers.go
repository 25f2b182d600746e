package source

import (
	"math/rand"
	"net/http"
)

const userAgent = "Mozilla/5.0 (compatible; dcwatch/1.0; +https://github.com/umputun/dcwatch)"

// acceptLanguages contains common browser Accept-Language values, all US English first
var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.9,es;q=0.8",
	"en-US,en;q=0.8",
}

// addBrowserHeaders adds browser-like headers for RSS search requests
func addBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept-Language", acceptLanguages[rand.Intn(len(acceptLanguages))]) //nolint:gosec // non-cryptographic randomness is fine for header variation
	req.Header.Set("Connection", "keep-alive")
}
