package feed

import (
	"net/http"
)

// addFeedHeaders sets headers asking for feed content.
// Compression is handled by http.Transport transparently, so Accept-Encoding is not set here.
func addFeedHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	// each request re-fetches, intermediate caches should not serve stale feed
	req.Header.Set("Cache-Control", "no-cache")
}
