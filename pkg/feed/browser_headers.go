package feed

import "net/http"

// addBrowserHeaders makes feed requests look like a regular feed reader,
// some servers reject clients without accept headers
func addBrowserHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,text/xml;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")
}
