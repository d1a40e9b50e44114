// Package http provides the HTTP client shared by every resolution and
// download in a batch.
//
// The Client handles:
//   - a browser-like User-Agent header
//   - per-request timeouts
//   - optional request pacing with golang.org/x/time/rate
//   - typed status errors (*StatusError)
//   - streamed downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(http.Options{Timeout: 30 * time.Second})
//
//	html, err := client.GetString(ctx, landingURL)
//	var statusErr *http.StatusError
//	if errors.As(err, &statusErr) {
//	    fmt.Println(statusErr.StatusCode)
//	}
//
//	client.DownloadFile(ctx, fileURL, "/music/song.mp3", nil)
package http
