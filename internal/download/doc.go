// Package download saves resolved links to disk.
//
// # Manager
//
// The Manager takes the outcomes of a resolve.Coordinator run and:
//
//  1. Picks a unique file name for every successful link
//  2. Skips files that already exist with the expected size
//  3. Downloads the rest concurrently, retrying failures
//  4. Tags MP3 files with the landing page URL and title
//  5. Writes a playlist of the saved files (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, dir, client, func(event progress.Event) {
//	    fmt.Println(event.Message)
//	})
//
//	files, err := manager.Download(ctx, outcomes)
//	for _, f := range files {
//	    if f.Err != nil {
//	        fmt.Println("failed:", f.DownloadURL, f.Err)
//	    }
//	}
//
// # Concurrency
//
// At most settings.MaxConcurrentDownloads files are transferred at once.
//
// # Retry Logic
//
// Failed downloads are retried with exponential backoff: the wait before
// retry n is DownloadRetryCooldown * DownloadRetryExponent^n seconds, up to
// DownloadMaxRetries attempts in total.
package download
