package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/turkoid/zipadeedoodah/internal/engine"
	"github.com/turkoid/zipadeedoodah/internal/metrics"
	"github.com/turkoid/zipadeedoodah/internal/model"
	"github.com/turkoid/zipadeedoodah/internal/zippyshare"
)

// Fetcher returns the body of a landing page.
// *http.Client from internal/http satisfies it.
type Fetcher interface {
	GetString(ctx context.Context, url string) (string, error)
}

// Resolver turns one landing page into a download URL.
//
// A Resolver holds no per-link state and can resolve many links at once.
// Each call writes only to the Link it is given.
//
// Example:
//
//	r := NewResolver(client, 60*time.Second)
//	if err := r.Resolve(ctx, eng, link); err != nil {
//	    var rerr *Error
//	    errors.As(err, &rerr) // rerr.Kind tells which step failed
//	}
//	u, _ := link.DownloadURL()
type Resolver struct {
	fetcher Fetcher
	timeout time.Duration
}

// NewResolver creates a Resolver. A timeout of zero disables the per-link
// bound.
func NewResolver(fetcher Fetcher, timeout time.Duration) *Resolver {
	return &Resolver{fetcher: fetcher, timeout: timeout}
}

// Resolve fetches the landing page, extracts and rewrites its download
// script, evaluates it on a fresh page of eng and stores the result on link.
//
// The steps are:
//  1. GET the source URL
//  2. Extract the inline script assigning the download button's href
//  3. Point that assignment at a local capture variable
//  4. Evaluate the wrapped script on its own page
//  5. Store the returned path on link
//
// Each step runs once. Any failure is returned as an *Error carrying its Kind.
func (r *Resolver) Resolve(ctx context.Context, eng engine.Engine, link *model.Link) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		metrics.ResolutionDuration.WithLabelValues("total").Observe(time.Since(start).Seconds())
	}()

	fetchStart := time.Now()
	html, err := r.fetcher.GetString(ctx, link.SourceURL())
	metrics.ResolutionDuration.WithLabelValues("fetch").Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		return newError(KindFetchFailed, link, err)
	}

	script, err := zippyshare.ExtractScript(html, zippyshare.Marker)
	if err != nil {
		return newError(KindExtractionFailed, link, err)
	}
	if err := link.SetScript(script); err != nil {
		return newError(KindExtractionFailed, link, err)
	}
	if title := zippyshare.PageTitle(html); title != "" {
		_ = link.SetTitle(title)
	}

	callable := zippyshare.WrapScript(
		zippyshare.RewriteScript(script, zippyshare.Marker, zippyshare.CaptureVar),
		zippyshare.CaptureVar,
	)

	evalStart := time.Now()
	path, err := evaluate(ctx, eng, callable)
	metrics.ResolutionDuration.WithLabelValues("evaluate").Observe(time.Since(evalStart).Seconds())
	if err != nil {
		if errors.Is(err, engine.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return newError(KindEvaluationTimeout, link, err)
		}
		return newError(KindEvaluationFailed, link, err)
	}

	if err := link.SetDownloadPath(path); err != nil {
		return newError(KindEvaluationFailed, link, err)
	}

	slog.Debug("Resolved link", "url", link.SourceURL(), "path", path)
	return nil
}

// evaluate runs callable on a page that is closed before returning.
func evaluate(ctx context.Context, eng engine.Engine, callable string) (string, error) {
	page, err := eng.NewPage(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Warn("Failed to close page", "error", err)
		}
	}()

	return page.Evaluate(ctx, callable)
}
