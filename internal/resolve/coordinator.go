package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/turkoid/zipadeedoodah/internal/config"
	"github.com/turkoid/zipadeedoodah/internal/engine"
	"github.com/turkoid/zipadeedoodah/internal/metrics"
	"github.com/turkoid/zipadeedoodah/internal/model"
	"github.com/turkoid/zipadeedoodah/internal/progress"
)

// Outcome is the result for one input URL. Exactly one of a download URL
// on Link or Err is present.
type Outcome struct {
	// Index is the position of the URL in the input.
	Index int

	// URL is the input string as given.
	URL string

	// Link is nil when the URL could not be parsed.
	Link *model.Link

	Err error
}

// OK reports whether the link resolved to a download URL.
func (o Outcome) OK() bool {
	if o.Err != nil || o.Link == nil {
		return false
	}
	_, ok := o.Link.DownloadURL()
	return ok
}

// Kind returns the failure kind, or zero for a successful outcome.
func (o Outcome) Kind() Kind {
	var rerr *Error
	if errors.As(o.Err, &rerr) {
		return rerr.Kind
	}
	return 0
}

// Coordinator resolves a batch of URLs concurrently.
//
// The engine is launched once per Run and closed once after every link has
// finished. Links share the engine and the Resolver's fetcher but nothing
// else, and one link's failure never cancels another.
type Coordinator struct {
	launch     engine.Launcher
	resolver   *Resolver
	limit      int
	onProgress progress.Func
}

// NewCoordinator creates a Coordinator. limit caps concurrent resolutions;
// zero or less resolves every link at once.
func NewCoordinator(launch engine.Launcher, resolver *Resolver, limit int, onProgress progress.Func) *Coordinator {
	return &Coordinator{
		launch:     launch,
		resolver:   resolver,
		limit:      limit,
		onProgress: onProgress,
	}
}

// FromSettings builds a Coordinator using the engine, timeout and
// concurrency limit from settings. Pages are fetched with fetcher.
func FromSettings(settings *config.Settings, fetcher Fetcher, onProgress progress.Func) (*Coordinator, error) {
	launch, err := engine.NewLauncher(settings.ToEngineOptions())
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(fetcher, settings.ResolveTimeoutDuration())
	return NewCoordinator(launch, resolver, settings.MaxConcurrentResolutions, onProgress), nil
}

// Run resolves rawURLs and returns one Outcome per input, in input order.
//
// Unparseable URLs get a KindInvalidURL outcome without being dispatched.
// The only error returned is a failure to launch the engine, which aborts
// the batch before any link is resolved.
func (c *Coordinator) Run(ctx context.Context, rawURLs []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(rawURLs))

	var (
		links   []*model.Link
		indexes []int
	)
	for i, raw := range rawURLs {
		outcomes[i] = Outcome{Index: i, URL: raw}

		link, err := model.NewLink(raw)
		if err != nil {
			outcomes[i].Err = &Error{Kind: KindInvalidURL, URL: raw, Err: err}
			c.report(outcomes[i])
			continue
		}
		links = append(links, link)
		indexes = append(indexes, i)
	}

	if len(links) == 0 {
		return outcomes, nil
	}

	eng, err := c.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to launch engine: %w", err)
	}
	defer func() {
		if err := eng.Close(); err != nil {
			slog.Warn("Failed to close engine", "error", err)
		}
	}()

	for j, o := range c.ResolveAll(ctx, eng, links) {
		i := indexes[j]
		o.Index = i
		o.URL = rawURLs[i]
		outcomes[i] = o
	}

	return outcomes, nil
}

// ResolveAll resolves links on eng concurrently and waits for all of them.
// outcomes[i] always belongs to links[i], whatever order they finish in.
func (c *Coordinator) ResolveAll(ctx context.Context, eng engine.Engine, links []*model.Link) []Outcome {
	outcomes := make([]Outcome, len(links))

	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}

	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			err := c.resolver.Resolve(ctx, eng, link)
			outcomes[i] = Outcome{Index: i, URL: link.SourceURL(), Link: link, Err: err}
			c.report(outcomes[i])
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

func (c *Coordinator) report(o Outcome) {
	if o.OK() {
		downloadURL, _ := o.Link.DownloadURL()
		metrics.Resolutions.WithLabelValues("ok").Inc()
		slog.Info("Link resolved", "url", o.URL, "download_url", downloadURL)
		c.onProgress.Emit(progress.LevelSuccess, "Resolved %s", downloadURL)
		return
	}

	metrics.Resolutions.WithLabelValues(o.Kind().String()).Inc()
	slog.Warn("Link failed", "url", o.URL, "kind", o.Kind().String(), "error", o.Err)
	c.onProgress.Emit(progress.LevelError, "%s: %v", o.URL, o.Err)
}
