package engine

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEvaluation is returned when a script throws or does not produce a string.
	ErrEvaluation = errors.New("evaluation failed")

	// ErrTimeout is returned when the context deadline passes during evaluation.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrClosed is returned by NewPage once the engine has been closed.
	ErrClosed = errors.New("engine closed")
)

// Engine is a launched scripting engine shared by a whole batch.
//
// Implementations must allow NewPage to be called from many goroutines at
// once. Close releases the engine and is safe to call more than once.
type Engine interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is an isolated scripting context used for a single evaluation.
// A Page is not shared between goroutines.
type Page interface {
	// Evaluate invokes callable, the source of a zero-argument function,
	// and returns its string result.
	Evaluate(ctx context.Context, callable string) (string, error)
	Close() error
}

// Launcher starts an Engine.
type Launcher func(ctx context.Context) (Engine, error)

// Kind names an engine implementation.
type Kind string

const (
	KindChrome Kind = "chrome"
	KindOtto   Kind = "otto"
)

// Options configures the engine returned by NewLauncher.
type Options struct {
	Kind Kind

	// ChromePath overrides the browser executable. Empty uses chromedp's lookup.
	ChromePath string

	// RemoteURL is the DevTools websocket URL of a running browser, e.g.
	// ws://127.0.0.1:9222/devtools/browser/<id>. When set no process is started.
	RemoteURL string

	Headless  bool
	UserAgent string
}

// NewLauncher returns the Launcher for opts.Kind.
func NewLauncher(opts Options) (Launcher, error) {
	switch opts.Kind {
	case KindChrome, "":
		return NewBrowserLauncher(opts), nil
	case KindOtto:
		return NewOttoLauncher(opts), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", opts.Kind)
	}
}

// invoke turns callable into an immediately invoked expression.
func invoke(callable string) string {
	return "(" + callable + ")()"
}

// contextError maps a finished context to ErrTimeout when its deadline passed.
func contextError(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
