package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Browser evaluates scripts in a headless Chrome process driven by chromedp.
//
// One browser process serves the whole batch. Every Page is a separate tab
// (target) created from the shared browser context, so pages share no
// script state. chromedp allows tabs to be created concurrently from the
// same browser context.
type Browser struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewBrowserLauncher returns a Launcher that starts headless Chrome.
func NewBrowserLauncher(opts Options) Launcher {
	return func(ctx context.Context) (Engine, error) {
		return LaunchBrowser(ctx, opts)
	}
}

// LaunchBrowser starts a browser process and waits until it accepts commands.
// With opts.RemoteURL set it connects to a running browser instead.
//
// The process outlives ctx; it is stopped by Close.
func LaunchBrowser(ctx context.Context, opts Options) (*Browser, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}

	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)
	if opts.RemoteURL != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(context.WithoutCancel(ctx), opts.RemoteURL, chromedp.NoModifyURL)
	} else {
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	}
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(chromeLog(slog.LevelWarn)),
		chromedp.WithDebugf(chromeLog(slog.LevelDebug)),
	)

	started := make(chan error, 1)
	go func() {
		started <- chromedp.Run(browserCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			cancelBrowser()
			cancelAlloc()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-ctx.Done():
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", ctx.Err())
	}

	slog.Debug("browser started", "headless", opts.Headless, "exec_path", opts.ChromePath)

	return &Browser{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

// NewPage opens a new tab.
func (b *Browser) NewPage(ctx context.Context) (Page, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	if ctx.Err() != nil {
		return nil, contextError(ctx)
	}

	// The first Run attaches the tab and ties its event loop to the context
	// it is given, so it must run on tabCtx and not on a shorter one.
	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	opened := make(chan error, 1)
	go func() {
		opened <- chromedp.Run(tabCtx)
	}()

	select {
	case err := <-opened:
		if err != nil {
			cancelTab()
			return nil, fmt.Errorf("failed to open tab: %w", err)
		}
	case <-ctx.Done():
		cancelTab()
		return nil, contextError(ctx)
	}

	return &browserPage{ctx: tabCtx, cancel: cancelTab}, nil
}

// Close stops the browser process. Open tabs are closed with it.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	b.cancelBrowser()
	b.cancelAlloc()
	slog.Debug("browser stopped")
	return nil
}

type browserPage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *browserPage) Evaluate(ctx context.Context, callable string) (string, error) {
	runCtx, stop := bind(p.ctx, ctx)
	defer stop()

	var obj *runtime.RemoteObject
	err := chromedp.Run(runCtx, chromedp.Evaluate(invoke(callable), &obj, chromedp.EvalAsValue))
	if err != nil {
		if ctx.Err() != nil {
			return "", contextError(ctx)
		}
		var exc *runtime.ExceptionDetails
		if errors.As(err, &exc) {
			return "", fmt.Errorf("%w: %s", ErrEvaluation, exc.Error())
		}
		return "", fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	if obj == nil || obj.Type != runtime.TypeString {
		return "", fmt.Errorf("%w: result is %s, not a string", ErrEvaluation, resultType(obj))
	}

	var s string
	if err := json.Unmarshal(obj.Value, &s); err != nil {
		return "", fmt.Errorf("%w: decode result: %v", ErrEvaluation, err)
	}
	return s, nil
}

// Close closes the tab.
func (p *browserPage) Close() error {
	p.cancel()
	return nil
}

// bind derives a context from the chromedp context tab that is also
// cancelled when caller is done. Cancelling it does not close the tab, but
// it must only be used once the tab is attached.
func bind(tab, caller context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(tab)
	stopAfter := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stopAfter()
		cancel()
	}
}

func resultType(obj *runtime.RemoteObject) string {
	if obj == nil {
		return "empty"
	}
	return obj.Type.String()
}

func chromeLog(level slog.Level) func(string, ...any) {
	return func(format string, args ...any) {
		slog.Log(context.Background(), level, fmt.Sprintf(format, args...), "component", "chromedp")
	}
}
