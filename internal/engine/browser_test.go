package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"testing"
	"time"
)

const hrefCallable = `function () { var dlbutton = {}; dlbutton.href = "/files/" + (3 * 7); return dlbutton.href; }`

// connectDevTools returns a Browser attached to an in-process DevTools server.
func connectDevTools(t *testing.T) (*Browser, *devTools) {
	t.Helper()
	d := newDevTools(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := LaunchBrowser(ctx, Options{RemoteURL: d.URL()})
	if err != nil {
		t.Fatalf("LaunchBrowser: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b, d
}

func testContext(t *testing.T, d time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

func TestBrowser_PageOutlivesOpenContext(t *testing.T) {
	b, _ := connectDevTools(t)

	openCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	page, err := b.NewPage(openCtx)
	cancel()
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	got, err := page.Evaluate(testContext(t, 5*time.Second), hrefCallable)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != "/files/21" {
		t.Errorf("got %q, want %q", got, "/files/21")
	}
}

func TestBrowser_EvaluateErrors(t *testing.T) {
	b, _ := connectDevTools(t)

	tests := []struct {
		name     string
		callable string
	}{
		{"throws", `function () { throw new Error("boom"); }`},
		{"reference error", `function () { return missing.href; }`},
		{"undefined result", `function () { var dlbutton = {}; return dlbutton.href; }`},
		{"number result", `function () { return 42; }`},
		{"object result", `function () { return {}; }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t, 5*time.Second)
			page, err := b.NewPage(ctx)
			if err != nil {
				t.Fatal(err)
			}
			defer page.Close()

			_, err = page.Evaluate(ctx, tt.callable)
			if !errors.Is(err, ErrEvaluation) {
				t.Errorf("error = %v, want ErrEvaluation", err)
			}
		})
	}
}

func TestBrowser_EvaluateTimeoutWithDevTools(t *testing.T) {
	b, d := connectDevTools(t)

	page, err := b.NewPage(testContext(t, 5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	start := time.Now()
	_, err = page.Evaluate(testContext(t, 300*time.Millisecond), `function () { `+hangMarker+` {} }`)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
	if d.evals.Load() != 1 {
		t.Errorf("evaluations sent = %d, want 1", d.evals.Load())
	}
}

func TestBrowser_ConcurrentPages(t *testing.T) {
	b, _ := connectDevTools(t)
	ctx := testContext(t, 10*time.Second)

	const n = 8
	results := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := b.NewPage(ctx)
			if err != nil {
				errs[i] = err
				return
			}
			defer page.Close()
			results[i], errs[i] = page.Evaluate(ctx, fmt.Sprintf(`function () { return "/files/%d"; }`, i))
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Errorf("page %d: %v", i, errs[i])
			continue
		}
		if want := fmt.Sprintf("/files/%d", i); results[i] != want {
			t.Errorf("page %d = %q, want %q", i, results[i], want)
		}
	}
}

func TestBrowser_NewPageWithDoneContext(t *testing.T) {
	b, _ := connectDevTools(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.NewPage(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBrowser_NewPageAfterClose(t *testing.T) {
	b, _ := connectDevTools(t)
	_ = b.Close()

	if _, err := b.NewPage(testContext(t, time.Second)); !errors.Is(err, ErrClosed) {
		t.Errorf("error = %v, want ErrClosed", err)
	}
}

func TestBrowser_LaunchUnreachable(t *testing.T) {
	ctx := testContext(t, 5*time.Second)
	if _, err := LaunchBrowser(ctx, Options{RemoteURL: "ws://127.0.0.1:1/devtools/browser/none"}); err == nil {
		t.Error("expected error for unreachable browser")
	}
}

// launchChrome starts a real browser, when one is installed.
func launchChrome(t *testing.T) *Browser {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	var path string
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if p, err := exec.LookPath(name); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		t.Skip("no chrome executable found")
	}

	b, err := LaunchBrowser(testContext(t, 30*time.Second), Options{ChromePath: path, Headless: true})
	if err != nil {
		t.Fatalf("LaunchBrowser: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestChrome_Evaluate(t *testing.T) {
	b := launchChrome(t)
	ctx := testContext(t, 30*time.Second)

	page, err := b.NewPage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	got, err := page.Evaluate(ctx, hrefCallable)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/files/21" {
		t.Errorf("got %q, want %q", got, "/files/21")
	}

	if _, err := page.Evaluate(ctx, `function () { throw new Error("boom"); }`); !errors.Is(err, ErrEvaluation) {
		t.Errorf("throw: error = %v, want ErrEvaluation", err)
	}
	if _, err := page.Evaluate(ctx, `function () { return undefined; }`); !errors.Is(err, ErrEvaluation) {
		t.Errorf("undefined: error = %v, want ErrEvaluation", err)
	}
}

func TestChrome_EvaluateTimeout(t *testing.T) {
	b := launchChrome(t)

	page, err := b.NewPage(testContext(t, 30*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	defer page.Close()

	if _, err := page.Evaluate(testContext(t, 500*time.Millisecond), `function () { while (true) {} }`); !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}
