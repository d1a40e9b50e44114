package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robertkrimen/otto"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; zipadeedoodah)"

// bootstrap seeds the browser globals landing-page scripts commonly touch.
// getElementById returns a detached stub element instead of null.
const bootstrap = `
var window = this;
var navigator = { userAgent: %q };
var location = { href: "", host: "", protocol: "https:" };
var document = {
	cookie: "",
	getElementById: function (id) {
		return { id: id, href: "", getAttribute: function () { return null; } };
	}
};
`

var errHalt = errors.New("halt")

// Otto evaluates scripts with the pure-Go otto interpreter.
//
// Each Page gets a fresh VM, so no state leaks between pages. There is no
// process to start; the engine only remembers whether it was closed.
type Otto struct {
	userAgent string

	mu     sync.Mutex
	closed bool
}

// NewOttoLauncher returns a Launcher for the otto interpreter.
func NewOttoLauncher(opts Options) Launcher {
	return func(ctx context.Context) (Engine, error) {
		return NewOtto(opts), nil
	}
}

// NewOtto creates an otto engine.
func NewOtto(opts Options) *Otto {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Otto{userAgent: ua}
}

// NewPage creates a VM with the bootstrap globals loaded.
func (o *Otto) NewPage(ctx context.Context) (Page, error) {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if ctx.Err() != nil {
		return nil, contextError(ctx)
	}

	vm := otto.New()
	if _, err := vm.Run(fmt.Sprintf(bootstrap, o.userAgent)); err != nil {
		return nil, fmt.Errorf("bootstrap globals: %w", err)
	}
	return &ottoPage{vm: vm}, nil
}

// Close marks the engine closed.
func (o *Otto) Close() error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	return nil
}

type ottoPage struct {
	vm *otto.Otto
}

// Evaluate runs callable and interrupts the VM once ctx is done.
func (p *ottoPage) Evaluate(ctx context.Context, callable string) (result string, err error) {
	if ctx.Err() != nil {
		return "", contextError(ctx)
	}

	vm := p.vm
	vm.Interrupt = make(chan func(), 1)
	done := make(chan struct{})
	defer close(done)

	// The goroutine may still fire after Evaluate returns, so it only
	// touches vm and never the page.
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt <- func() { panic(errHalt) }
		case <-done:
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			if r == errHalt {
				result, err = "", contextError(ctx)
				return
			}
			panic(r)
		}
	}()

	value, runErr := vm.Run(invoke(callable))
	if runErr != nil {
		return "", fmt.Errorf("%w: %s", ErrEvaluation, runErr.Error())
	}
	if !value.IsString() {
		return "", fmt.Errorf("%w: result is %s, not a string", ErrEvaluation, valueType(value))
	}
	return value.String(), nil
}

func valueType(v otto.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsNumber():
		return "number"
	case v.IsBoolean():
		return "boolean"
	default:
		return "object"
	}
}

func (p *ottoPage) Close() error {
	p.vm = nil
	return nil
}
