// Package engine runs a landing page's rewritten script and returns the
// value it computes.
//
// Two implementations share the Engine and Page interfaces:
//
//   - Browser drives headless Chrome through chromedp. The browser process is
//     started once per batch and every Page is its own tab.
//   - Otto runs scripts in the pure-Go otto interpreter with a few browser
//     globals stubbed. Every Page is a fresh VM.
//
// Usage:
//
//	launch, _ := engine.NewLauncher(engine.Options{Kind: engine.KindChrome, Headless: true})
//	eng, err := launch(ctx)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	page, err := eng.NewPage(ctx)
//	if err != nil {
//	    return err
//	}
//	defer page.Close()
//
//	href, err := page.Evaluate(ctx, `function () { return "/d/x"; }`)
//
// Evaluate fails with ErrEvaluation when the script throws or returns a
// non-string, and with ErrTimeout when ctx's deadline passes first.
package engine
