// Package resolve turns Zippyshare landing-page URLs into direct download
// URLs.
//
// # Resolver
//
// Resolver handles one link: fetch the page, extract and rewrite the
// download script (package zippyshare), evaluate it on a fresh engine page
// (package engine) and store the path on the model.Link.
//
// # Coordinator
//
// Coordinator runs a batch:
//
//	resolver := resolve.NewResolver(client, 60*time.Second)
//	coord := resolve.NewCoordinator(launcher, resolver, 0, onProgress)
//
//	outcomes, err := coord.Run(ctx, urls)
//	if err != nil {
//	    // the engine could not be launched
//	}
//	for _, o := range outcomes {
//	    if o.OK() {
//	        u, _ := o.Link.DownloadURL()
//	        fmt.Println(u)
//	    } else {
//	        fmt.Println(o.Kind(), o.Err)
//	    }
//	}
//
// Every link runs in its own goroutine with its own timeout. Outcomes are
// written to the slot of their input index, so the result order always
// matches the input order. A failing link is recorded and never stops the
// others.
//
// # Errors
//
// Per-link failures are *Error values with one of these kinds:
//   - KindInvalidURL: the URL has no scheme or host
//   - KindFetchFailed: transport error or non-200 status
//   - KindExtractionFailed: marker or enclosing script tag not found
//   - KindEvaluationFailed: the script threw or returned no string
//   - KindEvaluationTimeout: the link's deadline passed during evaluation
package resolve
