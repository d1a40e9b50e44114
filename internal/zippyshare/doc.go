// Package zippyshare locates and rewrites the inline script a Zippyshare
// landing page uses to compute its download link.
//
// The landing page contains something like:
//
//	<script type="text/javascript">
//	    var a = 254;
//	    document.getElementById('dlbutton').href = "/d/abc/" + (a % 1000) + "/song.mp3";
//	</script>
//
// # Extraction
//
// ExtractScript finds the first href assignment to Marker and returns the
// body of the nearest enclosing script tags. It is a string search over the
// raw page, so it behaves the same on malformed or multiply-scripted pages
// as a naive reader would:
//
//	frag, err := zippyshare.ExtractScript(html, zippyshare.Marker)
//	if errors.Is(err, zippyshare.ErrMarkerNotFound) {
//	    // not a landing page
//	}
//
// # Rewriting
//
// The fragment writes to a DOM element that does not exist outside a real
// page. RewriteScript points the write at CaptureVar and WrapScript turns the
// result into a callable returning the computed href:
//
//	src := zippyshare.WrapScript(
//	    zippyshare.RewriteScript(frag, zippyshare.Marker, zippyshare.CaptureVar),
//	    zippyshare.CaptureVar,
//	)
//	// src is evaluated by an engine.Page as "(" + src + ")()"
package zippyshare
