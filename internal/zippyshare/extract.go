package zippyshare

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Marker is the DOM lookup whose href write computes the download path.
	Marker = "document.getElementById('dlbutton')"

	// CaptureVar receives the href write once the fragment is rewritten.
	CaptureVar = "dlbutton"

	scriptOpenTag  = `<script type="text/javascript">`
	scriptCloseTag = `</script>`
	hrefAssignment = ".href = "
)

var (
	// ErrMarkerNotFound is returned when the page has no href assignment to the marker.
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrScriptBoundaryNotFound is returned when no script tag encloses the marker.
	ErrScriptBoundaryNotFound = errors.New("script boundary not found")
)

// ExtractScript returns the inline script fragment that assigns marker.href.
//
// The search is plain text, not an HTML parse:
//  1. Find the first occurrence of `<marker>.href = `
//  2. Search backward for the nearest `<script type="text/javascript">`
//  3. Search forward from the marker for the nearest `</script>`
//
// The fragment is the text strictly between the two tags. A marker that sits
// inside an HTML comment or an unrelated script is matched all the same.
//
// Example:
//
//	html := `<script type="text/javascript">document.getElementById('dlbutton').href = "/d/x";</script>`
//	frag, _ := ExtractScript(html, Marker)
//	// frag == `document.getElementById('dlbutton').href = "/d/x";`
func ExtractScript(html, marker string) (string, error) {
	pos := strings.Index(html, marker+hrefAssignment)
	if pos == -1 {
		return "", fmt.Errorf("%w: %s", ErrMarkerNotFound, marker)
	}

	start := strings.LastIndex(html[:pos], scriptOpenTag)
	if start == -1 {
		return "", fmt.Errorf("%w: no %s before marker", ErrScriptBoundaryNotFound, scriptOpenTag)
	}
	start += len(scriptOpenTag)

	end := strings.Index(html[pos:], scriptCloseTag)
	if end == -1 {
		return "", fmt.Errorf("%w: no %s after marker", ErrScriptBoundaryNotFound, scriptCloseTag)
	}
	end += pos

	return html[start:end], nil
}
