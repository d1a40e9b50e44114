package zippyshare

import (
	"fmt"
	"strings"
)

// RewriteScript replaces every occurrence of marker in fragment with
// captureVar, so the DOM write lands on a plain object instead.
//
// This is a literal string replace with no scoping. Applying it to an
// already rewritten fragment leaves it unchanged.
func RewriteScript(fragment, marker, captureVar string) string {
	return strings.ReplaceAll(fragment, marker, captureVar)
}

// WrapScript embeds a rewritten fragment in a zero-argument function that
// declares captureVar as an empty object, runs the fragment and returns
// captureVar.href.
//
// The function expression form is accepted by both browser and otto
// evaluators; callers invoke it as "(" + src + ")()".
func WrapScript(rewritten, captureVar string) string {
	return fmt.Sprintf("function () { var %s = {}; %s\nreturn %s.href; }", captureVar, rewritten, captureVar)
}
