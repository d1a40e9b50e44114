package resolve

import (
	"fmt"

	"github.com/turkoid/zipadeedoodah/internal/model"
)

// Kind classifies why a single link could not be resolved.
type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindFetchFailed
	KindExtractionFailed
	KindEvaluationFailed
	KindEvaluationTimeout
)

// String returns the metric label for k.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindFetchFailed:
		return "fetch_failed"
	case KindExtractionFailed:
		return "extraction_failed"
	case KindEvaluationFailed:
		return "evaluation_failed"
	case KindEvaluationTimeout:
		return "evaluation_timeout"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) describe() string {
	switch k {
	case KindFetchFailed:
		return "fetch failed"
	case KindExtractionFailed:
		return "script extraction failed"
	case KindEvaluationFailed:
		return "script evaluation failed"
	case KindEvaluationTimeout:
		return "script evaluation timed out"
	default:
		return k.String()
	}
}

// Error is the failure of one link. It never aborts the batch.
type Error struct {
	Kind Kind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindInvalidURL {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.describe(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, link *model.Link, err error) *Error {
	return &Error{Kind: kind, URL: link.SourceURL(), Err: err}
}
