package model

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrAlreadySet is returned when a Link field that was already populated
// is assigned a second time.
var ErrAlreadySet = errors.New("field already set")

// InvalidLinkError reports a landing-page URL without a scheme or host.
type InvalidLinkError struct {
	Link string
}

func (e *InvalidLinkError) Error() string {
	return fmt.Sprintf("Invalid Zippyshare URL: %s", e.Link)
}

// Link represents one landing-page URL and everything learned about it
// while it is resolved.
//
// A Link is created from a raw URL string at the start of a batch and is
// populated only by its own resolution:
//   - SourceURL and BaseURL are fixed at creation
//   - Script, Title and DownloadPath start empty and can each be set once
//   - DownloadURL is derived from BaseURL and DownloadPath
//
// Setters are not synchronized. A Link must only be written by the
// goroutine resolving it.
//
// Example:
//
//	link, err := NewLink("https://www12.zippyshare.com/v/abc/file.html")
//	// link.BaseURL() == "https://www12.zippyshare.com"
//	_ = link.SetDownloadPath("/d/abc/123/song.mp3")
//	u, _ := link.DownloadURL()
//	// u == "https://www12.zippyshare.com/d/abc/123/song.mp3"
type Link struct {
	sourceURL string
	baseURL   string

	script       *string
	title        *string
	downloadPath *string
}

// NewLink creates a Link from a landing-page URL.
//
// Returns an *InvalidLinkError if the URL cannot be parsed or has no
// scheme or host.
func NewLink(rawURL string) (*Link, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &InvalidLinkError{Link: rawURL}
	}

	return &Link{
		sourceURL: rawURL,
		baseURL:   fmt.Sprintf("%s://%s", u.Scheme, u.Host),
	}, nil
}

// SourceURL returns the original landing-page URL.
func (l *Link) SourceURL() string {
	return l.sourceURL
}

// BaseURL returns the scheme and host of the landing page, e.g. "https://www12.zippyshare.com".
func (l *Link) BaseURL() string {
	return l.baseURL
}

// Script returns the extracted script fragment, if set.
func (l *Link) Script() (string, bool) {
	return get(l.script)
}

// SetScript stores the extracted script fragment.
func (l *Link) SetScript(script string) error {
	return set(&l.script, script, "script")
}

// Title returns the landing page title, if set.
func (l *Link) Title() (string, bool) {
	return get(l.title)
}

// SetTitle stores the landing page title.
func (l *Link) SetTitle(title string) error {
	return set(&l.title, title, "title")
}

// DownloadPath returns the path computed by the page script, if set.
func (l *Link) DownloadPath() (string, bool) {
	return get(l.downloadPath)
}

// SetDownloadPath stores the path computed by the page script.
func (l *Link) SetDownloadPath(path string) error {
	return set(&l.downloadPath, path, "download path")
}

// DownloadURL returns BaseURL followed by DownloadPath.
// The second value is false until the download path has been set.
func (l *Link) DownloadURL() (string, bool) {
	path, ok := l.DownloadPath()
	if !ok {
		return "", false
	}
	return l.baseURL + path, true
}

func get(field *string) (string, bool) {
	if field == nil {
		return "", false
	}
	return *field, true
}

func set(field **string, value, name string) error {
	if *field != nil {
		return fmt.Errorf("%s: %w", name, ErrAlreadySet)
	}
	*field = &value
	return nil
}
