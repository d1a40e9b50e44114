package audio

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty removes the frame.
	TagEmpty TagEditAction = iota

	// TagModify writes the value from the landing page.
	TagModify

	// TagDoNotModify leaves the existing frame unchanged.
	TagDoNotModify
)

// SourceDescription is the TXXX description under which the landing page
// URL is stored.
const SourceDescription = "Source URL"

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    Title:    TagDoNotModify, // keep the uploader's title
//	    Source:   TagModify,      // record where the file came from
//	    Comments: TagEmpty,       // drop uploader comments
//	}
type TagConfig struct {
	// Title controls the TIT2 frame. The page title is only written when
	// the file has no title of its own.
	Title TagEditAction

	// Source controls the TXXX "Source URL" frame.
	Source TagEditAction

	// Comments controls the COMM frames.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Title:    TagModify,
		Source:   TagModify,
		Comments: TagDoNotModify,
	}
}

// Tagger records where a downloaded MP3 came from in its ID3 tags.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.TagSource("/music/song.mp3", "https://www12.zippyshare.com/v/abc/file.html", "song.mp3")
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// CanTag reports whether path looks like a file the Tagger can handle.
func CanTag(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

// TagSource writes the landing page URL and title to the MP3 at path.
//
// Returns an error if the file cannot be opened, parsed or saved.
func (t *Tagger) TagSource(path, sourceURL, title string) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	switch t.config.Title {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Title/Songname/Content description"))
	case TagModify:
		if title != "" && tag.Title() == "" {
			tag.SetTitle(strings.TrimSuffix(title, filepath.Ext(title)))
		}
	}

	if t.config.Source != TagDoNotModify {
		removeSourceFrames(tag)
	}
	if t.config.Source == TagModify {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: SourceDescription,
			Value:       sourceURL,
		})
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}

	return tag.Save()
}

// removeSourceFrames drops TXXX frames described as SourceDescription and
// keeps every other user defined frame.
func removeSourceFrames(tag *id3v2.Tag) {
	id := tag.CommonID("User defined text information frame")

	var keep []id3v2.UserDefinedTextFrame
	for _, f := range tag.GetFrames(id) {
		udtf, ok := f.(id3v2.UserDefinedTextFrame)
		if ok && udtf.Description != SourceDescription {
			keep = append(keep, udtf)
		}
	}

	tag.DeleteFrames(id)
	for _, f := range keep {
		tag.AddUserDefinedTextFrame(f)
	}
}
