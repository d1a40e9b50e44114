package audio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
)

func writeUntagged(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.mp3")
	// frame sync bytes followed by padding; enough for id3v2 to treat as audio
	if err := os.WriteFile(path, append([]byte{0xFF, 0xFB, 0x90, 0x00}, bytes.Repeat([]byte{0}, 256)...), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sourceFrames(t *testing.T, tag *id3v2.Tag) []id3v2.UserDefinedTextFrame {
	t.Helper()
	var frames []id3v2.UserDefinedTextFrame
	for _, f := range tag.GetFrames(tag.CommonID("User defined text information frame")) {
		udtf, ok := f.(id3v2.UserDefinedTextFrame)
		if !ok {
			t.Fatalf("unexpected frame type %T", f)
		}
		frames = append(frames, udtf)
	}
	return frames
}

func TestTagger_TagSource(t *testing.T) {
	path := writeUntagged(t)
	tagger := NewTagger(nil)

	if err := tagger.TagSource(path, "http://example.com/v/abc", "Great Song.mp3"); err != nil {
		t.Fatal(err)
	}
	// re-tagging replaces the source instead of adding a second frame
	if err := tagger.TagSource(path, "http://example.com/v/def", "Other.mp3"); err != nil {
		t.Fatal(err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Title() != "Great Song" {
		t.Errorf("title = %q, want %q", tag.Title(), "Great Song")
	}

	frames := sourceFrames(t, tag)
	if len(frames) != 1 {
		t.Fatalf("got %d source frames, want 1", len(frames))
	}
	if frames[0].Description != SourceDescription || frames[0].Value != "http://example.com/v/def" {
		t.Errorf("source frame = %+v", frames[0])
	}
}

func TestTagger_DoNotModify(t *testing.T) {
	path := writeUntagged(t)
	tagger := NewTagger(&TagConfig{Title: TagDoNotModify, Source: TagDoNotModify, Comments: TagDoNotModify})

	if err := tagger.TagSource(path, "http://example.com/v/abc", "Song.mp3"); err != nil {
		t.Fatal(err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Title() != "" {
		t.Errorf("title = %q, want empty", tag.Title())
	}
	if frames := sourceFrames(t, tag); len(frames) != 0 {
		t.Errorf("got %d source frames, want 0", len(frames))
	}
}

func TestCanTag(t *testing.T) {
	tests := map[string]bool{
		"song.mp3":  true,
		"SONG.MP3":  true,
		"album.zip": false,
		"noext":     false,
	}
	for path, want := range tests {
		if got := CanTag(path); got != want {
			t.Errorf("CanTag(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestTagger_KeepsOtherUserFrames(t *testing.T) {
	path := writeUntagged(t)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
		Encoding:    id3v2.EncodingUTF8,
		Description: "Uploader",
		Value:       "someone",
	})
	if err := tag.Save(); err != nil {
		t.Fatal(err)
	}
	tag.Close()

	if err := NewTagger(nil).TagSource(path, "http://example.com/v/abc", ""); err != nil {
		t.Fatal(err)
	}

	tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	got := make(map[string]string)
	for _, f := range sourceFrames(t, tag) {
		got[f.Description] = f.Value
	}
	if got["Uploader"] != "someone" || got[SourceDescription] != "http://example.com/v/abc" {
		t.Errorf("user frames = %v", got)
	}
}
