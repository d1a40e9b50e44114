package audio

import (
	"strings"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Path: "/music/first.mp3", Title: "First Song.mp3"},
		{Path: "/music/second.mp3"},
	}
}

func TestPlaylistCreator_M3U(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, false).CreatePlaylist(testEntries())

	want := "first.mp3\nsecond.mp3\n"
	if content != want {
		t.Errorf("got %q, want %q", content, want)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, true).CreatePlaylist(testEntries())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:-1,First Song\nfirst.mp3\n") {
		t.Errorf("missing EXTINF for titled entry: %q", content)
	}
	if !strings.Contains(content, "#EXTINF:-1,second\nsecond.mp3\n") {
		t.Errorf("untitled entry should use the file name: %q", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	content := NewPlaylistCreator(FormatPLS, false).CreatePlaylist(testEntries())

	for _, want := range []string{
		"[playlist]\n",
		"File1=first.mp3\n",
		"Title1=First Song\n",
		"File2=second.mp3\n",
		"NumberOfEntries=2\n",
		"Version=2\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS missing %q:\n%s", want, content)
		}
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		name string
		want PlaylistFormat
		ext  string
	}{
		{"m3u", FormatM3U, ".m3u"},
		{"PLS", FormatPLS, ".pls"},
		{"wpl", FormatM3U, ".m3u"},
	}
	for _, tt := range tests {
		got := ParsePlaylistFormat(tt.name)
		if got != tt.want || got.Extension() != tt.ext {
			t.Errorf("ParsePlaylistFormat(%q) = %v (%s), want %v (%s)", tt.name, got, got.Extension(), tt.want, tt.ext)
		}
	}
}
