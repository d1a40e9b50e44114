// Package audio handles downloaded audio files: ID3 source tagging and
// playlist generation.
//
// # ID3 Tagging
//
// The Tagger records the landing page a file came from in a TXXX frame and
// fills in an empty title from the page title:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	if audio.CanTag(path) {
//	    err := tagger.TagSource(path, sourceURL, title)
//	}
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(entries)
//	os.WriteFile("zippyshare.m3u", []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
