// Package ioutils provides the small file system helpers used by the CLI
// and the download manager.
//
// # Link Lists
//
//	links, err := ioutils.ReadLinkFile("links.txt") // one link per line
//	links = ioutils.SplitLinks("http://a/v/1,http://a/v/2")
//
// # File Names
//
//	name := ioutils.FileNameFromURL(downloadURL, "download")
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // "Song_ Part 1_2"
//
// # Directories
//
//	if !ioutils.DirExists(dir) {
//	    err := ioutils.EnsureDir(dir)
//	}
package ioutils
