// Package model defines the core data structures used throughout
// zipadeedoodah.
//
// # Link
//
// Link holds one landing-page URL and the values computed while it is
// resolved:
//
//	link, err := model.NewLink("https://www12.zippyshare.com/v/abc/file.html")
//	if err != nil {
//	    // *model.InvalidLinkError: "Invalid Zippyshare URL: ..."
//	}
//	fmt.Println(link.BaseURL()) // https://www12.zippyshare.com
//
// Every optional field is single-assignment. Setting it twice returns
// ErrAlreadySet and leaves the first value in place:
//
//	_ = link.SetDownloadPath("/d/abc/123/song.mp3")
//	err = link.SetDownloadPath("/other") // errors.Is(err, model.ErrAlreadySet)
//
// DownloadURL is never stored; it is derived from BaseURL and DownloadPath.
package model
