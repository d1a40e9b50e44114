// Package progress carries user-facing status messages from the resolver
// and download manager to the CLI and TUI.
//
// Producers hold a Func and emit formatted events; a nil Func drops them:
//
//	onProgress.Emit(progress.LevelSuccess, "Resolved %s", link)
//
// LevelVerbose events are meant to be shown only in verbose mode.
package progress
