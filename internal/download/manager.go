package download

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turkoid/zipadeedoodah/internal/audio"
	"github.com/turkoid/zipadeedoodah/internal/config"
	"github.com/turkoid/zipadeedoodah/internal/http"
	ioutils "github.com/turkoid/zipadeedoodah/internal/io"
	"github.com/turkoid/zipadeedoodah/internal/metrics"
	"github.com/turkoid/zipadeedoodah/internal/progress"
	"github.com/turkoid/zipadeedoodah/internal/resolve"
)

// File is the download result for one resolved link.
type File struct {
	// Index is the position of the link in the original input.
	Index       int
	SourceURL   string
	DownloadURL string
	Title       string
	Path        string

	// Skipped is true when an existing file of the expected size was kept.
	Skipped bool
	Err     error
}

// Manager saves resolved links into the target directory.
type Manager struct {
	settings   *config.Settings
	dir        string
	httpClient *http.Client
	tagger     *audio.Tagger
	playlist   *audio.PlaylistCreator

	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64

	onProgress progress.Func
}

// NewManager creates a new download Manager writing into dir.
func NewManager(settings *config.Settings, dir string, client *http.Client, onProgress progress.Func) *Manager {
	return &Manager{
		settings:   settings,
		dir:        dir,
		httpClient: client,
		tagger:     audio.NewTagger(audio.DefaultTagConfig()),
		playlist:   audio.NewPlaylistCreator(audio.ParsePlaylistFormat(settings.PlaylistFormat), settings.M3UExtended),
		onProgress: onProgress,
	}
}

// Download saves every successful outcome and returns one File per
// successful outcome, in input order. Failed outcomes are not downloaded.
//
// A failing file never stops the others. The returned error is only set
// when the target directory cannot be created or ctx is cancelled.
func (m *Manager) Download(ctx context.Context, outcomes []resolve.Outcome) ([]File, error) {
	if err := ioutils.EnsureDir(m.dir); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", m.dir, err)
	}

	files := m.plan(outcomes)
	atomic.StoreInt32(&m.totalFiles, int32(len(files)))

	g := new(errgroup.Group)
	g.SetLimit(max(m.settings.MaxConcurrentDownloads, 1))

	for i := range files {
		f := &files[i]
		g.Go(func() error {
			m.downloadFile(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	if m.settings.CreatePlaylist {
		m.writePlaylist(files)
	}

	var failed int
	for _, f := range files {
		if f.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		m.progress(progress.LevelSuccess, "Downloaded %d files to %s", len(files), m.dir)
	} else {
		m.progress(progress.LevelWarning, "Finished downloading, %d of %d files failed", failed, len(files))
	}

	return files, ctx.Err()
}

// GetProgress returns current download progress.
func (m *Manager) GetProgress() (received int64, filesReceived, filesTotal int32) {
	return atomic.LoadInt64(&m.receivedBytes),
		atomic.LoadInt32(&m.downloadedFiles), atomic.LoadInt32(&m.totalFiles)
}

// plan picks a unique local path for every successful outcome.
func (m *Manager) plan(outcomes []resolve.Outcome) []File {
	used := make(map[string]bool)
	var files []File

	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		downloadURL, _ := o.Link.DownloadURL()
		title, _ := o.Link.Title()

		name := uniqueName(ioutils.FileNameFromURL(downloadURL, fmt.Sprintf("download-%d", o.Index+1)), used)

		files = append(files, File{
			Index:       o.Index,
			SourceURL:   o.URL,
			DownloadURL: downloadURL,
			Title:       title,
			Path:        filepath.Join(m.dir, name),
		})
	}
	return files
}

// uniqueName returns name, or name with a " (n)" suffix, such that it is
// not in used when compared case-insensitively, and records the result.
func uniqueName(name string, used map[string]bool) string {
	candidate := name
	ext := filepath.Ext(name)
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func (m *Manager) downloadFile(ctx context.Context, f *File) {
	if m.existingIsComplete(ctx, f) {
		f.Skipped = true
		atomic.AddInt32(&m.downloadedFiles, 1)
		metrics.Downloads.WithLabelValues("skipped").Inc()
		m.progress(progress.LevelVerbose, "Skipping existing: %s", filepath.Base(f.Path))
		return
	}

	var err error
	for tries := 0; tries < m.settings.DownloadMaxRetries; tries++ {
		var last int64
		err = m.httpClient.DownloadFile(ctx, f.DownloadURL, f.Path, func(written, total int64) {
			atomic.AddInt64(&m.receivedBytes, written-last)
			metrics.DownloadedBytes.Add(float64(written - last))
			last = written
		})
		if err == nil || ctx.Err() != nil {
			break
		}
		if tries+1 < m.settings.DownloadMaxRetries {
			m.progress(progress.LevelWarning, "Retry %d/%d for %s", tries+1, m.settings.DownloadMaxRetries, filepath.Base(f.Path))
			m.waitForRetry(ctx, tries)
		}
	}

	if err != nil {
		f.Err = err
		metrics.Downloads.WithLabelValues("failed").Inc()
		m.progress(progress.LevelError, "Error downloading %s: %v", f.DownloadURL, err)
		return
	}

	atomic.AddInt32(&m.downloadedFiles, 1)
	metrics.Downloads.WithLabelValues("downloaded").Inc()

	if m.settings.TagSource && audio.CanTag(f.Path) {
		if err := m.tagger.TagSource(f.Path, f.SourceURL, f.Title); err != nil {
			m.progress(progress.LevelWarning, "Error tagging %s: %v", filepath.Base(f.Path), err)
		}
	}

	m.progress(progress.LevelVerbose, "Downloaded: %s", filepath.Base(f.Path))
}

// existingIsComplete reports whether f.Path already exists with a size
// within AllowedFileSizeDifference of the remote size.
func (m *Manager) existingIsComplete(ctx context.Context, f *File) bool {
	info, err := os.Stat(f.Path)
	if err != nil {
		return false
	}

	expectedSize, err := m.httpClient.GetFileSize(ctx, f.DownloadURL)
	if err != nil || expectedSize <= 0 {
		return false
	}

	sizeDiff := float64(info.Size()-expectedSize) / float64(expectedSize)
	return math.Abs(sizeDiff) <= m.settings.AllowedFileSizeDifference
}

func (m *Manager) writePlaylist(files []File) {
	var entries []audio.Entry
	for _, f := range files {
		if f.Err == nil {
			entries = append(entries, audio.Entry{Path: f.Path, Title: f.Title})
		}
	}
	if len(entries) == 0 {
		return
	}

	name := ioutils.SanitizeFileName(m.settings.PlaylistFileName)
	if name == "" {
		name = "playlist"
	}
	path := filepath.Join(m.dir, name+m.playlist.Format().Extension())

	content := m.playlist.CreatePlaylist(entries)
	if err := ioutils.WriteFile(path, []byte(content)); err != nil {
		m.progress(progress.LevelWarning, "Error creating playlist: %v", err)
		return
	}
	m.progress(progress.LevelSuccess, "Created playlist %s", filepath.Base(path))
}

func (m *Manager) waitForRetry(ctx context.Context, tries int) {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(tries))
	select {
	case <-ctx.Done():
	case <-time.After(time.Duration(cooldown * float64(time.Second))):
	}
}

func (m *Manager) progress(level progress.Level, format string, args ...any) {
	m.onProgress.Emit(level, format, args...)
}
