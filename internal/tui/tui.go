// Package tui provides a Bubble Tea terminal user interface for zipadeedoodah.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/turkoid/zipadeedoodah/internal/config"
	"github.com/turkoid/zipadeedoodah/internal/download"
	"github.com/turkoid/zipadeedoodah/internal/engine"
	"github.com/turkoid/zipadeedoodah/internal/http"
	ioutils "github.com/turkoid/zipadeedoodah/internal/io"
	"github.com/turkoid/zipadeedoodah/internal/progress"
	"github.com/turkoid/zipadeedoodah/internal/resolve"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is the number of progress lines kept on screen.
const maxLogs = 10

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateResolving
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   progress.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  bprogress.Model
	settings  *config.Settings
	logs      []LogEntry
	err       error

	// Progress events from the coordinator and manager arrive here.
	events chan progress.Event

	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager

	outcomes []resolve.Outcome
	elapsed  time.Duration
	files    []download.File

	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64

	// Options
	engine   engine.Kind
	download bool
	playlist bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. settings supplies the defaults for
// every option and is not modified.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "https://www1.zippyshare.com/v/abc/file.html, ..."
	ti.Focus()
	ti.CharLimit = 4000
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := bprogress.New(bprogress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		logs:      make([]LogEntry, 0),
		events:    make(chan progress.Event, 256),
		ctx:       ctx,
		cancel:    cancel,
		engine:    engine.Kind(settings.Engine),
		download:  settings.Download,
		playlist:  settings.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// ProgressMsg carries one progress event.
	ProgressMsg struct {
		Event progress.Event
	}

	// ResolveDoneMsg is sent when every link has been resolved.
	ResolveDoneMsg struct {
		Outcomes []resolve.Outcome
		Elapsed  time.Duration
		Client   *http.Client
		Err      error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Files []download.File
		Err   error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateResolving || m.state == StateDownloading {
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput {
				links := ioutils.SplitLinks(m.textInput.Value())
				if len(links) == 0 {
					m.state = StateError
					m.err = errors.New("No links found!")
					return m, nil
				}
				m.state = StateResolving
				return m, tea.Batch(m.resolveLinks(links), m.spinner.Tick)
			}

		// Option keys use alt so they never reach the text input.
		case "alt+e":
			if m.state == StateInput {
				if m.engine == engine.KindOtto {
					m.engine = engine.KindChrome
				} else {
					m.engine = engine.KindOtto
				}
			}
			return m, nil

		case "alt+d":
			if m.state == StateInput {
				m.download = !m.download
			}
			return m, nil

		case "alt+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}
			return m, nil

		case "alt+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		m.appendLog(msg.Event)
		cmds = append(cmds, m.waitForEvent())

	case ResolveDoneMsg:
		if m.state != StateResolving {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.outcomes = msg.Outcomes
		m.elapsed = msg.Elapsed
		if m.download && m.successCount() > 0 {
			m.manager = download.NewManager(m.runSettings(), m.settings.DownloadsPath, msg.Client, m.emit)
			m.state = StateDownloading
			cmds = append(cmds, m.startDownload(), m.tickProgress())
		} else {
			m.state = StateComplete
		}

	case DownloadDoneMsg:
		if m.state != StateDownloading {
			return m, nil
		}
		m.files = msg.Files
		m.refreshProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.refreshProgress()
			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case bprogress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(bprogress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.err = nil
	m.outcomes = nil
	m.files = nil
	m.elapsed = 0
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.manager = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m *Model) appendLog(event progress.Event) {
	if event.Level == progress.LevelVerbose && !m.verbose {
		return
	}
	m.logs = append(m.logs, LogEntry{Message: event.Message, Level: event.Level})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func (m *Model) refreshProgress() {
	if m.manager == nil {
		return
	}
	m.receivedBytes, m.downloadedFiles, m.totalFiles = m.manager.GetProgress()
}

func (m Model) successCount() int {
	var n int
	for _, o := range m.outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// emit forwards an event to the program without ever blocking the sender.
func (m Model) emit(event progress.Event) {
	select {
	case m.events <- event:
	default:
	}
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// runSettings returns a copy of the settings with the toggled options applied.
func (m Model) runSettings() *config.Settings {
	s := *m.settings
	s.Engine = string(m.engine)
	s.Download = m.download
	s.CreatePlaylist = m.playlist
	return &s
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Zipadeedoodah"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Resolve Zippyshare download links"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateResolving:
		b.WriteString(m.viewResolving())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter Zippyshare URLs (comma separated):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Engine: %s (alt+e)\n", m.engine)
	fmt.Fprintf(&b, "  %s Download files (alt+d)\n", check(m.download))
	fmt.Fprintf(&b, "  %s Create playlist (alt+p)\n", check(m.playlist))
	fmt.Fprintf(&b, "  %s Verbose/debug output (alt+v)\n", check(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewResolving() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("Resolving links with %s...", m.engine)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.renderOutcomes())
	b.WriteString("\n")

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.downloadedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.downloadedFiles,
		m.totalFiles,
		float64(m.receivedBytes)/1024/1024,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	b.WriteString(m.renderOutcomes())
	b.WriteString("\n")

	summary := fmt.Sprintf("Scraped %d links in %.2f seconds.", m.successCount(), m.elapsed.Seconds())
	if m.manager != nil {
		summary += fmt.Sprintf("\n\nFiles: %d/%d\nSize: %.2f MB",
			m.downloadedFiles, m.totalFiles, float64(m.receivedBytes)/1024/1024)
	}
	b.WriteString(boxStyle.Render(summary))

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s", m.err.Error())
	}

	return b.String()
}

func (m Model) renderOutcomes() string {
	var b strings.Builder

	for _, o := range m.outcomes {
		if !o.OK() {
			b.WriteString(errorStyle.Render("✗ " + o.Err.Error()))
			b.WriteString("\n")
			continue
		}
		u, _ := o.Link.DownloadURL()
		if title, ok := o.Link.Title(); ok && title != "" {
			b.WriteString(linkStyle.Render("♪ " + title))
			b.WriteString("\n  ")
		} else {
			b.WriteString(successStyle.Render("✓ "))
		}
		b.WriteString(u)
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case progress.LevelError:
			style = errorStyle
			prefix = "✗"
		case progress.LevelWarning:
			style = warningStyle
			prefix = "!"
		case progress.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case progress.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • alt+e: engine • alt+d: download • alt+p: playlist • alt+v: verbose • esc: quit"
	case StateResolving, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new batch • q: quit"
	}
	return ""
}

// resolveLinks runs the coordinator over links in the background.
func (m Model) resolveLinks(links []string) tea.Cmd {
	ctx := m.ctx
	settings := m.runSettings()
	emit := m.emit
	return func() tea.Msg {
		client := http.NewClient(settings.ToHTTPOptions())
		coord, err := resolve.FromSettings(settings, client, emit)
		if err != nil {
			return ResolveDoneMsg{Err: err}
		}

		start := time.Now()
		outcomes, err := coord.Run(ctx, links)
		return ResolveDoneMsg{
			Outcomes: outcomes,
			Elapsed:  time.Since(start),
			Client:   client,
			Err:      err,
		}
	}
}

// startDownload saves the resolved links in the background.
func (m Model) startDownload() tea.Cmd {
	ctx := m.ctx
	manager := m.manager
	outcomes := m.outcomes
	return func() tea.Msg {
		files, err := manager.Download(ctx, outcomes)
		return DownloadDoneMsg{Files: files, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
