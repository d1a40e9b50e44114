package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turkoid/zipadeedoodah/internal/config"
	"github.com/turkoid/zipadeedoodah/internal/engine"
	"github.com/turkoid/zipadeedoodah/internal/model"
	"github.com/turkoid/zipadeedoodah/internal/progress"
	"github.com/turkoid/zipadeedoodah/internal/resolve"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return got
}

func altKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func TestNewModel_UsesSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.Engine = "otto"
	s.Download = true

	m := NewModel(s)
	if m.engine != engine.KindOtto || !m.download || m.playlist {
		t.Errorf("options = %s/%v/%v", m.engine, m.download, m.playlist)
	}
}

func TestUpdate_ToggleOptions(t *testing.T) {
	m := NewModel(config.DefaultSettings())

	m = update(t, m, altKey('e'))
	if m.engine != engine.KindOtto {
		t.Errorf("engine = %s, want otto", m.engine)
	}
	m = update(t, m, altKey('e'))
	if m.engine != engine.KindChrome {
		t.Errorf("engine = %s, want chrome", m.engine)
	}

	m = update(t, m, altKey('d'))
	m = update(t, m, altKey('p'))
	m = update(t, m, altKey('v'))
	if !m.download || !m.playlist || !m.verbose {
		t.Errorf("toggles = %v/%v/%v, want all on", m.download, m.playlist, m.verbose)
	}
	if m.textInput.Value() != "" {
		t.Errorf("option keys leaked into input: %q", m.textInput.Value())
	}

	s := m.runSettings()
	if s.Engine != "chrome" || !s.Download || !s.CreatePlaylist {
		t.Errorf("runSettings = %+v", s)
	}
	if m.settings.CreatePlaylist {
		t.Error("runSettings modified the original settings")
	}
}

func TestUpdate_EnterWithoutLinks(t *testing.T) {
	m := NewModel(nil)
	m.textInput.SetValue(" , ,")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if m.err == nil || m.err.Error() != "No links found!" {
		t.Errorf("err = %v", m.err)
	}
}

func TestUpdate_ResolveDone(t *testing.T) {
	link, _ := model.NewLink("http://example.com/v/a")
	_ = link.SetTitle("song.mp3")
	_ = link.SetDownloadPath("/d/a/song.mp3")

	m := NewModel(nil)
	m.state = StateResolving
	m = update(t, m, ResolveDoneMsg{
		Outcomes: []resolve.Outcome{
			{Index: 0, URL: "http://example.com/v/a", Link: link},
			{Index: 1, URL: "nope", Err: &model.InvalidLinkError{Link: "nope"}},
		},
		Elapsed: 1500 * time.Millisecond,
	})

	if m.state != StateComplete {
		t.Fatalf("state = %v, want StateComplete", m.state)
	}

	view := m.View()
	for _, want := range []string{
		"song.mp3",
		"http://example.com/d/a/song.mp3",
		"Invalid Zippyshare URL: nope",
		"Scraped 1 links in 1.50 seconds.",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestUpdate_ResolveFailed(t *testing.T) {
	m := NewModel(nil)
	m.state = StateResolving
	m = update(t, m, ResolveDoneMsg{Err: errors.New("chrome not found")})

	if m.state != StateError || !strings.Contains(m.View(), "chrome not found") {
		t.Errorf("state = %v, view = %q", m.state, m.View())
	}
}

func TestUpdate_EscCancels(t *testing.T) {
	m := NewModel(nil)
	m.state = StateResolving

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateError || !errors.Is(m.err, errCancelled) {
		t.Fatalf("state = %v, err = %v", m.state, m.err)
	}
	if m.ctx.Err() == nil {
		t.Error("context should be cancelled")
	}

	// A late result must not overwrite the cancellation.
	m = update(t, m, ResolveDoneMsg{})
	if m.state != StateError {
		t.Errorf("state = %v after late result", m.state)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.state != StateInput || m.ctx.Err() != nil {
		t.Errorf("reset failed: state = %v", m.state)
	}
}

func TestRenderLogs(t *testing.T) {
	m := NewModel(nil)

	m = update(t, m, ProgressMsg{Event: progress.Event{Message: "hidden", Level: progress.LevelVerbose}})
	for i := 0; i < maxLogs+2; i++ {
		m = update(t, m, ProgressMsg{Event: progress.Event{Message: "resolved", Level: progress.LevelSuccess}})
	}
	m = update(t, m, ProgressMsg{Event: progress.Event{Message: "failed", Level: progress.LevelError}})

	if len(m.logs) != maxLogs {
		t.Fatalf("kept %d logs, want %d", len(m.logs), maxLogs)
	}
	out := m.renderLogs()
	if strings.Contains(out, "hidden") {
		t.Error("verbose event shown without verbose mode")
	}
	if !strings.Contains(out, "✗ failed") || !strings.Contains(out, "✓ resolved") {
		t.Errorf("renderLogs = %q", out)
	}
}

func TestEmit_NeverBlocks(t *testing.T) {
	m := NewModel(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(m.events)+10; i++ {
			m.emit(progress.Event{Message: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emit blocked on a full channel")
	}
}
