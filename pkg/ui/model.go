// Package ui is the full-screen terminal front end. A Surface implements the widget
// bindings and a Bubble Tea Model renders it: a viewport transcript, a single-line input,
// a status header and a spinner on the typing indicator.
package ui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// title, error line, input, help
	chromeHeight   = 5
	maxSrcWidth    = 72
	defaultWidth   = 80
	defaultHeight  = 24
	glamourStyleID = "dark"
)

type Model struct {
	surface *Surface
	backend *WidgetBackend
	keys    keyMap
	help    help.Model

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	title    string
	markdown bool
	copyFn   func(string) error

	width  int
	height int

	inputGen  int
	focusGen  int
	scrollGen int

	notice string
}

type ModelOption func(*Model)

// WithMarkdown renders bot replies through glamour.
func WithMarkdown(enabled bool) ModelOption {
	return func(m *Model) {
		m.markdown = enabled
	}
}

func WithTitle(title string) ModelOption {
	return func(m *Model) {
		m.title = title
	}
}

// WithClipboard replaces the function used to copy the last reply.
func WithClipboard(f func(string) error) ModelOption {
	return func(m *Model) {
		m.copyFn = f
	}
}

func NewModel(surface *Surface, backend *WidgetBackend, options ...ModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask for a book recommendation…"
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)

	m := Model{
		surface:  surface,
		backend:  backend,
		keys:     defaultKeyMap(),
		help:     help.New(),
		input:    ti,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:  sp,
		title:    "Smart Librarian",
		copyFn:   clipboard.WriteAll,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	for _, opt := range options {
		opt(&m)
	}
	snap := surface.snapshot()
	m.keys.Image.SetEnabled(snap.hasImage)
	m.inputGen = snap.inputGen
	m.focusGen = snap.focusGen
	m.scrollGen = snap.scrollGen
	m.resize(m.width, m.height)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.backend.Health())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.sync()
		return m, nil

	case refreshMsg:
		m.sync()
		return m, nil

	case SendFinishedMsg:
		m.sync()
		return m, nil

	case HealthFinishedMsg:
		if msg.Err != nil {
			log.Debug().Err(msg.Err).Msg("health check finished with error")
		}
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.hasTyping() {
			m.renderTranscript(m.surface.snapshot().rows)
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		if !m.surface.snapshot().sendEnabled {
			return m, nil
		}
		m.surface.setInputFromUI(m.input.Value(), m.inputGen)
		return m, m.backend.Start()

	case key.Matches(msg, m.keys.Image):
		m.surface.toggleImageFromUI()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		reply := m.backend.LastReply()
		if reply == "" {
			m.notice = "nothing to copy yet"
			return m, nil
		}
		if err := m.copyFn(reply); err != nil {
			log.Warn().Err(errors.Wrap(err, "clipboard")).Msg("failed to copy reply")
			m.notice = "copy failed: " + err.Error()
			return m, nil
		}
		m.notice = "reply copied to clipboard"
		return m, nil

	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDn):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.surface.setInputFromUI(m.input.Value(), m.inputGen)
	return m, cmd
}

// sync pulls the surface state into the bubbles components.
func (m *Model) sync() {
	snap := m.surface.snapshot()
	if snap.inputGen != m.inputGen {
		m.inputGen = snap.inputGen
		m.input.SetValue(snap.input)
	}
	if snap.focusGen != m.focusGen {
		m.focusGen = snap.focusGen
		m.input.Focus()
	}
	m.renderTranscript(snap.rows)
	if snap.scrollGen != m.scrollGen {
		m.scrollGen = snap.scrollGen
		m.viewport.GotoBottom()
	}
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-chromeHeight)
	m.input.Width = max(10, width-4)
	m.help.Width = width

	if m.markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyleID),
			glamour.WithWordWrap(max(20, width-4)),
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create markdown renderer, falling back to plain text")
			m.renderer = nil
		} else {
			m.renderer = r
		}
	}
}

func (m Model) hasTyping() bool {
	for _, r := range m.surface.snapshot().rows {
		if r.kind == rowTyping {
			return true
		}
	}
	return false
}

func (m *Model) renderTranscript(rows []row) {
	blocks := make([]string, 0, len(rows))
	for _, r := range rows {
		blocks = append(blocks, m.renderRow(r))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (m Model) renderRow(r row) string {
	wrap := bubbleStyle.Width(max(10, m.width-2))
	switch r.kind {
	case rowTyping:
		return m.spinner.View() + " " + typingStyle.Render(r.text)
	case rowImage:
		return imageStyle.Render("▣ "+r.img.Alt) + "\n" + srcStyle.Render(truncate(r.img.Src, maxSrcWidth))
	}

	if r.msg.Role == widget.RoleUser {
		return userStyle.Render("you") + "\n" + wrap.Render(r.msg.Text)
	}
	body := r.msg.Text
	if m.renderer != nil && body != "" {
		if out, err := m.renderer.Render(body); err == nil {
			return botStyle.Render("librarian") + "\n" + strings.TrimRight(out, "\n")
		}
	}
	return botStyle.Render("librarian") + "\n" + wrap.Render(body)
}

func (m Model) View() string {
	snap := m.surface.snapshot()

	header := titleStyle.Render(m.title)
	if snap.status != "" {
		header += "  " + statusStyle.Render(snap.status)
	}
	if snap.hasImage {
		box := "[ ]"
		if snap.imageChecked {
			box = "[x]"
		}
		toggle := box + " cover image"
		if !snap.imageEnabled {
			toggle = disabledText.Render(toggle)
		}
		header += "  " + toggle
	}

	errLine := ""
	if snap.errText != "" {
		errLine = errorStyle.Render(snap.errText)
	}

	input := m.input.View()
	if !snap.sendEnabled {
		input = disabledText.Render(input)
	}

	footer := m.help.View(m.keys)
	if m.notice != "" {
		footer += "  " + noticeStyle.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		errLine,
		input,
		footer,
	)
}

// truncate shortens s to at most n cells.
func truncate(s string, n int) string {
	return ansi.Truncate(s, n, "…")
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.surface.SetNotifier(RefreshNotifier(p))
	defer m.surface.SetNotifier(nil)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "chat ui failed")
	}
	return nil
}
