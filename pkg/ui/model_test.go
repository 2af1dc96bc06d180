package ui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-go-golems/librarian-chat/pkg/chatapi"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/stretchr/testify/require"
)

type modelFixture struct {
	surface *Surface
	model   Model
	copied  []string
}

func newModelFixture(t *testing.T, h http.HandlerFunc) *modelFixture {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := chatapi.NewClient(srv.URL)
	require.NoError(t, err)

	f := &modelFixture{surface: NewSurface(WithImageToggle(false))}
	w, err := widget.New(c, f.surface.Bindings())
	require.NoError(t, err)

	f.model = NewModel(f.surface, NewWidgetBackend(context.Background(), w),
		WithClipboard(func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		}),
	)
	return f
}

func (f *modelFixture) update(t *testing.T, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := f.model.Update(msg)
	m, ok := next.(Model)
	require.True(t, ok)
	f.model = m
	return cmd
}

func (f *modelFixture) typeText(t *testing.T, s string) {
	t.Helper()
	f.update(t, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestModel_SendCycle(t *testing.T) {
	t.Parallel()

	f := newModelFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Try 'Dune'.","recommendedTitle":"Dune","imageUrl":"https://covers/dune.png"}`))
	})
	f.update(t, tea.WindowSizeMsg{Width: 100, Height: 30})

	f.typeText(t, "space opera")
	require.Equal(t, "space opera", f.surface.Value())

	cmd := f.update(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, SendFinishedMsg{Sent: true}, msg)
	f.update(t, msg)

	require.Empty(t, f.model.input.Value())
	rows := f.surface.snapshot().rows
	require.Len(t, rows, 3)
	require.Equal(t, widget.Message{Role: widget.RoleUser, Text: "space opera"}, rows[0].msg)
	require.Equal(t, widget.Message{Role: widget.RoleBot, Text: "Try 'Dune'."}, rows[1].msg)
	require.Equal(t, rowImage, rows[2].kind)

	view := f.model.View()
	require.Contains(t, view, "Try 'Dune'.")
	require.Contains(t, view, "Generated image for Dune")
}

func TestModel_EnterIgnoredWhileDisabled(t *testing.T) {
	t.Parallel()

	f := newModelFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	f.typeText(t, "hello")
	f.surface.Bindings().Send.SetEnabled(false)

	cmd := f.update(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
	require.Empty(t, f.surface.snapshot().rows)
}

func TestModel_ImageToggleKey(t *testing.T) {
	t.Parallel()

	f := newModelFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	require.Contains(t, f.model.View(), "[ ] cover image")

	f.update(t, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.True(t, f.surface.snapshot().imageChecked)
	require.Contains(t, f.model.View(), "[x] cover image")
}

func TestModel_CopyLastReply(t *testing.T) {
	t.Parallel()

	f := newModelFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Read 'Foundation'."}`))
	})

	f.update(t, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.Empty(t, f.copied)
	require.Equal(t, "nothing to copy yet", f.model.notice)

	f.typeText(t, "robots")
	f.update(t, f.update(t, tea.KeyMsg{Type: tea.KeyEnter})())

	f.update(t, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.Equal(t, []string{"Read 'Foundation'."}, f.copied)
}

func TestModel_HealthOnInit(t *testing.T) {
	t.Parallel()

	f := newModelFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"count":7}`))
	})

	msg := f.model.backend.Health()()
	f.update(t, msg)
	require.Contains(t, f.model.View(), "Backend OK • 7 books indexed")
}

func TestModel_NetworkErrorShownInErrorLine(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := chatapi.NewClient(url)
	require.NoError(t, err)
	s := NewSurface()
	w, err := widget.New(c, s.Bindings())
	require.NoError(t, err)
	m := NewModel(s, NewWidgetBackend(context.Background(), w))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next, _ = next.Update(cmd())

	snap := s.snapshot()
	require.NotEmpty(t, snap.errText)
	require.Len(t, snap.rows, 1)
	require.True(t, snap.sendEnabled)
	require.Contains(t, next.View(), "chat request failed")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://x", truncate("https://x", 20))

	long := "https://covers.example/" + strings.Repeat("ăîșț", 30) + ".png"
	got := truncate(long, 40)
	require.True(t, utf8.ValidString(got))
	require.True(t, strings.HasSuffix(got, "…"))
	require.LessOrEqual(t, ansi.StringWidth(got), 40)
}
