// Package lineui is the line-oriented binding used when the terminal cannot host the
// full-screen UI: pipes, CI logs, dumb terminals and one-shot `ask` invocations.
package lineui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const (
	clearLine    = "\r\x1b[K"
	defaultWidth = 80
)

var (
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	botStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	imageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	typingStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

type typingHandle struct{}

// Terminal writes widget output as plain lines. It implements every widget binding.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer

	styled bool
	width  int

	input  string
	typing *typingHandle

	hasImage     bool
	imageChecked bool
	imageEnabled bool
	sendEnabled  bool

	errText string
	status  string
}

type Option func(*Terminal)

// WithStyle forces styling on or off. By default it is on when the output is a terminal.
func WithStyle(styled bool) Option {
	return func(t *Terminal) {
		t.styled = styled
	}
}

func WithWidth(width int) Option {
	return func(t *Terminal) {
		if width > 0 {
			t.width = width
		}
	}
}

// WithImageToggle adds the image generation toggle, initially set to `checked`.
func WithImageToggle(checked bool) Option {
	return func(t *Terminal) {
		t.hasImage = true
		t.imageChecked = checked
	}
}

func NewTerminal(out io.Writer, options ...Option) *Terminal {
	t := &Terminal{
		out:          out,
		width:        defaultWidth,
		imageEnabled: true,
		sendEnabled:  true,
	}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		t.styled = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			t.width = w
		}
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *Terminal) Bindings() widget.Bindings {
	b := widget.Bindings{
		Chat:   t,
		Input:  t,
		Send:   sendControl{t},
		Err:    errLabel{t},
		Status: statusLabel{t},
	}
	if t.hasImage {
		b.GenImage = imageToggle{t}
	}
	return b
}

func (t *Terminal) render(style lipgloss.Style, s string) string {
	if !t.styled {
		return s
	}
	return style.Render(s)
}

// println must be called with mu held.
func (t *Terminal) println(s string) {
	if t.typing != nil && t.styled {
		_, _ = io.WriteString(t.out, clearLine)
	}
	_, _ = fmt.Fprintln(t.out, s)
}

func (t *Terminal) AppendMessage(m widget.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	text := m.Text
	if t.styled {
		text = lipgloss.NewStyle().Width(max(20, t.width-5)).Render(text)
	}
	if m.Role == widget.RoleUser {
		t.println(t.render(userStyle, "you>") + " " + text)
		return
	}
	t.println(t.render(botStyle, "bot>") + " " + text)
}

func (t *Terminal) AppendImage(img widget.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(t.render(imageStyle, "[image]") + " " + img.Alt + ": " + img.Src)
}

// AppendTyping shows the indicator in place on a terminal. Plain output gets nothing, as
// a line that cannot be taken back would only clutter the log.
func (t *Terminal) AppendTyping(text string) widget.Row {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := &typingHandle{}
	t.typing = h
	if t.styled {
		_, _ = io.WriteString(t.out, t.render(typingStyle, "… "+text))
	}
	return h
}

func (t *Terminal) Remove(r widget.Row) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h, ok := r.(*typingHandle)
	if !ok || h != t.typing {
		return
	}
	if t.styled {
		_, _ = io.WriteString(t.out, clearLine)
	}
	t.typing = nil
}

func (t *Terminal) ScrollToBottom() {}

func (t *Terminal) Value() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input
}

func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input = ""
}

func (t *Terminal) Focus() {}

// SetInput stands in for the user typing `s` into the input field.
func (t *Terminal) SetInput(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.input = s
}

// SetImage sets the image toggle. It reports false when there is no toggle or it is
// disabled.
func (t *Terminal) SetImage(on bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.hasImage || !t.imageEnabled {
		return false
	}
	t.imageChecked = on
	return true
}

func (t *Terminal) ErrText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errText
}

func (t *Terminal) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Printf writes an informational line outside the transcript.
func (t *Terminal) Printf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.println(fmt.Sprintf(format, args...))
}

type sendControl struct{ t *Terminal }

func (c sendControl) SetEnabled(enabled bool) {
	c.t.mu.Lock()
	defer c.t.mu.Unlock()
	c.t.sendEnabled = enabled
}

type errLabel struct{ t *Terminal }

func (l errLabel) SetText(s string) {
	l.t.mu.Lock()
	defer l.t.mu.Unlock()
	l.t.errText = s
	if s != "" {
		l.t.println(l.t.render(errorStyle, "error:") + " " + s)
	}
}

type statusLabel struct{ t *Terminal }

func (l statusLabel) SetText(s string) {
	l.t.mu.Lock()
	defer l.t.mu.Unlock()
	l.t.status = s
	l.t.println(l.t.render(statusStyle, "status: "+s))
}

type imageToggle struct{ t *Terminal }

func (g imageToggle) SetEnabled(enabled bool) {
	g.t.mu.Lock()
	defer g.t.mu.Unlock()
	g.t.imageEnabled = enabled
}

func (g imageToggle) Checked() bool {
	g.t.mu.Lock()
	defer g.t.mu.Unlock()
	return g.t.imageChecked
}

// Ask runs a single send cycle for `text`. It returns false when the widget rejected the
// send or the request ended in the error label.
func Ask(ctx context.Context, t *Terminal, w *widget.ChatWidget, text string) bool {
	t.SetInput(text)
	if !w.Send(ctx) {
		return false
	}
	return t.ErrText() == ""
}

// Run checks the backend health and reads messages from `r` line by line until EOF, a
// quit command or cancellation of ctx.
func Run(ctx context.Context, t *Terminal, w *widget.ChatWidget, r io.Reader) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		// the status line already reports the failure
		_ = w.Health(ctx)
		return nil
	})
	eg.Go(func() error {
		return repl(ctx, t, w, r)
	})

	err := eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func repl(ctx context.Context, t *Terminal, w *widget.ChatWidget, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		cmd := strings.TrimSpace(line)

		switch {
		case cmd == ":q" || cmd == ":quit" || cmd == ":exit":
			return nil
		case cmd == ":image" || strings.HasPrefix(cmd, ":image "):
			handleImage(t, strings.TrimSpace(strings.TrimPrefix(cmd, ":image")))
			continue
		}

		t.SetInput(line)
		if !w.Send(ctx) {
			log.Debug().Msg("skipped empty line")
		}
	}
	return errors.Wrap(scanner.Err(), "failed to read input")
}

func handleImage(t *Terminal, arg string) {
	var on bool
	switch arg {
	case "on":
		on = true
	case "off":
		on = false
	default:
		t.Printf("usage: :image on|off")
		return
	}
	if !t.SetImage(on) {
		t.Printf("image generation is not available")
		return
	}
	t.Printf("image generation %s", arg)
}
