package ui

import (
	"sync"

	"github.com/go-go-golems/librarian-chat/pkg/widget"
)

type rowKind int

const (
	rowMessage rowKind = iota
	rowImage
	rowTyping
)

type row struct {
	id   int
	kind rowKind
	msg  widget.Message
	img  widget.Image
	text string
}

// typingHandle is the widget.Row handed out for a typing indicator.
type typingHandle struct{ id int }

// Surface holds the state behind every widget binding. The widget mutates it from
// command goroutines while the Bubble Tea loop reads it, so all access goes through mu.
// Mutations made on behalf of the widget call the notifier so the program can re-render.
type Surface struct {
	mu     sync.Mutex
	notify func()

	rows   []row
	nextID int

	input    string
	inputGen int
	focusGen int

	sendEnabled  bool
	hasImage     bool
	imageChecked bool
	imageEnabled bool

	errText string
	status  string

	scrollGen int
}

type SurfaceOption func(*Surface)

// WithImageToggle enables the optional image generation toggle, initially checked or not.
func WithImageToggle(checked bool) SurfaceOption {
	return func(s *Surface) {
		s.hasImage = true
		s.imageChecked = checked
	}
}

func NewSurface(options ...SurfaceOption) *Surface {
	s := &Surface{
		sendEnabled:  true,
		imageEnabled: true,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// SetNotifier registers the callback run after every widget-driven mutation.
func (s *Surface) SetNotifier(f func()) {
	s.mu.Lock()
	s.notify = f
	s.mu.Unlock()
}

// Bindings exposes the surface to the widget.
func (s *Surface) Bindings() widget.Bindings {
	b := widget.Bindings{
		Chat:   s,
		Input:  s,
		Send:   sendControl{s},
		Err:    errLabel{s},
		Status: statusLabel{s},
	}
	if s.hasImage {
		b.GenImage = imageToggle{s}
	}
	return b
}

// update runs f under the lock and then notifies outside of it.
func (s *Surface) update(f func()) {
	s.mu.Lock()
	f()
	notify := s.notify
	s.mu.Unlock()
	if notify != nil {
		notify()
	}
}

func (s *Surface) AppendMessage(m widget.Message) {
	s.update(func() { s.appendRow(row{kind: rowMessage, msg: m}) })
}

func (s *Surface) AppendImage(img widget.Image) {
	s.update(func() { s.appendRow(row{kind: rowImage, img: img}) })
}

func (s *Surface) AppendTyping(text string) widget.Row {
	var h typingHandle
	s.update(func() { h.id = s.appendRow(row{kind: rowTyping, text: text}) })
	return h
}

func (s *Surface) Remove(r widget.Row) {
	h, ok := r.(typingHandle)
	if !ok {
		return
	}
	s.update(func() {
		for i, existing := range s.rows {
			if existing.id == h.id {
				s.rows = append(s.rows[:i], s.rows[i+1:]...)
				return
			}
		}
	})
}

func (s *Surface) ScrollToBottom() {
	s.update(func() { s.scrollGen++ })
}

func (s *Surface) appendRow(r row) int {
	s.nextID++
	r.id = s.nextID
	s.rows = append(s.rows, r)
	return r.id
}

func (s *Surface) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Surface) Clear() {
	s.update(func() {
		s.input = ""
		s.inputGen++
	})
}

func (s *Surface) Focus() {
	s.update(func() { s.focusGen++ })
}

// setInputFromUI records what the user typed. Edits made against an input generation
// that has since been cleared are dropped, so a Clear is never undone by a stale value.
func (s *Surface) setInputFromUI(v string, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.inputGen {
		s.input = v
	}
}

// toggleImageFromUI flips the image toggle if it exists and is enabled.
func (s *Surface) toggleImageFromUI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasImage || !s.imageEnabled {
		return false
	}
	s.imageChecked = !s.imageChecked
	return true
}

type snapshot struct {
	rows         []row
	input        string
	inputGen     int
	focusGen     int
	scrollGen    int
	sendEnabled  bool
	hasImage     bool
	imageChecked bool
	imageEnabled bool
	errText      string
	status       string
}

func (s *Surface) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		rows:         append([]row(nil), s.rows...),
		input:        s.input,
		inputGen:     s.inputGen,
		focusGen:     s.focusGen,
		scrollGen:    s.scrollGen,
		sendEnabled:  s.sendEnabled,
		hasImage:     s.hasImage,
		imageChecked: s.imageChecked,
		imageEnabled: s.imageEnabled,
		errText:      s.errText,
		status:       s.status,
	}
}

type sendControl struct{ s *Surface }

func (c sendControl) SetEnabled(b bool) { c.s.update(func() { c.s.sendEnabled = b }) }

type errLabel struct{ s *Surface }

func (l errLabel) SetText(t string) { l.s.update(func() { l.s.errText = t }) }

type statusLabel struct{ s *Surface }

func (l statusLabel) SetText(t string) { l.s.update(func() { l.s.status = t }) }

type imageToggle struct{ s *Surface }

func (t imageToggle) SetEnabled(b bool) { t.s.update(func() { t.s.imageEnabled = b }) }

func (t imageToggle) Checked() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.s.imageChecked
}
