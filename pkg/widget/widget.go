// Package widget implements the chat controller that sits between the librarian backend
// and a UI. The UI is reached only through the interfaces in Bindings, so the same
// controller drives the full-screen TUI and the line-mode terminal.
//
// One send cycle goes Idle -> Sending -> {Success | HttpError | NetworkError} -> Idle.
// A Send issued while another is in flight is rejected before any I/O.
package widget

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-go-golems/librarian-chat/pkg/chatapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ChatClient is the backend surface the widget needs. *chatapi.Client implements it.
type ChatClient interface {
	Health(ctx context.Context) (*chatapi.HealthResponse, error)
	Chat(ctx context.Context, in chatapi.ChatRequest) (*chatapi.ChatResult, error)
}

var _ ChatClient = (*chatapi.Client)(nil)

type ChatWidget struct {
	client ChatClient
	b      Bindings
	labels Labels
	logger zerolog.Logger

	loading atomic.Bool

	mu        sync.Mutex
	typingRow Row
	lastReply string
	lastImage *Image
}

type Option func(*ChatWidget)

func WithLabels(l Labels) Option {
	return func(w *ChatWidget) {
		w.labels = l
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(w *ChatWidget) {
		w.logger = logger
	}
}

// New binds a widget to its UI elements. All bindings except GenImage are required.
func New(client ChatClient, b Bindings, options ...Option) (*ChatWidget, error) {
	if client == nil {
		return nil, errors.New("chat client is required")
	}
	switch {
	case b.Chat == nil:
		return nil, errors.New("chat transcript binding is required")
	case b.Input == nil:
		return nil, errors.New("input binding is required")
	case b.Send == nil:
		return nil, errors.New("send control binding is required")
	case b.Err == nil:
		return nil, errors.New("error label binding is required")
	case b.Status == nil:
		return nil, errors.New("status label binding is required")
	}

	w := &ChatWidget{
		client: client,
		b:      b,
		labels: DefaultLabels(),
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(w)
	}
	return w, nil
}

func (w *ChatWidget) Labels() Labels {
	return w.labels
}

// Loading reports whether a chat request is in flight.
func (w *ChatWidget) Loading() bool {
	return w.loading.Load()
}

// LastReply returns the text of the most recent bot row, or "" if there is none.
func (w *ChatWidget) LastReply() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastReply
}

// LastImage returns the image row that followed the most recent bot row, or nil.
func (w *ChatWidget) LastImage() *Image {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lastImage == nil {
		return nil
	}
	img := *w.lastImage
	return &img
}

// Health queries the backend once and writes the result to the status label. The
// returned error is informational; the label is set in every case.
func (w *ChatWidget) Health(ctx context.Context) error {
	h, err := w.client.Health(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("backend health check failed")
		w.b.Status.SetText(w.labels.BackendUnavailable)
		return err
	}
	w.b.Status.SetText(w.labels.HealthStatus(*h.Count))
	return nil
}

// AddMsg appends a transcript row and scrolls to it. Empty text renders an empty row.
func (w *ChatWidget) AddMsg(role Role, text string) {
	w.b.Chat.AppendMessage(Message{Role: role, Text: text})
	w.b.Chat.ScrollToBottom()
	if role == RoleBot {
		w.mu.Lock()
		w.lastReply = text
		w.lastImage = nil
		w.mu.Unlock()
	}
}

// SetTyping shows or hides the typing indicator. There is never more than one.
func (w *ChatWidget) SetTyping(on bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case on && w.typingRow == nil:
		w.typingRow = w.b.Chat.AppendTyping(w.labels.Typing)
		w.b.Chat.ScrollToBottom()
	case !on && w.typingRow != nil:
		w.b.Chat.Remove(w.typingRow)
		w.typingRow = nil
	}
}

// Send submits the current input. It is a no-op, returning false, when the trimmed input
// is empty or a request is already in flight. Otherwise it blocks until the request
// settles, updates the transcript, and returns true.
func (w *ChatWidget) Send(ctx context.Context) bool {
	q := strings.TrimSpace(w.b.Input.Value())
	if q == "" {
		return false
	}
	if !w.loading.CompareAndSwap(false, true) {
		w.logger.Debug().Msg("send ignored, request in flight")
		return false
	}
	defer w.finish()

	w.b.Err.SetText("")
	w.AddMsg(RoleUser, q)
	w.b.Input.Clear()
	w.setControlsEnabled(false)
	w.SetTyping(true)

	req := chatapi.ChatRequest{Message: q, GenerateImage: w.generateImage()}
	w.logger.Debug().Int("length", len(q)).Bool("generate_image", req.GenerateImage).Msg("sending chat message")

	res, err := w.client.Chat(ctx, req)
	w.SetTyping(false)
	if err != nil {
		w.logger.Warn().Err(err).Msg("chat request failed")
		msg := err.Error()
		if msg == "" {
			msg = w.labels.NetworkError
		}
		w.b.Err.SetText(msg)
		return true
	}

	text, img := w.labels.Reply(res)
	w.logger.Debug().
		Int("status", res.StatusCode).
		Bool("blocked", res.Body.IsBlocked()).
		Bool("image", img != nil).
		Msg("chat reply received")
	w.AddMsg(RoleBot, text)
	if img != nil {
		w.b.Chat.AppendImage(*img)
		w.b.Chat.ScrollToBottom()
		w.mu.Lock()
		w.lastImage = img
		w.mu.Unlock()
	}
	return true
}

func (w *ChatWidget) finish() {
	w.loading.Store(false)
	w.setControlsEnabled(true)
	w.b.Input.Focus()
}

func (w *ChatWidget) setControlsEnabled(enabled bool) {
	if w.b.GenImage != nil {
		w.b.GenImage.SetEnabled(enabled)
	}
	w.b.Send.SetEnabled(enabled)
}

func (w *ChatWidget) generateImage() bool {
	return w.b.GenImage != nil && w.b.GenImage.Checked()
}
