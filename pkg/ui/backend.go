package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/rs/zerolog/log"
)

// refreshMsg tells the model that the surface changed underneath it.
type refreshMsg struct{}

// SendFinishedMsg is delivered when a send cycle settles. Sent is false when the widget
// rejected the send (empty input or a request already in flight).
type SendFinishedMsg struct {
	Sent bool
}

// HealthFinishedMsg is delivered once the startup health check settles.
type HealthFinishedMsg struct {
	Err error
}

// WidgetBackend turns widget operations into tea.Cmds so that network I/O runs off the
// Bubble Tea event loop.
type WidgetBackend struct {
	ctx    context.Context
	widget *widget.ChatWidget
}

func NewWidgetBackend(ctx context.Context, w *widget.ChatWidget) *WidgetBackend {
	return &WidgetBackend{ctx: ctx, widget: w}
}

// Start runs one send cycle. Overlapping calls are rejected by the widget itself.
func (b *WidgetBackend) Start() tea.Cmd {
	return func() tea.Msg {
		sent := b.widget.Send(b.ctx)
		if !sent {
			log.Debug().Msg("send was a no-op")
		}
		return SendFinishedMsg{Sent: sent}
	}
}

func (b *WidgetBackend) Health() tea.Cmd {
	return func() tea.Msg {
		return HealthFinishedMsg{Err: b.widget.Health(b.ctx)}
	}
}

// IsFinished reports whether no request is in flight.
func (b *WidgetBackend) IsFinished() bool {
	return !b.widget.Loading()
}

func (b *WidgetBackend) LastReply() string {
	return b.widget.LastReply()
}

// RefreshNotifier returns a Surface notifier that wakes the program `p` up. It must only
// be triggered from outside the event loop, which holds for widget-driven mutations.
func RefreshNotifier(p *tea.Program) func() {
	return func() {
		p.Send(refreshMsg{})
	}
}
