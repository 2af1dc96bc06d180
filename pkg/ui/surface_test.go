package ui

import (
	"testing"

	"github.com/go-go-golems/librarian-chat/pkg/widget"
	"github.com/stretchr/testify/require"
)

func TestSurface_BindingsWithoutToggle(t *testing.T) {
	t.Parallel()

	b := NewSurface().Bindings()
	require.NotNil(t, b.Chat)
	require.NotNil(t, b.Input)
	require.Nil(t, b.GenImage)

	b = NewSurface(WithImageToggle(true)).Bindings()
	require.NotNil(t, b.GenImage)
	require.True(t, b.GenImage.Checked())
}

func TestSurface_TypingRow(t *testing.T) {
	t.Parallel()

	s := NewSurface()
	s.AppendMessage(widget.Message{Role: widget.RoleUser, Text: "hi"})
	h := s.AppendTyping("typing")
	require.Len(t, s.snapshot().rows, 2)

	s.Remove(h)
	rows := s.snapshot().rows
	require.Len(t, rows, 1)
	require.Equal(t, rowMessage, rows[0].kind)

	// removing twice or removing a foreign handle does nothing
	s.Remove(h)
	s.Remove("not a handle")
	require.Len(t, s.snapshot().rows, 1)
}

func TestSurface_NotifiesOnWidgetMutations(t *testing.T) {
	t.Parallel()

	s := NewSurface(WithImageToggle(false))
	n := 0
	s.SetNotifier(func() { n++ })

	b := s.Bindings()
	b.Chat.AppendMessage(widget.Message{Role: widget.RoleBot, Text: "x"})
	b.Chat.AppendImage(widget.Image{Src: "u"})
	b.Chat.ScrollToBottom()
	b.Input.Clear()
	b.Input.Focus()
	b.Send.SetEnabled(false)
	b.GenImage.SetEnabled(false)
	b.Err.SetText("e")
	b.Status.SetText("s")
	require.Equal(t, 9, n)

	snap := s.snapshot()
	require.False(t, snap.sendEnabled)
	require.False(t, snap.imageEnabled)
	require.Equal(t, "e", snap.errText)
	require.Equal(t, "s", snap.status)
}

func TestSurface_StaleInputIsDropped(t *testing.T) {
	t.Parallel()

	s := NewSurface()
	s.setInputFromUI("hello", 0)
	require.Equal(t, "hello", s.Value())

	s.Clear()
	s.setInputFromUI("hello!", 0)
	require.Empty(t, s.Value())

	s.setInputFromUI("next", 1)
	require.Equal(t, "next", s.Value())
}

func TestSurface_ToggleRespectsEnabled(t *testing.T) {
	t.Parallel()

	s := NewSurface()
	require.False(t, s.toggleImageFromUI())

	s = NewSurface(WithImageToggle(false))
	require.True(t, s.toggleImageFromUI())
	require.True(t, s.snapshot().imageChecked)

	s.Bindings().GenImage.SetEnabled(false)
	require.False(t, s.toggleImageFromUI())
	require.True(t, s.snapshot().imageChecked)
}
