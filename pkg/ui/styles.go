package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	botStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("118"))
	bubbleStyle  = lipgloss.NewStyle().PaddingLeft(2)
	imageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	srcStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).PaddingLeft(2)
	typingStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("246"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	disabledText = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type keyMap struct {
	Send     key.Binding
	Image    key.Binding
	Copy     key.Binding
	ScrollUp key.Binding
	ScrollDn key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Send:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Image:    key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "cover image")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy reply")),
		ScrollUp: key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDn: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Quit:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Image, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Image, k.Copy},
		{k.ScrollUp, k.ScrollDn, k.Quit},
	}
}
