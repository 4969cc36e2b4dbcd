package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Send    key.Binding
	Cycle   key.Binding
	Quit    key.Binding
	UpDown  key.Binding
	Open    key.Binding
	Search  key.Binding
	Close   key.Binding
	Export  key.Binding
	Meta    key.Binding
	Refresh key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Send:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "send")),
		Cycle:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		UpDown:  key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "move")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Close:   key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
		Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Meta:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "meta")),
		Refresh: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload history")),
	}
}

// helpFor renders the footer hint line for the active scope.
func (k keyMap) helpFor(scope string) string {
	var bindings []key.Binding
	switch scope {
	case scopeOverlay:
		bindings = []key.Binding{k.Close, k.Export, k.Meta, k.Quit}
	case scopeLoading:
		bindings = []key.Binding{k.Close, k.Quit}
	case scopeHistory:
		bindings = []key.Binding{k.UpDown, k.Open, k.Search, k.Cycle, k.Quit}
	default:
		bindings = []key.Binding{k.Send, k.Cycle, k.Quit}
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, boldKey(help.Key)+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}

const (
	scopeEditor  = "editor"
	scopeHistory = "history"
	scopeLoading = "loading"
	scopeOverlay = "overlay"
)

func boldKey(text string) string {
	if text == "" {
		return ""
	}
	return "\x1b[1m" + text + "\x1b[22m"
}
