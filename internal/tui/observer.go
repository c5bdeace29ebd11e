package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/gamevault/internal/domain"
)

// ChannelCallbacks adapts domain.LoadCallbacks to a channel of tea.Msg so
// a load running in a goroutine can drive the Bubble Tea update loop.
type ChannelCallbacks struct {
	ch chan<- tea.Msg
}

// NewChannelCallbacks creates a channel-backed callback adapter.
func NewChannelCallbacks(ch chan<- tea.Msg) *ChannelCallbacks {
	return &ChannelCallbacks{ch: ch}
}

// Callbacks returns the LoadCallbacks wired to the channel.
func (o *ChannelCallbacks) Callbacks() domain.LoadCallbacks {
	return domain.LoadCallbacks{
		OnProgress: func(current, total int, message string) {
			o.send(ProgressMsg{Current: current, Total: total, Message: message})
		},
		OnItemLoaded: func(item domain.ItemSummary) {
			o.send(ItemLoadedMsg{Item: item})
		},
		OnStatusUpdate: func(message string, severity domain.Severity) {
			o.send(StatusMsg{Message: message, Severity: severity})
		},
	}
}

func (o *ChannelCallbacks) send(msg tea.Msg) {
	o.ch <- msg
}
