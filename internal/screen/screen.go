package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/qpath/qpath/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	// Init starts the screen, typically loading its view.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface for screens with their own
// footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// InputCapturer is an optional interface for screens that are editing
// text. While CapturingInput is true the app forwards Esc and q to the
// screen instead of navigating.
type InputCapturer interface {
	CapturingInput() bool
}

// HeaderMsg updates the header counters. A negative value leaves that
// counter unchanged.
type HeaderMsg struct {
	XP     int
	Streak int
}
