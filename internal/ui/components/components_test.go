package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

type pickedMsg string

func TestMenuSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Dashboard", Disabled: true},
		{Label: "Trilhas", Action: func() tea.Cmd { return func() tea.Msg { return pickedMsg("trilhas") } }},
		{Label: "Perfil", Disabled: true},
		{Label: "Sair"},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, m.Selected, "no enabled item above")

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if assert.NotNil(t, cmd) {
		assert.Equal(t, pickedMsg("trilhas"), cmd())
	}
	assert.Contains(t, m.View(), "▸ Trilhas")
}

func TestProgressBarClamps(t *testing.T) {
	full := NewProgressBar("", 1.7, true, 20).View()
	assert.Contains(t, full, "100%")
	assert.NotContains(t, full, "░")

	empty := NewProgressBar("XP", -1, true, 20).View()
	assert.Contains(t, empty, "  0%")
	assert.NotContains(t, empty, "█")
}

func TestTextInputValueTrimmed(t *testing.T) {
	in := NewTextInput("Condição", "", 0)
	in.Model.SetValue("  estudar 2h  ")
	assert.Equal(t, "estudar 2h", in.Value())
	in.Reset()
	assert.Empty(t, in.Value())
}
