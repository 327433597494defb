// Package home is the TUI start page: banner, level summary and the main
// menu.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qpath/qpath/internal/levels"
	"github.com/qpath/qpath/internal/mentor"
	"github.com/qpath/qpath/internal/router"
	"github.com/qpath/qpath/internal/screen"
	"github.com/qpath/qpath/internal/screens/dashboard"
	mentorscreen "github.com/qpath/qpath/internal/screens/mentor"
	"github.com/qpath/qpath/internal/screens/profile"
	"github.com/qpath/qpath/internal/screens/tracks"
	"github.com/qpath/qpath/internal/ui/components"
	"github.com/qpath/qpath/internal/ui/layout"
	"github.com/qpath/qpath/internal/ui/theme"
	"github.com/qpath/qpath/internal/views"
)

// Deps are the views and services the pages behind the menu use.
// Mentor may be nil, which disables the Q-Mentor entry.
type Deps struct {
	UserName  string
	Dashboard *views.Dashboard
	Tracks    *views.Tracks
	Profile   *views.Profile
	Mentor    mentor.Advisor
	// MentorProfile is sent along with every Q-Mentor question.
	MentorProfile map[string]any
}

type profileLoadedMsg struct{ err error }

// Screen is the home page.
type Screen struct {
	deps   Deps
	menu   components.Menu
	loaded bool
}

var _ screen.Screen = (*Screen)(nil)

// New creates the home screen.
func New(deps Deps) *Screen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	items := []components.MenuItem{
		{Label: "Dashboard", Hint: "tarefas, semana e pomodoro", Action: push(func() screen.Screen {
			return dashboard.New(deps.Dashboard)
		})},
		{Label: "Trilhas", Hint: "módulos e lições", Action: push(func() screen.Screen {
			return tracks.New(deps.Tracks)
		})},
		{Label: "Perfil", Hint: "nível, conquistas e recompensas", Action: push(func() screen.Screen {
			return profile.New(deps.Profile)
		})},
		{Label: "Q-Mentor", Hint: "orientação de carreira", Disabled: deps.Mentor == nil, Action: push(func() screen.Screen {
			return mentorscreen.New(deps.Mentor, deps.MentorProfile)
		})},
		{Label: "Sair", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &Screen{deps: deps, menu: components.NewMenu(items)}
}

// Init loads the profile so the header shows the user's XP and streak.
func (h *Screen) Init() tea.Cmd {
	p := h.deps.Profile
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		return profileLoadedMsg{err: p.Load(context.Background())}
	}
}

func (h *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(profileLoadedMsg); ok {
		if msg.err != nil {
			return h, nil
		}
		h.loaded = true
		d := h.deps.Profile.Details()
		xp, streak := d.Profile.TotalXP, d.Profile.CurrentStreak
		return h, func() tea.Msg { return screen.HeaderMsg{XP: xp, Streak: streak} }
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *Screen) View(width, height int) string {
	cw := min(max(width-4, 40), 72)
	var sections []string

	sections = append(sections, renderBanner(width))

	greeting := "Bem-vindo ao Q-Path"
	if h.deps.UserName != "" {
		greeting = "Olá, " + h.deps.UserName + "!"
	}
	sections = append(sections, theme.Subtitle.Render(greeting))

	if h.loaded {
		sections = append(sections, renderLevelCard(h.deps.Profile.Level(), cw))
	} else if msg := h.profileErr(); msg != "" {
		sections = append(sections, theme.ErrorText.Render(msg))
	}

	sections = append(sections, theme.Card.Width(cw).Render(strings.TrimRight(h.menu.View(), "\n")))

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (h *Screen) profileErr() string {
	if h.deps.Profile == nil {
		return ""
	}
	return h.deps.Profile.Err()
}

func renderLevelCard(st levels.Stats, width int) string {
	bar := components.NewProgressBar(
		fmt.Sprintf("Nível %d · %s", st.Level.Number, levels.DisplayName(st.Level.Name)),
		st.Progress(), true, width-4)
	bar.Color = theme.Quantum
	return theme.Card.Width(width).Render(bar.View())
}

func (h *Screen) Title() string {
	return "Início"
}

func (h *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navegar"},
		{Key: "Enter", Description: "Abrir"},
		{Key: "Ctrl+C", Description: "Sair"},
	}
}
