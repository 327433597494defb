// Package profile is the TUI page with the level, statistics,
// achievements and rewards.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/levels"
	"github.com/qpath/qpath/internal/screen"
	"github.com/qpath/qpath/internal/ui/components"
	"github.com/qpath/qpath/internal/ui/layout"
	"github.com/qpath/qpath/internal/ui/theme"
	"github.com/qpath/qpath/internal/views"
)

type loadedMsg struct{ err error }

type rewardAddedMsg struct {
	reward *api.Reward
	err    error
}

// Screen is the profile page. Pressing "a" opens a two-field form that
// creates a reward.
type Screen struct {
	view *views.Profile

	loading bool
	errMsg  string
	notice  string

	formOpen  bool
	saving    bool
	condition components.TextInput
	reward    components.TextInput
}

var _ screen.Screen = (*Screen)(nil)

// New creates the profile screen over view.
func New(view *views.Profile) *Screen {
	return &Screen{
		view:      view,
		condition: components.NewTextInput("Condição", "ex.: estudar 10h na semana", 120),
		reward:    components.NewTextInput("Recompensa", "ex.: assistir um filme", 120),
	}
}

func (s *Screen) Init() tea.Cmd {
	s.loading = true
	view := s.view
	return func() tea.Msg {
		return loadedMsg{err: view.Load(context.Background())}
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loading = false
		s.errMsg = s.view.Err()
		if msg.err != nil {
			return s, nil
		}
		return s, s.headerCmd()

	case rewardAddedMsg:
		s.saving = false
		if msg.err != nil {
			if errors.Is(msg.err, views.ErrRewardFields) {
				s.errMsg = views.MsgRewardFields
			} else {
				s.errMsg = views.Localize(msg.err, views.MsgCreateReward)
			}
			return s, nil
		}
		s.errMsg = ""
		s.notice = "Recompensa criada: " + msg.reward.Reward
		s.closeForm()
		return s, nil

	case tea.KeyMsg:
		if s.formOpen {
			return s, s.updateForm(msg)
		}
		switch msg.String() {
		case "a":
			return s, s.openForm()
		case "u":
			s.notice = ""
			return s, s.Init()
		}
		return s, nil
	}

	if s.formOpen {
		var cmd tea.Cmd
		if s.condition.Focused() {
			s.condition, cmd = s.condition.Update(msg)
		} else {
			s.reward, cmd = s.reward.Update(msg)
		}
		return s, cmd
	}
	return s, nil
}

func (s *Screen) openForm() tea.Cmd {
	s.formOpen = true
	s.errMsg = ""
	s.notice = ""
	s.condition.Reset()
	s.reward.Reset()
	s.reward.Blur()
	return s.condition.Focus()
}

func (s *Screen) closeForm() {
	s.formOpen = false
	s.condition.Blur()
	s.reward.Blur()
}

func (s *Screen) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.closeForm()
		return nil
	case "tab", "shift+tab", "up", "down":
		if s.condition.Focused() {
			s.condition.Blur()
			return s.reward.Focus()
		}
		s.reward.Blur()
		return s.condition.Focus()
	case "enter":
		if s.condition.Focused() {
			s.condition.Blur()
			return s.reward.Focus()
		}
		if s.saving {
			return nil
		}
		s.saving = true
		return s.addReward(s.condition.Value(), s.reward.Value())
	}

	var cmd tea.Cmd
	if s.condition.Focused() {
		s.condition, cmd = s.condition.Update(msg)
	} else {
		s.reward, cmd = s.reward.Update(msg)
	}
	return cmd
}

func (s *Screen) addReward(condition, reward string) tea.Cmd {
	view := s.view
	return func() tea.Msg {
		created, err := view.AddReward(context.Background(), condition, reward)
		return rewardAddedMsg{reward: created, err: err}
	}
}

func (s *Screen) headerCmd() tea.Cmd {
	d := s.view.Details()
	if d == nil {
		return nil
	}
	xp, streak := d.Profile.TotalXP, d.Profile.CurrentStreak
	return func() tea.Msg { return screen.HeaderMsg{XP: xp, Streak: streak} }
}

// CapturingInput keeps Esc inside the screen while the form is open.
func (s *Screen) CapturingInput() bool {
	return s.formOpen
}

func (s *Screen) View(width, height int) string {
	d := s.view.Details()
	if d == nil {
		if s.loading {
			return theme.Hint.Render("  Carregando perfil...")
		}
		msg := views.MsgNoData
		if s.errMsg != "" {
			msg = s.errMsg
		}
		return theme.ErrorText.Render("  " + msg)
	}

	colWidth := max((width-6)/2, 28)
	left := lipgloss.JoinVertical(lipgloss.Left,
		theme.Card.Width(colWidth).Render(renderLevel(s.view.Level(), d, colWidth-4)),
		theme.Card.Width(colWidth).Render(renderStats(d)),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		theme.Card.Width(colWidth).Render(renderAchievements(d.Achievements)),
		theme.Card.Width(colWidth).Render(s.renderRewards()),
	)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	if s.errMsg != "" {
		b.WriteString("\n" + theme.ErrorText.Render("  "+s.errMsg))
	} else if s.notice != "" {
		b.WriteString("\n" + theme.SuccessText.Render("  "+s.notice))
	}
	return b.String()
}

func renderLevel(st levels.Stats, d *api.ProfileDetails, width int) string {
	bar := components.NewProgressBar("", st.Progress(), true, width)
	bar.Color = theme.Quantum
	next := "nível máximo"
	if st.Remaining > 0 {
		next = fmt.Sprintf("faltam %d XP para o próximo nível", st.Remaining)
	}
	body := fmt.Sprintf("%s  %s\n%d XP   🔥 %d dias (recorde %d)\n%s\n%s",
		lipgloss.NewStyle().Bold(true).Foreground(theme.Accent).Render(fmt.Sprintf("Nível %d", st.Level.Number)),
		theme.Body.Render(levels.DisplayName(st.Level.Name)),
		st.TotalXP, d.Profile.CurrentStreak, d.Profile.LongestStreak,
		bar.View(),
		theme.Hint.Render(next),
	)
	return layout.Section("Nível", body)
}

func renderStats(d *api.ProfileDetails) string {
	st := d.Stats
	body := fmt.Sprintf("Horas de estudo     %.1f\nLições concluídas   %d/%d\nSessões Pomodoro    %d\nTrilhas concluídas  %d",
		st.TotalHours, st.CompletedLessons, st.TotalLessons, st.PomodoroSessions, d.Profile.CompletedTrilhas)
	return layout.Section("Estatísticas", theme.Body.Render(body))
}

func renderAchievements(list []api.Achievement) string {
	if len(list) == 0 {
		return layout.Section("Conquistas", theme.Hint.Render(views.MsgNoData))
	}
	lines := make([]string, len(list))
	for i, a := range list {
		if a.Unlocked {
			lines[i] = theme.SuccessText.Render("★ "+a.Name) + theme.Hint.Render("  "+a.Description)
		} else {
			lines[i] = theme.Hint.Render("☆ " + a.Name)
		}
	}
	return layout.Section("Conquistas", strings.Join(lines, "\n"))
}

func (s *Screen) renderRewards() string {
	var b strings.Builder
	rewards := s.view.Rewards()
	if len(rewards) == 0 && !s.formOpen {
		b.WriteString(theme.Hint.Render("Nenhuma recompensa. Pressione a para criar."))
	}
	for i, r := range rewards {
		line := r.Condition + " → " + r.Reward
		if r.Achieved {
			b.WriteString(theme.SuccessText.Render("✓ ") + theme.Done.Render(line))
		} else {
			b.WriteString("  " + theme.Body.Render(line))
		}
		if i < len(rewards)-1 {
			b.WriteString("\n")
		}
	}
	if s.formOpen {
		b.WriteString("\n\n" + s.condition.View() + "\n" + s.reward.View())
		if s.saving {
			b.WriteString("\n" + theme.Hint.Render("Salvando..."))
		}
	}
	return layout.Section("Recompensas", b.String())
}

func (s *Screen) Title() string {
	return "Perfil"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.formOpen {
		return []layout.KeyHint{
			{Key: "Tab", Description: "Campo"},
			{Key: "Enter", Description: "Salvar"},
			{Key: "Esc", Description: "Cancelar"},
		}
	}
	return []layout.KeyHint{
		{Key: "a", Description: "Nova recompensa"},
		{Key: "u", Description: "Atualizar"},
		{Key: "Esc", Description: "Voltar"},
	}
}
