// Package dashboard is the TUI page with the task list, the weekly
// progress, the track summary and the pomodoro timer.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/pomodoro"
	"github.com/qpath/qpath/internal/screen"
	"github.com/qpath/qpath/internal/ui/components"
	"github.com/qpath/qpath/internal/ui/layout"
	"github.com/qpath/qpath/internal/ui/theme"
	"github.com/qpath/qpath/internal/views"
)

type loadedMsg struct{ err error }

type toggledMsg struct {
	task *api.Task
	err  error
}

// tickMsg carries the timer generation it was scheduled for; ticks from
// an older generation are dropped.
type tickMsg struct{ gen int }

type pomodoroLoggedMsg struct {
	minutes int
	err     error
}

// Screen is the dashboard page.
type Screen struct {
	view  *views.Dashboard
	timer *pomodoro.Timer

	gen     int
	cursor  int
	loading bool
	errMsg  string
	notice  string
}

var _ screen.Screen = (*Screen)(nil)

// New creates the dashboard screen over view.
func New(view *views.Dashboard) *Screen {
	return &Screen{view: view, timer: pomodoro.NewTimer(pomodoro.Focus)}
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
		s.clampCursor()
		if msg.err != nil {
			return s, nil
		}
		return s, s.headerCmd()

	case toggledMsg:
		if msg.err != nil {
			s.errMsg = views.Localize(msg.err, views.MsgToggleTask)
			return s, nil
		}
		s.errMsg = ""
		if msg.task.Completed {
			s.notice = "Tarefa concluída: " + msg.task.Title
		} else {
			s.notice = "Tarefa reaberta: " + msg.task.Title
		}
		return s, nil

	case tickMsg:
		if msg.gen != s.gen || !s.timer.Running() {
			return s, nil
		}
		done, minutes := s.timer.Tick()
		if done {
			return s, s.logPomodoro(minutes)
		}
		return s, s.scheduleTick()

	case pomodoroLoggedMsg:
		if msg.err != nil {
			s.errMsg = views.Localize(msg.err, views.MsgPomodoro)
			return s, nil
		}
		s.errMsg = ""
		s.notice = fmt.Sprintf("Sessão de %d min registrada!", msg.minutes)
		return s, s.headerCmd()

	case tea.KeyMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *Screen) handleKey(key string) tea.Cmd {
	tasks := s.view.Tasks()
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(tasks)-1 {
			s.cursor++
		}
	case "enter", "space":
		if s.cursor < len(tasks) {
			return s.toggle(tasks[s.cursor].ID)
		}
	case "p":
		s.timer.Toggle()
		if s.timer.Running() {
			s.gen++
			return s.scheduleTick()
		}
	case "r":
		s.gen++
		s.timer.Reset()
	case "m":
		s.gen++
		s.timer.SetMode(nextMode(s.timer.Mode()))
	case "u":
		s.notice = ""
		return s.Init()
	}
	return nil
}

func nextMode(m pomodoro.Mode) pomodoro.Mode {
	for i, mode := range pomodoro.Modes {
		if mode == m {
			return pomodoro.Modes[(i+1)%len(pomodoro.Modes)]
		}
	}
	return pomodoro.Focus
}

func (s *Screen) toggle(id int) tea.Cmd {
	view := s.view
	return func() tea.Msg {
		task, err := view.ToggleTask(context.Background(), id)
		return toggledMsg{task: task, err: err}
	}
}

func (s *Screen) scheduleTick() tea.Cmd {
	gen := s.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (s *Screen) logPomodoro(minutes int) tea.Cmd {
	view := s.view
	return func() tea.Msg {
		return pomodoroLoggedMsg{minutes: minutes, err: view.CompletePomodoro(context.Background(), minutes)}
	}
}

func (s *Screen) headerCmd() tea.Cmd {
	streak := s.view.Week().Streak
	return func() tea.Msg { return screen.HeaderMsg{XP: -1, Streak: streak} }
}

func (s *Screen) clampCursor() {
	n := len(s.view.Tasks())
	if s.cursor >= n {
		s.cursor = max(n-1, 0)
	}
}

func (s *Screen) View(width, height int) string {
	if s.loading && !s.view.Loaded() {
		return theme.Hint.Render("  Carregando dashboard...")
	}

	colWidth := max((width-6)/2, 28)
	left := lipgloss.JoinVertical(lipgloss.Left,
		theme.Card.Width(colWidth).Render(s.renderTasks(colWidth-4)),
		theme.Card.Width(colWidth).Render(s.renderPomodoro(colWidth-4)),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		theme.Card.Width(colWidth).Render(s.renderWeek(colWidth-4)),
		theme.Card.Width(colWidth).Render(s.renderTracks(colWidth-4)),
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

func (s *Screen) renderTasks(width int) string {
	tasks := s.view.Tasks()
	var b strings.Builder
	if len(tasks) == 0 {
		b.WriteString(theme.Hint.Render(views.MsgNoData))
		return layout.Section("Tarefas", b.String())
	}
	for i, t := range tasks {
		box := "[ ] "
		style := theme.Unselected
		if t.Completed {
			box = "[x] "
			style = theme.Done
		}
		line := box + truncate(t.Title, width-6)
		if t.DueDate != nil && *t.DueDate != "" {
			line += theme.Hint.Render("  " + views.FormatDate(*t.DueDate))
		}
		if i == s.cursor {
			b.WriteString(theme.Selected.Render("▸ ") + style.Render(line))
		} else {
			b.WriteString("  " + style.Render(line))
		}
		if i < len(tasks)-1 {
			b.WriteString("\n")
		}
	}
	return layout.Section("Tarefas", b.String())
}

func (s *Screen) renderPomodoro(width int) string {
	status := "pausado"
	if s.timer.Running() {
		status = "em andamento"
	}
	bar := components.NewProgressBar("", s.timer.Progress(), false, width)
	bar.Color = theme.Accent
	body := fmt.Sprintf("%s  %s  %s\n%s",
		theme.Subtitle.Render(s.timer.Mode().Label()),
		lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Render(s.timer.Display()),
		theme.Hint.Render(status),
		bar.View(),
	)
	return layout.Section("Pomodoro", body)
}

func (s *Screen) renderWeek(width int) string {
	week := s.view.Week()
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 %d dias seguidos   %.1fh na semana\n", week.Streak, week.TotalHours)

	peak := 0.0
	for _, d := range week.Week {
		peak = max(peak, d.Hours)
	}
	for i, d := range week.Week {
		frac := 0.0
		if peak > 0 {
			frac = d.Hours / peak
		}
		bar := components.NewProgressBar(fmt.Sprintf("%-3s", d.Day), frac, false, width-7)
		fmt.Fprintf(&b, "%s %4.1fh", bar.View(), d.Hours)
		if i < len(week.Week)-1 {
			b.WriteString("\n")
		}
	}
	return layout.Section("Progresso semanal", b.String())
}

func (s *Screen) renderTracks(width int) string {
	summary := s.view.TrackSummary()
	if len(summary) == 0 {
		return layout.Section("Trilhas", theme.Hint.Render(views.MsgNoData))
	}
	lines := make([]string, len(summary))
	for i, t := range summary {
		bar := components.NewProgressBar("", t.Progress/100, true, width)
		bar.Color = theme.TrackColor(t.Color).GetForeground()
		lines[i] = theme.TrackColor(t.Color).Render(t.Name) + "\n" + bar.View()
	}
	return layout.Section("Trilhas", strings.Join(lines, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (s *Screen) Title() string {
	return "Dashboard"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Tarefas"},
		{Key: "Enter", Description: "Concluir"},
		{Key: "p", Description: "Iniciar/pausar"},
		{Key: "r", Description: "Reiniciar"},
		{Key: "m", Description: "Modo"},
		{Key: "u", Description: "Atualizar"},
		{Key: "Esc", Description: "Voltar"},
	}
}
