// Package tracks is the TUI page listing tracks, modules and lessons.
package tracks

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/screen"
	"github.com/qpath/qpath/internal/ui/components"
	"github.com/qpath/qpath/internal/ui/layout"
	"github.com/qpath/qpath/internal/ui/theme"
	"github.com/qpath/qpath/internal/views"
)

type loadedMsg struct{ err error }

type lessonMsg struct {
	title     string
	completed bool
	ok        bool
	err       error
}

type rowKind int

const (
	rowTrack rowKind = iota
	rowModule
	rowLesson
)

// row is one line of the flattened tree.
type row struct {
	kind     rowKind
	color    string
	text     string
	progress float64 // percent, tracks and modules only
	lesson   api.Lesson
}

// Screen is the tracks page. The cursor moves over lesson rows only.
type Screen struct {
	view *views.Tracks

	rows    []row
	cursor  int // index into rows, always a lesson row when any exist
	offset  int
	loading bool
	busy    bool
	errMsg  string
	notice  string
}

var _ screen.Screen = (*Screen)(nil)

// New creates the tracks screen over view.
func New(view *views.Tracks) *Screen {
	return &Screen{view: view}
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
		s.rebuild()
		return s, nil

	case lessonMsg:
		s.busy = false
		switch {
		case msg.err != nil:
			s.errMsg = views.Localize(msg.err, views.MsgUpdateLesson)
		case !msg.ok:
			s.errMsg = views.MsgUpdateLesson
		default:
			s.errMsg = ""
			if msg.completed {
				s.notice = "Lição concluída: " + msg.title
			} else {
				s.notice = "Lição desmarcada: " + msg.title
			}
			s.rebuild()
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.move(-1)
		case "down", "j":
			s.move(1)
		case "enter", "space":
			if s.busy || !s.onLesson() {
				return s, nil
			}
			s.busy = true
			return s, s.setLesson(s.rows[s.cursor].lesson)
		case "u":
			s.notice = ""
			return s, s.Init()
		}
	}
	return s, nil
}

func (s *Screen) setLesson(l api.Lesson) tea.Cmd {
	view := s.view
	return func() tea.Msg {
		ok, err := view.SetLesson(context.Background(), l.ID, !l.Completed)
		return lessonMsg{title: l.Title, completed: !l.Completed, ok: ok, err: err}
	}
}

// rebuild flattens the cached tree, keeping the cursor on the same lesson.
func (s *Screen) rebuild() {
	selected := -1
	if s.onLesson() {
		selected = s.rows[s.cursor].lesson.ID
	}

	s.rows = s.rows[:0]
	for _, t := range s.view.Tracks() {
		s.rows = append(s.rows, row{kind: rowTrack, color: t.Color, text: t.Name, progress: trackPercent(t)})
		for _, m := range t.Modules {
			s.rows = append(s.rows, row{kind: rowModule, color: t.Color, text: m.Title, progress: modulePercent(m)})
			for _, l := range m.Lessons {
				s.rows = append(s.rows, row{kind: rowLesson, color: t.Color, text: l.Title, lesson: l})
			}
		}
	}

	s.cursor = -1
	for i, r := range s.rows {
		if r.kind != rowLesson {
			continue
		}
		if s.cursor < 0 || r.lesson.ID == selected {
			s.cursor = i
		}
		if r.lesson.ID == selected {
			break
		}
	}
}

func trackPercent(t api.Track) float64 {
	p := views.TrackProgress{Track: t}
	for _, m := range t.Modules {
		done, total := countLessons(m)
		p.Completed += done
		p.Total += total
	}
	return p.Percent()
}

func modulePercent(m api.Module) float64 {
	done, total := countLessons(m)
	return views.TrackProgress{Completed: done, Total: total}.Percent()
}

func countLessons(m api.Module) (done, total int) {
	for _, l := range m.Lessons {
		if l.Completed {
			done++
		}
	}
	return done, len(m.Lessons)
}

func (s *Screen) onLesson() bool {
	return s.cursor >= 0 && s.cursor < len(s.rows) && s.rows[s.cursor].kind == rowLesson
}

func (s *Screen) move(step int) {
	for i := s.cursor + step; i >= 0 && i < len(s.rows); i += step {
		if s.rows[i].kind == rowLesson {
			s.cursor = i
			return
		}
	}
}

func (s *Screen) View(width, height int) string {
	if s.loading && !s.view.Loaded() {
		return theme.Hint.Render("  Carregando trilhas...")
	}
	if len(s.rows) == 0 {
		msg := views.MsgNoData
		if s.errMsg != "" {
			msg = s.errMsg
		}
		return theme.Hint.Render("  " + msg)
	}

	visible := max(height-2, 3)
	if s.cursor >= 0 {
		if s.cursor < s.offset {
			s.offset = s.cursor
		}
		if s.cursor >= s.offset+visible {
			s.offset = s.cursor - visible + 1
		}
	}
	end := min(s.offset+visible, len(s.rows))

	barWidth := min(max(width/3, 16), 40)
	var b strings.Builder
	for i := s.offset; i < end; i++ {
		b.WriteString(s.renderRow(i, barWidth))
		b.WriteString("\n")
	}
	if s.errMsg != "" {
		b.WriteString(theme.ErrorText.Render("  " + s.errMsg))
	} else if s.notice != "" {
		b.WriteString(theme.SuccessText.Render("  " + s.notice))
	}
	return b.String()
}

func (s *Screen) renderRow(i, barWidth int) string {
	r := s.rows[i]
	color := theme.TrackColor(r.color)
	switch r.kind {
	case rowTrack:
		bar := components.NewProgressBar("", r.progress/100, true, barWidth)
		bar.Color = color.GetForeground()
		return color.Bold(true).Render(" "+r.text) + "  " + bar.View()
	case rowModule:
		return theme.Subtitle.Render(fmt.Sprintf("   %s  %d%%", r.text, int(r.progress)))
	}

	box, style := "○ ", theme.Unselected
	if r.lesson.Completed {
		box, style = "● ", theme.Done
	}
	if i == s.cursor {
		return theme.Selected.Render("   ▸ ") + color.Render(box) + style.Render(r.text)
	}
	return "     " + color.Render(box) + style.Render(r.text)
}

func (s *Screen) Title() string {
	return "Trilhas"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Lições"},
		{Key: "Enter", Description: "Marcar/desmarcar"},
		{Key: "u", Description: "Atualizar"},
		{Key: "Esc", Description: "Voltar"},
	}
}
