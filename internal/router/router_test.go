package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/qpath/qpath/internal/screen"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return s.title }
func (s *stubScreen) Title() string        { return s.title }

type pingMsg struct{}

func TestPushPop(t *testing.T) {
	home := &stubScreen{title: "Início"}
	r := New(home)

	tracks := &stubScreen{title: "Trilhas"}
	r.Update(PushScreenMsg{Screen: tracks})
	assert.Equal(t, 2, r.Depth())
	assert.True(t, tracks.initRan)
	assert.Equal(t, "Trilhas", r.View(80, 24))

	r.Update(PopScreenMsg{})
	assert.Equal(t, 1, r.Depth())
	assert.Same(t, home, r.Active())

	r.Update(PopScreenMsg{})
	assert.Equal(t, 1, r.Depth(), "the bottom screen is never popped")
}

func TestReplace(t *testing.T) {
	r := New(&stubScreen{title: "Início"})
	r.Push(&stubScreen{title: "Perfil"})

	mentor := &stubScreen{title: "Q-Mentor"}
	r.Update(ReplaceScreenMsg{Screen: mentor})

	assert.Equal(t, 2, r.Depth())
	assert.True(t, mentor.initRan)
	assert.Equal(t, "Início › Q-Mentor", r.Breadcrumb())
}

func TestOnlyActiveScreenReceivesMessages(t *testing.T) {
	home := &stubScreen{title: "Início"}
	r := New(home)
	dash := &stubScreen{title: "Dashboard"}
	r.Push(dash)

	r.Update(pingMsg{})

	assert.Empty(t, home.got)
	assert.Len(t, dash.got, 1)
}
