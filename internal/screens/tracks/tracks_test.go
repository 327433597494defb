package tracks

import (
	"context"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpath/qpath/internal/api"
	"github.com/qpath/qpath/internal/views"
)

type fakeBackend struct {
	mu      sync.Mutex
	tracks  []api.Track
	reject  bool
	updates map[int]bool
}

func (f *fakeBackend) Tracks(context.Context) ([]api.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracks, nil
}

func (f *fakeBackend) UpdateLessonCompletion(_ context.Context, lessonID int, completed bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return false, nil
	}
	f.updates[lessonID] = completed
	return true, nil
}

func newScreen(t *testing.T) (*Screen, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{
		updates: map[int]bool{},
		tracks: []api.Track{
			{ID: 1, Name: "Computação Quântica", Color: "quantum", Modules: []api.Module{
				{ID: 10, Title: "Fundamentos", Lessons: []api.Lesson{
					{ID: 100, Slug: "qubits", Title: "Qubits", Completed: true},
					{ID: 101, Slug: "superposicao", Title: "Superposição"},
				}},
			}},
			{ID: 2, Name: "Cibersegurança", Color: "cyber", Modules: []api.Module{
				{ID: 20, Title: "Redes", Lessons: []api.Lesson{
					{ID: 200, Slug: "tcp-ip", Title: "TCP/IP"},
				}},
			}},
		},
	}
	s := New(views.NewTracks(backend, nil, nil))
	s.Update(s.Init()())
	require.Len(t, s.rows, 7)
	return s, backend
}

func TestCursorSkipsHeadings(t *testing.T) {
	s, _ := newScreen(t)
	assert.Equal(t, "Qubits", s.rows[s.cursor].text)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, "Superposição", s.rows[s.cursor].text)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, "TCP/IP", s.rows[s.cursor].text)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, "TCP/IP", s.rows[s.cursor].text)

	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, "Superposição", s.rows[s.cursor].text)
}

func TestToggleLesson(t *testing.T) {
	s, backend := newScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Equal(t, map[int]bool{101: true}, backend.updates)
	assert.True(t, s.rows[s.cursor].lesson.Completed)
	assert.Equal(t, "Superposição", s.rows[s.cursor].text, "cursor stays on the lesson")
	assert.InDelta(t, 100, s.rows[0].progress, 0.01)
	assert.Contains(t, s.notice, "Superposição")
}

func TestRejectedUpdateKeepsState(t *testing.T) {
	s, backend := newScreen(t)
	backend.reject = true

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Equal(t, views.MsgUpdateLesson, s.errMsg)
	assert.True(t, s.rows[s.cursor].lesson.Completed)
}

func TestViewShowsTree(t *testing.T) {
	s, _ := newScreen(t)
	out := ansi.Strip(s.View(100, 20))
	for _, want := range []string{"Computação Quântica", "Fundamentos  50%", "Qubits", "TCP/IP"} {
		assert.Contains(t, out, want)
	}
}

func TestViewScrollsToCursor(t *testing.T) {
	s, _ := newScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	out := ansi.Strip(s.View(100, 5))
	assert.Contains(t, out, "TCP/IP")
	assert.NotContains(t, out, "Qubits")
}
