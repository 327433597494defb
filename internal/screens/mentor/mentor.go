// Package mentor is the TUI page for asking Q-Mentor questions.
package mentor

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/qpath/qpath/internal/api"
	advisor "github.com/qpath/qpath/internal/mentor"
	"github.com/qpath/qpath/internal/screen"
	"github.com/qpath/qpath/internal/ui/components"
	"github.com/qpath/qpath/internal/ui/layout"
	"github.com/qpath/qpath/internal/ui/theme"
)

// Mode selects what the input is sent as.
type Mode int

const (
	ModeQuestion Mode = iota // free-form guidance
	ModeTips                 // quick tips for a career area
)

func (m Mode) label() string {
	if m == ModeTips {
		return "Dicas"
	}
	return "Pergunta"
}

// exchange is one question and its answer.
type exchange struct {
	mode   Mode
	prompt string
	answer string
	failed bool
}

type answerMsg struct {
	exchange exchange
}

const maxHistory = 10

// Screen is the Q-Mentor page.
type Screen struct {
	advisor advisor.Advisor
	profile map[string]any

	mode    Mode
	input   components.TextInput
	spinner spinner.Model
	busy    bool
	history []exchange
}

var _ screen.Screen = (*Screen)(nil)

// New creates the mentor screen. profile is sent with every question.
func New(a advisor.Advisor, profile map[string]any) *Screen {
	return &Screen{
		advisor: a,
		profile: profile,
		input:   components.NewTextInput("", "Pergunte sobre carreira, estudos ou tecnologias", 500),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Quantum))),
	}
}

func (s *Screen) Init() tea.Cmd {
	return s.input.Focus()
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case answerMsg:
		s.busy = false
		s.history = append(s.history, msg.exchange)
		if len(s.history) > maxHistory {
			s.history = s.history[len(s.history)-maxHistory:]
		}
		return s, nil

	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			if s.mode == ModeQuestion {
				s.mode = ModeTips
				s.input.Model.Placeholder = "Área de carreira, ex.: criptografia pós-quântica"
			} else {
				s.mode = ModeQuestion
				s.input.Model.Placeholder = "Pergunte sobre carreira, estudos ou tecnologias"
			}
			return s, nil
		case "esc":
			s.input.Reset()
			return s, nil
		case "enter":
			prompt := s.input.Value()
			if prompt == "" || s.busy {
				return s, nil
			}
			s.busy = true
			s.input.Reset()
			return s, tea.Batch(s.ask(s.mode, prompt), s.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) ask(mode Mode, prompt string) tea.Cmd {
	a, profile := s.advisor, s.profile
	return func() tea.Msg {
		ctx := context.Background()
		ex := exchange{mode: mode, prompt: prompt}
		if mode == ModeTips {
			out, err := a.QuickTips(ctx, prompt)
			ex.answer, ex.failed = reply(err, func() (string, string) { return out.Tips, out.Status })
		} else {
			out, err := a.Guidance(ctx, api.GuidanceRequest{Query: prompt, UserProfile: profile})
			ex.answer, ex.failed = reply(err, func() (string, string) { return out.Response, out.Status })
		}
		return answerMsg{exchange: ex}
	}
}

// reply picks the text to show. answer is only called when err is nil.
func reply(err error, answer func() (string, string)) (string, bool) {
	if err != nil {
		return "Não foi possível falar com o Q-Mentor agora. Tente novamente em instantes.", true
	}
	text, status := answer()
	return text, status == advisor.StatusError
}

// CapturingInput lets Esc clear a half-typed question instead of leaving.
func (s *Screen) CapturingInput() bool {
	return s.input.Value() != ""
}

func (s *Screen) View(width, height int) string {
	textWidth := max(width-6, 20)
	wrap := lipgloss.NewStyle().Width(textWidth)

	var blocks []string
	if len(s.history) == 0 {
		blocks = append(blocks, theme.Hint.Render(
			"Olá! Sou o Q-Mentor. Pergunte sobre computação quântica, cibersegurança ou desenvolvimento de software."))
	}
	for _, ex := range s.history {
		q := theme.Selected.Render(ex.mode.label()+": ") + theme.Body.Render(ex.prompt)
		style := theme.Body
		if ex.failed {
			style = theme.ErrorText
		}
		blocks = append(blocks, wrap.Render(q), style.Width(textWidth).Render(ex.answer))
	}
	if s.busy {
		blocks = append(blocks, s.spinner.View()+theme.Hint.Render(" Q-Mentor está pensando..."))
	}

	conversation := strings.Join(blocks, "\n\n")
	// Keep the newest lines when the conversation overflows.
	inputHeight := 3
	if lines := strings.Split(conversation, "\n"); len(lines) > height-inputHeight-1 && height > inputHeight+1 {
		conversation = strings.Join(lines[len(lines)-(height-inputHeight-1):], "\n")
	}

	modeTabs := tabs(s.mode)
	return conversation + "\n\n" + modeTabs + "\n" + s.input.View()
}

func tabs(active Mode) string {
	var parts []string
	for _, m := range []Mode{ModeQuestion, ModeTips} {
		if m == active {
			parts = append(parts, theme.Selected.Render("["+m.label()+"]"))
		} else {
			parts = append(parts, theme.Hint.Render(" "+m.label()+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (s *Screen) Title() string {
	return "Q-Mentor"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Enviar"},
		{Key: "Tab", Description: "Pergunta/Dicas"},
		{Key: "Esc", Description: "Limpar/voltar"},
	}
}
