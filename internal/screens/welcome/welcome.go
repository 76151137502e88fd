// Package welcome is the course introduction shown before an exam starts.
package welcome

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/questionbank"
	"github.com/abhisek/certifica/internal/router"
	"github.com/abhisek/certifica/internal/screen"
	"github.com/abhisek/certifica/internal/ui/layout"
	"github.com/abhisek/certifica/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	bannerAt     = 300 * time.Millisecond
	rulesAt      = 900 * time.Millisecond
)

type tickMsg time.Time

// WelcomeScreen reveals the banner and the exam rules, then starts the
// exam produced by examFactory on the next key press.
type WelcomeScreen struct {
	course      exam.Course
	duration    int
	examFactory func() screen.Screen
	elapsed     time.Duration
	started     bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New returns the intro for course. duration is the time limit in seconds.
func New(course exam.Course, duration int, examFactory func() screen.Screen) *WelcomeScreen {
	if duration <= 0 {
		duration = exam.DurationSeconds
	}
	return &WelcomeScreen{course: course, duration: duration, examFactory: examFactory}
}

func (w *WelcomeScreen) Title() string {
	return "Avaliação"
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "qualquer tecla", Description: "começar"}, {Key: "ctrl+c", Description: "sair"}}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.elapsed >= rulesAt {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		// The first key only finishes the reveal.
		if w.elapsed < rulesAt {
			w.elapsed = rulesAt
			return w, nil
		}
		return w, w.start()
	}
	return w, nil
}

func (w *WelcomeScreen) start() tea.Cmd {
	if w.started {
		return nil
	}
	w.started = true
	next := w.examFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	if w.elapsed >= bannerAt {
		sections = append(sections, RenderBanner(width), "")
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render(w.course.Title))
	}

	if w.elapsed >= rulesAt {
		sections = append(sections, "", w.rules(), "")
		sections = append(sections, theme.Hint.Render("pressione qualquer tecla para começar"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}

func (w *WelcomeScreen) rules() string {
	lines := []string{
		fmt.Sprintf("%d questões de múltipla escolha", questionbank.ExamSize),
		fmt.Sprintf("Tempo limite: %d minutos", w.duration/60),
		fmt.Sprintf("Aprovação com %d acertos ou mais", exam.PassThreshold),
		"A prova é enviada automaticamente quando o tempo acaba",
	}
	return theme.Card.Render(theme.Body.Render(strings.Join(lines, "\n")))
}
