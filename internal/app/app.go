// Package app wires the terminal exam runner: course intro, timed exam and
// result screens on a router.
package app

import (
	"context"
	"fmt"
	"log/slog"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/certificate"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/router"
	"github.com/abhisek/certifica/internal/screen"
	"github.com/abhisek/certifica/internal/screens/session"
	"github.com/abhisek/certifica/internal/screens/summary"
	"github.com/abhisek/certifica/internal/screens/welcome"
	"github.com/abhisek/certifica/internal/ui/layout"
)

// Options configure a terminal exam.
type Options struct {
	Course exam.Course
	UserID int

	// Duration overrides the time limit in seconds when positive.
	Duration int

	Source   exam.QuestionSource
	Recorder exam.AttemptRecorder

	// Consumer issues certificates; nil disables them.
	Consumer exam.CreditConsumer

	// Certificates loads an issued certificate for display.
	Certificates func(ctx context.Context, id string) (certificate.View, error)

	Logger *slog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel starts on the course intro.
func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var examScreen func() screen.Screen
	result := func(s *exam.Session) screen.Screen {
		return summary.New(summary.Deps{
			Session:     s,
			Consumer:    opts.Consumer,
			Certificate: opts.Certificates,
			Retry:       examScreen,
			Logger:      opts.Logger,
		})
	}
	examScreen = func() screen.Screen {
		return session.New(session.Deps{
			Course:   opts.Course,
			UserID:   opts.UserID,
			Duration: opts.Duration,
			Source:   opts.Source,
			Recorder: opts.Recorder,
			Result:   result,
			Logger:   opts.Logger,
		})
	}

	return AppModel{
		router: router.New(welcome.New(opts.Course, opts.Duration, examScreen)),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	return m, m.router.Update(msg)
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.frame())
	v.AltScreen = true
	return v
}

// frame renders header, active screen and footer for the current size.
func (m AppModel) frame() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	footerHints := []layout.KeyHint{{Key: "ctrl+c", Description: "sair"}}
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			if hints := kp.KeyHints(); len(hints) > 0 {
				footerHints = hints
			}
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run shows the exam for opts.Course until the learner quits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Source == nil {
		return fmt.Errorf("app: question source is required")
	}
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run exam: %w", err)
	}
	return nil
}
