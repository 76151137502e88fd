// Package session is the screen that runs a timed exam attempt.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/router"
	"github.com/abhisek/certifica/internal/screen"
	"github.com/abhisek/certifica/internal/ui/components"
	"github.com/abhisek/certifica/internal/ui/layout"
)

// generateTimeout bounds question generation, AI fallback included.
const generateTimeout = 2 * time.Minute

var errIncomplete = errors.New("responda todas as questões antes de enviar")

var keys = struct {
	Prev, Next, Submit, Quit, Yes, No key.Binding
}{
	Prev:   key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←", "anterior")),
	Next:   key.NewBinding(key.WithKeys("right", "n", "tab"), key.WithHelp("→", "próxima")),
	Submit: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "enviar")),
	Quit:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "abandonar")),
	Yes:    key.NewBinding(key.WithKeys("y", "Y", "s", "S"), key.WithHelp("S", "abandonar")),
	No:     key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("N", "continuar")),
}

// Deps are the collaborators of an exam screen.
type Deps struct {
	Course exam.Course
	UserID int

	// Duration overrides the time limit in seconds when positive.
	Duration int

	Source exam.QuestionSource

	// Recorder persists the finished attempt; nil skips persistence.
	Recorder exam.AttemptRecorder

	// Result builds the screen shown once the attempt is scored.
	Result func(*exam.Session) screen.Screen

	Logger *slog.Logger
}

// SessionScreen runs one attempt: it generates questions, counts down the
// clock and scores the attempt on submit or timeout.
type SessionScreen struct {
	deps    Deps
	spinner spinner.Model

	session  *exam.Session
	current  int
	choice   components.Choice
	confirm  bool
	finished bool
	notice   string
	errMsg   string
}

var (
	_ screen.Screen          = (*SessionScreen)(nil)
	_ screen.KeyHintProvider = (*SessionScreen)(nil)
	_ screen.StatusProvider  = (*SessionScreen)(nil)
)

// New returns an exam screen for deps.Course.
func New(deps Deps) *SessionScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &SessionScreen{
		deps:    deps,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(s.spinner.Tick, s.generate())
}

func (s *SessionScreen) Title() string {
	return s.deps.Course.Title
}

// Status shows the remaining time once the attempt has started.
func (s *SessionScreen) Status() string {
	if s.session == nil {
		return ""
	}
	return "⏱ " + layout.FormatClock(s.session.TimeRemaining())
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "esc", Description: "sair"}}
	case s.session == nil:
		return nil
	case s.confirm:
		return hints(keys.Yes, keys.No)
	}
	return append(hints(keys.Prev, keys.Next, keys.Submit, keys.Quit),
		layout.KeyHint{Key: "1-4", Description: "responder"})
}

func hints(bindings ...key.Binding) []layout.KeyHint {
	out := make([]layout.KeyHint, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		out = append(out, layout.KeyHint{Key: h.Key, Description: h.Desc})
	}
	return out
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionsReadyMsg:
		return s.handleQuestions(msg)

	case timerTickMsg:
		return s.handleTick()

	case components.ChoiceMsg:
		return s.handleChoice(msg)

	case spinner.TickMsg:
		if s.session != nil || s.errMsg != "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) generate() tea.Cmd {
	source, title := s.deps.Source, s.deps.Course.Title
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()
		qs, origin, err := source.Questions(ctx, title)
		return questionsReadyMsg{Questions: qs, Origin: origin, Err: err}
	}
}

func (s *SessionScreen) handleQuestions(msg questionsReadyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.deps.Logger.Error("question generation failed", "course", s.deps.Course.Title, "error", msg.Err)
		s.errMsg = "Não foi possível gerar as questões: " + msg.Err.Error()
		return s, nil
	}
	if len(msg.Questions) == 0 {
		s.errMsg = "Nenhuma questão disponível para este curso."
		return s, nil
	}

	opts := []exam.SessionOption{exam.WithOrigin(msg.Origin)}
	if s.deps.Duration > 0 {
		opts = append(opts, exam.WithDuration(s.deps.Duration))
	}
	s.session = exam.NewSession(uuid.NewString(), s.deps.UserID, s.deps.Course, msg.Questions, opts...)
	s.deps.Logger.Info("exam started",
		"attempt", s.session.ID(), "course", s.deps.Course.Title, "origin", msg.Origin)
	s.show(0)
	return s, tickCmd()
}

func (s *SessionScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.session == nil || s.finished {
		return s, nil
	}
	if s.session.Tick() {
		s.deps.Logger.Info("exam timed out", "attempt", s.session.ID())
		return s, s.finish()
	}
	return s, tickCmd()
}

func (s *SessionScreen) handleChoice(msg components.ChoiceMsg) (screen.Screen, tea.Cmd) {
	if s.session == nil || s.finished {
		return s, nil
	}
	q := s.session.Questions()[s.current]
	if err := s.session.SelectAnswer(q.ID, msg.Option); err != nil {
		s.notice = err.Error()
		return s, nil
	}
	s.notice = ""
	if s.current < len(s.session.Questions())-1 {
		s.show(s.current + 1)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.errMsg != "" {
		if key.Matches(msg, keys.Quit) {
			return s, tea.Quit
		}
		return s, nil
	}
	if s.session == nil || s.finished {
		return s, nil
	}

	if s.confirm {
		switch {
		case key.Matches(msg, keys.No):
			s.confirm = false
		case key.Matches(msg, keys.Yes):
			s.deps.Logger.Info("exam abandoned", "attempt", s.session.ID())
			s.finished = true
			return s, tea.Quit
		}
		return s, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		s.confirm = true
		return s, nil
	case key.Matches(msg, keys.Prev):
		s.show(s.current - 1)
		return s, nil
	case key.Matches(msg, keys.Next):
		s.show(s.current + 1)
		return s, nil
	case key.Matches(msg, keys.Submit):
		if _, err := s.session.Submit(); err != nil {
			if errors.Is(err, exam.ErrIncomplete) {
				s.notice = errIncomplete.Error()
			} else {
				s.notice = err.Error()
			}
			return s, nil
		}
		s.deps.Logger.Info("exam submitted", "attempt", s.session.ID())
		return s, s.finish()
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	return s, cmd
}

// show moves to question i, clamped to the question range.
func (s *SessionScreen) show(i int) {
	qs := s.session.Questions()
	i = min(max(i, 0), len(qs)-1)
	s.current = i

	chosen := -1
	if opt, ok := s.session.Snapshot().Answers[qs[i].ID]; ok {
		chosen = opt
	}
	s.choice = components.NewChoice(qs[i].Text, qs[i].Options[:], chosen)
}

// finish records the scored attempt and hands over to the result screen.
func (s *SessionScreen) finish() tea.Cmd {
	s.finished = true
	sess := s.session
	recorder, logger := s.deps.Recorder, s.deps.Logger
	next := s.deps.Result(sess)
	return func() tea.Msg {
		if rec, ok := sess.Record(); ok && recorder != nil {
			if err := recorder.RecordAttempt(context.Background(), rec); err != nil {
				logger.Warn("attempt not recorded", "attempt", rec.ID, "error", err)
			}
		}
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
