// Package summary shows the score of a finished attempt and what the
// learner can do next.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/certificate"
	"github.com/abhisek/certifica/internal/ui/components"
	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/router"
	"github.com/abhisek/certifica/internal/screen"
	"github.com/abhisek/certifica/internal/ui/layout"
	"github.com/abhisek/certifica/internal/ui/theme"
)

// requestTimeout bounds a certificate request.
const requestTimeout = 30 * time.Second

var keyBack = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "voltar"))

// Deps are the collaborators of the result screen.
type Deps struct {
	Session *exam.Session

	// Consumer spends a credit for the certificate; nil hides the option.
	Consumer exam.CreditConsumer

	// Certificate loads an issued certificate for display; nil shows only
	// the id.
	Certificate func(ctx context.Context, id string) (certificate.View, error)

	// Retry builds a fresh exam screen; nil hides the option.
	Retry func() screen.Screen

	Logger *slog.Logger
}

// certificateMsg reports the outcome of a certificate request.
type certificateMsg struct {
	Result exam.CreditResult
	View   *certificate.View
	Err    error
}

// SummaryScreen shows the result and offers certificate, retry and review.
type SummaryScreen struct {
	deps   Deps
	result exam.Result
	menu   components.Menu

	requesting bool
	issued     *exam.CreditResult
	card       *certificate.View
	notice     string
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
)

// New returns the result screen for a submitted session.
func New(deps Deps) *SummaryScreen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	res, _ := deps.Session.Result()
	s := &SummaryScreen{deps: deps, result: res}
	s.menu = components.NewMenu(s.menuItems())
	return s
}

func (s *SummaryScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem
	if s.result.Passed && s.deps.Consumer != nil {
		items = append(items, components.MenuItem{
			Label:  "Emitir certificado (1 crédito)",
			Action: s.requestCertificate,
		})
	}
	if s.deps.Session.CanRetry() && s.deps.Retry != nil {
		items = append(items, components.MenuItem{
			Label: "Refazer a prova",
			Action: func() tea.Cmd {
				next := s.deps.Retry()
				return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
			},
		})
	}
	items = append(items,
		components.MenuItem{Label: "Revisar questões", Action: func() tea.Cmd {
			review := NewReview(s.deps.Session)
			return func() tea.Msg { return router.PushScreenMsg{Screen: review} }
		}},
		components.MenuItem{Label: "Sair", Action: func() tea.Cmd { return tea.Quit }},
	)
	return items
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Resultado"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "navegar"},
		{Key: "enter", Description: "selecionar"},
		{Key: "ctrl+c", Description: "sair"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case certificateMsg:
		return s.handleCertificate(msg)

	case tea.KeyPressMsg:
		if s.requesting {
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SummaryScreen) requestCertificate() tea.Cmd {
	if s.issued != nil {
		return nil
	}
	s.requesting = true
	s.notice = ""
	sess, consumer, load := s.deps.Session, s.deps.Consumer, s.deps.Certificate
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := sess.RequestCertificate(ctx, consumer)
		if err != nil || !res.Success || load == nil {
			return certificateMsg{Result: res, Err: err}
		}
		v, err := load(ctx, res.CertificateID)
		if err != nil {
			return certificateMsg{Result: res, Err: fmt.Errorf("load certificate: %w", err)}
		}
		return certificateMsg{Result: res, View: &v}
	}
}

func (s *SummaryScreen) handleCertificate(msg certificateMsg) (screen.Screen, tea.Cmd) {
	s.requesting = false
	switch {
	case msg.Err != nil && !msg.Result.Success:
		s.deps.Logger.Error("certificate request failed", "attempt", s.deps.Session.ID(), "error", msg.Err)
		s.notice = "Não foi possível emitir o certificado: " + msg.Err.Error()
		return s, nil
	case !msg.Result.Success:
		redirect := msg.Result.Redirect
		if redirect == "" {
			redirect = "/offer"
		}
		s.notice = fmt.Sprintf("Créditos insuficientes. Adquira um plano em %s para emitir o certificado.", redirect)
		return s, nil
	}

	res := msg.Result
	s.issued = &res
	s.card = msg.View
	if msg.Err != nil {
		s.deps.Logger.Warn("certificate issued but not loaded", "certificate", res.CertificateID, "error", msg.Err)
	}
	s.deps.Logger.Info("certificate issued",
		"attempt", s.deps.Session.ID(), "certificate", res.CertificateID, "remaining", res.Remaining)

	items := make([]components.MenuItem, 0, len(s.menu.Items))
	for _, it := range s.menu.Items {
		if strings.HasPrefix(it.Label, "Emitir certificado") {
			it.Disabled = true
			it.Label = "Certificado emitido"
		}
		items = append(items, it)
	}
	s.menu = components.NewMenu(items)
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	var sections []string

	verdict := theme.Incorrect.Render("Reprovado")
	if s.result.Passed {
		verdict = theme.Correct.Render("Aprovado!")
	}
	sections = append(sections, verdict, "")
	sections = append(sections, theme.Body.Render(
		fmt.Sprintf("Você acertou %d de %d questões", s.result.CorrectCount, s.result.Total)))
	sections = append(sections, components.NewProgressBar("", s.result.CorrectCount, s.result.Total, 40).View())
	if s.result.TimedOut {
		sections = append(sections, theme.Urgent.Render("O tempo acabou e a prova foi enviada automaticamente."))
	}
	if !s.result.Passed {
		sections = append(sections, theme.Hint.Render(
			fmt.Sprintf("São necessários %d acertos para aprovação.", exam.PassThreshold)))
	}
	sections = append(sections, "")

	switch {
	case s.card != nil:
		sections = append(sections, certificate.Card(*s.card), "")
	case s.issued != nil:
		sections = append(sections, theme.Correct.Render("Certificado emitido: "+s.issued.CertificateID), "")
	}
	if s.issued != nil {
		sections = append(sections, theme.Hint.Render(fmt.Sprintf("Créditos restantes: %d", s.issued.Remaining)), "")
	}
	if s.requesting {
		sections = append(sections, theme.Hint.Render("Emitindo certificado..."), "")
	}
	if s.notice != "" {
		sections = append(sections, theme.Urgent.Render(s.notice), "")
	}

	sections = append(sections, s.menu.View())

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, sections...))
}
