package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/ui/components"
	"github.com/abhisek/certifica/internal/ui/layout"
	"github.com/abhisek/certifica/internal/ui/theme"
)

// urgentSeconds is when the clock turns orange.
const urgentSeconds = 5 * 60

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Incorrect.Render(s.errMsg)+"\n\n"+theme.Hint.Render("esc para sair"))
	case s.session == nil:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			s.spinner.View()+" "+theme.Body.Render("Gerando questões para "+s.deps.Course.Title+"..."))
	case s.confirm:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Card.Render(
			theme.Body.Bold(true).Render("Abandonar a prova?")+"\n\n"+
				theme.Hint.Render("As respostas serão descartadas.")))
	}
	return s.renderQuestion(width)
}

func (s *SessionScreen) renderQuestion(width int) string {
	snap := s.session.Snapshot()
	inner := max(min(width-4, 100), 20)

	var b strings.Builder

	clock := theme.Body
	if snap.TimeRemaining <= urgentSeconds {
		clock = theme.Urgent
	}
	info := theme.Selected.Render(fmt.Sprintf("  Questão %d de %d", s.current+1, len(snap.Questions)))
	right := clock.Render("Tempo restante " + layout.FormatClock(snap.TimeRemaining))
	gap := max(inner-lipgloss.Width(info)-lipgloss.Width(right), 1)
	b.WriteString(info + strings.Repeat(" ", gap) + right)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", inner)))
	b.WriteString("\n\n")

	b.WriteString(s.choice.View(inner))
	b.WriteString("\n")

	b.WriteString(components.NewProgressBar("Respondidas", len(snap.Answers), len(snap.Questions), inner).View())
	b.WriteString("\n")
	b.WriteString(s.renderDots(snap.Answers))
	b.WriteString("\n")

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Urgent.Render(s.notice))
		b.WriteString("\n")
	} else if snap.CanSubmit {
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render("Todas respondidas. Pressione s para enviar."))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

// renderDots shows one marker per question: answered, unanswered and the
// current one.
func (s *SessionScreen) renderDots(answers map[int]int) string {
	qs := s.session.Questions()
	parts := make([]string, len(qs))
	for i, q := range qs {
		mark := "○"
		if _, ok := answers[q.ID]; ok {
			mark = "●"
		}
		switch {
		case i == s.current:
			parts[i] = theme.Selected.Render("[" + mark + "]")
		case mark == "●":
			parts[i] = lipgloss.NewStyle().Foreground(theme.Secondary).Render(" " + mark + " ")
		default:
			parts[i] = theme.Hint.Render(" " + mark + " ")
		}
	}
	return strings.Join(parts, "")
}
