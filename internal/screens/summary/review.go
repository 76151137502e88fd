package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/exam"
	"github.com/abhisek/certifica/internal/screen"
	"github.com/abhisek/certifica/internal/ui/components"
	"github.com/abhisek/certifica/internal/ui/layout"
	"github.com/abhisek/certifica/internal/ui/theme"
)

// ReviewScreen lists every question of a submitted attempt with the chosen
// and the correct option. It sits above the result screen; esc goes back.
type ReviewScreen struct {
	snap exam.Snapshot
}

var (
	_ screen.Screen          = (*ReviewScreen)(nil)
	_ screen.KeyHintProvider = (*ReviewScreen)(nil)
)

// NewReview captures the attempt as it is now.
func NewReview(s *exam.Session) *ReviewScreen {
	return &ReviewScreen{snap: s.Snapshot()}
}

func (r *ReviewScreen) Init() tea.Cmd { return nil }

func (r *ReviewScreen) Title() string { return "Revisão" }

func (r *ReviewScreen) KeyHints() []layout.KeyHint {
	h := keyBack.Help()
	return []layout.KeyHint{{Key: h.Key, Description: h.Desc}}
}

func (r *ReviewScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) {
	return r, nil
}

func (r *ReviewScreen) View(width, _ int) string {
	inner := max(min(width-8, 100), 20)

	var b strings.Builder
	for i, q := range r.snap.Questions {
		chosen, answered := r.snap.Answers[q.ID]
		correct := -1
		if q.Correct != nil {
			correct = *q.Correct
		}

		mark := theme.Incorrect.Render("✗")
		if answered && chosen == correct {
			mark = theme.Correct.Render("✓")
		}
		fmt.Fprintf(&b, "%s %s\n", mark, theme.Body.Bold(true).Width(inner).Render(fmt.Sprintf("%d. %s", i+1, q.Text)))

		yours := "sem resposta"
		if answered {
			yours = components.OptionLabels[chosen] + ") " + q.Options[chosen]
		}
		b.WriteString(theme.Hint.Render("   Sua resposta: " + yours))
		b.WriteString("\n")
		if correct >= 0 && (!answered || chosen != correct) {
			b.WriteString(theme.Correct.Render("   Correta: " + components.OptionLabels[correct] + ") " + q.Options[correct]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}
