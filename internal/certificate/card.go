package certificate

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/ui/theme"
)

// Card renders a compact terminal version of the certificate.
func Card(v View) string {
	v = v.WithDefaults()
	registro, livro, folha := Registry(v.Code)

	var b strings.Builder
	b.WriteString(theme.Title.Render("CERTIFICADO"))
	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Render("conferido a"))
	b.WriteString("\n")
	b.WriteString(theme.Selected.Render(v.LearnerName))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("CPF " + v.CPF))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(v.CourseTitle))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d horas", v.DurationHours)))
	b.WriteString("\n\n")
	if d := v.IssueDate(); d != "" {
		b.WriteString(theme.Body.Render("Emissão: " + d))
		b.WriteString("\n")
	}
	b.WriteString(theme.Hint.Render(fmt.Sprintf("Registro %s · Livro %s · Folha %s", registro, livro, folha)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("Código " + v.Code))

	return theme.Card.Render(b.String())
}
