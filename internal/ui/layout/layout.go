// Package layout frames the active screen between a title bar and a
// key-hint bar.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/ui/theme"
)

// Smallest terminal the exam renders in.
const (
	MinWidth  = 80
	MinHeight = 24
)

const brand = "Certifica"

// KeyHint is one "key action" pair in the bottom bar.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether a width x height terminal is below the minimum.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the learner to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal muito pequeno.\n\nRedimensione para pelo menos %d x %d\n\nAtual: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Render(msg)
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// RenderHeader puts the brand on the left, title centred and status (the
// exam clock, when running) on the right.
func RenderHeader(title, status string, width int) string {
	left := "  " + lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(brand)
	mid := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)

	inner := max(width-4, 0)
	lw, mw, rw := lipgloss.Width(left), lipgloss.Width(mid), lipgloss.Width(right)
	gapL := max((inner-mw)/2-lw, 1)
	gapR := max(inner-lw-gapL-mw-rw, 1)

	return bar(width).Render(left + strings.Repeat(" ", gapL) + mid + strings.Repeat(" ", gapR) + right)
}

// RenderFooter lists hints left to right.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)
	var b strings.Builder
	b.WriteString("  ")
	for i, h := range hints {
		if i > 0 {
			b.WriteString("   ")
		}
		b.WriteString(key.Render(h.Key) + " " + desc.Render(h.Description))
	}
	return bar(width).Render(b.String())
}

// RenderFrame stacks header, content and footer, padding content to fill
// the rows the bars leave.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rows).Render(content)
	return strings.Join([]string{header, body, footer}, "\n")
}

// FormatClock renders seconds as MM:SS; negative values show 00:00.
func FormatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
