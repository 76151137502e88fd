package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/certifica/internal/ui/theme"
)

const bannerArt = `
  ██████╗███████╗██████╗ ████████╗██╗███████╗██╗ ██████╗ █████╗
 ██╔════╝██╔════╝██╔══██╗╚══██╔══╝██║██╔════╝██║██╔════╝██╔══██╗
 ██║     █████╗  ██████╔╝   ██║   ██║█████╗  ██║██║     ███████║
 ██║     ██╔══╝  ██╔══██╗   ██║   ██║██╔══╝  ██║██║     ██╔══██║
 ╚██████╗███████╗██║  ██║   ██║   ██║██║     ██║╚██████╗██║  ██║
  ╚═════╝╚══════╝╚═╝  ╚═╝   ╚═╝   ╚═╝╚═╝     ╚═╝ ╚═════╝╚═╝  ╚═╝`

const bannerCompact = "C E R T I F I C A"

// bannerMinWidth is the narrowest terminal that fits bannerArt.
const bannerMinWidth = 68

// RenderBanner returns the product banner, or a one-line version on narrow
// terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
