package home

import (
	"charm.land/lipgloss/v2"

	"github.com/qpath/qpath/internal/ui/theme"
)

const bannerArt = `
  ██████╗       ██████╗  █████╗ ████████╗██╗  ██╗
 ██╔═══██╗      ██╔══██╗██╔══██╗╚══██╔══╝██║  ██║
 ██║   ██║█████╗██████╔╝███████║   ██║   ███████║
 ██║▄▄ ██║╚════╝██╔═══╝ ██╔══██║   ██║   ██╔══██║
 ╚██████╔╝      ██║     ██║  ██║   ██║   ██║  ██║
  ╚══▀▀═╝       ╚═╝     ╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝`

const bannerCompact = "Q - P A T H"

// renderBanner returns the banner, or a one-line version for terminals
// narrower than the art.
func renderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 54 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
