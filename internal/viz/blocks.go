package viz

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const upperHalf = "▀"

// Blocks draws img with one terminal cell per two vertically adjacent
// pixels. An odd last row is paired with black.
func Blocks(img *image.RGBA) string {
	b := img.Bounds()
	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(top.R, top.G, top.B)))
			bg := "#000000"
			if y+1 < b.Max.Y {
				bot := img.RGBAAt(x, y+1)
				bg = hexColor(bot.R, bot.G, bot.B)
			}
			out.WriteString(style.Background(lipgloss.Color(bg)).Render(upperHalf))
		}
		out.WriteByte('\n')
	}
	return out.String()
}
