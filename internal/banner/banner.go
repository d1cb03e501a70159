package banner

import (
	"github.com/charmbracelet/lipgloss"
)

var colorBanner = lipgloss.Color("#FFAF00")

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(colorBanner).
		Bold(true)

	ascii := `
   _______  ______________ ____
  / ___/ / / / ___/ __ '/ / _ \
 (__  ) /_/ / /  / /_/ /  __/
/____/\__,_/_/   \__, /\___/
                /____/         `

	return "\n" + style.Render(ascii) + "\n"
}
