package cli

import (
	"fmt"

	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/charmbracelet/lipgloss"
)

var (
	indexStyle  = lipgloss.NewStyle().Faint(true)
	courseStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#286983", Dark: "#9ccfd8"})
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#907aa9", Dark: "#c4a7e7"})
	professorStyle = lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
)

// renderRecord formats one result line: index, course, section, professor.
func renderRecord(n int, r catalog.Record) string {
	course := r.Prefix
	if r.Number != "" {
		if course != "" {
			course += " "
		}
		course += r.Number
	}

	line := indexStyle.Render(fmt.Sprintf("%2d.", n))
	if course != "" {
		line += " " + courseStyle.Render(course)
	}
	if r.SectionNumber != "" {
		line += " " + sectionStyle.Render("."+r.SectionNumber)
	}
	if r.ProfessorName != "" {
		line += " " + professorStyle.Render(r.ProfessorName)
	}
	return line
}
