package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/simasch/pr-finder/pkg/finder"
)

// Styles is the injected rendering configuration. Both the report and the
// picker take a Styles value instead of reaching for package-level constants,
// so color can be switched off wholesale.
type Styles struct {
	Header   lipgloss.Style
	Dim      lipgloss.Style
	Bold     lipgloss.Style
	Err      lipgloss.Style
	OK       lipgloss.Style
	Warn     lipgloss.Style
	Draft    lipgloss.Style
	Help     lipgloss.Style
	Label    lipgloss.Style
	Modal    lipgloss.Style
	category [4]lipgloss.Style
	tags     [4]string
}

// NewStyles builds the style set. With color disabled every style renders
// plain text; layout styles (padding, borders) are kept either way.
func NewStyles(color bool) Styles {
	s := Styles{
		Help: lipgloss.NewStyle().Faint(true).PaddingLeft(2),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 3).
			Width(58),
		tags: [4]string{"auth", "review", "assign", "push"},
	}

	if !color {
		plain := lipgloss.NewStyle()
		s.Header, s.Dim, s.Bold, s.Err, s.OK, s.Warn, s.Draft, s.Label = plain, plain, plain, plain, plain, plain, plain, plain
		s.category = [4]lipgloss.Style{plain, plain, plain, plain}
		return s
	}

	s.Header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	s.Dim = lipgloss.NewStyle().Faint(true)
	s.Bold = lipgloss.NewStyle().Bold(true)
	s.Err = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	s.OK = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	s.Warn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	s.Draft = lipgloss.NewStyle().Faint(true).Italic(true)
	s.Label = lipgloss.NewStyle().Faint(true)
	s.Modal = s.Modal.BorderForeground(lipgloss.Color("205"))
	s.category = [4]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("2")),   // authored: green
		lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // review requested: orange
		lipgloss.NewStyle().Foreground(lipgloss.Color("4")),   // assigned: blue
		lipgloss.NewStyle().Foreground(lipgloss.Color("5")),   // repo access: magenta
	}
	return s
}

// CategoryTag returns the short colored tag for a category, e.g. "[review]".
func (s Styles) CategoryTag(c finder.Category) string {
	return s.category[c].Render("[" + s.tags[c] + "]")
}
