package output

import "github.com/charmbracelet/lipgloss"

// Styles is the shared style palette of the CLI.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Status glyphs carry their own string so callers can print them
	// directly via String().
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds the palette on the given lipgloss renderer. Colors come
// from the terminal's ANSI palette so output respects user themes.
func NewStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1:       r.NewStyle().Bold(true).Underline(true),
		Header2:       r.NewStyle().Bold(true),
		Bold:          r.NewStyle().Bold(true),
		Muted:         r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:       r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning:       r.NewStyle().Foreground(lipgloss.Color("3")),
		Error:         r.NewStyle().Foreground(lipgloss.Color("1")),
		Info:          r.NewStyle().Foreground(lipgloss.Color("4")),
		StatusSuccess: r.NewStyle().Foreground(lipgloss.Color("2")).SetString("✓"),
		StatusFailed:  r.NewStyle().Foreground(lipgloss.Color("1")).SetString("✗"),
	}
}
