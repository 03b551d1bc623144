// Package output renders command results for terminals and pipelines.
//
// A Renderer carries the destination writers and the requested mode. Mode
// "auto" resolves at render time: an interactive terminal gets styled text
// and tables, a pipe or redirect gets JSON so command output stays
// scriptable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

const (
	// ModeAuto renders tables on a terminal and JSON everywhere else.
	ModeAuto Mode = "auto"
	// ModeTable renders styled text and tables for humans.
	ModeTable Mode = "table"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
	// ModeMarkdown renders markdown suitable for reports and PR comments.
	ModeMarkdown Mode = "markdown"
)

// Modes lists the accepted --output values.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeTable), string(ModeJSON), string(ModeMarkdown)}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer over the given writers. Styling follows
// the destination: colors degrade to the terminal's capabilities and
// disappear entirely for pipes and files.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	lr := lipgloss.NewRenderer(out, termenv.WithColorCache(true))
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: NewStyles(lr),
	}
}

// EffectiveMode resolves ModeAuto against the output destination.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeTable
	}
	return ModeJSON
}

// Writer returns the destination for primary output.
func (r *Renderer) Writer() io.Writer { return r.out }

// Styles returns the renderer's style palette.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line of primary output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted primary output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Header writes a styled section header. Level 1 is the document title,
// deeper levels are section headings.
func (r *Renderer) Header(level int, text string) {
	style := r.styles.Header1
	if level > 1 {
		style = r.styles.Header2
	}
	r.Println(style.Render(text))
}

// Success writes a check-marked success line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.StatusSuccess.String() + " " + msg)
}

// Warning writes a highlighted warning line.
func (r *Renderer) Warning(msg string) {
	r.Println(r.styles.Warning.Render("! " + msg))
}

// Muted writes a de-emphasized line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// Error writes an error line to the error stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error: "+msg))
}

// StatusLine writes a per-item progress line, like one imported file.
func (r *Renderer) StatusLine(name, status, detail string) {
	icon := r.styles.StatusSuccess.String()
	switch status {
	case "failed", "error":
		icon = r.styles.StatusFailed.String()
	case "skipped":
		icon = r.styles.Muted.Render("-")
	}
	line := "  " + icon + " " + name
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// FormatHeader returns a markdown header line.
func FormatHeader(level int, title string) string {
	return strings.Repeat("#", level) + " " + title
}

// FormatKeyValue returns a markdown list line for a labeled value.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}
