package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Colour palette shared by the commands.
var (
	colorAccent = lipgloss.Color("#7D56F4")
	colorMuted  = lipgloss.Color("#626262")
	colorWarn   = lipgloss.Color("#FFA500")
	colorOK     = lipgloss.Color("#04B575")
	colorError  = lipgloss.Color("#FF5F87")
)

// styles renders terminal output. Styling is disabled when the writer is
// not a terminal so piped output stays plain.
type styles struct {
	enabled bool
	title   lipgloss.Style
	muted   lipgloss.Style
	warn    lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	return styles{
		enabled: isTerminal(w),
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		muted:   lipgloss.NewStyle().Foreground(colorMuted),
		warn:    lipgloss.NewStyle().Foreground(colorWarn),
		ok:      lipgloss.NewStyle().Foreground(colorOK),
		err:     lipgloss.NewStyle().Foreground(colorError),
	}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

func (s styles) Title(text string) string { return s.render(s.title, text) }
func (s styles) Muted(text string) string { return s.render(s.muted, text) }
func (s styles) Warn(text string) string  { return s.render(s.warn, text) }
func (s styles) OK(text string) string    { return s.render(s.ok, text) }
func (s styles) Err(text string) string   { return s.render(s.err, text) }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
