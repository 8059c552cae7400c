// Package console implements ui.Reporter for the terminal. Status lines are
// styled with lipgloss and model commentary is rendered with glamour when
// standard output is a terminal; otherwise plain text is written.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	// Packages
	glamour "github.com/charmbracelet/glamour"
	lipgloss "github.com/charmbracelet/lipgloss"
	schema "github.com/dragon84867/qwen-code-examples/pkg/schema"
	ui "github.com/dragon84867/qwen-code-examples/pkg/ui"
	table "github.com/dragon84867/qwen-code-examples/pkg/ui/table"
	termenv "github.com/muesli/termenv"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Console struct {
	stdout   io.Writer
	stderr   io.Writer
	tty      bool
	width    int
	renderer *glamour.TermRenderer

	// true while a line of dots or a progress line is open on stdout
	open bool
}

var _ ui.Reporter = (*Console)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultWidth = 80
)

var (
	infoStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")) // yellow
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))  // red
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a console writing status to stdout and failures to stderr.
// Styling is only applied when stdout is a terminal.
func New(stdout, stderr io.Writer) *Console {
	c := &Console{stdout: stdout, stderr: stderr, width: defaultWidth}
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.tty = true
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			c.width = w
		}
		c.renderer = newRenderer(c.width)
	}
	return c
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (c *Console) Info(format string, args ...any) {
	c.closeLine()
	fmt.Fprintln(c.stdout, c.style(infoStyle, fmt.Sprintf(format, args...)))
}

func (c *Console) Warn(format string, args ...any) {
	c.closeLine()
	fmt.Fprintln(c.stdout, c.style(warnStyle, "Warning: "+fmt.Sprintf(format, args...)))
}

func (c *Console) Error(format string, args ...any) {
	c.closeLine()
	fmt.Fprintln(c.stderr, c.style(errorStyle, "Error: "+fmt.Sprintf(format, args...)))
}

func (c *Console) Tick() {
	c.open = true
	fmt.Fprint(c.stdout, ".")
}

func (c *Console) Progress(bytes int64) {
	c.open = true
	fmt.Fprint(c.stdout, "\r"+c.style(dimStyle, "Downloaded: "+schema.Megabytes(bytes)))
}

func (c *Console) Markdown(text string) {
	c.closeLine()
	if text = strings.TrimSpace(text); text == "" {
		return
	}
	if c.renderer != nil {
		if out, err := c.renderer.Render(text); err == nil {
			fmt.Fprintln(c.stdout, strings.Trim(out, "\n"))
			return
		}
	}
	fmt.Fprintln(c.stdout, text)
}

func (c *Console) Done(files ui.Files) {
	c.closeLine()
	if len(files) > 0 {
		if c.tty {
			fmt.Fprintln(c.stdout, table.Render(files, c.width))
		} else {
			fmt.Fprintln(c.stdout, table.RenderMarkdown(files))
		}
	}
	fmt.Fprintln(c.stdout, c.style(infoStyle, "Done!"))
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// closeLine ends a line of dots or a progress line before other output
func (c *Console) closeLine() {
	if c.open {
		fmt.Fprintln(c.stdout)
		c.open = false
	}
}

func (c *Console) style(s lipgloss.Style, text string) string {
	if !c.tty {
		return text
	}
	return s.Render(text)
}

// newRenderer picks a glamour style matching the terminal background
func newRenderer(width int) *glamour.TermRenderer {
	stylePath := "dark"
	if !termenv.HasDarkBackground() {
		stylePath = "light"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(stylePath),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}
