// Package report writes the user-facing progress lines of a vrt run:
// step notices, info and warning lines, and the fatal error line.
//
// A Reporter is an explicit value. Nothing in this package touches
// global state, so tests can capture output in a buffer.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	glyphOK   = "✔"
	glyphFail = "✘"
	glyphInfo = "i"
	glyphBang = "!"

	// labelWidth is the padded width of a started-step notice.
	labelWidth = 40
)

// Option configures a Reporter.
type Option func(*Reporter)

// WithExit replaces the function Fail calls after writing its line.
func WithExit(exit func(code int)) Option {
	return func(r *Reporter) {
		r.exit = exit
	}
}

// WithColor forces colored output on or off.
func WithColor(enabled bool) Option {
	return func(r *Reporter) {
		r.color = &enabled
	}
}

// WithLive forces in-place overwriting of started notices on or off.
func WithLive(enabled bool) Option {
	return func(r *Reporter) {
		r.live = &enabled
	}
}

// Reporter writes single progress lines to a diagnostic writer.
type Reporter struct {
	out    io.Writer
	exit   func(code int)
	color  *bool
	live   *bool
	styles styles
	// pending is true while a started notice without newline is on screen.
	pending bool
}

type styles struct {
	started lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
	info    lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
}

// New creates a Reporter writing to w. Colors and in-place updates are
// enabled only when w is a terminal.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:  w,
		exit: os.Exit,
	}
	for _, opt := range opts {
		opt(r)
	}

	tty := isTerminal(w)
	if r.live == nil {
		r.live = &tty
	}
	r.styles = newStyles(w, r.color)
	return r
}

// Discard returns a Reporter that writes nowhere and never exits.
func Discard() *Reporter {
	return New(io.Discard, WithExit(func(int) {}))
}

func newStyles(w io.Writer, color *bool) styles {
	renderer := lipgloss.NewRenderer(w)
	if color != nil {
		if *color {
			renderer.SetColorProfile(termenv.ANSI256)
		} else {
			renderer.SetColorProfile(termenv.Ascii)
		}
	}
	return styles{
		started: renderer.NewStyle().Foreground(lipgloss.Color("8")),
		ok:      renderer.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		info:    renderer.NewStyle().Foreground(lipgloss.Color("4")),
		warn:    renderer.NewStyle().Foreground(lipgloss.Color("3")),
		err:     renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Info writes "i message".
func (r *Reporter) Info(message string) {
	r.line(r.styles.info.Render(glyphInfo + " " + message))
}

// Warn writes "! warning: message".
func (r *Reporter) Warn(message string) {
	r.line(r.styles.warn.Render(glyphBang + " warning: " + message))
}

// Warnf is Warn with formatting.
func (r *Reporter) Warnf(format string, args ...any) {
	r.Warn(fmt.Sprintf(format, args...))
}

// Error writes "! ERROR: message" without exiting. Each line of a
// multi-line message is styled on its own so no padding is added.
func (r *Reporter) Error(message string) {
	r.flushPending()
	lines := strings.Split(strings.TrimRight(message, "\n"), "\n")
	lines[0] = glyphBang + " ERROR: " + lines[0]
	for _, l := range lines {
		if l == "" {
			fmt.Fprintln(r.out)
			continue
		}
		fmt.Fprintln(r.out, r.styles.err.Render(l))
	}
}

// Fail writes "! ERROR: message" and exits with status 1.
func (r *Reporter) Fail(message string) {
	r.Error(message)
	r.exit(1)
}

// Run wraps action with started and finished notices. The error of
// action is returned unchanged.
func (r *Reporter) Run(label string, action func() error) error {
	_, err := Step(r, label, func() (struct{}, error) {
		return struct{}{}, action()
	})
	return err
}

// Step wraps a deferred action with started and finished notices and
// returns its result. Step is the only place the action is invoked.
func Step[T any](r *Reporter, label string, action func() (T, error)) (T, error) {
	r.started(label)
	v, err := action()
	if err != nil {
		r.finished(r.styles.fail.Render(glyphFail + " " + label))
		return v, err
	}
	r.finished(r.styles.ok.Render(glyphOK + " " + label))
	return v, nil
}

func (r *Reporter) started(label string) {
	r.flushPending()
	notice := r.styles.started.Render("  " + pad(label, labelWidth))
	if *r.live {
		fmt.Fprint(r.out, notice)
		r.pending = true
		return
	}
	fmt.Fprintln(r.out, notice)
}

func (r *Reporter) finished(notice string) {
	if r.pending {
		fmt.Fprint(r.out, "\r\x1b[K")
		r.pending = false
	}
	fmt.Fprintln(r.out, notice)
}

func (r *Reporter) line(s string) {
	r.flushPending()
	fmt.Fprintln(r.out, s)
}

// flushPending ends a started notice that is still on screen so nested
// output does not overwrite it.
func (r *Reporter) flushPending() {
	if r.pending {
		fmt.Fprintln(r.out)
		r.pending = false
	}
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
