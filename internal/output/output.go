// Package output provides consistent CLI output: status lines, styled
// headings for reader content, and JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Writer provides formatted output for CLI.
type Writer struct {
	out      io.Writer
	useColor bool

	heading lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
}

// New creates a Writer. Styling is enabled only when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return NewWithColor(out, isTerminal(out) && !noColor())
}

// NewWithColor creates a Writer with styling forced on or off.
func NewWithColor(out io.Writer, useColor bool) *Writer {
	w := &Writer{out: out, useColor: useColor}
	if useColor {
		w.heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		w.label = lipgloss.NewStyle().Bold(true)
		w.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
	return w
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func (w *Writer) render(s lipgloss.Style, text string) string {
	if !w.useColor {
		return text
	}
	return s.Render(text)
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Heading prints a bold title line.
func (w *Writer) Heading(title string) {
	_, _ = fmt.Fprintln(w.out, w.render(w.heading, title))
}

// Headingf prints a formatted heading.
func (w *Writer) Headingf(format string, args ...any) {
	w.Heading(fmt.Sprintf(format, args...))
}

// Text prints a block of text followed by a blank line. Empty text is
// skipped.
func (w *Writer) Text(text string) {
	if text == "" {
		return
	}
	_, _ = fmt.Fprintln(w.out, text)
	_, _ = fmt.Fprintln(w.out)
}

// Section prints a labelled block of text.
func (w *Writer) Section(label, text string) {
	if text == "" {
		return
	}
	_, _ = fmt.Fprintln(w.out, w.render(w.label, label))
	w.Text(text)
}

// Verse prints a numbered verse line: the number is dimmed.
func (w *Writer) Verse(number int, text string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.render(w.dim, fmt.Sprintf("%3d", number)), text)
}

// Item prints one entry of a numbered list.
func (w *Writer) Item(index int, text string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.render(w.dim, fmt.Sprintf("%3d.", index)), text)
}

// KeyValue prints an aligned "key: value" line.
func (w *Writer) KeyValue(key, value string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.render(w.label, fmt.Sprintf("%-12s", key+":")), value)
}

// Code prints a code block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Progress prints a progress bar with message.
func (w *Writer) Progress(current, total int, msg string) {
	if total <= 0 {
		return
	}

	pct := float64(current) / float64(total) * 100
	bar := renderProgressBar(current, total, 30)

	_, _ = fmt.Fprintf(w.out, "\r[%s] %.0f%% %s", bar, pct, msg)
	if current >= total {
		_, _ = fmt.Fprintln(w.out)
	}
}

// renderProgressBar creates a text progress bar.
func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return strings.Repeat("░", width)
	}

	filled := int(float64(current) / float64(total) * float64(width))
	filled = max(0, min(filled, width))

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
