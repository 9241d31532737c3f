// Package ui renders gpm's console output: one-line result markers
// (+ added, - removed, = cloned, ~ updated), error lines, tab-aligned tables
// and JSON for --json.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Printer writes styled output to one writer.
type Printer struct {
	out     io.Writer
	printer *message.Printer

	added   lipgloss.Style
	removed lipgloss.Style
	cloned  lipgloss.Style
	updated lipgloss.Style
	failed  lipgloss.Style
	header  lipgloss.Style
	name    lipgloss.Style
	detail  lipgloss.Style
}

// New returns a Printer for w. Colors follow w's terminal capabilities and
// are disabled entirely when color is false.
func New(w io.Writer, color bool) *Printer {
	p := &Printer{out: w, printer: message.NewPrinter(language.English)}
	if !color {
		return p
	}

	r := lipgloss.NewRenderer(w)
	p.added = r.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	p.removed = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	p.cloned = r.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	p.updated = r.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	p.failed = r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	p.header = r.NewStyle().Foreground(lipgloss.Color("10"))
	p.name = r.NewStyle().Foreground(lipgloss.Color("14"))
	p.detail = r.NewStyle().Foreground(lipgloss.Color("13"))
	return p
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.out }

// Added prints "+ <fields>" with fields tab-separated.
func (p *Printer) Added(fields ...string) { p.marker(p.added, "+", fields) }

// Removed prints "- <fields>".
func (p *Printer) Removed(fields ...string) { p.marker(p.removed, "-", fields) }

// Cloned prints "= <fields>".
func (p *Printer) Cloned(fields ...string) { p.marker(p.cloned, "=", fields) }

// Updated prints "~ <fields>".
func (p *Printer) Updated(fields ...string) { p.marker(p.updated, "~", fields) }

func (p *Printer) marker(style lipgloss.Style, symbol string, fields []string) {
	fmt.Fprintf(p.out, "%s %s\n", style.Render(symbol), strings.Join(fields, "  "))
}

// Error prints "error: <err>".
func (p *Printer) Error(err error) {
	fmt.Fprintf(p.out, "%s %v\n", p.failed.Render("error:"), err)
}

// Name styles an entry name.
func (p *Printer) Name(s string) string { return p.name.Render(s) }

// Detail styles secondary information such as a type or an extension.
func (p *Printer) Detail(s string) string { return p.detail.Render(s) }

// Section prints a section heading such as "Shells:".
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.out, p.header.Render(title))
}

// Summary prints a formatted line with locale-aware number formatting.
func (p *Printer) Summary(format string, args ...any) {
	p.printer.Fprintf(p.out, format+"\n", args...)
}

// Table prints rows under headers with tab-aligned columns. Empty cells are
// shown as "-".
func (p *Printer) Table(headers []string, rows [][]string) error {
	w := tabwriter.NewWriter(p.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			if c == "" {
				c = "-"
			}
			cells[i] = c
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// JSON prints v as indented JSON.
func (p *Printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}
