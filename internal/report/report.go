// Package report renders a checker.Summary for the terminal.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/JakeFAU/md-check-link/internal/checker"
	"github.com/JakeFAU/md-check-link/internal/link"
)

// Options controls report output.
type Options struct {
	// Quiet prints dead entries only and skips clean documents.
	Quiet bool
	// BasePath is the root document paths are shown relative to.
	BasePath string
}

// Printer writes human readable results. Colors are dropped automatically when
// the writer is not a terminal.
type Printer struct {
	w    io.Writer
	opts Options

	errorStyle lipgloss.Style
	okStyle    lipgloss.Style
	labels     map[link.Status]string
}

// New builds a Printer bound to w.
func New(w io.Writer, opts Options) *Printer {
	r := lipgloss.NewRenderer(w)
	red := r.NewStyle().Foreground(lipgloss.Color("196"))
	green := r.NewStyle().Foreground(lipgloss.Color("42"))
	grey := r.NewStyle().Foreground(lipgloss.Color("242"))
	amber := r.NewStyle().Foreground(lipgloss.Color("214"))
	return &Printer{
		w:          w,
		opts:       opts,
		errorStyle: red,
		okStyle:    green,
		labels: map[link.Status]string{
			link.StatusAlive:   green.Render("✓"),
			link.StatusDead:    red.Render("✖"),
			link.StatusIgnored: grey.Render("~"),
			link.StatusError:   amber.Render("!"),
			link.StatusPending: grey.Render("?"),
		},
	}
}

// Print writes one block per document followed by the totals.
func (p *Printer) Print(sum checker.Summary) error {
	for _, f := range sum.Files {
		if err := p.printFile(f); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(p.w, "\n%d links checked, %d dead links found\n", sum.Total, sum.Dead); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}
	if sum.Errors > 0 && !p.opts.Quiet {
		if _, err := fmt.Fprintf(p.w, "%d links could not be checked\n", sum.Errors); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}
	if _, err := fmt.Fprintf(p.w, "Links checked in %s\n", sum.Elapsed.Round(time.Millisecond)); err != nil {
		return fmt.Errorf("write elapsed: %w", err)
	}
	return nil
}

func (p *Printer) printFile(f checker.FileResult) error {
	name := p.relative(f.Path)
	var header string
	switch {
	case f.Dead > 0:
		header = p.errorStyle.Render(fmt.Sprintf("ERROR: %d dead links found in %s", f.Dead, name))
	case !p.opts.Quiet:
		header = p.okStyle.Render("No dead links found in " + name)
	}
	if header != "" {
		if _, err := fmt.Fprintf(p.w, "\n%s\n", header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, e := range f.Entries {
		status := e.Status()
		if p.opts.Quiet && status != link.StatusDead {
			continue
		}
		if _, err := fmt.Fprintf(p.w, "  [%s] %s\n", p.labels[status], e.Link); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}
	return nil
}

func (p *Printer) relative(path string) string {
	if p.opts.BasePath == "" {
		return path
	}
	rel, err := filepath.Rel(p.opts.BasePath, path)
	if err != nil {
		return path
	}
	return rel
}
