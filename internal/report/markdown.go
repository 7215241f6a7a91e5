package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/JakeFAU/md-check-link/internal/checker"
	"github.com/JakeFAU/md-check-link/internal/link"
)

// WriteMarkdown writes a Markdown summary of sum, suitable for CI job
// summaries. Only dead and unchecked entries are listed per document.
func WriteMarkdown(w io.Writer, sum checker.Summary, basePath string) error {
	md := markdown.NewMarkdown(w)
	md.H1("Link Check Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Verdict", "Count"},
		Rows: [][]string{
			{"✓ Alive", strconv.Itoa(sum.Alive)},
			{"✖ Dead", strconv.Itoa(sum.Dead)},
			{"~ Ignored", strconv.Itoa(sum.Ignored)},
			{"! Error", strconv.Itoa(sum.Errors)},
			{"**Total**", "**" + strconv.Itoa(sum.Total) + "**"},
		},
	})
	md.PlainText("")

	switch {
	case sum.Dead > 0:
		md.Cautionf("%d dead links found in %d of %d files.", sum.Dead, failingFiles(sum), len(sum.Files))
	case sum.Errors > 0:
		md.Warningf("No dead links, but %d links could not be checked.", sum.Errors)
	default:
		md.Tip("No dead links found.")
	}
	md.PlainText("")

	p := &Printer{opts: Options{BasePath: basePath}}
	for _, f := range sum.Files {
		rows := problemRows(f)
		if len(rows) == 0 {
			continue
		}
		md.H2(p.relative(f.Path))
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"Status", "Link"}, Rows: rows})
		md.PlainText("")
	}
	md.PlainTextf("Run `%s` checked %d links in %s.", sum.RunID, sum.Total, sum.Elapsed.Round(time.Millisecond))

	if err := md.Build(); err != nil {
		return fmt.Errorf("build markdown report: %w", err)
	}
	return nil
}

func failingFiles(sum checker.Summary) int {
	n := 0
	for _, f := range sum.Files {
		if f.Dead > 0 {
			n++
		}
	}
	return n
}

func problemRows(f checker.FileResult) [][]string {
	var rows [][]string
	for _, e := range f.Entries {
		switch e.Status() {
		case link.StatusDead:
			rows = append(rows, []string{"✖ dead", "`" + escapeCell(e.Link) + "`"})
		case link.StatusError:
			rows = append(rows, []string{"! error", "`" + escapeCell(e.Link) + "`"})
		}
	}
	return rows
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
