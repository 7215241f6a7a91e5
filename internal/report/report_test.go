package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/md-check-link/internal/checker"
	"github.com/JakeFAU/md-check-link/internal/link"
)

func TestPrintFullReport(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{BasePath: base}).Print(sampleSummary(base)))

	want := "\n" +
		"ERROR: 1 dead links found in README.md\n" +
		"  [✓] https://ok.example\n" +
		"  [✖] missing.md\n" +
		"  [~] https://localhost\n" +
		"  [!] https://timeout.example\n" +
		"\n" +
		"No dead links found in docs/guide.md\n" +
		"  [✓] #intro\n" +
		"\n" +
		"5 links checked, 1 dead links found\n" +
		"1 links could not be checked\n" +
		"Links checked in 1.5s\n"
	require.Equal(t, want, buf.String())
}

func TestPrintQuietShowsDeadOnly(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{BasePath: base, Quiet: true}).Print(sampleSummary(base)))

	want := "\n" +
		"ERROR: 1 dead links found in README.md\n" +
		"  [✖] missing.md\n" +
		"\n" +
		"5 links checked, 1 dead links found\n" +
		"Links checked in 1.5s\n"
	require.Equal(t, want, buf.String())
}

func sampleSummary(base string) checker.Summary {
	readme := []*link.Entry{
		link.NewEntry("https://ok.example", link.KindRemote, link.StatusAlive),
		link.NewEntry("missing.md", link.KindLocalFile, link.StatusDead),
		link.NewEntry("https://localhost", link.KindIgnored, link.StatusIgnored),
		link.NewEntry("https://timeout.example", link.KindRemote, link.StatusError),
	}
	guide := []*link.Entry{
		link.NewEntry("#intro", link.KindAnchor, link.StatusAlive),
	}
	return checker.Summary{
		Files: []checker.FileResult{
			{Path: filepath.Join(base, "README.md"), Entries: readme, Dead: 1},
			{Path: filepath.Join(base, "docs", "guide.md"), Entries: guide},
		},
		Total:   5,
		Alive:   2,
		Dead:    1,
		Ignored: 1,
		Errors:  1,
		Elapsed: 1500 * time.Millisecond,
	}
}

func TestWriteMarkdownListsProblems(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sampleSummary(base), base))

	out := buf.String()
	require.Contains(t, out, "# Link Check Report")
	require.Contains(t, out, "1 dead links found in 1 of 2 files.")
	require.Contains(t, out, "## README.md")
	require.Contains(t, out, "`missing.md`")
	require.Contains(t, out, "`https://timeout.example`")
	require.NotContains(t, out, "## docs/guide.md")
	require.NotContains(t, out, "https://ok.example")
}

func TestWriteMarkdownClean(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, checker.Summary{Total: 2, Alive: 2}, ""))
	require.Contains(t, buf.String(), "No dead links found.")
}
