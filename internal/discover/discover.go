// Package discover expands command line inputs into Markdown file paths.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInputNotFound is returned when a named file or folder does not exist.
var ErrInputNotFound = errors.New("file or folder not found")

// MarkdownExt is the extension collected from folders.
const MarkdownExt = ".md"

// Files returns the Markdown files named by inputs in argument order. Files
// are taken as given; folders are walked recursively in lexical order for
// *.md files. Symlinked folders are not followed. A path reached twice is
// returned once.
func Files(inputs []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrInputNotFound, in)
			}
			return nil, fmt.Errorf("stat %s: %w", in, err)
		}
		if !info.IsDir() {
			add(in)
			continue
		}
		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("walk %s: %w", path, err)
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), MarkdownExt) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped in the walk callback
		}
	}
	return out, nil
}
