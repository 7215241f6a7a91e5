package link

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultIndexDocument is appended by docsify rules to links ending in '/'.
	DefaultIndexDocument = "README.md"
	// DefaultDocumentExt is appended by docsify rules to extensionless segments.
	DefaultDocumentExt = ".md"

	docsifyIDMarker = "?id="
)

// RewriteRule substitutes the first match of Pattern with Replacement.
type RewriteRule struct {
	Pattern     *regexp.Regexp
	Replacement string
	// Docsify enables path completion after substitution.
	Docsify bool
}

// Rules groups the rewrite and ignore rules applied before classification.
type Rules struct {
	Rewrites []RewriteRule
	Ignores  []*regexp.Regexp
}

// NewRewriteRule compiles a rewrite rule. Replacement templates accept Go
// ($1, ${name}) and JavaScript ($&) group references.
func NewRewriteRule(pattern, replacement string, docsify bool) (RewriteRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RewriteRule{}, fmt.Errorf("compile replacement pattern %q: %w", pattern, err)
	}
	return RewriteRule{
		Pattern:     re,
		Replacement: strings.ReplaceAll(replacement, "$&", "${0}"),
		Docsify:     docsify,
	}, nil
}

// NewIgnoreRule compiles an ignore pattern.
func NewIgnoreRule(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile ignore pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Rewrite runs every rewrite rule in declared order.
func (r Rules) Rewrite(link string) string {
	for _, rule := range r.Rewrites {
		link = rule.Apply(link)
	}
	return link
}

// Ignored reports whether any ignore pattern matches link.
func (r Rules) Ignored(link string) bool {
	for _, re := range r.Ignores {
		if re != nil && re.MatchString(link) {
			return true
		}
	}
	return false
}

// Apply rewrites link when the rule matches and returns it unchanged otherwise.
func (rule RewriteRule) Apply(link string) string {
	if rule.Pattern == nil {
		return link
	}
	loc := rule.Pattern.FindStringSubmatchIndex(link)
	if loc == nil {
		return link
	}
	replaced := rule.Pattern.ExpandString(nil, rule.Replacement, link, loc)
	out := link[:loc[0]] + string(replaced) + link[loc[1]:]
	if rule.Docsify {
		out = completeDocsifyPath(out)
	}
	return out
}

// completeDocsifyPath maps docsify-style routes onto Markdown files:
// "guide/" -> "guide/README.md", "guide/setup" -> "guide/setup.md" and
// "guide/setup?id=install" -> "guide/setup.md#install".
func completeDocsifyPath(link string) string {
	dir, last := "", link
	if i := strings.LastIndex(link, "/"); i >= 0 {
		dir, last = link[:i+1], link[i+1:]
	}
	filename, id, hasID := strings.Cut(last, docsifyIDMarker)
	if cut, _, found := strings.Cut(id, docsifyIDMarker); found {
		id = cut
	}
	switch {
	case strings.HasSuffix(link, "/") || filename == "":
		filename = DefaultIndexDocument
	case !strings.Contains(filename, "."):
		filename += DefaultDocumentExt
	}
	out := dir + filename
	if hasID {
		out += "#" + id
	}
	return out
}
