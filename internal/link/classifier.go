package link

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultStatCacheSize = 4096

// PathChecker answers whether a filesystem path exists.
type PathChecker interface {
	Exists(path string) bool
}

// StatCache is a PathChecker that remembers os.Stat results in an LRU cache.
type StatCache struct {
	cache *lru.Cache[string, bool]
}

// NewStatCache builds a StatCache holding up to size paths.
func NewStatCache(size int) (*StatCache, error) {
	if size <= 0 {
		size = defaultStatCacheSize
	}
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("build stat cache: %w", err)
	}
	return &StatCache{cache: cache}, nil
}

// Exists reports whether path exists, consulting the cache first.
func (c *StatCache) Exists(path string) bool {
	if ok, hit := c.cache.Get(path); hit {
		return ok
	}
	_, err := os.Stat(path)
	ok := err == nil
	c.cache.Add(path, ok)
	return ok
}

// Classifier turns raw link strings into entries.
type Classifier struct {
	rules    Rules
	basePath string
	paths    PathChecker
}

// NewClassifier builds a Classifier. Absolute local links resolve against
// basePath. A nil PathChecker falls back to an uncached os.Stat.
func NewClassifier(rules Rules, basePath string, paths PathChecker) *Classifier {
	if paths == nil {
		paths = osPathChecker{}
	}
	return &Classifier{rules: rules, basePath: basePath, paths: paths}
}

// Classify rewrites raw and assigns it a kind and, where possible, a verdict.
// docPath is the absolute path of the enclosing document and anchors its
// anchor set. Remote links and local links with a fragment come back pending.
func (c *Classifier) Classify(raw, docPath string, anchors AnchorSet) *Entry {
	l := c.rules.Rewrite(raw)

	switch {
	case c.rules.Ignored(l):
		return NewEntry(l, KindIgnored, StatusIgnored)
	case strings.HasPrefix(l, "#"):
		return NewEntry(l, KindAnchor, verdict(hasAnchor(anchors, l[1:])))
	case hasPrefixFold(l, mailtoScheme):
		return NewEntry(l, KindMailto, verdict(ValidMailto(l)))
	case IsRemote(l):
		return NewEntry(l, KindRemote, StatusPending)
	}

	pathPart, fragment, hasFragment := strings.Cut(l, "#")
	target := c.resolveTarget(pathPart, docPath)
	if hasFragment {
		e := NewEntry(l, KindLocalAnchor, StatusPending)
		e.Target = target
		e.Anchor = fragment
		return e
	}
	e := NewEntry(l, KindLocalFile, verdict(c.paths.Exists(target)))
	e.Target = target
	return e
}

func (c *Classifier) resolveTarget(pathPart, docPath string) string {
	pathPart, _, _ = strings.Cut(pathPart, "?")
	if decoded, err := url.PathUnescape(pathPart); err == nil {
		pathPart = decoded
	}
	local := filepath.FromSlash(pathPart)
	if strings.HasPrefix(pathPart, "/") {
		return filepath.Join(c.basePath, local)
	}
	return filepath.Join(filepath.Dir(docPath), local)
}

// IsRemote reports whether l uses the http or https scheme.
func IsRemote(l string) bool {
	return hasPrefixFold(l, "http://") || hasPrefixFold(l, "https://")
}

// ResolveAnchor returns the verdict for fragment against a target anchor set.
func ResolveAnchor(anchors AnchorSet, fragment string) Status {
	return verdict(hasAnchor(anchors, fragment))
}

func hasAnchor(anchors AnchorSet, fragment string) bool {
	if anchors.Has(fragment) {
		return true
	}
	if decoded, err := url.PathUnescape(fragment); err == nil && decoded != fragment {
		return anchors.Has(decoded)
	}
	return false
}

func verdict(ok bool) Status {
	if ok {
		return StatusAlive
	}
	return StatusDead
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

type osPathChecker struct{}

func (osPathChecker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
