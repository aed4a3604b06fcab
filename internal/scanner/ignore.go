package scanner

import (
	"path"
	"strings"
)

// IgnorePattern represents a single gitignore-style pattern.
type IgnorePattern struct {
	pattern    string   // Pattern as written
	base       string   // Directory of the ignore file, relative to the scan root
	isNegation bool     // True if pattern starts with !
	dirOnly    bool     // True if pattern ends with /
	anchored   bool     // True if pattern contains a slash before its end
	segments   []string // Pattern split on /
}

// ParseIgnorePattern parses a gitignore-style pattern string.
func ParseIgnorePattern(pattern string) IgnorePattern {
	return parseIgnorePattern(pattern, "")
}

func parseIgnorePattern(pattern, base string) IgnorePattern {
	p := IgnorePattern{pattern: pattern, base: base}

	if strings.HasPrefix(pattern, "!") {
		p.isNegation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.Contains(pattern, "/") {
		p.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	}
	p.segments = strings.Split(pattern, "/")
	return p
}

// IsNegation returns true if this pattern is a negation pattern.
func (p IgnorePattern) IsNegation() bool {
	return p.isNegation
}

// Match reports whether rel (slash separated, relative to the scan root)
// or one of its parent directories matches the pattern. A negation pattern
// matches the same paths as its positive form.
func (p IgnorePattern) Match(rel string, isDir bool) bool {
	if p.base != "" {
		if !strings.HasPrefix(rel, p.base+"/") {
			return false
		}
		rel = strings.TrimPrefix(rel, p.base+"/")
	}

	segs := strings.Split(rel, "/")
	for n := 1; n <= len(segs); n++ {
		dir := n < len(segs) || isDir
		if p.dirOnly && !dir {
			continue
		}
		if p.matchPrefix(segs[:n]) {
			return true
		}
	}
	return false
}

func (p IgnorePattern) matchPrefix(segs []string) bool {
	if p.anchored {
		return matchSegments(p.segments, segs)
	}
	for start := 0; start < len(segs); start++ {
		if matchSegments(p.segments, segs[start:]) {
			return true
		}
	}
	return false
}

// matchSegments matches pattern segments against path segments. ** matches
// zero or more segments; other segments use path.Match.
func matchSegments(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pat[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if ok, err := path.Match(pat[0], segs[0]); err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:])
}

// Matcher applies a list of patterns with gitignore precedence: the last
// matching pattern decides, so a later negation re-includes a path.
type Matcher struct {
	patterns []IgnorePattern
}

// NewMatcher returns a matcher over patterns rooted at the scan root.
func NewMatcher(patterns ...string) *Matcher {
	m := &Matcher{}
	m.Add("", patterns...)
	return m
}

// Add appends patterns read from an ignore file in directory base.
func (m *Matcher) Add(base string, patterns ...string) {
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, parseIgnorePattern(line, base))
	}
}

// Ignored reports whether rel is excluded.
func (m *Matcher) Ignored(rel string, isDir bool) bool {
	ignored := false
	for _, p := range m.patterns {
		if p.Match(rel, isDir) {
			ignored = !p.isNegation
		}
	}
	return ignored
}
