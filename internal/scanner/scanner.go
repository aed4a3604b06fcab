// Package scanner finds the Go source files under a directory tree. It
// respects .sdgignore files with gitignore-style patterns and skips test and
// generated files unless asked not to.
package scanner

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo represents a discovered Go file.
type FileInfo struct {
	Path      string // Relative path from root, slash separated
	FullPath  string // Absolute path
	Dir       string // Relative directory, "." for the root
	Size      int64  // File size in bytes
	Generated bool   // File carries a "Code generated" marker
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden       bool     // Skip hidden files and directories (starting with .)
	IncludeTests     bool     // Include _test.go files
	IncludeGenerated bool     // Include generated files
	DefaultExcludes  []string // Directory names always skipped
	Exclude          []string // Extra gitignore-style patterns
	IgnoreFileName   string   // Name of the ignore file (default: .sdgignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".sdgignore",
		DefaultExcludes: []string{
			".git",
			".hg",
			".svn",
			"vendor",
			"testdata",
			"node_modules",
		},
	}
}

// Scanner provides file tree scanning capabilities.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".sdgignore"
	}
	return &Scanner{opts: opts}
}

// Scan walks root and returns its Go files in lexical order. A root that is
// itself a Go file is returned as the only result.
func (s *Scanner) Scan(ctx context.Context, root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}
	st, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		if !strings.HasSuffix(absRoot, ".go") {
			return nil, fmt.Errorf("%s is not a Go file", root)
		}
		fi, err := s.fileInfo(filepath.Dir(absRoot), absRoot, st.Size())
		if err != nil {
			return nil, err
		}
		return []FileInfo{fi}, nil
	}

	matcher := NewMatcher(s.opts.Exclude...)
	var files []FileInfo

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if rel == "." {
			return s.loadIgnoreFile(matcher, path, "")
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if (s.opts.SkipHidden && isHidden(d.Name())) || s.isDefaultExcluded(d.Name()) || matcher.Ignored(rel, true) {
				return filepath.SkipDir
			}
			return s.loadIgnoreFile(matcher, path, rel)
		}

		if s.opts.SkipHidden && isHidden(d.Name()) {
			return nil
		}
		// Symlinks are not followed
		if !d.Type().IsRegular() || !IsGoSource(d.Name(), s.opts.IncludeTests) {
			return nil
		}
		if matcher.Ignored(rel, false) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		fi, err := s.fileInfo(absRoot, path, info.Size())
		if err != nil {
			return nil
		}
		if fi.Generated && !s.opts.IncludeGenerated {
			return nil
		}
		files = append(files, fi)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return files, nil
}

func (s *Scanner) fileInfo(root, path string, size int64) (FileInfo, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return FileInfo{}, err
	}
	rel = filepath.ToSlash(rel)
	generated, err := IsGenerated(path)
	if err != nil {
		return FileInfo{}, err
	}
	dir := filepath.ToSlash(filepath.Dir(rel))
	return FileInfo{
		Path:      rel,
		FullPath:  path,
		Dir:       dir,
		Size:      size,
		Generated: generated,
	}, nil
}

// isHidden checks if a file or directory name indicates it's hidden.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// isDefaultExcluded checks if the name matches default exclusion patterns.
func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// loadIgnoreFile adds the patterns of the ignore file in dir, if any, scoped
// to rel.
func (s *Scanner) loadIgnoreFile(m *Matcher, dir, rel string) error {
	file, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("loading ignore patterns: %w", err)
	}
	defer file.Close()

	var lines []string
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("loading ignore patterns: %w", err)
	}
	m.Add(rel, lines...)
	return nil
}

// Scan is a convenience function that scans a directory with default options.
func Scan(ctx context.Context, root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(ctx, root)
}
