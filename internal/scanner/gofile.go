package scanner

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// generatedRe is the marker the go tool recognizes for generated files.
var generatedRe = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// IsGoSource reports whether name is a Go source file. Test files count
// only when includeTests is set.
func IsGoSource(name string, includeTests bool) bool {
	if !strings.HasSuffix(name, ".go") {
		return false
	}
	return includeTests || !strings.HasSuffix(name, "_test.go")
}

// IsGenerated reports whether the file at path carries a generated-code
// marker before its package clause.
func IsGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "package ") {
			return false, nil
		}
		if generatedRe.MatchString(line) {
			return true, nil
		}
	}
	return false, sc.Err()
}
