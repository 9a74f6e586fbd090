package config

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// maxTargetLine bounds a single line of the target file.
const maxTargetLine = 1024 * 1024

// LoadTargets reads the target list at path.
//
// Each line is trimmed and blank lines are dropped. No other validation is
// done: a malformed URL is kept and fails later as a transport error. The
// format has no comment syntax.
//
// An unreadable file yields a *SourceLoadError. A readable file without any
// URL yields an empty, non-nil slice.
func LoadTargets(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided target path is intentional
	if err != nil {
		return nil, &SourceLoadError{Path: path, Err: err}
	}
	defer f.Close()

	targets, err := ParseTargets(f)
	if err != nil {
		return nil, &SourceLoadError{Path: path, Err: err}
	}
	return targets, nil
}

// ParseTargets reads newline-delimited targets from r.
func ParseTargets(r io.Reader) ([]string, error) {
	targets := make([]string, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTargetLine)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return targets, nil
}
