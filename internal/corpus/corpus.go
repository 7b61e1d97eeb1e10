// Package corpus discovers problem files and their declared SZS status.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fentz26/szsrun/internal/models"
)

const (
	// DefaultSuffix selects TPTP problem files.
	DefaultSuffix = ".p"

	// StatusMarker introduces the status header line, e.g. "% Status   : Theorem".
	StatusMarker = "% Status"

	// tagField is the 1-indexed whitespace field holding the tag.
	tagField = 4

	maxLineBytes = 1024 * 1024
)

// Build walks root recursively and indexes every file ending in suffix.
// Cases keep the walk's lexical order.
func Build(root, suffix string) (*models.Corpus, error) {
	if suffix == "" {
		suffix = DefaultSuffix
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", root)
	}

	c := &models.Corpus{Root: root}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		c.Cases = append(c.Cases, models.Case{
			Path:        path,
			ExpectedTag: readTag(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus: %w", err)
	}
	return c, nil
}

// readTag opens path and extracts its tag; unreadable files are Unknown.
func readTag(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return models.Unknown
	}
	defer f.Close()
	return ExtractTag(f)
}

// ExtractTag returns the 4th whitespace field of the first line containing
// StatusMarker. It returns Unknown when no line matches, the first matching
// line is too short, or the input cannot be read.
func ExtractTag(r io.Reader) string {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, StatusMarker) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < tagField {
			return models.Unknown
		}
		return fields[tagField-1]
	}
	return models.Unknown
}
