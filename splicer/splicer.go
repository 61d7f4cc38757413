// Package splicer rewrites an HTML document by cutting it at a marker line
// and appending a drafted fragment plus the closing footer.
package splicer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Footer closes the document after the appended fragment.
const Footer = "\n</body>\n</html>"

var ErrMarkerNotFound = errors.New("start marker not found")

type Options struct {
	Source      string
	Draft       string
	Destination string
	Marker      string
	// FallbackLine is the 1-based line to cut at when Marker is absent.
	FallbackLine int
	Strict       bool
	Backup       bool
}

// SplitPoint is the 0-based index of the first line dropped from the source.
type SplitPoint struct {
	Index int
	Found bool
}

// Line is the 1-based line number of the split.
func (p SplitPoint) Line() int {
	return p.Index + 1
}

// ReadLines splits r into lines, each keeping its terminator.
func ReadLines(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// FindSplitPoint returns the first line containing marker, or the
// fallback line when no line does.
func FindSplitPoint(lines []string, marker string, fallbackLine int) SplitPoint {
	for i, line := range lines {
		if strings.Contains(line, marker) {
			return SplitPoint{Index: i, Found: true}
		}
	}
	return SplitPoint{Index: fallbackLine - 1}
}

// Assemble joins the lines before split, the draft and the footer. A split
// past the end keeps every line.
func Assemble(lines []string, split SplitPoint, draft string) string {
	n := split.Index
	if n > len(lines) {
		n = len(lines)
	}
	if n < 0 {
		n = 0
	}

	var b strings.Builder
	for _, line := range lines[:n] {
		b.WriteString(line)
	}
	b.WriteString(draft)
	b.WriteString(Footer)
	return b.String()
}

type Splicer struct {
	opts   Options
	out    io.Writer
	logger *slog.Logger
}

// New returns a Splicer that reports progress to out.
func New(opts Options, out io.Writer, logger *slog.Logger) *Splicer {
	if opts.Destination == "" {
		opts.Destination = opts.Source
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Splicer{opts: opts, out: out, logger: logger}
}

func (s *Splicer) Run(ctx context.Context) error {
	// an empty marker matches every line and would cut the whole document
	if s.opts.Marker == "" {
		return errors.New("marker must not be empty")
	}
	if s.opts.FallbackLine < 1 {
		return fmt.Errorf("fallback line must be at least 1, got %d", s.opts.FallbackLine)
	}

	fmt.Fprintf(s.out, "Updating %s...\n", s.opts.Destination)

	lines, err := readLinesFile(s.opts.Source)
	if err != nil {
		return err
	}
	s.logger.Debug("read source", "path", s.opts.Source, "lines", len(lines))

	split := FindSplitPoint(lines, s.opts.Marker, s.opts.FallbackLine)
	if split.Found {
		fmt.Fprintf(s.out, "Found split point at line %d\n", split.Line())
	} else {
		if s.opts.Strict {
			return fmt.Errorf("%w in %s", ErrMarkerNotFound, s.opts.Source)
		}
		fmt.Fprintf(s.out, "Warning: Start marker not found, using line %d.\n", split.Line())
		s.logger.Warn("falling back to fixed split line", "line", split.Line(), "lines", len(lines))
	}

	draft, err := os.ReadFile(s.opts.Draft)
	if err != nil {
		return fmt.Errorf("failed to read draft: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if s.opts.Backup {
		if err := backupFile(s.opts.Destination); err != nil {
			return err
		}
	}

	content := Assemble(lines, split, string(draft))
	if err := writeFileAtomic(s.opts.Destination, []byte(content)); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Successfully updated %s\n", filepath.Base(s.opts.Destination))
	return nil
}

func readLinesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	defer f.Close()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}
	return lines, nil
}

// backupFile copies path to path+".bak". A missing path is not an error.
func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s for backup: %w", path, err)
	}
	if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// writeFileAtomic writes data next to path and renames it over path, so
// readers see either the old or the new document.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
