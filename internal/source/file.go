// Package source provides line sources for the extraction pipeline: local
// files (plain or gzip archive members) and in-memory slices. All sources
// satisfy pipeline.LineSource.
package source

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineBytes bounds a single record line. NCDC records run a few hundred
// bytes; anything near this limit is garbage, but it must not abort the scan.
const maxLineBytes = 1024 * 1024

// FileSource streams lines from a local file, transparently decompressing
// files with a .gz suffix.
type FileSource struct {
	path    string
	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
}

// Open opens path for line-by-line reading. The caller owns Close.
func Open(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}

	s := &FileSource{path: path, file: f}

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open gzip source %s: %w", path, err)
		}
		s.gz = gz
		r = gz
	}

	s.scanner = bufio.NewScanner(r)
	s.scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	return s, nil
}

// Scan advances to the next line, returning false at EOF or on error.
func (s *FileSource) Scan() bool { return s.scanner.Scan() }

// Text returns the current line without its trailing newline.
func (s *FileSource) Text() string { return s.scanner.Text() }

// Err returns the first error encountered while reading, nil at clean EOF.
func (s *FileSource) Err() error {
	if err := s.scanner.Err(); err != nil {
		return fmt.Errorf("read source %s: %w", s.path, err)
	}
	return nil
}

// Close releases the underlying file and, if present, the gzip reader.
func (s *FileSource) Close() error {
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			s.file.Close()
			return fmt.Errorf("close gzip source %s: %w", s.path, err)
		}
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close source %s: %w", s.path, err)
	}
	return nil
}
