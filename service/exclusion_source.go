package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"egais-writeoff/reconcile"
)

// ExclusionFileSource reads exclusion words from a text file, one word per line
type ExclusionFileSource struct {
	path     string
	encoding string
}

// NewExclusionFileSource creates a new ExclusionFileSource.
// encoding is "utf-8" or "windows-1251" (files saved by Windows Notepad).
func NewExclusionFileSource(path, encoding string) *ExclusionFileSource {
	return &ExclusionFileSource{
		path:     path,
		encoding: encoding,
	}
}

// Ensure ExclusionFileSource implements reconcile.ExclusionSource
var _ reconcile.ExclusionSource = (*ExclusionFileSource)(nil)

// FetchExclusionWords reads the file on every call so edits apply without a restart
func (s *ExclusionFileSource) FetchExclusionWords(ctx context.Context) (reconcile.ExclusionSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exclusion file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch s.encoding {
	case "windows-1251", "cp1251":
		r = transform.NewReader(f, charmap.Windows1251.NewDecoder())
	}

	words, err := reconcile.ParseExclusionWords(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read exclusion file %s: %w", s.path, err)
	}

	log.Printf("🚫 Loaded %d exclusion words from %s", len(words), s.path)
	return words, nil
}
