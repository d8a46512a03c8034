package reconcile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ExclusionSet holds lower-cased words; a good whose name contains any of them
// is left out of the write-off.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from words, lower-casing them and skipping blanks
func NewExclusionSet(words ...string) ExclusionSet {
	set := make(ExclusionSet, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// ParseExclusionWords reads a line-delimited exclusion list.
// Blank lines, whitespace-only lines and lines starting with '#' are skipped.
func ParseExclusionWords(r io.Reader) (ExclusionSet, error) {
	set := make(ExclusionSet)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		set[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exclusion list: %w", err)
	}
	return set, nil
}

// Matches reports whether name contains any excluded word, ignoring case
func (s ExclusionSet) Matches(name string) bool {
	lower := strings.ToLower(name)
	for word := range s {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// FilterExcluded removes goods whose commercial name contains an excluded word.
// Order is preserved; an empty set returns goods unchanged.
func FilterExcluded(goods []Good, words ExclusionSet) []Good {
	if len(words) == 0 {
		return goods
	}
	kept := make([]Good, 0, len(goods))
	for _, g := range goods {
		if words.Matches(g.CommercialName) {
			continue
		}
		kept = append(kept, g)
	}
	return kept
}
