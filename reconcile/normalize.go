package reconcile

import (
	"regexp"
	"strings"
)

var repeatedSpaces = regexp.MustCompile(` {2,}`)

// Normalize returns the commercial name without its parenthetical technical
// descriptor (style, OG, ABV, IBU...), with repeated spaces collapsed and trimmed.
// Example: "4Пивовара - Black Jesus (Porter - American. ABV 6.7%)" -> "4Пивовара - Black Jesus"
func Normalize(rawName string) string {
	name, _, _ := strings.Cut(rawName, " (")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
