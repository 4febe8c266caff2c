package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reSpaces  = regexp.MustCompile(`[\s\p{Zs}]+`)
	reIDStrip = regexp.MustCompile(`[^a-z0-9-]`)
)

// CollapseSpaces replaces every whitespace run with a single space.
func CollapseSpaces(input string) string {
	return reSpaces.ReplaceAllString(input, " ")
}

// TeamID derives the stable id of a cleaned team name: lowercase, whitespace to
// hyphens, anything outside [a-z0-9-] dropped.
func TeamID(name string) string {
	s := strings.ToLower(name)
	s = reSpaces.ReplaceAllString(s, "-")
	return reIDStrip.ReplaceAllString(s, "")
}

// Length counts characters, not bytes.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// Words splits on single spaces. Cleaned names never contain space runs.
func Words(name string) []string {
	return strings.Split(name, " ")
}

func FirstWord(name string) string {
	if i := strings.IndexByte(name, ' '); i >= 0 {
		return name[:i]
	}
	return name
}

func WordCount(name string) int {
	return strings.Count(name, " ") + 1
}

// ProperCase upper-cases the first character and lower-cases the rest.
func ProperCase(word string) string {
	if word == "" {
		return word
	}
	r, size := utf8.DecodeRuneInString(word)
	return strings.ToUpper(string(r)) + strings.ToLower(word[size:])
}

// DiffersByOneLetter reports whether a and b are one character apart under a
// narrow rule: equal lengths must mismatch at exactly one position; lengths
// differing by one qualify when the shorter occurs contiguously inside the
// longer. It is not Levenshtein distance.
func DiffersByOneLetter(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	longer, shorter := ra, rb
	if len(rb) > len(ra) {
		longer, shorter = rb, ra
	}
	switch len(longer) - len(shorter) {
	case 0:
		diff := 0
		for i := range longer {
			if longer[i] != shorter[i] {
				diff++
			}
		}
		return diff == 1
	case 1:
		return strings.Contains(string(longer), string(shorter))
	default:
		return false
	}
}
