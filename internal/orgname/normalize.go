package orgname

import (
	"regexp"
	"strings"
)

// tldSuffixRE strips domain-style suffixes ("Gate.io" and "Gate" are
// the same organization).
var tldSuffixRE = regexp.MustCompile(`\.(?:io|com|xyz|ai|co|org|net|fi|gg|app|finance|exchange|capital|fund)$`)

// legalSuffixes are corporate-form words dropped from the dedup key.
var legalSuffixes = map[string]bool{
	"inc": true, "llc": true, "ltd": true, "limited": true,
	"corp": true, "co": true, "gmbh": true, "ag": true, "plc": true,
}

var punctRE = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
var spaceRE = regexp.MustCompile(`\s+`)

// Normalize produces the case-folded dedup key for a validated
// organization name: lower-cased, TLD and legal suffixes removed,
// punctuation stripped, whitespace collapsed.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = tldSuffixRE.ReplaceAllString(s, "")
	s = punctRE.ReplaceAllString(s, " ")
	s = spaceRE.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	words := strings.Fields(s)
	for len(words) > 1 && legalSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}
