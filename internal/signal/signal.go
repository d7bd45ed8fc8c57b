// Package signal holds the keyword dictionaries that turn raw member
// text into weighted label evidence.
//
// Every dictionary is an ordered list of typed rules {pattern, label,
// weight, tag} evaluated through one generic routine. Rule order never
// changes a score (all matching rules fire) but it does fix the order
// of evidence references in output, which keeps runs byte-for-byte
// reproducible. Dictionaries are package-level immutable data compiled
// at init and shared safely across concurrent scoring calls.
package signal

import "regexp"

// Rule binds a case-insensitive pattern to a label, a non-negative
// weight, and a short tag used to build evidence references.
type Rule[T ~string] struct {
	Pattern *regexp.Regexp
	Label   T
	Weight  float64
	Tag     string
}

// Hit is one rule firing against one text source.
type Hit[T ~string] struct {
	Label  T
	Weight float64
	Tag    string
}

// Evaluate runs every rule against text and returns the hits in rule
// order. A rule fires at most once per text: recurrence across a
// message sample is counted by the caller, not here.
func Evaluate[T ~string](rules []Rule[T], text string) []Hit[T] {
	if text == "" {
		return nil
	}
	var hits []Hit[T]
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			hits = append(hits, Hit[T]{Label: r.Label, Weight: r.Weight, Tag: r.Tag})
		}
	}
	return hits
}

func rule[T ~string](pattern string, label T, weight float64, tag string) Rule[T] {
	return Rule[T]{
		Pattern: regexp.MustCompile(`(?i)` + pattern),
		Label:   label,
		Weight:  weight,
		Tag:     tag,
	}
}
