// Package orgname validates and normalizes organization-name candidates.
//
// Affiliation patterns over bios, display names, and messages capture
// raw substrings that frequently bleed into surrounding prose ("RealCo
// on this integration and btw"), or capture things that are not
// organizations at all (locations, bare job titles, conference names).
// Validate is the single cleaning and rejection pipeline every capture
// site must go through; Normalize produces the dedup key used when the
// same organization surfaces from more than one text channel.
package orgname

import (
	"regexp"
	"strings"
	"unicode"
)

// clauseBleedWords are trailing conjunctions and time adverbs that mean
// the capture ran past the organization name into a sentence clause.
var clauseBleedWords = map[string]bool{
	"and": true, "or": true, "but": true, "so": true, "as": true,
	"since": true, "because": true, "while": true, "though": true,
	"now": true, "today": true, "yesterday": true, "tomorrow": true,
	"currently": true, "recently": true, "previously": true,
	"here": true, "btw": true, "also": true,
}

// structuralStopwords reject a candidate whose first word is an
// article, preposition, or quantifier rather than a name.
var structuralStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "our": true, "their": true,
	"my": true, "your": true, "his": true, "her": true,
	"some": true, "any": true, "each": true, "every": true, "all": true,
	"at": true, "in": true, "on": true, "for": true, "with": true,
	"from": true, "of": true, "to": true,
}

// bareTitles are role or function words that pattern captures often
// mistake for company names ("working at trader" is never a company).
var bareTitles = map[string]bool{
	"trader": true, "founder": true, "cofounder": true, "ceo": true,
	"cto": true, "coo": true, "bd": true, "bizdev": true, "dev": true,
	"developer": true, "engineer": true, "builder": true, "analyst": true,
	"investor": true, "recruiter": true, "advisor": true, "intern": true,
	"marketing": true, "sales": true, "growth": true, "partnerships": true,
	"manager": true, "lead": true, "head": true, "mod": true,
	"moderator": true, "ambassador": true, "kol": true,
}

// generalRejects are locations, industry verticals, and platform names
// that show up constantly in "from X" captures but are not orgs.
var generalRejects = map[string]bool{
	// locations
	"dubai": true, "singapore": true, "london": true, "lisbon": true,
	"berlin": true, "nyc": true, "new york": true, "miami": true,
	"hong kong": true, "seoul": true, "tokyo": true, "asia": true,
	"europe": true, "usa": true, "uk": true, "india": true,
	"remote": true, "home": true,
	// industry verticals and buzzwords
	"web3": true, "crypto": true, "defi": true, "blockchain": true,
	"nft": true, "nfts": true, "gamefi": true, "ai": true, "tech": true,
	"fintech": true, "finance": true, "gaming": true, "metaverse": true,
	"scratch": true, "day one": true, "the ground up": true,
	// platforms, not employers
	"telegram": true, "discord": true, "twitter": true, "linkedin": true,
	"youtube": true, "github": true,
	// bare functions
	"team": true, "community": true, "support": true, "ops": true,
	"business": true, "product": true,
}

// rejectPatterns void a candidate on any match: known conference and
// event names, and pure-digit strings.
var rejectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:token\s*2049|devcon(?:nect)?|eth\s*cc|ethdenver|consensus|breakpoint|nft\s*nyc|permissionless)\b`),
	regexp.MustCompile(`^\d+$`),
}

// genericOpenerRE matches multi-word phrases that start with a
// quantifier and can never be a single organization.
var genericOpenerRE = regexp.MustCompile(`(?i)^(?:all|some|various|many|most|other|several|multiple|different)\s`)

// networkClampRE clamps "X on <NetworkName>" down to "X".
var networkClampRE = regexp.MustCompile(`^(.+?)\s+(?i:on)\s+\p{Lu}\S*.*$`)

// definitionClampRE clamps "X is a ..." down to "X".
var definitionClampRE = regexp.MustCompile(`^(.+?)\s+(?i:is)\s+(?i:an?|the)\b.*$`)

// Validate turns a raw captured substring into a clean organization
// name. The second return is false when the candidate is rejected.
// Every stage either strictly reduces the string or rejects it, so
// Validate(Validate(x)) never mutates further.
func Validate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'.,;:!()[]`)
	if s == "" {
		return "", false
	}

	// 1. Strip trailing clause-bleed words.
	s = stripClauseBleed(s)

	// 2. Clamp "X on <Network>" to "X".
	if m := networkClampRE.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	// 3. Clamp "X is a ..." to "X".
	if m := definitionClampRE.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}

	// 4. Truncate at the first lowercase-starting word after position 0.
	// Real org names are capitalized; a lowercase continuation means the
	// capture bled into prose.
	words := strings.Fields(s)
	for i := 1; i < len(words); i++ {
		if startsLower(words[i]) {
			words = words[:i]
			break
		}
	}
	s = strings.Join(words, " ")
	s = stripClauseBleed(s)
	s = strings.TrimSpace(strings.Trim(s, `"'.,;:!()[]`))

	// 5. Too short to be a name.
	if len(s) < 3 {
		return "", false
	}

	// 6. Structural stopword in first position.
	first := strings.ToLower(strings.Fields(s)[0])
	if structuralStopwords[first] {
		return "", false
	}

	// 7. Must start with an uppercase (or non-letter, e.g. "0x") rune.
	if startsLower(s) {
		return "", false
	}

	lower := strings.ToLower(s)

	// 8. Bare role/title word, not an organization.
	if bareTitles[strings.ReplaceAll(lower, "-", "")] {
		return "", false
	}

	// 9. General reject set: locations, verticals, platforms.
	if generalRejects[lower] {
		return "", false
	}

	// 10. Event names and pure digits.
	for _, re := range rejectPatterns {
		if re.MatchString(s) {
			return "", false
		}
	}

	// 11. Generic multi-word openers.
	if genericOpenerRE.MatchString(s) {
		return "", false
	}

	return s, true
}

func stripClauseBleed(s string) string {
	for {
		words := strings.Fields(s)
		if len(words) < 2 {
			return s
		}
		last := strings.ToLower(strings.Trim(words[len(words)-1], `.,;:!`))
		if !clauseBleedWords[last] {
			return s
		}
		s = strings.Join(words[:len(words)-1], " ")
	}
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLetter(r) && unicode.IsLower(r)
	}
	return false
}
