package signal

import (
	"regexp"
	"strings"
)

// Capture is one raw organization-name candidate pulled from text. The
// candidate has not been validated yet; Index is the byte offset of
// the capture in the source text (used for @handle precedence checks
// in messages).
type Capture struct {
	Raw   string
	Tag   string
	Index int
}

// capturePattern pairs an affiliation regex (exactly one capture
// group) with its evidence tag.
type capturePattern struct {
	re  *regexp.Regexp
	tag string
}

// orgChars is the permissive candidate body; the validator does the
// real work of trimming prose bleed.
const orgChars = `([A-Za-z0-9][\w&.' -]{1,40})`

var bioAffiliation = []capturePattern{
	{regexp.MustCompile(`(?i)\b(?:founder|co-?founder|ceo|cto|coo|head\s+of\s+\w+|bd|partnerships?\s+(?:lead|manager)|growth|gm)\s*(?:@|at)\s+` + orgChars), "title_at"},
	{regexp.MustCompile(`(?i)\bwork(?:ing)?\s+(?:at|for)\s+` + orgChars), "works_at"},
	{regexp.MustCompile(`(?i)\bbuilding\s+` + orgChars), "building"},
}

var msgAffiliation = []capturePattern{
	{regexp.MustCompile(`(?i)\bI\s*(?:'m|am)?\s*work(?:ing)?\s+(?:at|for|with)\s+` + orgChars), "self_work"},
	{regexp.MustCompile(`(?i)\bI'?m\s+from\s+` + orgChars), "self_from"},
	{regexp.MustCompile(`(?i)\bwe\s*(?:'re|are)?\s*(?:building|from)\s+` + orgChars), "we_building"},
	{regexp.MustCompile(`(?i)\brepresent(?:ing)?\s+` + orgChars), "representing"},
}

// msgAffiliationRejects void a whole message for affiliation capture:
// third-person introductions and questions are about someone else.
var msgAffiliationRejects = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\badd(?:ing|ed)?\s+@?\w+\s+here\b`),
	regexp.MustCompile(`(?i)\banyone\s+(?:here\s+)?from\b`),
	regexp.MustCompile(`(?i)\bis\s+(?:he|she|anyone|someone)\s+(?:here\s+)?from\b`),
	regexp.MustCompile(`\?\s*$`),
}

// handleRE finds @handle tokens; a handle before the capture position
// means the sentence introduces someone else, not the speaker.
var handleRE = regexp.MustCompile(`@\w+`)

// BioAffiliationCandidates extracts raw org candidates from a bio.
func BioAffiliationCandidates(bio string) []Capture {
	return captureAll(bioAffiliation, bio)
}

// MsgAffiliationCandidates extracts raw org candidates from one
// message. It returns nil when the message matches a reject pattern,
// and skips any capture preceded by an @handle token.
func MsgAffiliationCandidates(text string) []Capture {
	for _, re := range msgAffiliationRejects {
		if re.MatchString(text) {
			return nil
		}
	}
	caps := captureAll(msgAffiliation, text)
	out := caps[:0]
	for _, c := range caps {
		if loc := handleRE.FindStringIndex(text); loc != nil && loc[0] < c.Index {
			continue
		}
		out = append(out, c)
	}
	return out
}

func captureAll(patterns []capturePattern, text string) []Capture {
	if text == "" {
		return nil
	}
	var out []Capture
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			// m[2]:m[3] is the first capture group.
			if len(m) < 4 || m[2] < 0 {
				continue
			}
			out = append(out, Capture{
				Raw:   text[m[2]:m[3]],
				Tag:   p.tag,
				Index: m[2],
			})
		}
	}
	return out
}

// titlePrefixRE strips a leading job-title prefix from a display-name
// segment ("BD Gate.io" → "Gate.io").
var titlePrefixRE = regexp.MustCompile(`(?i)^(?:ex[\s-])?(?:sr\.?\s+|senior\s+)?(?:founder|co-?founder|ceo|cto|coo|head\s+of\s+\w+|bd|bizdev|business\s+development|growth|marketing|partnerships?|sales|dev(?:eloper)?|engineer|cm|community\s+manager|kol|recruiter|talent)\s*(?:@|at)?\s+`)

// titleSuffixRE strips a trailing role word ("Gate.io BD" → "Gate.io").
var titleSuffixRE = regexp.MustCompile(`(?i)\s+(?:bd|bizdev|ceo|cto|coo|founder|co-?founder|dev|developer|engineer|growth|marketing|partnerships?|sales|cm|mod|intern|lead|manager|recruiter|kol|mm|team)\.?$`)

// roleAtCompanyRE matches "Role @ Company" display-name segments.
var roleAtCompanyRE = regexp.MustCompile(`^\s*[\w .&-]*?\s*@\s*(\S.*)$`)

// NameAffiliationCandidates extracts raw org candidates from a
// pipe-delimited display name ("Alice | Gate.io BD", "Bob | BD @
// Binance"). The first segment is the person's name and only
// contributes via the "Role @ Company" form; later segments are
// treated as "Company Role" with title prefixes and suffixes stripped.
func NameAffiliationCandidates(displayName string) []Capture {
	segments := strings.Split(displayName, "|")
	var out []Capture
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		if m := roleAtCompanyRE.FindStringSubmatch(seg); m != nil {
			out = append(out, Capture{Raw: strings.TrimSpace(m[1]), Tag: "name_at"})
			continue
		}
		if i == 0 {
			continue
		}

		cleaned := titlePrefixRE.ReplaceAllString(seg, "")
		cleaned = titleSuffixRE.ReplaceAllString(cleaned, "")
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			continue
		}
		out = append(out, Capture{Raw: cleaned, Tag: "name_segment"})
	}
	return out
}
