package signal

import (
	"regexp"

	"github.com/hurttlocker/dossier/internal/taxonomy"
)

// OrgTypeRule classifies the kind of organization a display name
// references. Org types are a side channel: they carry no weight and
// never touch role or intent scores.
type OrgTypeRule struct {
	Pattern *regexp.Regexp
	Type    taxonomy.OrgType
	Tag     string
}

var OrgType = []OrgTypeRule{
	{regexp.MustCompile(`(?i)\b(?:exchange|cex|gate\.io|binance|bybit|okx|kucoin|mexc|bitget)\b`), taxonomy.OrgExchange, "exchange_name"},
	{regexp.MustCompile(`(?i)\b(?:capital|ventures?|vc|fund)\b`), taxonomy.OrgFund, "fund_name"},
	{regexp.MustCompile(`(?i)\b(?:market\s*mak\w*|liquidity|otc)\b`), taxonomy.OrgMarketMaker, "mm_name"},
	{regexp.MustCompile(`(?i)\b(?:agency|studio|pr\b|marketing)\b`), taxonomy.OrgAgency, "agency_name"},
	{regexp.MustCompile(`(?i)\b(?:protocol|defi|dex|chain|network|l[12]\b)\b`), taxonomy.OrgProtocol, "protocol_name"},
	{regexp.MustCompile(`(?i)\b(?:media|news|podcast|research|magazine)\b`), taxonomy.OrgMedia, "media_name"},
	{regexp.MustCompile(`(?i)\b(?:launchpad|incubator|accelerator)\b`), taxonomy.OrgLaunchpad, "launchpad_name"},
	{regexp.MustCompile(`(?i)\bdao\b`), taxonomy.OrgDAO, "dao_name"},
}

// OrgTypeMatches returns the org types referenced by text, in rule
// order, deduplicated by type identity.
func OrgTypeMatches(text string) []OrgTypeRule {
	if text == "" {
		return nil
	}
	seen := map[taxonomy.OrgType]bool{}
	var out []OrgTypeRule
	for _, r := range OrgType {
		if seen[r.Type] {
			continue
		}
		if r.Pattern.MatchString(text) {
			seen[r.Type] = true
			out = append(out, r)
		}
	}
	return out
}
