package signal

import (
	"regexp"

	"github.com/hurttlocker/dossier/internal/taxonomy"
)

// NameRole matches display names against role labels. Display names
// are short and title-heavy ("Alice | Gate.io BD"), so single words
// carry meaning here that they would not carry in a message.
var NameRole = []Rule[taxonomy.Role]{
	rule(`\b(?:founder|co-?founder|ceo|cto|coo)\b`, taxonomy.RoleFounderExec, 1.8, "exec_name"),
	rule(`\bbd\b`, taxonomy.RoleBD, 1.5, "bd_name"),
	rule(`\b(?:dev|developer|engineer|builder)\b`, taxonomy.RoleBuilder, 1.4, "dev_name"),
	rule(`\b(?:vc|ventures?|capital|fund)\b`, taxonomy.RoleInvestorAnalyst, 1.4, "vc_name"),
	rule(`\b(?:recruiter|talent|hiring)\b`, taxonomy.RoleRecruiter, 1.6, "recruiter_name"),
	rule(`\b(?:agency|marketing|promo)\b`, taxonomy.RoleVendorAgency, 1.4, "agency_name"),
	rule(`\b(?:kol|media|press|news)\b`, taxonomy.RoleMediaKOL, 1.5, "media_name"),
	rule(`\b(?:mm|market\s*maker|liquidity)\b`, taxonomy.RoleMarketMaker, 1.6, "mm_name"),
	rule(`\b(?:community|mod|admin)\b`, taxonomy.RoleCommunity, 1.3, "community_name"),
}

// bizDevPhraseRE is the compound "business developer" phrase. It gets
// override treatment because the bare "developer" sub-match would
// otherwise credit the builder label for what is a BD title.
var bizDevPhraseRE = regexp.MustCompile(`(?i)\b(?:biz\s*dev|bizdev|business\s+develop(?:er|ment)?)\b`)

// commercialNameRE matches selling language inside a display name
// (discounts, packages, service menus).
var commercialNameRE = regexp.MustCompile(`(?i)(?:\d+\s*%\s*off|discount|packages?\b|our\s+services|promo\b)`)

const (
	// BizDevBonus is added to bd and subtracted from builder when the
	// display name carries the compound BizDev phrase.
	BizDevBonus = 2.5

	// CommercialNameBonus is added to vendor_agency when the display
	// name carries commercial language.
	CommercialNameBonus = 2.0
)

// IsBizDevName reports whether the display name contains the compound
// BizDev phrase.
func IsBizDevName(name string) bool { return bizDevPhraseRE.MatchString(name) }

// IsCommercialName reports whether the display name contains
// selling/commercial language.
func IsCommercialName(name string) bool { return commercialNameRE.MatchString(name) }
