package signal

import "github.com/hurttlocker/dossier/internal/taxonomy"

// BioRole matches self-descriptions against role labels. Bios are the
// highest-precision text source, so weights here run higher than the
// message dictionaries.
var BioRole = []Rule[taxonomy.Role]{
	rule(`\b(?:co-?founder|founder|founding\s+team|ceo|cto|coo|chief\s+\w+\s+officer)\b`, taxonomy.RoleFounderExec, 2.5, "exec_title"),
	rule(`\b(?:bd|biz\s*dev|business\s+develop\w*|partnerships?\s+(?:lead|manager|director)|partnerships\b)`, taxonomy.RoleBD, 2.2, "bd_title"),
	rule(`\b(?:engineer|developer|solidity|rust\s+dev|full[\s-]?stack|smart\s+contracts?|protocol\s+dev)\b`, taxonomy.RoleBuilder, 2.0, "builder_title"),
	rule(`\b(?:investor|vc\b|venture\s+(?:capital|partner)|analyst|research(?:er)?\s+at|portfolio)\b`, taxonomy.RoleInvestorAnalyst, 2.0, "investor_title"),
	rule(`\b(?:recruit\w*|talent\s+(?:partner|lead|acquisition)|headhunt\w*)\b`, taxonomy.RoleRecruiter, 2.2, "recruiter_title"),
	rule(`\b(?:agency|marketing\s+(?:agency|studio|firm)|growth\s+(?:agency|studio)|we\s+offer)\b`, taxonomy.RoleVendorAgency, 1.8, "agency_bio"),
	rule(`\b(?:kol|influencer|content\s+creator|podcast(?:er)?|journalist|ambassador)\b`, taxonomy.RoleMediaKOL, 2.0, "media_bio"),
	rule(`\b(?:market\s*mak\w*|liquidity\s+provider|otc\s+desk|prop\s+trading)\b`, taxonomy.RoleMarketMaker, 2.4, "mm_bio"),
	rule(`\b(?:community\s+(?:manager|lead|builder|mod)|moderator)\b`, taxonomy.RoleCommunity, 2.0, "community_bio"),
}

// BioIntent matches self-descriptions against intent labels.
var BioIntent = []Rule[taxonomy.Intent]{
	rule(`\b(?:open\s+to\s+partnerships?|let'?s\s+partner|collaborat\w*|integrations?\s+welcome)\b`, taxonomy.IntentPartnerships, 1.8, "partner_bio"),
	rule(`\b(?:dm\s+for\s+(?:rates|promo|services)|book\s+a\s+call|\d+\s*%\s*off)`, taxonomy.IntentSelling, 2.0, "selling_bio"),
	rule(`\b(?:we'?re\s+hiring|join\s+our\s+team|open\s+roles?)\b`, taxonomy.IntentHiring, 2.0, "hiring_bio"),
	rule(`\b(?:open\s+to\s+work|looking\s+for\s+(?:a\s+)?(?:role|job|new\s+opportunit\w*)|available\s+for\s+hire)\b`, taxonomy.IntentJobSeeking, 2.2, "seeking_bio"),
	rule(`\b(?:raising\s+(?:a|our)|fundrais\w*|pre-?seed|seed\s+round)\b`, taxonomy.IntentFundraising, 2.0, "raise_bio"),
	rule(`\b(?:dm\s+me|let'?s\s+connect|open\s+to\s+chat|always\s+happy\s+to\s+talk)\b`, taxonomy.IntentNetworking, 1.2, "connect_bio"),
}
