package signal

import "github.com/hurttlocker/dossier/internal/taxonomy"

// DirectoryOperatorTag marks the message rule whose hits identify a
// directory/marketplace operator. The engine treats this tag specially:
// it voids the bd score (those hits are presumed false positives) and
// strongly boosts vendor_agency.
const DirectoryOperatorTag = "directory_operator"

// MsgRole matches individual messages against role labels. Message
// weights run low because a single message is weak evidence; the
// engine tallies hit counts across the sample and applies log2 damping
// so one repeated phrase cannot run away with the score.
var MsgRole = []Rule[taxonomy.Role]{
	rule(`\b(?:our\s+team|we'?re\s+building|my\s+startup|our\s+product|our\s+roadmap)\b`, taxonomy.RoleFounderExec, 0.9, "exec_voice"),
	rule(`\b(?:let'?s\s+partner|partnership|listing\s+(?:fee|on)|integration\s+proposal|mutual\s+marketing)\b`, taxonomy.RoleBD, 1.2, "bd_action"),
	rule(`\b(?:shipped|deployed|smart\s+contract|testnet|mainnet|pull\s+request|audit(?:ed)?\b|repo\b)`, taxonomy.RoleBuilder, 1.1, "builder_action"),
	rule(`\b(?:our\s+portfolio|due\s+diligence|deal\s+flow|thesis\b|allocat(?:e|ion))\b`, taxonomy.RoleInvestorAnalyst, 1.1, "investor_talk"),
	rule(`\b(?:we'?re\s+hiring|open\s+position|send\s+(?:your\s+)?cv|job\s+description|jd\b)`, taxonomy.RoleRecruiter, 1.2, "recruiter_post"),
	rule(`\b(?:we\s+offer|our\s+(?:services|packages|clients)|pricing\s+(?:starts|plans)|case\s+stud(?:y|ies))\b`, taxonomy.RoleVendorAgency, 1.3, "vendor_pitch"),
	rule(`\b(?:listed?\s+(?:your\s+project\s+)?on\s+our\s+(?:directory|marketplace|platform)|vendor\s+directory|our\s+marketplace)\b`, taxonomy.RoleVendorAgency, 1.5, DirectoryOperatorTag),
	rule(`\b(?:ama\b|giveaway|my\s+(?:channel|audience)|subscribers|followers|shill)\b`, taxonomy.RoleMediaKOL, 1.0, "media_talk"),
	rule(`\b(?:order\s*book|spread\s+|market[\s-]?making|liquidity\s+(?:depth|provision)|taker\s+fee)\b`, taxonomy.RoleMarketMaker, 1.0, "mm_talk"),
	rule(`\b(?:welcome\s+to\s+the\s+group|read\s+the\s+pinned|mods?\s+will|no\s+shilling)\b`, taxonomy.RoleCommunity, 1.0, "community_voice"),
}

// MsgIntent matches individual messages against intent labels.
var MsgIntent = []Rule[taxonomy.Intent]{
	rule(`\b(?:open\s+to\s+collab\w*|partnership\s+opportunit\w*|let'?s\s+integrate|cross[\s-]promo)\b`, taxonomy.IntentPartnerships, 1.1, "partner_ask"),
	rule(`\b(?:dm\s+(?:me\s+)?for\s+(?:rates|pricing|details)|special\s+offer|\d+\s*%\s*off|limited\s+slots)`, taxonomy.IntentSelling, 1.2, "selling_pitch"),
	rule(`\b(?:we'?re\s+hiring|looking\s+for\s+a\s+(?:dev|developer|designer|bd|cm)\b)`, taxonomy.IntentHiring, 1.2, "hiring_post"),
	rule(`\b(?:open\s+to\s+work|looking\s+for\s+(?:a\s+)?new\s+(?:role|opportunity)|anyone\s+hiring)\b`, taxonomy.IntentJobSeeking, 1.2, "seeking_ask"),
	rule(`\b(?:raising\s+(?:a|our)\s+(?:round|seed|pre-?seed)|intro\s+to\s+(?:vcs|investors|angels))\b`, taxonomy.IntentFundraising, 1.2, "raise_ask"),
	rule(`\b(?:let'?s\s+connect|dm\s+me\b|happy\s+to\s+chat|drop\s+your\s+(?:telegram|tg))\b`, taxonomy.IntentNetworking, 0.8, "connect_ask"),
	rule(`\b(?:happy\s+to\s+help|you\s+can\s+try|the\s+fix\s+is|here'?s\s+how|hope\s+that\s+helps)\b`, taxonomy.IntentSupportGiving, 0.9, "help_offer"),
	rule(`\b(?:how\s+do\s+(?:i|you)|can\s+(?:anyone|someone)\s+explain|what'?s\s+the\s+best\s+way|any\s+recommendations)\b`, taxonomy.IntentLearning, 0.8, "question_ask"),
}
