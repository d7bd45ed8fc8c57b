// Package taxonomy defines the closed label sets, prior weights, and
// gating thresholds used by the Dossier scoring engine.
//
// All label sets are closed: the engine pre-seeds its score accumulators
// for every label in the set, so an unknown label is impossible at
// runtime rather than a lookup miss. Enumeration order is stable and is
// the tie-break order when probabilities are equal.
package taxonomy

// Role is a functional role inferred for a group participant.
type Role string

const (
	RoleFounderExec     Role = "founder_exec"
	RoleBD              Role = "bd"
	RoleBuilder         Role = "builder"
	RoleInvestorAnalyst Role = "investor_analyst"
	RoleRecruiter       Role = "recruiter"
	RoleVendorAgency    Role = "vendor_agency"
	RoleMediaKOL        Role = "media_kol"
	RoleMarketMaker     Role = "market_maker"
	RoleCommunity       Role = "community"

	// RoleUnknown is the fallback display value. It never participates
	// in scoring or ranking.
	RoleUnknown Role = "unknown"
)

// Roles is the stable enumeration order for the role dimension,
// excluding the unknown sentinel.
var Roles = []Role{
	RoleFounderExec,
	RoleBD,
	RoleBuilder,
	RoleInvestorAnalyst,
	RoleRecruiter,
	RoleVendorAgency,
	RoleMediaKOL,
	RoleMarketMaker,
	RoleCommunity,
}

// Intent is the inferred reason a participant is in the group.
type Intent string

const (
	IntentPartnerships  Intent = "partnerships"
	IntentSelling       Intent = "selling"
	IntentHiring        Intent = "hiring"
	IntentJobSeeking    Intent = "job_seeking"
	IntentFundraising   Intent = "fundraising"
	IntentNetworking    Intent = "networking"
	IntentSupportGiving Intent = "support_giving"
	IntentLearning      Intent = "learning"

	// IntentUnknown is the fallback display value, excluded from ranking.
	IntentUnknown Intent = "unknown"
)

// Intents is the stable enumeration order for the intent dimension,
// excluding the unknown sentinel.
var Intents = []Intent{
	IntentPartnerships,
	IntentSelling,
	IntentHiring,
	IntentJobSeeking,
	IntentFundraising,
	IntentNetworking,
	IntentSupportGiving,
	IntentLearning,
}

// OrgType classifies the kind of organization a participant is
// affiliated with. It is an independent side channel: org types never
// contribute to role or intent scores.
type OrgType string

const (
	OrgExchange    OrgType = "exchange"
	OrgFund        OrgType = "fund"
	OrgMarketMaker OrgType = "market_maker"
	OrgAgency      OrgType = "agency"
	OrgProtocol    OrgType = "protocol"
	OrgMedia       OrgType = "media"
	OrgLaunchpad   OrgType = "launchpad"
	OrgDAO         OrgType = "dao"
)

// OrgTypes is the stable enumeration order for org types.
var OrgTypes = []OrgType{
	OrgExchange,
	OrgFund,
	OrgMarketMaker,
	OrgAgency,
	OrgProtocol,
	OrgMedia,
	OrgLaunchpad,
	OrgDAO,
}

// Gating holds the thresholds that decide whether a top-ranked label is
// emitted as a claim or suppressed as an abstention.
type Gating struct {
	// MinNonMembershipEvidence is the minimum number of evidence rows
	// whose type is not "membership" that the top label must carry.
	MinNonMembershipEvidence int

	// MinClaimConfidence is the minimum post-softmax probability the
	// top label must reach.
	MinClaimConfidence float64
}

// DefaultGating returns the production gating thresholds.
func DefaultGating() Gating {
	return Gating{
		MinNonMembershipEvidence: 1,
		MinClaimConfidence:       0.35,
	}
}
