// Package score implements the evidence-gated inference engine.
//
// ScoreUser converts one member's raw signals (bio, display name,
// message sample, group memberships, aggregate counters) into ranked,
// probability-normalized role and intent labels, decides per dimension
// whether the evidence is strong enough to claim anything, and
// extracts validated organization affiliations as a side channel.
//
// The engine is pure: no I/O, no clock, no shared mutable state. Two
// calls with the same input and config return identical results, and
// concurrent calls for different users need no coordination.
package score

import "github.com/hurttlocker/dossier/internal/taxonomy"

// Evidence source types. Every weight contribution to a label's score
// is traceable to exactly one EvidenceRow of one of these types.
const (
	EvidenceMembership  = "membership"
	EvidenceBio         = "bio"
	EvidenceDisplayName = "display_name"
	EvidenceMessage     = "message"
	EvidenceFeature     = "feature"
)

// Abstention reason codes.
const (
	ReasonInsufficientEvidence = "insufficient_evidence"
	ReasonLowConfidence        = "low_confidence"
)

// EvidenceRow is one weighted justification for part of a label's
// score. Ref encodes the rule tag and, for message evidence, the hit
// count (e.g. "msg:bd_action:count=3").
type EvidenceRow struct {
	Type   string  `json:"evidence_type"`
	Ref    string  `json:"evidence_ref"`
	Weight float64 `json:"weight"`
}

// ScoredLabel is one candidate label with its additive score, its
// post-softmax probability, and the evidence that produced the score.
type ScoredLabel[T ~string] struct {
	Label       T             `json:"label"`
	Score       float64       `json:"score"`
	Probability float64       `json:"probability"`
	Evidence    []EvidenceRow `json:"evidence"`
}

// Affiliation is a validated organization name with the text channel
// that produced it (bio, display_name, or message).
type Affiliation struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Tag    string `json:"tag"`
}

// OrgTypeHit is an organization-type side claim.
type OrgTypeHit struct {
	Type   taxonomy.OrgType `json:"org_type"`
	Source string           `json:"source"`
	Tag    string           `json:"tag"`
}

// Abstention is a structured record of a gating refusal, consumed by
// the persistence layer.
type Abstention struct {
	Dimension string `json:"dimension"` // "role" or "intent"
	Label     string `json:"label"`
	Code      string `json:"reason_code"`
	Details   string `json:"details"`
}

// UserInput is the read-only snapshot the engine scores. The engine
// never writes through it.
type UserInput struct {
	UserID      string
	DisplayName string
	Bio         string

	// GroupContexts are the context tags of the groups the user is
	// currently in; they drive prior seeding.
	GroupContexts []string

	// Messages is a bounded ordered sample of the user's message
	// texts, oldest first.
	Messages []string

	// Aggregate counters over the user's full history, not just the
	// sample.
	MessageCount     int
	ReplyCount       int
	MentionCount     int
	AvgMessageLen    float64
	DomainShare      float64
	DistinctContexts int
}

// Result is one scored snapshot for one user. RoleClaim and
// IntentClaim are nil exactly when gating refused that dimension, in
// which case GatingNotes carries a human-readable reason and
// Abstentions the machine-readable one.
type Result struct {
	UserID       string
	RoleClaim    *ScoredLabel[taxonomy.Role]
	IntentClaim  *ScoredLabel[taxonomy.Intent]
	RoleScores   []ScoredLabel[taxonomy.Role]   // full ranking, probability descending
	IntentScores []ScoredLabel[taxonomy.Intent] // full ranking, probability descending
	Affiliations []Affiliation
	OrgTypes     []OrgTypeHit
	GatingNotes  []string
	Abstentions  []Abstention
}

// Config is the full engine configuration, loaded once per run and
// passed by value so runs with different versions can be compared.
type Config struct {
	Priors taxonomy.Priors
	Gating taxonomy.Gating

	// MessageSampleCap bounds the dictionary scan.
	MessageSampleCap int

	// AffiliationScanCap bounds the (more expensive) affiliation scan
	// to a prefix of the sample.
	AffiliationScanCap int

	// MinFeatureMessages is the sample-size floor below which no
	// aggregate-feature evidence fires.
	MinFeatureMessages int

	ReplyRatioThreshold  float64
	MentionFloor         int
	DistinctContextFloor int

	ModelVersion string
}

// DefaultConfig returns the production engine configuration.
func DefaultConfig() Config {
	return Config{
		Priors:               taxonomy.DefaultPriors(),
		Gating:               taxonomy.DefaultGating(),
		MessageSampleCap:     200,
		AffiliationScanCap:   50,
		MinFeatureMessages:   20,
		ReplyRatioThreshold:  0.30,
		MentionFloor:         10,
		DistinctContextFloor: 3,
		ModelVersion:         "rules-v1",
	}
}
