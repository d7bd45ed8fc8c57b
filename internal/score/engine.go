package score

import (
	"fmt"
	"math"
	"sort"

	"github.com/hurttlocker/dossier/internal/orgname"
	"github.com/hurttlocker/dossier/internal/signal"
	"github.com/hurttlocker/dossier/internal/taxonomy"
)

// Fixed override weights. Each one lands in the evidence trail as an
// explicit row, including the negative builder correction.
const (
	vendorAffiliationBonus = 2.0
	directoryOverrideBonus = 3.0
	featureReplyWeight     = 1.0
	featureMentionWeight   = 0.8
	featureContextWeight   = 0.8
)

// affiliation source precedence on normalized-name collision:
// message > display_name > bio. A message self-declaration is the
// highest-trust channel.
var sourceRank = map[string]int{
	EvidenceBio:         1,
	EvidenceDisplayName: 2,
	EvidenceMessage:     3,
}

// acc accumulates scores and evidence for one closed label set. It is
// pre-seeded for every label, so an unseen label cannot occur.
type acc[T ~string] struct {
	order    []T
	score    map[T]float64
	evidence map[T][]EvidenceRow
}

func newAcc[T ~string](labels []T) *acc[T] {
	a := &acc[T]{
		order:    labels,
		score:    make(map[T]float64, len(labels)),
		evidence: make(map[T][]EvidenceRow, len(labels)),
	}
	for _, l := range labels {
		a.score[l] = 0
		a.evidence[l] = nil
	}
	return a
}

func (a *acc[T]) add(label T, evType, ref string, weight float64) {
	a.score[label] += weight
	a.evidence[label] = append(a.evidence[label], EvidenceRow{Type: evType, Ref: ref, Weight: weight})
}

// void discards a label's score and evidence entirely.
func (a *acc[T]) void(label T) {
	a.score[label] = 0
	a.evidence[label] = nil
}

// ScoreUser runs the full inference pass for one user. Pure function:
// same input and config always produce the same result.
func ScoreUser(input UserInput, cfg Config) Result {
	roles := newAcc(taxonomy.Roles)
	intents := newAcc(taxonomy.Intents)

	res := Result{UserID: input.UserID}

	// 1. Prior seeding from group memberships.
	for _, ctx := range input.GroupContexts {
		for _, label := range taxonomy.Roles {
			if w, ok := cfg.Priors.RoleWeights(ctx)[label]; ok && w != 0 {
				roles.add(label, EvidenceMembership, "membership:"+ctx, w)
			}
		}
		for _, label := range taxonomy.Intents {
			if w, ok := cfg.Priors.IntentWeights(ctx)[label]; ok && w != 0 {
				intents.add(label, EvidenceMembership, "membership:"+ctx, w)
			}
		}
	}

	// 2. Bio pass: dictionary evidence plus affiliation capture.
	if input.Bio != "" {
		for _, h := range signal.Evaluate(signal.BioRole, input.Bio) {
			roles.add(h.Label, EvidenceBio, "bio:"+h.Tag, h.Weight)
		}
		for _, h := range signal.Evaluate(signal.BioIntent, input.Bio) {
			intents.add(h.Label, EvidenceBio, "bio:"+h.Tag, h.Weight)
		}
		for _, c := range signal.BioAffiliationCandidates(input.Bio) {
			if name, ok := orgname.Validate(c.Raw); ok {
				res.addAffiliation(Affiliation{Name: name, Source: EvidenceBio, Tag: c.Tag})
			}
		}
	}

	// 3. Display-name pass: overrides first, then generic rules.
	if input.DisplayName != "" {
		scoreDisplayName(input.DisplayName, roles, &res)
	}

	// 4. Message pass: tallied dictionary hits with log2 damping, then
	// affiliation capture over a smaller prefix.
	sample := input.Messages
	if cfg.MessageSampleCap > 0 && len(sample) > cfg.MessageSampleCap {
		sample = sample[:cfg.MessageSampleCap]
	}
	roleTally, intentTally := tallyMessages(sample)
	flushTally(roles, signal.MsgRole, roleTally)
	flushTally(intents, signal.MsgIntent, intentTally)

	affScan := sample
	if cfg.AffiliationScanCap > 0 && len(affScan) > cfg.AffiliationScanCap {
		affScan = affScan[:cfg.AffiliationScanCap]
	}
	messageAffiliations := 0
	for _, msg := range affScan {
		for _, c := range signal.MsgAffiliationCandidates(msg) {
			if name, ok := orgname.Validate(c.Raw); ok {
				res.addAffiliation(Affiliation{Name: name, Source: EvidenceMessage, Tag: c.Tag})
				messageAffiliations++
			}
		}
	}

	// 5. Cross-signal overrides, both evidence-recorded.
	messageVendorEvidence := false
	for key := range roleTally {
		if key.label == taxonomy.RoleVendorAgency {
			messageVendorEvidence = true
			break
		}
	}
	if messageAffiliations > 0 && messageVendorEvidence {
		roles.add(taxonomy.RoleVendorAgency, EvidenceMessage, "msg:vendor_affiliation", vendorAffiliationBonus)
	}
	if roleTally[tallyKey[taxonomy.Role]{taxonomy.RoleVendorAgency, signal.DirectoryOperatorTag}] > 0 {
		// Directory/marketplace operators generate bd-looking text that
		// is presumed a false positive: void bd outright.
		roles.void(taxonomy.RoleBD)
		roles.add(taxonomy.RoleVendorAgency, EvidenceMessage, "msg:directory_override", directoryOverrideBonus)
	}

	// 6. Aggregate-feature thresholds, gated on a minimum sample size
	// so one or two messages never fire a feature. A zero floor means
	// no floor.
	if input.MessageCount >= cfg.MinFeatureMessages {
		if input.MessageCount > 0 {
			replyRatio := float64(input.ReplyCount) / float64(input.MessageCount)
			if replyRatio >= cfg.ReplyRatioThreshold {
				intents.add(taxonomy.IntentSupportGiving, EvidenceFeature, "feature:reply_ratio", featureReplyWeight)
			}
		}
		if input.MentionCount >= cfg.MentionFloor {
			intents.add(taxonomy.IntentNetworking, EvidenceFeature, "feature:mentions", featureMentionWeight)
		}
		if input.DistinctContexts >= cfg.DistinctContextFloor {
			intents.add(taxonomy.IntentNetworking, EvidenceFeature, "feature:multi_group", featureContextWeight)
		}
	}

	// 7–8. Softmax per dimension, then rank by probability.
	res.RoleScores = rank(roles)
	res.IntentScores = rank(intents)

	// 9. Gate each dimension's top label independently.
	if claim, note, abst := gate("role", res.RoleScores, cfg.Gating); claim != nil {
		res.RoleClaim = claim
	} else {
		res.GatingNotes = append(res.GatingNotes, note)
		res.Abstentions = append(res.Abstentions, *abst)
	}
	if claim, note, abst := gate("intent", res.IntentScores, cfg.Gating); claim != nil {
		res.IntentClaim = claim
	} else {
		res.GatingNotes = append(res.GatingNotes, note)
		res.Abstentions = append(res.Abstentions, *abst)
	}

	return res
}

// scoreDisplayName applies the display-name override rules ahead of
// the generic dictionary, then captures affiliations and org types.
func scoreDisplayName(name string, roles *acc[taxonomy.Role], res *Result) {
	// Override (a): compound BizDev phrase. The bonus and the
	// equal-magnitude builder correction are both explicit evidence.
	if signal.IsBizDevName(name) {
		roles.add(taxonomy.RoleBD, EvidenceDisplayName, "name:bizdev_phrase", signal.BizDevBonus)
		roles.add(taxonomy.RoleBuilder, EvidenceDisplayName, "name:bizdev_not_builder", -signal.BizDevBonus)
	}
	// Override (b): commercial/selling language.
	if signal.IsCommercialName(name) {
		roles.add(taxonomy.RoleVendorAgency, EvidenceDisplayName, "name:commercial", signal.CommercialNameBonus)
	}

	for _, h := range signal.Evaluate(signal.NameRole, name) {
		roles.add(h.Label, EvidenceDisplayName, "name:"+h.Tag, h.Weight)
	}

	for _, c := range signal.NameAffiliationCandidates(name) {
		if org, ok := orgname.Validate(c.Raw); ok {
			res.addAffiliation(Affiliation{Name: org, Source: EvidenceDisplayName, Tag: c.Tag})
		}
	}
	for _, m := range signal.OrgTypeMatches(name) {
		res.addOrgType(OrgTypeHit{Type: m.Type, Source: EvidenceDisplayName, Tag: m.Tag})
	}
}

type tallyKey[T ~string] struct {
	label T
	tag   string
}

// tallyMessages counts, per (label, tag), the number of messages in
// the sample each rule fired on. Recurrence is counted per message,
// not per occurrence within a message.
func tallyMessages(sample []string) (map[tallyKey[taxonomy.Role]]int, map[tallyKey[taxonomy.Intent]]int) {
	roleTally := map[tallyKey[taxonomy.Role]]int{}
	intentTally := map[tallyKey[taxonomy.Intent]]int{}
	for _, msg := range sample {
		for _, h := range signal.Evaluate(signal.MsgRole, msg) {
			roleTally[tallyKey[taxonomy.Role]{h.Label, h.Tag}]++
		}
		for _, h := range signal.Evaluate(signal.MsgIntent, msg) {
			intentTally[tallyKey[taxonomy.Intent]{h.Label, h.Tag}]++
		}
	}
	return roleTally, intentTally
}

// flushTally converts tallied counts into one evidence row per
// (label, tag) with weight rule.Weight × log2(1+count). Iteration
// follows dictionary order so evidence output is deterministic.
func flushTally[T ~string](a *acc[T], rules []signal.Rule[T], tally map[tallyKey[T]]int) {
	for _, r := range rules {
		count := tally[tallyKey[T]{r.Label, r.Tag}]
		if count == 0 {
			continue
		}
		weight := r.Weight * math.Log2(1+float64(count))
		ref := fmt.Sprintf("msg:%s:count=%d", r.Tag, count)
		a.add(r.Label, EvidenceMessage, ref, weight)
	}
}

// addAffiliation merges a validated affiliation into the result using
// normalized-name collision with source precedence
// message > display_name > bio. Non-colliding names all persist.
func (r *Result) addAffiliation(a Affiliation) {
	key := orgname.Normalize(a.Name)
	for i, existing := range r.Affiliations {
		if orgname.Normalize(existing.Name) != key {
			continue
		}
		if sourceRank[a.Source] > sourceRank[existing.Source] {
			r.Affiliations[i] = a
		}
		return
	}
	r.Affiliations = append(r.Affiliations, a)
}

// addOrgType appends an org-type hit, deduplicated by type identity.
func (r *Result) addOrgType(h OrgTypeHit) {
	for _, existing := range r.OrgTypes {
		if existing.Type == h.Type {
			return
		}
	}
	r.OrgTypes = append(r.OrgTypes, h)
}

// rank applies a numerically stable softmax over the accumulator and
// returns labels sorted by probability descending. Ties keep the
// taxonomy enumeration order, which is stable and documented.
func rank[T ~string](a *acc[T]) []ScoredLabel[T] {
	maxScore := math.Inf(-1)
	for _, l := range a.order {
		if a.score[l] > maxScore {
			maxScore = a.score[l]
		}
	}

	var sum float64
	exps := make([]float64, len(a.order))
	for i, l := range a.order {
		exps[i] = math.Exp(a.score[l] - maxScore)
		sum += exps[i]
	}

	out := make([]ScoredLabel[T], len(a.order))
	for i, l := range a.order {
		out[i] = ScoredLabel[T]{
			Label:       l,
			Score:       a.score[l],
			Probability: exps[i] / sum,
			Evidence:    a.evidence[l],
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out
}

// gate applies the evidence and confidence thresholds to the
// top-ranked label of one dimension. It returns either an accepted
// claim or a gating note plus abstention record.
func gate[T ~string](dimension string, ranked []ScoredLabel[T], g taxonomy.Gating) (*ScoredLabel[T], string, *Abstention) {
	top := ranked[0]

	nonMembership := 0
	for _, e := range top.Evidence {
		if e.Type != EvidenceMembership {
			nonMembership++
		}
	}
	if nonMembership < g.MinNonMembershipEvidence {
		note := fmt.Sprintf("%s:%s GATED — only %d non-membership evidence (need ≥%d)",
			dimension, top.Label, nonMembership, g.MinNonMembershipEvidence)
		return nil, note, &Abstention{
			Dimension: dimension,
			Label:     string(top.Label),
			Code:      ReasonInsufficientEvidence,
			Details:   note,
		}
	}
	if top.Probability < g.MinClaimConfidence {
		note := fmt.Sprintf("%s:%s GATED — probability %.3f below %.3f",
			dimension, top.Label, top.Probability, g.MinClaimConfidence)
		return nil, note, &Abstention{
			Dimension: dimension,
			Label:     string(top.Label),
			Code:      ReasonLowConfidence,
			Details:   note,
		}
	}

	claim := top
	return &claim, "", nil
}
