package score

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/hurttlocker/dossier/internal/taxonomy"
)

func scoreOf[T ~string](ranked []ScoredLabel[T], label T) float64 {
	for _, s := range ranked {
		if s.Label == label {
			return s.Score
		}
	}
	return math.NaN()
}

func probOf[T ~string](ranked []ScoredLabel[T], label T) float64 {
	for _, s := range ranked {
		if s.Label == label {
			return s.Probability
		}
	}
	return math.NaN()
}

func TestScoreUserDeterministic(t *testing.T) {
	input := UserInput{
		UserID:        "@alice",
		DisplayName:   "Alice | Gate.io BD",
		Bio:           "Partnerships lead, open to partnerships",
		GroupContexts: []string{"bd_in_web3"},
		Messages: []string{
			"let's partner on a listing",
			"open to collabs, let's integrate",
			"dm me if interested",
		},
		MessageCount: 3,
	}
	cfg := DefaultConfig()

	first := ScoreUser(input, cfg)
	second := ScoreUser(input, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over the same input diverged")
	}
}

// Softmax output per dimension must sum to 1 and be ranked descending.
func TestProbabilityConservation(t *testing.T) {
	inputs := []UserInput{
		{UserID: "@empty"},
		{UserID: "@bio", Bio: "Founder & CEO at Acme Labs"},
		{
			UserID:        "@full",
			DisplayName:   "Bob | BizDev",
			Bio:           "Partnerships lead",
			GroupContexts: []string{"bd_in_web3", "founders_lounge"},
			Messages:      []string{"let's partner on a listing", "we're hiring"},
			MessageCount:  2,
		},
	}
	cfg := DefaultConfig()

	for _, input := range inputs {
		res := ScoreUser(input, cfg)

		var roleSum float64
		for i, s := range res.RoleScores {
			roleSum += s.Probability
			if i > 0 && s.Probability > res.RoleScores[i-1].Probability {
				t.Errorf("%s: role ranking not descending at %d", input.UserID, i)
			}
		}
		if math.Abs(roleSum-1) > 1e-9 {
			t.Errorf("%s: role probabilities sum to %v", input.UserID, roleSum)
		}

		var intentSum float64
		for _, s := range res.IntentScores {
			intentSum += s.Probability
		}
		if math.Abs(intentSum-1) > 1e-9 {
			t.Errorf("%s: intent probabilities sum to %v", input.UserID, intentSum)
		}

		if len(res.RoleScores) != len(taxonomy.Roles) {
			t.Errorf("%s: expected all %d roles ranked, got %d", input.UserID, len(taxonomy.Roles), len(res.RoleScores))
		}
	}
}

// With zero evidence every label ties; tie order is the taxonomy
// enumeration order.
func TestEmptyInputTieOrder(t *testing.T) {
	res := ScoreUser(UserInput{UserID: "@ghost"}, DefaultConfig())
	for i, s := range res.RoleScores {
		if s.Label != taxonomy.Roles[i] {
			t.Fatalf("tie order broken at %d: got %s, want %s", i, s.Label, taxonomy.Roles[i])
		}
		if s.Score != 0 {
			t.Errorf("expected zero score, got %v for %s", s.Score, s.Label)
		}
	}
	if res.RoleClaim != nil || res.IntentClaim != nil {
		t.Error("expected both dimensions gated on empty input")
	}
}

// Membership priors alone must never survive gating: the top label has
// no non-membership evidence.
func TestPriorOnlyGated(t *testing.T) {
	res := ScoreUser(UserInput{
		UserID:        "@lurker",
		Bio:           "crypto enthusiast",
		GroupContexts: []string{"general_chat"},
	}, DefaultConfig())

	if res.RoleClaim != nil {
		t.Fatalf("expected gated role, got claim %+v", res.RoleClaim)
	}
	if len(res.GatingNotes) == 0 {
		t.Fatal("expected gating notes")
	}
	found := false
	for _, note := range res.GatingNotes {
		if strings.Contains(note, "role:community GATED") && strings.Contains(note, "non-membership") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected role:community insufficient-evidence note, got %v", res.GatingNotes)
	}

	var abst *Abstention
	for i := range res.Abstentions {
		if res.Abstentions[i].Dimension == "role" {
			abst = &res.Abstentions[i]
		}
	}
	if abst == nil {
		t.Fatal("expected a role abstention")
	}
	if abst.Code != ReasonInsufficientEvidence {
		t.Errorf("reason = %q, want %q", abst.Code, ReasonInsufficientEvidence)
	}
}

// One strong bio title plus the matching membership prior clears both
// gates.
func TestBioTitleAccepted(t *testing.T) {
	res := ScoreUser(UserInput{
		UserID:        "@founder",
		Bio:           "Founder & CEO at Acme Labs",
		GroupContexts: []string{"founders_lounge"},
	}, DefaultConfig())

	if res.RoleClaim == nil {
		t.Fatalf("expected accepted role claim, notes: %v", res.GatingNotes)
	}
	if res.RoleClaim.Label != taxonomy.RoleFounderExec {
		t.Errorf("role = %s, want founder_exec", res.RoleClaim.Label)
	}
	if res.RoleClaim.Probability < 0.35 {
		t.Errorf("probability %v below confidence gate", res.RoleClaim.Probability)
	}

	// Score decomposes exactly into the evidence rows.
	var sum float64
	for _, e := range res.RoleClaim.Evidence {
		sum += e.Weight
	}
	if math.Abs(sum-res.RoleClaim.Score) > 1e-9 {
		t.Errorf("evidence sums to %v, score is %v", sum, res.RoleClaim.Score)
	}

	// The affiliation side channel picked up the org.
	if len(res.Affiliations) != 1 || res.Affiliations[0].Name != "Acme Labs" {
		t.Errorf("affiliations = %+v, want Acme Labs", res.Affiliations)
	}
	if res.Affiliations[0].Source != EvidenceBio {
		t.Errorf("affiliation source = %s, want bio", res.Affiliations[0].Source)
	}
}

// The compound BizDev display name credits bd and debits builder by
// the same amount, with both corrections in the evidence trail.
func TestBizDevOverride(t *testing.T) {
	res := ScoreUser(UserInput{
		UserID:      "@bd",
		DisplayName: "Bob | Business Developer",
	}, DefaultConfig())

	bd := scoreOf(res.RoleScores, taxonomy.RoleBD)
	builder := scoreOf(res.RoleScores, taxonomy.RoleBuilder)

	// bd gets the bonus plus the generic "developer" name rule would
	// have gone to builder; builder nets to the generic weight minus
	// the correction.
	if bd <= builder {
		t.Errorf("bd score %v should exceed builder %v", bd, builder)
	}
	if builder >= 0 {
		t.Errorf("builder score %v should be negative after the correction", builder)
	}

	var sawBonus, sawCorrection bool
	for _, s := range res.RoleScores {
		for _, e := range s.Evidence {
			switch e.Ref {
			case "name:bizdev_phrase":
				sawBonus = true
			case "name:bizdev_not_builder":
				sawCorrection = true
				if e.Weight >= 0 {
					t.Errorf("correction weight %v should be negative", e.Weight)
				}
			}
		}
	}
	if !sawBonus || !sawCorrection {
		t.Error("both override rows must appear in the evidence trail")
	}
}

// Message log2 damping: N identical hits weigh rule.Weight*log2(1+N),
// not rule.Weight*N.
func TestMessageTallyDamping(t *testing.T) {
	msgs := []string{
		"let's partner on this", "let's partner on this", "let's partner on this",
	}
	res := ScoreUser(UserInput{UserID: "@spam", Messages: msgs, MessageCount: 3}, DefaultConfig())

	bd := scoreOf(res.RoleScores, taxonomy.RoleBD)
	want := 1.2 * math.Log2(4)
	if math.Abs(bd-want) > 1e-9 {
		t.Errorf("bd score = %v, want %v", bd, want)
	}

	found := false
	for _, s := range res.RoleScores {
		for _, e := range s.Evidence {
			if e.Ref == "msg:bd_action:count=3" {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected tallied evidence ref msg:bd_action:count=3")
	}
}

// A display-name affiliation and a message affiliation for the same
// normalized org collapse to one entry with the message source
// winning; distinct orgs both persist.
func TestAffiliationPrecedence(t *testing.T) {
	res := ScoreUser(UserInput{
		UserID:      "@alice",
		DisplayName: "Alice | Gate.io BD",
		Messages:    []string{"I'm from Gate, happy to discuss listings", "we're building RealCo"},
	}, DefaultConfig())

	var gate, realco *Affiliation
	for i := range res.Affiliations {
		switch res.Affiliations[i].Name {
		case "Gate.io", "Gate":
			gate = &res.Affiliations[i]
		case "RealCo":
			realco = &res.Affiliations[i]
		}
	}
	if gate == nil || realco == nil {
		t.Fatalf("expected both orgs, got %+v", res.Affiliations)
	}
	if gate.Source != EvidenceMessage {
		t.Errorf("colliding org kept source %s, want message to win", gate.Source)
	}
	if len(res.Affiliations) != 2 {
		t.Errorf("expected exactly 2 affiliations, got %+v", res.Affiliations)
	}
}

// Directory operators: bd evidence is voided entirely and
// vendor_agency takes the override bonus.
func TestDirectoryOperatorOverride(t *testing.T) {
	res := ScoreUser(UserInput{
		UserID: "@dir",
		Messages: []string{
			"let's partner on a listing",
			"we listed your project on our directory",
		},
		MessageCount: 2,
	}, DefaultConfig())

	bd := scoreOf(res.RoleScores, taxonomy.RoleBD)
	if bd != 0 {
		t.Errorf("bd score = %v, want 0 after directory override", bd)
	}
	for _, s := range res.RoleScores {
		if s.Label == taxonomy.RoleBD && len(s.Evidence) != 0 {
			t.Errorf("bd evidence should be voided, got %+v", s.Evidence)
		}
	}

	vendor := scoreOf(res.RoleScores, taxonomy.RoleVendorAgency)
	if vendor <= directoryOverrideBonus {
		t.Errorf("vendor score %v should include directory hits plus the %v bonus", vendor, directoryOverrideBonus)
	}
	if res.RoleScores[0].Label != taxonomy.RoleVendorAgency {
		t.Errorf("top role = %s, want vendor_agency", res.RoleScores[0].Label)
	}
}

// The vendor affiliation bonus needs both a message affiliation and
// message vendor evidence; either alone does nothing.
func TestVendorAffiliationBonus(t *testing.T) {
	with := ScoreUser(UserInput{
		UserID:   "@vendor",
		Messages: []string{"I'm from PixelPush, our packages start at 2k"},
	}, DefaultConfig())

	found := false
	for _, s := range with.RoleScores {
		for _, e := range s.Evidence {
			if e.Ref == "msg:vendor_affiliation" {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected vendor_affiliation bonus row")
	}

	without := ScoreUser(UserInput{
		UserID:   "@neutral",
		Messages: []string{"I'm from PixelPush, nice to meet everyone"},
	}, DefaultConfig())
	for _, s := range without.RoleScores {
		for _, e := range s.Evidence {
			if e.Ref == "msg:vendor_affiliation" {
				t.Error("bonus must not fire without vendor message evidence")
			}
		}
	}
}

// Feature evidence requires the sample-size floor.
func TestFeatureFloor(t *testing.T) {
	cfg := DefaultConfig()

	below := ScoreUser(UserInput{
		UserID:       "@quiet",
		MessageCount: cfg.MinFeatureMessages - 1,
		ReplyCount:   cfg.MinFeatureMessages - 1,
		MentionCount: cfg.MentionFloor + 5,
	}, cfg)
	for _, s := range below.IntentScores {
		for _, e := range s.Evidence {
			if e.Type == EvidenceFeature {
				t.Errorf("feature evidence fired below the floor: %+v", e)
			}
		}
	}

	above := ScoreUser(UserInput{
		UserID:           "@active",
		MessageCount:     cfg.MinFeatureMessages,
		ReplyCount:       cfg.MinFeatureMessages, // ratio 1.0
		MentionCount:     cfg.MentionFloor,
		DistinctContexts: cfg.DistinctContextFloor,
	}, cfg)
	refs := map[string]bool{}
	for _, s := range above.IntentScores {
		for _, e := range s.Evidence {
			if e.Type == EvidenceFeature {
				refs[e.Ref] = true
			}
		}
	}
	for _, want := range []string{"feature:reply_ratio", "feature:mentions", "feature:multi_group"} {
		if !refs[want] {
			t.Errorf("missing feature evidence %s, got %v", want, refs)
		}
	}
}

// A zero floor means no floor: features still fire on a tiny sample.
func TestFeatureFloorZeroDisablesNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinFeatureMessages = 0

	res := ScoreUser(UserInput{
		UserID:       "@sparse",
		MessageCount: 2,
		ReplyCount:   2, // ratio 1.0
		MentionCount: cfg.MentionFloor,
	}, cfg)
	refs := map[string]bool{}
	for _, s := range res.IntentScores {
		for _, e := range s.Evidence {
			if e.Type == EvidenceFeature {
				refs[e.Ref] = true
			}
		}
	}
	for _, want := range []string{"feature:reply_ratio", "feature:mentions"} {
		if !refs[want] {
			t.Errorf("missing feature evidence %s with zero floor, got %v", want, refs)
		}
	}

	// Zero messages must not produce a NaN reply ratio or any scores
	// outside [0,1].
	empty := ScoreUser(UserInput{UserID: "@silent"}, cfg)
	for _, s := range empty.IntentScores {
		if math.IsNaN(s.Probability) {
			t.Fatalf("NaN probability for %s with zero messages", s.Label)
		}
	}
}

// Raising either gate threshold can only turn claims into abstentions,
// never the reverse.
func TestGatingMonotonicity(t *testing.T) {
	input := UserInput{
		UserID:        "@founder",
		Bio:           "Founder & CEO at Acme Labs",
		GroupContexts: []string{"founders_lounge"},
	}

	loose := DefaultConfig()
	res := ScoreUser(input, loose)
	if res.RoleClaim == nil {
		t.Fatal("expected claim under default gating")
	}

	strict := DefaultConfig()
	strict.Gating.MinClaimConfidence = res.RoleClaim.Probability + 0.01
	gated := ScoreUser(input, strict)
	if gated.RoleClaim != nil {
		t.Error("raising the confidence gate should suppress the claim")
	}

	stricter := DefaultConfig()
	stricter.Gating.MinNonMembershipEvidence = 10
	gated = ScoreUser(input, stricter)
	if gated.RoleClaim != nil {
		t.Error("raising the evidence gate should suppress the claim")
	}
	if len(gated.Abstentions) == 0 || gated.Abstentions[0].Code != ReasonInsufficientEvidence {
		t.Errorf("expected insufficient_evidence abstention, got %+v", gated.Abstentions)
	}
}

// The low-confidence gating note carries the probability and the
// threshold in the documented format.
func TestLowConfidenceNoteFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gating.MinClaimConfidence = 0.99
	res := ScoreUser(UserInput{
		UserID: "@founder",
		Bio:    "Founder & CEO at Acme Labs",
	}, cfg)

	if res.RoleClaim != nil {
		t.Fatal("expected gated claim")
	}
	found := false
	for _, note := range res.GatingNotes {
		if strings.Contains(note, "role:founder_exec GATED") && strings.Contains(note, "below 0.990") {
			found = true
		}
	}
	if !found {
		t.Errorf("unexpected note format: %v", res.GatingNotes)
	}
}

// Org types ride along from the display name without touching scores.
func TestOrgTypeSideChannel(t *testing.T) {
	typed := ScoreUser(UserInput{UserID: "@a", DisplayName: "Alice | Gate.io BD"}, DefaultConfig())

	if len(typed.OrgTypes) != 1 || typed.OrgTypes[0].Type != taxonomy.OrgExchange {
		t.Fatalf("org types = %+v, want exchange", typed.OrgTypes)
	}

	for _, s := range typed.RoleScores {
		for _, e := range s.Evidence {
			if strings.HasPrefix(e.Ref, "name:exchange") {
				t.Error("org type hits must not produce score evidence")
			}
		}
	}
}

// The message sample cap bounds the dictionary scan.
func TestMessageSampleCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MessageSampleCap = 1

	msgs := []string{
		"nothing interesting here",
		"let's partner on a listing",
	}
	res := ScoreUser(UserInput{UserID: "@capped", Messages: msgs, MessageCount: 2}, cfg)
	if bd := scoreOf(res.RoleScores, taxonomy.RoleBD); bd != 0 {
		t.Errorf("bd score = %v, want 0: second message is past the cap", bd)
	}
}
