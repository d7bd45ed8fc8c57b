package profile

import (
	"context"
	"testing"

	"github.com/hurttlocker/dossier/internal/score"
	"github.com/hurttlocker/dossier/internal/store"
	"github.com/hurttlocker/dossier/internal/taxonomy"
)

func newTestRunner(t *testing.T) (*Runner, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewStore(store.StoreConfig{DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewRunner(s, score.DefaultConfig()), s
}

func founderInput() score.UserInput {
	return score.UserInput{
		UserID:        "@founder",
		Bio:           "Founder & CEO at Acme Labs",
		GroupContexts: []string{"founders_lounge"},
	}
}

func lurkerInput() score.UserInput {
	return score.UserInput{
		UserID:        "@lurker",
		GroupContexts: []string{"general_chat"},
	}
}

func TestRunPersistsClaims(t *testing.T) {
	r, s := newTestRunner(t)
	ctx := context.Background()

	sum, results, err := r.Run(ctx, []score.UserInput{founderInput(), lurkerInput()}, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.UsersScored != 2 {
		t.Errorf("users scored = %d, want 2", sum.UsersScored)
	}
	if sum.RunID == "" {
		t.Error("expected a run id")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	claims, err := s.ListClaims(ctx, store.ClaimFilter{Subject: "@founder"})
	if err != nil {
		t.Fatalf("ListClaims failed: %v", err)
	}
	var role *store.Claim
	for _, c := range claims {
		if c.Predicate == PredicateRole {
			role = c
		}
	}
	if role == nil {
		t.Fatal("expected a persisted role claim")
	}
	if role.ObjectValue != string(taxonomy.RoleFounderExec) {
		t.Errorf("role object = %q", role.ObjectValue)
	}

	evidence, err := s.ClaimEvidence(ctx, role.ID)
	if err != nil {
		t.Fatalf("ClaimEvidence failed: %v", err)
	}
	if len(evidence) == 0 {
		t.Error("expected evidence attached to the role claim")
	}

	// The lurker has no non-membership evidence: abstentions, no role
	// claim.
	abstentions, err := s.ListAbstentions(ctx, "@lurker", 10)
	if err != nil {
		t.Fatalf("ListAbstentions failed: %v", err)
	}
	if len(abstentions) == 0 {
		t.Error("expected persisted abstentions for the lurker")
	}

	last, err := s.LastRun(ctx)
	if err != nil {
		t.Fatalf("LastRun failed: %v", err)
	}
	if last == nil || last.ID != sum.RunID {
		t.Errorf("run bookkeeping missing: %+v", last)
	}
	if last.UsersScored != 2 {
		t.Errorf("run users_scored = %d, want 2", last.UsersScored)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	r, s := newTestRunner(t)
	ctx := context.Background()

	sum, _, err := r.Run(ctx, []score.UserInput{founderInput()}, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sum.RunID != "" {
		t.Error("dry run must not create a run row")
	}
	if sum.ClaimsWritten == 0 {
		t.Error("dry run still counts would-be claims")
	}

	claims, err := s.ListClaims(ctx, store.ClaimFilter{})
	if err != nil {
		t.Fatalf("ListClaims failed: %v", err)
	}
	if len(claims) != 0 {
		t.Errorf("dry run wrote %d claims", len(claims))
	}
}

func TestRunIdempotent(t *testing.T) {
	r, s := newTestRunner(t)
	ctx := context.Background()

	inputs := []score.UserInput{founderInput()}
	if _, _, err := r.Run(ctx, inputs, Options{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, _, err := r.Run(ctx, inputs, Options{}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	claims, err := s.ListClaims(ctx, store.ClaimFilter{Subject: "@founder", Predicate: PredicateRole})
	if err != nil {
		t.Fatalf("ListClaims failed: %v", err)
	}
	if len(claims) != 1 {
		t.Errorf("re-running duplicated the role claim: %d rows", len(claims))
	}
}

func TestMaterializeStatus(t *testing.T) {
	r, _ := newTestRunner(t)

	res := r.Score(founderInput())
	if res.RoleClaim == nil {
		t.Fatal("expected a role claim")
	}

	// A threshold above the claim probability yields tentative status.
	claims, _ := r.Materialize(res, res.RoleClaim.Probability+0.01)
	for _, c := range claims {
		if c.Claim.Predicate == PredicateRole && c.Claim.Status != StatusTentative {
			t.Errorf("status = %q, want tentative", c.Claim.Status)
		}
	}

	claims, _ = r.Materialize(res, res.RoleClaim.Probability-0.01)
	for _, c := range claims {
		if c.Claim.Predicate == PredicateRole && c.Claim.Status != StatusSupported {
			t.Errorf("status = %q, want supported", c.Claim.Status)
		}
	}
}

func TestMaterializeAffiliations(t *testing.T) {
	r, _ := newTestRunner(t)

	res := r.Score(founderInput())
	claims, _ := r.Materialize(res, 0.5)

	var affil *ClaimWithEvidence
	for i := range claims {
		if claims[i].Claim.Predicate == PredicateAffiliation {
			affil = &claims[i]
		}
	}
	if affil == nil {
		t.Fatal("expected an affiliation claim")
	}
	if affil.Claim.ObjectValue != "Acme Labs" {
		t.Errorf("affiliation object = %q", affil.Claim.ObjectValue)
	}
	if affil.Claim.Status != StatusSupported || affil.Claim.Probability != 1 {
		t.Errorf("affiliation claim: %+v", affil.Claim)
	}
	if len(affil.Evidence) != 1 || affil.Evidence[0].EvidenceRef != "affil:title_at" {
		t.Errorf("affiliation evidence: %+v", affil.Evidence)
	}
}

func TestMaterializeAbstentions(t *testing.T) {
	r, _ := newTestRunner(t)

	res := r.Score(lurkerInput())
	_, abstentions := r.Materialize(res, 0.5)
	if len(abstentions) != 2 {
		t.Fatalf("expected role and intent abstentions, got %d", len(abstentions))
	}
	for _, a := range abstentions {
		if a.Subject != "@lurker" {
			t.Errorf("subject = %q", a.Subject)
		}
		if a.ModelVersion == "" {
			t.Error("abstention must carry the model version")
		}
	}
}
