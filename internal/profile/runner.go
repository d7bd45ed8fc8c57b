// Package profile orchestrates scoring runs: it feeds assembled
// member inputs through the inference engine and persists the output
// as claims, evidence, and abstentions.
//
// The engine is pure, so the runner owns all the I/O decisions: claim
// status derivation, per-user transactional writes, and run
// bookkeeping. Runs are resumable because every write is idempotent
// per subject and model version.
package profile

import (
	"context"
	"fmt"

	"github.com/hurttlocker/dossier/internal/score"
	"github.com/hurttlocker/dossier/internal/store"
)

// Claim predicates written by the runner.
const (
	PredicateRole        = "role"
	PredicateIntent      = "intent"
	PredicateAffiliation = "affiliated_with"
	PredicateOrgType     = "org_type"
)

// Claim statuses. A claim can clear the gating threshold yet still be
// displayed as tentative: DisplayThreshold is looser than gating on
// purpose.
const (
	StatusSupported = "supported"
	StatusTentative = "tentative"
)

// Options configures one scoring run.
type Options struct {
	// DryRun scores everything but writes nothing.
	DryRun bool

	// DisplayThreshold is the probability above which a claim is
	// marked supported rather than tentative.
	DisplayThreshold float64
}

// Summary reports what a run did.
type Summary struct {
	RunID         string
	UsersScored   int
	ClaimsWritten int
	Abstentions   int
}

// Runner drives scoring runs against one store.
type Runner struct {
	store *store.SQLiteStore
	cfg   score.Config
}

// NewRunner creates a runner with the given engine configuration.
func NewRunner(st *store.SQLiteStore, cfg score.Config) *Runner {
	return &Runner{store: st, cfg: cfg}
}

// Score runs the engine over one input without touching storage.
func (r *Runner) Score(input score.UserInput) score.Result {
	return score.ScoreUser(input, r.cfg)
}

// Run scores every input and persists the results. Each user's writes
// are independent; an interrupted run can simply be re-run.
func (r *Runner) Run(ctx context.Context, inputs []score.UserInput, opts Options) (*Summary, []score.Result, error) {
	if opts.DisplayThreshold <= 0 {
		opts.DisplayThreshold = 0.5
	}

	sum := &Summary{}
	results := make([]score.Result, 0, len(inputs))

	if !opts.DryRun {
		runID, err := r.store.BeginRun(ctx, r.cfg.ModelVersion, r.cfg.Priors.Version)
		if err != nil {
			return nil, nil, fmt.Errorf("starting run: %w", err)
		}
		sum.RunID = runID
	}

	for _, input := range inputs {
		res := score.ScoreUser(input, r.cfg)
		results = append(results, res)
		sum.UsersScored++

		claims, abstentions := r.Materialize(res, opts.DisplayThreshold)
		sum.ClaimsWritten += len(claims)
		sum.Abstentions += len(abstentions)

		if opts.DryRun {
			continue
		}
		for i := range claims {
			if _, err := r.store.WriteClaim(ctx, &claims[i].Claim, claims[i].Evidence); err != nil {
				return nil, nil, fmt.Errorf("writing claim for %s: %w", res.UserID, err)
			}
		}
		for i := range abstentions {
			if _, err := r.store.WriteAbstention(ctx, &abstentions[i]); err != nil {
				return nil, nil, fmt.Errorf("writing abstention for %s: %w", res.UserID, err)
			}
		}
	}

	if !opts.DryRun {
		if err := r.store.FinishRun(ctx, sum.RunID, sum.UsersScored, sum.ClaimsWritten, sum.Abstentions); err != nil {
			return nil, nil, err
		}
	}
	return sum, results, nil
}

// ClaimWithEvidence pairs a claim row with its evidence set.
type ClaimWithEvidence struct {
	Claim    store.Claim
	Evidence []store.Evidence
}

// Materialize converts one engine result into the rows a run writes.
func (r *Runner) Materialize(res score.Result, displayThreshold float64) ([]ClaimWithEvidence, []store.Abstention) {
	var claims []ClaimWithEvidence

	if res.RoleClaim != nil {
		claims = append(claims, ClaimWithEvidence{
			Claim: store.Claim{
				Subject:      res.UserID,
				Predicate:    PredicateRole,
				ObjectValue:  string(res.RoleClaim.Label),
				Probability:  res.RoleClaim.Probability,
				Status:       statusFor(res.RoleClaim.Probability, displayThreshold),
				ModelVersion: r.cfg.ModelVersion,
			},
			Evidence: toStoreEvidence(res.RoleClaim.Evidence),
		})
	}
	if res.IntentClaim != nil {
		claims = append(claims, ClaimWithEvidence{
			Claim: store.Claim{
				Subject:      res.UserID,
				Predicate:    PredicateIntent,
				ObjectValue:  string(res.IntentClaim.Label),
				Probability:  res.IntentClaim.Probability,
				Status:       statusFor(res.IntentClaim.Probability, displayThreshold),
				ModelVersion: r.cfg.ModelVersion,
			},
			Evidence: toStoreEvidence(res.IntentClaim.Evidence),
		})
	}

	for _, a := range res.Affiliations {
		claims = append(claims, ClaimWithEvidence{
			Claim: store.Claim{
				Subject:      res.UserID,
				Predicate:    PredicateAffiliation,
				ObjectValue:  a.Name,
				Probability:  1,
				Status:       StatusSupported,
				Notes:        "source=" + a.Source,
				ModelVersion: r.cfg.ModelVersion,
			},
			Evidence: []store.Evidence{{
				EvidenceType: a.Source,
				EvidenceRef:  "affil:" + a.Tag,
				Weight:       1,
			}},
		})
	}
	for _, o := range res.OrgTypes {
		claims = append(claims, ClaimWithEvidence{
			Claim: store.Claim{
				Subject:      res.UserID,
				Predicate:    PredicateOrgType,
				ObjectValue:  string(o.Type),
				Probability:  1,
				Status:       StatusSupported,
				Notes:        "source=" + o.Source,
				ModelVersion: r.cfg.ModelVersion,
			},
			Evidence: []store.Evidence{{
				EvidenceType: o.Source,
				EvidenceRef:  "name:" + o.Tag,
				Weight:       1,
			}},
		})
	}

	var abstentions []store.Abstention
	for _, a := range res.Abstentions {
		abstentions = append(abstentions, store.Abstention{
			Subject:      res.UserID,
			Predicate:    a.Dimension,
			ReasonCode:   a.Code,
			Details:      a.Details,
			ModelVersion: r.cfg.ModelVersion,
		})
	}

	return claims, abstentions
}

func statusFor(probability, displayThreshold float64) string {
	if probability >= displayThreshold {
		return StatusSupported
	}
	return StatusTentative
}

func toStoreEvidence(rows []score.EvidenceRow) []store.Evidence {
	out := make([]store.Evidence, len(rows))
	for i, e := range rows {
		out[i] = store.Evidence{
			EvidenceType: e.Type,
			EvidenceRef:  e.Ref,
			Weight:       e.Weight,
		}
	}
	return out
}
