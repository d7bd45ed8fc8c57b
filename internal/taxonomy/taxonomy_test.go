package taxonomy

import "testing"

func TestLabelSetsExcludeUnknown(t *testing.T) {
	for _, r := range Roles {
		if r == RoleUnknown {
			t.Error("unknown sentinel must not appear in the role set")
		}
	}
	for _, i := range Intents {
		if i == IntentUnknown {
			t.Error("unknown sentinel must not appear in the intent set")
		}
	}
}

func TestLabelSetsUnique(t *testing.T) {
	seen := map[Role]bool{}
	for _, r := range Roles {
		if seen[r] {
			t.Errorf("duplicate role %s", r)
		}
		seen[r] = true
	}
	seenIntent := map[Intent]bool{}
	for _, i := range Intents {
		if seenIntent[i] {
			t.Errorf("duplicate intent %s", i)
		}
		seenIntent[i] = true
	}
}

// Every prior weight must reference a label in the closed set; a typo
// in the priors table would otherwise leak scores nowhere.
func TestPriorsReferenceKnownLabels(t *testing.T) {
	p := DefaultPriors()
	if p.Version == "" {
		t.Error("priors must be versioned")
	}

	roleSet := map[Role]bool{}
	for _, r := range Roles {
		roleSet[r] = true
	}
	for ctx, weights := range p.Role {
		for label, w := range weights {
			if !roleSet[label] {
				t.Errorf("context %s references unknown role %s", ctx, label)
			}
			if w <= 0 || w >= 1 {
				t.Errorf("prior %s/%s weight %v out of the weak-signal range", ctx, label, w)
			}
		}
	}

	intentSet := map[Intent]bool{}
	for _, i := range Intents {
		intentSet[i] = true
	}
	for ctx, weights := range p.Intent {
		for label, w := range weights {
			if !intentSet[label] {
				t.Errorf("context %s references unknown intent %s", ctx, label)
			}
			if w <= 0 || w >= 1 {
				t.Errorf("prior %s/%s weight %v out of the weak-signal range", ctx, label, w)
			}
		}
	}
}

func TestUnknownContextHasNoWeights(t *testing.T) {
	p := DefaultPriors()
	if w := p.RoleWeights("no_such_group"); w != nil {
		t.Errorf("unknown context returned weights: %v", w)
	}
	if w := p.IntentWeights("no_such_group"); w != nil {
		t.Errorf("unknown context returned weights: %v", w)
	}
}
