package signal

import "testing"

func captureRaws(caps []Capture) []string {
	out := make([]string, len(caps))
	for i, c := range caps {
		out[i] = c.Raw
	}
	return out
}

func TestBioAffiliationCandidates(t *testing.T) {
	cases := []struct {
		bio  string
		want string
		tag  string
	}{
		{"Founder & CEO at Acme Labs", "Acme Labs", "title_at"},
		{"BD @ Gate.io", "Gate.io", "title_at"},
		{"working at Wintermute since 2022", "Wintermute since 2022", "works_at"},
		{"building RealCo with friends", "RealCo with friends", "building"},
	}
	for _, tc := range cases {
		caps := BioAffiliationCandidates(tc.bio)
		found := false
		for _, c := range caps {
			if c.Raw == tc.want && c.Tag == tc.tag {
				found = true
			}
		}
		if !found {
			t.Errorf("bio %q: expected capture %q/%s, got %v", tc.bio, tc.want, tc.tag, captureRaws(caps))
		}
	}
}

func TestBioAffiliationNoMatch(t *testing.T) {
	if caps := BioAffiliationCandidates("just here for the memes"); caps != nil {
		t.Errorf("expected no captures, got %v", captureRaws(caps))
	}
}

func TestMsgAffiliationCandidates(t *testing.T) {
	caps := MsgAffiliationCandidates("hey all, I'm from RealCo, looking into integrations")
	if len(caps) != 1 || caps[0].Tag != "self_from" {
		t.Fatalf("expected one self_from capture, got %v", captureRaws(caps))
	}

	caps = MsgAffiliationCandidates("we're building Acme Labs on Base")
	if len(caps) == 0 || caps[0].Tag != "we_building" {
		t.Fatalf("expected we_building capture, got %v", captureRaws(caps))
	}

	caps = MsgAffiliationCandidates("representing Nexo at the panel tomorrow")
	if len(caps) == 0 || caps[0].Tag != "representing" {
		t.Fatalf("expected representing capture, got %v", captureRaws(caps))
	}
}

// Third-person introductions and questions must capture nothing: they
// describe someone else.
func TestMsgAffiliationRejects(t *testing.T) {
	rejects := []string{
		"adding @carol here, she is from Gate.io",
		"anyone from Binance here?",
		"is he from Wintermute",
		"are you working at Acme Labs?",
	}
	for _, text := range rejects {
		if caps := MsgAffiliationCandidates(text); caps != nil && len(caps) > 0 {
			t.Errorf("message %q: expected no captures, got %v", text, captureRaws(caps))
		}
	}
}

// A capture after an @handle belongs to the handle's owner, not the
// speaker.
func TestMsgAffiliationHandlePrecedes(t *testing.T) {
	caps := MsgAffiliationCandidates("@dave is the guy representing Nexo btw")
	if len(caps) != 0 {
		t.Errorf("expected handle-preceded capture to be skipped, got %v", captureRaws(caps))
	}
}

func TestNameAffiliationCandidates(t *testing.T) {
	// "Company Role" in a later segment: title suffix stripped.
	caps := NameAffiliationCandidates("Alice | Gate.io BD")
	if len(caps) != 1 || caps[0].Raw != "Gate.io" || caps[0].Tag != "name_segment" {
		t.Fatalf("expected Gate.io name_segment, got %+v", caps)
	}

	// "Role @ Company" form works in any segment.
	caps = NameAffiliationCandidates("Bob | BD @ Binance")
	if len(caps) != 1 || caps[0].Raw != "Binance" || caps[0].Tag != "name_at" {
		t.Fatalf("expected Binance name_at, got %+v", caps)
	}

	// Title prefix stripped from a later segment.
	caps = NameAffiliationCandidates("Carol | Head of Growth Acme Labs")
	if len(caps) != 1 || caps[0].Raw != "Acme Labs" {
		t.Fatalf("expected Acme Labs, got %+v", caps)
	}

	// A bare first segment is the person's name, never an org.
	if caps := NameAffiliationCandidates("Dave Smith"); len(caps) != 0 {
		t.Errorf("expected no captures for a bare name, got %+v", caps)
	}

	// Empty segments are skipped.
	if caps := NameAffiliationCandidates("Erin | "); len(caps) != 0 {
		t.Errorf("expected no captures, got %+v", caps)
	}
}
