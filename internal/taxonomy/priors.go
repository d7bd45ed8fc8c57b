package taxonomy

// Priors maps group-context tags to baseline role/intent weights.
//
// A prior is a weak membership signal: being in a "BD in Web3" group
// nudges the bd role before any personal text is read. Missing contexts
// contribute nothing; they are never an error. Priors are versioned so
// two scoring runs with different tables can be compared side by side.
type Priors struct {
	Version string
	Role    map[string]map[Role]float64
	Intent  map[string]map[Intent]float64
}

// RoleWeights returns the role prior weights for a group context.
// Unknown contexts return an empty map.
func (p Priors) RoleWeights(context string) map[Role]float64 {
	if w, ok := p.Role[context]; ok {
		return w
	}
	return nil
}

// IntentWeights returns the intent prior weights for a group context.
func (p Priors) IntentWeights(context string) map[Intent]float64 {
	if w, ok := p.Intent[context]; ok {
		return w
	}
	return nil
}

// DefaultPriors returns the built-in priors table for the Telegram
// group contexts the collector currently exports. Weights are small on
// purpose: a prior alone should essentially never survive gating.
func DefaultPriors() Priors {
	return Priors{
		Version: "priors-2025-08",
		Role: map[string]map[Role]float64{
			"bd_in_web3": {
				RoleBD:          0.6,
				RoleFounderExec: 0.2,
			},
			"founders_lounge": {
				RoleFounderExec: 0.6,
				RoleBuilder:     0.2,
			},
			"web3_jobs": {
				RoleRecruiter: 0.4,
				RoleBuilder:   0.2,
			},
			"trading_desk": {
				RoleMarketMaker:     0.5,
				RoleInvestorAnalyst: 0.3,
			},
			"kol_marketing": {
				RoleMediaKOL:     0.5,
				RoleVendorAgency: 0.3,
			},
			"general_chat": {
				RoleCommunity: 0.2,
			},
		},
		Intent: map[string]map[Intent]float64{
			"bd_in_web3": {
				IntentPartnerships: 0.5,
				IntentNetworking:   0.2,
			},
			"founders_lounge": {
				IntentFundraising: 0.3,
				IntentNetworking:  0.2,
			},
			"web3_jobs": {
				IntentHiring:     0.3,
				IntentJobSeeking: 0.3,
			},
			"kol_marketing": {
				IntentSelling: 0.4,
			},
			"general_chat": {
				IntentNetworking: 0.1,
			},
		},
	}
}
