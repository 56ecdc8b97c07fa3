package claim

import (
	"math/rand"

	"aireliance/domain/core"
)

// TrialOrder is the per-session presentation order of the claim bank
type TrialOrder []Claim

// GenerateOrder returns a uniform random permutation of claims using a
// Fisher-Yates shuffle driven by rng. The input slice is not modified.
func GenerateOrder(claims []Claim, rng *rand.Rand) (TrialOrder, error) {
	if len(claims) == 0 {
		return nil, core.ErrEmptyClaimBank
	}
	if rng == nil {
		return nil, core.NewScheduleError("randomizer source is nil")
	}

	order := make(TrialOrder, len(claims))
	copy(order, claims)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order, nil
}

// IDs returns the claim identifiers in presentation order
func (o TrialOrder) IDs() []int {
	ids := make([]int, len(o))
	for i, c := range o {
		ids[i] = c.ID
	}
	return ids
}
