package claim

import (
	"math/rand"
	"sort"
	"testing"

	"aireliance/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBank(t *testing.T) {
	bank := DefaultBank()
	require.Equal(t, 20, bank.Len())

	trueCount := 0
	for _, c := range bank.Claims() {
		if c.GroundTruth {
			trueCount++
		}
	}
	assert.Equal(t, 8, trueCount)
}

func TestNewBank_Validation(t *testing.T) {
	_, err := NewBank(nil)
	assert.ErrorIs(t, err, core.ErrEmptyClaimBank)

	_, err = NewBank([]Claim{{ID: 1, Text: "a"}, {ID: 1, Text: "b"}})
	assert.ErrorIs(t, err, core.ErrInvalidClaimBank)

	_, err = NewBank([]Claim{{ID: 1, Text: ""}})
	assert.ErrorIs(t, err, core.ErrInvalidClaimBank)
}

func TestBank_ClaimsIsACopy(t *testing.T) {
	bank := DefaultBank()
	claims := bank.Claims()
	claims[0].Text = "mutated"

	assert.NotEqual(t, "mutated", bank.Claims()[0].Text)
}

func TestGenerateOrder_IsPermutation(t *testing.T) {
	claims := DefaultClaims()
	order, err := GenerateOrder(claims, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.Len(t, order, len(claims))

	ids := order.IDs()
	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id, "permutation must contain every claim exactly once")
	}

	// input left untouched
	assert.Equal(t, 1, claims[0].ID)
}

func TestGenerateOrder_DeterministicForSeed(t *testing.T) {
	a, err := GenerateOrder(DefaultClaims(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := GenerateOrder(DefaultClaims(), rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	assert.Equal(t, a.IDs(), b.IDs())
}

func TestGenerateOrder_RoughlyUniform(t *testing.T) {
	claims := []Claim{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}, {ID: 3, Text: "c"}}
	rng := rand.New(rand.NewSource(1))

	const runs = 6000
	firstCounts := map[int]int{}
	for i := 0; i < runs; i++ {
		order, err := GenerateOrder(claims, rng)
		require.NoError(t, err)
		firstCounts[order[0].ID]++
	}

	for id := 1; id <= 3; id++ {
		assert.InDelta(t, runs/3, firstCounts[id], runs*0.05, "claim %d leads too often or too rarely", id)
	}
}

func TestGenerateOrder_Errors(t *testing.T) {
	_, err := GenerateOrder(nil, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, core.ErrEmptyClaimBank)

	_, err = GenerateOrder(DefaultClaims(), nil)
	assert.ErrorIs(t, err, core.ErrInvalidSchedule)
}
