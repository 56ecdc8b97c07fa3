package claim

import (
	"fmt"

	"aireliance/domain/core"
)

// Claim is a single true/false statement with its ground-truth label
type Claim struct {
	ID          int    `json:"id"`
	Text        string `json:"text"`
	GroundTruth bool   `json:"ground_truth"`
}

// Bank is the static ordered claim dataset shared by every session.
// It is never mutated after construction.
type Bank struct {
	claims []Claim
}

// NewBank validates and copies claims into a Bank
func NewBank(claims []Claim) (*Bank, error) {
	if len(claims) == 0 {
		return nil, core.ErrEmptyClaimBank
	}

	seen := make(map[int]bool, len(claims))
	for i, c := range claims {
		if c.Text == "" {
			return nil, core.NewClaimBankError(fmt.Sprintf("claim at position %d has no text", i))
		}
		if seen[c.ID] {
			return nil, core.NewClaimBankError(fmt.Sprintf("duplicate claim id %d", c.ID))
		}
		seen[c.ID] = true
	}

	copied := make([]Claim, len(claims))
	copy(copied, claims)
	return &Bank{claims: copied}, nil
}

// Len returns the number of claims
func (b *Bank) Len() int {
	return len(b.claims)
}

// Claims returns a copy of the claims in bank order
func (b *Bank) Claims() []Claim {
	out := make([]Claim, len(b.claims))
	copy(out, b.claims)
	return out
}

// DefaultClaims is the built-in 20-claim bank used when no claims file is configured
func DefaultClaims() []Claim {
	return []Claim{
		{ID: 1, Text: "Leaving a laptop plugged in constantly will significantly damage the battery.", GroundTruth: false},
		{ID: 2, Text: "Your stomach replaces its lining every two to three days.", GroundTruth: false},
		{ID: 3, Text: "Africa is larger than the United States, China, and India combined.", GroundTruth: true},
		{ID: 4, Text: "The Amazon rainforest produces 20% of the world’s oxygen.", GroundTruth: false},
		{ID: 5, Text: "The population of Iceland is more than 300,000 people.", GroundTruth: true},
		{ID: 6, Text: "There are hundreds of harmful chemicals in tires.", GroundTruth: true},
		{ID: 7, Text: "The Moon's gravity affects your weight on Earth when it is closer or farther away.", GroundTruth: false},
		{ID: 8, Text: "A basketball will hit the ground before a tennis ball when dropped at the same height.", GroundTruth: false},
		{ID: 9, Text: "A raincloud weighs more than an 18-wheeler truck.", GroundTruth: true},
		{ID: 10, Text: "Human bodies contain equal numbers of bacterial and human cells.", GroundTruth: false},
		{ID: 11, Text: "Most humans can distinguish about 10 million different colors.", GroundTruth: false},
		{ID: 12, Text: "Almost all the dust in your home comes from dead human skin.", GroundTruth: false},
		{ID: 13, Text: "Humans emit less carbon dioxide walking one mile than a car traveling the same distance.", GroundTruth: true},
		{ID: 14, Text: "The average person speaks over 16,000 words per day.", GroundTruth: false},
		{ID: 15, Text: "Most plastic in the ocean comes from rivers.", GroundTruth: true},
		{ID: 16, Text: "The average adult spends more money on groceries than on subscriptions.", GroundTruth: true},
		{ID: 17, Text: "The average person's skin regenerates roughly every 28 days.", GroundTruth: false},
		{ID: 18, Text: "Around 20% of people who are left-handed are also left-footed.", GroundTruth: false},
		{ID: 19, Text: "The Great Wall of China is visible from space with the naked eye.", GroundTruth: false},
		{ID: 20, Text: "The average person spends about equal time in REM sleep as in deep sleep.", GroundTruth: true},
	}
}

// DefaultBank returns the built-in bank
func DefaultBank() *Bank {
	bank, err := NewBank(DefaultClaims())
	if err != nil {
		panic(err)
	}
	return bank
}
