package ports

import (
	"math/rand"

	"aireliance/domain/core"
)

// RNGPort provides the random source used to order a participant's trials
type RNGPort interface {
	// SessionStream returns the generator for one participant's randomizer.
	// With a fixed base seed the stream is deterministic per participant.
	SessionStream(participantID core.ParticipantID) *rand.Rand
}
