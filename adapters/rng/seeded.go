package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"hash/fnv"
	"math/rand"

	"aireliance/domain/core"
	"aireliance/ports"
)

// SeededRNG implements ports.RNGPort. With a non-zero base seed each
// participant's stream is derived deterministically from seed and ID, which
// makes pilot runs reproducible; a zero seed draws fresh entropy per session.
type SeededRNG struct {
	baseSeed int64
}

// NewSeededRNG creates the randomizer source
func NewSeededRNG(baseSeed int64) ports.RNGPort {
	return &SeededRNG{baseSeed: baseSeed}
}

// SessionStream returns the generator for one participant's trial order
func (r *SeededRNG) SessionStream(participantID core.ParticipantID) *rand.Rand {
	if r.baseSeed == 0 {
		return rand.New(rand.NewSource(entropySeed()))
	}
	return rand.New(rand.NewSource(deriveSeed(r.baseSeed, participantID)))
}

func deriveSeed(base int64, participantID core.ParticipantID) int64 {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(base))
	h.Write(buf[:])
	h.Write([]byte(participantID))
	return int64(h.Sum64())
}

func entropySeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}
