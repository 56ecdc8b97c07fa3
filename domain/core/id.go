package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ParticipantID identifies one participant run
type ParticipantID string

// NewParticipantID generates a random (v4) participant identifier
func NewParticipantID() ParticipantID {
	return ParticipantID(uuid.New().String())
}

// String returns the string representation
func (id ParticipantID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ParticipantID) IsEmpty() bool {
	return id == ""
}

// ParseParticipantID parses and normalizes a participant identifier
func ParseParticipantID(s string) (ParticipantID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("participant ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid participant ID %q: %w", s, err)
	}
	return ParticipantID(parsed.String()), nil
}
