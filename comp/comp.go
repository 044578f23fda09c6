package comp

import (
	"github.com/google/uuid"
)

type Competition struct {
	ID            int64
	Title         string
	CreatorUUID   uuid.UUID
	Collaborators []uuid.UUID
}

// CanAdminister is true for the creator and every collaborator.
func (c Competition) CanAdminister(user uuid.UUID) bool {
	if user == uuid.Nil {
		return false
	}
	if c.CreatorUUID == user {
		return true
	}
	for _, collab := range c.Collaborators {
		if collab == user {
			return true
		}
	}
	return false
}

type Phase struct {
	ID            int64
	CompetitionID int64
	Index         int
	Name          string
}

// Task may be shared between several phases.
type Task struct {
	ID   int64
	Key  uuid.UUID
	Name string
}

// NextPhase returns the phase following current by index.
func NextPhase(phases []Phase, current Phase) (Phase, bool) {
	var next Phase
	found := false
	for _, p := range phases {
		if p.CompetitionID != current.CompetitionID || p.Index <= current.Index {
			continue
		}
		if !found || p.Index < next.Index {
			next = p
			found = true
		}
	}
	return next, found
}
