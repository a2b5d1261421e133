// Package schedule generates round-robin group schedules and pushes
// live standings updates to websocket subscribers.
package schedule

import (
	"fmt"

	"github.com/courtside/club-system/models"
)

// Pairing is one scheduled group match: a participant pair plus the
// affects_elo flag, which is decided here — once, at schedule time —
// and never recomputed. A match affects ELO only when neither side is
// a guest.
type Pairing struct {
	Participant1ID int
	Participant2ID int
	AffectsElo     bool
}

// GenerateRoundRobin pairs every participant with every other
// participant exactly once, in roster order. At least two participants
// are required.
func GenerateRoundRobin(participants []*models.GroupParticipant) ([]Pairing, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("round robin: not enough participants (found %d, min 2 required)", len(participants))
	}

	pairings := make([]Pairing, 0, len(participants)*(len(participants)-1)/2)
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			p1, p2 := participants[i], participants[j]
			pairings = append(pairings, Pairing{
				Participant1ID: p1.ID,
				Participant2ID: p2.ID,
				AffectsElo:     !p1.IsGuest() && !p2.IsGuest(),
			})
		}
	}
	return pairings, nil
}
