package models

import (
	"fmt"
	"time"
)

// TournamentGroup is a round-robin bracket inside a tournament. The
// match type tag (e.g. "men_singles", "women_doubles") is display-only
// and has no effect on scoring.
type TournamentGroup struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	MatchType    string    `json:"match_type" db:"match_type"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Participants []GroupParticipant `json:"participants,omitempty" db:"-"`
	Matches      []TournamentMatch  `json:"matches,omitempty" db:"-"`
}

// GroupParticipant is either a registered player reference or a guest
// name placeholder. Guests rank in standings like everyone else but are
// excluded from all ELO effects.
type GroupParticipant struct {
	ID        int       `json:"id" db:"id"`
	GroupID   int       `json:"group_id" db:"group_id"`
	PlayerID  *int      `json:"player_id,omitempty" db:"player_id"`
	GuestName *string   `json:"guest_name,omitempty" db:"guest_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}

func (p *GroupParticipant) IsGuest() bool {
	return p.PlayerID == nil
}

func (p *GroupParticipant) DisplayName() string {
	if p.GuestName != nil && *p.GuestName != "" {
		return *p.GuestName
	}
	if p.Player != nil {
		name := p.Player.FirstName
		if p.Player.LastName != "" {
			name += " " + p.Player.LastName
		}
		if name != "" {
			return name
		}
	}
	return fmt.Sprintf("Participant %d", p.ID)
}
