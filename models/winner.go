package models

import "time"

// TournamentWinner is written once per participant per group when a
// tournament completes, freezing the final standings. BonusEloAwarded is
// zero for everyone except the non-guest rank-1 participant who received
// the flat winner bonus.
type TournamentWinner struct {
	ID              int       `json:"id" db:"id"`
	TournamentID    int       `json:"tournament_id" db:"tournament_id"`
	GroupID         int       `json:"group_id" db:"group_id"`
	ParticipantID   int       `json:"participant_id" db:"participant_id"`
	FinalStanding   int       `json:"final_standing" db:"final_standing"`
	BonusEloAwarded int       `json:"bonus_elo_awarded" db:"bonus_elo_awarded"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	Participant *GroupParticipant `json:"participant,omitempty" db:"-"`
}
