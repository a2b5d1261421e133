package models

import "time"

// LadderMatch is an append-only record of a ladder match. Rating
// snapshots are taken for every participant at submission time; the
// current rating of a player is always the elo_after of their latest
// match, so the log doubles as the audit trail.
type LadderMatch struct {
	ID       int `json:"id" db:"id"`
	LadderID int `json:"ladder_id" db:"ladder_id"`

	Player1ID  int  `json:"player1_id" db:"player1_id"`
	Player2ID  int  `json:"player2_id" db:"player2_id"`
	Partner1ID *int `json:"partner1_id,omitempty" db:"partner1_id"`
	Partner2ID *int `json:"partner2_id,omitempty" db:"partner2_id"`

	Score1 int `json:"score1" db:"score1"`
	Score2 int `json:"score2" db:"score2"`

	PlayedOn time.Time `json:"played_on" db:"played_on"`

	Player1EloBefore  int  `json:"player1_elo_before" db:"player1_elo_before"`
	Player1EloAfter   int  `json:"player1_elo_after" db:"player1_elo_after"`
	Player2EloBefore  int  `json:"player2_elo_before" db:"player2_elo_before"`
	Player2EloAfter   int  `json:"player2_elo_after" db:"player2_elo_after"`
	Partner1EloBefore *int `json:"partner1_elo_before,omitempty" db:"partner1_elo_before"`
	Partner1EloAfter  *int `json:"partner1_elo_after,omitempty" db:"partner1_elo_after"`
	Partner2EloBefore *int `json:"partner2_elo_before,omitempty" db:"partner2_elo_before"`
	Partner2EloAfter  *int `json:"partner2_elo_after,omitempty" db:"partner2_elo_after"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ParticipantIDs returns every player involved in the match, primary
// players first.
func (m *LadderMatch) ParticipantIDs() []int {
	ids := []int{m.Player1ID, m.Player2ID}
	if m.Partner1ID != nil {
		ids = append(ids, *m.Partner1ID)
	}
	if m.Partner2ID != nil {
		ids = append(ids, *m.Partner2ID)
	}
	return ids
}
