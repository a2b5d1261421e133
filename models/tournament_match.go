package models

import "time"

// TournamentMatch is a single round-robin group match. Scores count sets
// won (0-2) and stay null until the result is recorded; ties are legal
// for time-limited group play. Games totals are optional extra detail
// used for the second-level standings tie-break.
//
// AffectsElo is computed once, when the pairing is created: true only
// when neither participant is a guest. Recording a result on a match
// with AffectsElo false must leave every rating untouched.
type TournamentMatch struct {
	ID             int        `json:"id" db:"id"`
	GroupID        int        `json:"group_id" db:"group_id"`
	Participant1ID int        `json:"participant1_id" db:"participant1_id"`
	Participant2ID int        `json:"participant2_id" db:"participant2_id"`
	Sets1          *int       `json:"sets1,omitempty" db:"sets1"`
	Sets2          *int       `json:"sets2,omitempty" db:"sets2"`
	Games1         *int       `json:"games1,omitempty" db:"games1"`
	Games2         *int       `json:"games2,omitempty" db:"games2"`
	AffectsElo     bool       `json:"affects_elo" db:"affects_elo"`
	PlayedAt       *time.Time `json:"played_at,omitempty" db:"played_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Completed reports whether both scores have been recorded.
func (m *TournamentMatch) Completed() bool {
	return m.Sets1 != nil && m.Sets2 != nil
}
