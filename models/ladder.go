package models

import "time"

type LadderType string

const (
	LadderTypeSingles LadderType = "singles"
	LadderTypeDoubles LadderType = "doubles"
	LadderTypeMixed   LadderType = "mixed"
)

// RequiresPartner reports whether matches on a ladder of this type are
// played with doubles partners.
func (t LadderType) RequiresPartner() bool {
	return t == LadderTypeDoubles || t == LadderTypeMixed
}

// RatingContext maps the ladder type to the rating context its matches
// affect. Mixed ladders share the doubles rating pool.
func (t LadderType) RatingContext() RatingContext {
	if t.RequiresPartner() {
		return ContextDoubles
	}
	return ContextSingles
}

type Ladder struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Type      LadderType `json:"type" db:"type"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// LadderMember links a player to a ladder. Leaving a ladder clears the
// active flag instead of deleting the row, so historical matches keep a
// valid membership reference.
type LadderMember struct {
	ID       int       `json:"id" db:"id"`
	LadderID int       `json:"ladder_id" db:"ladder_id"`
	PlayerID int       `json:"player_id" db:"player_id"`
	Active   bool      `json:"active" db:"active"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`

	Player *Player       `json:"player,omitempty" db:"-"`
	Rating *PlayerRating `json:"rating,omitempty" db:"-"`
}
