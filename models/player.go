package models

import "time"

// RatingContext separates singles and doubles ratings for the same player.
type RatingContext string

const (
	ContextSingles RatingContext = "singles"
	ContextDoubles RatingContext = "doubles"
)

type Player struct {
	ID        int       `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	AvatarKey *string   `json:"-" db:"avatar_key"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Ratings []PlayerRating `json:"ratings,omitempty" db:"-"`
}

// PlayerRating is the current rating row for one player in one context.
// Version is bumped on every write and checked optimistically, so two
// concurrent match submissions for the same player cannot silently lose
// an update.
type PlayerRating struct {
	ID            int           `json:"id" db:"id"`
	PlayerID      int           `json:"player_id" db:"player_id"`
	Context       RatingContext `json:"context" db:"context"`
	Rating        int           `json:"rating" db:"rating"`
	MatchesPlayed int           `json:"matches_played" db:"matches_played"`
	MatchesWon    int           `json:"matches_won" db:"matches_won"`
	Version       int           `json:"-" db:"version"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
