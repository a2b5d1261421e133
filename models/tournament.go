package models

import "time"

// TournamentStatus follows the draft -> active -> completed state machine.
// There is no cancelled or reopened state; only draft tournaments can be
// deleted and completion is irreversible.
type TournamentStatus string

const (
	StatusDraft     TournamentStatus = "draft"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

type Tournament struct {
	ID             int              `json:"id" db:"id"`
	Name           string           `json:"name" db:"name"`
	Status         TournamentStatus `json:"status" db:"status"`
	WinnerBonusElo int              `json:"winner_bonus_elo" db:"winner_bonus_elo"`
	StartDate      time.Time        `json:"start_date" db:"start_date"`
	EndDate        time.Time        `json:"end_date" db:"end_date"`
	PosterKey      *string          `json:"-" db:"poster_key"`
	PosterURL      *string          `json:"poster_url,omitempty" db:"-"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Groups []TournamentGroup `json:"groups,omitempty" db:"-"`
}
