package services

import "errors"

// Shared error taxonomy, mapped centrally to HTTP statuses in the
// handlers package.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation errors: malformed input, safe to retry after fixing.
	ErrValidationFailed      = errors.New("validation failed")
	ErrSamePlayer            = errors.New("a match needs two distinct players")
	ErrNegativeScore         = errors.New("scores must be non-negative")
	ErrTiedScoreNotAllowed   = errors.New("ladder matches cannot end in a tie")
	ErrPartnerRequired       = errors.New("doubles ladders require a partner for each side")
	ErrPartnerNotAllowed     = errors.New("singles ladders do not take partners")
	ErrPartnerOverlap        = errors.New("each player may appear only once per match")
	ErrInvalidSetScore       = errors.New("set scores must be between 0 and 2")
	ErrInvalidLadderType     = errors.New("ladder type must be singles, doubles or mixed")
	ErrNameRequired          = errors.New("name is required")
	ErrEmailRequired         = errors.New("email is required")
	ErrGuestOrPlayerRequired = errors.New("a participant is either a player reference or a guest name")
	ErrBonusEloOutOfRange    = errors.New("winner bonus elo must be between 0 and 500")
	ErrInvalidDateRange      = errors.New("end date must be after start date")

	// Membership errors: recoverable by joining first.
	ErrNotLadderMember = errors.New("player is not an active member of this ladder")

	// Duplicate / conflict errors: not retryable with the same input.
	ErrDuplicateMatch = errors.New("an identical match was already recorded for this date")

	// State-machine errors.
	ErrTournamentNotDraft         = errors.New("tournament is not in draft status")
	ErrTournamentNotActive        = errors.New("tournament is not active")
	ErrTournamentAlreadyCompleted = errors.New("tournament is already completed")
	ErrTournamentNotDeletable     = errors.New("only draft tournaments can be deleted")
	ErrScheduleAlreadyGenerated   = errors.New("group schedule was already generated")
	ErrMatchAlreadyScored         = errors.New("match result was already recorded")
)
