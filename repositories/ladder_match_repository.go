package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/club-system/models"
	"github.com/lib/pq"
)

var (
	ErrLadderMatchNotFound      = errors.New("ladder match not found")
	ErrLadderMatchPlayerInvalid = errors.New("ladder match references an unknown player")
)

type LadderMatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.LadderMatch) error
	GetByID(ctx context.Context, id int) (*models.LadderMatch, error)
	ListByLadder(ctx context.Context, ladderID int) ([]*models.LadderMatch, error)
	// ExistsDuplicate implements the duplicate-submission guard: same
	// ladder, same date, same unordered primary player pair, same score
	// pair (scores follow the player orientation).
	ExistsDuplicate(ctx context.Context, exec SQLExecutor, ladderID int, playedOn time.Time, player1ID, player2ID, score1, score2 int) (bool, error)
}

type postgresLadderMatchRepository struct {
	db *sql.DB
}

func NewPostgresLadderMatchRepository(db *sql.DB) LadderMatchRepository {
	return &postgresLadderMatchRepository{db: db}
}

func (r *postgresLadderMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLadderMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.LadderMatch) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO ladder_matches
			(ladder_id, player1_id, player2_id, partner1_id, partner2_id,
			 score1, score2, played_on,
			 player1_elo_before, player1_elo_after, player2_elo_before, player2_elo_after,
			 partner1_elo_before, partner1_elo_after, partner2_elo_before, partner2_elo_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.LadderID, match.Player1ID, match.Player2ID, match.Partner1ID, match.Partner2ID,
		match.Score1, match.Score2, match.PlayedOn,
		match.Player1EloBefore, match.Player1EloAfter, match.Player2EloBefore, match.Player2EloAfter,
		match.Partner1EloBefore, match.Partner1EloAfter, match.Partner2EloBefore, match.Partner2EloAfter,
	).Scan(&match.ID, &match.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "ladder_matches_ladder_id_fkey":
			return ErrLadderNotFound
		case "ladder_matches_player1_id_fkey", "ladder_matches_player2_id_fkey",
			"ladder_matches_partner1_id_fkey", "ladder_matches_partner2_id_fkey":
			return ErrLadderMatchPlayerInvalid
		}
	}
	return err
}

func (r *postgresLadderMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.LadderMatch, error) {
	var m models.LadderMatch
	err := rowScanner.Scan(
		&m.ID, &m.LadderID, &m.Player1ID, &m.Player2ID, &m.Partner1ID, &m.Partner2ID,
		&m.Score1, &m.Score2, &m.PlayedOn,
		&m.Player1EloBefore, &m.Player1EloAfter, &m.Player2EloBefore, &m.Player2EloAfter,
		&m.Partner1EloBefore, &m.Partner1EloAfter, &m.Partner2EloBefore, &m.Partner2EloAfter,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLadderMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

const ladderMatchColumns = `
	id, ladder_id, player1_id, player2_id, partner1_id, partner2_id,
	score1, score2, played_on,
	player1_elo_before, player1_elo_after, player2_elo_before, player2_elo_after,
	partner1_elo_before, partner1_elo_after, partner2_elo_before, partner2_elo_after,
	created_at`

func (r *postgresLadderMatchRepository) GetByID(ctx context.Context, id int) (*models.LadderMatch, error) {
	query := `SELECT ` + ladderMatchColumns + ` FROM ladder_matches WHERE id = $1`
	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrLadderMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan ladder match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresLadderMatchRepository) ListByLadder(ctx context.Context, ladderID int) ([]*models.LadderMatch, error) {
	query := `SELECT ` + ladderMatchColumns + `
		FROM ladder_matches
		WHERE ladder_id = $1
		ORDER BY played_on DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ladderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ladder matches for ladder %d: %w", ladderID, err)
	}
	defer rows.Close()

	matches := make([]*models.LadderMatch, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan ladder match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresLadderMatchRepository) ExistsDuplicate(ctx context.Context, exec SQLExecutor, ladderID int, playedOn time.Time, player1ID, player2ID, score1, score2 int) (bool, error) {
	executor := r.getExecutor(exec)
	// The pair is unordered: a resubmission with the players (and their
	// scores) swapped is still the same match.
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ladder_matches
			WHERE ladder_id = $1 AND played_on = $2
			  AND ((player1_id = $3 AND player2_id = $4 AND score1 = $5 AND score2 = $6)
			    OR (player1_id = $4 AND player2_id = $3 AND score1 = $6 AND score2 = $5))
		)`

	var exists bool
	err := executor.QueryRowContext(ctx, query,
		ladderID, playedOn, player1ID, player2ID, score1, score2,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate ladder match: %w", err)
	}
	return exists, nil
}
