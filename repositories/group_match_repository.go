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
	ErrGroupMatchNotFound = errors.New("group match not found")

	// ErrGroupMatchAlreadyScored guards the append-only result: once
	// both scores are set a match is immutable.
	ErrGroupMatchAlreadyScored = errors.New("group match already has a recorded result")
)

type GroupMatchRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.TournamentMatch) error
	GetByID(ctx context.Context, id int) (*models.TournamentMatch, error)
	ListByGroup(ctx context.Context, groupID int) ([]*models.TournamentMatch, error)
	// ListCompletedByGroup returns only matches with both scores
	// recorded — the explicit filter standings and completion run on.
	ListCompletedByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.TournamentMatch, error)
	CountByGroup(ctx context.Context, groupID int) (int, error)
	// RecordResult sets the score of a previously unscored match.
	RecordResult(ctx context.Context, exec SQLExecutor, matchID, sets1, sets2, games1, games2 int, playedAt time.Time) error
}

type postgresGroupMatchRepository struct {
	db *sql.DB
}

func NewPostgresGroupMatchRepository(db *sql.DB) GroupMatchRepository {
	return &postgresGroupMatchRepository{db: db}
}

func (r *postgresGroupMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.TournamentMatch) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO group_matches (group_id, participant1_id, participant2_id, affects_elo)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	for _, m := range matches {
		err := executor.QueryRowContext(ctx, query,
			m.GroupID, m.Participant1ID, m.Participant2ID, m.AffectsElo,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				switch pqErr.Constraint {
				case "group_matches_group_id_fkey":
					return ErrGroupNotFound
				case "group_matches_participant1_id_fkey", "group_matches_participant2_id_fkey":
					return ErrGroupParticipantNotFound
				}
			}
			return fmt.Errorf("failed to create group match %dv%d: %w",
				m.Participant1ID, m.Participant2ID, err)
		}
	}
	return nil
}

func (r *postgresGroupMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.TournamentMatch, error) {
	var m models.TournamentMatch
	err := rowScanner.Scan(
		&m.ID, &m.GroupID, &m.Participant1ID, &m.Participant2ID,
		&m.Sets1, &m.Sets2, &m.Games1, &m.Games2,
		&m.AffectsElo, &m.PlayedAt, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

const groupMatchColumns = `
	id, group_id, participant1_id, participant2_id,
	sets1, sets2, games1, games2, affects_elo, played_at, created_at`

func (r *postgresGroupMatchRepository) GetByID(ctx context.Context, id int) (*models.TournamentMatch, error) {
	query := `SELECT ` + groupMatchColumns + ` FROM group_matches WHERE id = $1`
	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrGroupMatchNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan group match %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresGroupMatchRepository) listByGroup(ctx context.Context, executor SQLExecutor, groupID int, completedOnly bool) ([]*models.TournamentMatch, error) {
	query := `SELECT ` + groupMatchColumns + ` FROM group_matches WHERE group_id = $1`
	if completedOnly {
		query += ` AND sets1 IS NOT NULL AND sets2 IS NOT NULL`
	}
	query += ` ORDER BY id ASC`

	rows, err := executor.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for group %d: %w", groupID, err)
	}
	defer rows.Close()

	matches := make([]*models.TournamentMatch, 0)
	for rows.Next() {
		m, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan group match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresGroupMatchRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.TournamentMatch, error) {
	return r.listByGroup(ctx, r.db, groupID, false)
}

func (r *postgresGroupMatchRepository) ListCompletedByGroup(ctx context.Context, exec SQLExecutor, groupID int) ([]*models.TournamentMatch, error) {
	return r.listByGroup(ctx, r.getExecutor(exec), groupID, true)
}

func (r *postgresGroupMatchRepository) CountByGroup(ctx context.Context, groupID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_matches WHERE group_id = $1`, groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for group %d: %w", groupID, err)
	}
	return count, nil
}

func (r *postgresGroupMatchRepository) RecordResult(ctx context.Context, exec SQLExecutor, matchID, sets1, sets2, games1, games2 int, playedAt time.Time) error {
	executor := r.getExecutor(exec)
	// The unscored guard lives in the WHERE clause so two concurrent
	// submissions cannot both succeed.
	query := `
		UPDATE group_matches
		SET sets1 = $1, sets2 = $2, games1 = $3, games2 = $4, played_at = $5
		WHERE id = $6 AND sets1 IS NULL AND sets2 IS NULL`

	result, err := executor.ExecContext(ctx, query, sets1, sets2, games1, games2, playedAt, matchID)
	if err != nil {
		return fmt.Errorf("failed to record result for group match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrGroupMatchAlreadyScored)
}
