package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/club-system/models"
	"github.com/lib/pq"
)

var ErrWinnerConflict = errors.New("winner records already exist for this group")

type WinnerRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, winners []*models.TournamentWinner) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentWinner, error)
}

type postgresWinnerRepository struct {
	db *sql.DB
}

func NewPostgresWinnerRepository(db *sql.DB) WinnerRepository {
	return &postgresWinnerRepository{db: db}
}

func (r *postgresWinnerRepository) BatchCreate(ctx context.Context, exec SQLExecutor, winners []*models.TournamentWinner) error {
	executor := SQLExecutor(r.db)
	if exec != nil {
		executor = exec
	}
	query := `
		INSERT INTO tournament_winners
			(tournament_id, group_id, participant_id, final_standing, bonus_elo_awarded)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	for _, w := range winners {
		err := executor.QueryRowContext(ctx, query,
			w.TournamentID, w.GroupID, w.ParticipantID, w.FinalStanding, w.BonusEloAwarded,
		).Scan(&w.ID, &w.CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				if pqErr.Constraint == "tournament_winners_group_id_participant_id_key" {
					return ErrWinnerConflict
				}
			}
			return fmt.Errorf("failed to create winner record for participant %d: %w", w.ParticipantID, err)
		}
	}
	return nil
}

func (r *postgresWinnerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentWinner, error) {
	query := `
		SELECT id, tournament_id, group_id, participant_id, final_standing, bonus_elo_awarded, created_at
		FROM tournament_winners
		WHERE tournament_id = $1
		ORDER BY group_id ASC, final_standing ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query winners for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	winners := make([]*models.TournamentWinner, 0)
	for rows.Next() {
		var w models.TournamentWinner
		if scanErr := rows.Scan(
			&w.ID, &w.TournamentID, &w.GroupID, &w.ParticipantID,
			&w.FinalStanding, &w.BonusEloAwarded, &w.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan winner row: %w", scanErr)
		}
		winners = append(winners, &w)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return winners, nil
}
