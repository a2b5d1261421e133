package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/club-system/models"
	"github.com/lib/pq"
)

var ErrGroupNotFound = errors.New("tournament group not found")

type GroupRepository interface {
	Create(ctx context.Context, group *models.TournamentGroup) error
	GetByID(ctx context.Context, id int) (*models.TournamentGroup, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentGroup, error)
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) Create(ctx context.Context, group *models.TournamentGroup) error {
	query := `
		INSERT INTO tournament_groups (tournament_id, name, match_type)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		group.TournamentID, group.Name, group.MatchType,
	).Scan(&group.ID, &group.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "tournament_groups_tournament_id_fkey" {
			return ErrTournamentNotFound
		}
	}
	return err
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.TournamentGroup, error) {
	query := `
		SELECT id, tournament_id, name, match_type, created_at
		FROM tournament_groups
		WHERE id = $1`

	g := &models.TournamentGroup{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.TournamentID, &g.Name, &g.MatchType, &g.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group %d: %w", id, err)
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TournamentGroup, error) {
	query := `
		SELECT id, tournament_id, name, match_type, created_at
		FROM tournament_groups
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	groups := make([]*models.TournamentGroup, 0)
	for rows.Next() {
		var g models.TournamentGroup
		if scanErr := rows.Scan(&g.ID, &g.TournamentID, &g.Name, &g.MatchType, &g.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		groups = append(groups, &g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}
