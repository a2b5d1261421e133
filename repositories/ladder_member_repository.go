package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/club-system/models"
	"github.com/lib/pq"
)

var (
	ErrLadderMemberNotFound = errors.New("ladder member not found")
	ErrLadderMemberConflict = errors.New("player is already a member of this ladder")
)

type LadderMemberRepository interface {
	Add(ctx context.Context, member *models.LadderMember) error
	Get(ctx context.Context, ladderID, playerID int) (*models.LadderMember, error)
	SetActive(ctx context.Context, ladderID, playerID int, active bool) error
	// IsActiveMember is checked at match submission time, never cached.
	IsActiveMember(ctx context.Context, ladderID, playerID int) (bool, error)
	ListActiveByLadder(ctx context.Context, ladderID int) ([]*models.LadderMember, error)
}

type postgresLadderMemberRepository struct {
	db *sql.DB
}

func NewPostgresLadderMemberRepository(db *sql.DB) LadderMemberRepository {
	return &postgresLadderMemberRepository{db: db}
}

func (r *postgresLadderMemberRepository) Add(ctx context.Context, member *models.LadderMember) error {
	query := `
		INSERT INTO ladder_members (ladder_id, player_id, active)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at`

	err := r.db.QueryRowContext(ctx, query,
		member.LadderID, member.PlayerID, member.Active,
	).Scan(&member.ID, &member.JoinedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "ladder_members_ladder_id_player_id_key":
			return ErrLadderMemberConflict
		case "ladder_members_ladder_id_fkey":
			return ErrLadderNotFound
		case "ladder_members_player_id_fkey":
			return ErrPlayerNotFound
		}
	}
	return err
}

func (r *postgresLadderMemberRepository) Get(ctx context.Context, ladderID, playerID int) (*models.LadderMember, error) {
	query := `
		SELECT id, ladder_id, player_id, active, joined_at
		FROM ladder_members
		WHERE ladder_id = $1 AND player_id = $2`

	m := &models.LadderMember{}
	err := r.db.QueryRowContext(ctx, query, ladderID, playerID).Scan(
		&m.ID, &m.LadderID, &m.PlayerID, &m.Active, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLadderMemberNotFound
		}
		return nil, fmt.Errorf("failed to scan ladder member: %w", err)
	}
	return m, nil
}

func (r *postgresLadderMemberRepository) SetActive(ctx context.Context, ladderID, playerID int, active bool) error {
	query := `UPDATE ladder_members SET active = $1 WHERE ladder_id = $2 AND player_id = $3`
	result, err := r.db.ExecContext(ctx, query, active, ladderID, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrLadderMemberNotFound)
}

func (r *postgresLadderMemberRepository) IsActiveMember(ctx context.Context, ladderID, playerID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ladder_members
			WHERE ladder_id = $1 AND player_id = $2 AND active = TRUE
		)`

	var active bool
	if err := r.db.QueryRowContext(ctx, query, ladderID, playerID).Scan(&active); err != nil {
		return false, fmt.Errorf("failed to check ladder membership: %w", err)
	}
	return active, nil
}

func (r *postgresLadderMemberRepository) ListActiveByLadder(ctx context.Context, ladderID int) ([]*models.LadderMember, error) {
	query := `
		SELECT lm.id, lm.ladder_id, lm.player_id, lm.active, lm.joined_at,
		       p.id, p.first_name, p.last_name, p.email, p.avatar_key, p.created_at
		FROM ladder_members lm
		JOIN players p ON p.id = lm.player_id
		WHERE lm.ladder_id = $1 AND lm.active = TRUE
		ORDER BY lm.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, ladderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ladder members: %w", err)
	}
	defer rows.Close()

	members := make([]*models.LadderMember, 0)
	for rows.Next() {
		var m models.LadderMember
		var p models.Player
		if scanErr := rows.Scan(
			&m.ID, &m.LadderID, &m.PlayerID, &m.Active, &m.JoinedAt,
			&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.AvatarKey, &p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ladder member row: %w", scanErr)
		}
		m.Player = &p
		members = append(members, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
