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
	ErrGroupParticipantNotFound = errors.New("group participant not found")
	ErrGroupParticipantConflict = errors.New("player is already registered in this group")
)

type GroupParticipantRepository interface {
	Create(ctx context.Context, participant *models.GroupParticipant) error
	GetByID(ctx context.Context, id int) (*models.GroupParticipant, error)
	ListByGroup(ctx context.Context, groupID int) ([]*models.GroupParticipant, error)
}

type postgresGroupParticipantRepository struct {
	db *sql.DB
}

func NewPostgresGroupParticipantRepository(db *sql.DB) GroupParticipantRepository {
	return &postgresGroupParticipantRepository{db: db}
}

func (r *postgresGroupParticipantRepository) Create(ctx context.Context, participant *models.GroupParticipant) error {
	query := `
		INSERT INTO group_participants (group_id, player_id, guest_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		participant.GroupID, participant.PlayerID, participant.GuestName,
	).Scan(&participant.ID, &participant.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "group_participants_group_id_player_id_key":
			return ErrGroupParticipantConflict
		case "group_participants_group_id_fkey":
			return ErrGroupNotFound
		case "group_participants_player_id_fkey":
			return ErrPlayerNotFound
		}
	}
	return err
}

func (r *postgresGroupParticipantRepository) scanParticipant(rowScanner interface{ Scan(...interface{}) error }) (*models.GroupParticipant, error) {
	var p models.GroupParticipant
	var player models.Player
	var playerID sql.NullInt64

	err := rowScanner.Scan(
		&p.ID, &p.GroupID, &p.PlayerID, &p.GuestName, &p.CreatedAt,
		&playerID, &player.FirstName, &player.LastName, &player.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupParticipantNotFound
		}
		return nil, err
	}
	if playerID.Valid {
		player.ID = int(playerID.Int64)
		p.Player = &player
	}
	return &p, nil
}

const groupParticipantQuery = `
	SELECT gp.id, gp.group_id, gp.player_id, gp.guest_name, gp.created_at,
	       p.id, COALESCE(p.first_name, ''), COALESCE(p.last_name, ''), COALESCE(p.email, '')
	FROM group_participants gp
	LEFT JOIN players p ON p.id = gp.player_id`

func (r *postgresGroupParticipantRepository) GetByID(ctx context.Context, id int) (*models.GroupParticipant, error) {
	query := groupParticipantQuery + ` WHERE gp.id = $1`
	participant, err := r.scanParticipant(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrGroupParticipantNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan group participant %d: %w", id, err)
	}
	return participant, nil
}

func (r *postgresGroupParticipantRepository) ListByGroup(ctx context.Context, groupID int) ([]*models.GroupParticipant, error) {
	query := groupParticipantQuery + ` WHERE gp.group_id = $1 ORDER BY gp.id ASC`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for group %d: %w", groupID, err)
	}
	defer rows.Close()

	participants := make([]*models.GroupParticipant, 0)
	for rows.Next() {
		p, scanErr := r.scanParticipant(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan group participant row: %w", scanErr)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}
