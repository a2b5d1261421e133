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
	ErrLadderNotFound     = errors.New("ladder not found")
	ErrLadderNameConflict = errors.New("ladder name already in use")
)

type LadderRepository interface {
	Create(ctx context.Context, ladder *models.Ladder) error
	GetByID(ctx context.Context, id int) (*models.Ladder, error)
	List(ctx context.Context) ([]*models.Ladder, error)
}

type postgresLadderRepository struct {
	db *sql.DB
}

func NewPostgresLadderRepository(db *sql.DB) LadderRepository {
	return &postgresLadderRepository{db: db}
}

func (r *postgresLadderRepository) Create(ctx context.Context, ladder *models.Ladder) error {
	query := `
		INSERT INTO ladders (name, type)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, ladder.Name, ladder.Type).
		Scan(&ladder.ID, &ladder.CreatedAt)

	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Constraint == "ladders_name_key" {
			return ErrLadderNameConflict
		}
	}
	return err
}

func (r *postgresLadderRepository) GetByID(ctx context.Context, id int) (*models.Ladder, error) {
	query := `SELECT id, name, type, created_at FROM ladders WHERE id = $1`

	ladder := &models.Ladder{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ladder.ID, &ladder.Name, &ladder.Type, &ladder.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLadderNotFound
		}
		return nil, fmt.Errorf("failed to scan ladder %d: %w", id, err)
	}
	return ladder, nil
}

func (r *postgresLadderRepository) List(ctx context.Context) ([]*models.Ladder, error) {
	query := `SELECT id, name, type, created_at FROM ladders ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ladders: %w", err)
	}
	defer rows.Close()

	ladders := make([]*models.Ladder, 0)
	for rows.Next() {
		var l models.Ladder
		if scanErr := rows.Scan(&l.ID, &l.Name, &l.Type, &l.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan ladder row: %w", scanErr)
		}
		ladders = append(ladders, &l)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ladders, nil
}
