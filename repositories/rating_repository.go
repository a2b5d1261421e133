package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courtside/club-system/models"
)

var (
	ErrPlayerRatingNotFound = errors.New("player rating not found")

	// ErrRatingVersionConflict means another writer updated the rating
	// row between read and write. The caller should retry the whole
	// submission; nothing was applied.
	ErrRatingVersionConflict = errors.New("player rating was modified concurrently")
)

type PlayerRatingRepository interface {
	// GetOrCreate returns the rating row for a player/context pair,
	// inserting one at the configured initial rating on first contact.
	GetOrCreate(ctx context.Context, exec SQLExecutor, playerID int, ratingContext models.RatingContext, initialRating int) (*models.PlayerRating, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.PlayerRating, error)
	ListByContext(ctx context.Context, ratingContext models.RatingContext) ([]*models.PlayerRating, error)
	// UpdateWithVersion writes the rating row guarded by its version
	// column and bumps the version. ErrRatingVersionConflict is
	// returned when the row moved underneath us.
	UpdateWithVersion(ctx context.Context, exec SQLExecutor, rating *models.PlayerRating) error
}

type postgresPlayerRatingRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRatingRepository(db *sql.DB) PlayerRatingRepository {
	return &postgresPlayerRatingRepository{db: db}
}

func (r *postgresPlayerRatingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRatingRepository) scanRating(rowScanner interface{ Scan(...interface{}) error }) (*models.PlayerRating, error) {
	var pr models.PlayerRating
	err := rowScanner.Scan(
		&pr.ID, &pr.PlayerID, &pr.Context, &pr.Rating,
		&pr.MatchesPlayed, &pr.MatchesWon, &pr.Version, &pr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerRatingNotFound
		}
		return nil, err
	}
	return &pr, nil
}

func (r *postgresPlayerRatingRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, playerID int, ratingContext models.RatingContext, initialRating int) (*models.PlayerRating, error) {
	executor := r.getExecutor(exec)

	query := `
		SELECT id, player_id, context, rating, matches_played, matches_won, version, updated_at
		FROM player_ratings
		WHERE player_id = $1 AND context = $2`
	rating, err := r.scanRating(executor.QueryRowContext(ctx, query, playerID, ratingContext))
	if err == nil {
		return rating, nil
	}
	if !errors.Is(err, ErrPlayerRatingNotFound) {
		return nil, fmt.Errorf("failed to get rating for player %d (%s): %w", playerID, ratingContext, err)
	}

	insert := `
		INSERT INTO player_ratings (player_id, context, rating, matches_played, matches_won, version, updated_at)
		VALUES ($1, $2, $3, 0, 0, 1, $4)
		RETURNING id`
	created := &models.PlayerRating{
		PlayerID:  playerID,
		Context:   ratingContext,
		Rating:    initialRating,
		Version:   1,
		UpdatedAt: time.Now(),
	}
	if err := executor.QueryRowContext(ctx, insert,
		playerID, ratingContext, initialRating, created.UpdatedAt,
	).Scan(&created.ID); err != nil {
		return nil, fmt.Errorf("failed to create rating for player %d (%s): %w", playerID, ratingContext, err)
	}
	return created, nil
}

func (r *postgresPlayerRatingRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.PlayerRating, error) {
	query := `
		SELECT id, player_id, context, rating, matches_played, matches_won, version, updated_at
		FROM player_ratings
		WHERE player_id = $1
		ORDER BY context ASC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings for player %d: %w", playerID, err)
	}
	defer rows.Close()

	ratings := make([]models.PlayerRating, 0)
	for rows.Next() {
		pr, scanErr := r.scanRating(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		ratings = append(ratings, *pr)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *postgresPlayerRatingRepository) ListByContext(ctx context.Context, ratingContext models.RatingContext) ([]*models.PlayerRating, error) {
	query := `
		SELECT id, player_id, context, rating, matches_played, matches_won, version, updated_at
		FROM player_ratings
		WHERE context = $1
		ORDER BY rating DESC, player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, ratingContext)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s ratings: %w", ratingContext, err)
	}
	defer rows.Close()

	ratings := make([]*models.PlayerRating, 0)
	for rows.Next() {
		pr, scanErr := r.scanRating(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		ratings = append(ratings, pr)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *postgresPlayerRatingRepository) UpdateWithVersion(ctx context.Context, exec SQLExecutor, rating *models.PlayerRating) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE player_ratings SET
			rating = $1, matches_played = $2, matches_won = $3,
			version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5`

	result, err := executor.ExecContext(ctx, query,
		rating.Rating, rating.MatchesPlayed, rating.MatchesWon,
		rating.ID, rating.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating %d: %w", rating.ID, err)
	}
	if err := checkAffectedRows(result, ErrRatingVersionConflict); err != nil {
		return err
	}
	rating.Version++
	return nil
}
