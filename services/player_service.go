package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/courtside/club-system/models"
	"github.com/courtside/club-system/repositories"
	"github.com/courtside/club-system/storage"
)

type CreatePlayerInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	// GetPlayer returns the player with their singles and doubles
	// rating rows attached.
	GetPlayer(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	// Leaderboard lists all rated players in one context, best first.
	Leaderboard(ctx context.Context, ratingContext models.RatingContext) ([]*models.PlayerRating, error)
	UploadAvatar(ctx context.Context, id int, contentType string, r io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	ratingRepo repositories.PlayerRatingRepository
	uploader   storage.FileUploader
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	ratingRepo repositories.PlayerRatingRepository,
	uploader storage.FileUploader,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		ratingRepo: ratingRepo,
		uploader:   uploader,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)

	if input.FirstName == "" && input.LastName == "" {
		return nil, fmt.Errorf("%w: player name", ErrNameRequired)
	}
	if input.Email == "" {
		return nil, ErrEmailRequired
	}

	player := &models.Player{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *playerService) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratingRepo.ListByPlayer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings for player %d: %w", id, err)
	}
	player.Ratings = ratings
	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range players {
		s.populateAvatarURL(p)
	}
	return players, nil
}

func (s *playerService) Leaderboard(ctx context.Context, ratingContext models.RatingContext) ([]*models.PlayerRating, error) {
	switch ratingContext {
	case models.ContextSingles, models.ContextDoubles:
	default:
		return nil, fmt.Errorf("%w: unknown rating context %q", ErrValidationFailed, ratingContext)
	}

	ratings, err := s.ratingRepo.ListByContext(ctx, ratingContext)
	if err != nil {
		return nil, err
	}
	for _, pr := range ratings {
		player, err := s.playerRepo.GetByID(ctx, pr.PlayerID)
		if err != nil {
			return nil, err
		}
		s.populateAvatarURL(player)
		pr.Player = player
	}
	return ratings, nil
}

func (s *playerService) UploadAvatar(ctx context.Context, id int, contentType string, r io.Reader) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("avatar storage is not configured")
	}

	key := fmt.Sprintf("players/avatars/%d-%d", id, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", id, err)
	}

	oldKey := player.AvatarKey
	if err := s.playerRepo.UpdateAvatarKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		// Replaced avatars are cleaned up best-effort.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	player.AvatarKey = &result.Key
	s.populateAvatarURL(player)
	return player, nil
}

func (s *playerService) populateAvatarURL(player *models.Player) {
	if player == nil || player.AvatarKey == nil || *player.AvatarKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*player.AvatarKey); url != "" {
		player.AvatarURL = &url
	}
}
