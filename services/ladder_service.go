package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/courtside/club-system/models"
	"github.com/courtside/club-system/repositories"
)

type CreateLadderInput struct {
	Name string            `json:"name"`
	Type models.LadderType `json:"type"`
}

// LadderRanking is a ladder member joined with their current rating in
// the ladder's context, sorted best first.
type LadderRanking struct {
	Position int            `json:"position"`
	Player   *models.Player `json:"player"`
	Rating   int            `json:"rating"`
	Played   int            `json:"matches_played"`
	Won      int            `json:"matches_won"`
}

type LadderService interface {
	CreateLadder(ctx context.Context, input CreateLadderInput) (*models.Ladder, error)
	GetLadder(ctx context.Context, id int) (*models.Ladder, error)
	ListLadders(ctx context.Context) ([]*models.Ladder, error)
	Join(ctx context.Context, ladderID, playerID int) error
	Leave(ctx context.Context, ladderID, playerID int) error
	// Rankings orders the ladder's active members by current rating.
	// Players who have not played yet rank at the initial rating.
	Rankings(ctx context.Context, ladderID int) ([]LadderRanking, error)
}

type ladderService struct {
	ladderRepo    repositories.LadderRepository
	memberRepo    repositories.LadderMemberRepository
	playerRepo    repositories.PlayerRepository
	ratingRepo    repositories.PlayerRatingRepository
	initialRating int
}

func NewLadderService(
	ladderRepo repositories.LadderRepository,
	memberRepo repositories.LadderMemberRepository,
	playerRepo repositories.PlayerRepository,
	ratingRepo repositories.PlayerRatingRepository,
	initialRating int,
) LadderService {
	return &ladderService{
		ladderRepo:    ladderRepo,
		memberRepo:    memberRepo,
		playerRepo:    playerRepo,
		ratingRepo:    ratingRepo,
		initialRating: initialRating,
	}
}

func (s *ladderService) CreateLadder(ctx context.Context, input CreateLadderInput) (*models.Ladder, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: ladder name", ErrNameRequired)
	}
	switch input.Type {
	case models.LadderTypeSingles, models.LadderTypeDoubles, models.LadderTypeMixed:
	default:
		return nil, ErrInvalidLadderType
	}

	ladder := &models.Ladder{Name: input.Name, Type: input.Type}
	if err := s.ladderRepo.Create(ctx, ladder); err != nil {
		return nil, err
	}
	return ladder, nil
}

func (s *ladderService) GetLadder(ctx context.Context, id int) (*models.Ladder, error) {
	return s.ladderRepo.GetByID(ctx, id)
}

func (s *ladderService) ListLadders(ctx context.Context) ([]*models.Ladder, error) {
	return s.ladderRepo.List(ctx)
}

func (s *ladderService) Join(ctx context.Context, ladderID, playerID int) error {
	if _, err := s.ladderRepo.GetByID(ctx, ladderID); err != nil {
		return err
	}
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return err
	}

	// A returning player re-activates their old membership row.
	member, err := s.memberRepo.Get(ctx, ladderID, playerID)
	switch {
	case err == nil:
		if member.Active {
			return repositories.ErrLadderMemberConflict
		}
		return s.memberRepo.SetActive(ctx, ladderID, playerID, true)
	case err == repositories.ErrLadderMemberNotFound:
		return s.memberRepo.Add(ctx, &models.LadderMember{
			LadderID: ladderID,
			PlayerID: playerID,
			Active:   true,
		})
	default:
		return err
	}
}

func (s *ladderService) Leave(ctx context.Context, ladderID, playerID int) error {
	if _, err := s.ladderRepo.GetByID(ctx, ladderID); err != nil {
		return err
	}
	return s.memberRepo.SetActive(ctx, ladderID, playerID, false)
}

func (s *ladderService) Rankings(ctx context.Context, ladderID int) ([]LadderRanking, error) {
	ladder, err := s.ladderRepo.GetByID(ctx, ladderID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListActiveByLadder(ctx, ladderID)
	if err != nil {
		return nil, err
	}

	rankings := make([]LadderRanking, 0, len(members))
	for _, m := range members {
		entry := LadderRanking{Player: m.Player, Rating: s.initialRating}
		ratings, err := s.ratingRepo.ListByPlayer(ctx, m.PlayerID)
		if err != nil {
			return nil, err
		}
		for _, pr := range ratings {
			if pr.Context == ladder.Type.RatingContext() {
				entry.Rating = pr.Rating
				entry.Played = pr.MatchesPlayed
				entry.Won = pr.MatchesWon
			}
		}
		rankings = append(rankings, entry)
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Rating > rankings[j].Rating
	})
	for i := range rankings {
		rankings[i].Position = i + 1
	}
	return rankings, nil
}
