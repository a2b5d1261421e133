package services

import (
	"context"
	"fmt"
	"time"

	"github.com/courtside/club-system/models"
	"github.com/courtside/club-system/rating"
	"github.com/courtside/club-system/repositories"
)

// RecordLadderMatchCommand is a validated-at-the-boundary submission:
// one typed struct instead of loose JSON payloads travelling through
// the layers.
type RecordLadderMatchCommand struct {
	LadderID   int        `json:"-"`
	Player1ID  int        `json:"player1_id"`
	Player2ID  int        `json:"player2_id"`
	Partner1ID *int       `json:"partner1_id,omitempty"`
	Partner2ID *int       `json:"partner2_id,omitempty"`
	Score1     int        `json:"score1"`
	Score2     int        `json:"score2"`
	PlayedOn   time.Time  `json:"played_on"`
}

type LadderMatchService interface {
	// RecordMatch validates a ladder match submission, applies the ELO
	// and statistics updates for every participant and appends the
	// match record, all inside one transaction. It is deliberately NOT
	// idempotent — the duplicate guard exists precisely because a
	// resubmission would double-apply rating changes.
	RecordMatch(ctx context.Context, cmd RecordLadderMatchCommand) (*models.LadderMatch, error)
	ListMatches(ctx context.Context, ladderID int) ([]*models.LadderMatch, error)
}

type ladderMatchService struct {
	tx            TxRunner
	ladderRepo    repositories.LadderRepository
	memberRepo    repositories.LadderMemberRepository
	matchRepo     repositories.LadderMatchRepository
	ratingRepo    repositories.PlayerRatingRepository
	initialRating int
}

func NewLadderMatchService(
	tx TxRunner,
	ladderRepo repositories.LadderRepository,
	memberRepo repositories.LadderMemberRepository,
	matchRepo repositories.LadderMatchRepository,
	ratingRepo repositories.PlayerRatingRepository,
	initialRating int,
) LadderMatchService {
	return &ladderMatchService{
		tx:            tx,
		ladderRepo:    ladderRepo,
		memberRepo:    memberRepo,
		matchRepo:     matchRepo,
		ratingRepo:    ratingRepo,
		initialRating: initialRating,
	}
}

func (s *ladderMatchService) RecordMatch(ctx context.Context, cmd RecordLadderMatchCommand) (*models.LadderMatch, error) {
	ladder, err := s.ladderRepo.GetByID(ctx, cmd.LadderID)
	if err != nil {
		return nil, err
	}

	if err := validateSubmission(ladder, cmd); err != nil {
		return nil, err
	}

	// Membership is re-checked at submission time, never cached: a
	// player who left the ladder after the match was played cannot be
	// scored against it.
	participantIDs := []int{cmd.Player1ID, cmd.Player2ID}
	if cmd.Partner1ID != nil {
		participantIDs = append(participantIDs, *cmd.Partner1ID)
	}
	if cmd.Partner2ID != nil {
		participantIDs = append(participantIDs, *cmd.Partner2ID)
	}
	for _, playerID := range participantIDs {
		active, err := s.memberRepo.IsActiveMember(ctx, cmd.LadderID, playerID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, fmt.Errorf("%w: player %d", ErrNotLadderMember, playerID)
		}
	}

	playedOn := truncateToDate(cmd.PlayedOn)
	duplicate, err := s.matchRepo.ExistsDuplicate(ctx, nil,
		cmd.LadderID, playedOn, cmd.Player1ID, cmd.Player2ID, cmd.Score1, cmd.Score2)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateMatch
	}

	outcome := rating.ResolveOutcome(cmd.Score1, cmd.Score2)
	ratingContext := ladder.Type.RatingContext()

	match := &models.LadderMatch{
		LadderID:   cmd.LadderID,
		Player1ID:  cmd.Player1ID,
		Player2ID:  cmd.Player2ID,
		Partner1ID: cmd.Partner1ID,
		Partner2ID: cmd.Partner2ID,
		Score1:     cmd.Score1,
		Score2:     cmd.Score2,
		PlayedOn:   playedOn,
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		side1 := []int{cmd.Player1ID}
		side2 := []int{cmd.Player2ID}
		if cmd.Partner1ID != nil {
			side1 = append(side1, *cmd.Partner1ID)
		}
		if cmd.Partner2ID != nil {
			side2 = append(side2, *cmd.Partner2ID)
		}

		ratings := make(map[int]*models.PlayerRating, len(participantIDs))
		for _, playerID := range participantIDs {
			pr, err := s.ratingRepo.GetOrCreate(ctx, exec, playerID, ratingContext, s.initialRating)
			if err != nil {
				return err
			}
			ratings[playerID] = pr
		}

		// Each side's effective strength is its team average; every
		// player is rated individually against the opposing average,
		// so partners with different starting ratings end up with
		// different new ratings despite sharing the outcome.
		avg1 := sideAverage(side1, ratings)
		avg2 := sideAverage(side2, ratings)

		apply := func(playerID int, opponentAvg, score float64) (before, after int) {
			pr := ratings[playerID]
			before = pr.Rating
			after = rating.Calculate(pr.Rating, opponentAvg, score)
			pr.Rating = after
			pr.MatchesPlayed++
			if score == rating.ScoreWin {
				pr.MatchesWon++
			}
			return before, after
		}

		match.Player1EloBefore, match.Player1EloAfter = apply(cmd.Player1ID, avg2, outcome.ScoreA)
		match.Player2EloBefore, match.Player2EloAfter = apply(cmd.Player2ID, avg1, outcome.ScoreB)
		if cmd.Partner1ID != nil {
			before, after := apply(*cmd.Partner1ID, avg2, outcome.ScoreA)
			match.Partner1EloBefore, match.Partner1EloAfter = &before, &after
		}
		if cmd.Partner2ID != nil {
			before, after := apply(*cmd.Partner2ID, avg1, outcome.ScoreB)
			match.Partner2EloBefore, match.Partner2EloAfter = &before, &after
		}

		if err := s.matchRepo.Create(ctx, exec, match); err != nil {
			return err
		}
		for _, playerID := range participantIDs {
			if err := s.ratingRepo.UpdateWithVersion(ctx, exec, ratings[playerID]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *ladderMatchService) ListMatches(ctx context.Context, ladderID int) ([]*models.LadderMatch, error) {
	if _, err := s.ladderRepo.GetByID(ctx, ladderID); err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByLadder(ctx, ladderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for ladder %d: %w", ladderID, err)
	}
	return matches, nil
}

func validateSubmission(ladder *models.Ladder, cmd RecordLadderMatchCommand) error {
	if cmd.Player1ID == cmd.Player2ID {
		return ErrSamePlayer
	}
	if cmd.Score1 < 0 || cmd.Score2 < 0 {
		return ErrNegativeScore
	}
	if cmd.Score1 == cmd.Score2 {
		return ErrTiedScoreNotAllowed
	}
	if cmd.PlayedOn.IsZero() {
		return fmt.Errorf("%w: match date is required", ErrValidationFailed)
	}

	if ladder.Type.RequiresPartner() {
		if cmd.Partner1ID == nil || cmd.Partner2ID == nil {
			return ErrPartnerRequired
		}
		seen := map[int]bool{cmd.Player1ID: true, cmd.Player2ID: true}
		for _, partnerID := range []int{*cmd.Partner1ID, *cmd.Partner2ID} {
			if seen[partnerID] {
				return ErrPartnerOverlap
			}
			seen[partnerID] = true
		}
	} else if cmd.Partner1ID != nil || cmd.Partner2ID != nil {
		return ErrPartnerNotAllowed
	}
	return nil
}

func sideAverage(playerIDs []int, ratings map[int]*models.PlayerRating) float64 {
	if len(playerIDs) == 2 {
		return rating.TeamAverage(ratings[playerIDs[0]].Rating, ratings[playerIDs[1]].Rating)
	}
	return float64(ratings[playerIDs[0]].Rating)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
