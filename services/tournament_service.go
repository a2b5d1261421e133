package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtside/club-system/models"
	"github.com/courtside/club-system/repositories"
	"github.com/courtside/club-system/storage"
)

const (
	maxWinnerBonusElo = 500
	posterKeyPrefix   = "tournaments/posters"
)

type CreateTournamentInput struct {
	Name           string    `json:"name"`
	WinnerBonusElo int       `json:"winner_bonus_elo"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	// Get returns the tournament with all groups, participants and
	// matches attached.
	Get(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error)
	// Delete removes a tournament; only drafts may be deleted.
	Delete(ctx context.Context, id int) error
	// Activate moves a draft tournament to active, opening result entry.
	Activate(ctx context.Context, id int) error
	// Complete finalizes every group in one transaction: final standings
	// are frozen as winner records, the winner bonus is credited, and
	// the status flips to completed. Groups with no completed matches
	// are skipped. A second call fails.
	Complete(ctx context.Context, id int) ([]*models.TournamentWinner, error)
	ListWinners(ctx context.Context, id int) ([]*models.TournamentWinner, error)
	UploadPoster(ctx context.Context, id int, contentType string, r io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tx              TxRunner
	tournamentRepo  repositories.TournamentRepository
	groupRepo       repositories.GroupRepository
	participantRepo repositories.GroupParticipantRepository
	matchRepo       repositories.GroupMatchRepository
	ratingRepo      repositories.PlayerRatingRepository
	winnerRepo      repositories.WinnerRepository
	uploader        storage.FileUploader
	notifier        EmailSender
	logger          *slog.Logger
	initialRating   int
}

func NewTournamentService(
	tx TxRunner,
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	participantRepo repositories.GroupParticipantRepository,
	matchRepo repositories.GroupMatchRepository,
	ratingRepo repositories.PlayerRatingRepository,
	winnerRepo repositories.WinnerRepository,
	uploader storage.FileUploader,
	notifier EmailSender,
	logger *slog.Logger,
	initialRating int,
) TournamentService {
	return &tournamentService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		groupRepo:       groupRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		ratingRepo:      ratingRepo,
		winnerRepo:      winnerRepo,
		uploader:        uploader,
		notifier:        notifier,
		logger:          logger,
		initialRating:   initialRating,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: tournament name", ErrNameRequired)
	}
	if input.WinnerBonusElo < 0 || input.WinnerBonusElo > maxWinnerBonusElo {
		return nil, ErrBonusEloOutOfRange
	}
	if !input.StartDate.IsZero() && !input.EndDate.IsZero() && input.EndDate.Before(input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	tournament := &models.Tournament{
		Name:           input.Name,
		Status:         models.StatusDraft,
		WinnerBonusElo: input.WinnerBonusElo,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.populatePosterURL(tournament)

	groups, err := s.groupRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	// Each group's participants and matches are independent reads, so
	// they are fetched concurrently.
	g, gctx := errgroup.WithContext(ctx)
	loaded := make([]models.TournamentGroup, len(groups))
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			participants, err := s.participantRepo.ListByGroup(gctx, group.ID)
			if err != nil {
				return err
			}
			matches, err := s.matchRepo.ListByGroup(gctx, group.ID)
			if err != nil {
				return err
			}
			group.Participants = dereferenceParticipants(participants)
			group.Matches = dereferenceMatches(matches)
			loaded[i] = *group
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tournament.Groups = loaded
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	for _, t := range tournaments {
		s.populatePosterURL(t)
	}
	return tournaments, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.Status != models.StatusDraft {
		return ErrTournamentNotDeletable
	}
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if tournament.PosterKey != nil && s.uploader != nil {
		if err := s.uploader.Delete(ctx, *tournament.PosterKey); err != nil {
			s.logger.Warn("failed to delete tournament poster",
				slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) Activate(ctx context.Context, id int) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tournament.Status != models.StatusDraft {
		return ErrTournamentNotDraft
	}
	return s.tournamentRepo.UpdateStatus(ctx, nil, id, models.StatusActive)
}

func (s *tournamentService) Complete(ctx context.Context, id int) ([]*models.TournamentWinner, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentAlreadyCompleted
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	groups, err := s.groupRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	var winners []*models.TournamentWinner
	var champions []*models.GroupParticipant

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, group := range groups {
			completed, err := s.matchRepo.ListCompletedByGroup(ctx, exec, group.ID)
			if err != nil {
				return err
			}
			if len(completed) == 0 {
				// A group nobody played in produces no winners and no
				// bonus; it simply does not block completion.
				s.logger.Info("skipping group with no completed matches",
					slog.Int("tournament_id", id), slog.Int("group_id", group.ID))
				continue
			}

			participants, err := s.participantRepo.ListByGroup(ctx, group.ID)
			if err != nil {
				return err
			}

			rows := buildStandingRows(participants, completed)
			groupWinners := make([]*models.TournamentWinner, 0, len(rows))
			for i, row := range rows {
				w := &models.TournamentWinner{
					TournamentID:  id,
					GroupID:       group.ID,
					ParticipantID: row.ParticipantID,
					FinalStanding: i + 1,
					Participant:   row.Participant,
				}
				if i == 0 && row.Participant != nil && !row.Participant.IsGuest() {
					w.BonusEloAwarded = tournament.WinnerBonusElo
				}
				groupWinners = append(groupWinners, w)
			}

			// The bonus is a flat credit on top of the winner's singles
			// rating; a guest at rank 1 forfeits it for the whole group.
			top := groupWinners[0]
			if top.BonusEloAwarded > 0 {
				pr, err := s.ratingRepo.GetOrCreate(ctx, exec,
					*top.Participant.PlayerID, models.ContextSingles, s.initialRating)
				if err != nil {
					return err
				}
				pr.Rating += top.BonusEloAwarded
				if err := s.ratingRepo.UpdateWithVersion(ctx, exec, pr); err != nil {
					return err
				}
				champions = append(champions, top.Participant)
			}

			if err := s.winnerRepo.BatchCreate(ctx, exec, groupWinners); err != nil {
				return err
			}
			winners = append(winners, groupWinners...)
		}
		return s.tournamentRepo.UpdateStatus(ctx, exec, id, models.StatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.notifyChampions(tournament, champions)
	return winners, nil
}

// notifyChampions is best-effort: completion already committed, a mail
// failure only gets logged.
func (s *tournamentService) notifyChampions(tournament *models.Tournament, champions []*models.GroupParticipant) {
	if s.notifier == nil {
		return
	}
	for _, champion := range champions {
		if champion.Player == nil || champion.Player.Email == "" {
			continue
		}
		subject := fmt.Sprintf("You won your group in %s", tournament.Name)
		body := fmt.Sprintf(
			"<p>Congratulations, %s!</p><p>You finished first in your group at %s and earned a %d point rating bonus.</p>",
			champion.DisplayName(), tournament.Name, tournament.WinnerBonusElo)
		if err := s.notifier.SendEmail([]string{champion.Player.Email}, subject, body); err != nil {
			s.logger.Warn("failed to send winner notification",
				slog.Int("tournament_id", tournament.ID),
				slog.Int("participant_id", champion.ID),
				slog.Any("error", err))
		}
	}
}

func (s *tournamentService) ListWinners(ctx context.Context, id int) ([]*models.TournamentWinner, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.winnerRepo.ListByTournament(ctx, id)
}

func (s *tournamentService) UploadPoster(ctx context.Context, id int, contentType string, r io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.uploader == nil {
		return nil, fmt.Errorf("poster storage is not configured")
	}

	key := fmt.Sprintf("%s/%d-%d", posterKeyPrefix, id, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload poster for tournament %d: %w", id, err)
	}

	oldKey := tournament.PosterKey
	if err := s.tournamentRepo.UpdatePosterKey(ctx, id, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete replaced poster",
				slog.Int("tournament_id", id), slog.Any("error", err))
		}
	}

	tournament.PosterKey = &result.Key
	s.populatePosterURL(tournament)
	return tournament, nil
}

func (s *tournamentService) populatePosterURL(t *models.Tournament) {
	if t == nil || t.PosterKey == nil || *t.PosterKey == "" || s.uploader == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*t.PosterKey); url != "" {
		t.PosterURL = &url
	}
}
