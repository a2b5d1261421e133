package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/courtside/club-system/models"
	"github.com/courtside/club-system/rating"
	"github.com/courtside/club-system/repositories"
	"github.com/courtside/club-system/schedule"
)

type CreateGroupInput struct {
	Name      string `json:"name"`
	MatchType string `json:"match_type"`
}

type AddParticipantInput struct {
	PlayerID  *int    `json:"player_id,omitempty"`
	GuestName *string `json:"guest_name,omitempty"`
}

type RecordGroupResultCommand struct {
	GroupID int  `json:"-"`
	MatchID int  `json:"-"`
	Sets1   int  `json:"sets1"`
	Sets2   int  `json:"sets2"`
	Games1  *int `json:"games1,omitempty"`
	Games2  *int `json:"games2,omitempty"`
}

// GroupStandingRow is a standings entry enriched with the participant
// it belongs to, for display.
type GroupStandingRow struct {
	rating.Standing
	Participant *models.GroupParticipant `json:"participant"`
}

type GroupService interface {
	CreateGroup(ctx context.Context, tournamentID int, input CreateGroupInput) (*models.TournamentGroup, error)
	GetGroup(ctx context.Context, groupID int) (*models.TournamentGroup, error)
	AddParticipant(ctx context.Context, groupID int, input AddParticipantInput) (*models.GroupParticipant, error)
	// GenerateSchedule creates the group's full round-robin once the
	// roster is final. The affects_elo flag of every pairing is fixed
	// here and never recomputed.
	GenerateSchedule(ctx context.Context, groupID int) ([]*models.TournamentMatch, error)
	// RecordResult scores a scheduled match (sets 0-2, ties allowed)
	// and, when the match affects ELO, updates both players' singles
	// ratings in the same transaction.
	RecordResult(ctx context.Context, cmd RecordGroupResultCommand) (*models.TournamentMatch, error)
	// Standings recomputes the live table from the completed-match log;
	// it never reads persisted counters, so it is safe to call at any
	// point of the tournament.
	Standings(ctx context.Context, groupID int) ([]GroupStandingRow, error)
}

type groupService struct {
	tx              TxRunner
	tournamentRepo  repositories.TournamentRepository
	groupRepo       repositories.GroupRepository
	participantRepo repositories.GroupParticipantRepository
	matchRepo       repositories.GroupMatchRepository
	ratingRepo      repositories.PlayerRatingRepository
	hub             *schedule.Hub
	initialRating   int
}

func NewGroupService(
	tx TxRunner,
	tournamentRepo repositories.TournamentRepository,
	groupRepo repositories.GroupRepository,
	participantRepo repositories.GroupParticipantRepository,
	matchRepo repositories.GroupMatchRepository,
	ratingRepo repositories.PlayerRatingRepository,
	hub *schedule.Hub,
	initialRating int,
) GroupService {
	return &groupService{
		tx:              tx,
		tournamentRepo:  tournamentRepo,
		groupRepo:       groupRepo,
		participantRepo: participantRepo,
		matchRepo:       matchRepo,
		ratingRepo:      ratingRepo,
		hub:             hub,
		initialRating:   initialRating,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, tournamentID int, input CreateGroupInput) (*models.TournamentGroup, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentAlreadyCompleted
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: group name", ErrNameRequired)
	}

	group := &models.TournamentGroup{
		TournamentID: tournamentID,
		Name:         strings.TrimSpace(input.Name),
		MatchType:    input.MatchType,
	}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, groupID int) (*models.TournamentGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matchRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Participants = dereferenceParticipants(participants)
	group.Matches = dereferenceMatches(matches)
	return group, nil
}

func (s *groupService) AddParticipant(ctx context.Context, groupID int, input AddParticipantInput) (*models.GroupParticipant, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, group.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentAlreadyCompleted
	}

	hasPlayer := input.PlayerID != nil
	hasGuest := input.GuestName != nil && strings.TrimSpace(*input.GuestName) != ""
	if hasPlayer == hasGuest {
		return nil, ErrGuestOrPlayerRequired
	}

	// Roster changes after the schedule exists would leave new
	// participants without matches.
	count, err := s.matchRepo.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrScheduleAlreadyGenerated
	}

	participant := &models.GroupParticipant{GroupID: groupID, PlayerID: input.PlayerID}
	if hasGuest {
		trimmed := strings.TrimSpace(*input.GuestName)
		participant.GuestName = &trimmed
	}
	if err := s.participantRepo.Create(ctx, participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *groupService) GenerateSchedule(ctx context.Context, groupID int) ([]*models.TournamentMatch, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, group.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status == models.StatusCompleted {
		return nil, ErrTournamentAlreadyCompleted
	}

	count, err := s.matchRepo.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrScheduleAlreadyGenerated
	}

	participants, err := s.participantRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	pairings, err := schedule.GenerateRoundRobin(participants)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	matches := make([]*models.TournamentMatch, 0, len(pairings))
	for _, p := range pairings {
		matches = append(matches, &models.TournamentMatch{
			GroupID:        groupID,
			Participant1ID: p.Participant1ID,
			Participant2ID: p.Participant2ID,
			AffectsElo:     p.AffectsElo,
		})
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.BatchCreate(ctx, exec, matches)
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *groupService) RecordResult(ctx context.Context, cmd RecordGroupResultCommand) (*models.TournamentMatch, error) {
	if cmd.Sets1 < 0 || cmd.Sets1 > 2 || cmd.Sets2 < 0 || cmd.Sets2 > 2 {
		return nil, ErrInvalidSetScore
	}
	if derefInt(cmd.Games1) < 0 || derefInt(cmd.Games2) < 0 {
		return nil, ErrNegativeScore
	}

	group, err := s.groupRepo.GetByID(ctx, cmd.GroupID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, group.TournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	match, err := s.matchRepo.GetByID(ctx, cmd.MatchID)
	if err != nil {
		return nil, err
	}
	if match.GroupID != cmd.GroupID {
		return nil, repositories.ErrGroupMatchNotFound
	}
	if match.Completed() {
		return nil, ErrMatchAlreadyScored
	}

	playedAt := time.Now()
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.RecordResult(ctx, exec,
			match.ID, cmd.Sets1, cmd.Sets2, derefInt(cmd.Games1), derefInt(cmd.Games2), playedAt,
		); err != nil {
			return err
		}
		if !match.AffectsElo {
			// Guest involved: ratings stay byte-identical.
			return nil
		}
		return s.applyMatchElo(ctx, exec, match, cmd.Sets1, cmd.Sets2)
	})
	if err != nil {
		if err == repositories.ErrGroupMatchAlreadyScored {
			return nil, ErrMatchAlreadyScored
		}
		return nil, err
	}

	match.Sets1, match.Sets2 = &cmd.Sets1, &cmd.Sets2
	games1, games2 := derefInt(cmd.Games1), derefInt(cmd.Games2)
	match.Games1, match.Games2 = &games1, &games2
	match.PlayedAt = &playedAt

	s.broadcastStandings(ctx, cmd.GroupID)
	return match, nil
}

// applyMatchElo updates both players' singles ratings for a completed
// group match. Only called for affects_elo pairings, which by
// construction link two registered players.
func (s *groupService) applyMatchElo(ctx context.Context, exec repositories.SQLExecutor, match *models.TournamentMatch, sets1, sets2 int) error {
	p1, err := s.participantRepo.GetByID(ctx, match.Participant1ID)
	if err != nil {
		return err
	}
	p2, err := s.participantRepo.GetByID(ctx, match.Participant2ID)
	if err != nil {
		return err
	}
	if p1.PlayerID == nil || p2.PlayerID == nil {
		return fmt.Errorf("match %d is flagged affects_elo but involves a guest", match.ID)
	}

	r1, err := s.ratingRepo.GetOrCreate(ctx, exec, *p1.PlayerID, models.ContextSingles, s.initialRating)
	if err != nil {
		return err
	}
	r2, err := s.ratingRepo.GetOrCreate(ctx, exec, *p2.PlayerID, models.ContextSingles, s.initialRating)
	if err != nil {
		return err
	}

	outcome := rating.ResolveOutcome(sets1, sets2)
	newR1 := rating.Calculate(r1.Rating, float64(r2.Rating), outcome.ScoreA)
	newR2 := rating.Calculate(r2.Rating, float64(r1.Rating), outcome.ScoreB)

	r1.Rating = newR1
	r1.MatchesPlayed++
	if outcome.Winner == rating.SideA {
		r1.MatchesWon++
	}
	r2.Rating = newR2
	r2.MatchesPlayed++
	if outcome.Winner == rating.SideB {
		r2.MatchesWon++
	}

	if err := s.ratingRepo.UpdateWithVersion(ctx, exec, r1); err != nil {
		return err
	}
	return s.ratingRepo.UpdateWithVersion(ctx, exec, r2)
}

func (s *groupService) Standings(ctx context.Context, groupID int) ([]GroupStandingRow, error) {
	participants, err := s.participantRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
			return nil, err
		}
	}

	completed, err := s.matchRepo.ListCompletedByGroup(ctx, nil, groupID)
	if err != nil {
		return nil, err
	}
	return buildStandingRows(participants, completed), nil
}

func buildStandingRows(participants []*models.GroupParticipant, completed []*models.TournamentMatch) []GroupStandingRow {
	byID := make(map[int]*models.GroupParticipant, len(participants))
	roster := make([]int, 0, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
		roster = append(roster, p.ID)
	}

	results := make([]rating.GroupMatchResult, 0, len(completed))
	for _, m := range completed {
		results = append(results, rating.GroupMatchResult{
			ParticipantAID: m.Participant1ID,
			ParticipantBID: m.Participant2ID,
			SetsA:          derefInt(m.Sets1),
			SetsB:          derefInt(m.Sets2),
			GamesA:         derefInt(m.Games1),
			GamesB:         derefInt(m.Games2),
		})
	}

	standings := rating.CalculateStandings(roster, results)
	rows := make([]GroupStandingRow, 0, len(standings))
	for _, st := range standings {
		rows = append(rows, GroupStandingRow{Standing: st, Participant: byID[st.ParticipantID]})
	}
	return rows
}

func (s *groupService) broadcastStandings(ctx context.Context, groupID int) {
	if s.hub == nil {
		return
	}
	rows, err := s.Standings(ctx, groupID)
	if err != nil {
		return
	}
	room := strconv.Itoa(groupID)
	s.hub.BroadcastToRoom(room, schedule.Message{
		Type:    "STANDINGS_UPDATED",
		Payload: rows,
		RoomID:  room,
	})
}

func dereferenceParticipants(slice []*models.GroupParticipant) []models.GroupParticipant {
	result := make([]models.GroupParticipant, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}

func dereferenceMatches(slice []*models.TournamentMatch) []models.TournamentMatch {
	result := make([]models.TournamentMatch, 0, len(slice))
	for _, ptr := range slice {
		if ptr != nil {
			result = append(result, *ptr)
		}
	}
	return result
}
