package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/club-system/models"
	"github.com/courtside/club-system/repositories"
)

type tournamentFixture struct {
	tx           *fakeTxRunner
	tournaments  *fakeTournamentRepo
	groups       *fakeGroupRepo
	participants *fakeParticipantRepo
	matches      *fakeGroupMatchRepo
	ratings      *fakeRatingRepo
	winners      *fakeWinnerRepo
	notifier     *fakeEmailSender
	svc          TournamentService
}

func newTournamentFixture(t *testing.T) *tournamentFixture {
	t.Helper()
	f := &tournamentFixture{
		tx:           &fakeTxRunner{},
		tournaments:  newFakeTournamentRepo(),
		groups:       newFakeGroupRepo(),
		participants: newFakeParticipantRepo(),
		matches:      newFakeGroupMatchRepo(),
		ratings:      newFakeRatingRepo(),
		winners:      newFakeWinnerRepo(),
		notifier:     &fakeEmailSender{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewTournamentService(
		f.tx, f.tournaments, f.groups, f.participants, f.matches,
		f.ratings, f.winners, nil, f.notifier, logger, 1000,
	)
	return f
}

func (f *tournamentFixture) createTournament(t *testing.T, status models.TournamentStatus, bonus int) *models.Tournament {
	t.Helper()
	tournament := &models.Tournament{
		Name:           "Summer Open",
		Status:         status,
		WinnerBonusElo: bonus,
	}
	require.NoError(t, f.tournaments.Create(context.Background(), tournament))
	return tournament
}

func (f *tournamentFixture) createGroup(t *testing.T, tournamentID int) *models.TournamentGroup {
	t.Helper()
	group := &models.TournamentGroup{TournamentID: tournamentID, Name: "Group A", MatchType: "men_singles"}
	require.NoError(t, f.groups.Create(context.Background(), group))
	return group
}

func (f *tournamentFixture) addPlayer(t *testing.T, groupID, playerID int, email string) *models.GroupParticipant {
	t.Helper()
	p := &models.GroupParticipant{
		GroupID:  groupID,
		PlayerID: &playerID,
		Player:   &models.Player{ID: playerID, FirstName: "Player", Email: email},
	}
	require.NoError(t, f.participants.Create(context.Background(), p))
	return p
}

func (f *tournamentFixture) addGuest(t *testing.T, groupID int, name string) *models.GroupParticipant {
	t.Helper()
	p := &models.GroupParticipant{GroupID: groupID, GuestName: &name}
	require.NoError(t, f.participants.Create(context.Background(), p))
	return p
}

// playMatch schedules and immediately scores a match between two
// participants.
func (f *tournamentFixture) playMatch(t *testing.T, groupID int, winner, loser *models.GroupParticipant) {
	t.Helper()
	match := &models.TournamentMatch{
		GroupID:        groupID,
		Participant1ID: winner.ID,
		Participant2ID: loser.ID,
		AffectsElo:     !winner.IsGuest() && !loser.IsGuest(),
	}
	ctx := context.Background()
	require.NoError(t, f.matches.BatchCreate(ctx, nil, []*models.TournamentMatch{match}))
	require.NoError(t, f.matches.RecordResult(ctx, nil, match.ID, 2, 0, 12, 4, time.Now()))
}

func TestCreateTournamentValidation(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateTournamentInput{Name: "  "})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = f.svc.Create(ctx, CreateTournamentInput{Name: "Open", WinnerBonusElo: 501})
	assert.ErrorIs(t, err, ErrBonusEloOutOfRange)

	_, err = f.svc.Create(ctx, CreateTournamentInput{Name: "Open", WinnerBonusElo: -1})
	assert.ErrorIs(t, err, ErrBonusEloOutOfRange)

	_, err = f.svc.Create(ctx, CreateTournamentInput{
		Name:      "Open",
		StartDate: time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	created, err := f.svc.Create(ctx, CreateTournamentInput{Name: "Open", WinnerBonusElo: 500})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, created.Status)
}

func TestTournamentStateMachine(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.createTournament(t, models.StatusDraft, 0)

	// Completion requires an active tournament.
	_, err := f.svc.Complete(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentNotActive)

	require.NoError(t, f.svc.Activate(ctx, tournament.ID))
	stored, err := f.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)

	// Activation is draft-only.
	assert.ErrorIs(t, f.svc.Activate(ctx, tournament.ID), ErrTournamentNotDraft)

	// Active tournaments cannot be deleted.
	assert.ErrorIs(t, f.svc.Delete(ctx, tournament.ID), ErrTournamentNotDeletable)

	draft := f.createTournament(t, models.StatusDraft, 0)
	require.NoError(t, f.svc.Delete(ctx, draft.ID))
	_, err = f.tournaments.GetByID(ctx, draft.ID)
	assert.ErrorIs(t, err, repositories.ErrTournamentNotFound)
}

func TestCompleteAwardsBonusToWinner(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.createTournament(t, models.StatusActive, 100)
	group := f.createGroup(t, tournament.ID)

	alice := f.addPlayer(t, group.ID, 1, "alice@club.test")
	bob := f.addPlayer(t, group.ID, 2, "bob@club.test")
	f.ratings.seed(1, models.ContextSingles, 1050)
	f.playMatch(t, group.ID, alice, bob)

	winners, err := f.svc.Complete(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	assert.Equal(t, alice.ID, winners[0].ParticipantID)
	assert.Equal(t, 1, winners[0].FinalStanding)
	assert.Equal(t, 100, winners[0].BonusEloAwarded)
	assert.Equal(t, bob.ID, winners[1].ParticipantID)
	assert.Equal(t, 2, winners[1].FinalStanding)
	assert.Zero(t, winners[1].BonusEloAwarded)

	// Flat credit on top of the singles rating, no expectation math.
	assert.Equal(t, 1150, f.ratings.get(1, models.ContextSingles).Rating)
	assert.Nil(t, f.ratings.get(2, models.ContextSingles))

	stored, err := f.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, []string{"alice@club.test"}, f.notifier.sent[0].To)
}

func TestCompleteGuestWinnerForfeitsBonus(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.createTournament(t, models.StatusActive, 200)
	group := f.createGroup(t, tournament.ID)

	guest := f.addGuest(t, group.ID, "Visiting Pro")
	bob := f.addPlayer(t, group.ID, 2, "bob@club.test")
	f.playMatch(t, group.ID, guest, bob)

	winners, err := f.svc.Complete(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	// The bonus is forfeited, not redistributed to the runner-up.
	assert.Equal(t, guest.ID, winners[0].ParticipantID)
	for _, w := range winners {
		assert.Zero(t, w.BonusEloAwarded)
	}
	assert.Zero(t, f.ratings.updates)
	assert.Empty(t, f.notifier.sent)
}

func TestCompleteSkipsGroupsWithoutMatches(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.createTournament(t, models.StatusActive, 50)

	played := f.createGroup(t, tournament.ID)
	alice := f.addPlayer(t, played.ID, 1, "alice@club.test")
	bob := f.addPlayer(t, played.ID, 2, "bob@club.test")
	f.playMatch(t, played.ID, alice, bob)

	empty := f.createGroup(t, tournament.ID)
	f.addPlayer(t, empty.ID, 3, "carol@club.test")
	f.addPlayer(t, empty.ID, 4, "dave@club.test")

	winners, err := f.svc.Complete(ctx, tournament.ID)
	require.NoError(t, err)

	// Only the played group produced winner records.
	require.Len(t, winners, 2)
	for _, w := range winners {
		assert.Equal(t, played.ID, w.GroupID)
	}
	stored, err := f.tournaments.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}

func TestCompleteIsOneShot(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.createTournament(t, models.StatusActive, 100)
	group := f.createGroup(t, tournament.ID)
	alice := f.addPlayer(t, group.ID, 1, "alice@club.test")
	bob := f.addPlayer(t, group.ID, 2, "bob@club.test")
	f.playMatch(t, group.ID, alice, bob)

	_, err := f.svc.Complete(ctx, tournament.ID)
	require.NoError(t, err)

	ratingAfter := f.ratings.get(1, models.ContextSingles).Rating

	_, err = f.svc.Complete(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrTournamentAlreadyCompleted)
	assert.Equal(t, ratingAfter, f.ratings.get(1, models.ContextSingles).Rating)

	listed, err := f.svc.ListWinners(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestGetAssemblesGroups(t *testing.T) {
	f := newTournamentFixture(t)
	ctx := context.Background()
	tournament := f.createTournament(t, models.StatusActive, 0)
	group := f.createGroup(t, tournament.ID)
	alice := f.addPlayer(t, group.ID, 1, "alice@club.test")
	bob := f.addPlayer(t, group.ID, 2, "bob@club.test")
	f.playMatch(t, group.ID, alice, bob)

	got, err := f.svc.Get(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, got.Groups, 1)
	assert.Len(t, got.Groups[0].Participants, 2)
	assert.Len(t, got.Groups[0].Matches, 1)
}
