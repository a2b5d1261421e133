package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/club-system/models"
)

type ladderFixture struct {
	tx      *fakeTxRunner
	ladders *fakeLadderRepo
	members *fakeMemberRepo
	matches *fakeLadderMatchRepo
	ratings *fakeRatingRepo
	svc     LadderMatchService
	ladder  *models.Ladder
}

func newLadderFixture(t *testing.T, ladderType models.LadderType, memberIDs ...int) *ladderFixture {
	t.Helper()
	f := &ladderFixture{
		tx:      &fakeTxRunner{},
		ladders: newFakeLadderRepo(),
		members: newFakeMemberRepo(),
		matches: newFakeLadderMatchRepo(),
		ratings: newFakeRatingRepo(),
	}
	f.ladder = &models.Ladder{Name: "Club Ladder", Type: ladderType}
	require.NoError(t, f.ladders.Create(context.Background(), f.ladder))
	for _, id := range memberIDs {
		require.NoError(t, f.members.Add(context.Background(), &models.LadderMember{
			LadderID: f.ladder.ID, PlayerID: id, Active: true,
		}))
	}
	f.svc = NewLadderMatchService(f.tx, f.ladders, f.members, f.matches, f.ratings, 1000)
	return f
}

func (f *ladderFixture) command() RecordLadderMatchCommand {
	return RecordLadderMatchCommand{
		LadderID:  f.ladder.ID,
		Player1ID: 1,
		Player2ID: 2,
		Score1:    6,
		Score2:    4,
		PlayedOn:  time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
	}
}

func TestRecordMatchSingles(t *testing.T) {
	f := newLadderFixture(t, models.LadderTypeSingles, 1, 2)

	match, err := f.svc.RecordMatch(context.Background(), f.command())
	require.NoError(t, err)

	assert.Equal(t, 1000, match.Player1EloBefore)
	assert.Equal(t, 1016, match.Player1EloAfter)
	assert.Equal(t, 1000, match.Player2EloBefore)
	assert.Equal(t, 984, match.Player2EloAfter)

	winner := f.ratings.get(1, models.ContextSingles)
	loser := f.ratings.get(2, models.ContextSingles)
	assert.Equal(t, 1016, winner.Rating)
	assert.Equal(t, 1, winner.MatchesPlayed)
	assert.Equal(t, 1, winner.MatchesWon)
	assert.Equal(t, 984, loser.Rating)
	assert.Equal(t, 1, loser.MatchesPlayed)
	assert.Equal(t, 0, loser.MatchesWon)

	assert.Equal(t, 1, f.tx.calls)
	// Submission timestamps collapse to the calendar date.
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), match.PlayedOn)
}

func TestRecordMatchValidation(t *testing.T) {
	partner := func(id int) *int { return &id }

	tests := []struct {
		name       string
		ladderType models.LadderType
		mutate     func(*RecordLadderMatchCommand)
		wantErr    error
	}{
		{
			name:       "same player on both sides",
			ladderType: models.LadderTypeSingles,
			mutate:     func(c *RecordLadderMatchCommand) { c.Player2ID = c.Player1ID },
			wantErr:    ErrSamePlayer,
		},
		{
			name:       "negative score",
			ladderType: models.LadderTypeSingles,
			mutate:     func(c *RecordLadderMatchCommand) { c.Score2 = -1 },
			wantErr:    ErrNegativeScore,
		},
		{
			name:       "tied score",
			ladderType: models.LadderTypeSingles,
			mutate:     func(c *RecordLadderMatchCommand) { c.Score1, c.Score2 = 5, 5 },
			wantErr:    ErrTiedScoreNotAllowed,
		},
		{
			name:       "missing date",
			ladderType: models.LadderTypeSingles,
			mutate:     func(c *RecordLadderMatchCommand) { c.PlayedOn = time.Time{} },
			wantErr:    ErrValidationFailed,
		},
		{
			name:       "partner on singles ladder",
			ladderType: models.LadderTypeSingles,
			mutate:     func(c *RecordLadderMatchCommand) { c.Partner1ID = partner(3) },
			wantErr:    ErrPartnerNotAllowed,
		},
		{
			name:       "missing partner on doubles ladder",
			ladderType: models.LadderTypeDoubles,
			mutate:     func(c *RecordLadderMatchCommand) { c.Partner1ID = partner(3) },
			wantErr:    ErrPartnerRequired,
		},
		{
			name:       "partner playing both sides",
			ladderType: models.LadderTypeDoubles,
			mutate: func(c *RecordLadderMatchCommand) {
				c.Partner1ID = partner(3)
				c.Partner2ID = partner(3)
			},
			wantErr: ErrPartnerOverlap,
		},
		{
			name:       "partner duplicating a primary player",
			ladderType: models.LadderTypeDoubles,
			mutate: func(c *RecordLadderMatchCommand) {
				c.Partner1ID = partner(2)
				c.Partner2ID = partner(4)
			},
			wantErr: ErrPartnerOverlap,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newLadderFixture(t, tc.ladderType, 1, 2, 3, 4)
			cmd := f.command()
			tc.mutate(&cmd)

			_, err := f.svc.RecordMatch(context.Background(), cmd)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, f.matches.matches)
			assert.Zero(t, f.ratings.updates, "no rating may change on a rejected submission")
		})
	}
}

func TestRecordMatchRequiresActiveMembership(t *testing.T) {
	f := newLadderFixture(t, models.LadderTypeSingles, 1, 2)
	require.NoError(t, f.members.SetActive(context.Background(), f.ladder.ID, 2, false))

	_, err := f.svc.RecordMatch(context.Background(), f.command())
	assert.ErrorIs(t, err, ErrNotLadderMember)
	assert.Empty(t, f.matches.matches)
}

func TestRecordMatchDuplicateGuard(t *testing.T) {
	f := newLadderFixture(t, models.LadderTypeSingles, 1, 2)

	_, err := f.svc.RecordMatch(context.Background(), f.command())
	require.NoError(t, err)

	ratingsBefore := map[int]int{
		1: f.ratings.get(1, models.ContextSingles).Rating,
		2: f.ratings.get(2, models.ContextSingles).Rating,
	}
	updatesBefore := f.ratings.updates

	_, err = f.svc.RecordMatch(context.Background(), f.command())
	assert.ErrorIs(t, err, ErrDuplicateMatch)

	// Same match with sides flipped is the same match.
	swapped := f.command()
	swapped.Player1ID, swapped.Player2ID = swapped.Player2ID, swapped.Player1ID
	swapped.Score1, swapped.Score2 = swapped.Score2, swapped.Score1
	_, err = f.svc.RecordMatch(context.Background(), swapped)
	assert.ErrorIs(t, err, ErrDuplicateMatch)

	assert.Len(t, f.matches.matches, 1)
	assert.Equal(t, updatesBefore, f.ratings.updates)
	assert.Equal(t, ratingsBefore[1], f.ratings.get(1, models.ContextSingles).Rating)
	assert.Equal(t, ratingsBefore[2], f.ratings.get(2, models.ContextSingles).Rating)
}

func TestRecordMatchDoublesPerPlayerDeltas(t *testing.T) {
	f := newLadderFixture(t, models.LadderTypeDoubles, 1, 2, 3, 4)
	f.ratings.seed(1, models.ContextDoubles, 1100)
	f.ratings.seed(3, models.ContextDoubles, 900)
	f.ratings.seed(2, models.ContextDoubles, 1000)
	f.ratings.seed(4, models.ContextDoubles, 1000)

	cmd := f.command()
	partner1, partner2 := 3, 4
	cmd.Partner1ID, cmd.Partner2ID = &partner1, &partner2

	match, err := f.svc.RecordMatch(context.Background(), cmd)
	require.NoError(t, err)

	// Both winners faced the same opposing average, so the lower-rated
	// partner gains more than the higher-rated one.
	assert.Equal(t, 1112, match.Player1EloAfter)
	require.NotNil(t, match.Partner1EloAfter)
	assert.Equal(t, 920, *match.Partner1EloAfter)

	assert.Equal(t, 984, match.Player2EloAfter)
	require.NotNil(t, match.Partner2EloAfter)
	assert.Equal(t, 984, *match.Partner2EloAfter)

	for _, playerID := range []int{1, 2, 3, 4} {
		pr := f.ratings.get(playerID, models.ContextDoubles)
		assert.Equal(t, 1, pr.MatchesPlayed, "player %d", playerID)
	}
	assert.Equal(t, 1, f.ratings.get(1, models.ContextDoubles).MatchesWon)
	assert.Equal(t, 1, f.ratings.get(3, models.ContextDoubles).MatchesWon)
	assert.Equal(t, 0, f.ratings.get(2, models.ContextDoubles).MatchesWon)
	assert.Equal(t, 0, f.ratings.get(4, models.ContextDoubles).MatchesWon)
}

func TestRecordMatchMixedUsesDoublesRatings(t *testing.T) {
	f := newLadderFixture(t, models.LadderTypeMixed, 1, 2, 3, 4)

	cmd := f.command()
	partner1, partner2 := 3, 4
	cmd.Partner1ID, cmd.Partner2ID = &partner1, &partner2

	_, err := f.svc.RecordMatch(context.Background(), cmd)
	require.NoError(t, err)

	assert.NotNil(t, f.ratings.get(1, models.ContextDoubles))
	assert.Nil(t, f.ratings.get(1, models.ContextSingles))
}

func TestRecordMatchSnapshotsMatchStoredRatings(t *testing.T) {
	f := newLadderFixture(t, models.LadderTypeSingles, 1, 2)
	f.ratings.seed(1, models.ContextSingles, 1200)
	f.ratings.seed(2, models.ContextSingles, 1000)

	cmd := f.command()
	cmd.Score1, cmd.Score2 = 2, 6 // upset: lower-rated player 2 wins

	match, err := f.svc.RecordMatch(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 1200, match.Player1EloBefore)
	assert.Equal(t, 1000, match.Player2EloBefore)
	assert.Equal(t, match.Player1EloAfter, f.ratings.get(1, models.ContextSingles).Rating)
	assert.Equal(t, match.Player2EloAfter, f.ratings.get(2, models.ContextSingles).Rating)
	// Zero-sum at equal K.
	delta1 := match.Player1EloAfter - match.Player1EloBefore
	delta2 := match.Player2EloAfter - match.Player2EloBefore
	assert.Equal(t, 0, delta1+delta2)
	assert.Less(t, delta1, 0)
}
