package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/courtside/club-system/models"
	"github.com/courtside/club-system/repositories"
)

// In-memory repository fakes. They reproduce the contracts the services
// depend on (sentinel errors, version checks, unscored guards) without a
// database.

type fakeTxRunner struct {
	calls int
}

func (f *fakeTxRunner) RunInTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.calls++
	return fn(nil)
}

type fakeLadderRepo struct {
	ladders map[int]*models.Ladder
	nextID  int
}

func newFakeLadderRepo() *fakeLadderRepo {
	return &fakeLadderRepo{ladders: map[int]*models.Ladder{}, nextID: 1}
}

func (f *fakeLadderRepo) Create(_ context.Context, ladder *models.Ladder) error {
	ladder.ID = f.nextID
	f.nextID++
	ladder.CreatedAt = time.Now()
	f.ladders[ladder.ID] = ladder
	return nil
}

func (f *fakeLadderRepo) GetByID(_ context.Context, id int) (*models.Ladder, error) {
	ladder, ok := f.ladders[id]
	if !ok {
		return nil, repositories.ErrLadderNotFound
	}
	return ladder, nil
}

func (f *fakeLadderRepo) List(_ context.Context) ([]*models.Ladder, error) {
	out := make([]*models.Ladder, 0, len(f.ladders))
	for _, l := range f.ladders {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeMemberRepo struct {
	members map[string]*models.LadderMember
	nextID  int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[string]*models.LadderMember{}, nextID: 1}
}

func memberKey(ladderID, playerID int) string {
	return fmt.Sprintf("%d/%d", ladderID, playerID)
}

func (f *fakeMemberRepo) Add(_ context.Context, member *models.LadderMember) error {
	key := memberKey(member.LadderID, member.PlayerID)
	if _, ok := f.members[key]; ok {
		return repositories.ErrLadderMemberConflict
	}
	member.ID = f.nextID
	f.nextID++
	f.members[key] = member
	return nil
}

func (f *fakeMemberRepo) Get(_ context.Context, ladderID, playerID int) (*models.LadderMember, error) {
	member, ok := f.members[memberKey(ladderID, playerID)]
	if !ok {
		return nil, repositories.ErrLadderMemberNotFound
	}
	return member, nil
}

func (f *fakeMemberRepo) SetActive(_ context.Context, ladderID, playerID int, active bool) error {
	member, ok := f.members[memberKey(ladderID, playerID)]
	if !ok {
		return repositories.ErrLadderMemberNotFound
	}
	member.Active = active
	return nil
}

func (f *fakeMemberRepo) IsActiveMember(_ context.Context, ladderID, playerID int) (bool, error) {
	member, ok := f.members[memberKey(ladderID, playerID)]
	return ok && member.Active, nil
}

func (f *fakeMemberRepo) ListActiveByLadder(_ context.Context, ladderID int) ([]*models.LadderMember, error) {
	out := make([]*models.LadderMember, 0)
	for _, m := range f.members {
		if m.LadderID == ladderID && m.Active {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeLadderMatchRepo struct {
	matches []*models.LadderMatch
	nextID  int
}

func newFakeLadderMatchRepo() *fakeLadderMatchRepo {
	return &fakeLadderMatchRepo{nextID: 1}
}

func (f *fakeLadderMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.LadderMatch) error {
	match.ID = f.nextID
	f.nextID++
	match.CreatedAt = time.Now()
	stored := *match
	f.matches = append(f.matches, &stored)
	return nil
}

func (f *fakeLadderMatchRepo) GetByID(_ context.Context, id int) (*models.LadderMatch, error) {
	for _, m := range f.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrLadderMatchNotFound
}

func (f *fakeLadderMatchRepo) ListByLadder(_ context.Context, ladderID int) ([]*models.LadderMatch, error) {
	out := make([]*models.LadderMatch, 0)
	for _, m := range f.matches {
		if m.LadderID == ladderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeLadderMatchRepo) ExistsDuplicate(_ context.Context, _ repositories.SQLExecutor, ladderID int, playedOn time.Time, player1ID, player2ID, score1, score2 int) (bool, error) {
	for _, m := range f.matches {
		if m.LadderID != ladderID || !m.PlayedOn.Equal(playedOn) {
			continue
		}
		same := m.Player1ID == player1ID && m.Player2ID == player2ID &&
			m.Score1 == score1 && m.Score2 == score2
		swapped := m.Player1ID == player2ID && m.Player2ID == player1ID &&
			m.Score1 == score2 && m.Score2 == score1
		if same || swapped {
			return true, nil
		}
	}
	return false, nil
}

type fakeRatingRepo struct {
	ratings map[string]*models.PlayerRating
	nextID  int
	updates int
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{ratings: map[string]*models.PlayerRating{}, nextID: 1}
}

func ratingKey(playerID int, ratingContext models.RatingContext) string {
	return fmt.Sprintf("%d/%s", playerID, ratingContext)
}

// seed installs a rating row directly, bypassing GetOrCreate.
func (f *fakeRatingRepo) seed(playerID int, ratingContext models.RatingContext, value int) *models.PlayerRating {
	pr := &models.PlayerRating{
		ID:       f.nextID,
		PlayerID: playerID,
		Context:  ratingContext,
		Rating:   value,
		Version:  1,
	}
	f.nextID++
	f.ratings[ratingKey(playerID, ratingContext)] = pr
	return pr
}

func (f *fakeRatingRepo) get(playerID int, ratingContext models.RatingContext) *models.PlayerRating {
	return f.ratings[ratingKey(playerID, ratingContext)]
}

func (f *fakeRatingRepo) GetOrCreate(_ context.Context, _ repositories.SQLExecutor, playerID int, ratingContext models.RatingContext, initialRating int) (*models.PlayerRating, error) {
	if pr, ok := f.ratings[ratingKey(playerID, ratingContext)]; ok {
		copied := *pr
		return &copied, nil
	}
	pr := f.seed(playerID, ratingContext, initialRating)
	copied := *pr
	return &copied, nil
}

func (f *fakeRatingRepo) ListByPlayer(_ context.Context, playerID int) ([]models.PlayerRating, error) {
	out := make([]models.PlayerRating, 0)
	for _, pr := range f.ratings {
		if pr.PlayerID == playerID {
			out = append(out, *pr)
		}
	}
	return out, nil
}

func (f *fakeRatingRepo) ListByContext(_ context.Context, ratingContext models.RatingContext) ([]*models.PlayerRating, error) {
	out := make([]*models.PlayerRating, 0)
	for _, pr := range f.ratings {
		if pr.Context == ratingContext {
			copied := *pr
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out, nil
}

func (f *fakeRatingRepo) UpdateWithVersion(_ context.Context, _ repositories.SQLExecutor, rating *models.PlayerRating) error {
	stored := f.ratings[ratingKey(rating.PlayerID, rating.Context)]
	if stored == nil || stored.Version != rating.Version {
		return repositories.ErrRatingVersionConflict
	}
	rating.Version++
	copied := *rating
	f.ratings[ratingKey(rating.PlayerID, rating.Context)] = &copied
	f.updates++
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}, nextID: 1}
}

func (f *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	t.ID = f.nextID
	f.nextID++
	t.CreatedAt = time.Now()
	f.tournaments[t.ID] = t
	return nil
}

func (f *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTournamentRepo) List(_ context.Context, status *models.TournamentStatus) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0)
	for _, t := range f.tournaments {
		if status == nil || t.Status == *status {
			copied := *t
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (f *fakeTournamentRepo) UpdatePosterKey(_ context.Context, id int, posterKey *string) error {
	t, ok := f.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.PosterKey = posterKey
	return nil
}

func (f *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(f.tournaments, id)
	return nil
}

type fakeGroupRepo struct {
	groups map[int]*models.TournamentGroup
	nextID int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[int]*models.TournamentGroup{}, nextID: 1}
}

func (f *fakeGroupRepo) Create(_ context.Context, group *models.TournamentGroup) error {
	group.ID = f.nextID
	f.nextID++
	group.CreatedAt = time.Now()
	f.groups[group.ID] = group
	return nil
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id int) (*models.TournamentGroup, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, repositories.ErrGroupNotFound
	}
	copied := *g
	return &copied, nil
}

func (f *fakeGroupRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.TournamentGroup, error) {
	out := make([]*models.TournamentGroup, 0)
	for _, g := range f.groups {
		if g.TournamentID == tournamentID {
			copied := *g
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeParticipantRepo struct {
	participants map[int]*models.GroupParticipant
	nextID       int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: map[int]*models.GroupParticipant{}, nextID: 1}
}

func (f *fakeParticipantRepo) Create(_ context.Context, p *models.GroupParticipant) error {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	f.participants[p.ID] = p
	return nil
}

func (f *fakeParticipantRepo) GetByID(_ context.Context, id int) (*models.GroupParticipant, error) {
	p, ok := f.participants[id]
	if !ok {
		return nil, repositories.ErrGroupParticipantNotFound
	}
	return p, nil
}

func (f *fakeParticipantRepo) ListByGroup(_ context.Context, groupID int) ([]*models.GroupParticipant, error) {
	out := make([]*models.GroupParticipant, 0)
	for _, p := range f.participants {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeGroupMatchRepo struct {
	matches map[int]*models.TournamentMatch
	nextID  int
}

func newFakeGroupMatchRepo() *fakeGroupMatchRepo {
	return &fakeGroupMatchRepo{matches: map[int]*models.TournamentMatch{}, nextID: 1}
}

func (f *fakeGroupMatchRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, matches []*models.TournamentMatch) error {
	for _, m := range matches {
		m.ID = f.nextID
		f.nextID++
		m.CreatedAt = time.Now()
		stored := *m
		f.matches[m.ID] = &stored
	}
	return nil
}

func (f *fakeGroupMatchRepo) GetByID(_ context.Context, id int) (*models.TournamentMatch, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repositories.ErrGroupMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeGroupMatchRepo) listByGroup(groupID int, completedOnly bool) []*models.TournamentMatch {
	out := make([]*models.TournamentMatch, 0)
	for _, m := range f.matches {
		if m.GroupID != groupID {
			continue
		}
		if completedOnly && !m.Completed() {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeGroupMatchRepo) ListByGroup(_ context.Context, groupID int) ([]*models.TournamentMatch, error) {
	return f.listByGroup(groupID, false), nil
}

func (f *fakeGroupMatchRepo) ListCompletedByGroup(_ context.Context, _ repositories.SQLExecutor, groupID int) ([]*models.TournamentMatch, error) {
	return f.listByGroup(groupID, true), nil
}

func (f *fakeGroupMatchRepo) CountByGroup(_ context.Context, groupID int) (int, error) {
	return len(f.listByGroup(groupID, false)), nil
}

func (f *fakeGroupMatchRepo) RecordResult(_ context.Context, _ repositories.SQLExecutor, matchID, sets1, sets2, games1, games2 int, playedAt time.Time) error {
	m, ok := f.matches[matchID]
	if !ok {
		return repositories.ErrGroupMatchNotFound
	}
	if m.Completed() {
		return repositories.ErrGroupMatchAlreadyScored
	}
	m.Sets1, m.Sets2 = &sets1, &sets2
	m.Games1, m.Games2 = &games1, &games2
	m.PlayedAt = &playedAt
	return nil
}

type fakeWinnerRepo struct {
	winners []*models.TournamentWinner
	nextID  int
}

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{nextID: 1}
}

func (f *fakeWinnerRepo) BatchCreate(_ context.Context, _ repositories.SQLExecutor, winners []*models.TournamentWinner) error {
	for _, w := range winners {
		for _, existing := range f.winners {
			if existing.GroupID == w.GroupID && existing.ParticipantID == w.ParticipantID {
				return repositories.ErrWinnerConflict
			}
		}
		w.ID = f.nextID
		f.nextID++
		w.CreatedAt = time.Now()
		stored := *w
		f.winners = append(f.winners, &stored)
	}
	return nil
}

func (f *fakeWinnerRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.TournamentWinner, error) {
	out := make([]*models.TournamentWinner, 0)
	for _, w := range f.winners {
		if w.TournamentID == tournamentID {
			out = append(out, w)
		}
	}
	return out, nil
}

type sentEmail struct {
	To      []string
	Subject string
	Body    string
}

type fakeEmailSender struct {
	sent []sentEmail
}

func (f *fakeEmailSender) SendEmail(to []string, subject, body string) error {
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}
