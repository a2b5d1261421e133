package rating

import "sort"

// GroupMatchResult is one completed group match as seen by the standings
// calculator. Sets are the 0-2 set scores; games are optional raw game
// totals (zero when the club does not track them) feeding the
// second-level tie-break.
type GroupMatchResult struct {
	ParticipantAID int
	ParticipantBID int
	SetsA          int
	SetsB          int
	GamesA         int
	GamesB         int
}

// Standing is the derived table row for one group participant. It is
// never persisted while a tournament runs; it is recomputed from the
// full match log on every request.
type Standing struct {
	ParticipantID int `json:"participant_id"`
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	SetsWon       int `json:"sets_won"`
	SetsLost      int `json:"sets_lost"`
	GamesWon      int `json:"games_won"`
	GamesLost     int `json:"games_lost"`
	Points        int `json:"points"`
}

func (s Standing) SetDiff() int  { return s.SetsWon - s.SetsLost }
func (s Standing) GameDiff() int { return s.GamesWon - s.GamesLost }

// Points policy for round-robin group play: a decisive match pays out
// 2/1, a tie pays 1 point to each side.
const (
	pointsWin  = 2
	pointsLoss = 1
	pointsTie  = 1
)

// CalculateStandings aggregates completed group matches into sorted
// standings, one entry per roster participant (all zeroes for anyone who
// has not played). The result is a pure function of roster plus match
// log: processing order does not matter and calling it twice on the same
// inputs yields identical output.
//
// Sort order is points, then set difference, then game difference, all
// descending; beyond those keys entries keep roster order (stable sort).
// Guests rank exactly like registered players here — guest status only
// matters for ELO, never for ranking.
//
// Matches referencing a participant outside the roster are ignored; the
// caller is expected to pass only completed matches (both scores
// recorded).
func CalculateStandings(participantIDs []int, results []GroupMatchResult) []Standing {
	index := make(map[int]int, len(participantIDs))
	standings := make([]Standing, 0, len(participantIDs))
	for _, id := range participantIDs {
		if _, ok := index[id]; ok {
			continue
		}
		index[id] = len(standings)
		standings = append(standings, Standing{ParticipantID: id})
	}

	for _, res := range results {
		ia, okA := index[res.ParticipantAID]
		ib, okB := index[res.ParticipantBID]
		if !okA || !okB {
			continue
		}
		a := &standings[ia]
		b := &standings[ib]

		a.SetsWon += res.SetsA
		a.SetsLost += res.SetsB
		b.SetsWon += res.SetsB
		b.SetsLost += res.SetsA

		a.GamesWon += res.GamesA
		a.GamesLost += res.GamesB
		b.GamesWon += res.GamesB
		b.GamesLost += res.GamesA

		switch outcome := ResolveOutcome(res.SetsA, res.SetsB); outcome.Winner {
		case SideA:
			a.Wins++
			a.Points += pointsWin
			b.Losses++
			b.Points += pointsLoss
		case SideB:
			b.Wins++
			b.Points += pointsWin
			a.Losses++
			a.Points += pointsLoss
		default:
			a.Points += pointsTie
			b.Points += pointsTie
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		if standings[i].SetDiff() != standings[j].SetDiff() {
			return standings[i].SetDiff() > standings[j].SetDiff()
		}
		return standings[i].GameDiff() > standings[j].GameDiff()
	})
	return standings
}
