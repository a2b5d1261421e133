package rating

// Side identifies a match side in an Outcome. SideNone means the match
// was tied, which is only legal in tournament group play.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

// Outcome is the resolved result of a raw score pair: the winning side
// (SideNone for a tie) and the per-side match scores used by the ELO
// update (1 win, 0.5 tie, 0 loss).
type Outcome struct {
	Winner Side
	ScoreA float64
	ScoreB float64
}

// ResolveOutcome maps a raw score pair to its Outcome. Scores are sets
// or games won depending on context; the resolver does not validate
// legality — ladder submissions reject ties before ever reaching it.
func ResolveOutcome(scoreA, scoreB int) Outcome {
	switch {
	case scoreA > scoreB:
		return Outcome{Winner: SideA, ScoreA: ScoreWin, ScoreB: ScoreLoss}
	case scoreB > scoreA:
		return Outcome{Winner: SideB, ScoreA: ScoreLoss, ScoreB: ScoreWin}
	default:
		return Outcome{Winner: SideNone, ScoreA: ScoreTie, ScoreB: ScoreTie}
	}
}
