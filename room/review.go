package room

import (
	"github.com/wfunc/wordrace/state"
)

// RoundResult describes a finalized round.
type RoundResult struct {
	Round    int                       `json:"round"`
	Points   map[string]map[string]int `json:"points"`
	Totals   map[string]int            `json:"totals"`
	Finished bool                      `json:"finished"`
}

// ReviewAnswer upserts reviewer's judgement of reviewed's answer. Reviewing
// one's own answer is refused.
func (r *Room) ReviewAnswer(reviewer, reviewed, category string, review Review) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.Reviewing); err != nil {
		return Snapshot{}, err
	}
	if err := r.requirePlayer(reviewer); err != nil {
		return Snapshot{}, err
	}
	if err := r.requirePlayer(reviewed); err != nil {
		return Snapshot{}, err
	}
	if reviewer == reviewed {
		return Snapshot{}, newError(CodeForbidden, "players cannot review their own answers")
	}
	if !r.hasCategory(category) {
		return Snapshot{}, newError(CodeInvalidInput, "unknown category %q", category)
	}

	byReviewer := r.reviews[reviewer]
	if byReviewer[reviewed] == nil {
		byReviewer[reviewed] = make(map[string]Review)
	}
	byReviewer[reviewed][category] = review
	return r.snapshot(), nil
}

// ReadyForNextRound marks id ready. When everyone is, the round is finalized
// and the result returned.
func (r *Room) ReadyForNextRound(id string) (Snapshot, *RoundResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.Reviewing); err != nil {
		return Snapshot{}, nil, err
	}
	if err := r.requirePlayer(id); err != nil {
		return Snapshot{}, nil, err
	}

	r.roundReady[id] = true
	if !r.allRoundReady() {
		return r.snapshot(), nil, nil
	}

	result, err := r.finalizeRound()
	if err != nil {
		return Snapshot{}, nil, err
	}
	return r.snapshot(), result, nil
}

// finalizeRound adds the round's points, then either finishes the game or
// opens the next round with the following selector. Caller holds r.mu and
// has checked that everyone is ready.
func (r *Room) finalizeRound() (*RoundResult, error) {
	points := RoundPoints(r.players, r.categories, r.answers, r.reviews)
	totals := Totals(points)
	result := &RoundResult{Round: r.currentRound, Points: points, Totals: totals}

	next := state.LetterSelection
	if r.currentRound >= r.roundsTotal {
		next = state.Finished
	}
	if err := r.changeState(next); err != nil {
		return nil, err
	}

	for id, p := range totals {
		r.scores[id] += p
	}
	r.resetRound()

	if next == state.Finished {
		result.Finished = true
		return result, nil
	}
	r.currentRound++
	r.letterSelector = r.nextInRotation(r.letterSelector)
	return result, nil
}
