package room

import (
	"strings"

	"github.com/wfunc/wordrace/state"
)

// AddPlayer puts id on the roster while the room is waiting. Joining twice
// only refreshes the display name.
func (r *Room) AddPlayer(id, name string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		return Snapshot{}, newError(CodeInvalidInput, "player id is required")
	}
	if err := r.requirePhase(state.Waiting); err != nil {
		return Snapshot{}, newError(CodeInvalidPhase, "game already started")
	}

	if !r.tracked(id) {
		r.track(id)
	}
	if name = strings.TrimSpace(name); name != "" {
		r.playerNames[id] = name
	}
	return r.snapshot(), nil
}

// RenamePlayer updates a display name in any phase.
func (r *Room) RenamePlayer(id, name string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return Snapshot{}, newError(CodeInvalidInput, "name must not be empty")
	}
	if err := r.requirePlayer(id); err != nil {
		return Snapshot{}, err
	}

	r.playerNames[id] = name
	return r.snapshot(), nil
}

func (r *Room) ToggleReady(id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.Waiting); err != nil {
		return Snapshot{}, err
	}
	if err := r.requirePlayer(id); err != nil {
		return Snapshot{}, err
	}

	r.playerReady[id] = !r.playerReady[id]
	return r.snapshot(), nil
}

// StartGame keeps the creator and every ready player, drops the rest and
// opens round one with the creator drawing. It returns the dropped players.
func (r *Room) StartGame(caller string) (Snapshot, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.Waiting); err != nil {
		return Snapshot{}, nil, err
	}
	if caller != r.creatorID {
		return Snapshot{}, nil, newError(CodeForbidden, "only the creator can start the game")
	}
	if !r.hasReadyGuest() {
		return Snapshot{}, nil, ErrInsufficientPlayers
	}

	var removed []string
	for _, id := range r.players {
		if id != r.creatorID && !r.playerReady[id] {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		r.untrack(id)
	}

	if err := r.changeState(state.LetterSelection); err != nil {
		return Snapshot{}, nil, err
	}
	r.currentRound = 1
	r.letterSelector = r.creatorID
	return r.snapshot(), removed, nil
}

// Departure reports what a removal did to the round in progress.
type Departure struct {
	// AnsweringClosed is set when the leaver was the last player still
	// answering, so the room moved to reviewing.
	AnsweringClosed bool
	// Result is set when the leaver was the last player not ready, so the
	// round was finalized.
	Result *RoundResult
}

// RemovePlayer takes a non-creator off the roster. Mid-game the selector role
// passes on and the round moves forward if the leaver was the last one holding
// it up.
func (r *Room) RemovePlayer(id string) (Snapshot, Departure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayer(id); err != nil {
		return Snapshot{}, Departure{}, err
	}
	if id == r.creatorID {
		return Snapshot{}, Departure{}, newError(CodeForbidden, "the creator cannot leave the room")
	}
	if r.machine.Is(state.Finished) {
		return Snapshot{}, Departure{}, newError(CodeInvalidPhase, "game is finished")
	}

	if r.letterSelector == id {
		r.letterSelector = r.nextInRotation(id)
	}
	r.untrack(id)

	switch r.machine.Current() {
	case state.Playing:
		if r.allFinished() {
			if err := r.changeState(state.Reviewing); err != nil {
				return Snapshot{}, Departure{}, err
			}
			return r.snapshot(), Departure{AnsweringClosed: true}, nil
		}
	case state.Reviewing:
		if r.allRoundReady() {
			result, err := r.finalizeRound()
			if err != nil {
				return Snapshot{}, Departure{}, err
			}
			return r.snapshot(), Departure{Result: result}, nil
		}
	}
	return r.snapshot(), Departure{}, nil
}

// nextInRotation returns the player after id in join order, wrapping around.
func (r *Room) nextInRotation(id string) string {
	for i, p := range r.players {
		if p == id {
			return r.players[(i+1)%len(r.players)]
		}
	}
	if len(r.players) == 0 {
		return ""
	}
	return r.players[0]
}
