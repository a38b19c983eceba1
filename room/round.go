package room

import (
	"strings"
	"time"

	"github.com/wfunc/wordrace/state"
)

// ValidLetter normalises s to an upper-case letter of Alphabet.
func ValidLetter(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 1 || !strings.Contains(Alphabet, s) {
		return "", false
	}
	return s, true
}

// SelectLetter records the round's letter. Only the current selector may draw,
// and only once per round.
func (r *Room) SelectLetter(caller, letter string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.LetterSelection); err != nil {
		return Snapshot{}, err
	}
	if caller != r.letterSelector {
		return Snapshot{}, newError(CodeForbidden, "not your turn to select letter")
	}
	if r.currentLetter != "" {
		return Snapshot{}, newError(CodeInvalidInput, "letter already selected")
	}
	normalized, ok := ValidLetter(letter)
	if !ok {
		return Snapshot{}, newError(CodeInvalidInput, "invalid letter %q", letter)
	}

	r.currentLetter = normalized
	return r.snapshot(), nil
}

// StartRound moves to playing on request of the creator or the selector.
func (r *Room) StartRound(caller string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.LetterSelection); err != nil {
		return Snapshot{}, err
	}
	if caller != r.creatorID && caller != r.letterSelector {
		return Snapshot{}, newError(CodeForbidden, "no permission to start the round")
	}

	if err := r.changeState(state.Playing); err != nil {
		return Snapshot{}, err
	}
	return r.snapshot(), nil
}

// AdvanceAfterLetter is the deferred auto-start. It acts only if the room is
// still selecting and still holds letter; otherwise the round already moved on
// and it reports false.
func (r *Room) AdvanceAfterLetter(letter string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.machine.Is(state.LetterSelection) || r.currentLetter == "" || r.currentLetter != letter {
		return Snapshot{}, false
	}
	if err := r.changeState(state.Playing); err != nil {
		return Snapshot{}, false
	}
	return r.snapshot(), true
}

// SubmitAnswer stores the trimmed text. Content is not judged here.
func (r *Room) SubmitAnswer(id, category, text string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.Playing); err != nil {
		return Snapshot{}, err
	}
	if err := r.requirePlayer(id); err != nil {
		return Snapshot{}, err
	}
	if !r.hasCategory(category) {
		return Snapshot{}, newError(CodeInvalidInput, "unknown category %q", category)
	}

	r.answers[id][category] = strings.TrimSpace(text)
	return r.snapshot(), nil
}

// FinishAnswers marks id as done. The first finisher starts the grace timer;
// the last one moves the room to reviewing.
func (r *Room) FinishAnswers(id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePhase(state.Playing); err != nil {
		return Snapshot{}, err
	}
	if err := r.requirePlayer(id); err != nil {
		return Snapshot{}, err
	}

	if !contains(r.finished, id) {
		if len(r.finished) == 0 {
			r.timerEnd = r.now().Add(time.Duration(r.timeLimit) * time.Second)
			r.timerStartedBy = id
		}
		r.finished = append(r.finished, id)
	}

	if r.allFinished() {
		if err := r.changeState(state.Reviewing); err != nil {
			return Snapshot{}, err
		}
	}
	return r.snapshot(), nil
}

// ExpireDeadline is the sweep's guarded transition: it moves a playing room
// whose grace timer ran out to reviewing and reports whether it did.
func (r *Room) ExpireDeadline(now time.Time) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.machine.Is(state.Playing) || r.timerEnd.IsZero() || now.Before(r.timerEnd) {
		return Snapshot{}, false
	}
	if err := r.changeState(state.Reviewing); err != nil {
		return Snapshot{}, false
	}
	return r.snapshot(), true
}
