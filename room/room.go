package room

import (
	"strings"
	"sync"
	"time"

	"github.com/wfunc/wordrace/state"
)

// Alphabet is the set letters are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Room is the authoritative state of one game. Every exported method locks
// the room for its whole duration, validates all guards first and only then
// mutates, so a rejected command leaves the room untouched.
type Room struct {
	code        string
	creatorID   string
	roundsTotal int
	timeLimit   int // seconds
	categories  []string
	createdAt   time.Time
	now         func() time.Time

	mu             sync.Mutex
	machine        *state.Machine
	currentRound   int
	players        []string
	playerNames    map[string]string
	playerReady    map[string]bool
	currentLetter  string
	letterSelector string
	answers        map[string]map[string]string
	reviews        ReviewBook
	scores         map[string]int
	finished       []string
	roundReady     map[string]bool
	timerEnd       time.Time
	timerStartedBy string
	finishedAt     time.Time
}

func newRoom(code string, cfg Config, now func() time.Time) *Room {
	r := &Room{
		code:        code,
		creatorID:   cfg.CreatorID,
		roundsTotal: cfg.Rounds,
		timeLimit:   cfg.TimeLimit,
		categories:  append([]string(nil), cfg.Categories...),
		createdAt:   now(),
		now:         now,
		playerNames: make(map[string]string),
		playerReady: make(map[string]bool),
		answers:     make(map[string]map[string]string),
		reviews:     make(ReviewBook),
		scores:      make(map[string]int),
		roundReady:  make(map[string]bool),
	}
	r.track(cfg.CreatorID)
	if cfg.CreatorName != "" {
		r.playerNames[cfg.CreatorID] = cfg.CreatorName
	}

	r.machine = state.NewMachine(state.Waiting)
	r.machine.AddTransition(state.Waiting, state.LetterSelection, r.hasReadyGuest)
	r.machine.AddTransition(state.LetterSelection, state.Playing, nil)
	r.machine.AddTransition(state.Playing, state.Reviewing, nil)
	r.machine.AddTransition(state.Reviewing, state.LetterSelection, func() bool {
		return r.allRoundReady() && r.currentRound < r.roundsTotal
	})
	r.machine.AddTransition(state.Reviewing, state.Finished, func() bool {
		return r.allRoundReady() && r.currentRound >= r.roundsTotal
	})

	r.machine.OnEnter(state.LetterSelection, func() { r.currentLetter = "" })
	r.machine.OnEnter(state.Playing, r.resetRound)
	r.machine.OnExit(state.Playing, func() { r.timerEnd = time.Time{} })
	r.machine.OnEnter(state.Finished, func() {
		r.currentLetter = ""
		r.finishedAt = r.now()
	})
	return r
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) CreatorID() string {
	return r.creatorID
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Room) Phase() state.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.Current()
}

// HasPlayer reports whether id is on the roster.
func (r *Room) HasPlayer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracked(id)
}

// FinishedAt returns when the room reached the finished phase.
func (r *Room) FinishedAt() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishedAt, !r.finishedAt.IsZero()
}

// --- helpers; callers hold r.mu ---

func (r *Room) tracked(id string) bool {
	_, ok := r.scores[id]
	return ok
}

// track adds id with every per-player entry the invariants require.
func (r *Room) track(id string) {
	r.players = append(r.players, id)
	r.playerReady[id] = false
	r.roundReady[id] = false
	r.scores[id] = 0
	r.answers[id] = make(map[string]string)
	r.reviews[id] = make(map[string]map[string]Review)
}

// untrack removes id from every per-player structure, including reviews other
// players wrote about it.
func (r *Room) untrack(id string) {
	r.players = without(r.players, id)
	r.finished = without(r.finished, id)
	delete(r.playerNames, id)
	delete(r.playerReady, id)
	delete(r.roundReady, id)
	delete(r.scores, id)
	delete(r.answers, id)
	delete(r.reviews, id)
	for _, reviewed := range r.reviews {
		delete(reviewed, id)
	}
}

// resetRound clears every round-scoped field. Scores survive.
func (r *Room) resetRound() {
	r.finished = nil
	r.timerEnd = time.Time{}
	r.timerStartedBy = ""
	for _, id := range r.players {
		r.answers[id] = make(map[string]string)
		r.reviews[id] = make(map[string]map[string]Review)
		r.roundReady[id] = false
	}
}

func (r *Room) hasReadyGuest() bool {
	for _, id := range r.players {
		if id != r.creatorID && r.playerReady[id] {
			return true
		}
	}
	return false
}

func (r *Room) allFinished() bool {
	return len(r.finished) > 0 && len(r.finished) == len(r.players)
}

func (r *Room) allRoundReady() bool {
	for _, id := range r.players {
		if !r.roundReady[id] {
			return false
		}
	}
	return len(r.players) > 0
}

func (r *Room) hasCategory(category string) bool {
	for _, c := range r.categories {
		if c == category {
			return true
		}
	}
	return false
}

func (r *Room) requirePhase(p state.Phase) error {
	if current := r.machine.Current(); current != p {
		return newError(CodeInvalidPhase, "command not allowed while %s, room must be %s", current, p)
	}
	return nil
}

func (r *Room) requirePlayer(id string) error {
	if !r.tracked(id) {
		return newError(CodeNotFound, "player %q is not in room %s", id, r.code)
	}
	return nil
}

// changeState takes an edge whose guards the caller already checked.
func (r *Room) changeState(to state.Phase) error {
	if err := r.machine.ChangeState(to); err != nil {
		return newError(CodeInvalidPhase, "%v", err)
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
