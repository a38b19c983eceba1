package room

import (
	"github.com/wfunc/wordrace/state"
)

// Snapshot is a deep copy of a room, shaped for broadcast.
type Snapshot struct {
	Code                  string                                   `json:"code"`
	CreatorID             string                                   `json:"creatorId"`
	Rounds                int                                      `json:"rounds"`
	CurrentRound          int                                      `json:"currentRound"`
	TimeLimit             int                                      `json:"timeLimit"`
	Categories            []string                                 `json:"categories"`
	Phase                 state.Phase                              `json:"phase"`
	Players               []string                                 `json:"players"`
	PlayerNames           map[string]string                        `json:"playerNames"`
	PlayerReady           map[string]bool                          `json:"playerReady"`
	CurrentLetter         *string                                  `json:"currentLetter"`
	CurrentLetterSelector *string                                  `json:"currentLetterSelector"`
	Answers               map[string]map[string]string             `json:"answers"`
	Reviews               map[string]map[string]map[string]Review `json:"reviews"`
	Scores                map[string]int                           `json:"scores"`
	FinishedPlayers       []string                                 `json:"finishedPlayers"`
	RoundReady            map[string]bool                          `json:"roundReady"`
	AllReadyForNextRound  bool                                     `json:"allReadyForNextRound"`
	TimerEndTime          *int64                                   `json:"timerEndTime"` // unix milliseconds
	TimerStartedBy        *string                                  `json:"timerStartedBy"`
	// RoundPreview is the non-authoritative score of the round under review.
	RoundPreview map[string]map[string]int `json:"roundPreview,omitempty"`
}

// ScoreBoard is the get_scores payload.
type ScoreBoard struct {
	Scores       map[string]int `json:"scores"`
	Players      []string       `json:"players"`
	CurrentRound int            `json:"currentRound"`
	TotalRounds  int            `json:"totalRounds"`
	IsFinished   bool           `json:"isFinished"`
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Room) ScoreBoard() ScoreBoard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ScoreBoard{
		Scores:       copyMap(r.scores),
		Players:      append([]string{}, r.players...),
		CurrentRound: r.currentRound,
		TotalRounds:  r.roundsTotal,
		IsFinished:   r.machine.Is(state.Finished),
	}
}

func (r *Room) snapshot() Snapshot {
	s := Snapshot{
		Code:            r.code,
		CreatorID:       r.creatorID,
		Rounds:          r.roundsTotal,
		CurrentRound:    r.currentRound,
		TimeLimit:       r.timeLimit,
		Categories:      append([]string{}, r.categories...),
		Phase:           r.machine.Current(),
		Players:         append([]string{}, r.players...),
		PlayerNames:     copyMap(r.playerNames),
		PlayerReady:     copyMap(r.playerReady),
		CurrentLetter:   optional(r.currentLetter),
		Answers:         make(map[string]map[string]string, len(r.answers)),
		Reviews:         make(map[string]map[string]map[string]Review, len(r.reviews)),
		Scores:          copyMap(r.scores),
		FinishedPlayers: append([]string{}, r.finished...),
		RoundReady:      copyMap(r.roundReady),
		TimerStartedBy:  optional(r.timerStartedBy),
	}
	s.CurrentLetterSelector = optional(r.letterSelector)
	for id, perCategory := range r.answers {
		s.Answers[id] = copyMap(perCategory)
	}
	for reviewer, reviewed := range r.reviews {
		out := make(map[string]map[string]Review, len(reviewed))
		for id, perCategory := range reviewed {
			out[id] = copyMap(perCategory)
		}
		s.Reviews[reviewer] = out
	}
	if !r.timerEnd.IsZero() {
		ms := r.timerEnd.UnixMilli()
		s.TimerEndTime = &ms
	}
	if r.machine.Is(state.Reviewing) {
		s.AllReadyForNextRound = r.allRoundReady()
		s.RoundPreview = RoundPoints(r.players, r.categories, r.answers, r.reviews)
	}
	return s
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
