package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfunc/wordrace/state"
)

// testClock is a manually advanced clock.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// sequenceCodes hands out codes in order, repeating the last one.
type sequenceCodes struct {
	codes []string
	next  int
}

func (s *sequenceCodes) NewCode() string {
	code := s.codes[min(s.next, len(s.codes)-1)]
	s.next++
	return code
}

func newTestManager(t *testing.T) (*Manager, *testClock) {
	t.Helper()
	clk := &testClock{now: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)}
	return NewRoomManager(WithClock(clk.Now)), clk
}

func createRoom(t *testing.T, m *Manager, rounds int) *Room {
	t.Helper()
	r, err := m.CreateRoom(Config{
		CreatorID:   "A",
		CreatorName: "Alice",
		Rounds:      rounds,
		TimeLimit:   10,
		Categories:  []string{"Country", "Animal"},
	})
	require.NoError(t, err)
	return r
}

// startedRoom returns a room past start_game with players A (creator), B, C.
func startedRoom(t *testing.T, rounds int) (*Room, *testClock) {
	t.Helper()
	m, clk := newTestManager(t)
	r := createRoom(t, m, rounds)
	for _, id := range []string{"B", "C"} {
		_, err := r.AddPlayer(id, "Player "+id)
		require.NoError(t, err)
		_, err = r.ToggleReady(id)
		require.NoError(t, err)
	}
	_, removed, err := r.StartGame("A")
	require.NoError(t, err)
	require.Empty(t, removed)
	return r, clk
}

// playToReviewing draws letter and has everyone finish.
func playToReviewing(t *testing.T, r *Room, letter string) {
	t.Helper()
	selector := *r.Snapshot().CurrentLetterSelector
	_, err := r.SelectLetter(selector, letter)
	require.NoError(t, err)
	_, ok := r.AdvanceAfterLetter(letter)
	require.True(t, ok)
	for _, id := range r.Snapshot().Players {
		_, err := r.FinishAnswers(id)
		require.NoError(t, err)
	}
	require.Equal(t, state.Reviewing, r.Phase())
}

func readyAll(t *testing.T, r *Room) *RoundResult {
	t.Helper()
	var result *RoundResult
	for _, id := range r.Snapshot().Players {
		_, res, err := r.ReadyForNextRound(id)
		require.NoError(t, err)
		if res != nil {
			result = res
		}
	}
	require.NotNil(t, result, "the last ready player finalizes the round")
	return result
}

// assertConsistent checks that per-player maps cover exactly the roster.
func assertConsistent(t *testing.T, s Snapshot) {
	t.Helper()
	assert.Len(t, s.Scores, len(s.Players))
	assert.Len(t, s.Answers, len(s.Players))
	assert.Len(t, s.Reviews, len(s.Players))
	assert.Len(t, s.PlayerReady, len(s.Players))
	assert.Len(t, s.RoundReady, len(s.Players))
	for _, id := range s.Players {
		assert.Contains(t, s.Scores, id)
		assert.Contains(t, s.Answers, id)
		assert.Contains(t, s.Reviews, id)
		assert.Contains(t, s.PlayerReady, id)
		assert.Contains(t, s.RoundReady, id)
	}
	assert.Contains(t, s.Players, s.CreatorID)
	if s.Phase == state.Waiting || s.Phase == state.Finished {
		assert.Nil(t, s.CurrentLetter, "no letter while %s", s.Phase)
	}
}

func TestScenario_FullGame(t *testing.T) {
	m, clk := newTestManager(t)
	r := createRoom(t, m, 2)

	// 1. B and C ready, A starts.
	for _, id := range []string{"B", "C"} {
		_, err := r.AddPlayer(id, "")
		require.NoError(t, err)
		_, err = r.ToggleReady(id)
		require.NoError(t, err)
	}
	s, removed, err := r.StartGame("A")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, state.LetterSelection, s.Phase)
	assert.Equal(t, 1, s.CurrentRound)
	assert.Equal(t, "A", *s.CurrentLetterSelector)
	assertConsistent(t, s)

	// 2. A draws F, auto-advance starts the round.
	s, err = r.SelectLetter("A", "F")
	require.NoError(t, err)
	assert.Equal(t, "F", *s.CurrentLetter)
	s, ok := r.AdvanceAfterLetter("F")
	require.True(t, ok)
	assert.Equal(t, state.Playing, s.Phase)
	assert.Equal(t, map[string]map[string]string{"A": {}, "B": {}, "C": {}}, s.Answers)

	// 3. Answers, then everyone finishes before the timer fires.
	_, err = r.SubmitAnswer("A", "Country", "France")
	require.NoError(t, err)
	_, err = r.SubmitAnswer("B", "Country", " France ")
	require.NoError(t, err)
	_, err = r.SubmitAnswer("C", "Country", "")
	require.NoError(t, err)

	s, err = r.FinishAnswers("A")
	require.NoError(t, err)
	assert.Equal(t, state.Playing, s.Phase)
	require.NotNil(t, s.TimerStartedBy)
	assert.Equal(t, "A", *s.TimerStartedBy)
	require.NotNil(t, s.TimerEndTime)
	assert.Equal(t, clk.Now().Add(10*time.Second).UnixMilli(), *s.TimerEndTime)

	_, err = r.FinishAnswers("B")
	require.NoError(t, err)
	s, err = r.FinishAnswers("C")
	require.NoError(t, err)
	assert.Equal(t, state.Reviewing, s.Phase)
	assert.Nil(t, s.TimerEndTime)

	// 4. Reviews: duplicates, nobody marked unique.
	notUnique := Review{IsValid: True, IsUnique: False}
	for _, rv := range []struct{ reviewer, reviewed string }{
		{"B", "A"}, {"C", "A"}, {"A", "B"}, {"C", "B"},
	} {
		_, err := r.ReviewAnswer(rv.reviewer, rv.reviewed, "Country", notUnique)
		require.NoError(t, err)
	}
	s = r.Snapshot()
	assert.Equal(t, 5, s.RoundPreview["A"]["Country"])
	assert.Equal(t, 5, s.RoundPreview["B"]["Country"])
	assert.Equal(t, 0, s.RoundPreview["C"]["Country"])
	assert.Equal(t, 0, s.RoundPreview["A"]["Animal"])

	// 5. Everyone ready: scores applied, round two, selector rotates to B.
	result := readyAll(t, r)
	assert.Equal(t, 1, result.Round)
	assert.False(t, result.Finished)
	assert.Equal(t, map[string]int{"A": 5, "B": 5, "C": 0}, result.Totals)

	s = r.Snapshot()
	assert.Equal(t, map[string]int{"A": 5, "B": 5, "C": 0}, s.Scores)
	assert.Equal(t, 2, s.CurrentRound)
	assert.Equal(t, "B", *s.CurrentLetterSelector)
	assert.Nil(t, s.CurrentLetter)
	assert.Equal(t, state.LetterSelection, s.Phase)
	assert.Empty(t, s.FinishedPlayers)
	assert.Empty(t, s.Answers["A"])
	assertConsistent(t, s)

	// 6. The last round finishes the game instead of advancing.
	playToReviewing(t, r, "Q")
	result = readyAll(t, r)
	assert.True(t, result.Finished)

	s = r.Snapshot()
	assert.Equal(t, state.Finished, s.Phase)
	assert.Equal(t, 2, s.CurrentRound)
	assert.Nil(t, s.CurrentLetter, "the last letter does not outlive the game")
	assert.Nil(t, s.TimerEndTime)
	assert.Equal(t, map[string]int{"A": 5, "B": 5, "C": 0}, s.Scores)
	_, finished := r.FinishedAt()
	assert.True(t, finished)

	board := r.ScoreBoard()
	assert.True(t, board.IsFinished)
	assert.Equal(t, 2, board.TotalRounds)
	assert.Equal(t, []string{"A", "B", "C"}, board.Players)
}

func TestRoom_AddPlayer(t *testing.T) {
	m, _ := newTestManager(t)
	r := createRoom(t, m, 1)

	s, err := r.AddPlayer("B", "Bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, s.Players)
	assert.Equal(t, "Bob", s.PlayerNames["B"])
	assert.False(t, s.PlayerReady["B"])
	assertConsistent(t, s)

	s, err = r.AddPlayer("B", "Bobby")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, s.Players, "joining twice does not duplicate")
	assert.Equal(t, "Bobby", s.PlayerNames["B"])

	_, err = r.AddPlayer("", "nobody")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRoom_AddPlayerAfterStart(t *testing.T) {
	r, _ := startedRoom(t, 1)
	before := r.Snapshot()

	_, err := r.AddPlayer("D", "Dave")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Equal(t, before, r.Snapshot())
}

func TestRoom_ToggleReady(t *testing.T) {
	m, _ := newTestManager(t)
	r := createRoom(t, m, 1)
	_, err := r.AddPlayer("B", "")
	require.NoError(t, err)

	s, err := r.ToggleReady("B")
	require.NoError(t, err)
	assert.True(t, s.PlayerReady["B"])

	s, err = r.ToggleReady("B")
	require.NoError(t, err)
	assert.False(t, s.PlayerReady["B"])

	_, err = r.ToggleReady("Z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoom_StartGame_InsufficientPlayers(t *testing.T) {
	m, _ := newTestManager(t)
	r := createRoom(t, m, 1)
	_, err := r.AddPlayer("B", "")
	require.NoError(t, err)
	_, err = r.ToggleReady("A")
	require.NoError(t, err, "the creator's own readiness does not count")
	before := r.Snapshot()

	_, removed, err := r.StartGame("A")
	assert.ErrorIs(t, err, ErrInsufficientPlayers)
	assert.Equal(t, CodeInsufficientPlayers, CodeOf(err))
	assert.Nil(t, removed)
	assert.Equal(t, before, r.Snapshot())
	assert.Equal(t, state.Waiting, r.Phase())
}

func TestRoom_StartGame_OnlyCreator(t *testing.T) {
	m, _ := newTestManager(t)
	r := createRoom(t, m, 1)
	_, err := r.AddPlayer("B", "")
	require.NoError(t, err)
	_, err = r.ToggleReady("B")
	require.NoError(t, err)

	_, _, err = r.StartGame("B")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, state.Waiting, r.Phase())
}

func TestRoom_StartGame_RemovesUnreadyPlayers(t *testing.T) {
	m, _ := newTestManager(t)
	r := createRoom(t, m, 1)
	for _, id := range []string{"B", "C", "D"} {
		_, err := r.AddPlayer(id, "name "+id)
		require.NoError(t, err)
	}
	for _, id := range []string{"B", "D"} {
		_, err := r.ToggleReady(id)
		require.NoError(t, err)
	}

	s, removed, err := r.StartGame("A")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, removed)
	assert.Equal(t, []string{"A", "B", "D"}, s.Players)
	assert.NotContains(t, s.PlayerNames, "C")
	assertConsistent(t, s)
	assert.False(t, r.HasPlayer("C"))
}

func TestRoom_SelectLetter_Guards(t *testing.T) {
	m, _ := newTestManager(t)
	waiting := createRoom(t, m, 1)
	_, err := waiting.SelectLetter("A", "F")
	assert.ErrorIs(t, err, ErrInvalidPhase, "letters are drawn only during letter selection")

	r, _ := startedRoom(t, 1)
	tests := []struct {
		name   string
		caller string
		letter string
		want   error
	}{
		{name: "not the selector", caller: "B", letter: "F", want: ErrForbidden},
		{name: "digit", caller: "A", letter: "1", want: ErrInvalidInput},
		{name: "two letters", caller: "A", letter: "AB", want: ErrInvalidInput},
		{name: "non-latin", caller: "A", letter: "Ä", want: ErrInvalidInput},
		{name: "empty", caller: "A", letter: "", want: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := r.Snapshot()
			_, err := r.SelectLetter(tt.caller, tt.letter)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, r.Snapshot())
		})
	}

	s, err := r.SelectLetter("A", "f")
	require.NoError(t, err)
	assert.Equal(t, "F", *s.CurrentLetter)

	before := r.Snapshot()
	_, err = r.SelectLetter("A", "G")
	assert.ErrorIs(t, err, ErrInvalidInput, "a second draw in the same round is rejected")
	assert.Equal(t, before, r.Snapshot())
}

func TestRoom_AdvanceAfterLetter_IsGuarded(t *testing.T) {
	r, _ := startedRoom(t, 2)

	_, ok := r.AdvanceAfterLetter("F")
	assert.False(t, ok, "no letter drawn yet")

	_, err := r.SelectLetter("A", "F")
	require.NoError(t, err)
	_, ok = r.AdvanceAfterLetter("G")
	assert.False(t, ok, "a different letter must not advance")

	_, err = r.StartRound("A")
	require.NoError(t, err)
	_, err = r.SubmitAnswer("B", "Animal", "Fox")
	require.NoError(t, err)

	_, ok = r.AdvanceAfterLetter("F")
	assert.False(t, ok, "manual start already advanced the room")
	assert.Equal(t, "Fox", r.Snapshot().Answers["B"]["Animal"], "round state must not be reset twice")
}

func TestRoom_StartRound_Permissions(t *testing.T) {
	r, _ := startedRoom(t, 3)

	_, err := r.StartRound("B")
	assert.ErrorIs(t, err, ErrForbidden)

	playToReviewing(t, r, "F")
	readyAll(t, r)
	require.Equal(t, "B", *r.Snapshot().CurrentLetterSelector)

	_, err = r.StartRound("C")
	assert.ErrorIs(t, err, ErrForbidden)

	s, err := r.StartRound("B")
	require.NoError(t, err, "the selector may start the round without drawing")
	assert.Equal(t, state.Playing, s.Phase)
	assert.Nil(t, s.CurrentLetter)

	_, err = r.StartRound("A")
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestRoom_SubmitAnswer(t *testing.T) {
	r, _ := startedRoom(t, 1)

	_, err := r.SubmitAnswer("B", "Country", "France")
	assert.ErrorIs(t, err, ErrInvalidPhase)

	_, err = r.StartRound("A")
	require.NoError(t, err)

	s, err := r.SubmitAnswer("B", "Country", "  Finland \t")
	require.NoError(t, err)
	assert.Equal(t, "Finland", s.Answers["B"]["Country"])

	s, err = r.SubmitAnswer("B", "Country", "France")
	require.NoError(t, err)
	assert.Equal(t, "France", s.Answers["B"]["Country"])

	_, err = r.SubmitAnswer("B", "Colour", "Fuchsia")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = r.SubmitAnswer("Z", "Country", "Fiji")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoom_FinishAnswers_GraceTimer(t *testing.T) {
	r, clk := startedRoom(t, 1)
	_, err := r.StartRound("A")
	require.NoError(t, err)

	s, err := r.FinishAnswers("B")
	require.NoError(t, err)
	deadline := *s.TimerEndTime
	assert.Equal(t, clk.Now().Add(10*time.Second).UnixMilli(), deadline)

	clk.Advance(4 * time.Second)
	s, err = r.FinishAnswers("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, s.FinishedPlayers, "finishing twice is a no-op")
	assert.Equal(t, deadline, *s.TimerEndTime, "the timer is not restarted")
	assert.Equal(t, "B", *s.TimerStartedBy)

	_, err = r.FinishAnswers("A")
	require.NoError(t, err)
	s = r.Snapshot()
	assert.Equal(t, "B", *s.TimerStartedBy, "only the first finisher starts the timer")

	_, expired := r.ExpireDeadline(clk.Now())
	assert.False(t, expired)

	clk.Advance(6 * time.Second)
	s, expired = r.ExpireDeadline(clk.Now())
	require.True(t, expired)
	assert.Equal(t, state.Reviewing, s.Phase)
	assert.Nil(t, s.TimerEndTime)

	_, expired = r.ExpireDeadline(clk.Now().Add(time.Hour))
	assert.False(t, expired, "expiry is applied once")
}

func TestRoom_ExpireDeadline_NoTimer(t *testing.T) {
	r, clk := startedRoom(t, 1)
	_, err := r.StartRound("A")
	require.NoError(t, err)

	_, expired := r.ExpireDeadline(clk.Now().Add(time.Hour))
	assert.False(t, expired, "nobody finished so no deadline runs")
	assert.Equal(t, state.Playing, r.Phase())
}

func TestRoom_ReviewAnswer(t *testing.T) {
	r, _ := startedRoom(t, 1)
	_, err := r.ReviewAnswer("B", "A", "Country", Review{IsValid: True})
	assert.ErrorIs(t, err, ErrInvalidPhase)

	playToReviewing(t, r, "F")

	_, err = r.ReviewAnswer("B", "B", "Country", Review{IsValid: True})
	assert.ErrorIs(t, err, ErrForbidden, "self review is refused server-side")

	_, err = r.ReviewAnswer("B", "Z", "Country", Review{IsValid: True})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.ReviewAnswer("B", "A", "Colour", Review{IsValid: True})
	assert.ErrorIs(t, err, ErrInvalidInput)

	s, err := r.ReviewAnswer("B", "A", "Country", Review{IsValid: True, IsUnique: True})
	require.NoError(t, err)
	assert.Equal(t, Review{IsValid: True, IsUnique: True}, s.Reviews["B"]["A"]["Country"])

	s, err = r.ReviewAnswer("B", "A", "Country", Review{IsValid: False})
	require.NoError(t, err)
	assert.Equal(t, Review{IsValid: False, IsUnique: Unset}, s.Reviews["B"]["A"]["Country"])
}

func TestRoom_ReadyForNextRound_WaitsForEveryone(t *testing.T) {
	r, _ := startedRoom(t, 2)
	playToReviewing(t, r, "F")

	s, result, err := r.ReadyForNextRound("A")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, s.RoundReady["A"])
	assert.False(t, s.AllReadyForNextRound)

	_, result, err = r.ReadyForNextRound("A")
	require.NoError(t, err)
	assert.Nil(t, result, "repeating readiness does not finalize")

	_, _, err = r.ReadyForNextRound("Z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoom_FinalizeAdvancesRoundOrFinishes(t *testing.T) {
	const rounds = 4
	r, _ := startedRoom(t, rounds)

	selectors := []string{}
	for round := 1; round <= rounds; round++ {
		s := r.Snapshot()
		require.Equal(t, round, s.CurrentRound)
		selectors = append(selectors, *s.CurrentLetterSelector)

		playToReviewing(t, r, "M")
		result := readyAll(t, r)

		after := r.Snapshot()
		if round < rounds {
			assert.False(t, result.Finished)
			assert.Equal(t, round+1, after.CurrentRound)
			assert.Equal(t, state.LetterSelection, after.Phase)
		} else {
			assert.True(t, result.Finished)
			assert.Equal(t, round, after.CurrentRound)
			assert.Equal(t, state.Finished, after.Phase)
		}
		assertConsistent(t, after)
	}
	assert.Equal(t, []string{"A", "B", "C", "A"}, selectors, "rotation follows join order and wraps")
}

func TestRoom_FinishedRejectsCommands(t *testing.T) {
	r, _ := startedRoom(t, 1)
	playToReviewing(t, r, "F")
	readyAll(t, r)
	require.Equal(t, state.Finished, r.Phase())
	before := r.Snapshot()

	_, err := r.SelectLetter("B", "F")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, err = r.StartRound("A")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, err = r.FinishAnswers("A")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, _, err = r.ReadyForNextRound("A")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	_, _, err = r.RemovePlayer("B")
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Equal(t, before, r.Snapshot())
}

func TestRoom_RenamePlayer(t *testing.T) {
	r, _ := startedRoom(t, 1)

	s, err := r.RenamePlayer("B", " Bea ")
	require.NoError(t, err)
	assert.Equal(t, "Bea", s.PlayerNames["B"])

	_, err = r.RenamePlayer("B", "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = r.RenamePlayer("Z", "Zed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoom_RemovePlayer(t *testing.T) {
	t.Run("creator cannot leave", func(t *testing.T) {
		r, _ := startedRoom(t, 1)
		_, _, err := r.RemovePlayer("A")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown player", func(t *testing.T) {
		r, _ := startedRoom(t, 1)
		_, _, err := r.RemovePlayer("Z")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("waiting", func(t *testing.T) {
		m, _ := newTestManager(t)
		r := createRoom(t, m, 1)
		_, err := r.AddPlayer("B", "Bob")
		require.NoError(t, err)

		s, departure, err := r.RemovePlayer("B")
		require.NoError(t, err)
		assert.Equal(t, Departure{}, departure)
		assert.Equal(t, []string{"A"}, s.Players)
		assertConsistent(t, s)
	})

	t.Run("selector leaving passes the turn", func(t *testing.T) {
		r, _ := startedRoom(t, 3)
		playToReviewing(t, r, "F")
		readyAll(t, r)
		require.Equal(t, "B", *r.Snapshot().CurrentLetterSelector)

		s, _, err := r.RemovePlayer("B")
		require.NoError(t, err)
		assert.Equal(t, "C", *s.CurrentLetterSelector)
		assertConsistent(t, s)
	})

	t.Run("last unfinished player leaving ends the round", func(t *testing.T) {
		r, _ := startedRoom(t, 1)
		_, err := r.StartRound("A")
		require.NoError(t, err)
		_, err = r.FinishAnswers("A")
		require.NoError(t, err)
		_, err = r.FinishAnswers("C")
		require.NoError(t, err)

		s, departure, err := r.RemovePlayer("B")
		require.NoError(t, err)
		assert.True(t, departure.AnsweringClosed)
		assert.Nil(t, departure.Result)
		assert.Equal(t, state.Reviewing, s.Phase)
		assert.Equal(t, []string{"A", "C"}, s.FinishedPlayers)
	})

	t.Run("last unready player leaving finalizes", func(t *testing.T) {
		r, _ := startedRoom(t, 2)
		playToReviewing(t, r, "F")
		_, err := r.ReviewAnswer("B", "C", "Country", Review{IsValid: True})
		require.NoError(t, err)
		for _, id := range []string{"A", "C"} {
			_, _, err := r.ReadyForNextRound(id)
			require.NoError(t, err)
		}

		s, departure, err := r.RemovePlayer("B")
		require.NoError(t, err)
		require.NotNil(t, departure.Result)
		assert.False(t, departure.AnsweringClosed)
		assert.Equal(t, state.LetterSelection, s.Phase)
		assert.Equal(t, []string{"A", "C"}, s.Players)
		assertConsistent(t, s)
	})
}

func TestManager_CreateAndGetRoom(t *testing.T) {
	m, clk := newTestManager(t)
	r := createRoom(t, m, 3)

	assert.Len(t, r.Code(), CodeLength)
	assert.Equal(t, clk.Now(), r.CreatedAt())

	got, err := m.GetRoom(r.Code())
	require.NoError(t, err)
	assert.Same(t, r, got)

	s := r.Snapshot()
	assert.Equal(t, state.Waiting, s.Phase)
	assert.Equal(t, 0, s.CurrentRound)
	assert.Equal(t, []string{"A"}, s.Players)
	assert.Equal(t, "Alice", s.PlayerNames["A"])
	assert.Equal(t, []string{"Country", "Animal"}, s.Categories)
	assert.Nil(t, s.CurrentLetter)
	assert.Nil(t, s.CurrentLetterSelector)
	assertConsistent(t, s)
}

func TestManager_GetRoom_NormalizesCode(t *testing.T) {
	m := NewRoomManager(WithCodeSource(&sequenceCodes{codes: []string{"ABC123"}}))
	_, err := m.CreateRoom(Config{CreatorID: "A", Rounds: 1, TimeLimit: 5, Categories: []string{"City"}})
	require.NoError(t, err)

	r, err := m.GetRoom(" abc123 ")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", r.Code())

	_, err = m.GetRoom("NOPE00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_CreateRoom_Validation(t *testing.T) {
	m, _ := newTestManager(t)
	base := Config{CreatorID: "A", Rounds: 1, TimeLimit: 10, Categories: []string{"City"}}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no creator", mutate: func(c *Config) { c.CreatorID = "" }},
		{name: "zero rounds", mutate: func(c *Config) { c.Rounds = 0 }},
		{name: "zero time limit", mutate: func(c *Config) { c.TimeLimit = 0 }},
		{name: "no categories", mutate: func(c *Config) { c.Categories = nil }},
		{name: "blank category", mutate: func(c *Config) { c.Categories = []string{"City", " "} }},
		{name: "duplicate category", mutate: func(c *Config) { c.Categories = []string{"City", " City"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			_, err := m.CreateRoom(cfg)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, m.Count())
}

func TestManager_CreateRoom_RetriesOnCollision(t *testing.T) {
	codes := &sequenceCodes{codes: []string{"AAAAAA", "AAAAAA", "BBBBBB"}}
	m := NewRoomManager(WithCodeSource(codes))
	cfg := Config{CreatorID: "A", Rounds: 1, TimeLimit: 10, Categories: []string{"City"}}

	first, err := m.CreateRoom(cfg)
	require.NoError(t, err)
	second, err := m.CreateRoom(cfg)
	require.NoError(t, err)

	assert.Equal(t, "AAAAAA", first.Code())
	assert.Equal(t, "BBBBBB", second.Code())
	assert.Equal(t, 2, m.Count())
}

func TestManager_CreateRoom_GivesUp(t *testing.T) {
	m := NewRoomManager(WithCodeSource(&sequenceCodes{codes: []string{"AAAAAA"}}))
	cfg := Config{CreatorID: "A", Rounds: 1, TimeLimit: 10, Categories: []string{"City"}}

	_, err := m.CreateRoom(cfg)
	require.NoError(t, err)
	_, err = m.CreateRoom(cfg)
	assert.Error(t, err)
	assert.Equal(t, 1, m.Count())
}

func TestManager_ListRoomsAndEvict(t *testing.T) {
	m, clk := newTestManager(t)
	first := createRoom(t, m, 1)
	clk.Advance(time.Second)
	second := createRoom(t, m, 1)

	assert.Equal(t, []*Room{first, second}, m.ListRooms())

	for _, id := range []string{"B"} {
		_, err := first.AddPlayer(id, "")
		require.NoError(t, err)
		_, err = first.ToggleReady(id)
		require.NoError(t, err)
	}
	_, _, err := first.StartGame("A")
	require.NoError(t, err)
	playToReviewing(t, first, "F")
	readyAll(t, first)
	require.Equal(t, state.Finished, first.Phase())

	assert.Empty(t, m.EvictFinished(clk.Now(), 0), "zero ttl disables eviction")
	assert.Empty(t, m.EvictFinished(clk.Now().Add(time.Minute), time.Hour))

	evicted := m.EvictFinished(clk.Now().Add(time.Hour), time.Hour)
	assert.Equal(t, []string{first.Code()}, evicted)
	assert.Equal(t, []*Room{second}, m.ListRooms())
}

func TestRandomCodes(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := RandomCodes{}.NewCode()
		require.Len(t, code, CodeLength)
		for _, c := range code {
			assert.Contains(t, codeCharset, string(c))
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 90)
}
