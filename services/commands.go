// services/commands.go
package services

import (
	"encoding/json"

	"github.com/wfunc/wordrace/room"
)

// Command names accepted by GameService.Handle.
const (
	CmdCreatePlayer      = "create_player"
	CmdCreateRoom        = "create_room"
	CmdJoinRoom          = "join_room"
	CmdLeaveRoom         = "leave_room"
	CmdToggleReady       = "toggle_ready"
	CmdStartGame         = "start_game"
	CmdSelectLetter      = "select_letter"
	CmdStartRound        = "start_round"
	CmdSubmitAnswer      = "submit_answer"
	CmdFinishAnswers     = "finish_answers"
	CmdReviewAnswer      = "review_answer"
	CmdReadyForNextRound = "ready_for_next_round"
	CmdGetScores         = "get_scores"
)

// Command is one decoded client request.
type Command struct {
	Name    string
	Payload json.RawMessage
}

// Caller is the identity behind a connection. Handle updates it in place
// when a command changes who the caller is or which room it is in.
type Caller struct {
	PlayerID   string
	PlayerName string
	RoomCode   string
}

type createPlayerRequest struct {
	Name string `json:"name"`
}

type createRoomRequest struct {
	Rounds     int      `json:"rounds"`
	TimeLimit  int      `json:"timeLimit"`
	Categories []string `json:"categories"`
}

type joinRoomRequest struct {
	RoomCode string `json:"roomCode"`
}

type submitAnswerRequest struct {
	Category string `json:"category"`
	Answer   string `json:"answer"`
}

type reviewAnswerRequest struct {
	ReviewedPlayerID string    `json:"reviewedPlayerId"`
	Category         string    `json:"category"`
	IsValid          room.Flag `json:"isValid"`
	IsUnique         room.Flag `json:"isUnique"`
}

type getScoresRequest struct {
	RoomCode string `json:"roomCode"`
}

// Payloads sent to clients.

type PlayerCreated struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type RoomCreated struct {
	RoomCode string        `json:"roomCode"`
	Room     room.Snapshot `json:"room"`
}

type RoomLeft struct {
	RoomCode string `json:"roomCode"`
}

type LetterSelected struct {
	Letter string        `json:"letter"`
	Room   room.Snapshot `json:"room"`
}

type RoundOutcome struct {
	Room   room.Snapshot     `json:"room"`
	Result *room.RoundResult `json:"result"`
}

type PlayerRemoved struct {
	PlayerID string `json:"playerId"`
	Reason   string `json:"reason"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
}

type ErrorPayload struct {
	Code    room.Code `json:"code"`
	Message string    `json:"message"`
}

// ReasonNotReady is why start_game drops a player.
const ReasonNotReady = "not_ready"

// decode unmarshals an optional payload; an empty payload leaves v zero.
func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &room.Error{Code: room.CodeInvalidInput, Message: "malformed payload: " + err.Error()}
	}
	return nil
}
