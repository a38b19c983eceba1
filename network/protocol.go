package network

// Client to server. 1xx are lobby commands, 2xx game commands.
const (
	MsgTypeHeartbeat         = 1
	MsgTypeCreatePlayer      = 100
	MsgTypeJoinRoom          = 101
	MsgTypeLeaveRoom         = 102
	MsgTypeCreateRoom        = 103
	MsgTypeToggleReady       = 104
	MsgTypeStartGame         = 105
	MsgTypeGetScores         = 106
	MsgTypeSelectLetter      = 201
	MsgTypeStartRound        = 202
	MsgTypeSubmitAnswer      = 203
	MsgTypeFinishAnswers     = 204
	MsgTypeReviewAnswer      = 205
	MsgTypeReadyForNextRound = 206
)

// Server to client.
const (
	MsgTypePlayerCreated     = 300
	MsgTypeRoomUpdated       = 301
	MsgTypeRoomCreated       = 302
	MsgTypeRoomJoined        = 303
	MsgTypeRoomLeft          = 304
	MsgTypeRoomClosed        = 305
	MsgTypeGameStarted       = 306
	MsgTypeLetterSelected    = 307
	MsgTypeRoundStarted      = 308
	MsgTypeRoundFinished     = 309
	MsgTypeNextRoundPrepared = 310
	MsgTypeGameFinished      = 311
	MsgTypeScoresUpdated     = 312
	MsgTypePlayerRemoved     = 313
	MsgTypePlayerLeft        = 314
	MsgTypeError             = 399
)

var commands = map[uint16]string{
	MsgTypeCreatePlayer:      "create_player",
	MsgTypeJoinRoom:          "join_room",
	MsgTypeLeaveRoom:         "leave_room",
	MsgTypeCreateRoom:        "create_room",
	MsgTypeToggleReady:       "toggle_ready",
	MsgTypeStartGame:         "start_game",
	MsgTypeGetScores:         "get_scores",
	MsgTypeSelectLetter:      "select_letter",
	MsgTypeStartRound:        "start_round",
	MsgTypeSubmitAnswer:      "submit_answer",
	MsgTypeFinishAnswers:     "finish_answers",
	MsgTypeReviewAnswer:      "review_answer",
	MsgTypeReadyForNextRound: "ready_for_next_round",
}

var events = map[string]uint16{
	"player_created":      MsgTypePlayerCreated,
	"room_updated":        MsgTypeRoomUpdated,
	"room_created":        MsgTypeRoomCreated,
	"room_joined":         MsgTypeRoomJoined,
	"room_left":           MsgTypeRoomLeft,
	"room_closed":         MsgTypeRoomClosed,
	"game_started":        MsgTypeGameStarted,
	"letter_selected":     MsgTypeLetterSelected,
	"round_started":       MsgTypeRoundStarted,
	"round_finished":      MsgTypeRoundFinished,
	"next_round_prepared": MsgTypeNextRoundPrepared,
	"game_finished":       MsgTypeGameFinished,
	"scores_updated":      MsgTypeScoresUpdated,
	"player_removed":      MsgTypePlayerRemoved,
	"player_left":         MsgTypePlayerLeft,
	"error":               MsgTypeError,
}

// CommandName maps an inbound message id to its command.
func CommandName(msgID uint16) (string, bool) {
	name, ok := commands[msgID]
	return name, ok
}

// CommandID is the inverse of CommandName.
func CommandID(name string) (uint16, bool) {
	for id, n := range commands {
		if n == name {
			return id, true
		}
	}
	return 0, false
}

// EventID maps an outbound event to its message id.
func EventID(event string) (uint16, bool) {
	id, ok := events[event]
	return id, ok
}

// EventName is the inverse of EventID.
func EventName(msgID uint16) (string, bool) {
	for name, id := range events {
		if id == msgID {
			return name, true
		}
	}
	return "", false
}
