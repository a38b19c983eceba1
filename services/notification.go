// services/notification.go
package services

// Event names a notification on the wire.
type Event string

const (
	EventPlayerCreated     Event = "player_created"
	EventRoomCreated       Event = "room_created"
	EventRoomJoined        Event = "room_joined"
	EventRoomLeft          Event = "room_left"
	EventRoomUpdated       Event = "room_updated"
	EventRoomClosed        Event = "room_closed"
	EventGameStarted       Event = "game_started"
	EventLetterSelected    Event = "letter_selected"
	EventRoundStarted      Event = "round_started"
	EventRoundFinished     Event = "round_finished"
	EventNextRoundPrepared Event = "next_round_prepared"
	EventGameFinished      Event = "game_finished"
	EventScoresUpdated     Event = "scores_updated"
	EventPlayerRemoved     Event = "player_removed"
	EventPlayerLeft        Event = "player_left"
	EventError             Event = "error"
)

// Target says who receives a notification.
type Target int

const (
	// TargetCaller is the connection that issued the command.
	TargetCaller Target = iota
	// TargetRoom is every connection currently in RoomCode.
	TargetRoom
	// TargetPlayer is every connection of PlayerID.
	TargetPlayer
)

func (t Target) String() string {
	switch t {
	case TargetCaller:
		return "caller"
	case TargetRoom:
		return "room"
	case TargetPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// Notification is one outbound message. Notifications are delivered in the
// order they are returned.
type Notification struct {
	Event  Event
	Target Target
	// RoomCode is the addressed room for TargetRoom and the room the event
	// concerns for TargetPlayer.
	RoomCode string
	PlayerID string
	Payload  any
}

// Notifier receives notifications produced outside a command, by the
// letter auto-advance and the deadline sweep.
type Notifier interface {
	Notify(notifications []Notification)
}

type nopNotifier struct{}

func (nopNotifier) Notify([]Notification) {}

func toCaller(event Event, payload any) Notification {
	return Notification{Event: event, Target: TargetCaller, Payload: payload}
}

func toRoom(code string, event Event, payload any) Notification {
	return Notification{Event: event, Target: TargetRoom, RoomCode: code, Payload: payload}
}

// toPlayer addresses one player; code is the room the event is about.
func toPlayer(playerID, code string, event Event, payload any) Notification {
	return Notification{Event: event, Target: TargetPlayer, PlayerID: playerID, RoomCode: code, Payload: payload}
}
