// broadcast/broadcast.go
package broadcast

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wfunc/wordrace/logger"
	"github.com/wfunc/wordrace/network"
	"github.com/wfunc/wordrace/room"
	"github.com/wfunc/wordrace/services"
	"github.com/wfunc/wordrace/session"
)

var ErrUnknownEvent = errors.New("event has no message id")

// RoomBroadcaster addresses sessions by the room they are in or the player
// they belong to.
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{sessionManager: sessionManager}
}

func (b *RoomBroadcaster) BroadcastToRoom(roomCode string, msgID uint16, data []byte) error {
	return send(b.sessionManager.GetByRoom(roomCode), msgID, data)
}

func (b *RoomBroadcaster) BroadcastToPlayer(playerID string, msgID uint16, data []byte) error {
	return send(b.sessionManager.GetByPlayerID(playerID), msgID, data)
}

// send writes to every session and reports the failures together; one dead
// connection does not stop the others.
func send(sessions []*session.Session, msgID uint16, data []byte) error {
	var errs []error
	for _, s := range sessions {
		if err := s.Send(msgID, data); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", s.GetID(), err))
		}
	}
	return errors.Join(errs...)
}

// Deliver sends notifications in order. caller receives the TargetCaller
// ones; it may be nil for background notifications.
func (b *RoomBroadcaster) Deliver(caller *session.Session, notifications []services.Notification) {
	for _, n := range notifications {
		if err := b.deliver(caller, n); err != nil {
			logger.Log.Warnf("Failed to deliver %s to %s: %v", n.Event, n.Target, err)
		}
		b.apply(n)
	}
}

// Notify delivers background notifications.
func (b *RoomBroadcaster) Notify(notifications []services.Notification) {
	b.Deliver(nil, notifications)
}

func (b *RoomBroadcaster) deliver(caller *session.Session, n services.Notification) error {
	msgID, ok := network.EventID(string(n.Event))
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, n.Event)
	}
	data, err := json.Marshal(n.Payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", n.Event, err)
	}

	switch n.Target {
	case services.TargetRoom:
		return b.BroadcastToRoom(n.RoomCode, msgID, data)
	case services.TargetPlayer:
		return b.BroadcastToPlayer(n.PlayerID, msgID, data)
	default:
		if caller == nil {
			return errors.New("no caller to reply to")
		}
		return caller.Send(msgID, data)
	}
}

// apply keeps session membership in line with what was just announced.
func (b *RoomBroadcaster) apply(n services.Notification) {
	switch n.Event {
	case services.EventPlayerRemoved:
		for _, s := range b.sessionManager.GetByPlayerID(n.PlayerID) {
			s.LeaveRoom(n.RoomCode)
		}
	case services.EventRoomClosed:
		for _, s := range b.sessionManager.GetByRoom(n.RoomCode) {
			s.LeaveRoom(n.RoomCode)
		}
	}
}

// Error sends a rejected command's error to its caller only.
func Error(caller *session.Session, err error) error {
	payload := services.ErrorPayload{Code: room.CodeOf(err), Message: err.Error()}
	if payload.Code == room.CodeUnknown {
		payload.Message = "internal error"
	}
	data, merr := json.Marshal(payload)
	if merr != nil {
		return merr
	}
	return caller.Send(network.MsgTypeError, data)
}
