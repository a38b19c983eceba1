// services/background.go
package services

import (
	"github.com/wfunc/wordrace/logger"
	"github.com/wfunc/wordrace/room"
)

// Start registers the recurring deadline sweep with the scheduler.
func (g *GameService) Start() {
	if g.scheduler == nil || g.sweepID != 0 {
		return
	}
	g.sweepID = g.scheduler.Every(g.settings.SweepInterval, g.Sweep)
	logger.Log.Infof("Deadline sweep running every %s", g.settings.SweepInterval)
}

func (g *GameService) Stop() {
	if g.scheduler == nil || g.sweepID == 0 {
		return
	}
	g.scheduler.RemoveTimer(g.sweepID)
	g.sweepID = 0
}

// scheduleAdvance starts the round letter was drawn for once the letter delay
// passes, unless the room moved on first.
func (g *GameService) scheduleAdvance(r *room.Room, letter string) {
	if g.scheduler == nil {
		return
	}
	g.scheduler.AfterFunc(g.settings.LetterDelay, func() {
		g.notifier.Notify(g.AdvanceAfterLetter(r, letter))
	})
}

// AdvanceAfterLetter is the deferred half of select_letter.
func (g *GameService) AdvanceAfterLetter(r *room.Room, letter string) []Notification {
	snap, ok := r.AdvanceAfterLetter(letter)
	if !ok {
		logger.Log.Debugf("Room %s moved on before letter %s auto-started the round", r.Code(), letter)
		return nil
	}
	logger.Log.Infof("Room %s auto-started round %d with letter %s", r.Code(), snap.CurrentRound, letter)
	return []Notification{
		toRoom(r.Code(), EventRoomUpdated, snap),
		toRoom(r.Code(), EventRoundStarted, snap),
	}
}

// Sweep closes answering in rooms whose grace timer ran out and evicts rooms
// that have been finished for longer than the configured TTL.
func (g *GameService) Sweep() {
	now := g.now()
	var notifications []Notification

	for _, r := range g.rooms.ListRooms() {
		snap, expired := r.ExpireDeadline(now)
		if !expired {
			continue
		}
		g.metrics.IncDeadlinesExpired()
		logger.Log.Infof("Room %s answering time is up, reviewing round %d", r.Code(), snap.CurrentRound)
		notifications = append(notifications,
			toRoom(r.Code(), EventRoomUpdated, snap),
			toRoom(r.Code(), EventRoundFinished, snap),
		)
	}

	evicted := g.rooms.EvictFinished(now, g.settings.FinishedRoomTTL)
	for _, code := range evicted {
		logger.Log.Infof("Room %s evicted after finishing", code)
		notifications = append(notifications, toRoom(code, EventRoomClosed, RoomLeft{RoomCode: code}))
	}
	if len(evicted) > 0 {
		g.metrics.AddEvictions(len(evicted))
	}
	g.metrics.SetActiveRooms(g.rooms.Count())

	if len(notifications) > 0 {
		g.notifier.Notify(notifications)
	}
}
