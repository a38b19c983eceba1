// services/game_service.go
package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/wordrace/logger"
	"github.com/wfunc/wordrace/models"
	"github.com/wfunc/wordrace/room"
	"github.com/wfunc/wordrace/state"
)

// Settings are the game defaults and background timings.
type Settings struct {
	DefaultRounds     int
	DefaultTimeLimit  int // seconds
	DefaultCategories []string
	LetterDelay       time.Duration
	SweepInterval     time.Duration
	FinishedRoomTTL   time.Duration
}

// Scheduler runs deferred callbacks. *timer.TimerManager implements it.
type Scheduler interface {
	AfterFunc(delay time.Duration, callback func()) int64
	Every(interval time.Duration, callback func()) int64
	RemoveTimer(id int64)
}

// LetterSource draws the letter of a round.
type LetterSource interface {
	NextLetter() string
}

// RandomLetters draws uniformly from room.Alphabet, repeats allowed.
type RandomLetters struct{}

func (RandomLetters) NextLetter() string {
	return string(room.Alphabet[rand.IntN(len(room.Alphabet))])
}

// Archive records finished games.
type Archive interface {
	SaveGameRecord(ctx context.Context, record models.GameRecord) error
}

// Metrics receives game counters. *monitor.Monitor implements it.
type Metrics interface {
	ObserveCommand(name string, d time.Duration)
	IncRejected(code string)
	IncRoundsFinalized()
	IncGamesFinished()
	IncDeadlinesExpired()
	AddEvictions(n int)
	SetActiveRooms(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveCommand(string, time.Duration) {}
func (nopMetrics) IncRejected(string)                   {}
func (nopMetrics) IncRoundsFinalized()                  {}
func (nopMetrics) IncGamesFinished()                    {}
func (nopMetrics) IncDeadlinesExpired()                 {}
func (nopMetrics) AddEvictions(int)                     {}
func (nopMetrics) SetActiveRooms(int)                   {}

// GameService turns named commands into room operations and notifications.
type GameService struct {
	rooms     *room.Manager
	settings  Settings
	scheduler Scheduler
	letters   LetterSource
	archive   Archive
	metrics   Metrics
	notifier  Notifier
	newID     func() string
	newName   func() string
	now       func() time.Time
	sweepID   int64
}

type Option func(*GameService)

func WithScheduler(s Scheduler) Option {
	return func(g *GameService) { g.scheduler = s }
}

func WithLetterSource(l LetterSource) Option {
	return func(g *GameService) { g.letters = l }
}

func WithArchive(a Archive) Option {
	return func(g *GameService) { g.archive = a }
}

func WithMetrics(m Metrics) Option {
	return func(g *GameService) { g.metrics = m }
}

func WithNotifier(n Notifier) Option {
	return func(g *GameService) { g.notifier = n }
}

// WithIDGenerator replaces the uuid player id generator.
func WithIDGenerator(newID func() string) Option {
	return func(g *GameService) { g.newID = newID }
}

func WithNameGenerator(newName func() string) Option {
	return func(g *GameService) { g.newName = newName }
}

func WithClock(now func() time.Time) Option {
	return func(g *GameService) { g.now = now }
}

func NewGameService(rooms *room.Manager, settings Settings, opts ...Option) *GameService {
	g := &GameService{
		rooms:    rooms,
		settings: settings,
		letters:  RandomLetters{},
		metrics:  nopMetrics{},
		notifier: nopNotifier{},
		newID:    uuid.NewString,
		newName:  randomPlayerName,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetNotifier installs the sink for background notifications. The server
// calls it once it exists, before Start.
func (g *GameService) SetNotifier(n Notifier) {
	g.notifier = n
}

// randomPlayerName returns "Player" followed by five base-36 characters.
func randomPlayerName() string {
	var b strings.Builder
	b.WriteString("Player")
	for i := 0; i < 5; i++ {
		b.WriteString(strings.ToUpper(strconv.FormatInt(rand.Int64N(36), 36)))
	}
	return b.String()
}

// Handle executes cmd on behalf of caller. A rule violation is returned as a
// *room.Error and the room is left untouched; the caller alone should learn
// about it.
func (g *GameService) Handle(ctx context.Context, caller *Caller, cmd Command) ([]Notification, error) {
	start := time.Now()
	notifications, err := g.dispatch(ctx, caller, cmd)
	g.metrics.ObserveCommand(cmd.Name, time.Since(start))

	if err != nil {
		code := room.CodeOf(err)
		g.metrics.IncRejected(string(code))
		logger.Log.Infof("Command %s from player %q rejected: %s: %v", cmd.Name, caller.PlayerID, code, err)
		return nil, err
	}
	logger.Log.Debugf("Command %s from player %q handled, %d notifications", cmd.Name, caller.PlayerID, len(notifications))
	return notifications, nil
}

func (g *GameService) dispatch(ctx context.Context, caller *Caller, cmd Command) ([]Notification, error) {
	if cmd.Name == CmdCreatePlayer {
		return g.createPlayer(caller, cmd)
	}
	if caller.PlayerID == "" {
		return nil, &room.Error{Code: room.CodeForbidden, Message: "create a player first"}
	}

	switch cmd.Name {
	case CmdCreateRoom:
		return g.createRoom(ctx, caller, cmd)
	case CmdJoinRoom:
		return g.joinRoom(ctx, caller, cmd)
	case CmdGetScores:
		return g.getScores(caller, cmd)
	}

	r, err := g.currentRoom(caller)
	if err != nil {
		return nil, err
	}
	switch cmd.Name {
	case CmdLeaveRoom:
		return g.leaveRoom(ctx, caller, r)
	case CmdToggleReady:
		return g.toggleReady(caller, r)
	case CmdStartGame:
		return g.startGame(caller, r)
	case CmdSelectLetter:
		return g.selectLetter(caller, r)
	case CmdStartRound:
		return g.startRound(caller, r)
	case CmdSubmitAnswer:
		return g.submitAnswer(caller, r, cmd)
	case CmdFinishAnswers:
		return g.finishAnswers(caller, r)
	case CmdReviewAnswer:
		return g.reviewAnswer(caller, r, cmd)
	case CmdReadyForNextRound:
		return g.readyForNextRound(ctx, caller, r)
	default:
		return nil, &room.Error{Code: room.CodeInvalidInput, Message: fmt.Sprintf("unknown command %q", cmd.Name)}
	}
}

func (g *GameService) currentRoom(caller *Caller) (*room.Room, error) {
	if caller.RoomCode == "" {
		return nil, &room.Error{Code: room.CodeNotFound, Message: "not in a room"}
	}
	return g.rooms.GetRoom(caller.RoomCode)
}

func (g *GameService) createPlayer(caller *Caller, cmd Command) ([]Notification, error) {
	var req createPlayerRequest
	if err := decode(cmd.Payload, &req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	if caller.PlayerID == "" {
		caller.PlayerID = g.newID()
		caller.PlayerName = name
		if name == "" {
			caller.PlayerName = g.newName()
		}
		return []Notification{toCaller(EventPlayerCreated, PlayerCreated{caller.PlayerID, caller.PlayerName})}, nil
	}

	notifications := []Notification{}
	if name != "" && name != caller.PlayerName {
		caller.PlayerName = name
		if r, err := g.currentRoom(caller); err == nil && r.HasPlayer(caller.PlayerID) {
			snap, err := r.RenamePlayer(caller.PlayerID, name)
			if err != nil {
				return nil, err
			}
			notifications = append(notifications, toRoom(r.Code(), EventRoomUpdated, snap))
		}
	}
	return append([]Notification{toCaller(EventPlayerCreated, PlayerCreated{caller.PlayerID, caller.PlayerName})}, notifications...), nil
}

func (g *GameService) createRoom(ctx context.Context, caller *Caller, cmd Command) ([]Notification, error) {
	var req createRoomRequest
	if err := decode(cmd.Payload, &req); err != nil {
		return nil, err
	}
	cfg := room.Config{
		CreatorID:   caller.PlayerID,
		CreatorName: caller.PlayerName,
		Rounds:      req.Rounds,
		TimeLimit:   req.TimeLimit,
		Categories:  req.Categories,
	}
	if cfg.Rounds == 0 {
		cfg.Rounds = g.settings.DefaultRounds
	}
	if cfg.TimeLimit == 0 {
		cfg.TimeLimit = g.settings.DefaultTimeLimit
	}
	if cfg.Categories == nil {
		cfg.Categories = g.settings.DefaultCategories
	}

	r, err := g.rooms.CreateRoom(cfg)
	if err != nil {
		return nil, err
	}
	g.metrics.SetActiveRooms(g.rooms.Count())
	logger.Log.Infof("Player %s created room %s", caller.PlayerID, r.Code())

	notifications := g.switchRoom(ctx, caller, r.Code())
	snap := r.Snapshot()
	return append(notifications,
		toCaller(EventRoomCreated, RoomCreated{RoomCode: r.Code(), Room: snap}),
		toRoom(r.Code(), EventRoomUpdated, snap),
	), nil
}

func (g *GameService) joinRoom(ctx context.Context, caller *Caller, cmd Command) ([]Notification, error) {
	var req joinRoomRequest
	if err := decode(cmd.Payload, &req); err != nil {
		return nil, err
	}
	r, err := g.rooms.GetRoom(req.RoomCode)
	if err != nil {
		return nil, err
	}
	snap, err := r.AddPlayer(caller.PlayerID, caller.PlayerName)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("Player %s joined room %s", caller.PlayerID, r.Code())

	notifications := g.switchRoom(ctx, caller, r.Code())
	return append(notifications,
		toCaller(EventRoomJoined, snap),
		toRoom(r.Code(), EventRoomUpdated, snap),
	), nil
}

// switchRoom points caller at code and takes it off the room it was in.
func (g *GameService) switchRoom(ctx context.Context, caller *Caller, code string) []Notification {
	previous := caller.RoomCode
	caller.RoomCode = code
	if previous == "" || previous == code {
		return nil
	}
	return g.departRoom(ctx, caller.PlayerID, previous)
}

// departRoom tells room code that playerID is gone and removes the player
// from the roster with the effects of leave_room. The creator stays on the
// roster so the room keeps its owner.
func (g *GameService) departRoom(ctx context.Context, playerID, code string) []Notification {
	r, err := g.rooms.GetRoom(code)
	if err != nil {
		return nil
	}
	notifications := []Notification{toRoom(code, EventPlayerLeft, PlayerLeft{PlayerID: playerID})}

	snap, departure, err := r.RemovePlayer(playerID)
	if err != nil {
		logger.Log.Infof("Player %s stays on the roster of room %s: %v", playerID, code, err)
		return notifications
	}
	logger.Log.Infof("Player %s dropped from room %s", playerID, code)
	notifications = append(notifications, toRoom(code, EventRoomUpdated, snap))
	return append(notifications, g.departureEffects(ctx, r, snap, departure)...)
}

func (g *GameService) leaveRoom(ctx context.Context, caller *Caller, r *room.Room) ([]Notification, error) {
	snap, departure, err := r.RemovePlayer(caller.PlayerID)
	if err != nil {
		return nil, err
	}
	caller.RoomCode = ""
	logger.Log.Infof("Player %s left room %s", caller.PlayerID, r.Code())

	notifications := []Notification{
		toCaller(EventRoomLeft, RoomLeft{RoomCode: r.Code()}),
		toRoom(r.Code(), EventRoomUpdated, snap),
	}
	return append(notifications, g.departureEffects(ctx, r, snap, departure)...), nil
}

// departureEffects reports the round progress a removal caused.
func (g *GameService) departureEffects(ctx context.Context, r *room.Room, snap room.Snapshot, departure room.Departure) []Notification {
	switch {
	case departure.Result != nil:
		return g.roundFinalized(ctx, r, snap, departure.Result)
	case departure.AnsweringClosed:
		return []Notification{toRoom(r.Code(), EventRoundFinished, snap)}
	}
	return nil
}

func (g *GameService) toggleReady(caller *Caller, r *room.Room) ([]Notification, error) {
	snap, err := r.ToggleReady(caller.PlayerID)
	if err != nil {
		return nil, err
	}
	return []Notification{toRoom(r.Code(), EventRoomUpdated, snap)}, nil
}

func (g *GameService) startGame(caller *Caller, r *room.Room) ([]Notification, error) {
	snap, removed, err := r.StartGame(caller.PlayerID)
	if err != nil {
		return nil, err
	}
	logger.Log.Infof("Room %s started with %d players, %d removed", r.Code(), len(snap.Players), len(removed))

	notifications := []Notification{
		toRoom(r.Code(), EventRoomUpdated, snap),
		toRoom(r.Code(), EventGameStarted, snap),
	}
	for _, id := range removed {
		notifications = append(notifications, toPlayer(id, r.Code(), EventPlayerRemoved, PlayerRemoved{PlayerID: id, Reason: ReasonNotReady}))
	}
	return notifications, nil
}

func (g *GameService) selectLetter(caller *Caller, r *room.Room) ([]Notification, error) {
	letter := g.letters.NextLetter()
	snap, err := r.SelectLetter(caller.PlayerID, letter)
	if err != nil {
		return nil, err
	}
	g.scheduleAdvance(r, *snap.CurrentLetter)

	return []Notification{
		toRoom(r.Code(), EventRoomUpdated, snap),
		toRoom(r.Code(), EventLetterSelected, LetterSelected{Letter: *snap.CurrentLetter, Room: snap}),
	}, nil
}

func (g *GameService) startRound(caller *Caller, r *room.Room) ([]Notification, error) {
	snap, err := r.StartRound(caller.PlayerID)
	if err != nil {
		return nil, err
	}
	return []Notification{
		toRoom(r.Code(), EventRoomUpdated, snap),
		toRoom(r.Code(), EventRoundStarted, snap),
	}, nil
}

func (g *GameService) submitAnswer(caller *Caller, r *room.Room, cmd Command) ([]Notification, error) {
	var req submitAnswerRequest
	if err := decode(cmd.Payload, &req); err != nil {
		return nil, err
	}
	snap, err := r.SubmitAnswer(caller.PlayerID, req.Category, req.Answer)
	if err != nil {
		return nil, err
	}
	return []Notification{toRoom(r.Code(), EventRoomUpdated, snap)}, nil
}

func (g *GameService) finishAnswers(caller *Caller, r *room.Room) ([]Notification, error) {
	snap, err := r.FinishAnswers(caller.PlayerID)
	if err != nil {
		return nil, err
	}
	notifications := []Notification{toRoom(r.Code(), EventRoomUpdated, snap)}
	if snap.Phase == state.Reviewing {
		notifications = append(notifications, toRoom(r.Code(), EventRoundFinished, snap))
	}
	return notifications, nil
}

func (g *GameService) reviewAnswer(caller *Caller, r *room.Room, cmd Command) ([]Notification, error) {
	var req reviewAnswerRequest
	if err := decode(cmd.Payload, &req); err != nil {
		return nil, err
	}
	review := room.Review{IsValid: req.IsValid, IsUnique: req.IsUnique}
	snap, err := r.ReviewAnswer(caller.PlayerID, req.ReviewedPlayerID, req.Category, review)
	if err != nil {
		return nil, err
	}
	return []Notification{toRoom(r.Code(), EventRoomUpdated, snap)}, nil
}

func (g *GameService) readyForNextRound(ctx context.Context, caller *Caller, r *room.Room) ([]Notification, error) {
	snap, result, err := r.ReadyForNextRound(caller.PlayerID)
	if err != nil {
		return nil, err
	}
	notifications := []Notification{toRoom(r.Code(), EventRoomUpdated, snap)}
	if result != nil {
		notifications = append(notifications, g.roundFinalized(ctx, r, snap, result)...)
	}
	return notifications, nil
}

// roundFinalized announces a finalized round and archives finished games.
func (g *GameService) roundFinalized(ctx context.Context, r *room.Room, snap room.Snapshot, result *room.RoundResult) []Notification {
	g.metrics.IncRoundsFinalized()
	outcome := RoundOutcome{Room: snap, Result: result}
	if !result.Finished {
		logger.Log.Infof("Room %s finished round %d, next selector %s", r.Code(), result.Round, deref(snap.CurrentLetterSelector))
		return []Notification{toRoom(r.Code(), EventNextRoundPrepared, outcome)}
	}

	g.metrics.IncGamesFinished()
	logger.Log.Infof("Room %s finished after %d rounds", r.Code(), result.Round)
	if g.archive != nil {
		if err := g.archive.SaveGameRecord(ctx, NewGameRecord(r, snap)); err != nil {
			logger.Log.Errorf("Failed to archive room %s: %v", r.Code(), err)
		}
	}
	return []Notification{toRoom(r.Code(), EventGameFinished, outcome)}
}

func (g *GameService) getScores(caller *Caller, cmd Command) ([]Notification, error) {
	var req getScoresRequest
	if err := decode(cmd.Payload, &req); err != nil {
		return nil, err
	}
	code := req.RoomCode
	if code == "" {
		code = caller.RoomCode
	}
	if code == "" {
		return nil, &room.Error{Code: room.CodeNotFound, Message: "not in a room"}
	}
	r, err := g.rooms.GetRoom(code)
	if err != nil {
		return nil, err
	}
	return []Notification{toCaller(EventScoresUpdated, r.ScoreBoard())}, nil
}

// Disconnect takes a dropped connection's player off its room. A reconnecting
// client is a new player, so nothing is kept for it.
func (g *GameService) Disconnect(ctx context.Context, caller *Caller) []Notification {
	if caller.RoomCode == "" || caller.PlayerID == "" {
		return nil
	}
	logger.Log.Infof("Player %s disconnected from room %s", caller.PlayerID, caller.RoomCode)
	return g.departRoom(ctx, caller.PlayerID, caller.RoomCode)
}

// NewGameRecord builds the archive entry of a finished room.
func NewGameRecord(r *room.Room, snap room.Snapshot) models.GameRecord {
	finishedAt, _ := r.FinishedAt()
	record := models.GameRecord{
		RoomCode:   snap.Code,
		CreatorID:  snap.CreatorID,
		Rounds:     snap.Rounds,
		TimeLimit:  snap.TimeLimit,
		Categories: snap.Categories,
		StartedAt:  r.CreatedAt(),
		FinishedAt: finishedAt,
	}
	for _, id := range snap.Players {
		record.Players = append(record.Players, models.PlayerResult{
			PlayerID: id,
			Name:     snap.PlayerNames[id],
			Score:    snap.Scores[id],
		})
	}
	models.RankPlayers(record.Players)
	return record
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
