package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/wordrace/broadcast"
	"github.com/wfunc/wordrace/logger"
	"github.com/wfunc/wordrace/monitor"
	"github.com/wfunc/wordrace/network"
	"github.com/wfunc/wordrace/services"
	"github.com/wfunc/wordrace/session"
)

// HeartbeatInterval is how often clients are expected to send something.
// A connection silent for two intervals is dropped.
const HeartbeatInterval = 30 * time.Second

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	gameService    *services.GameService
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	monitor        *monitor.Monitor
	httpServer     *http.Server
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

// NewGameServer wires the websocket endpoint to gameService and installs the
// broadcaster as its background notifier.
func NewGameServer(addr string, gameService *services.GameService, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:           addr,
		gameService:    gameService,
		sessionManager: session.NewManager(),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)
	gameService.SetNotifier(s.broadcaster)
	return s
}

// Handler serves the websocket endpoint on /ws.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *GameServer) Start() error {
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}
	logger.Log.Infof("Game server listening on %s", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *GameServer) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *GameServer) Sessions() *session.Manager {
	return s.sessionManager
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()
	wsConn.SetHeartbeat(HeartbeatInterval)

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.broadcaster.Notify(s.gameService.Disconnect(context.Background(), callerOf(sess)))
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Log.Debugf("Read from session %s failed: %v", sess.GetID(), err)
				}
				return
			}
			wsConn.SetHeartbeat(HeartbeatInterval)
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	s.monitor.IncMessagesReceived()
	sess.Touch()

	if packet.MsgID == network.MsgTypeHeartbeat {
		return
	}
	name, ok := network.CommandName(packet.MsgID)
	if !ok {
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
		return
	}

	caller := callerOf(sess)
	fromRoom := caller.RoomCode
	notifications, err := s.gameService.Handle(context.Background(), caller, services.Command{Name: name, Payload: packet.Data})
	if err != nil {
		if sendErr := broadcast.Error(sess, err); sendErr != nil {
			logger.Log.Warnf("Failed to send error to session %s: %v", sess.GetID(), sendErr)
		}
		return
	}

	if !sess.UpdateIdentity(caller.PlayerID, caller.PlayerName, fromRoom, caller.RoomCode) {
		logger.Log.Debugf("Session %s left room %s while %s was handled", sess.GetID(), fromRoom, name)
	}
	s.broadcaster.Deliver(sess, notifications)
}

func callerOf(sess *session.Session) *services.Caller {
	playerID, playerName, roomCode := sess.Identity()
	return &services.Caller{PlayerID: playerID, PlayerName: playerName, RoomCode: roomCode}
}
