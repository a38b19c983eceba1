package rpc

import (
	"context"
	"time"

	"github.com/wfunc/wordrace/models"
	"github.com/wfunc/wordrace/room"
	"github.com/wfunc/wordrace/state"
)

// RecentGamesSource reads archived games. persistence.Database implements it.
type RecentGamesSource interface {
	RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error)
}

// AdminService exposes the room registry to operators. Methods follow the
// net/rpc signature: exported args, pointer reply, error result.
type AdminService struct {
	rooms   *room.Manager
	archive RecentGamesSource
}

func NewAdminService(rooms *room.Manager, archive RecentGamesSource) *AdminService {
	return &AdminService{rooms: rooms, archive: archive}
}

// RoomSummary is one line of ListRooms.
type RoomSummary struct {
	Code         string
	Phase        state.Phase
	Players      int
	CurrentRound int
	Rounds       int
	CreatedAt    time.Time
}

type ListRoomsArgs struct {
	// Phase filters by phase when set.
	Phase state.Phase
}

type ListRoomsReply struct {
	Rooms []RoomSummary
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = []RoomSummary{}
	for _, r := range a.rooms.ListRooms() {
		snap := r.Snapshot()
		if args.Phase != "" && snap.Phase != args.Phase {
			continue
		}
		reply.Rooms = append(reply.Rooms, RoomSummary{
			Code:         snap.Code,
			Phase:        snap.Phase,
			Players:      len(snap.Players),
			CurrentRound: snap.CurrentRound,
			Rounds:       snap.Rounds,
			CreatedAt:    r.CreatedAt(),
		})
	}
	return nil
}

type GetRoomArgs struct {
	Code string
}

type GetRoomReply struct {
	Room room.Snapshot
}

func (a *AdminService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, err := a.rooms.GetRoom(args.Code)
	if err != nil {
		return err
	}
	reply.Room = r.Snapshot()
	return nil
}

type RecentGamesArgs struct {
	Limit int
}

type RecentGamesReply struct {
	Games []models.GameRecord
}

const defaultRecentGames = 20

func (a *AdminService) RecentGames(args *RecentGamesArgs, reply *RecentGamesReply) error {
	limit := args.Limit
	if limit == 0 {
		limit = defaultRecentGames
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	games, err := a.archive.RecentGames(ctx, limit)
	if err != nil {
		return err
	}
	reply.Games = games
	return nil
}
