package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kaboom/internal/game/engine"
)

var (
	ErrRoomStarted = errors.New("room already started")
	ErrRoomFull    = errors.New("room is full")
	ErrNotHost     = errors.New("only the host may do this")
)

const (
	MinPlayers = 2
	MaxPlayers = 6
)

type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

// CreateRoom 建房，房主自动入座。
func (s *Service) CreateRoom(ctx context.Context, hostID, hostName, label string, maxPlayers int) (*Room, error) {
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return nil, fmt.Errorf("maxPlayers must be between %d and %d", MinPlayers, MaxPlayers)
	}
	id := uuid.NewString()[:8]
	if label == "" {
		label = "Room " + id
	}
	now := time.Now()
	r := &Room{
		ID:         id,
		Label:      label,
		HostID:     hostID,
		HostName:   hostName,
		MaxPlayers: maxPlayers,
		Players:    []RoomPlayer{{ID: hostID, Name: hostName, JoinedAt: now}},
		CreatedAt:  now,
	}
	if err := s.repo.SaveRoom(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// JoinRoom 入座；重复加入视为幂等成功。
func (s *Service) JoinRoom(ctx context.Context, roomID, playerID, playerName string) (*Room, error) {
	r, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.HasPlayer(playerID) {
		return r, nil
	}
	if r.IsStarted {
		return nil, ErrRoomStarted
	}
	if len(r.Players) >= r.MaxPlayers {
		return nil, ErrRoomFull
	}
	r.Players = append(r.Players, RoomPlayer{ID: playerID, Name: playerName, JoinedAt: time.Now()})
	if err := s.repo.SaveRoom(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// LeaveRoom 离座；房主离开时移交给最早加入的剩余玩家，空房直接删除。
func (s *Service) LeaveRoom(ctx context.Context, roomID, playerID string) error {
	r, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		if err == ErrRoomNotFound {
			return nil
		}
		return err
	}
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ID != playerID {
			kept = append(kept, p)
		}
	}
	r.Players = kept
	if len(r.Players) == 0 {
		if err := s.repo.DeleteGame(ctx, roomID); err != nil {
			return err
		}
		return s.repo.DeleteRoom(ctx, roomID)
	}
	if r.HostID == playerID {
		r.HostID = r.Players[0].ID
		r.HostName = r.Players[0].Name
	}
	return s.repo.SaveRoom(ctx, r)
}

func (s *Service) ListOpenRooms(ctx context.Context) ([]*Room, error) {
	return s.repo.ListOpen(ctx)
}

func (s *Service) GetRoom(ctx context.Context, roomID string) (*Room, error) {
	return s.repo.GetRoom(ctx, roomID)
}

// StartGame 房主开局：按入座顺序固定回合顺序，发完初始手牌后整个
// 状态写入共享存储，之后所有客户端靠轮询同一份状态推进游戏。
func (s *Service) StartGame(ctx context.Context, roomID, requesterID string) (*engine.GameState, error) {
	r, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if r.HostID != requesterID {
		return nil, ErrNotHost
	}
	if r.IsStarted {
		return nil, ErrRoomStarted
	}
	if len(r.Players) < MinPlayers {
		return nil, fmt.Errorf("need at least %d players to start", MinPlayers)
	}
	roster := make([]engine.Seat, 0, len(r.Players))
	for _, p := range r.Players {
		roster = append(roster, engine.Seat{ID: p.ID, Name: p.Name})
	}
	state := engine.NewGame(roster)
	if err := state.DealInitialHands(); err != nil {
		return nil, err
	}
	if err := s.repo.SaveGame(ctx, roomID, state); err != nil {
		return nil, err
	}
	r.IsStarted = true
	if err := s.repo.SaveRoom(ctx, r); err != nil {
		return nil, err
	}
	return state, nil
}

// ResetRoom 房主重开：清掉对局状态，房间回到可加入状态。
func (s *Service) ResetRoom(ctx context.Context, roomID, requesterID string) error {
	r, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if r.HostID != requesterID {
		return ErrNotHost
	}
	if err := s.repo.DeleteGame(ctx, roomID); err != nil {
		return err
	}
	r.IsStarted = false
	return s.repo.SaveRoom(ctx, r)
}
