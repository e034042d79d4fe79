package room

import (
	"context"
	"errors"

	"kaboom/internal/game/engine"
)

var (
	// ErrRoomNotFound 房间不存在（或已过期被清理）
	ErrRoomNotFound = errors.New("room not found")
	// ErrGameNotFound 房间尚未开局
	ErrGameNotFound = errors.New("game not found")
	// ErrStaleState is returned when a game-state save loses the
	// compare-and-swap: someone else persisted a newer version first.
	// The caller must re-poll and retry.
	ErrStaleState = errors.New("stale game state")
)

// Repo 定义对房间与对局状态的抽象操作
type Repo interface {
	// SaveRoom 覆盖写入房间（最后写入者胜）
	SaveRoom(ctx context.Context, r *Room) error
	GetRoom(ctx context.Context, id string) (*Room, error)
	// ListOpen 返回所有未开局且未满员的房间，按创建时间排序
	ListOpen(ctx context.Context) ([]*Room, error)
	DeleteRoom(ctx context.Context, id string) error

	// GetGame 读取对局状态（含当前版本号）
	GetGame(ctx context.Context, roomID string) (*engine.GameState, error)
	// SaveGame 原子写入：仅当存储中的版本等于 state.Version 时成功，
	// 成功后版本号 +1；否则返回 ErrStaleState。
	SaveGame(ctx context.Context, roomID string, state *engine.GameState) error
	DeleteGame(ctx context.Context, roomID string) error
}
