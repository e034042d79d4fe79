package manager

import (
	"context"

	"kaboom/internal/game/cards"
	"kaboom/internal/game/engine"
	"kaboom/internal/room"
	"kaboom/internal/utils"
)

// Archiver persists final scoreboards once a game reaches game_over.
type Archiver interface {
	Archive(ctx context.Context, roomID string, state *engine.GameState) error
}

// Manager 把引擎操作接到共享存储上：读取最新对局状态，应用一次纯引擎
// 变换，再以版本 CAS 写回。写回失败（ErrStaleState）意味着别的客户端抢先
// 持久化了下一个状态 —— 先写者胜，调用方需要重新轮询后重试。
type Manager struct {
	repo     room.Repo
	archiver Archiver // 可为 nil（未配置 Postgres 时）
}

func NewManager(repo room.Repo, archiver Archiver) *Manager {
	return &Manager{repo: repo, archiver: archiver}
}

// State 轮询入口：返回当前对局状态快照。
func (m *Manager) State(ctx context.Context, roomID string) (*engine.GameState, error) {
	return m.repo.GetGame(ctx, roomID)
}

func (m *Manager) apply(ctx context.Context, roomID string, fn func(*engine.GameState) error) (*engine.GameState, error) {
	state, err := m.repo.GetGame(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := fn(state); err != nil {
		return nil, err
	}
	if err := m.repo.SaveGame(ctx, roomID, state); err != nil {
		return nil, err
	}
	if state.Phase == engine.PhaseGameOver && m.archiver != nil {
		if err := m.archiver.Archive(ctx, roomID, state); err != nil {
			utils.Error.Printf("archive result for room %s: %v", roomID, err)
		}
	}
	return state, nil
}

func (m *Manager) Peek(ctx context.Context, roomID, playerID string, cardIndex int) (cards.Card, *engine.GameState, error) {
	var card cards.Card
	state, err := m.apply(ctx, roomID, func(g *engine.GameState) error {
		var err error
		card, err = g.Peek(playerID, cardIndex)
		return err
	})
	if err != nil {
		return cards.Card{}, nil, err
	}
	return card, state, nil
}

func (m *Manager) CompletePeeking(ctx context.Context, roomID, playerID string) (*engine.GameState, error) {
	return m.apply(ctx, roomID, func(g *engine.GameState) error {
		return g.CompletePeeking(playerID)
	})
}

func (m *Manager) Draw(ctx context.Context, roomID, playerID string) (*engine.GameState, error) {
	return m.apply(ctx, roomID, func(g *engine.GameState) error {
		return g.Draw(playerID)
	})
}

func (m *Manager) Replace(ctx context.Context, roomID, playerID string, handIndex int) (*engine.GameState, error) {
	return m.apply(ctx, roomID, func(g *engine.GameState) error {
		return g.Replace(playerID, handIndex)
	})
}

func (m *Manager) Discard(ctx context.Context, roomID, playerID string) (*engine.GameState, error) {
	return m.apply(ctx, roomID, func(g *engine.GameState) error {
		return g.Discard(playerID)
	})
}

func (m *Manager) CallKaboom(ctx context.Context, roomID, playerID string) (*engine.GameState, error) {
	return m.apply(ctx, roomID, func(g *engine.GameState) error {
		return g.CallKaboom(playerID)
	})
}

func (m *Manager) ResolveReaction(ctx context.Context, roomID, playerID string, act engine.ReactionAction) (*engine.GameState, error) {
	return m.apply(ctx, roomID, func(g *engine.GameState) error {
		return g.ResolveReaction(playerID, act)
	})
}

// FinishScoring 结算触发：kaboom -> game_over。
func (m *Manager) FinishScoring(ctx context.Context, roomID string) (*engine.GameState, error) {
	return m.apply(ctx, roomID, func(g *engine.GameState) error {
		return g.ComputeFinalScores()
	})
}
