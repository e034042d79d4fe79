package results

import (
	"context"
	"database/sql"
	"fmt"

	"kaboom/internal/game/engine"
)

// Store 把终局结果落到 Postgres，供战绩查询。归档失败不阻塞对局流程。
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema 建表（幂等）。
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS game_results (
			id          BIGSERIAL PRIMARY KEY,
			room_id     TEXT        NOT NULL,
			player_id   TEXT        NOT NULL,
			player_name TEXT        NOT NULL,
			total       INT         NOT NULL,
			winner      BOOLEAN     NOT NULL,
			instant_win BOOLEAN     NOT NULL DEFAULT FALSE,
			finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure game_results schema: %w", err)
	}
	return nil
}

// Archive 写入一局的最终记分板。瞬时胜利没有计分，只记录胜者一行。
func (s *Store) Archive(ctx context.Context, roomID string, state *engine.GameState) error {
	if state.Phase != engine.PhaseGameOver {
		return fmt.Errorf("archive room %s: game not over", roomID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive room %s: %w", roomID, err)
	}
	defer tx.Rollback()

	const insert = `
		INSERT INTO game_results (room_id, player_id, player_name, total, winner, instant_win)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if state.InstantWinnerID != "" {
		winner, err := findPlayer(state, state.InstantWinnerID)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert, roomID, winner.ID, winner.Name, 0, true, true); err != nil {
			return fmt.Errorf("archive room %s: %w", roomID, err)
		}
		return tx.Commit()
	}

	winners := make(map[string]bool)
	for _, w := range state.Winners() {
		winners[w.PlayerID] = true
	}
	for _, sc := range state.FinalScores {
		_, err := tx.ExecContext(ctx, insert, roomID, sc.PlayerID, sc.Name, sc.Total, winners[sc.PlayerID], false)
		if err != nil {
			return fmt.Errorf("archive room %s: %w", roomID, err)
		}
	}
	return tx.Commit()
}

// Recent 返回某房间最近的对局记录，按结束时间倒序。
func (s *Store) Recent(ctx context.Context, roomID string, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT room_id, player_id, player_name, total, winner, instant_win
		FROM game_results WHERE room_id = $1
		ORDER BY finished_at DESC, id DESC LIMIT $2`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("query results for room %s: %w", roomID, err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.RoomID, &r.PlayerID, &r.PlayerName, &r.Total, &r.Winner, &r.InstantWin); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type Result struct {
	RoomID     string `json:"roomId"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Total      int    `json:"total"`
	Winner     bool   `json:"winner"`
	InstantWin bool   `json:"instantWin"`
}

func findPlayer(state *engine.GameState, id string) (*engine.Player, error) {
	for _, p := range state.Players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, id)
}
