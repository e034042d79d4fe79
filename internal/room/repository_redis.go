package room

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kaboom/internal/game/engine"
)

type redisRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisRepo 以 redis 作为共享状态存储；ttlSeconds 为房间与对局数据的
// 过期时间，避免废弃房间长期遗留。
func NewRedisRepo(rdb *redis.Client, ttlSeconds int) Repo {
	return &redisRepo{rdb: rdb, ttl: time.Duration(ttlSeconds) * time.Second}
}

// key 约定：
//
//	kv : kaboom:room:{id}      -> JSON(Room)
//	set: kaboom:rooms:open     -> Set(roomID,...) 开放房间索引
//	kv : kaboom:game:{roomID}  -> JSON(GameState)
//	kv : kaboom:gamever:{roomID} -> 版本号计数器（CAS 依据）
func roomKey(id string) string    { return fmt.Sprintf("kaboom:room:%s", id) }
func gameKey(id string) string    { return fmt.Sprintf("kaboom:game:%s", id) }
func gameVerKey(id string) string { return fmt.Sprintf("kaboom:gamever:%s", id) }

const openRoomsKey = "kaboom:rooms:open"

func (r *redisRepo) SaveRoom(ctx context.Context, room *Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	p := r.rdb.Pipeline()
	p.Set(ctx, roomKey(room.ID), data, r.ttl)
	if !room.IsStarted && len(room.Players) < room.MaxPlayers {
		p.SAdd(ctx, openRoomsKey, room.ID)
	} else {
		p.SRem(ctx, openRoomsKey, room.ID)
	}
	_, err = p.Exec(ctx)
	return err
}

func (r *redisRepo) GetRoom(ctx context.Context, id string) (*Room, error) {
	data, err := r.rdb.Get(ctx, roomKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *redisRepo) ListOpen(ctx context.Context) ([]*Room, error) {
	ids, err := r.rdb.SMembers(ctx, openRoomsKey).Result()
	if err != nil {
		return nil, err
	}
	rooms := make([]*Room, 0, len(ids))
	for _, id := range ids {
		room, err := r.GetRoom(ctx, id)
		if err == ErrRoomNotFound {
			// 索引里残留的过期房间，顺手清理
			_ = r.rdb.SRem(ctx, openRoomsKey, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		if room.IsStarted || len(room.Players) >= room.MaxPlayers {
			continue
		}
		rooms = append(rooms, room)
	}
	sortRoomsByCreation(rooms)
	return rooms, nil
}

func (r *redisRepo) DeleteRoom(ctx context.Context, id string) error {
	p := r.rdb.Pipeline()
	p.Del(ctx, roomKey(id))
	p.SRem(ctx, openRoomsKey, id)
	_, err := p.Exec(ctx)
	return err
}

func (r *redisRepo) GetGame(ctx context.Context, roomID string) (*engine.GameState, error) {
	data, err := r.rdb.Get(ctx, gameKey(roomID)).Bytes()
	if err == redis.Nil {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var state engine.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	ver, err := r.rdb.Get(ctx, gameVerKey(roomID)).Int64()
	if err != nil && err != redis.Nil {
		return nil, err
	}
	state.Version = ver
	return &state, nil
}

// saveGameScript 原子 CAS：版本匹配才写入并自增版本。
// KEYS[1] = gameKey, KEYS[2] = gameVerKey
// ARGV[1] = JSON, ARGV[2] = 期望版本, ARGV[3] = TTL 秒
const saveGameScript = `
        local v = tonumber(redis.call("GET", KEYS[2]) or "0")
        if v ~= tonumber(ARGV[2]) then
            return 0
        end
        redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[3])
        redis.call("INCR", KEYS[2])
        redis.call("EXPIRE", KEYS[2], ARGV[3])
        return 1
    `

func (r *redisRepo) SaveGame(ctx context.Context, roomID string, state *engine.GameState) error {
	expected := state.Version
	next := *state
	next.Version = expected + 1
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	ttlSec := int64(r.ttl / time.Second)
	ok, err := r.rdb.Eval(ctx, saveGameScript,
		[]string{gameKey(roomID), gameVerKey(roomID)},
		data, expected, ttlSec,
	).Int64()
	if err != nil {
		return err
	}
	if ok != 1 {
		return ErrStaleState
	}
	state.Version = next.Version
	return nil
}

func (r *redisRepo) DeleteGame(ctx context.Context, roomID string) error {
	p := r.rdb.Pipeline()
	p.Del(ctx, gameKey(roomID))
	p.Del(ctx, gameVerKey(roomID))
	_, err := p.Exec(ctx)
	return err
}
