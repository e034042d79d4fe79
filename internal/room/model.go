package room

import "time"

// RoomPlayer is one lobby member. The id is the opaque identity issued at
// guest login; the engine reuses it unchanged.
type RoomPlayer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is the lobby record the clients poll. Game state is stored
// separately, keyed by the room id.
type Room struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	HostID     string       `json:"hostId"`
	HostName   string       `json:"hostName"`
	MaxPlayers int          `json:"maxPlayers"`
	Players    []RoomPlayer `json:"players"`
	IsStarted  bool         `json:"isStarted"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// HasPlayer reports whether id already sits in the room.
func (r *Room) HasPlayer(id string) bool {
	for _, p := range r.Players {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CreateRequest 前端提交的建房请求
type CreateRequest struct {
	Label      string `json:"label"`
	MaxPlayers int    `json:"maxPlayers" binding:"required"`
}

type RoomResponse struct {
	Room *Room `json:"room"`
}

type ListResponse struct {
	Rooms []*Room `json:"rooms"`
}
