package entity

import "time"

// Player is one lobby member. The ID doubles as the turn-order key once
// the match starts and is never shown to other clients.
type Player struct {
	ID       string    `json:"player_id"`
	Nick     string    `json:"nick"`
	IsHost   bool      `json:"is_host"`
	JoinedAt time.Time `json:"-"`
	LastSeen time.Time `json:"-"`
}

// PlayerInfo is the wire shape of a lobby member.
type PlayerInfo struct {
	PlayerID string `json:"player_id"`
	Nick     string `json:"nick"`
	IsHost   bool   `json:"is_host"`
	LastSeen int64  `json:"last_seen"`
}
