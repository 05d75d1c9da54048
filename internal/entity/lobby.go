package entity

import (
	"sort"
	"time"

	"github.com/lobbygames/majority-backend/internal/majority"
)

// GameFormats are the formats a lobby can be created with.
var GameFormats = []string{"Classic", "Fast", "Blitz"}

// IsKnownFormat reports whether format is one of GameFormats.
func IsKnownFormat(format string) bool {
	for _, f := range GameFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Lobby is one session: a set of players gathered under a join code,
// plus the bound engine once the game has started. The session store is
// its only mutator.
type Lobby struct {
	Code       string
	Format     string
	MaxPlayers int
	CreatedAt  time.Time
	Started    bool
	Players    map[string]*Player
	Game       *majority.Engine
}

// Host returns the current host, or nil for an empty lobby.
func (that *Lobby) Host() *Player {
	for _, p := range that.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// SortedPlayers returns the members ordered by join time, which is both
// the UI order and the turn order at start. Ties fall back to the id so
// the order is stable.
func (that *Lobby) SortedPlayers() []*Player {
	players := make([]*Player, 0, len(that.Players))
	for _, p := range that.Players {
		players = append(players, p)
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].ID < players[j].ID
		}
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})

	return players
}

// IsFull reports whether the lobby has reached capacity.
func (that *Lobby) IsFull() bool {
	return len(that.Players) >= that.MaxPlayers
}

// LobbySummary is one row of the open-lobby listing.
type LobbySummary struct {
	Code       string `json:"code"`
	Format     string `json:"format"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	CreatedAt  int64  `json:"created_at"`
}

// LobbyState is the public snapshot of one lobby.
type LobbyState struct {
	Code       string       `json:"code"`
	Format     string       `json:"format"`
	Started    bool         `json:"started"`
	Players    []PlayerInfo `json:"players"`
	PlayerNum  int          `json:"players_count"`
	MaxPlayers int          `json:"max_players"`
	HostNick   string       `json:"host_nick,omitempty"`
}

// JoinTicket is what a player gets back from creating or joining a lobby.
type JoinTicket struct {
	Code       string `json:"code"`
	PlayerID   string `json:"player_id"`
	IsHost     bool   `json:"is_host"`
	MaxPlayers int    `json:"max_players"`
}
