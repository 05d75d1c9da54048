package session

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lobbygames/majority-backend/internal/apperror"
	"github.com/lobbygames/majority-backend/internal/entity"
	"github.com/lobbygames/majority-backend/internal/majority"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// MoveOutcome is the result of an accepted move routed through the store.
// Record is non-nil exactly when this move finished the match, so the
// caller can archive it without taking the store lock again.
type MoveOutcome struct {
	Flips      []majority.Coord
	NextPlayer string
	GameOver   bool
	Record     *entity.MatchRecord
}

// Store is the single consistency boundary for all lobby and game state.
// One mutex guards the whole lobby map: every operation is pure in-memory
// work that completes in microseconds, so the critical section is always
// short and coarse locking stays simple and correct.
type Store struct {
	logger *slog.Logger

	mu      sync.Mutex
	lobbies map[string]*entity.Lobby

	maxPlayers int
	boardSize  int

	now func() time.Time
}

// New - creates an empty store. maxPlayers bounds lobby membership and
// boardSize is the dimension every started game uses.
func New(logger *slog.Logger, maxPlayers, boardSize int) *Store {
	return &Store{
		logger:     logger.With("component", "session_store"),
		lobbies:    make(map[string]*entity.Lobby),
		maxPlayers: maxPlayers,
		boardSize:  boardSize,
		now:        time.Now,
	}
}

// NormalizeCode - canonicalizes a client-supplied join code. Codes are
// case-insensitive on input and stored uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (that *Store) newPlayer(nick string, isHost bool) *entity.Player {
	now := that.now()
	return &entity.Player{
		ID:       uuid.NewString(),
		Nick:     nick,
		IsHost:   isHost,
		JoinedAt: now,
		LastSeen: now,
	}
}

// generateCode draws codeLength characters from the uppercase-alphanumeric
// alphabet using a crypto-strength source. Collisions against live codes
// are handled by the caller re-drawing.
func generateCode() string {
	limit := big.NewInt(int64(len(codeAlphabet)))

	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			panic(fmt.Errorf("failed to read random source: %w", err))
		}
		b[i] = codeAlphabet[n.Int64()]
	}

	return string(b)
}

// CreateLobby - creates a lobby with a fresh unique code and the creator
// as its sole member and host.
func (that *Store) CreateLobby(hostNick, format string) (*entity.JoinTicket, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	var code string
	for {
		code = generateCode()
		if _, taken := that.lobbies[code]; !taken {
			break
		}
	}

	host := that.newPlayer(hostNick, true)
	lobby := &entity.Lobby{
		Code:       code,
		Format:     format,
		MaxPlayers: that.maxPlayers,
		CreatedAt:  that.now(),
		Players:    map[string]*entity.Player{host.ID: host},
	}
	that.lobbies[code] = lobby

	that.logger.Info("lobby created", "code", code, "host", hostNick, "format", format)

	return &entity.JoinTicket{
		Code:       code,
		PlayerID:   host.ID,
		IsHost:     true,
		MaxPlayers: lobby.MaxPlayers,
	}, nil
}

// ListOpen - lists lobbies that have not started yet, newest first.
func (that *Store) ListOpen() []entity.LobbySummary {
	that.mu.Lock()
	defer that.mu.Unlock()

	open := make([]entity.LobbySummary, 0, len(that.lobbies))
	for _, lobby := range that.lobbies {
		if lobby.Started {
			continue
		}
		open = append(open, entity.LobbySummary{
			Code:       lobby.Code,
			Format:     lobby.Format,
			Players:    len(lobby.Players),
			MaxPlayers: lobby.MaxPlayers,
			CreatedAt:  lobby.CreatedAt.Unix(),
		})
	}

	for i := 1; i < len(open); i++ {
		for j := i; j > 0 && open[j].CreatedAt > open[j-1].CreatedAt; j-- {
			open[j], open[j-1] = open[j-1], open[j]
		}
	}

	return open
}

// State - returns an independent snapshot of one lobby.
func (that *Store) State(code string) (*entity.LobbyState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	lobby, ok := that.lobbies[NormalizeCode(code)]
	if !ok {
		return nil, apperror.ErrLobbyNotFound
	}

	players := lobby.SortedPlayers()
	infos := make([]entity.PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, entity.PlayerInfo{
			PlayerID: p.ID,
			Nick:     p.Nick,
			IsHost:   p.IsHost,
			LastSeen: p.LastSeen.Unix(),
		})
	}

	state := &entity.LobbyState{
		Code:       lobby.Code,
		Format:     lobby.Format,
		Started:    lobby.Started,
		Players:    infos,
		PlayerNum:  len(players),
		MaxPlayers: lobby.MaxPlayers,
	}
	if host := lobby.Host(); host != nil {
		state.HostNick = host.Nick
	}

	return state, nil
}

// Join - adds a new non-host member to a forming lobby.
func (that *Store) Join(code, nick string) (*entity.JoinTicket, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	lobby, ok := that.lobbies[NormalizeCode(code)]
	if !ok {
		return nil, apperror.ErrLobbyNotFound
	}

	if lobby.Started {
		return nil, apperror.ErrLobbyStarted
	}

	if lobby.IsFull() {
		return nil, apperror.ErrLobbyFull
	}

	for _, p := range lobby.Players {
		if strings.EqualFold(p.Nick, nick) {
			return nil, apperror.ErrNickTaken
		}
	}

	player := that.newPlayer(nick, false)
	lobby.Players[player.ID] = player

	that.logger.Info("player joined", "code", lobby.Code, "nick", nick)

	return &entity.JoinTicket{
		Code:       lobby.Code,
		PlayerID:   player.ID,
		IsHost:     false,
		MaxPlayers: lobby.MaxPlayers,
	}, nil
}

// Leave - removes a member. A departing host hands the role to the
// earliest-joined remaining member; an emptied lobby is destroyed.
func (that *Store) Leave(code, playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	normalized := NormalizeCode(code)

	lobby, ok := that.lobbies[normalized]
	if !ok {
		return apperror.ErrLobbyNotFound
	}

	player, ok := lobby.Players[playerID]
	if !ok {
		return apperror.ErrPlayerNotFound
	}

	delete(lobby.Players, playerID)

	if player.IsHost && len(lobby.Players) > 0 {
		that.promoteHost(lobby)
	}

	if len(lobby.Players) == 0 {
		delete(that.lobbies, normalized)
		that.logger.Info("lobby destroyed", "code", lobby.Code)
	}

	return nil
}

// promoteHost makes the earliest-joined member the host. Caller holds the
// lock and guarantees the lobby is non-empty.
func (that *Store) promoteHost(lobby *entity.Lobby) {
	next := lobby.SortedPlayers()[0]
	next.IsHost = true
	that.logger.Info("host reassigned", "code", lobby.Code, "nick", next.Nick)
}

// Start - marks the lobby started and binds a fresh engine seeded with
// the membership in join order. The flag and the engine are set in the
// same critical section, so no caller ever observes a started lobby
// without a game.
func (that *Store) Start(code, playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	lobby, ok := that.lobbies[NormalizeCode(code)]
	if !ok {
		return apperror.ErrLobbyNotFound
	}

	player, ok := lobby.Players[playerID]
	if !ok {
		return apperror.ErrPlayerNotFound
	}

	if !player.IsHost {
		return apperror.ErrNotHost
	}

	if lobby.Started {
		return apperror.ErrLobbyStarted
	}

	order := lobby.SortedPlayers()
	ids := make([]string, 0, len(order))
	for _, p := range order {
		ids = append(ids, p.ID)
	}

	engine, err := majority.New(that.boardSize, ids)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	lobby.Game = engine
	lobby.Started = true

	that.logger.Info("game started", "code", lobby.Code, "players", len(ids))

	return nil
}

// Touch - refreshes a member's liveness timestamp. Unknown codes and
// players are ignored: a stale client pinging a dead lobby is routine.
func (that *Store) Touch(code, playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	lobby, ok := that.lobbies[NormalizeCode(code)]
	if !ok {
		return
	}

	if player, ok := lobby.Players[playerID]; ok {
		player.LastSeen = that.now()
	}
}

// Cleanup - drops members not seen within timeout, restores the host
// invariant where the host was among them and destroys emptied lobbies.
// Repeated calls with no intervening activity are no-ops.
func (that *Store) Cleanup(timeout time.Duration) (removedPlayers, removedLobbies int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	cutoff := that.now().Add(-timeout)

	for code, lobby := range that.lobbies {
		for id, p := range lobby.Players {
			if p.LastSeen.Before(cutoff) {
				delete(lobby.Players, id)
				removedPlayers++
			}
		}

		if len(lobby.Players) > 0 && lobby.Host() == nil {
			that.promoteHost(lobby)
		}

		if len(lobby.Players) == 0 {
			delete(that.lobbies, code)
			removedLobbies++
		}
	}

	return removedPlayers, removedLobbies
}

// GameState - returns a snapshot of the running game at code.
func (that *Store) GameState(code string) (*majority.State, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	lobby, ok := that.lobbies[NormalizeCode(code)]
	if !ok || lobby.Game == nil {
		return nil, apperror.ErrGameNotFound
	}

	return lobby.Game.State(), nil
}

// ApplyMove - routes a move to the bound engine. The membership check
// comes first so a player just swept out of the lobby gets a clean
// rejection instead of reaching the engine.
func (that *Store) ApplyMove(code, playerID string, row, col int) (*MoveOutcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	lobby, ok := that.lobbies[NormalizeCode(code)]
	if !ok || lobby.Game == nil {
		return nil, apperror.ErrGameNotFound
	}

	if _, ok = lobby.Players[playerID]; !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	result, err := lobby.Game.ApplyMove(row, col, playerID)
	if err != nil {
		return nil, err
	}

	outcome := &MoveOutcome{
		Flips:      result.Flips,
		NextPlayer: result.NextPlayer,
		GameOver:   lobby.Game.IsFinished(),
	}

	if outcome.GameOver {
		outcome.Record = that.buildRecord(lobby)
		that.logger.Info("game finished", "code", lobby.Code, "winner", outcome.Record.Winner)
	}

	return outcome, nil
}

// buildRecord snapshots a finished game as an archive record, translating
// player ids to nicks. A player who left mid-game keeps a shortened id as
// the label since the nick is gone with them.
func (that *Store) buildRecord(lobby *entity.Lobby) *entity.MatchRecord {
	state := lobby.Game.State()

	nickOf := func(id string) string {
		if p, ok := lobby.Players[id]; ok {
			return p.Nick
		}
		if len(id) > 8 {
			return id[:8]
		}
		return id
	}

	scores := make(map[string]int, len(state.Scores))
	for id, score := range state.Scores {
		scores[nickOf(id)] = score
	}

	winner := state.Winner
	if winner != majority.WinnerDraw {
		winner = nickOf(winner)
	}

	return &entity.MatchRecord{
		Code:       lobby.Code,
		Format:     lobby.Format,
		Winner:     winner,
		Scores:     scores,
		Moves:      state.HistoryLen,
		FinishedAt: that.now(),
	}
}
