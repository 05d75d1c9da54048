package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lobbygames/majority-backend/internal/entity"
	"github.com/lobbygames/majority-backend/internal/majority"
	"github.com/lobbygames/majority-backend/internal/session"
)

type sessionStore interface {
	CreateLobby(hostNick, format string) (*entity.JoinTicket, error)
	ListOpen() []entity.LobbySummary
	State(code string) (*entity.LobbyState, error)
	Join(code, nick string) (*entity.JoinTicket, error)
	Leave(code, playerID string) error
	Start(code, playerID string) error
	Touch(code, playerID string)
	GameState(code string) (*majority.State, error)
	ApplyMove(code, playerID string, row, col int) (*session.MoveOutcome, error)
}

type matchArchive interface {
	Save(ctx context.Context, record *entity.MatchRecord) error
	Recent(ctx context.Context, limit int) ([]entity.MatchRecord, error)
}

const archiveTimeout = 2 * time.Second

// GameManager glues the session store to the match archive: lobby and
// game operations pass straight through, and a move that finishes a game
// also persists the result.
type GameManager struct {
	logger *slog.Logger
	store  sessionStore
	repo   matchArchive
}

func NewGameManager(logger *slog.Logger, store sessionStore, repo matchArchive) *GameManager {
	return &GameManager{
		logger: logger.With("component", "game_manager"),

		store: store,
		repo:  repo,
	}
}

func (that *GameManager) CreateLobby(hostNick, format string) (*entity.JoinTicket, error) {
	ticket, err := that.store.CreateLobby(hostNick, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create lobby: %w", err)
	}

	return ticket, nil
}

func (that *GameManager) ListLobbies() []entity.LobbySummary {
	return that.store.ListOpen()
}

// LobbyState - returns a lobby snapshot, refreshing the caller's liveness
// when a player id is supplied.
func (that *GameManager) LobbyState(code, playerID string) (*entity.LobbyState, error) {
	if playerID != "" {
		that.store.Touch(code, playerID)
	}

	return that.store.State(code)
}

func (that *GameManager) JoinLobby(code, nick string) (*entity.JoinTicket, error) {
	return that.store.Join(code, nick)
}

func (that *GameManager) LeaveLobby(code, playerID string) error {
	return that.store.Leave(code, playerID)
}

func (that *GameManager) StartGame(code, playerID string) error {
	return that.store.Start(code, playerID)
}

// GameState - returns a game snapshot, refreshing the caller's liveness
// when a player id is supplied.
func (that *GameManager) GameState(code, playerID string) (*majority.State, error) {
	if playerID != "" {
		that.store.Touch(code, playerID)
	}

	return that.store.GameState(code)
}

// MakeTurn - applies a move and, if it finished the game, archives the
// result. Archiving failures are logged, never surfaced: the move itself
// already succeeded.
func (that *GameManager) MakeTurn(ctx context.Context, code, playerID string, row, col int) (*session.MoveOutcome, error) {
	outcome, err := that.store.ApplyMove(code, playerID, row, col)
	if err != nil {
		return nil, err
	}

	if outcome.Record != nil {
		archiveCtx, cancel := context.WithTimeout(ctx, archiveTimeout)
		defer cancel()

		if err = that.repo.Save(archiveCtx, outcome.Record); err != nil {
			that.logger.Error("failed to archive match", "code", code, "error", err)
		}
	}

	return outcome, nil
}

func (that *GameManager) RecentMatches(ctx context.Context, limit int) ([]entity.MatchRecord, error) {
	records, err := that.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent matches: %w", err)
	}

	return records, nil
}
